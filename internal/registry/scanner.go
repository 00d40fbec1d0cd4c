package registry

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"loradex/internal/classifier"
	"loradex/internal/combos"
	"loradex/internal/common/fsutil"
	"loradex/internal/safetensors"
	"loradex/internal/sidecar"
	"loradex/pkg/types"
)

// PreviewExt is the extension of model preview images.
const PreviewExt = ".png"

// MetadataSource reads the embedded metadata of one model file.
type MetadataSource interface {
	Extract(path string) (safetensors.Metadata, error)
}

// SidecarReader reads one sidecar file.
type SidecarReader interface {
	Read(path string) types.SidecarConfig
}

// ClickAnnotator attaches click counts to an entry without mutating the ledger.
type ClickAnnotator interface {
	Annotate(e *types.ModelFileEntry, term string)
}

// Options configures a Scanner. Zero fields get defaults in NewScanner.
type Options struct {
	Extractor  MetadataSource
	Classifier *classifier.Classifier
	Sidecars   SidecarReader
	// Workers bounds concurrent metadata reads within one directory.
	Workers int
	Logger  zerolog.Logger
}

// Scanner builds catalog entries from a directory tree.
type Scanner struct {
	extractor  MetadataSource
	classifier *classifier.Classifier
	sidecars   SidecarReader
	workers    int
	log        zerolog.Logger
	// readDir lists one directory, os.ReadDir by default.
	readDir    func(string) ([]os.DirEntry, error)
}

// NewScanner applies defaults to opts and returns a Scanner.
func NewScanner(opts Options) *Scanner {
	if opts.Extractor == nil {
		opts.Extractor = safetensors.NewExtractor(opts.Logger)
	}
	if opts.Classifier == nil {
		opts.Classifier = classifier.Default()
	}
	if opts.Sidecars == nil {
		opts.Sidecars = sidecar.NewStore(opts.Logger)
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Scanner{
		extractor:  opts.Extractor,
		classifier: opts.Classifier,
		sidecars:   opts.Sidecars,
		workers:    opts.Workers,
		log:        opts.Logger,
		readDir:    os.ReadDir,
	}
}

// Request describes one scan.
type Request struct {
	// Base directory; must exist.
	Base string
	// Sub-path relative to Base (single-folder scans only).
	Path string
	// Search term used for per-term click counts; empty for none.
	Search string
	// Clicks annotates entries; nil leaves counts at zero.
	Clicks ClickAnnotator
}

// ListFolders returns the immediate sub-directories of rel, excluding the
// combinations storage directory.
func (s *Scanner) ListFolders(base, rel string) (types.FoldersResponse, error) {
	dir, err := fsutil.ResolveWithin(base, rel)
	if err != nil {
		return types.FoldersResponse{}, err
	}
	entries, err := s.readDir(dir)
	if err != nil {
		return types.FoldersResponse{}, fmt.Errorf("read dir: %w", err)
	}
	folders := []string{}
	for _, e := range entries {
		if !isDir(dir, e) || e.Name() == combos.DirName {
			continue
		}
		folders = append(folders, e.Name())
	}
	cur := rel
	if cur == "" {
		cur = "/"
	}
	return types.FoldersResponse{Folders: folders, CurrentPath: cur, CanGoBack: rel != ""}, nil
}

// ScanFolder builds an entry for every model file directly inside req.Path,
// in directory listing order.
func (s *Scanner) ScanFolder(ctx context.Context, req Request) ([]types.ModelFileEntry, error) {
	start := time.Now()
	defer func() { scanDuration.WithLabelValues("folder").Observe(time.Since(start).Seconds()) }()

	rel := strings.Trim(filepath.ToSlash(req.Path), "/")
	dir, err := fsutil.ResolveWithin(req.Base, rel)
	if err != nil {
		return nil, err
	}
	entries, err := s.readDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	out, err := s.scanEntries(ctx, dir, rel, entries, req)
	if err != nil {
		return nil, err
	}
	s.log.Debug().Str("op", "scan_folder").Str("path", dir).Int("entries", len(out)).Msg("folder scanned")
	return out, nil
}

// ScanTree walks the whole tree under req.Base depth-first, sub-directories
// before the files of their parent, and returns one flat list with
// RelativePath set on every entry. A sub-directory that cannot be read is
// logged and skipped. Symlinked directories are not followed.
func (s *Scanner) ScanTree(ctx context.Context, req Request) ([]types.ModelFileEntry, error) {
	start := time.Now()
	defer func() { scanDuration.WithLabelValues("tree").Observe(time.Since(start).Seconds()) }()

	root, err := fsutil.ResolveWithin(req.Base, "")
	if err != nil {
		return nil, err
	}
	entries, err := s.readDir(root)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	out := []types.ModelFileEntry{}
	if err := s.walk(ctx, root, "", entries, req, &out); err != nil {
		return nil, err
	}
	s.log.Debug().Str("op", "scan_tree").Str("path", root).Int("entries", len(out)).Msg("tree scanned")
	return out, nil
}

func (s *Scanner) walk(ctx context.Context, dir, rel string, entries []os.DirEntry, req Request, out *[]types.ModelFileEntry) error {
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		subDir := filepath.Join(dir, e.Name())
		sub, err := s.readDir(subDir)
		if err != nil {
			dirScanErrors.Inc()
			s.log.Warn().Str("op", "scan_tree").Str("path", subDir).Err(err).Msg("skipping unreadable directory")
			continue
		}
		if err := s.walk(ctx, subDir, path.Join(rel, e.Name()), sub, req, out); err != nil {
			return err
		}
	}
	got, err := s.scanEntries(ctx, dir, rel, entries, req)
	if err != nil {
		return err
	}
	for i := range got {
		r := rel
		got[i].RelativePath = &r
	}
	*out = append(*out, got...)
	return nil
}

// scanEntries builds entries for the model files among entries, which must
// be the full listing of dir so sibling lookup sees every file.
func (s *Scanner) scanEntries(ctx context.Context, dir, rel string, entries []os.DirEntry, req Request) ([]types.ModelFileEntry, error) {
	names := make([]string, 0, len(entries))
	var models []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
		if strings.HasSuffix(e.Name(), safetensors.Extension) {
			models = append(models, e.Name())
		}
	}
	out := make([]types.ModelFileEntry, len(models))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, name := range models {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = s.buildEntry(dir, rel, name, names)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if req.Clicks != nil {
		for i := range out {
			req.Clicks.Annotate(&out[i], req.Search)
		}
	}
	return out, nil
}

// buildEntry composes one catalog row. Metadata failures degrade to empty
// metadata; the entry is always produced.
func (s *Scanner) buildEntry(dir, rel, name string, siblings []string) types.ModelFileEntry {
	baseName := strings.TrimSuffix(name, safetensors.Extension)
	full := filepath.Join(dir, name)

	e := types.ModelFileEntry{Name: name, BaseName: baseName}

	md, err := s.extractor.Extract(full)
	if err != nil {
		metadataErrors.Inc()
	}
	res := s.classifier.Classify(md, name, full)
	e.Metadata = types.DerivedMetadata{
		BaseModelVersion: md.BaseModelVersion,
		NetworkModule:    md.NetworkModule,
		NetworkDim:       md.NetworkDim,
		NetworkAlpha:     md.NetworkAlpha,
		TrainingComment:  md.TrainingComment,
		SDModelName:      md.SDModelName,
		BaseModel:        res.BaseModel,
		ModelInfo:        res.ModelInfo,
		ModelScores:      res.Scores,
	}
	if fi, err := os.Stat(full); err == nil {
		e.Metadata.CreatedTime, e.Metadata.ModifiedTime = fsutil.FileTimes(fi)
	} else {
		s.log.Warn().Str("op", "stat").Str("path", full).Err(err).Msg("stat failed")
	}

	if preview, ok := firstSibling(siblings, baseName, PreviewExt); ok {
		e.HasPreview = true
		ref := PreviewRef(rel, preview)
		e.PreviewPath = &ref
	}
	if cfg, ok := firstSibling(siblings, baseName, sidecar.Extension); ok {
		e.HasConfig = true
		e.Config = s.sidecars.Read(filepath.Join(dir, cfg))
	}
	return e
}

// firstSibling returns the first name in listing order that starts with
// prefix and ends with ext. A base name that prefixes another ("foo" and
// "foo2") can pick up the other model's file.
func firstSibling(names []string, prefix, ext string) (string, bool) {
	for _, n := range names {
		if strings.HasPrefix(n, prefix) && strings.HasSuffix(n, ext) {
			return n, true
		}
	}
	return "", false
}

// PreviewRef is the API reference of a model preview image.
func PreviewRef(rel, file string) string {
	return "/preview?" + url.Values{"path": {rel}, "file": {file}}.Encode()
}

// isDir reports whether e is a directory, following symlinks.
func isDir(dir string, e os.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	return fsutil.IsDir(filepath.Join(dir, e.Name()))
}
