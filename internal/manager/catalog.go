package manager

import (
	"context"
	"path/filepath"
	"strings"

	"loradex/internal/common/fsutil"
	"loradex/internal/registry"
	"loradex/internal/sidecar"
	"loradex/pkg/types"
)

// cleanRel normalizes a client-supplied sub-path to slash form without
// leading or trailing separators. Traversal checks happen in fsutil.
func cleanRel(p string) string {
	return strings.Trim(filepath.ToSlash(p), "/")
}

// joinRel appends name to rel without cleaning, so ".." segments still reach
// the traversal check.
func joinRel(rel, name string) string {
	if rel == "" {
		return name
	}
	return rel + "/" + name
}

// plainName rejects names carrying path separators.
func plainName(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidParameters(field + " is required")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return ErrInvalidParameters("invalid " + field)
	}
	return nil
}

// Folders lists the immediate sub-directories of rel.
func (m *Manager) Folders(rel string) (types.FoldersResponse, error) {
	base, err := m.basePath()
	if err != nil {
		return types.FoldersResponse{}, err
	}
	rel = cleanRel(rel)
	res, err := m.scanner.ListFolders(base, rel)
	if err != nil {
		return types.FoldersResponse{}, translate(err, rel)
	}
	return res, nil
}

// LoraFiles scans one folder. search, when set, selects the per-term click bucket.
func (m *Manager) LoraFiles(ctx context.Context, rel, search string) (types.LoraFilesResponse, error) {
	base, err := m.basePath()
	if err != nil {
		return types.LoraFilesResponse{}, err
	}
	rel = cleanRel(rel)
	entries, err := m.scanner.ScanFolder(ctx, registry.Request{
		Base:   base,
		Path:   rel,
		Search: search,
		Clicks: m.ledger.Snapshot(),
	})
	if err != nil {
		return types.LoraFilesResponse{}, translate(err, rel)
	}
	cur := rel
	if cur == "" {
		cur = "/"
	}
	return types.LoraFilesResponse{LoraFiles: entries, CurrentPath: cur}, nil
}

// ScanAll scans the whole tree under the base path.
func (m *Manager) ScanAll(ctx context.Context, search string) (types.LoraFilesResponse, error) {
	base, err := m.basePath()
	if err != nil {
		return types.LoraFilesResponse{}, err
	}
	entries, err := m.scanner.ScanTree(ctx, registry.Request{
		Base:   base,
		Search: search,
		Clicks: m.ledger.Snapshot(),
	})
	if err != nil {
		return types.LoraFilesResponse{}, translate(err, "")
	}
	return types.LoraFilesResponse{LoraFiles: entries}, nil
}

// LoraConfig reads the sidecar of model name in rel. A missing sidecar yields
// the default config.
func (m *Manager) LoraConfig(rel, name string) (types.SidecarConfig, error) {
	base, err := m.basePath()
	if err != nil {
		return types.SidecarConfig{}, err
	}
	if err := plainName("name", name); err != nil {
		return types.SidecarConfig{}, err
	}
	rel = cleanRel(rel)
	dir, err := fsutil.ResolveWithin(base, rel)
	if err != nil {
		return types.SidecarConfig{}, translate(err, rel)
	}
	return m.sidecars.Read(filepath.Join(dir, sidecar.FileName(name))), nil
}

// SaveLoraConfig overwrites the sidecar of req.Name. Missing parent
// directories are created.
func (m *Manager) SaveLoraConfig(req types.LoraConfigRequest) error {
	base, err := m.basePath()
	if err != nil {
		return err
	}
	if err := plainName("name", req.Name); err != nil {
		return err
	}
	rel := joinRel(cleanRel(req.Path), sidecar.FileName(req.Name))
	target, err := fsutil.ResolveForWrite(base, rel)
	if err != nil {
		return translate(err, rel)
	}
	if err := m.sidecars.Write(target, req.Config); err != nil {
		m.log.Error().Str("op", "save_sidecar").Str("path", target).Err(err).Msg("sidecar write failed")
		return err
	}
	m.publisher.Publish(Event{Name: EventSidecarSaved, Subject: rel})
	return nil
}
