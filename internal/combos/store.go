// Package combos stores named groups of model files ("combinations"). Each
// combination is a directory named by its id holding config.json and its
// preview images.
package combos

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"loradex/internal/common/fsutil"
	"loradex/pkg/types"
)

// DirName is the reserved sub-directory of the base path holding combinations.
const DirName = "lora_combinations"

// ConfigFile is the per-combination config document.
const ConfigFile = "config.json"

var (
	ErrNotFound        = errors.New("combination not found")
	ErrPreviewNotFound = errors.New("combination preview not found")
	ErrLastPreview     = errors.New("cannot delete the last preview of a combination")
	ErrInvalidPreview  = errors.New("preview is not a supported image")
	ErrReservedField   = errors.New("combination field is reserved")
)

// ReservedFields are filled in by List and Get and cannot be stored by callers.
var ReservedFields = []string{"preview_path", "previews"}

var previewName = regexp.MustCompile(`^preview(?:_(\d+))?\.(png|jpg|webp)$`)

var imageExt = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// PreviewRef is the API reference of a combination preview.
func PreviewRef(id, file string) string {
	return "/combinations/" + url.PathEscape(id) + "/previews/" + url.PathEscape(file)
}

// Store manages combinations under one root directory.
type Store struct {
	root  string
	log   zerolog.Logger
	now   func() time.Time
	newID func() string
}

// NewStore returns a Store rooted at root. The directory is created lazily.
func NewStore(root string, l zerolog.Logger) *Store {
	return &Store{root: root, log: l, now: time.Now, newID: uuid.NewString}
}

// Root returns the storage directory.
func (s *Store) Root() string { return s.root }

// Create stores a new combination. Caller fields are kept verbatim except
// the store-owned "id" and "created_at", which are overwritten. Fields named
// in ReservedFields are rejected with ErrReservedField.
func (s *Store) Create(fields map[string]any) (types.Combination, error) {
	for _, k := range ReservedFields {
		if _, ok := fields[k]; ok {
			return types.Combination{}, fmt.Errorf("%w: %s", ErrReservedField, k)
		}
	}
	c := types.Combination{
		ID:        s.newID(),
		CreatedAt: s.now().Unix(),
		Fields:    make(map[string]any, len(fields)),
	}
	for k, v := range fields {
		if k == "id" || k == "created_at" {
			continue
		}
		c.Fields[k] = v
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return types.Combination{}, fmt.Errorf("encode combination: %w", err)
	}
	dir := filepath.Join(s.root, c.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return types.Combination{}, fmt.Errorf("create combination dir: %w", err)
	}
	if err := fsutil.WriteFileAtomic(filepath.Join(dir, ConfigFile), b, 0o644); err != nil {
		_ = os.RemoveAll(dir)
		return types.Combination{}, err
	}
	s.log.Info().Str("op", "create_combination").Str("id", c.ID).Msg("combination created")
	return c, nil
}

// List returns every combination with a parsable config, with its previews
// attached. Directories without one are skipped.
func (s *Store) List() ([]types.Combination, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []types.Combination{}, nil
		}
		return nil, fmt.Errorf("read combinations dir: %w", err)
	}
	out := make([]types.Combination, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		c, err := s.load(e.Name())
		if err != nil {
			s.log.Warn().Str("op", "list_combinations").Str("id", e.Name()).Err(err).Msg("skipping combination")
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Get returns one combination with its previews attached.
func (s *Store) Get(id string) (types.Combination, error) {
	dir, err := s.dir(id)
	if err != nil {
		return types.Combination{}, err
	}
	c, err := s.load(filepath.Base(dir))
	if err != nil {
		return types.Combination{}, fmt.Errorf("%w: %s: %v", ErrNotFound, id, err)
	}
	return c, nil
}

// Previews returns the preview file names of id in index order.
func (s *Store) Previews(id string) ([]string, error) {
	dir, err := s.dir(id)
	if err != nil {
		return nil, err
	}
	return listPreviews(dir)
}

// PreviewPath returns the filesystem path of one preview.
func (s *Store) PreviewPath(id, file string) (string, error) {
	dir, err := s.dir(id)
	if err != nil {
		return "", err
	}
	if filepath.Base(file) != file || !previewName.MatchString(file) {
		return "", fmt.Errorf("%w: %s", ErrPreviewNotFound, file)
	}
	p := filepath.Join(dir, file)
	if !fsutil.PathExists(p) {
		return "", fmt.Errorf("%w: %s", ErrPreviewNotFound, file)
	}
	return p, nil
}

// AddPreview stores data as the next preview of id: "preview.<ext>" first,
// then "preview_<n>.<ext>" with n one past the highest existing index.
func (s *Store) AddPreview(id string, data []byte) (string, error) {
	dir, err := s.dir(id)
	if err != nil {
		return "", err
	}
	ext, ok := imageExt[http.DetectContentType(data)]
	if !ok {
		return "", ErrInvalidPreview
	}
	existing, err := listPreviews(dir)
	if err != nil {
		return "", err
	}
	name := "preview" + ext
	if len(existing) > 0 {
		next := 0
		for _, f := range existing {
			if n := previewIndex(f); n >= next {
				next = n + 1
			}
		}
		name = "preview_" + strconv.Itoa(next) + ext
	}
	if err := fsutil.WriteFileAtomic(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", err
	}
	s.log.Info().Str("op", "add_combination_preview").Str("id", id).Str("file", name).Msg("preview added")
	return name, nil
}

// RemovePreview deletes one preview. The last remaining preview is kept and
// ErrLastPreview is returned.
func (s *Store) RemovePreview(id, file string) error {
	p, err := s.PreviewPath(id, file)
	if err != nil {
		return err
	}
	existing, err := listPreviews(filepath.Dir(p))
	if err != nil {
		return err
	}
	if len(existing) <= 1 {
		return ErrLastPreview
	}
	if err := os.Remove(p); err != nil {
		return fmt.Errorf("remove preview: %w", err)
	}
	s.log.Info().Str("op", "remove_combination_preview").Str("id", id).Str("file", file).Msg("preview removed")
	return nil
}

// Delete removes the combination directory and everything in it.
func (s *Store) Delete(id string) error {
	dir, err := s.dir(id)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove combination: %w", err)
	}
	s.log.Info().Str("op", "delete_combination").Str("id", id).Msg("combination deleted")
	return nil
}

// dir validates id and returns its existing directory.
func (s *Store) dir(id string) (string, error) {
	if err := uuid.Validate(id); err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	dir := filepath.Join(s.root, id)
	if !fsutil.IsDir(dir) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return dir, nil
}

func (s *Store) load(name string) (types.Combination, error) {
	dir := filepath.Join(s.root, name)
	b, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	if err != nil {
		return types.Combination{}, err
	}
	var c types.Combination
	if err := json.Unmarshal(b, &c); err != nil {
		return types.Combination{}, fmt.Errorf("parse %s: %w", ConfigFile, err)
	}
	if c.ID == "" {
		c.ID = name
	}
	previews, err := listPreviews(dir)
	if err != nil {
		return types.Combination{}, err
	}
	c.Previews = previews
	if len(previews) > 0 {
		ref := PreviewRef(c.ID, previews[0])
		c.PreviewPath = &ref
	}
	return c, nil
}

// listPreviews returns preview file names sorted by index; the bare
// "preview.<ext>" sorts first.
func listPreviews(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read combination dir: %w", err)
	}
	out := []string{}
	for _, e := range entries {
		if !e.IsDir() && previewName.MatchString(e.Name()) {
			out = append(out, e.Name())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return previewIndex(out[i]) < previewIndex(out[j]) })
	return out, nil
}

// previewIndex returns the numeric suffix of a preview name, 0 for the bare name.
func previewIndex(name string) int {
	m := previewName.FindStringSubmatch(name)
	if m == nil || m[1] == "" {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
