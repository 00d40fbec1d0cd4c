package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"loradex/internal/common/fsutil"
)

// ErrInvalidName reports a model or preview name that is not a plain file name.
var ErrInvalidName = errors.New("invalid file name")

// ListPreviews returns the references of every preview of model name in rel:
// "<name>.png" and "<name>_<n>.png", sorted by reference.
func ListPreviews(base, rel, name string) ([]string, error) {
	if err := plainName(name); err != nil {
		return nil, err
	}
	rel = strings.Trim(filepath.ToSlash(rel), "/")
	dir, err := fsutil.ResolveWithin(base, rel)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	re := regexp.MustCompile(`^` + regexp.QuoteMeta(name) + `(_\d+)?` + regexp.QuoteMeta(PreviewExt) + `$`)
	out := []string{}
	for _, e := range entries {
		if !e.IsDir() && re.MatchString(e.Name()) {
			out = append(out, PreviewRef(rel, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// SavePreview stores data as "<name>_<n>.png" in rel, where n is one more than
// the number of numbered previews already present, skipping names in use.
func SavePreview(base, rel, name string, data []byte) (string, error) {
	if err := plainName(name); err != nil {
		return "", err
	}
	rel = strings.Trim(filepath.ToSlash(rel), "/")
	dir, err := fsutil.ResolveWithin(base, rel)
	if err != nil {
		return "", err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read dir: %w", err)
	}
	re := numberedPreview(name)
	n := 1
	for _, e := range entries {
		if re.MatchString(e.Name()) {
			n++
		}
	}
	file := name + "_" + strconv.Itoa(n) + PreviewExt
	for fsutil.PathExists(filepath.Join(dir, file)) {
		n++
		file = name + "_" + strconv.Itoa(n) + PreviewExt
	}
	if err := fsutil.WriteFileAtomic(filepath.Join(dir, file), data, 0o644); err != nil {
		return "", err
	}
	return file, nil
}

// SwapPreview makes file the primary preview "<name>.png". The previous
// primary, if any, takes file's name.
func SwapPreview(base, rel, name, file string) error {
	if err := plainName(name); err != nil {
		return err
	}
	if err := plainName(file); err != nil {
		return err
	}
	if !numberedPreview(name).MatchString(file) {
		return fmt.Errorf("%w: %s is not a preview of %s", ErrInvalidName, file, name)
	}
	rel = strings.Trim(filepath.ToSlash(rel), "/")
	dir, err := fsutil.ResolveWithin(base, rel)
	if err != nil {
		return err
	}
	src := filepath.Join(dir, file)
	if !fsutil.PathExists(src) {
		return fmt.Errorf("%w: %s", fsutil.ErrNotFound, file)
	}
	primary := filepath.Join(dir, name+PreviewExt)
	if !fsutil.PathExists(primary) {
		return os.Rename(src, primary)
	}
	tmp := filepath.Join(dir, ".swap-"+file)
	if err := os.Rename(primary, tmp); err != nil {
		return fmt.Errorf("stage primary: %w", err)
	}
	if err := os.Rename(src, primary); err != nil {
		_ = os.Rename(tmp, primary)
		return fmt.Errorf("promote preview: %w", err)
	}
	if err := os.Rename(tmp, src); err != nil {
		return fmt.Errorf("demote primary: %w", err)
	}
	return nil
}

func numberedPreview(name string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(name) + `_\d+` + regexp.QuoteMeta(PreviewExt) + `$`)
}

func plainName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
