package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveWithin joins rel onto base and returns the absolute, symlink-resolved
// path. The result must stay inside the symlink-resolved base; rel may not
// contain ".." segments. A path that does not exist yields ErrNotFound.
func ResolveWithin(base, rel string) (string, error) {
	realBase, joined, err := composeWithin(base, rel)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(joined)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, rel)
		}
		return "", fmt.Errorf("resolve %s: %w", rel, err)
	}
	if !within(realBase, resolved) {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, rel)
	}
	return resolved, nil
}

// ResolveForWrite is ResolveWithin for a target that may not exist yet. The
// deepest existing ancestor is symlink-resolved and checked, and the missing
// tail is appended to it.
func ResolveForWrite(base, rel string) (string, error) {
	realBase, joined, err := composeWithin(base, rel)
	if err != nil {
		return "", err
	}
	existing, tail := joined, ""
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return "", fmt.Errorf("%w: %s", ErrNotFound, rel)
		}
		tail = filepath.Join(filepath.Base(existing), tail)
		existing = parent
	}
	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		// A dangling symlink on the way to the target.
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, rel)
		}
		return "", fmt.Errorf("resolve %s: %w", rel, err)
	}
	if !within(realBase, resolved) {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, rel)
	}
	if tail == "" {
		return resolved, nil
	}
	return filepath.Join(resolved, tail), nil
}

// composeWithin resolves the base and lexically joins rel onto it.
func composeWithin(base, rel string) (realBase, joined string, err error) {
	if base == "" {
		return "", "", fmt.Errorf("%w: empty base", ErrNotFound)
	}
	for _, seg := range strings.FieldsFunc(rel, isSep) {
		if seg == ".." {
			return "", "", fmt.Errorf("%w: %s", ErrPathEscape, rel)
		}
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", "", fmt.Errorf("abs path: %w", err)
	}
	realBase, err = filepath.EvalSymlinks(absBase)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", "", fmt.Errorf("%w: %s", ErrNotFound, base)
		}
		return "", "", fmt.Errorf("resolve base: %w", err)
	}
	joined = filepath.Join(absBase, filepath.FromSlash(strings.TrimLeft(rel, `/\`)))
	if !within(absBase, joined) {
		return "", "", fmt.Errorf("%w: %s", ErrPathEscape, rel)
	}
	return realBase, joined, nil
}

func within(base, p string) bool {
	base = filepath.Clean(base)
	p = filepath.Clean(p)
	return p == base || strings.HasPrefix(p, base+string(filepath.Separator))
}

func isSep(r rune) bool { return r == '/' || r == '\\' }
