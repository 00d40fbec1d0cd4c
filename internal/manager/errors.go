package manager

import (
	"errors"
	"net/http"

	"loradex/internal/combos"
	"loradex/internal/common/fsutil"
	"loradex/internal/registry"
)

// invalidBasePathError signals a missing or absent base directory.
type invalidBasePathError struct{ path string }

func (e invalidBasePathError) Error() string {
	if e.path == "" {
		return "invalid base path: not configured"
	}
	return "invalid base path: " + e.path
}

func (e invalidBasePathError) StatusCode() int { return http.StatusNotFound }

// ErrInvalidBasePath returns an error for an unusable base directory.
func ErrInvalidBasePath(path string) error { return invalidBasePathError{path: path} }

// IsInvalidBasePath reports whether err indicates an unusable base directory.
func IsInvalidBasePath(err error) bool {
	var e invalidBasePathError
	return errors.As(err, &e)
}

type pathNotFoundError struct{ path string }

func (e pathNotFoundError) Error() string { return "path not found: " + e.path }
func (e pathNotFoundError) StatusCode() int { return http.StatusNotFound }

// ErrPathNotFound returns an error for a path that does not exist under the base.
func ErrPathNotFound(path string) error { return pathNotFoundError{path: path} }

// IsPathNotFound reports whether err indicates a missing path.
func IsPathNotFound(err error) bool {
	var e pathNotFoundError
	return errors.As(err, &e)
}

// pathEscapeError signals a traversal attempt; mapped to 403.
type pathEscapeError struct{ path string }

func (e pathEscapeError) Error() string { return "access denied: " + e.path }
func (e pathEscapeError) StatusCode() int { return http.StatusForbidden }

// ErrPathEscape returns an error for a path resolving outside the base.
func ErrPathEscape(path string) error { return pathEscapeError{path: path} }

// IsPathEscape reports whether err indicates a traversal attempt.
func IsPathEscape(err error) bool {
	var e pathEscapeError
	return errors.As(err, &e)
}

type invalidParametersError struct{ msg string }

func (e invalidParametersError) Error() string { return e.msg }
func (e invalidParametersError) StatusCode() int { return http.StatusBadRequest }

// ErrInvalidParameters returns a validation error with msg as the client message.
func ErrInvalidParameters(msg string) error { return invalidParametersError{msg: msg} }

// IsInvalidParameters reports whether err is a request validation failure.
func IsInvalidParameters(err error) bool {
	var e invalidParametersError
	return errors.As(err, &e)
}

type combinationNotFoundError struct{ id string }

func (e combinationNotFoundError) Error() string { return "combination not found: " + e.id }
func (e combinationNotFoundError) StatusCode() int { return http.StatusNotFound }

// ErrCombinationNotFound returns an error for an unknown combination id or preview.
func ErrCombinationNotFound(id string) error { return combinationNotFoundError{id: id} }

// IsCombinationNotFound reports whether err indicates an unknown combination.
func IsCombinationNotFound(err error) bool {
	var e combinationNotFoundError
	return errors.As(err, &e)
}

// lastPreviewError is a policy rejection, not a fault; mapped to 409.
type lastPreviewError struct{ id string }

func (e lastPreviewError) Error() string {
	return "cannot delete the last preview of combination " + e.id
}
func (e lastPreviewError) StatusCode() int { return http.StatusConflict }

// ErrLastPreviewDeleteRejected returns the rejection for removing the final preview.
func ErrLastPreviewDeleteRejected(id string) error { return lastPreviewError{id: id} }

// IsLastPreviewDeleteRejected reports whether err is the last-preview rejection.
func IsLastPreviewDeleteRejected(err error) bool {
	var e lastPreviewError
	return errors.As(err, &e)
}

// translate maps sentinel errors from lower packages onto the taxonomy above.
// Anything unrecognised is returned unchanged and surfaces as a 500.
func translate(err error, path string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fsutil.ErrPathEscape):
		return ErrPathEscape(path)
	case errors.Is(err, fsutil.ErrNotFound):
		return ErrPathNotFound(path)
	case errors.Is(err, registry.ErrInvalidName), errors.Is(err, combos.ErrInvalidPreview),
		errors.Is(err, combos.ErrReservedField):
		return ErrInvalidParameters(err.Error())
	case errors.Is(err, combos.ErrLastPreview):
		return ErrLastPreviewDeleteRejected(path)
	case errors.Is(err, combos.ErrNotFound), errors.Is(err, combos.ErrPreviewNotFound):
		return ErrCombinationNotFound(path)
	}
	return err
}
