package fsys

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Error kinds. Every error returned by Local wraps exactly one of them.
var (
	ErrNotFound   = errors.New("not found")
	ErrPermission = errors.New("permission denied")
	ErrExist      = errors.New("already exists")
	ErrIO         = errors.New("i/o failure")
)

// PathError records a failed primitive, the path it ran on and the error kind.
type PathError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes both the kind and the underlying OS error, so errors.Is
// matches ErrNotFound as well as fs.ErrNotExist.
func (e *PathError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Wrap classifies err and attaches op and path. A nil err stays nil and an
// err that already is a *PathError is returned unchanged.
func Wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PathError
	if errors.As(err, &pe) {
		return err
	}

	// Strip the os wrappers; Op and Path are carried by PathError itself.
	var ope *fs.PathError
	var le *os.LinkError
	switch {
	case errors.As(err, &ope):
		err = ope.Err
	case errors.As(err, &le):
		err = le.Err
	}
	return &PathError{Op: op, Path: path, Kind: KindOf(err), Err: err}
}

// KindOf maps an error onto one of the error kinds. Anything unrecognised,
// including ENOTEMPTY and ENOTDIR, is ErrIO.
func KindOf(err error) error {
	if kind, ok := errnoKind(err); ok {
		return kind
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, ErrPermission), errors.Is(err, fs.ErrPermission):
		return ErrPermission
	case errors.Is(err, ErrExist), errors.Is(err, fs.ErrExist):
		return ErrExist
	default:
		return ErrIO
	}
}
