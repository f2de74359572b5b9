package junction

import (
	"errors"
	"fmt"
)

// Kind classifies every failure this package can report. Callers are
// expected to branch on it: "does not exist", "exists but access denied" and
// "exists but isn't a junction" are deliberately kept apart.
type Kind int

const (
	// KindIo is the catch-all for OS failures with no more specific class.
	KindIo Kind = iota
	// KindPermissionDenied means access was denied even after the automatic
	// privilege retry. Callers may want to prompt for elevation at this point.
	KindPermissionDenied
	// KindNotFound means the path does not exist.
	KindNotFound
	// KindAlreadyExists means Create was pointed at an existing path.
	KindAlreadyExists
	// KindNotAJunction means the path exists but carries no mount-point
	// reparse data (plain directory, file, symlink, or other reparse type).
	KindNotAJunction
	// KindPathTooLong means the target does not fit in a reparse buffer.
	KindPathTooLong
	// KindInvalidPath means the input path was empty or could not be
	// canonicalized.
	KindInvalidPath
)

func (k Kind) String() string {
	switch k {
	case KindPermissionDenied:
		return "permission denied"
	case KindNotFound:
		return "not found"
	case KindAlreadyExists:
		return "already exists"
	case KindNotAJunction:
		return "not a junction"
	case KindPathTooLong:
		return "path too long"
	case KindInvalidPath:
		return "invalid path"
	default:
		return "i/o error"
	}
}

// ErrUnsupported is wrapped by every operation on platforms without NTFS
// reparse points.
var ErrUnsupported = errors.New("junctions are only supported on Windows")

// Error is the error type returned by all operations in this package.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("junction %s %s: %s", e.Op, e.Path, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func hasKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsPermissionDenied reports whether err means access was denied.
func IsPermissionDenied(err error) bool {
	return hasKind(err, KindPermissionDenied)
}

// IsNotFound reports whether err means the path did not exist.
func IsNotFound(err error) bool {
	return hasKind(err, KindNotFound)
}

// IsAlreadyExists reports whether err means the path was already taken.
func IsAlreadyExists(err error) bool {
	return hasKind(err, KindAlreadyExists)
}

// IsNotAJunction reports whether err means the path exists but is not a
// mount-point reparse point.
func IsNotAJunction(err error) bool {
	return hasKind(err, KindNotAJunction)
}
