//go:build windows
// +build windows

package junction

import (
	"errors"
	"syscall"

	"golang.org/x/sys/windows"
)

// mapErrno folds an OS failure into the package taxonomy. The distinctions
// callers branch on ("missing" vs "access denied" vs "wrong type") are all
// decided here.
func mapErrno(op string, path string, err error) error {
	if err == nil {
		return nil
	}
	var alreadyMapped *Error
	if errors.As(err, &alreadyMapped) {
		return err
	}

	kind := KindIo
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case windows.ERROR_ACCESS_DENIED:
			kind = KindPermissionDenied
		case windows.ERROR_FILE_NOT_FOUND, windows.ERROR_PATH_NOT_FOUND:
			kind = KindNotFound
		case windows.ERROR_ALREADY_EXISTS, windows.ERROR_FILE_EXISTS:
			kind = KindAlreadyExists
		case windows.ERROR_NOT_A_REPARSE_POINT,
			windows.ERROR_REPARSE_TAG_INVALID,
			windows.ERROR_REPARSE_TAG_MISMATCH:
			kind = KindNotAJunction
		case windows.ERROR_FILENAME_EXCED_RANGE:
			kind = KindPathTooLong
		case windows.ERROR_INVALID_NAME, windows.ERROR_BAD_PATHNAME, windows.ERROR_DIRECTORY,
			syscall.EINVAL:
			kind = KindInvalidPath
		}
	}

	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}
