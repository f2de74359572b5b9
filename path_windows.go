//go:build windows
// +build windows

package junction

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// normalizePath resolves a caller-supplied path into the canonical absolute
// form the reparse API wants. The low-level calls are pickier than Win32
// proper: forward slashes are not path separators there, and relative
// components are not resolved.
func normalizePath(op string, path string) (string, error) {
	if path == "" {
		return "", &Error{
			Kind: KindInvalidPath,
			Op:   op,
			Path: path,
			Err:  errors.New("empty path"),
		}
	}

	fullPath, err := windows.FullPath(path)
	if err != nil {
		return "", &Error{Kind: KindInvalidPath, Op: op, Path: path, Err: err}
	}
	return fullPath, nil
}
