//go:build windows
// +build windows

package junction

import (
	"encoding/binary"
	"os"

	"golang.org/x/sys/windows"
)

// deviceIoControl is the exchange with the filesystem driver. It's a
// variable so tests can fault-inject it.
var deviceIoControl = windows.DeviceIoControl

func createJunction(path string, target string) error {
	const op = "create"

	fullTarget, err := normalizePath(op, target)
	if err != nil {
		return err
	}

	// Creating the directory is also how we find out whether path was ours
	// to begin with: if it already exists (plain directory, junction,
	// anything), the caller owns it and we must not touch it.
	if err := os.Mkdir(path, 0755); err != nil {
		return mapErrno(op, path, err)
	}

	if err := setJunctionTarget(op, path, fullTarget); err != nil {
		// Undo what this call itself did, nothing more. Best effort: the
		// original failure is the interesting one.
		_ = os.Remove(path)
		return err
	}
	return nil
}

func setJunctionTarget(op string, path string, fullTarget string) error {
	buf, err := encodeMountPoint(substituteNameFor(fullTarget), fullTarget)
	if err != nil {
		return err
	}

	h, err := openReparsePoint(op, path, true)
	if err != nil {
		return err
	}
	defer windows.CloseHandle(h)

	var bytesReturned uint32
	err = deviceIoControl(h, windows.FSCTL_SET_REPARSE_POINT,
		&buf[0], uint32(len(buf)), nil, 0, &bytesReturned, nil)
	if err != nil {
		return mapErrno(op, path, err)
	}
	return nil
}

func deleteJunction(path string) error {
	const op = "delete"

	h, err := openReparsePoint(op, path, true)
	if err != nil {
		// A missing path can't be a junction; fold it in with the plain
		// directory and foreign-tag cases so callers get a single answer to
		// "that wasn't a junction".
		if IsNotFound(err) {
			return &Error{Kind: KindNotAJunction, Op: op, Path: path, Err: err}
		}
		return err
	}
	defer windows.CloseHandle(h)

	// Deleting requires passing a REPARSE_GUID_DATA_BUFFER header naming the
	// tag being deleted; a tag mismatch is how the driver tells us the path
	// wasn't a junction after all.
	var rgdb [reparseGUIDDataBufferHeaderSize]byte
	binary.LittleEndian.PutUint32(rgdb[0:], reparseTagMountPoint)

	var bytesReturned uint32
	err = deviceIoControl(h, windows.FSCTL_DELETE_REPARSE_POINT,
		&rgdb[0], uint32(len(rgdb)), nil, 0, &bytesReturned, nil)
	if err != nil {
		return mapErrno(op, path, err)
	}
	return nil
}

func junctionExists(path string) bool {
	_, err := junctionTarget(path)
	return err == nil
}

func junctionTarget(path string) (string, error) {
	const op = "target"

	h, err := openReparsePoint(op, path, false)
	if err != nil {
		return "", err
	}
	defer windows.CloseHandle(h)

	// Allocate the maximum the driver may hand back, then only trust the
	// bytes it actually wrote.
	buf := make([]byte, maximumReparseDataBufferSize)
	var bytesReturned uint32
	err = deviceIoControl(h, windows.FSCTL_GET_REPARSE_POINT,
		nil, 0, &buf[0], uint32(len(buf)), &bytesReturned, nil)
	if err != nil {
		return "", mapErrno(op, path, err)
	}
	if int(bytesReturned) > len(buf) {
		bytesReturned = uint32(len(buf))
	}

	target, err := decodeMountPoint(buf[:bytesReturned])
	if err != nil {
		if e, ok := err.(*Error); ok && e.Path == "" {
			e.Path = path
		}
		return "", err
	}
	return target.Path(), nil
}

// openReparsePoint opens the directory itself (not what it points to) with
// backup semantics. On access denied it retries exactly once with backup
// privileges enabled; if enabling them is what failed, the caller sees the
// original access-denied error.
func openReparsePoint(op string, path string, write bool) (windows.Handle, error) {
	h, err := openHandle(path, write)
	if err == windows.ERROR_ACCESS_DENIED {
		accessDenied := err
		privErr := withBackupPrivileges(write, func() error {
			var openErr error
			h, openErr = openHandle(path, write)
			return openErr
		})
		if privErr == nil {
			err = nil
		} else if elevationFailed(privErr) {
			err = accessDenied
		} else {
			err = privErr
		}
	}
	if err != nil {
		return windows.InvalidHandle, mapErrno(op, path, err)
	}
	return h, nil
}

func openHandle(path string, write bool) (windows.Handle, error) {
	pathp, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return windows.InvalidHandle, err
	}

	var access uint32 = windows.GENERIC_READ
	if write {
		access |= windows.GENERIC_WRITE
	}
	return windows.CreateFile(
		pathp,
		access,
		0, // the operation owns the directory while it holds the handle
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_OPEN_REPARSE_POINT|windows.FILE_FLAG_BACKUP_SEMANTICS,
		0,
	)
}
