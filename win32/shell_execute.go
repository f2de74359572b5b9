//go:build windows
// +build windows

// Package win32 wraps the one shell32 call the junction CLI needs for
// relaunching itself elevated.
package win32

import (
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

var (
	modshell32         = windows.NewLazySystemDLL("shell32.dll")
	procShellExecuteEx = modshell32.NewProc("ShellExecuteExW")
)

const (
	seeMaskNoCloseProcess = 0x00000040
	seeMaskNoAsync        = 0x00000100
)

// SHELLEXECUTEINFOW, straight from the win32 API.
type shellExecuteInfo struct {
	cbSize         uint32
	fMask          uint32
	hwnd           windows.Handle
	lpVerb         *uint16
	lpFile         *uint16
	lpParameters   *uint16
	lpDirectory    *uint16
	nShow          int32
	hInstApp       windows.Handle
	lpIDList       uintptr
	lpClass        *uint16
	hkeyClass      windows.Handle
	dwHotKey       uint32
	hIconOrMonitor windows.Handle
	hProcess       windows.Handle
}

// ShellExecuteAndWait runs file through ShellExecuteEx (verb "runas" pops
// the UAC prompt), waits for the spawned process to finish, and returns its
// exit code.
func ShellExecuteAndWait(verb string, file string, parameters string, directory string, show int32) (uint32, error) {
	filep, err := windows.UTF16PtrFromString(file)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	info := &shellExecuteInfo{
		fMask:        seeMaskNoAsync | seeMaskNoCloseProcess,
		lpVerb:       utf16PtrOrNil(verb),
		lpFile:       filep,
		lpParameters: utf16PtrOrNil(parameters),
		lpDirectory:  utf16PtrOrNil(directory),
		nShow:        show,
	}
	info.cbSize = uint32(unsafe.Sizeof(*info))

	ret, _, callErr := procShellExecuteEx.Call(uintptr(unsafe.Pointer(info)))
	if ret == 0 {
		if msg := shellExecuteError(uint32(info.hInstApp)); msg != "" {
			return 0, errors.Errorf("ShellExecuteEx: %s", msg)
		}
		return 0, errors.WithStack(callErr)
	}
	defer windows.CloseHandle(info.hProcess)

	event, err := windows.WaitForSingleObject(info.hProcess, windows.INFINITE)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	if event != windows.WAIT_OBJECT_0 {
		return 0, errors.Errorf("unexpected WaitForSingleObject result %d", event)
	}

	var exitCode uint32
	if err := windows.GetExitCodeProcess(info.hProcess, &exitCode); err != nil {
		return 0, errors.WithStack(err)
	}
	return exitCode, nil
}

func utf16PtrOrNil(s string) *uint16 {
	if s == "" {
		return nil
	}
	p, err := windows.UTF16PtrFromString(s)
	if err != nil {
		return nil
	}
	return p
}

// SE_ERR codes reported through hInstApp when ShellExecuteEx fails.
func shellExecuteError(code uint32) string {
	if code == 0 || code > 32 {
		return ""
	}
	switch code {
	case 2:
		return "the specified file was not found"
	case 3:
		return "the specified path was not found"
	case 5:
		return "the operating system denied access to the specified file"
	case 8:
		return "there was not enough memory to complete the operation"
	case 26:
		return "a sharing violation occurred"
	case 31:
		return "there is no application associated with the given file name extension"
	case 32:
		return "the specified DLL was not found"
	default:
		return "unknown ShellExecuteEx failure"
	}
}
