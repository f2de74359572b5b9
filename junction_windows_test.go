//go:build windows
// +build windows

package junction

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows"
)

func Test_CreateResolveDelete(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "real")
	link := filepath.Join(tmp, "link")

	require.NoError(t, os.Mkdir(target, 0755))
	canary := filepath.Join(target, "canary")
	require.NoError(t, os.WriteFile(canary, []byte("foo"), 0644))

	assert.False(t, Exists(link))

	require.NoError(t, Create(link, target))
	assert.True(t, Exists(link))

	resolved, err := GetTarget(link)
	require.NoError(t, err)
	assert.EqualValues(t, target, resolved)

	// traversal through the junction reaches the target's contents
	_, err = os.Stat(filepath.Join(link, "canary"))
	require.NoError(t, err)

	require.NoError(t, Delete(link))
	assert.False(t, Exists(link))

	// the directory entry survives as a plain empty directory
	fi, err := os.Lstat(link)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
	_, err = os.Stat(filepath.Join(link, "canary"))
	assert.True(t, os.IsNotExist(err))
}

func Test_CreateResolvesRelativeTargets(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "real")
	link := filepath.Join(tmp, "link")
	require.NoError(t, os.Mkdir(target, 0755))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmp))
	defer os.Chdir(wd)

	require.NoError(t, Create(link, "real"))

	resolved, err := GetTarget(link)
	require.NoError(t, err)
	assert.EqualValues(t, target, resolved)
}

func Test_CreateThenMkdirAllThrough(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "target")
	link := filepath.Join(tmp, "link")
	require.NoError(t, os.MkdirAll(target, 0755))

	require.NoError(t, Create(link, target))
	require.NoError(t, os.MkdirAll(filepath.Join(link, "a", "b"), 0755))

	// created through the junction, so really created in the target
	_, err := os.Stat(filepath.Join(target, "a", "b"))
	require.NoError(t, err)
}

func Test_CreateAlreadyExists(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "target")
	require.NoError(t, os.Mkdir(target, 0755))

	// pre-existing plain directory
	link := filepath.Join(tmp, "link")
	require.NoError(t, os.Mkdir(link, 0755))
	canary := filepath.Join(link, "canary")
	require.NoError(t, os.WriteFile(canary, []byte("foo"), 0644))

	err := Create(link, target)
	require.Error(t, err)
	assert.True(t, IsAlreadyExists(err))

	// and it was left alone
	_, err = os.Stat(canary)
	require.NoError(t, err)

	// pre-existing junction
	link2 := filepath.Join(tmp, "link2")
	require.NoError(t, Create(link2, target))
	err = Create(link2, target)
	require.Error(t, err)
	assert.True(t, IsAlreadyExists(err))
	assert.True(t, Exists(link2))
}

func Test_CreateTargetMayNotExistYet(t *testing.T) {
	// NTFS resolves junctions at traversal time, so a dangling target is fine
	tmp := t.TempDir()
	link := filepath.Join(tmp, "link")
	target := filepath.Join(tmp, "not-there-yet")

	require.NoError(t, Create(link, target))
	assert.True(t, Exists(link))

	resolved, err := GetTarget(link)
	require.NoError(t, err)
	assert.EqualValues(t, target, resolved)
}

func Test_CreateRollsBackOnExchangeFailure(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "target")
	link := filepath.Join(tmp, "link")
	require.NoError(t, os.Mkdir(target, 0755))

	prev := deviceIoControl
	deviceIoControl = func(handle windows.Handle, ioControlCode uint32, inBuffer *byte, inBufferSize uint32, outBuffer *byte, outBufferSize uint32, bytesReturned *uint32, overlapped *windows.Overlapped) error {
		return windows.ERROR_NOT_SUPPORTED
	}
	defer func() { deviceIoControl = prev }()

	err := Create(link, target)
	require.Error(t, err)

	// the directory this call created must be gone again
	_, statErr := os.Lstat(link)
	assert.True(t, os.IsNotExist(statErr))
}

func Test_CreateRollsBackOnOversizedTarget(t *testing.T) {
	tmp := t.TempDir()
	link := filepath.Join(tmp, "link")
	// canonicalizes fine, but doesn't fit a reparse buffer
	target := `C:\` + strings.Repeat("a", maximumReparseDataBufferSize)

	err := Create(link, target)
	require.Error(t, err)

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.EqualValues(t, KindPathTooLong, e.Kind)

	_, statErr := os.Lstat(link)
	assert.True(t, os.IsNotExist(statErr))
}

func Test_CreateNeverRollsBackPreexistingDirs(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "target")
	link := filepath.Join(tmp, "link")
	require.NoError(t, os.Mkdir(target, 0755))
	require.NoError(t, os.Mkdir(link, 0755))

	prev := deviceIoControl
	deviceIoControl = func(handle windows.Handle, ioControlCode uint32, inBuffer *byte, inBufferSize uint32, outBuffer *byte, outBufferSize uint32, bytesReturned *uint32, overlapped *windows.Overlapped) error {
		return windows.ERROR_NOT_SUPPORTED
	}
	defer func() { deviceIoControl = prev }()

	err := Create(link, target)
	require.Error(t, err)
	assert.True(t, IsAlreadyExists(err))

	// the caller's directory is untouched: create never got that far
	fi, statErr := os.Lstat(link)
	require.NoError(t, statErr)
	assert.True(t, fi.IsDir())
}

func Test_DeleteNonJunctions(t *testing.T) {
	tmp := t.TempDir()

	// missing path
	err := Delete(filepath.Join(tmp, "not-there"))
	require.Error(t, err)
	assert.True(t, IsNotAJunction(err))

	// plain directory
	dir := filepath.Join(tmp, "plain")
	require.NoError(t, os.Mkdir(dir, 0755))
	err = Delete(dir)
	require.Error(t, err)
	assert.True(t, IsNotAJunction(err))
	_, statErr := os.Lstat(dir)
	require.NoError(t, statErr)

	// regular file
	file := filepath.Join(tmp, "file")
	require.NoError(t, os.WriteFile(file, []byte("foo"), 0644))
	err = Delete(file)
	require.Error(t, err)
	assert.True(t, IsNotAJunction(err))
}

func Test_DeleteTwiceIsSafe(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "target")
	link := filepath.Join(tmp, "link")
	require.NoError(t, os.Mkdir(target, 0755))

	require.NoError(t, Create(link, target))
	require.NoError(t, Delete(link))

	// second delete sees a plain directory and fails cleanly
	err := Delete(link)
	require.Error(t, err)
	assert.True(t, IsNotAJunction(err))

	fi, statErr := os.Lstat(link)
	require.NoError(t, statErr)
	assert.True(t, fi.IsDir())
}

func Test_ExistsCollapsesFailures(t *testing.T) {
	tmp := t.TempDir()

	assert.False(t, Exists(filepath.Join(tmp, "missing")))

	dir := filepath.Join(tmp, "plain")
	require.NoError(t, os.Mkdir(dir, 0755))
	assert.False(t, Exists(dir))

	file := filepath.Join(tmp, "file")
	require.NoError(t, os.WriteFile(file, []byte("foo"), 0644))
	assert.False(t, Exists(file))
}

func Test_GetTargetPropagatesFailures(t *testing.T) {
	tmp := t.TempDir()

	_, err := GetTarget(filepath.Join(tmp, "missing"))
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	dir := filepath.Join(tmp, "plain")
	require.NoError(t, os.Mkdir(dir, 0755))
	_, err = GetTarget(dir)
	require.Error(t, err)
	assert.True(t, IsNotAJunction(err))
}

func Test_CreateEmptyTarget(t *testing.T) {
	tmp := t.TempDir()
	link := filepath.Join(tmp, "link")

	err := Create(link, "")
	require.Error(t, err)

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.EqualValues(t, KindInvalidPath, e.Kind)

	// normalization failed before anything was created
	_, statErr := os.Lstat(link)
	assert.True(t, os.IsNotExist(statErr))
}
