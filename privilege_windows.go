//go:build windows
// +build windows

package junction

import (
	"sync"

	"github.com/Microsoft/go-winio"
)

// Token privilege state is shared across the whole process, so two
// elevation attempts must never overlap: one goroutine reverting while
// another still depends on the privilege would corrupt both.
var privilegeLock sync.Mutex

// withBackupPrivileges runs fn with SeBackupPrivilege (and, for writes,
// SeRestorePrivilege) enabled on the calling thread, reverting them when fn
// returns, whatever the outcome. SeRestorePrivilege bypasses arbitrary file
// ACLs, so this is only ever called after an unprivileged attempt has
// already failed with access denied, and held no longer than the single
// retry.
func withBackupPrivileges(write bool, fn func() error) error {
	privileges := []string{winio.SeBackupPrivilege}
	if write {
		privileges = append(privileges, winio.SeRestorePrivilege)
	}

	privilegeLock.Lock()
	defer privilegeLock.Unlock()
	return winio.RunWithPrivileges(privileges, fn)
}

// elevationFailed tells an "enabling the privilege didn't work" error apart
// from fn's own errors: in that case the caller should report its original
// access-denied failure, not the elevation one.
func elevationFailed(err error) bool {
	_, ok := err.(*winio.PrivilegeError)
	return ok
}
