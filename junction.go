// Package junction creates, deletes and inspects NTFS junction points.
//
// Junctions (mount-point reparse points) are directory-level redirects: if
// `D:\games` is a junction targeting `E:\archive\games`, then accessing
// `D:\games\payday` really accesses `E:\archive\games\payday`. Unlike
// directory symlinks, creating one does not require elevation in the common
// case, which makes them handy for installers and build tooling.
//
// Only NTFS-style volumes carry reparse points. On non-Windows platforms
// every operation fails with an error wrapping ErrUnsupported.
package junction

// Create makes path a junction pointing at target.
//
// path must not exist yet: it is created as an empty directory first, and
// removed again if turning it into a junction fails, so no inert folder is
// left behind. If path already exists, in whatever form, Create fails with
// KindAlreadyExists and leaves it alone.
//
// target is canonicalized first but does not have to exist; NTFS resolves
// junctions lazily, at traversal time.
func Create(path string, target string) error {
	return createJunction(path, target)
}

// Delete clears the reparse data of the junction at path, leaving an
// ordinary empty directory behind. It fails with KindNotAJunction when path
// is missing, a plain directory or file, or some other kind of reparse
// point, and in those cases changes nothing.
func Delete(path string) error {
	return deleteJunction(path)
}

// Exists reports whether path currently is a junction point. Anything else,
// including "no such path" and "couldn't look", counts as false.
func Exists(path string) bool {
	return junctionExists(path)
}

// GetTarget returns the path the junction at path resolves to, with the NT
// namespace prefix stripped (`\??\C:\dir` comes back as `C:\dir`,
// `\??\UNC\host\share` as `\\host\share`).
func GetTarget(path string) (string, error) {
	return junctionTarget(path)
}
