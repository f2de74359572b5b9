//go:build !windows
// +build !windows

package junction

func createJunction(path string, target string) error {
	return &Error{Kind: KindIo, Op: "create", Path: path, Err: ErrUnsupported}
}

func deleteJunction(path string) error {
	return &Error{Kind: KindIo, Op: "delete", Path: path, Err: ErrUnsupported}
}

func junctionExists(path string) bool {
	return false
}

func junctionTarget(path string) (string, error) {
	return "", &Error{Kind: KindIo, Op: "target", Path: path, Err: ErrUnsupported}
}
