package junction

import (
	"encoding/binary"
	"strings"
	"unicode/utf16"

	"github.com/pkg/errors"
)

// Mount point reparse buffer layout, as exchanged with the filesystem driver
// through FSCTL_SET_REPARSE_POINT and friends. Tag value and field layout
// are fixed by the platform; other software inspecting junctions depends on
// them being exact.
//
// See https://learn.microsoft.com/en-us/openspecs/windows_protocols/ms-fscc/ca069dad-ed16-42aa-b057-b6b207f447cc
const (
	reparseTagMountPoint = 0xA0000003

	maximumReparseDataBufferSize = 16 * 1024

	// ReparseTag, ReparseDataLength, Reserved
	reparseDataBufferHeaderSize = 8
	// SubstituteNameOffset, SubstituteNameLength, PrintNameOffset, PrintNameLength
	mountPointHeaderSize = 8
	// ReparseTag, ReparseDataLength, Reserved, ReparseGuid
	reparseGUIDDataBufferHeaderSize = 24

	wcharSize = 2
)

// ntPathPrefix tells NTFS to treat what follows as a non-interpreted path in
// the NT object namespace.
const ntPathPrefix = `\??\`

// ntUNCPrefix is the NT-namespace spelling of a `\\server\share` path.
const ntUNCPrefix = `\??\UNC\`

// JunctionTarget is the decoded payload of a mount-point reparse point.
type JunctionTarget struct {
	// SubstituteName is the NT-namespace path the junction resolves to,
	// e.g. `\??\C:\some\dir`.
	SubstituteName string
	// PrintName is the user-facing spelling, e.g. `C:\some\dir`. Tools that
	// write junctions are not required to fill it in.
	PrintName string
}

// Path returns the substitute name as a regular Win32 path, with the NT
// namespace prefix stripped.
func (jt *JunctionTarget) Path() string {
	switch {
	case strings.HasPrefix(jt.SubstituteName, ntUNCPrefix):
		return `\\` + jt.SubstituteName[len(ntUNCPrefix):]
	case strings.HasPrefix(jt.SubstituteName, ntPathPrefix):
		return jt.SubstituteName[len(ntPathPrefix):]
	}
	return jt.SubstituteName
}

// substituteNameFor converts a canonical absolute path to its NT-namespace
// form, keeping local paths and network shares distinct.
func substituteNameFor(fullPath string) string {
	if strings.HasPrefix(fullPath, `\\`) {
		return ntUNCPrefix + fullPath[2:]
	}
	return ntPathPrefix + fullPath
}

// encodeMountPoint lays out a reparse buffer carrying the given substitute
// and print names, both stored null-terminated. Fails with KindPathTooLong
// when the result would exceed the maximum reparse buffer size.
func encodeMountPoint(substituteName string, printName string) ([]byte, error) {
	sub := utf16.Encode([]rune(substituteName))
	prn := utf16.Encode([]rune(printName))

	subLen := len(sub) * wcharSize
	prnLen := len(prn) * wcharSize
	dataLen := mountPointHeaderSize + subLen + wcharSize + prnLen + wcharSize
	total := reparseDataBufferHeaderSize + dataLen
	if total > maximumReparseDataBufferSize {
		return nil, &Error{
			Kind: KindPathTooLong,
			Op:   "encode",
			Path: printName,
			Err:  errors.Errorf("target needs %d bytes, reparse buffers cap out at %d", total, maximumReparseDataBufferSize),
		}
	}

	buf := make([]byte, total)
	le := binary.LittleEndian
	le.PutUint32(buf[0:], reparseTagMountPoint)
	le.PutUint16(buf[4:], uint16(dataLen))
	// Reserved at buf[6:8] stays zero
	le.PutUint16(buf[8:], 0)
	le.PutUint16(buf[10:], uint16(subLen))
	le.PutUint16(buf[12:], uint16(subLen+wcharSize))
	le.PutUint16(buf[14:], uint16(prnLen))

	off := reparseDataBufferHeaderSize + mountPointHeaderSize
	for _, u := range sub {
		le.PutUint16(buf[off:], u)
		off += wcharSize
	}
	off += wcharSize // UNICODE_NULL
	for _, u := range prn {
		le.PutUint16(buf[off:], u)
		off += wcharSize
	}
	off += wcharSize // UNICODE_NULL

	// A mismatch here is a bug in this function, not bad input.
	if off != total {
		panic("junction: encoded reparse buffer layout is inconsistent")
	}
	return buf, nil
}

// decodeMountPoint parses a raw buffer as received from
// FSCTL_GET_REPARSE_POINT. The buffer's internal offsets and lengths come
// from the kernel but are validated against the actually received byte count
// before every read: a filter driver or a crafted volume can hand back
// anything.
func decodeMountPoint(buf []byte) (*JunctionTarget, error) {
	if len(buf) < reparseDataBufferHeaderSize+mountPointHeaderSize {
		return nil, &Error{
			Kind: KindIo,
			Op:   "decode",
			Err:  errors.Errorf("reparse buffer truncated at %d bytes", len(buf)),
		}
	}

	le := binary.LittleEndian
	if tag := le.Uint32(buf[0:]); tag != reparseTagMountPoint {
		return nil, &Error{
			Kind: KindNotAJunction,
			Op:   "decode",
			Err:  errors.Errorf("reparse tag 0x%08x is not a mount point", tag),
		}
	}

	dataLen := int(le.Uint16(buf[4:]))
	if reparseDataBufferHeaderSize+dataLen > len(buf) {
		return nil, &Error{
			Kind: KindIo,
			Op:   "decode",
			Err:  errors.Errorf("declared data length %d exceeds the %d bytes received", dataLen, len(buf)),
		}
	}
	data := buf[reparseDataBufferHeaderSize : reparseDataBufferHeaderSize+dataLen]
	if len(data) < mountPointHeaderSize {
		return nil, &Error{
			Kind: KindIo,
			Op:   "decode",
			Err:  errors.Errorf("mount point header truncated at %d bytes", len(data)),
		}
	}

	pathBuf := data[mountPointHeaderSize:]
	substituteName, err := decodeName(pathBuf, le.Uint16(data[0:]), le.Uint16(data[2:]), "substitute")
	if err != nil {
		return nil, err
	}
	printName, err := decodeName(pathBuf, le.Uint16(data[4:]), le.Uint16(data[6:]), "print")
	if err != nil {
		return nil, err
	}

	return &JunctionTarget{
		SubstituteName: substituteName,
		PrintName:      printName,
	}, nil
}

// decodeName extracts one UTF-16 string strictly within the declared
// offset/length, never reading past either.
func decodeName(pathBuf []byte, off uint16, length uint16, what string) (string, error) {
	end := int(off) + int(length)
	if off%wcharSize != 0 || length%wcharSize != 0 || end > len(pathBuf) {
		return "", &Error{
			Kind: KindIo,
			Op:   "decode",
			Err:  errors.Errorf("%s name range [%d, %d) escapes a %d-byte path buffer", what, off, end, len(pathBuf)),
		}
	}

	wide := make([]uint16, int(length)/wcharSize)
	for i := range wide {
		wide[i] = binary.LittleEndian.Uint16(pathBuf[int(off)+i*wcharSize:])
	}
	return string(utf16.Decode(wide)), nil
}
