package acetape

import (
	"encoding/binary"
	"strings"
)

// Jupiter Ace tape block layout.  Every block starts with a type byte and
// ends with an XOR checksum.  Checksums are not looked at here.
const (
	HeaderLength = 27

	HEADER_BLOCK_TYPE = 0x00
	DATA_BLOCK_TYPE   = 0xff

	FileTypeOffset = 1
	NameOffset     = 2
	NameLength     = 10
	LengthOffset   = 12
)

const (
	FILE_TYPE_DICT  = 0x00
	FILE_TYPE_BYTES = 0x20
)

// DataBlockSize is the expected size of the data block described by a header,
// type byte and checksum included.  Zero if the header is too short to say.
func DataBlockSize(header []byte) int {
	if len(header) < LengthOffset+2 {
		return 0
	}

	return int(binary.LittleEndian.Uint16(header[LengthOffset:])) + 2
}

func FileType(header []byte) byte {
	if len(header) <= FileTypeOffset {
		return 0
	}

	return header[FileTypeOffset]
}

func FileTypeName(t byte) string {
	switch t {
	case FILE_TYPE_DICT:
		return "dict"
	case FILE_TYPE_BYTES:
		return "bytes"
	default:
		return "unknown"
	}
}

// FileName is the space padded name in a header, trailing spaces removed.
func FileName(header []byte) string {
	if len(header) < NameOffset+NameLength {
		return ""
	}

	return strings.TrimRight(string(header[NameOffset:NameOffset+NameLength]), " ")
}
