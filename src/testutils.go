package acetape

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func AssertOutputContains(t *testing.T, command func(), expectedOutputContains string) {
	t.Helper()

	var oldStdout = os.Stdout
	defer func() {
		os.Stdout = oldStdout
	}()

	var r, w, _ = os.Pipe()
	os.Stdout = w

	// Drain as we go so a chatty command can't fill the pipe and block.
	var output = make(chan []byte)
	go func() {
		var b, _ = io.ReadAll(r)
		output <- b
	}()

	command()

	w.Close() //nolint:gosec

	os.Stdout = oldStdout

	var outputString = string(<-output)

	assert.Contains(t, outputString, expectedOutputContains)
}

// NewTestRecord builds a well formed tape record around body, checksums included.
func NewTestRecord(t *testing.T, name string, fileType byte, body []byte) Record {
	t.Helper()

	require.LessOrEqual(t, len(name), NameLength)
	require.LessOrEqual(t, len(body), 0xffff)

	var header = make([]byte, HeaderLength)
	header[0] = HEADER_BLOCK_TYPE
	header[FileTypeOffset] = fileType
	copy(header[NameOffset:NameOffset+NameLength], bytes.Repeat([]byte{' '}, NameLength))
	copy(header[NameOffset:], name)
	binary.LittleEndian.PutUint16(header[LengthOffset:], uint16(len(body))) //nolint:gosec // Checked above
	header[HeaderLength-1] = xorSum(header[1 : HeaderLength-1])

	var data = make([]byte, 0, len(body)+2)
	data = append(data, DATA_BLOCK_TYPE)
	data = append(data, body...)
	data = append(data, xorSum(body))

	return Record{Header: header, Data: data, Captured: len(data)}
}

func xorSum(p []byte) byte {
	var sum byte
	for _, b := range p {
		sum ^= b
	}

	return sum
}
