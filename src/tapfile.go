package acetape

/*------------------------------------------------------------------
 *
 * Purpose:	Read and write .tap tape images.
 *
 * Description:	A .tap file is the blocks of each record back to back,
 *		each preceded by a 16 bit little endian length.  The
 *		type byte is left out and the length counts everything
 *		after it, checksum included.
 *
 *		    len  header[1:27]  len  data[1:]  len  header ...
 *
 *		The type bytes are put back on the way in.
 *
 *------------------------------------------------------------------*/

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

var ErrNotTap = errors.New("not a tap file")

func readTapBlock(r io.Reader, blockType byte) ([]byte, error) {
	var length uint16
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, err
	}

	var block = make([]byte, int(length)+1)
	block[0] = blockType

	if _, err := io.ReadFull(r, block[1:]); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}

		return nil, err
	}

	return block, nil
}

// ReadTap reads every record in a .tap image.
func ReadTap(r io.Reader) ([]Record, error) {
	var br = bufio.NewReader(r)
	var records []Record

	for {
		var header, err = readTapBlock(br, HEADER_BLOCK_TYPE)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return records, fmt.Errorf("%w: record %d header: %w", ErrNotTap, len(records)+1, err)
		}

		data, err := readTapBlock(br, DATA_BLOCK_TYPE)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}

			return records, fmt.Errorf("%w: record %d data: %w", ErrNotTap, len(records)+1, err)
		}

		records = append(records, Record{Header: header, Data: data, Captured: len(data)})
	}

	if len(records) == 0 {
		return nil, ErrNotTap
	}

	return records, nil
}

func ReadTapFile(path string) ([]Record, error) {
	var f, err = os.Open(path) //nolint:gosec // User-supplied input file from CLI
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadTap(f)
}

func writeTapBlock(w io.Writer, block []byte) error {
	if len(block) == 0 || len(block)-1 > 0xffff {
		return fmt.Errorf("tap block of %d bytes can't be written", len(block))
	}

	if err := binary.Write(w, binary.LittleEndian, uint16(len(block)-1)); err != nil { //nolint:gosec // Range checked above
		return err
	}

	var _, err = w.Write(block[1:])

	return err
}

// WriteTap writes records as a .tap image.
func WriteTap(w io.Writer, records []Record) error {
	var bw = bufio.NewWriter(w)

	for _, r := range records {
		if err := writeTapBlock(bw, r.Header); err != nil {
			return err
		}

		if err := writeTapBlock(bw, r.Data); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func WriteTapFile(path string, records []Record) error {
	var f, err = os.Create(path) //nolint:gosec // User-supplied output file from CLI
	if err != nil {
		return err
	}

	if err := WriteTap(f, records); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
