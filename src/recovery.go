package acetape

/*------------------------------------------------------------------
 *
 * Purpose:	Pull whole tape records, header then data, out of a
 *		load session.
 *
 * Description:	Keep going until the stream runs out.  A header attempt
 *		that ends before a single byte, say on a glitch in the
 *		pilot, is rejected like any other short header.
 *
 *		A header shorter than 27 bytes, or one whose LENGTH
 *		field leaves no room for data, rejects that attempt
 *		and recovery moves on to the next.  A data block is
 *		delivered however much of it arrived.  Whether the
 *		bytes are any good is for whoever checks the checksum.
 *
 *------------------------------------------------------------------*/

import (
	"github.com/charmbracelet/log"
)

type Record struct {
	Header   []byte
	Data     []byte // Sized from the header LENGTH field.
	Captured int    // How many bytes of Data were actually recovered.
}

// Complete reports whether the whole data block arrived.
func (r Record) Complete() bool {
	return len(r.Header) == HeaderLength && r.Captured == len(r.Data)
}

type Recovery struct {
	decoder  *Decoder
	logger   *log.Logger
	err      error
	done     bool
	rejected int
}

func NewRecovery(decoder *Decoder, logger *log.Logger) *Recovery {
	return &Recovery{
		decoder: decoder,
		logger:  loggerOrDiscard(logger),
	}
}

// Next returns the next record.  False means there are no more, and Err
// says whether that was because of a read failure.
func (r *Recovery) Next() (Record, bool) {
	for !r.done {
		var header = make([]byte, HeaderLength)

		var res = r.decoder.LoadBlock(header)
		if res.Outcome == OutcomeIOFailure {
			r.fail(res.Err)
			return Record{}, false
		}

		if res.Outcome == OutcomeEndOfStream {
			r.done = true

			if res.Count == 0 {
				break
			}
		}

		if res.Count < HeaderLength {
			r.rejected++
			r.logger.Warn("short header", "bytes", res.Count)

			continue
		}

		var size = DataBlockSize(header)
		if size <= 2 {
			r.rejected++
			r.logger.Warn("no data block", "name", FileName(header), "size", size)

			continue
		}

		var rec = Record{
			Header: header,
			Data:   make([]byte, size),
		}

		res = r.decoder.LoadBlock(rec.Data)
		rec.Captured = res.Count

		switch res.Outcome {
		case OutcomeIOFailure:
			r.fail(res.Err)
			return Record{}, false
		case OutcomeEndOfStream:
			r.done = true
		}

		r.logger.Info("record",
			"name", FileName(header), "type", FileTypeName(FileType(header)),
			"size", size, "captured", rec.Captured)

		return rec, true
	}

	return Record{}, false
}

func (r *Recovery) fail(err error) {
	r.done = true
	r.err = err
}

func (r *Recovery) Err() error {
	return r.err
}

// Rejected is the number of header attempts thrown away so far.
func (r *Recovery) Rejected() int {
	return r.rejected
}

// RecoverRecords reads records until the stream runs out.  On a read failure
// the records recovered before it are returned with the error.
func RecoverRecords(decoder *Decoder, logger *log.Logger) ([]Record, error) {
	var recovery = NewRecovery(decoder, logger)
	var records []Record

	for {
		var rec, ok = recovery.Next()
		if !ok {
			break
		}

		records = append(records, rec)
	}

	return records, recovery.Err()
}
