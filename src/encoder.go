package acetape

/*------------------------------------------------------------------
 *
 * Purpose:	Turn tape records into a PCM byte stream.
 *
 * Description:	A save session looks like this on tape:
 *
 *		    leading silence
 *		    for each record:
 *			header pilot, sync, header bytes, end mark
 *			data pilot, sync, data bytes, end mark
 *		    trailing silence
 *
 *		Bytes go out most significant bit first.  Output is
 *		raw PCM only.  Wrapping it in an audio file container
 *		is somebody else's job; Written() tells them how much
 *		there was.
 *
 *------------------------------------------------------------------*/

import (
	"bufio"
	"bytes"
	"io"

	"github.com/charmbracelet/log"
)

type Encoder struct {
	stream  io.Writer
	sent    *countingWriter
	out     *bufio.Writer
	timing  PulseTiming
	tables  waveTables
	logger  *log.Logger
	started bool
	closed  bool
	err     error
}

// countingWriter sits under the buffer and counts what the stream accepted.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	var n, err = c.w.Write(p)
	c.n += int64(n)

	return n, err
}

// NewEncoder checks the configuration and renders the wave tables.  Nothing is
// written to w until the first record.
//
// The encoder owns w from here on.  If w is an io.Closer it is closed by Close.
func NewEncoder(w io.Writer, cfg Config, logger *log.Logger) (*Encoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var timing, err = NewPulseTiming(cfg.SampleRate)
	if err != nil {
		return nil, err
	}

	logger = loggerOrDiscard(logger)

	if timing.Ambiguous() {
		logger.Warn("pulse widths overlap at this sample rate, tapes may not load reliably", "rate", cfg.SampleRate)
	}

	logger.Debug("encoder ready",
		"rate", cfg.SampleRate, "bits", cfg.BitsPerSample, "channels", cfg.Channels,
		"volume", cfg.VolumePercent, "pilot", timing.Pilot, "sync", timing.Sync,
		"bit0", timing.Bit0, "bit1", timing.Bit1)

	var sent = &countingWriter{w: w}

	return &Encoder{
		stream: w,
		sent:   sent,
		out:    bufio.NewWriterSize(sent, 64*1024),
		timing: timing,
		tables: newWaveTables(timing, cfg),
		logger: logger,
	}, nil
}

func (e *Encoder) Timing() PulseTiming {
	return e.timing
}

// Written is the number of PCM bytes emitted so far.  Bytes still waiting in
// the output buffer are included until a write fails.  After that it is only
// what the stream actually took.
func (e *Encoder) Written() int64 {
	if e.err != nil {
		return e.sent.n
	}

	return e.sent.n + int64(e.out.Buffered())
}

func (e *Encoder) put(table WaveTable) {
	if e.err != nil {
		return
	}

	if _, err := e.out.Write(table); err != nil {
		e.err = &StreamError{Op: "write audio", Err: err}
	}
}

func (e *Encoder) putByte(b byte) {
	for range 8 {
		if b&0x80 != 0 {
			e.put(e.tables.bit1)
		} else {
			e.put(e.tables.bit0)
		}

		b <<= 1
	}
}

func (e *Encoder) begin() {
	if !e.started {
		e.started = true
		e.put(e.tables.silence)
	}
}

// WriteBlock sends pilotCycles cycles of pilot tone, then a sync cycle, the
// block, and an end mark.
func (e *Encoder) WriteBlock(pilotCycles int, block []byte) error {
	if e.closed {
		return ErrSessionClosed
	}

	e.begin()

	for range pilotCycles {
		e.put(e.tables.pilot)
	}

	e.put(e.tables.sync)

	for _, b := range block {
		e.putByte(b)
	}

	e.put(e.tables.endMark)

	e.logger.Debug("block written", "pilot", pilotCycles, "bytes", len(block), "total", e.Written())

	return e.err
}

// WriteRecord sends one tape record: header block then data block.
// Both blocks are sent exactly as given, type tag and checksum included.
func (e *Encoder) WriteRecord(header []byte, data []byte) error {
	if err := e.WriteBlock(HEADER_PILOT_CYCLES, header); err != nil {
		return err
	}

	return e.WriteBlock(DATA_PILOT_CYCLES, data)
}

// Close writes the trailing silence, flushes, and closes the stream.
// It is safe to call more than once.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}

	e.begin()
	e.put(e.tables.silence)
	e.closed = true

	if e.err == nil {
		if err := e.out.Flush(); err != nil {
			e.err = &StreamError{Op: "flush audio", Err: err}
		}
	}

	if c, ok := e.stream.(io.Closer); ok {
		if err := c.Close(); err != nil && e.err == nil {
			e.err = &StreamError{Op: "close audio", Err: err}
		}
	}

	e.logger.Debug("encoder closed", "total", e.Written())

	return e.err
}

// Encode renders a whole save session in memory.
// The same configuration and records always give the same bytes.
func Encode(cfg Config, records []Record) ([]byte, error) {
	var buf bytes.Buffer

	var enc, err = NewEncoder(&buf, cfg, nil)
	if err != nil {
		return nil, err
	}

	for _, r := range records {
		if err := enc.WriteRecord(r.Header, r.Data); err != nil {
			return nil, err
		}
	}

	if err := enc.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
