package acetape

import (
	"bufio"
	"errors"
	"io"
)

// SampleSource yields one normalized sample per call, -1.0 .. +1.0.
// It returns io.EOF once the stream is exhausted.
type SampleSource interface {
	Next() (float64, error)
}

/*------------------------------------------------------------------
 *
 * Name:	SampleStream
 *
 * Purpose:	Turn raw little endian PCM frames into a single
 *		normalized level.
 *
 * Description:	Mono input is treated as if both channels carried the
 *		same signal, so left, right and mix all give the same
 *		answer.  A partial frame at the end of the stream counts
 *		as end of stream.
 *
 *------------------------------------------------------------------*/

type SampleStream struct {
	reader        *bufio.Reader
	frame         []byte
	bitsPerSample int
	channels      int
	channelSelect ChannelSelect
	filter        *NoiseFilter // nil when filtering is off
	levels        AudioLevels
}

func NewSampleStream(r io.Reader, cfg Config) *SampleStream {
	var s = &SampleStream{
		reader:        bufio.NewReaderSize(r, 64*1024),
		frame:         make([]byte, cfg.FrameBytes()),
		bitsPerSample: cfg.BitsPerSample,
		channels:      cfg.Channels,
		channelSelect: cfg.ChannelSelect,
	}

	if cfg.FilterEnabled {
		var order = cfg.FilterOrder
		if order == 0 {
			order = FilterOrderForRate(cfg.SampleRate)
		}

		s.filter = NewNoiseFilter(order)
	}

	return s
}

func (s *SampleStream) Next() (float64, error) {
	var _, err = io.ReadFull(s.reader, s.frame)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, io.EOF
		}

		return 0, &StreamError{Op: "read sample", Err: err}
	}

	var bytesPerSample = s.bitsPerSample / 8
	var left = decodeSample(s.frame, s.bitsPerSample)
	var right = left

	if s.channels == 2 {
		right = decodeSample(s.frame[bytesPerSample:], s.bitsPerSample)
	}

	var x float64

	switch s.channelSelect {
	case ChannelLeft:
		x = left
	case ChannelRight:
		x = right
	default:
		x = (left + right) / 2
	}

	s.levels.add(x)

	if s.filter != nil {
		x = s.filter.Filter(x)
	}

	return x, nil
}

// Frames is how many complete frames have been read so far.
func (s *SampleStream) Frames() int64 {
	return s.levels.Frames
}

// Levels are the extremes seen so far, before any filtering.
func (s *SampleStream) Levels() AudioLevels {
	return s.levels
}
