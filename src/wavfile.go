package acetape

/*------------------------------------------------------------------
 *
 * Purpose:	Carry raw PCM in and out of .WAV files.
 *
 * Description:	The encoder and decoder only ever see raw PCM bytes.
 *		WavReader strips the RIFF container on the way in and
 *		WavWriter adds it on the way out, patching the chunk
 *		sizes when it is closed.
 *
 *------------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	WAV_FORMAT_PCM        = 1
	WAV_FORMAT_EXTENSIBLE = 0xfffe
)

type WavReader struct {
	dec    *wav.Decoder
	closer io.Closer
}

// NewWavReader reads the header and leaves r positioned at the first sample.
func NewWavReader(r io.ReadSeeker) (*WavReader, error) {
	var dec = wav.NewDecoder(r)

	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return nil, fmt.Errorf("not a valid wav file: %w", err)
		}

		return nil, errors.New("not a valid wav file")
	}

	if dec.WavAudioFormat != WAV_FORMAT_PCM && dec.WavAudioFormat != WAV_FORMAT_EXTENSIBLE {
		return nil, &ConfigError{Field: "wav audio format", Value: dec.WavAudioFormat, Reason: "only PCM is supported"}
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("finding wav sample data: %w", err)
	}

	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("finding wav sample data: %w", err)
	}

	return &WavReader{dec: dec}, nil
}

func OpenWav(path string) (*WavReader, error) {
	var f, err = os.Open(path) //nolint:gosec // User-supplied input file from CLI
	if err != nil {
		return nil, err
	}

	r, err := NewWavReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	r.closer = f

	return r, nil
}

func (r *WavReader) SampleRate() int {
	return int(r.dec.SampleRate)
}

func (r *WavReader) BitsPerSample() int {
	return int(r.dec.BitDepth)
}

func (r *WavReader) Channels() int {
	return int(r.dec.NumChans)
}

// ApplyTo copies the file's sample format into a session configuration.
func (r *WavReader) ApplyTo(cfg Config) Config {
	cfg.SampleRate = r.SampleRate()
	cfg.BitsPerSample = r.BitsPerSample()
	cfg.Channels = r.Channels()

	return cfg
}

func (r *WavReader) Read(p []byte) (int, error) {
	return r.dec.PCMChunk.Read(p)
}

func (r *WavReader) Close() error {
	if r.closer == nil {
		return nil
	}

	var err = r.closer.Close()
	r.closer = nil

	return err
}

type WavWriter struct {
	enc           *wav.Encoder
	closer        io.Closer
	bitsPerSample int
	channels      int
	sampleRate    int
	pending       []byte
	closed        bool
}

func NewWavWriter(ws io.WriteSeeker, cfg Config) *WavWriter {
	return &WavWriter{
		enc:           wav.NewEncoder(ws, cfg.SampleRate, cfg.BitsPerSample, cfg.Channels, WAV_FORMAT_PCM),
		bitsPerSample: cfg.BitsPerSample,
		channels:      cfg.Channels,
		sampleRate:    cfg.SampleRate,
	}
}

func CreateWav(path string, cfg Config) (*WavWriter, error) {
	var f, err = os.Create(path) //nolint:gosec // User-supplied output file from CLI
	if err != nil {
		return nil, err
	}

	var w = NewWavWriter(f, cfg)
	w.closer = f

	return w, nil
}

// Write accepts raw PCM bytes.  A partial frame is held back until the rest arrives.
func (w *WavWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrSessionClosed
	}

	w.pending = append(w.pending, p...)

	var bytesPerSample = w.bitsPerSample / 8
	var frameBytes = bytesPerSample * w.channels
	var frames = len(w.pending) / frameBytes

	if frames == 0 {
		return len(p), nil
	}

	var data = make([]int, frames*w.channels)
	for i := range data {
		data[i] = int(pcmValue(w.pending[i*bytesPerSample:], w.bitsPerSample))
	}

	var buf = &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: w.channels, SampleRate: w.sampleRate},
		Data:           data,
		SourceBitDepth: w.bitsPerSample,
	}

	if err := w.enc.Write(buf); err != nil {
		return 0, err
	}

	w.pending = append(w.pending[:0], w.pending[frames*frameBytes:]...)

	return len(p), nil
}

// Close fixes up the RIFF sizes and closes the file.
func (w *WavWriter) Close() error {
	if w.closed {
		return nil
	}

	w.closed = true

	var err = w.enc.Close()

	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}

	return err
}
