package soundcard

/*------------------------------------------------------------------
 *
 * Purpose:   	Interface to audio device commonly called a "sound card" for
 *		historical reasons.
 *
 * Description:	Capture is an io.ReadCloser and Playback an
 *		io.WriteCloser, both carrying 16 bit signed little
 *		endian PCM, the same bytes a .WAV file would hold.
 *		That lets a load or save session use a sound card
 *		exactly like a file.
 *
 *		Device names are matched against the names PortAudio
 *		reports.  An empty name, or "default", means the
 *		system default device.
 *
 *---------------------------------------------------------------*/

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gordonklaus/portaudio"
)

const BITS_PER_SAMPLE = 16

const ONE_BUF_TIME = 40 // milliseconds

var ErrNoDevice = errors.New("no such audio device")

// framesPerBuffer picks a buffer of about ONE_BUF_TIME, rounded up to a multiple of 256 frames.
func framesPerBuffer(rate int) int {
	var n = rate * ONE_BUF_TIME / 1000

	return (n + 0xff) &^ 0xff
}

func findDevice(name string, input bool) (*portaudio.DeviceInfo, error) {
	if name == "" || strings.EqualFold(name, "default") {
		if input {
			return portaudio.DefaultInputDevice()
		}

		return portaudio.DefaultOutputDevice()
	}

	var devices, err = portaudio.Devices()
	if err != nil {
		return nil, err
	}

	for _, d := range devices {
		if input && d.MaxInputChannels < 1 || !input && d.MaxOutputChannels < 1 {
			continue
		}

		if strings.Contains(strings.ToLower(d.Name), strings.ToLower(name)) {
			return d, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrNoDevice, name)
}

func openStream(name string, input bool, rate int, channels int, buf []int16) (*portaudio.Stream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}

	var dev, err = findDevice(name, input)
	if err != nil {
		portaudio.Terminate() //nolint:errcheck
		return nil, err
	}

	var params portaudio.StreamParameters
	var side = &params.Output
	var latency = dev.DefaultHighOutputLatency

	if input {
		side = &params.Input
		latency = dev.DefaultHighInputLatency
	}

	side.Device = dev
	side.Channels = channels
	side.Latency = latency
	params.SampleRate = float64(rate)
	params.FramesPerBuffer = len(buf) / channels

	stream, err := portaudio.OpenStream(params, buf)
	if err != nil {
		portaudio.Terminate() //nolint:errcheck
		return nil, fmt.Errorf("could not open audio device %q: %w", dev.Name, err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()        //nolint:errcheck
		portaudio.Terminate() //nolint:errcheck
		return nil, fmt.Errorf("could not start audio device %q: %w", dev.Name, err)
	}

	return stream, nil
}

func closeStream(stream *portaudio.Stream) error {
	var err = stream.Stop()

	if cerr := stream.Close(); err == nil {
		err = cerr
	}

	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}

	return err
}

// Capture reads from a sound card input.  It stops with io.EOF after
// maxFrames frames, or never if maxFrames is 0.
type Capture struct {
	stream    *portaudio.Stream
	buf       []int16
	pending   []byte
	frames    int64
	maxFrames int64
	channels  int
	closed    bool
}

func OpenCapture(device string, rate int, channels int, maxFrames int64) (*Capture, error) {
	var c = &Capture{
		buf:       make([]int16, framesPerBuffer(rate)*channels),
		maxFrames: maxFrames,
		channels:  channels,
	}

	var stream, err = openStream(device, true, rate, channels, c.buf)
	if err != nil {
		return nil, err
	}

	c.stream = stream

	return c, nil
}

func (c *Capture) Read(p []byte) (int, error) {
	if c.closed {
		return 0, io.ErrClosedPipe
	}

	for len(c.pending) == 0 {
		if c.maxFrames > 0 && c.frames >= c.maxFrames {
			return 0, io.EOF
		}

		if err := c.stream.Read(); err != nil && !errors.Is(err, portaudio.InputOverflowed) {
			return 0, err
		}

		var n = len(c.buf) / c.channels
		if c.maxFrames > 0 {
			n = int(min(int64(n), c.maxFrames-c.frames))
		}

		c.frames += int64(n)

		for _, s := range c.buf[:n*c.channels] {
			c.pending = binary.LittleEndian.AppendUint16(c.pending, uint16(s)) //nolint:gosec // Two's complement
		}
	}

	var n = copy(p, c.pending)
	c.pending = c.pending[n:]

	return n, nil
}

func (c *Capture) Close() error {
	if c.closed {
		return nil
	}

	c.closed = true

	return closeStream(c.stream)
}

// Playback writes to a sound card output.  Close plays out whatever is left.
type Playback struct {
	stream *portaudio.Stream
	buf    []int16
	fill   int
	odd    []byte
	closed bool
}

func OpenPlayback(device string, rate int, channels int) (*Playback, error) {
	var p = &Playback{
		buf: make([]int16, framesPerBuffer(rate)*channels),
	}

	var stream, err = openStream(device, false, rate, channels, p.buf)
	if err != nil {
		return nil, err
	}

	p.stream = stream

	return p, nil
}

func (p *Playback) Write(b []byte) (int, error) {
	if p.closed {
		return 0, io.ErrClosedPipe
	}

	var total = len(b)

	if len(p.odd) > 0 {
		b = append(p.odd, b...)
		p.odd = nil
	}

	for len(b) >= 2 {
		p.buf[p.fill] = int16(binary.LittleEndian.Uint16(b)) //nolint:gosec // Two's complement
		p.fill++
		b = b[2:]

		if p.fill == len(p.buf) {
			if err := p.stream.Write(); err != nil && !errors.Is(err, portaudio.OutputUnderflowed) {
				return 0, err
			}

			p.fill = 0
		}
	}

	p.odd = append(p.odd, b...)

	return total, nil
}

func (p *Playback) Close() error {
	if p.closed {
		return nil
	}

	p.closed = true

	var err error

	if p.fill > 0 {
		clear(p.buf[p.fill:])

		if werr := p.stream.Write(); werr != nil && !errors.Is(werr, portaudio.OutputUnderflowed) {
			err = werr
		}
	}

	if cerr := closeStream(p.stream); err == nil {
		err = cerr
	}

	return err
}
