package acetape

/*------------------------------------------------------------------
 *
 * Purpose:	Recover the bytes of one tape block from a stream of
 *		pulse widths.
 *
 * Description:	Four states.
 *
 *		SEARCHING	Waiting for a pilot width pulse.
 *		PILOTING	Riding the pilot tone, waiting for sync.
 *		LOADING		Each pulse is a bit, most significant first.
 *		DONE		Stop.
 *
 *		Classify decides what a pulse is, given the state, and
 *		Transition decides what to do about it.  Both are pure
 *		so each row of the table can be tested on its own.
 *
 *------------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

type State int

const (
	StateSearching State = iota
	StatePiloting
	StateLoading
	StateDone
)

func (s State) String() string {
	switch s {
	case StateSearching:
		return "SEARCHING"
	case StatePiloting:
		return "PILOTING"
	case StateLoading:
		return "LOADING"
	case StateDone:
		return "DONE"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type Symbol int

const (
	SymbolNone Symbol = iota // Matches nothing expected in the current state.
	SymbolPilot
	SymbolSync
	SymbolBit0
	SymbolBit1
	SymbolEnd // Input exhausted.
)

func (s Symbol) String() string {
	switch s {
	case SymbolNone:
		return "none"
	case SymbolPilot:
		return "pilot"
	case SymbolSync:
		return "sync"
	case SymbolBit0:
		return "bit0"
	case SymbolBit1:
		return "bit1"
	case SymbolEnd:
		return "end"
	default:
		return fmt.Sprintf("Symbol(%d)", int(s))
	}
}

type Action int

const (
	ActionNone Action = iota
	ActionResetBits
	ActionAppend0
	ActionAppend1
	ActionDiscard
	ActionStop
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionResetBits:
		return "reset bits"
	case ActionAppend0:
		return "append 0"
	case ActionAppend1:
		return "append 1"
	case ActionDiscard:
		return "discard"
	case ActionStop:
		return "stop"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Classify names a pulse width.  Only the symbols that mean something in
// the given state are tried: pilot then sync while searching or piloting,
// bit 0 then bit 1 while loading.
func (t PulseTiming) Classify(state State, width int) Symbol {
	switch state {
	case StateSearching, StatePiloting:
		if t.Matches(width, t.PilotRef) {
			return SymbolPilot
		}

		if t.Matches(width, t.SyncRef) {
			return SymbolSync
		}
	case StateLoading:
		if t.Matches(width, t.Bit0Ref) {
			return SymbolBit0
		}

		if t.Matches(width, t.Bit1Ref) {
			return SymbolBit1
		}
	}

	return SymbolNone
}

// Transition is the decoder's state table.
func Transition(state State, sym Symbol) (State, Action) {
	if sym == SymbolEnd {
		return StateDone, ActionStop
	}

	switch state {
	case StateSearching:
		if sym == SymbolPilot {
			return StatePiloting, ActionNone
		}

		return StateSearching, ActionNone

	case StatePiloting:
		switch sym {
		case SymbolPilot:
			return StatePiloting, ActionNone
		case SymbolSync:
			return StateLoading, ActionResetBits
		default:
			return StateSearching, ActionDiscard
		}

	case StateLoading:
		switch sym {
		case SymbolBit0:
			return StateLoading, ActionAppend0
		case SymbolBit1:
			return StateLoading, ActionAppend1
		default:
			return StateDone, ActionStop
		}
	}

	return StateDone, ActionStop
}

// PulseSource supplies high pulse widths, in samples.
// It returns NoPulse with io.EOF at end of stream.
type PulseSource interface {
	PulseWidth() (int, error)
}

type Outcome int

const (
	OutcomeOK          Outcome = iota // Block ended normally, by an unexpected pulse or a full buffer.
	OutcomeEndOfStream                // Input ran out.
	OutcomeIOFailure                  // Reading the input failed.
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeEndOfStream:
		return "end of stream"
	case OutcomeIOFailure:
		return "I/O failure"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result of one block load.  Count bytes at the start of the buffer are
// valid whatever the outcome.
type Result struct {
	Outcome Outcome
	Count   int
	Err     error // Set for OutcomeIOFailure only.
}

type Decoder struct {
	pulses  PulseSource
	samples *SampleStream // nil when built from pulse widths
	closer  io.Closer
	timing  PulseTiming
	logger  *log.Logger
	visited []State
	eof     bool
	closed  bool
}

// NewDecoder opens a load session reading raw PCM from r.
//
// The decoder owns r from here on.  If r is an io.Closer it is closed by Close.
func NewDecoder(r io.Reader, cfg Config, logger *log.Logger) (*Decoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var samples = NewSampleStream(r, cfg)
	var classifier = NewLevelClassifier(cfg.DetectionLevelPercent, cfg.HysteresisPercent, cfg.Invert)

	var d, err = NewPulseDecoder(NewEdgeDetector(samples, classifier), cfg.SampleRate, logger)
	if err != nil {
		return nil, err
	}

	d.samples = samples

	if c, ok := r.(io.Closer); ok {
		d.closer = c
	}

	return d, nil
}

// NewPulseDecoder runs the state machine over an existing source of pulse widths.
func NewPulseDecoder(pulses PulseSource, sampleRate int, logger *log.Logger) (*Decoder, error) {
	var timing, err = NewPulseTiming(sampleRate)
	if err != nil {
		return nil, err
	}

	logger = loggerOrDiscard(logger)

	if timing.Ambiguous() {
		logger.Warn("pulse widths overlap at this sample rate, ties go to pilot and bit 0", "rate", sampleRate)
	}

	return &Decoder{
		pulses: pulses,
		timing: timing,
		logger: logger,
	}, nil
}

func (d *Decoder) Timing() PulseTiming {
	return d.timing
}

// AudioLevels describes the input read so far.
func (d *Decoder) AudioLevels() AudioLevels {
	if d.samples == nil {
		return AudioLevels{}
	}

	return d.samples.Levels()
}

// Visited lists the states the last LoadBlock passed through, in order,
// without repeats of the same state back to back.
func (d *Decoder) Visited() []State {
	return d.visited
}

func (d *Decoder) enter(s State) {
	if len(d.visited) == 0 || d.visited[len(d.visited)-1] != s {
		d.visited = append(d.visited, s)
	}
}

/*------------------------------------------------------------------
 *
 * Name:	LoadBlock
 *
 * Purpose:	Search for and load one tape block.
 *
 * Inputs:	buf	- Receives the block bytes.  Never written past
 *			  its length.  A byte completed after the buffer
 *			  is full ends the block.
 *
 * Returns:	Result with the number of bytes stored.  Zero if no
 *		pilot and sync pair was found.
 *
 *------------------------------------------------------------------*/

func (d *Decoder) LoadBlock(buf []byte) Result {
	d.visited = nil
	d.enter(StateSearching)

	if d.closed {
		return Result{Outcome: OutcomeIOFailure, Err: ErrSessionClosed}
	}

	if d.eof {
		d.enter(StateDone)
		return Result{Outcome: OutcomeEndOfStream}
	}

	var state = StateSearching
	var count = 0
	var bits = 0
	var data byte

	for state != StateDone {
		var width, err = d.pulses.PulseWidth()

		var sym Symbol

		if err != nil {
			if !errors.Is(err, io.EOF) {
				d.enter(StateDone)
				d.logger.Error("read failed", "state", state, "bytes", count, "err", err)

				return Result{Outcome: OutcomeIOFailure, Count: count, Err: err}
			}

			d.eof = true
			sym = SymbolEnd
		} else {
			sym = d.timing.Classify(state, width)
		}

		var next, action = Transition(state, sym)

		switch action {
		case ActionResetBits:
			bits = 0
			data = 0
		case ActionDiscard:
			count = 0
		case ActionAppend0, ActionAppend1:
			data <<= 1
			if action == ActionAppend1 {
				data |= 1
			}

			bits++

			if bits == 8 {
				bits = 0

				if count < len(buf) {
					buf[count] = data
					count++
				} else {
					next = StateDone
				}
			}
		}

		if next != state {
			d.logger.Debug("state change", "from", state, "to", next, "pulse", width, "symbol", sym, "bytes", count)
		}

		state = next
		d.enter(state)
	}

	if d.eof {
		return Result{Outcome: OutcomeEndOfStream, Count: count}
	}

	return Result{Outcome: OutcomeOK, Count: count}
}

// Close releases the input stream.  It is safe to call more than once.
func (d *Decoder) Close() error {
	if d.closed {
		return nil
	}

	d.closed = true

	if d.closer != nil {
		if err := d.closer.Close(); err != nil {
			return &StreamError{Op: "close audio", Err: err}
		}
	}

	return nil
}
