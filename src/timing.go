package acetape

/*------------------------------------------------------------------
 *
 * Purpose:	Convert the Jupiter Ace ROM tape timings, which are
 *		expressed in Z80 clock cycles, into audio sample counts.
 *
 * Description:	Every waveform cycle is a high semicycle followed by a
 *		low semicycle.  The encoder uses both halves.  The
 *		decoder only ever measures the high half, and compares
 *		it against the mean of the two halves.
 *
 *			      hi            lo
 *			  _________
 *			 |         |
 *			_|         |_______________
 *
 *------------------------------------------------------------------*/

const Z80_CLOCK = 3250000 // Hz

// Semicycles holds the two halves of one waveform cycle, in Z80 clock cycles.
type Semicycles struct {
	Hi int
	Lo int
}

// Mean is the reference width the decoder compares a measured pulse against.
func (s Semicycles) Mean() int {
	return (s.Hi + s.Lo) / 2
}

var (
	PilotCycle   = Semicycles{Hi: 2011, Lo: 2011}
	SyncCycle    = Semicycles{Hi: 601, Lo: 791}
	Bit0Cycle    = Semicycles{Hi: 795, Lo: 801}
	Bit1Cycle    = Semicycles{Hi: 1585, Lo: 1591}
	EndMarkCycle = Semicycles{Hi: 903, Lo: 4187}

	// Two seconds at the silence level in each half.  Gives the tape motor time to settle.
	SilenceCycle = Semicycles{Hi: 6500000, Lo: 6500000}
)

const (
	HEADER_PILOT_CYCLES = 8 * 512
	DATA_PILOT_CYCLES   = 512
)

// Pulse length error allowed when classifying, before scaling.
var toleranceCycles = SyncCycle.Hi / 2

// CyclesToSamples rounds to the nearest whole sample.
func CyclesToSamples(cycles int, sampleRate int) int {
	var num = int64(cycles) * int64(sampleRate)

	return int((2*num + Z80_CLOCK) / (2 * Z80_CLOCK))
}

// SamplesToCycles is the inverse of CyclesToSamples, also rounded.
// Zero for a sample rate that isn't positive.
func SamplesToCycles(samples int, sampleRate int) int {
	if sampleRate <= 0 {
		return 0
	}

	var num = int64(samples) * Z80_CLOCK

	return int((2*num + int64(sampleRate)) / (2 * int64(sampleRate)))
}

// SamplePair is a Semicycles pair scaled to samples.
type SamplePair struct {
	Hi int
	Lo int
}

func (p SamplePair) Len() int {
	return p.Hi + p.Lo
}

func scalePair(s Semicycles, sampleRate int) SamplePair {
	return SamplePair{
		Hi: CyclesToSamples(s.Hi, sampleRate),
		Lo: CyclesToSamples(s.Lo, sampleRate),
	}
}

// PulseTiming is everything the encoder and decoder of one session need to
// know about pulse widths at that session's sample rate.
type PulseTiming struct {
	SampleRate int

	// Waveform shapes, for the encoder.
	Pilot   SamplePair
	Sync    SamplePair
	Bit0    SamplePair
	Bit1    SamplePair
	EndMark SamplePair
	Silence SamplePair

	// Reference high pulse widths, for the decoder.
	PilotRef int
	SyncRef  int
	Bit0Ref  int
	Bit1Ref  int

	Tolerance int
}

func NewPulseTiming(sampleRate int) (PulseTiming, error) {
	if sampleRate <= 0 {
		return PulseTiming{}, &ConfigError{Field: "sample rate", Value: sampleRate, Reason: "must be greater than zero"}
	}

	var t = PulseTiming{
		SampleRate: sampleRate,
		Pilot:      scalePair(PilotCycle, sampleRate),
		Sync:       scalePair(SyncCycle, sampleRate),
		Bit0:       scalePair(Bit0Cycle, sampleRate),
		Bit1:       scalePair(Bit1Cycle, sampleRate),
		EndMark:    scalePair(EndMarkCycle, sampleRate),
		Silence:    scalePair(SilenceCycle, sampleRate),
		PilotRef:   CyclesToSamples(PilotCycle.Mean(), sampleRate),
		SyncRef:    CyclesToSamples(SyncCycle.Mean(), sampleRate),
		Bit0Ref:    CyclesToSamples(Bit0Cycle.Mean(), sampleRate),
		Bit1Ref:    CyclesToSamples(Bit1Cycle.Mean(), sampleRate),
		Tolerance:  CyclesToSamples(toleranceCycles, sampleRate),
	}

	if err := t.checkPulses(); err != nil {
		return PulseTiming{}, err
	}

	return t, nil
}

// checkPulses makes sure every pulse the encoder sends at this rate would be
// read back as what it is.  Below that, nothing saved at the rate can load.
func (t PulseTiming) checkPulses() error {
	var ok = t.Classify(StateSearching, t.Pilot.Hi) == SymbolPilot &&
		t.Classify(StatePiloting, t.Sync.Hi) == SymbolSync &&
		t.Classify(StateLoading, t.Bit0.Hi) == SymbolBit0 &&
		t.Classify(StateLoading, t.Bit1.Hi) == SymbolBit1

	if !ok {
		return &ConfigError{
			Field:  "sample rate",
			Value:  t.SampleRate,
			Reason: "too low for tape pulses to be told apart",
		}
	}

	return nil
}

// Ambiguous reports whether two widths tested in the same decoder state have
// overlapping tolerance windows: pilot against sync, or bit 0 against bit 1.
// A width in the overlap goes to whichever Classify tries first, so loading
// still works, but a little noise is more likely to flip a bit.
func (t PulseTiming) Ambiguous() bool {
	var pairs = [][2]int{
		{t.PilotRef, t.SyncRef},
		{t.Bit0Ref, t.Bit1Ref},
	}

	for _, p := range pairs {
		var sep = p[0] - p[1]
		if sep < 0 {
			sep = -sep
		}

		if 2*t.Tolerance >= sep {
			return true
		}
	}

	return false
}

// Matches reports whether width is within tolerance of ref.
// A zero width never matches anything.
func (t PulseTiming) Matches(width, ref int) bool {
	if width == 0 {
		return false
	}

	return width >= ref-t.Tolerance && width <= ref+t.Tolerance
}
