package acetape

// NoPulse is the width reported when the stream ends before a pulse is complete.
// No reference width ever matches it.
const NoPulse = 0

type EdgeDetector struct {
	samples    SampleSource
	classifier LevelClassifier
}

func NewEdgeDetector(samples SampleSource, classifier LevelClassifier) *EdgeDetector {
	return &EdgeDetector{
		samples:    samples,
		classifier: classifier,
	}
}

/*------------------------------------------------------------------
 *
 * Name:	PulseWidth
 *
 * Purpose:	Measure the next high pulse.
 *
 * Returns:	Number of samples from the rising edge up to, but not
 *		including, the falling edge.
 *
 *		  _____________               _
 *		 |             |             |
 *		_|             |_____________|
 *		 |<---width--->|
 *
 *		NoPulse and io.EOF if the stream ends first.
 *		NoPulse and a *StreamError if reading fails.
 *
 *------------------------------------------------------------------*/

func (d *EdgeDetector) PulseWidth() (int, error) {
	// Rising edge.  Dead band samples keep us looking.
	for {
		var x, err = d.samples.Next()
		if err != nil {
			return NoPulse, err
		}

		if d.classifier.Classify(x) == RegionHigh {
			break
		}
	}

	var width = 1

	// Falling edge.  Dead band samples still count as part of the pulse.
	for {
		var x, err = d.samples.Next()
		if err != nil {
			return NoPulse, err
		}

		if d.classifier.Classify(x) == RegionLow {
			return width, nil
		}

		width++
	}
}

var _ PulseSource = (*EdgeDetector)(nil)
