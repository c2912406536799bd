package acetape

/*------------------------------------------------------------------
 *
 * Purpose:	Keep track of how loud the input is.
 *
 *		A common complaint is that there is no indication of
 *		audio input level until something is decoded correctly.
 *		The load command prints the extremes seen on each input
 *		so the detection level can be set sensibly, and so an
 *		input that is all zeros is obvious.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
)

type AudioLevels struct {
	Frames int64
	Peak   float64 // Most positive sample, after channel selection.
	Trough float64 // Most negative sample.
}

func (a *AudioLevels) add(x float64) {
	if a.Frames == 0 || x > a.Peak {
		a.Peak = x
	}

	if a.Frames == 0 || x < a.Trough {
		a.Trough = x
	}

	a.Frames++
}

// String gives the levels as percent of full scale, the same units as the detection level.
func (a AudioLevels) String() string {
	if a.Frames == 0 {
		return "no audio"
	}

	return fmt.Sprintf("%d frames, audio level peak %+.0f%%, trough %+.0f%%", a.Frames, 100*a.Peak, 100*a.Trough)
}
