package acetape

import (
	"encoding/binary"
)

/*------------------------------------------------------------------
 *
 * Name:	Region
 *
 * Purpose:	Where a normalized sample sits relative to the
 *		detection level.
 *
 *		 High	...................... level + hysteresis
 *		 Dead
 *		 -------------------------- level
 *		 Dead
 *		 Low	...................... level - hysteresis
 *
 *		A sample in the dead band never starts or ends a pulse
 *		on its own.  It just continues whatever the edge
 *		detector was already doing.
 *
 *------------------------------------------------------------------*/

type Region int

const (
	RegionLow  Region = -1
	RegionDead Region = 0
	RegionHigh Region = 1
)

func (r Region) String() string {
	switch r {
	case RegionLow:
		return "low"
	case RegionHigh:
		return "high"
	default:
		return "dead"
	}
}

type LevelClassifier struct {
	level      float64
	hysteresis float64
	invert     bool
}

func NewLevelClassifier(levelPercent, hysteresisPercent int, invert bool) LevelClassifier {
	return LevelClassifier{
		level:      float64(levelPercent) / 100,
		hysteresis: float64(hysteresisPercent) / 100,
		invert:     invert,
	}
}

func (c LevelClassifier) Classify(x float64) Region {
	var r = RegionDead

	if x > c.level+c.hysteresis {
		r = RegionHigh
	} else if x < c.level-c.hysteresis {
		r = RegionLow
	}

	if c.invert {
		r = -r
	}

	return r
}

// Full scale value for each sample size.  8 bit samples are unsigned with an offset of 128.
func fullScale(bitsPerSample int) float64 {
	switch bitsPerSample {
	case 8:
		return 127
	case 24:
		return 8388607
	case 32:
		return 2147483647
	default:
		return 32767
	}
}

// pcmValue reads one little endian sample as stored.  8 bit samples come back unsigned.
func pcmValue(b []byte, bitsPerSample int) int64 {
	switch bitsPerSample {
	case 8:
		return int64(b[0])
	case 16:
		return int64(int16(binary.LittleEndian.Uint16(b)))
	case 24:
		var u = uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
		return int64(int32(u<<8) >> 8) //nolint:gosec // Sign extend
	case 32:
		return int64(int32(binary.LittleEndian.Uint32(b))) //nolint:gosec // Two's complement
	}

	return 0
}

// decodeSample converts one sample to the range -1.0 .. +1.0.
func decodeSample(b []byte, bitsPerSample int) float64 {
	var v = pcmValue(b, bitsPerSample)

	if bitsPerSample == 8 {
		v -= 128
	}

	return float64(v) / fullScale(bitsPerSample)
}
