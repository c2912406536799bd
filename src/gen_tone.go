package acetape

/*------------------------------------------------------------------
 *
 * Purpose:	Build the square wave cycles that make up a tape signal.
 *
 * Description:	Everything the encoder writes is one of six shapes,
 *		so each is rendered once per session into a WaveTable
 *		and then copied out as many times as needed.
 *
 *		8 bit samples are unsigned bytes in range of 0 .. 255,
 *		centered on 128.
 *
 *		16, 24 and 32 bit samples are signed little endian.
 *		The low level is one unit closer to zero than the
 *		negative of the high level.
 *
 *		For stereo, both channels carry the same signal.
 *
 *------------------------------------------------------------------*/

import (
	"math"
)

// WaveTable is the PCM bytes for one complete cycle, high half first.
// Its length is always a whole number of frames.
type WaveTable []byte

type waveTables struct {
	silence WaveTable
	pilot   WaveTable
	sync    WaveTable
	bit0    WaveTable
	bit1    WaveTable
	endMark WaveTable
}

// SampleLevels gives the PCM values used for the high half, the low half and silence.
//
// volumePercent is on a scale of 0 .. 100.
// 100% uses the full sample range.
func SampleLevels(bitsPerSample int, volumePercent int) (hi int64, lo int64, silence int64) {
	var amp = int64(math.Round(fullScale(bitsPerSample) * float64(volumePercent) / 100))

	if bitsPerSample == 8 {
		return 128 + amp, 128 - amp, 128
	}

	return amp, -amp + 1, 0
}

// putSample stores one sample, little endian, in every channel of a frame.
func putSample(frame []byte, bytesPerSample int, value int64) {
	for ch := 0; ch+bytesPerSample <= len(frame); ch += bytesPerSample {
		var v = value
		for i := range bytesPerSample {
			frame[ch+i] = byte(v & 0xff)
			v >>= 8
		}
	}
}

// NewWaveTable renders one cycle of the given shape.
func NewWaveTable(pair SamplePair, hi int64, lo int64, cfg Config) WaveTable {
	var frameBytes = cfg.FrameBytes()
	var bytesPerSample = cfg.BytesPerSample()
	var table = make(WaveTable, pair.Len()*frameBytes)

	var index = 0

	for range pair.Hi {
		putSample(table[index:index+frameBytes], bytesPerSample, hi)
		index += frameBytes
	}

	for range pair.Lo {
		putSample(table[index:index+frameBytes], bytesPerSample, lo)
		index += frameBytes
	}

	return table
}

func newWaveTables(t PulseTiming, cfg Config) waveTables {
	var hi, lo, silence = SampleLevels(cfg.BitsPerSample, cfg.VolumePercent)

	return waveTables{
		silence: NewWaveTable(t.Silence, silence, silence, cfg),
		pilot:   NewWaveTable(t.Pilot, hi, lo, cfg),
		sync:    NewWaveTable(t.Sync, hi, lo, cfg),
		bit0:    NewWaveTable(t.Bit0, hi, lo, cfg),
		bit1:    NewWaveTable(t.Bit1, hi, lo, cfg),
		endMark: NewWaveTable(t.EndMark, hi, lo, cfg),
	}
}
