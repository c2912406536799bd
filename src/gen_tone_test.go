package acetape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleLevels(t *testing.T) {
	var hi, lo, silence = SampleLevels(8, 90)
	assert.Equal(t, int64(242), hi)
	assert.Equal(t, int64(14), lo)
	assert.Equal(t, int64(128), silence)

	hi, lo, silence = SampleLevels(16, 90)
	assert.Equal(t, int64(29490), hi)
	assert.Equal(t, int64(-29489), lo)
	assert.Equal(t, int64(0), silence)

	hi, lo, _ = SampleLevels(16, 100)
	assert.Equal(t, int64(32767), hi)
	assert.Equal(t, int64(-32766), lo)

	hi, lo, _ = SampleLevels(24, 50)
	assert.Equal(t, int64(4194304), hi)
	assert.Equal(t, int64(-4194303), lo)

	hi, lo, _ = SampleLevels(32, 100)
	assert.Equal(t, int64(2147483647), hi)
	assert.Equal(t, int64(-2147483646), lo)

	hi, lo, silence = SampleLevels(16, 0)
	assert.Equal(t, int64(0), hi)
	assert.Equal(t, int64(1), lo)
	assert.Equal(t, int64(0), silence)
}

func TestWaveTableLayout(t *testing.T) {
	var cfg = DefaultConfig()
	cfg.Channels = 2

	var table = NewWaveTable(SamplePair{Hi: 2, Lo: 3}, 0x1234, -2, cfg)

	require.Len(t, table, 5*cfg.FrameBytes())
	assert.Equal(t, []byte{
		0x34, 0x12, 0x34, 0x12,
		0x34, 0x12, 0x34, 0x12,
		0xfe, 0xff, 0xfe, 0xff,
		0xfe, 0xff, 0xfe, 0xff,
		0xfe, 0xff, 0xfe, 0xff,
	}, []byte(table))
}

func TestWaveTableRoundTripsThroughDecode(t *testing.T) {
	for _, bits := range []int{8, 16, 24, 32} {
		var cfg = DefaultConfig()
		cfg.BitsPerSample = bits

		var hi, lo, _ = SampleLevels(bits, cfg.VolumePercent)
		var table = NewWaveTable(SamplePair{Hi: 1, Lo: 1}, hi, lo, cfg)

		assert.InDelta(t, 0.9, decodeSample(table[:cfg.BytesPerSample()], bits), 0.01, "%d bits", bits)
		assert.InDelta(t, -0.9, decodeSample(table[cfg.BytesPerSample():], bits), 0.01, "%d bits", bits)
	}
}

func TestWaveTablesAreWholeFrames(t *testing.T) {
	for _, rate := range []int{16000, 22050, 44100, 48000} {
		for _, bits := range []int{8, 16, 24, 32} {
			for _, channels := range []int{1, 2} {
				var cfg = DefaultConfig()
				cfg.SampleRate = rate
				cfg.BitsPerSample = bits
				cfg.Channels = channels

				var timing, err = NewPulseTiming(rate)
				require.NoError(t, err)

				var tables = newWaveTables(timing, cfg)

				for _, table := range []WaveTable{tables.pilot, tables.sync, tables.bit0, tables.bit1, tables.endMark, tables.silence} {
					assert.NotEmpty(t, table)
					assert.Zero(t, len(table)%cfg.FrameBytes())
				}

				assert.Len(t, tables.bit1, timing.Bit1.Len()*cfg.FrameBytes())
			}
		}
	}
}
