package acetape

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// session writes blocks one after another the way a save session would.
func session(t *testing.T, cfg Config, write func(enc *Encoder)) []byte {
	t.Helper()

	var pcm bytes.Buffer

	var enc, err = NewEncoder(&pcm, cfg, nil)
	require.NoError(t, err)

	write(enc)
	require.NoError(t, enc.Close())

	return pcm.Bytes()
}

func decoderFor(t *testing.T, pcm []byte) *Decoder {
	t.Helper()

	var dec, err = NewDecoder(bytes.NewReader(pcm), DefaultConfig(), nil)
	require.NoError(t, err)

	return dec
}

func newTestRecovery(t *testing.T, pcm []byte) *Recovery {
	t.Helper()

	return NewRecovery(decoderFor(t, pcm), nil)
}

func TestRecoverySeveralRecords(t *testing.T) {
	var records = []Record{
		NewTestRecord(t, "one", FILE_TYPE_DICT, []byte("first")),
		NewTestRecord(t, "two", FILE_TYPE_BYTES, []byte{2, 2}),
		NewTestRecord(t, "three", FILE_TYPE_DICT, []byte("third and last")),
	}

	var pcm, err = Encode(DefaultConfig(), records)
	require.NoError(t, err)

	var r = newTestRecovery(t, pcm)

	for _, expected := range records {
		var rec, ok = r.Next()
		require.True(t, ok)
		assert.Equal(t, expected, rec)
	}

	var _, ok = r.Next()
	assert.False(t, ok)
	require.NoError(t, r.Err())
	assert.Zero(t, r.Rejected())

	// Stays finished.
	_, ok = r.Next()
	assert.False(t, ok)
}

func TestRecoveryShortHeaderRejected(t *testing.T) {
	var good = NewTestRecord(t, "good", FILE_TYPE_DICT, []byte("kept"))

	var pcm = session(t, DefaultConfig(), func(enc *Encoder) {
		require.NoError(t, enc.WriteBlock(HEADER_PILOT_CYCLES, good.Header[:10]))
		require.NoError(t, enc.WriteRecord(good.Header, good.Data))
	})

	var r = newTestRecovery(t, pcm)

	var rec, ok = r.Next()
	require.True(t, ok)
	assert.Equal(t, good, rec)
	assert.Equal(t, 1, r.Rejected())

	_, ok = r.Next()
	assert.False(t, ok)
	require.NoError(t, r.Err())
}

func TestRecoveryEmptyLengthRejected(t *testing.T) {
	var empty = NewTestRecord(t, "empty", FILE_TYPE_BYTES, nil)
	var good = NewTestRecord(t, "good", FILE_TYPE_BYTES, []byte{9})

	var pcm = session(t, DefaultConfig(), func(enc *Encoder) {
		require.NoError(t, enc.WriteBlock(HEADER_PILOT_CYCLES, empty.Header))
		require.NoError(t, enc.WriteRecord(good.Header, good.Data))
	})

	var records, err = RecoverRecords(decoderFor(t, pcm), nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "good", FileName(records[0].Header))
}

func TestRecoveryShortDataDelivered(t *testing.T) {
	var rec = NewTestRecord(t, "cut", FILE_TYPE_BYTES, bytes.Repeat([]byte{0x5a}, 100))

	var pcm = session(t, DefaultConfig(), func(enc *Encoder) {
		require.NoError(t, enc.WriteBlock(HEADER_PILOT_CYCLES, rec.Header))
		require.NoError(t, enc.WriteBlock(DATA_PILOT_CYCLES, rec.Data[:10]))
	})

	var r = newTestRecovery(t, pcm)

	var got, ok = r.Next()
	require.True(t, ok)
	assert.Equal(t, rec.Header, got.Header)
	assert.Len(t, got.Data, 102)
	assert.Equal(t, 10, got.Captured)
	assert.Equal(t, rec.Data[:10], got.Data[:10])
	assert.False(t, got.Complete())

	_, ok = r.Next()
	assert.False(t, ok)
}

func TestRecoveryMissingData(t *testing.T) {
	var rec = NewTestRecord(t, "nodata", FILE_TYPE_DICT, []byte("lost"))

	var pcm = session(t, DefaultConfig(), func(enc *Encoder) {
		require.NoError(t, enc.WriteBlock(HEADER_PILOT_CYCLES, rec.Header))
	})

	var r = newTestRecovery(t, pcm)

	var got, ok = r.Next()
	require.True(t, ok)
	assert.Equal(t, rec.Header, got.Header)
	assert.Zero(t, got.Captured)
	assert.False(t, got.Complete())
}

func TestRecoveryReadFailure(t *testing.T) {
	var records = []Record{
		NewTestRecord(t, "before", FILE_TYPE_DICT, []byte("safe")),
		NewTestRecord(t, "after", FILE_TYPE_DICT, []byte("never seen")),
	}

	var first, err = Encode(DefaultConfig(), records[:1])
	require.NoError(t, err)

	all, err := Encode(DefaultConfig(), records)
	require.NoError(t, err)

	// The first record and a little of the second pilot, then the stream breaks.
	var timing, _ = NewPulseTiming(DEFAULT_SAMPLES_PER_SEC)
	var trailing = timing.Silence.Len() * DefaultConfig().FrameBytes()
	var cut = len(first) - trailing + 1000
	var r = io.MultiReader(bytes.NewReader(all[:cut]), failingReader{})

	dec, err := NewDecoder(r, DefaultConfig(), nil)
	require.NoError(t, err)

	got, err := RecoverRecords(dec, nil)
	require.Error(t, err)
	assert.True(t, IsStreamError(err))
	require.Len(t, got, 1)
	assert.Equal(t, records[0], got[0])
}

func TestRecoveryPilotGlitch(t *testing.T) {
	var records = []Record{
		NewTestRecord(t, "glitch", FILE_TYPE_DICT, []byte("after a dropout")),
		NewTestRecord(t, "next", FILE_TYPE_BYTES, []byte{1, 2, 3}),
	}

	var cfg = DefaultConfig()

	var pcm, err = Encode(cfg, records)
	require.NoError(t, err)

	// One low sample part way through a high half of the first header pilot.
	// The start of that half reads as a sync pulse and the rest matches
	// neither bit, so the attempt ends cleanly with nothing loaded.
	var timing, _ = NewPulseTiming(cfg.SampleRate)
	var frame = timing.Silence.Len() + 100*timing.Pilot.Len() + 9
	var _, lo, _ = SampleLevels(cfg.BitsPerSample, cfg.VolumePercent)
	var at = frame * cfg.FrameBytes()
	putSample(pcm[at:at+cfg.FrameBytes()], cfg.BytesPerSample(), lo)

	var r = newTestRecovery(t, pcm)

	for _, expected := range records {
		var rec, ok = r.Next()
		require.True(t, ok)
		assert.Equal(t, expected, rec)
	}

	var _, ok = r.Next()
	assert.False(t, ok)
	require.NoError(t, r.Err())
	assert.Equal(t, 1, r.Rejected())
}
