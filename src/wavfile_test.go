package acetape

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWavRoundTrip(t *testing.T) {
	var records = []Record{
		NewTestRecord(t, "wav", FILE_TYPE_BYTES, []byte{0xde, 0xad, 0xbe, 0xef}),
	}

	for _, bits := range []int{8, 16, 24, 32} {
		for _, channels := range []int{1, 2} {
			t.Run(fmt.Sprintf("%d bits %d channels", bits, channels), func(t *testing.T) {
				var cfg = DefaultConfig()
				cfg.SampleRate = 22050
				cfg.BitsPerSample = bits
				cfg.Channels = channels

				var path = filepath.Join(t.TempDir(), "tape.wav")

				var w, err = CreateWav(path, cfg)
				require.NoError(t, err)

				enc, err := NewEncoder(w, cfg, nil)
				require.NoError(t, err)

				for _, rec := range records {
					require.NoError(t, enc.WriteRecord(rec.Header, rec.Data))
				}

				require.NoError(t, enc.Close())

				r, err := OpenWav(path)
				require.NoError(t, err)

				assert.Equal(t, 22050, r.SampleRate())
				assert.Equal(t, bits, r.BitsPerSample())
				assert.Equal(t, channels, r.Channels())

				// The reader's format wins over whatever the caller guessed.
				var loadCfg = r.ApplyTo(DefaultConfig())
				assert.Equal(t, cfg.FrameBytes(), loadCfg.FrameBytes())

				dec, err := NewDecoder(r, loadCfg, nil)
				require.NoError(t, err)

				got, err := RecoverRecords(dec, nil)
				require.NoError(t, err)
				require.NoError(t, dec.Close())

				assert.Equal(t, records, got)
			})
		}
	}
}

func TestWavPCMUnchanged(t *testing.T) {
	var cfg = DefaultConfig()
	cfg.Channels = 2

	var pcm, err = Encode(cfg, []Record{NewTestRecord(t, "same", FILE_TYPE_DICT, []byte("pcm"))})
	require.NoError(t, err)

	var path = filepath.Join(t.TempDir(), "same.wav")

	w, err := CreateWav(path, cfg)
	require.NoError(t, err)

	// Odd sized writes, split mid frame.
	for chunk := pcm; len(chunk) > 0; {
		var n = min(len(chunk), 4099)
		var written, err = w.Write(chunk[:n])
		require.NoError(t, err)
		require.Equal(t, n, written)

		chunk = chunk[n:]
	}

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	r, err := OpenWav(path)
	require.NoError(t, err)

	defer r.Close()

	back, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(pcm, back), "PCM changed on the way through the wav file")

	_, err = w.Write([]byte{0})
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestOpenWavRejectsJunk(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "junk.wav")
	require.NoError(t, os.WriteFile(path, []byte("this is not a RIFF file at all, not even close"), 0o600))

	var _, err = OpenWav(path)
	assert.Error(t, err)

	_, err = OpenWav(filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)
}
