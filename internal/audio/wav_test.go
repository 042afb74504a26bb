// Package audio_test tests the WAV header probe and conversion helpers.
package audio_test

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/book-expert/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/tts-manager/internal/audio"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New(t.TempDir(), "audio-test.log")
	require.NoError(t, err)

	t.Cleanup(func() {
		closeErr := log.Close()
		if closeErr != nil {
			t.Logf("failed to close test logger: %v", closeErr)
		}
	})

	return log
}

// writeWAV writes a minimal canonical WAV header with the given channel
// count followed by a little silence.
func writeWAV(t *testing.T, path string, channels uint16) {
	t.Helper()

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36)
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], channels)
	binary.LittleEndian.PutUint32(header[24:28], 24000)
	copy(header[36:40], "data")

	require.NoError(t, os.WriteFile(path, header, 0o600))
}

func TestProbeWAVAcceptsMonoAndStereo(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	mono := filepath.Join(dir, "mono.wav")
	writeWAV(t, mono, 1)
	require.NoError(t, audio.ProbeWAV(mono))

	stereo := filepath.Join(dir, "stereo.wav")
	writeWAV(t, stereo, 2)
	require.NoError(t, audio.ProbeWAV(stereo))
}

func TestProbeWAVRejectsNonWAVData(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fake.wav")
	require.NoError(t, os.WriteFile(path, []byte("ID3 this is an mp3 really"), 0o600))

	err := audio.ProbeWAV(path)
	require.ErrorIs(t, err, audio.ErrNotWAV)
}

func TestProbeWAVRejectsSurroundChannels(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "surround.wav")
	writeWAV(t, path, 6)

	err := audio.ProbeWAV(path)
	require.ErrorIs(t, err, audio.ErrBadChannelCount)
}

func TestProbeWAVRejectsTruncatedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stub.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o600))

	err := audio.ProbeWAV(path)
	require.ErrorIs(t, err, audio.ErrNotWAV)
}

func TestEnsureWAVMissingReference(t *testing.T) {
	t.Parallel()

	converter := audio.NewFFmpegConverter("ffmpeg", 24000, time.Minute, newTestLogger(t))

	_, _, err := converter.EnsureWAV(context.Background(), "/no/such/reference.mp3")
	require.ErrorIs(t, err, audio.ErrReferenceMissing)
}

func TestEnsureWAVPassesThroughValidWAV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ref.wav")
	writeWAV(t, path, 1)

	converter := audio.NewFFmpegConverter("ffmpeg", 24000, time.Minute, newTestLogger(t))

	wavPath, converted, err := converter.EnsureWAV(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, converted)
	assert.Equal(t, path, wavPath)
}

func TestEnsureWAVConversionFailureSurfaces(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ref.mp3")
	require.NoError(t, os.WriteFile(path, []byte("not really audio"), 0o600))

	// Point at a binary that always fails to stand in for a broken
	// ffmpeg installation.
	converter := audio.NewFFmpegConverter("false", 24000, time.Minute, newTestLogger(t))

	_, _, err := converter.EnsureWAV(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ffmpeg conversion failed")
}
