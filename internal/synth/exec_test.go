// Package synth_test tests the exec-based synthesizer wrapper.
package synth_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/book-expert/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/tts-manager/internal/core"
	"github.com/book-expert/tts-manager/internal/synth"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New(t.TempDir(), "synth-test.log")
	require.NoError(t, err)

	t.Cleanup(func() {
		closeErr := log.Close()
		if closeErr != nil {
			t.Logf("failed to close test logger: %v", closeErr)
		}
	})

	return log
}

// writeFakeGenerator installs a shell script that records its argv and
// writes the joined output file, standing in for the external binary.
func writeFakeGenerator(t *testing.T) (binPath, argvPath string) {
	t.Helper()

	dir := t.TempDir()
	binPath = filepath.Join(dir, "fake-generator")
	argvPath = filepath.Join(dir, "argv.txt")

	script := "#!/bin/sh\n" +
		"printf '%s\\n' \"$@\" > " + argvPath + "\n" +
		"out=''\n" +
		"grab=0\n" +
		"for a in \"$@\"; do\n" +
		"  if [ \"$grab\" = 1 ]; then out=\"$a\"; grab=0; fi\n" +
		"  if [ \"$a\" = '--output_path' ]; then grab=1; fi\n" +
		"done\n" +
		"touch \"$out/audio.wav\"\n"

	require.NoError(t, os.WriteFile(binPath, []byte(script), 0o700))

	return binPath, argvPath
}

func TestLoadRejectsEmptyModelPath(t *testing.T) {
	t.Parallel()

	synthesizer := synth.New("true", newTestLogger(t))

	_, err := synthesizer.Load(context.Background(), "")
	require.ErrorIs(t, err, synth.ErrModelPathEmpty)
}

func TestGenerateValidatesRequest(t *testing.T) {
	t.Parallel()

	synthesizer := synth.New("true", newTestLogger(t))

	mdl, err := synthesizer.Load(context.Background(), "mlx-community/some-model")
	require.NoError(t, err)

	err = mdl.Generate(context.Background(), core.Request{OutputDir: t.TempDir()})
	require.ErrorIs(t, err, synth.ErrTextEmpty)

	err = mdl.Generate(context.Background(), core.Request{Text: "hi"})
	require.ErrorIs(t, err, synth.ErrOutputDirEmpty)
}

func TestGeneratePassesModeParameters(t *testing.T) {
	t.Parallel()

	binPath, argvPath := writeFakeGenerator(t)
	synthesizer := synth.New(binPath, newTestLogger(t))

	mdl, err := synthesizer.Load(context.Background(), "mlx-community/custom-voice")
	require.NoError(t, err)

	tempDir := t.TempDir()
	req := core.Request{
		Text:      "Hello.\nWorld!",
		Voice:     "Ryan",
		Instruct:  "Calm",
		Speed:     1.3,
		OutputDir: tempDir,
		JoinAudio: true,
		MaxTokens: 4096,
	}

	require.NoError(t, mdl.Generate(context.Background(), req))

	argv, readErr := os.ReadFile(argvPath)
	require.NoError(t, readErr)

	got := string(argv)
	assert.Contains(t, got, "--model\nmlx-community/custom-voice")
	assert.Contains(t, got, "--voice\nRyan")
	assert.Contains(t, got, "--instruct\nCalm")
	assert.Contains(t, got, "--speed\n1.30")
	assert.Contains(t, got, "--join_audio")
	assert.Contains(t, got, "--max_tokens\n4096")
	assert.FileExists(t, filepath.Join(tempDir, "audio.wav"))
}

func TestGenerateCloneParameters(t *testing.T) {
	t.Parallel()

	binPath, argvPath := writeFakeGenerator(t)
	synthesizer := synth.New(binPath, newTestLogger(t))

	mdl, err := synthesizer.Load(context.Background(), "mlx-community/base")
	require.NoError(t, err)

	req := core.Request{
		Text:      "Clone me.",
		RefAudio:  "/refs/mom.wav",
		RefText:   "reference transcript",
		OutputDir: t.TempDir(),
		JoinAudio: true,
	}

	require.NoError(t, mdl.Generate(context.Background(), req))

	argv, readErr := os.ReadFile(argvPath)
	require.NoError(t, readErr)

	got := string(argv)
	assert.Contains(t, got, "--ref_audio\n/refs/mom.wav")
	assert.Contains(t, got, "--ref_text\nreference transcript")
	assert.NotContains(t, got, "--voice")
	assert.NotContains(t, got, "--speed")
}

func TestGenerateReportsProcessFailure(t *testing.T) {
	t.Parallel()

	synthesizer := synth.New("false", newTestLogger(t))

	mdl, err := synthesizer.Load(context.Background(), "mlx-community/base")
	require.NoError(t, err)

	err = mdl.Generate(context.Background(), core.Request{
		Text:      "doomed",
		OutputDir: t.TempDir(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generator execution failed")
}
