// Package pipeline_test tests the generation lifecycle end to end with
// a mock synthesizer.
package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/book-expert/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/tts-manager/internal/core"
	"github.com/book-expert/tts-manager/internal/pipeline"
)

var errMockGenerate = errors.New("mock generation error")

// mockModel imitates the external generator: it writes the joined
// output file into the request's temp directory.
type mockModel struct {
	fail     bool
	lastReq  core.Request
	tempDirs []string
}

func (m *mockModel) Generate(_ context.Context, req core.Request) error {
	m.lastReq = req
	m.tempDirs = append(m.tempDirs, req.OutputDir)

	if m.fail {
		return errMockGenerate
	}

	return os.WriteFile(
		filepath.Join(req.OutputDir, "audio.wav"),
		[]byte("RIFF fake audio"),
		0o600,
	)
}

type mockSynthesizer struct {
	model *mockModel
}

func (m *mockSynthesizer) Load(_ context.Context, _ string) (core.Model, error) {
	return m.model, nil
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New(t.TempDir(), "pipeline-test.log")
	require.NoError(t, err)

	t.Cleanup(func() {
		closeErr := log.Close()
		if closeErr != nil {
			t.Logf("failed to close test logger: %v", closeErr)
		}
	})

	return log
}

func newTestPipeline(t *testing.T, mdl *mockModel) (*pipeline.Pipeline, core.Model) {
	t.Helper()

	pipe := pipeline.New(&mockSynthesizer{model: mdl}, 4096, 20, newTestLogger(t))

	loaded, err := pipe.LoadModel(context.Background(), "mlx-community/test-model")
	require.NoError(t, err)

	return pipe, loaded
}

func TestGenerateFileProducesTimestampSnippetName(t *testing.T) {
	t.Parallel()

	mdl := &mockModel{}
	pipe, loaded := newTestPipeline(t, mdl)

	outputDir := filepath.Join(t.TempDir(), "out")

	finalPath, err := pipe.GenerateFile(
		context.Background(),
		loaded,
		core.Request{Text: "Hello.\nWorld!", Voice: "Ryan"},
		outputDir,
		"",
	)
	require.NoError(t, err)

	assert.Regexp(
		t,
		regexp.MustCompile(`^\d{2}-\d{2}-\d{2}_Hello_World\.wav$`),
		filepath.Base(finalPath),
	)

	entries, readErr := os.ReadDir(outputDir)
	require.NoError(t, readErr)
	assert.Len(t, entries, 1)

	// Working directory is gone after finalization.
	require.Len(t, mdl.tempDirs, 1)
	assert.NoDirExists(t, mdl.tempDirs[0])

	// Join mode and the token ceiling are always requested.
	assert.True(t, mdl.lastReq.JoinAudio)
	assert.Equal(t, 4096, mdl.lastReq.MaxTokens)
}

func TestGenerateFileHonorsExplicitFilename(t *testing.T) {
	t.Parallel()

	pipe, loaded := newTestPipeline(t, &mockModel{})

	finalPath, err := pipe.GenerateFile(
		context.Background(),
		loaded,
		core.Request{Text: "Take one."},
		t.TempDir(),
		"take1",
	)
	require.NoError(t, err)
	assert.Equal(t, "take1.wav", filepath.Base(finalPath))
}

func TestGenerateFileFailureRemovesWorkingDirectory(t *testing.T) {
	t.Parallel()

	mdl := &mockModel{fail: true}
	pipe, loaded := newTestPipeline(t, mdl)

	_, err := pipe.GenerateFile(
		context.Background(), loaded, core.Request{Text: "doomed"}, t.TempDir(), "",
	)
	require.ErrorIs(t, err, errMockGenerate)

	require.Len(t, mdl.tempDirs, 1)
	assert.NoDirExists(t, mdl.tempDirs[0])
}

func TestGenerateBytesLeavesNothingBehind(t *testing.T) {
	t.Parallel()

	mdl := &mockModel{}
	pipe, loaded := newTestPipeline(t, mdl)

	data, err := pipe.GenerateBytes(
		context.Background(), loaded, core.Request{Text: "Serve me."},
	)
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF fake audio"), data)

	require.Len(t, mdl.tempDirs, 1)
	assert.NoDirExists(t, mdl.tempDirs[0])
}
