// Package synth invokes the external neural synthesizer. The actual
// generation is delegated to the mlx_audio generator binary, which is
// treated as a black box: load a model, hand it text and conditioning
// parameters, and collect the files it writes.
package synth

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/book-expert/logger"

	"github.com/book-expert/tts-manager/internal/core"
)

// Generator flag names, matching the external library's keyword
// arguments (load_model / generate_audio).
const (
	flagModel     = "--model"
	flagText      = "--text"
	flagOutput    = "--output_path"
	flagJoinAudio = "--join_audio"
	flagMaxTokens = "--max_tokens"
	flagVoice     = "--voice"
	flagInstruct  = "--instruct"
	flagSpeed     = "--speed"
	flagRefAudio  = "--ref_audio"
	flagRefText   = "--ref_text"
)

// Static errors.
var (
	ErrModelPathEmpty = errors.New("model path cannot be empty")
	ErrTextEmpty      = errors.New("text cannot be empty")
	ErrOutputDirEmpty = errors.New("output directory cannot be empty")
)

// MLXSynthesizer loads models for the mlx_audio generator binary.
// Loading is deferred to the external process: Load only records the
// resolved path, and the generator resolves or downloads the model on
// first use.
type MLXSynthesizer struct {
	generatorBin string
	log          *logger.Logger
}

// New creates a synthesizer that spawns the given generator binary.
func New(generatorBin string, log *logger.Logger) *MLXSynthesizer {
	return &MLXSynthesizer{
		generatorBin: generatorBin,
		log:          log,
	}
}

// Load returns a model handle bound to the given path or remote
// repository identifier. The path is not validated here; a missing or
// broken model surfaces when the generator rejects it.
func (s *MLXSynthesizer) Load(_ context.Context, modelPath string) (core.Model, error) {
	if modelPath == "" {
		return nil, ErrModelPathEmpty
	}

	return &execModel{
		generatorBin: s.generatorBin,
		modelPath:    modelPath,
		log:          s.log,
	}, nil
}

// execModel runs one generator process per Generate call, holding the
// resolved model path for the lifetime of a session.
type execModel struct {
	generatorBin string
	modelPath    string
	log          *logger.Logger
}

// Generate invokes the external generator, blocking until it exits.
// The generator writes its output files into req.OutputDir.
func (m *execModel) Generate(ctx context.Context, req core.Request) error {
	err := validateRequest(req)
	if err != nil {
		return err
	}

	args := m.buildArgs(req)

	// #nosec G204 -- the binary comes from configuration and arguments
	// are assembled from validated request fields
	cmd := exec.CommandContext(ctx, m.generatorBin, args...)

	output, runErr := cmd.CombinedOutput()
	if runErr != nil {
		return fmt.Errorf(
			"generator execution failed: %w - output: %s",
			runErr,
			string(output),
		)
	}

	m.log.Info("Generator finished for model %s (%d bytes of output)", m.modelPath, len(output))

	return nil
}

// buildArgs assembles the mode-dependent argument list. Exactly one of
// the three conditioning sets is populated per request.
func (m *execModel) buildArgs(req core.Request) []string {
	args := []string{
		flagModel, m.modelPath,
		flagText, req.Text,
		flagOutput, req.OutputDir,
	}

	if req.JoinAudio {
		args = append(args, flagJoinAudio)
	}

	if req.MaxTokens > 0 {
		args = append(args, flagMaxTokens, strconv.Itoa(req.MaxTokens))
	}

	if req.Voice != "" {
		args = append(args, flagVoice, req.Voice)
	}

	if req.Instruct != "" {
		args = append(args, flagInstruct, req.Instruct)
	}

	if req.Speed > 0 {
		args = append(args, flagSpeed, strconv.FormatFloat(req.Speed, 'f', 2, 64))
	}

	if req.RefAudio != "" {
		args = append(args, flagRefAudio, req.RefAudio)
	}

	if req.RefText != "" {
		args = append(args, flagRefText, req.RefText)
	}

	return args
}

func validateRequest(req core.Request) error {
	if req.Text == "" {
		return ErrTextEmpty
	}

	if req.OutputDir == "" {
		return ErrOutputDirEmpty
	}

	return nil
}
