// Package pipeline owns the lifecycle of a single generation call: a
// fresh temporary working directory, the synthesis invocation, and the
// relocation or collection of the produced file. The temporary
// directory is destroyed on success and failure alike.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/book-expert/logger"

	"github.com/book-expert/tts-manager/internal/core"
	"github.com/book-expert/tts-manager/internal/output"
)

const tempDirPattern = "tts-work-*"

// Pipeline wires a synthesizer to the output finalizer.
type Pipeline struct {
	synthesizer    core.Synthesizer
	maxTokens      int
	filenameMaxLen int
	log            *logger.Logger
}

// New creates a pipeline with the configured generation limits.
func New(
	synthesizer core.Synthesizer,
	maxTokens, filenameMaxLen int,
	log *logger.Logger,
) *Pipeline {
	return &Pipeline{
		synthesizer:    synthesizer,
		maxTokens:      maxTokens,
		filenameMaxLen: filenameMaxLen,
		log:            log,
	}
}

// LoadModel resolves nothing itself; it hands the already-resolved
// path to the synthesizer and returns the session's model handle.
func (p *Pipeline) LoadModel(ctx context.Context, modelPath string) (core.Model, error) {
	mdl, err := p.synthesizer.Load(ctx, modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", modelPath, err)
	}

	return mdl, nil
}

// GenerateFile runs one generation and finalizes the result under
// outputDir. When filename is empty a timestamp+snippet name is
// derived from the request text. The final file path is returned.
func (p *Pipeline) GenerateFile(
	ctx context.Context,
	mdl core.Model,
	req core.Request,
	outputDir, filename string,
) (string, error) {
	tempDir, genErr := p.generate(ctx, mdl, req)
	if genErr != nil {
		return "", genErr
	}

	if filename == "" {
		filename = output.MakeFilename(time.Now(), req.Text, p.filenameMaxLen)
	}

	finalPath, finalizeErr := output.Finalize(tempDir, outputDir, filename)
	if finalizeErr != nil {
		return "", finalizeErr
	}

	return finalPath, nil
}

// GenerateBytes runs one generation and returns the produced audio
// data, leaving nothing behind on disk.
func (p *Pipeline) GenerateBytes(
	ctx context.Context,
	mdl core.Model,
	req core.Request,
) ([]byte, error) {
	tempDir, genErr := p.generate(ctx, mdl, req)
	if genErr != nil {
		return nil, genErr
	}

	defer output.Cleanup(tempDir)

	source, findErr := output.FindGenerated(tempDir)
	if findErr != nil {
		return nil, findErr
	}

	data, readErr := os.ReadFile(source)
	if readErr != nil {
		return nil, fmt.Errorf("failed to read generated audio: %w", readErr)
	}

	return data, nil
}

// generate creates the working directory and invokes the model. The
// directory is removed here only on failure; success hands ownership
// to the caller.
func (p *Pipeline) generate(
	ctx context.Context,
	mdl core.Model,
	req core.Request,
) (string, error) {
	tempDir, tempErr := os.MkdirTemp("", tempDirPattern)
	if tempErr != nil {
		return "", fmt.Errorf("failed to create working directory: %w", tempErr)
	}

	req.OutputDir = tempDir
	req.JoinAudio = true
	req.MaxTokens = p.maxTokens

	genErr := mdl.Generate(ctx, req)
	if genErr != nil {
		output.Cleanup(tempDir)

		return "", fmt.Errorf("generation failed: %w", genErr)
	}

	return tempDir, nil
}
