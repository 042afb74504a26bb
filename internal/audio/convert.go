package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/book-expert/logger"
)

const (
	wavExtension = ".wav"

	// Conversion target: mono 16-bit PCM at the synthesizer's expected
	// sample rate.
	codecPCM16LE = "pcm_s16le"
	monoChannels = "1"

	convertedFilePattern = "tts-convert-*.wav"
)

// ErrReferenceMissing is returned when the reference audio path does
// not name an existing file.
var ErrReferenceMissing = errors.New("reference audio not found")

// FFmpegConverter implements core.Converter by shelling out to ffmpeg.
type FFmpegConverter struct {
	ffmpegPath string
	sampleRate int
	timeout    time.Duration
	log        *logger.Logger
}

// NewFFmpegConverter creates a converter targeting the given sample rate.
func NewFFmpegConverter(
	ffmpegPath string,
	sampleRate int,
	timeout time.Duration,
	log *logger.Logger,
) *FFmpegConverter {
	return &FFmpegConverter{
		ffmpegPath: ffmpegPath,
		sampleRate: sampleRate,
		timeout:    timeout,
		log:        log,
	}
}

// EnsureWAV returns inputPath unchanged when it already holds a usable
// mono/stereo WAV; otherwise it transcodes into a throwaway temp file
// and returns that path with converted=true. The caller removes the
// converted file once it has been persisted elsewhere.
func (c *FFmpegConverter) EnsureWAV(
	ctx context.Context,
	inputPath string,
) (string, bool, error) {
	_, statErr := os.Stat(inputPath)
	if statErr != nil {
		return "", false, fmt.Errorf("%w: %s", ErrReferenceMissing, inputPath)
	}

	if filepath.Ext(inputPath) == wavExtension {
		probeErr := ProbeWAV(inputPath)
		if probeErr == nil {
			return inputPath, false, nil
		}

		c.log.Warn("Reference %s has a .wav extension but failed the header probe: %v", inputPath, probeErr)
	}

	convertedPath, convertErr := c.transcode(ctx, inputPath)
	if convertErr != nil {
		return "", false, convertErr
	}

	return convertedPath, true, nil
}

func (c *FFmpegConverter) transcode(ctx context.Context, inputPath string) (string, error) {
	tempFile, tempErr := os.CreateTemp("", convertedFilePattern)
	if tempErr != nil {
		return "", fmt.Errorf("failed to create conversion temp file: %w", tempErr)
	}

	closeErr := tempFile.Close()
	if closeErr != nil {
		return "", fmt.Errorf("failed to close conversion temp file: %w", closeErr)
	}

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := []string{
		"-y",
		"-v", "error",
		"-i", inputPath,
		"-ar", strconv.Itoa(c.sampleRate),
		"-ac", monoChannels,
		"-c:a", codecPCM16LE,
		tempFile.Name(),
	}

	// #nosec G204 -- the ffmpeg path comes from configuration and the
	// input path has been stat'd above
	cmd := exec.CommandContext(runCtx, c.ffmpegPath, args...)

	output, runErr := cmd.CombinedOutput()
	if runErr != nil {
		removeErr := os.Remove(tempFile.Name())
		if removeErr != nil && !os.IsNotExist(removeErr) {
			c.log.Warn("Failed to remove conversion temp file %s: %v", tempFile.Name(), removeErr)
		}

		return "", fmt.Errorf(
			"ffmpeg conversion failed (is ffmpeg installed?): %w - output: %s",
			runErr,
			string(output),
		)
	}

	return tempFile.Name(), nil
}
