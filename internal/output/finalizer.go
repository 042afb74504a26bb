// Package output locates generated audio inside a temporary working
// directory and relocates it under the output directory with a
// timestamp-and-snippet name.
package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Candidate output file names. Join mode produces one stitched file;
// without it the generator numbers each segment.
const (
	joinedFileName       = "audio.wav"
	firstSegmentFileName = "audio_000.wav"
)

// Filename derivation constants. Word characters are matched per
// Unicode category so CJK text keeps its snippet instead of falling
// back.
const (
	wavExtension        = ".wav"
	timestampLayout     = "15-04-05"
	fallbackSnippet     = "audio"
	snippetStripPattern = `[^\p{L}\p{N}_\s-]`
	wordCharPattern     = `[\p{L}\p{N}_]`

	filePermissions = 0o600
	dirPermissions  = 0o750
)

// ErrNoOutputProduced is returned when the generator wrote neither
// candidate file into the temporary directory.
var ErrNoOutputProduced = errors.New("generation produced no output")

var (
	snippetStripRegexp = regexp.MustCompile(snippetStripPattern)
	wordCharRegexp     = regexp.MustCompile(wordCharPattern)
)

// FindGenerated returns the path of the file the generator produced in
// tempDir, trying the joined name first.
func FindGenerated(tempDir string) (string, error) {
	candidates := []string{joinedFileName, firstSegmentFileName}

	for _, name := range candidates {
		candidate := filepath.Join(tempDir, name)

		_, statErr := os.Stat(candidate)
		if statErr == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w in %s", ErrNoOutputProduced, tempDir)
}

// MakeFilename derives an output file name from a timestamp and a
// sanitized snippet of the spoken text: non-word characters stripped,
// truncated to maxSnippetLen runes, spaces replaced with underscores.
// A snippet left without any word character falls back to the literal
// "audio".
func MakeFilename(now time.Time, text string, maxSnippetLen int) string {
	snippet := snippetStripRegexp.ReplaceAllString(text, "")

	runes := []rune(snippet)
	if len(runes) > maxSnippetLen {
		runes = []rune(strings.TrimSpace(string(runes[:maxSnippetLen])))
	}

	snippet = strings.ReplaceAll(strings.TrimSpace(string(runes)), " ", "_")
	snippet = strings.ReplaceAll(snippet, "\n", "_")

	if !wordCharRegexp.MatchString(snippet) {
		snippet = fallbackSnippet
	}

	return now.Format(timestampLayout) + "_" + snippet + wavExtension
}

// EnsureWavSuffix appends the .wav extension when the name lacks it.
func EnsureWavSuffix(filename string) string {
	if strings.HasSuffix(filename, wavExtension) {
		return filename
	}

	return filename + wavExtension
}

// Finalize moves the generated file out of tempDir into outputDir under
// the given filename, creating outputDir as needed, and removes tempDir
// unconditionally. On failure the temporary directory is still removed.
func Finalize(tempDir, outputDir, filename string) (string, error) {
	defer Cleanup(tempDir)

	source, findErr := FindGenerated(tempDir)
	if findErr != nil {
		return "", findErr
	}

	mkdirErr := os.MkdirAll(outputDir, dirPermissions)
	if mkdirErr != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outputDir, mkdirErr)
	}

	destination := filepath.Join(outputDir, EnsureWavSuffix(filename))

	moveErr := moveFile(source, destination)
	if moveErr != nil {
		return "", moveErr
	}

	return destination, nil
}

// Cleanup removes the temporary working directory, best effort.
func Cleanup(tempDir string) {
	_ = os.RemoveAll(tempDir)
}

// moveFile renames when source and destination share a filesystem and
// falls back to copy-then-remove when they do not.
func moveFile(source, destination string) error {
	renameErr := os.Rename(source, destination)
	if renameErr == nil {
		return nil
	}

	copyErr := copyFile(source, destination)
	if copyErr != nil {
		return fmt.Errorf("failed to move %s to %s: %w", source, destination, copyErr)
	}

	removeErr := os.Remove(source)
	if removeErr != nil {
		return fmt.Errorf("failed to remove source file %s: %w", source, removeErr)
	}

	return nil
}

func copyFile(source, destination string) error {
	in, openErr := os.Open(source)
	if openErr != nil {
		return fmt.Errorf("failed to open source: %w", openErr)
	}
	defer in.Close()

	out, createErr := os.OpenFile(
		destination,
		os.O_WRONLY|os.O_CREATE|os.O_TRUNC,
		filePermissions,
	)
	if createErr != nil {
		return fmt.Errorf("failed to create destination: %w", createErr)
	}

	_, copyErr := io.Copy(out, in)
	closeErr := out.Close()

	if copyErr != nil {
		return fmt.Errorf("failed to copy contents: %w", copyErr)
	}

	if closeErr != nil {
		return fmt.Errorf("failed to close destination: %w", closeErr)
	}

	return nil
}
