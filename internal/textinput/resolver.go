// Package textinput turns raw text arguments into synthesis-ready text.
//
// An argument may be literal text or a path to a .txt file, including
// the quoted, backslash-escaped form terminals produce when a file is
// dragged onto the prompt.
package textinput

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

const (
	textFileExtension = ".txt"

	escapedSpace = `\ `
	plainSpace   = " "
)

// sentenceBoundaryPattern matches terminal punctuation followed by
// whitespace. The generator treats line breaks as independent synthesis
// segments, so rejoining sentences with newlines keeps each segment
// under the per-segment token ceiling while join mode stitches the
// result back into one file.
const sentenceBoundaryPattern = `([.!?])\s+`

// Resolver resolves raw text arguments using precompiled patterns.
type Resolver struct {
	sentenceBoundary *regexp.Regexp
}

// NewResolver creates a resolver with its patterns compiled upfront.
func NewResolver() *Resolver {
	return &Resolver{
		sentenceBoundary: regexp.MustCompile(sentenceBoundaryPattern),
	}
}

// Resolve returns synthesis text for a raw argument. Arguments that
// name an existing .txt file resolve to the file's trimmed contents;
// anything else is used verbatim (trimmed).
func (r *Resolver) Resolve(arg string) (string, error) {
	candidate := CleanPath(arg)

	if isTextFile(candidate) {
		data, err := os.ReadFile(candidate)
		if err != nil {
			return "", fmt.Errorf("failed to read text file %q: %w", candidate, err)
		}

		return strings.TrimSpace(string(data)), nil
	}

	return strings.TrimSpace(arg), nil
}

// SplitSentences splits text at sentence boundaries and rejoins the
// sentences with line separators. Text without terminal punctuation
// passes through unchanged.
func (r *Resolver) SplitSentences(text string) string {
	marked := r.sentenceBoundary.ReplaceAllString(text, "$1\n")

	var sentences []string

	for _, line := range strings.Split(marked, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		sentences = append(sentences, trimmed)
	}

	return strings.Join(sentences, "\n")
}

// CleanPath undoes the quoting terminals apply to dragged-in paths:
// matched surrounding quotes are stripped and escaped spaces unescaped.
func CleanPath(input string) string {
	path := strings.TrimSpace(input)

	if len(path) > 1 && (path[0] == '\'' || path[0] == '"') && path[len(path)-1] == path[0] {
		path = path[1 : len(path)-1]
	}

	return strings.ReplaceAll(path, escapedSpace, plainSpace)
}

// isTextFile reports whether candidate names an existing regular file
// with a .txt extension.
func isTextFile(candidate string) bool {
	if !strings.HasSuffix(candidate, textFileExtension) {
		return false
	}

	info, err := os.Stat(candidate)
	if err != nil {
		return false
	}

	return info.Mode().IsRegular()
}
