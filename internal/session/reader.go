// Package session drives the interactive menu: model selection,
// per-mode parameter prompts, and the blocking text-generation loops.
package session

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// Exit words accepted anywhere a text prompt loops.
var exitWords = map[string]struct{}{
	"exit": {},
	"quit": {},
	"q":    {},
}

// ErrSessionClosed signals that the user ended the current prompt loop
// with an exit word, an interrupt, or end-of-input.
var ErrSessionClosed = errors.New("session closed")

// LineReader abstracts prompt input so sessions can be driven by
// scripted input in tests.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// terminalReader implements LineReader on a readline instance, which
// also restores terminal state after an interrupt.
type terminalReader struct {
	rl *readline.Instance
}

// NewTerminalReader creates the interactive LineReader.
func NewTerminalReader() (LineReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal input: %w", err)
	}

	return &terminalReader{rl: rl}, nil
}

func (r *terminalReader) ReadLine(prompt string) (string, error) {
	r.rl.SetPrompt(prompt)

	line, err := r.rl.Readline()
	if err != nil {
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return "", ErrSessionClosed
		}

		return "", fmt.Errorf("failed to read input: %w", err)
	}

	return strings.TrimSpace(line), nil
}

func (r *terminalReader) Close() error {
	err := r.rl.Close()
	if err != nil {
		return fmt.Errorf("failed to close terminal input: %w", err)
	}

	return nil
}

// isExitWord reports whether input asks to leave the current loop.
func isExitWord(input string) bool {
	_, ok := exitWords[strings.ToLower(input)]

	return ok
}
