// Package core defines the interfaces and request types shared by the
// TTS manager's components.
package core

import "context"

// Mode identifies how a model conditions its output.
type Mode string

// The three generation modes supported by the external synthesizer.
const (
	// ModeCustom synthesizes with a predefined named speaker.
	ModeCustom Mode = "custom"
	// ModeDesign synthesizes from a free-text voice description.
	ModeDesign Mode = "design"
	// ModeClone synthesizes conditioned on reference audio and its transcript.
	ModeClone Mode = "clone"
)

// Request holds the parameters for a single generation call.
// It is transient: constructed per invocation and never persisted.
type Request struct {
	// Text is the synthesis-ready text. Line breaks separate segments
	// that the external generator synthesizes independently.
	Text string

	// Voice names a predefined speaker (custom mode only).
	Voice string

	// Instruct carries the emotion instruction (custom mode) or the
	// voice description (design mode).
	Instruct string

	// Speed is the playback speed multiplier (custom mode only).
	// Zero means the generator's default.
	Speed float64

	// RefAudio and RefText condition clone-mode generation.
	RefAudio string
	RefText  string

	// OutputDir is the temporary directory the generator writes into.
	// The caller owns its lifecycle.
	OutputDir string

	// JoinAudio asks the generator to concatenate line-separated
	// segments into one output file.
	JoinAudio bool

	// MaxTokens caps the tokens generated per segment.
	MaxTokens int
}

// Model is a loaded synthesizer handle. A session loads one model and
// reuses it across successive generations.
type Model interface {
	Generate(ctx context.Context, req Request) error
}

// Synthesizer loads models by path or remote repository identifier.
type Synthesizer interface {
	Load(ctx context.Context, modelPath string) (Model, error)
}

// Converter turns arbitrary reference audio into a WAV file the
// synthesizer accepts.
type Converter interface {
	// EnsureWAV returns a path to a usable WAV for the given input.
	// converted reports whether an intermediate file was produced; the
	// caller is responsible for removing it.
	EnsureWAV(ctx context.Context, inputPath string) (wavPath string, converted bool, err error)
}

// Player plays a generated audio file. Implementations are best-effort:
// a missing system player is not an error.
type Player interface {
	Play(ctx context.Context, path string) error
}

// ObjectStore defines the interface for interacting with a key-value blob store.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
}
