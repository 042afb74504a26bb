package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/book-expert/logger"

	"github.com/book-expert/tts-manager/internal/config"
	"github.com/book-expert/tts-manager/internal/core"
	"github.com/book-expert/tts-manager/internal/model"
	"github.com/book-expert/tts-manager/internal/pipeline"
	"github.com/book-expert/tts-manager/internal/textinput"
	"github.com/book-expert/tts-manager/internal/voices"
)

// Menu keys and defaults.
const (
	menuExitKey = "q"

	fallbackSpeaker = "Vivian"
	defaultInstruct = "Normal tone"
	defaultRefText  = "."

	speedNormal = 1.0
	speedFast   = 1.3
	speedSlow   = 0.8

	textPrompt = "\nEnter text (or drag .txt file): "
)

// emotionExamples are shown before the emotion-instruction prompt.
var emotionExamples = []string{
	"Sad and crying, speaking slowly",
	"Excited and happy, speaking very fast",
	"Angry and shouting",
	"Whispering quietly",
}

// Driver runs the interactive menu. Everything is single-threaded: one
// model is loaded per session and every generation blocks the prompt
// until the synthesizer returns.
type Driver struct {
	cfg        *config.Config
	pipe       *pipeline.Pipeline
	voiceStore *voices.Store
	converter  core.Converter
	player     core.Player
	resolver   *textinput.Resolver
	reader     LineReader
	out        io.Writer
	log        *logger.Logger
}

// NewDriver wires a session driver from its collaborators. The reader
// and writer are injected so tests can script an entire session.
func NewDriver(
	cfg *config.Config,
	pipe *pipeline.Pipeline,
	voiceStore *voices.Store,
	converter core.Converter,
	player core.Player,
	reader LineReader,
	out io.Writer,
	log *logger.Logger,
) *Driver {
	return &Driver{
		cfg:        cfg,
		pipe:       pipe,
		voiceStore: voiceStore,
		converter:  converter,
		player:     player,
		resolver:   textinput.NewResolver(),
		reader:     reader,
		out:        out,
		log:        log,
	}
}

// Run loops on the main menu until the user exits.
func (d *Driver) Run(ctx context.Context) error {
	for {
		d.printMainMenu()

		choice, err := d.reader.ReadLine("\nSelect: ")
		if err != nil {
			if errors.Is(err, ErrSessionClosed) {
				return nil
			}

			return err
		}

		if strings.EqualFold(choice, menuExitKey) {
			return nil
		}

		desc, ok := d.descriptorForChoice(choice)
		if !ok {
			fmt.Fprintln(d.out, "Invalid selection.")

			continue
		}

		d.runMode(ctx, desc)
	}
}

func (d *Driver) printMainMenu() {
	fmt.Fprintln(d.out, "\n"+strings.Repeat("=", 40))
	fmt.Fprintln(d.out, " Qwen3-TTS Manager")
	fmt.Fprintln(d.out, strings.Repeat("=", 40))

	catalog := model.Catalog()
	lastTier := model.Tier("")

	for index, desc := range catalog {
		if desc.Tier != lastTier {
			lastTier = desc.Tier

			if desc.Tier == model.TierPro {
				fmt.Fprintln(d.out, "\n  Pro Models (1.7B - Best Quality)")
			} else {
				fmt.Fprintln(d.out, "\n  Lite Models (0.6B - Faster)")
			}
		}

		fmt.Fprintf(d.out, "  %d. %s\n", index+1, desc.Name)
	}

	fmt.Fprintln(d.out, "\n  q. Exit")
}

// descriptorForChoice maps a menu number onto the catalog.
func (d *Driver) descriptorForChoice(choice string) (model.Descriptor, bool) {
	index, err := strconv.Atoi(choice)
	if err != nil {
		return model.Descriptor{}, false
	}

	catalog := model.Catalog()
	if index < 1 || index > len(catalog) {
		return model.Descriptor{}, false
	}

	return catalog[index-1], true
}

func (d *Driver) runMode(ctx context.Context, desc model.Descriptor) {
	switch desc.Mode {
	case core.ModeCustom:
		d.runCustomSession(ctx, desc)
	case core.ModeDesign:
		d.runDesignSession(ctx, desc)
	case core.ModeClone:
		d.runCloneManager(ctx, desc)
	}
}

// loadModel resolves the descriptor and loads it, reporting failures on
// the console. Load failures end the session but never the menu.
func (d *Driver) loadModel(ctx context.Context, desc model.Descriptor) (core.Model, bool) {
	fmt.Fprintf(d.out, "\nLoading %s...\n", desc.Name)

	modelPath := model.SmartPath(d.cfg.Paths.ModelsDir, desc.Folder)

	mdl, err := d.pipe.LoadModel(ctx, modelPath)
	if err != nil {
		fmt.Fprintf(d.out, "Load failed: %v\n", err)
		d.log.Error("Model load failed for %s: %v", desc.Folder, err)

		return nil, false
	}

	return mdl, true
}

func (d *Driver) runCustomSession(ctx context.Context, desc model.Descriptor) {
	mdl, ok := d.loadModel(ctx, desc)
	if !ok {
		return
	}

	fmt.Fprintf(d.out, "\n--- %s ---\n", desc.Name)

	speaker := d.promptSpeaker()
	instruct := d.promptInstruct()
	speed := d.promptSpeed()

	d.textLoop(ctx, textPrompt, func(text string) (string, error) {
		req := core.Request{
			Text:     text,
			Voice:    speaker,
			Instruct: instruct,
			Speed:    speed,
		}

		return d.pipe.GenerateFile(
			ctx, mdl, req,
			filepath.Join(d.cfg.Paths.OutputsDir, desc.OutputSubfolder),
			"",
		)
	})
}

func (d *Driver) runDesignSession(ctx context.Context, desc model.Descriptor) {
	mdl, ok := d.loadModel(ctx, desc)
	if !ok {
		return
	}

	fmt.Fprintf(d.out, "\n--- %s ---\n", desc.Name)

	instruct, err := d.reader.ReadLine("Describe the voice: ")
	if err != nil || instruct == "" {
		return
	}

	d.textLoop(ctx, textPrompt, func(text string) (string, error) {
		req := core.Request{
			Text:     text,
			Instruct: instruct,
		}

		return d.pipe.GenerateFile(
			ctx, mdl, req,
			filepath.Join(d.cfg.Paths.OutputsDir, desc.OutputSubfolder),
			"",
		)
	})
}

// promptSpeaker lists the known speakers and returns the chosen one,
// falling back to a fixed default for unknown names.
func (d *Driver) promptSpeaker() string {
	fmt.Fprintln(d.out, "Available Speakers: "+strings.Join(model.Speakers(), ", "))

	choice, err := d.reader.ReadLine("\nSelect Speaker (Name): ")
	if err != nil || !model.IsSupportedSpeaker(choice) {
		fmt.Fprintf(d.out, "Using: %s\n", fallbackSpeaker)

		return fallbackSpeaker
	}

	fmt.Fprintf(d.out, "Using: %s\n", choice)

	return choice
}

func (d *Driver) promptInstruct() string {
	fmt.Fprintln(d.out, "\nEmotion Examples:")

	for _, example := range emotionExamples {
		fmt.Fprintf(d.out, "  - %s\n", example)
	}

	instruct, err := d.reader.ReadLine("Emotion Instruction: ")
	if err != nil || instruct == "" {
		return defaultInstruct
	}

	return instruct
}

func (d *Driver) promptSpeed() float64 {
	fmt.Fprintln(d.out, "\nSpeed:")
	fmt.Fprintln(d.out, "  1. Normal (1.0x)")
	fmt.Fprintln(d.out, "  2. Fast (1.3x)")
	fmt.Fprintln(d.out, "  3. Slow (0.8x)")

	choice, err := d.reader.ReadLine("Choice (1-3): ")
	if err != nil {
		return speedNormal
	}

	switch choice {
	case "2":
		return speedFast
	case "3":
		return speedSlow
	default:
		return speedNormal
	}
}

// textLoop repeatedly prompts for text and generates one file per
// input until the user exits. Generation errors are printed and the
// loop continues.
func (d *Driver) textLoop(
	ctx context.Context,
	prompt string,
	generate func(text string) (string, error),
) {
	for {
		text, ok := d.promptText(prompt)
		if !ok {
			return
		}

		if text == "" {
			continue
		}

		fmt.Fprintln(d.out, "Generating...")

		finalPath, err := generate(d.resolver.SplitSentences(text))
		if err != nil {
			fmt.Fprintf(d.out, "Error: %v\n", err)
			d.log.Error("Generation failed: %v", err)

			continue
		}

		fmt.Fprintf(d.out, "Saved: %s\n", finalPath)

		d.maybePlay(ctx, finalPath)
	}
}

// promptText reads one text input, resolving dragged-in .txt files.
// ok is false when the user asked to leave the loop; an empty text
// result with ok still true means prompt again.
func (d *Driver) promptText(prompt string) (string, bool) {
	raw, err := d.reader.ReadLine(prompt)
	if err != nil {
		return "", false
	}

	if raw == "" {
		return "", true
	}

	if isExitWord(raw) {
		return "", false
	}

	text, resolveErr := d.resolver.Resolve(raw)
	if resolveErr != nil {
		fmt.Fprintf(d.out, "Error reading file: %v\n", resolveErr)

		return "", true
	}

	if text == "" {
		return "", true
	}

	if cleaned := textinput.CleanPath(raw); strings.HasSuffix(cleaned, ".txt") {
		fmt.Fprintf(d.out, "Reading from: %s\n", filepath.Base(cleaned))
	}

	return text, true
}

func (d *Driver) maybePlay(ctx context.Context, path string) {
	if !d.cfg.Audio.AutoPlay {
		return
	}

	fmt.Fprintln(d.out, "Playing...")

	err := d.player.Play(ctx, path)
	if err != nil {
		d.log.Warn("Playback failed: %v", err)
	}
}
