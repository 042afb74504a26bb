package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/book-expert/tts-manager/internal/core"
	"github.com/book-expert/tts-manager/internal/model"
	"github.com/book-expert/tts-manager/internal/output"
)

// Static CLI errors.
var (
	ErrEmptyText      = errors.New("no text to synthesize")
	ErrNoReference    = errors.New("a reference is required: pass --ref-audio or --voice")
	ErrUnknownSpeaker = errors.New("unknown speaker")
)

// generateFlags are the options shared by the one-shot synthesis
// commands. Mode-specific fields stay zero for the other modes.
type generateFlags struct {
	tier      string
	outputDir string
	filename  string
	play      bool

	voice   string
	emotion string
	speed   float64

	description string

	refAudio string
	refText  string
	refVoice string
}

func (f *generateFlags) registerCommon(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.tier, "model", string(model.TierPro), "model tier: pro or lite")
	cmd.Flags().StringVarP(&f.outputDir, "output-dir", "o", "", "output directory")
	cmd.Flags().StringVar(&f.filename, "filename", "", "output file name (default: timestamp and text snippet)")
	cmd.Flags().BoolVar(&f.play, "play", false, "play the result after synthesis")
}

func newSpeakCmd(app *application) *cobra.Command {
	flags := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "speak TEXT",
		Short: "Synthesize speech with a built-in speaker",
		Long: "Synthesize speech with a built-in speaker. TEXT may be literal " +
			"text or the path to a .txt file.",
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runGenerate(app, core.ModeCustom, args[0], flags)
		},
	}

	flags.registerCommon(cmd)
	cmd.Flags().StringVar(&flags.voice, "voice", app.cfg.Generation.Voice, "speaker name")
	cmd.Flags().StringVar(&flags.emotion, "emotion", app.cfg.Generation.Emotion, "emotion instruction")
	cmd.Flags().Float64Var(&flags.speed, "speed", app.cfg.Generation.Speed, "speech speed multiplier")

	return cmd
}

func newDesignCmd(app *application) *cobra.Command {
	flags := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "design TEXT",
		Short: "Synthesize speech from a voice description",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runGenerate(app, core.ModeDesign, args[0], flags)
		},
	}

	flags.registerCommon(cmd)
	cmd.Flags().StringVar(&flags.description, "description", "", "description of the voice to design")

	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func newCloneCmd(app *application) *cobra.Command {
	flags := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "clone TEXT",
		Short: "Synthesize speech in a cloned voice",
		Long: "Synthesize speech in a cloned voice, from a reference audio " +
			"file (--ref-audio) or a previously enrolled voice (--voice).",
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runGenerate(app, core.ModeClone, args[0], flags)
		},
	}

	flags.registerCommon(cmd)
	cmd.Flags().StringVar(&flags.refAudio, "ref-audio", "", "reference audio file to clone")
	cmd.Flags().StringVar(&flags.refText, "ref-text", "", "transcript of the reference audio")
	cmd.Flags().StringVar(&flags.refVoice, "voice", "", "enrolled voice name to clone")

	return cmd
}

// runGenerate is the shared one-shot synthesis path: resolve the text,
// load the model, synthesize, and finalize the output file.
func runGenerate(
	app *application,
	mode core.Mode,
	textArg string,
	flags *generateFlags,
) error {
	desc, lookupErr := model.Lookup(mode, model.Tier(flags.tier))
	if lookupErr != nil {
		return lookupErr
	}

	text, resolveErr := app.resolver.Resolve(textArg)
	if resolveErr != nil {
		return resolveErr
	}

	if text == "" {
		return ErrEmptyText
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	ctx, cancel := context.WithTimeout(
		ctx,
		time.Duration(app.cfg.Generation.TimeoutSeconds)*time.Second,
	)
	defer cancel()

	req, cleanup, reqErr := buildRequest(ctx, app, mode, text, flags)
	if reqErr != nil {
		return reqErr
	}

	defer cleanup()

	modelPath := model.SmartPath(app.cfg.Paths.ModelsDir, desc.Folder)

	fmt.Printf("Loading %s...\n", desc.Folder)

	mdl, loadErr := app.pipe.LoadModel(ctx, modelPath)
	if loadErr != nil {
		return loadErr
	}

	outputDir := flags.outputDir
	if outputDir == "" {
		outputDir = filepath.Join(app.cfg.Paths.OutputsDir, desc.OutputSubfolder)
	}

	filename := flags.filename
	if filename != "" {
		filename = output.EnsureWavSuffix(filename)
	}

	fmt.Println("Generating...")

	finalPath, genErr := app.pipe.GenerateFile(ctx, mdl, req, outputDir, filename)
	if genErr != nil {
		return genErr
	}

	fmt.Printf("Saved: %s\n", finalPath)

	if flags.play {
		playErr := app.player.Play(ctx, finalPath)
		if playErr != nil {
			app.log.Warn("Playback failed: %v", playErr)
		}
	}

	return nil
}

// buildRequest assembles the mode-specific request. The returned
// cleanup removes any intermediate conversion file and is always safe
// to call.
func buildRequest(
	ctx context.Context,
	app *application,
	mode core.Mode,
	text string,
	flags *generateFlags,
) (core.Request, func(), error) {
	noop := func() {}

	req := core.Request{
		Text: app.resolver.SplitSentences(text),
	}

	switch mode {
	case core.ModeCustom:
		if !model.IsSupportedSpeaker(flags.voice) {
			return core.Request{}, noop, fmt.Errorf(
				"%w: %q", ErrUnknownSpeaker, flags.voice,
			)
		}

		req.Voice = flags.voice
		req.Instruct = flags.emotion
		req.Speed = flags.speed

		return req, noop, nil
	case core.ModeDesign:
		req.Instruct = flags.description

		return req, noop, nil
	case core.ModeClone:
		return buildCloneRequest(ctx, app, req, flags)
	default:
		return req, noop, nil
	}
}

func buildCloneRequest(
	ctx context.Context,
	app *application,
	req core.Request,
	flags *generateFlags,
) (core.Request, func(), error) {
	noop := func() {}

	if flags.refVoice != "" {
		profile, loadErr := app.voiceStore.Load(flags.refVoice)
		if loadErr != nil {
			return core.Request{}, noop, loadErr
		}

		req.RefAudio = profile.AudioPath
		req.RefText = profile.Transcript

		return req, noop, nil
	}

	if flags.refAudio == "" {
		return core.Request{}, noop, ErrNoReference
	}

	wavPath, converted, convertErr := app.converter.EnsureWAV(ctx, flags.refAudio)
	if convertErr != nil {
		return core.Request{}, noop, fmt.Errorf(
			"failed to prepare reference audio: %w", convertErr,
		)
	}

	cleanup := noop
	if converted {
		cleanup = func() { _ = os.Remove(wavPath) }
	}

	req.RefAudio = wavPath

	req.RefText = flags.refText
	if req.RefText == "" {
		req.RefText = "."
	}

	return req, cleanup, nil
}
