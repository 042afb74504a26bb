package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/book-expert/tts-manager/internal/core"
	"github.com/book-expert/tts-manager/internal/model"
	"github.com/book-expert/tts-manager/internal/textinput"
	"github.com/book-expert/tts-manager/internal/voices"
)

// cloneReference is a resolved reference voice for a cloning session.
// cleanup removes any intermediate conversion file once the session is
// over; it is always safe to call.
type cloneReference struct {
	audioPath  string
	transcript string
	cleanup    func()
}

// runCloneManager shows the cloning submenu: pick a saved voice, enroll
// a new one, or clone straight from a reference file.
func (d *Driver) runCloneManager(ctx context.Context, desc model.Descriptor) {
	for {
		fmt.Fprintf(d.out, "\n--- %s ---\n", desc.Name)
		fmt.Fprintln(d.out, "  1. Use a saved voice")
		fmt.Fprintln(d.out, "  2. Enroll a new voice")
		fmt.Fprintln(d.out, "  3. Quick clone from a file")
		fmt.Fprintln(d.out, "  4. Back")

		choice, err := d.reader.ReadLine("\nSelect: ")
		if err != nil {
			return
		}

		switch choice {
		case "1":
			d.cloneWithSavedVoice(ctx, desc)
		case "2":
			d.enrollVoice(ctx)
		case "3":
			d.quickClone(ctx, desc)
		case "4":
			return
		default:
			fmt.Fprintln(d.out, "Invalid selection.")
		}
	}
}

func (d *Driver) cloneWithSavedVoice(ctx context.Context, desc model.Descriptor) {
	profile, err := d.pickSavedVoice()
	if err != nil {
		if errors.Is(err, voices.ErrNoSavedVoices) {
			fmt.Fprintln(d.out, "No saved voices yet. Enroll one first.")
		} else if !errors.Is(err, ErrSessionClosed) {
			fmt.Fprintf(d.out, "Error: %v\n", err)
		}

		return
	}

	reference := cloneReference{
		audioPath:  profile.AudioPath,
		transcript: profile.Transcript,
		cleanup:    func() {},
	}

	d.runCloneSession(ctx, desc, reference)
}

// pickSavedVoice lists enrolled voices and loads the one the user picks
// by number.
func (d *Driver) pickSavedVoice() (voices.Profile, error) {
	names, listErr := d.voiceStore.List()
	if listErr != nil {
		return voices.Profile{}, listErr
	}

	if len(names) == 0 {
		return voices.Profile{}, voices.ErrNoSavedVoices
	}

	fmt.Fprintln(d.out, "\nSaved voices:")

	for index, name := range names {
		fmt.Fprintf(d.out, "  %d. %s\n", index+1, name)
	}

	choice, readErr := d.reader.ReadLine("\nSelect voice: ")
	if readErr != nil {
		return voices.Profile{}, readErr
	}

	index, convErr := strconv.Atoi(choice)
	if convErr != nil || index < 1 || index > len(names) {
		return voices.Profile{}, fmt.Errorf("%w: %s", voices.ErrVoiceNotFound, choice)
	}

	return d.voiceStore.Load(names[index-1])
}

func (d *Driver) enrollVoice(ctx context.Context) {
	name, err := d.reader.ReadLine("\nVoice name: ")
	if err != nil || name == "" {
		return
	}

	referencePath, err := d.promptReferencePath()
	if err != nil {
		return
	}

	transcript, err := d.reader.ReadLine("Transcript of the reference (optional): ")
	if err != nil {
		return
	}

	safeName, enrollErr := d.voiceStore.Enroll(ctx, name, referencePath, transcript)
	if enrollErr != nil {
		fmt.Fprintf(d.out, "Enrollment failed: %v\n", enrollErr)
		d.log.Error("Voice enrollment failed: %v", enrollErr)

		return
	}

	fmt.Fprintf(d.out, "Enrolled voice: %s\n", safeName)
}

// quickClone clones from a reference file without persisting it. The
// reference transcript defaults to a bare period, which the generator
// accepts as an unknown transcript.
func (d *Driver) quickClone(ctx context.Context, desc model.Descriptor) {
	referencePath, err := d.promptReferencePath()
	if err != nil {
		return
	}

	transcript, err := d.reader.ReadLine("Transcript of the reference (optional): ")
	if err != nil {
		return
	}

	if transcript == "" {
		transcript = defaultRefText
	}

	wavPath, converted, convertErr := d.converter.EnsureWAV(ctx, referencePath)
	if convertErr != nil {
		fmt.Fprintf(d.out, "Error: %v\n", convertErr)
		d.log.Error("Reference preparation failed: %v", convertErr)

		return
	}

	reference := cloneReference{
		audioPath:  wavPath,
		transcript: transcript,
		cleanup:    func() {},
	}

	if converted {
		reference.cleanup = func() {
			removeErr := os.Remove(wavPath)
			if removeErr != nil && !os.IsNotExist(removeErr) {
				d.log.Warn("Failed to remove conversion temp file %s: %v", wavPath, removeErr)
			}
		}
	}

	d.runCloneSession(ctx, desc, reference)
}

// promptReferencePath reads and cleans a reference audio path.
func (d *Driver) promptReferencePath() (string, error) {
	raw, err := d.reader.ReadLine("Reference audio path: ")
	if err != nil {
		return "", err
	}

	path := textinput.CleanPath(raw)
	if path == "" {
		return "", ErrSessionClosed
	}

	return path, nil
}

// runCloneSession loads the clone model and runs the text loop with
// the chosen reference voice.
func (d *Driver) runCloneSession(
	ctx context.Context,
	desc model.Descriptor,
	reference cloneReference,
) {
	defer reference.cleanup()

	mdl, ok := d.loadModel(ctx, desc)
	if !ok {
		return
	}

	d.textLoop(ctx, textPrompt, func(text string) (string, error) {
		req := core.Request{
			Text:     text,
			RefAudio: reference.audioPath,
			RefText:  reference.transcript,
		}

		return d.pipe.GenerateFile(
			ctx, mdl, req,
			filepath.Join(d.cfg.Paths.OutputsDir, desc.OutputSubfolder),
			"",
		)
	})
}
