// Package voices persists enrolled voice profiles: a reference WAV and
// its transcript, keyed by a sanitized voice name.
package voices

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/book-expert/logger"

	"github.com/book-expert/tts-manager/internal/core"
)

const (
	wavExtension        = ".wav"
	transcriptExtension = ".txt"

	// maxReferencePathLen guards against terminal paste accidents: a
	// dragged path never approaches this length, pasted prose does.
	maxReferencePathLen = 300

	// Word characters are matched per Unicode category so names in any
	// of the supported speaker languages survive sanitization.
	nameStripPattern = `[^\p{L}\p{N}_\s-]`

	filePermissions = 0o600
	dirPermissions  = 0o750
)

// Static errors.
var (
	ErrEmptyName         = errors.New("voice name cannot be empty")
	ErrReferencePathLong = errors.New("reference path input too long")
	ErrNoSavedVoices     = errors.New("no saved voices found")
	ErrVoiceNotFound     = errors.New("voice not found")
)

var nameStripRegexp = regexp.MustCompile(nameStripPattern)

// Profile is an enrolled voice: a reference audio file and the
// transcript of what it says. Profiles are never mutated in place;
// re-enrollment overwrites.
type Profile struct {
	Name       string
	AudioPath  string
	Transcript string
}

// Store manages the voices directory.
type Store struct {
	dir       string
	converter core.Converter
	log       *logger.Logger
}

// NewStore creates a store over the given voices directory.
func NewStore(dir string, converter core.Converter, log *logger.Logger) *Store {
	return &Store{
		dir:       dir,
		converter: converter,
		log:       log,
	}
}

// SanitizeName reduces a display name to a filesystem-safe key:
// non-word characters stripped, surrounding space trimmed, inner
// spaces replaced with underscores.
func SanitizeName(name string) string {
	cleaned := nameStripRegexp.ReplaceAllString(name, "")
	cleaned = strings.TrimSpace(cleaned)

	return strings.ReplaceAll(cleaned, " ", "_")
}

// Enroll persists a voice under the sanitized form of name. The
// reference is transcoded to WAV when needed, and any intermediate
// conversion file is removed before returning. The sanitized name is
// returned on success.
func (s *Store) Enroll(
	ctx context.Context,
	name, referencePath, transcript string,
) (string, error) {
	safeName := SanitizeName(name)
	if safeName == "" {
		return "", ErrEmptyName
	}

	validateErr := validateReferencePath(referencePath)
	if validateErr != nil {
		return "", validateErr
	}

	wavPath, converted, convertErr := s.converter.EnsureWAV(ctx, referencePath)
	if convertErr != nil {
		return "", fmt.Errorf("failed to prepare reference audio: %w", convertErr)
	}

	if converted {
		defer s.removeConverted(wavPath)
	}

	persistErr := s.persist(safeName, wavPath, transcript)
	if persistErr != nil {
		return "", persistErr
	}

	return safeName, nil
}

// List returns the sorted names of all enrolled voices. A missing
// voices directory is an empty list, not an error.
func (s *Store) List() ([]string, error) {
	entries, readErr := os.ReadDir(s.dir)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read voices directory %s: %w", s.dir, readErr)
	}

	var names []string

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), wavExtension) {
			continue
		}

		names = append(names, strings.TrimSuffix(entry.Name(), wavExtension))
	}

	sort.Strings(names)

	return names, nil
}

// Load returns the profile for an enrolled voice. A missing transcript
// file yields an empty transcript, not an error.
func (s *Store) Load(name string) (Profile, error) {
	audioPath := filepath.Join(s.dir, name+wavExtension)

	_, statErr := os.Stat(audioPath)
	if statErr != nil {
		return Profile{}, fmt.Errorf("%w: %s", ErrVoiceNotFound, name)
	}

	profile := Profile{
		Name:       name,
		AudioPath:  audioPath,
		Transcript: "",
	}

	transcriptPath := filepath.Join(s.dir, name+transcriptExtension)

	data, readErr := os.ReadFile(transcriptPath)
	if readErr == nil {
		profile.Transcript = strings.TrimSpace(string(data))
	}

	return profile, nil
}

func (s *Store) persist(safeName, wavPath, transcript string) error {
	mkdirErr := os.MkdirAll(s.dir, dirPermissions)
	if mkdirErr != nil {
		return fmt.Errorf("failed to create voices directory %s: %w", s.dir, mkdirErr)
	}

	targetWAV := filepath.Join(s.dir, safeName+wavExtension)

	copyErr := copyFile(wavPath, targetWAV)
	if copyErr != nil {
		return fmt.Errorf("failed to store reference audio: %w", copyErr)
	}

	targetTranscript := filepath.Join(s.dir, safeName+transcriptExtension)

	writeErr := os.WriteFile(targetTranscript, []byte(transcript), filePermissions)
	if writeErr != nil {
		return fmt.Errorf("failed to store transcript: %w", writeErr)
	}

	return nil
}

func (s *Store) removeConverted(path string) {
	removeErr := os.Remove(path)
	if removeErr != nil && !os.IsNotExist(removeErr) {
		s.log.Warn("Failed to remove conversion temp file %s: %v", path, removeErr)
	}
}

func validateReferencePath(path string) error {
	if len(path) > maxReferencePathLen || strings.Contains(path, "\n") {
		return ErrReferencePathLong
	}

	return nil
}

func copyFile(source, destination string) error {
	in, openErr := os.Open(source)
	if openErr != nil {
		return fmt.Errorf("failed to open %s: %w", source, openErr)
	}
	defer in.Close()

	out, createErr := os.OpenFile(
		destination,
		os.O_WRONLY|os.O_CREATE|os.O_TRUNC,
		filePermissions,
	)
	if createErr != nil {
		return fmt.Errorf("failed to create %s: %w", destination, createErr)
	}

	_, copyErr := io.Copy(out, in)
	closeErr := out.Close()

	if copyErr != nil {
		return fmt.Errorf("failed to copy to %s: %w", destination, copyErr)
	}

	if closeErr != nil {
		return fmt.Errorf("failed to close %s: %w", destination, closeErr)
	}

	return nil
}
