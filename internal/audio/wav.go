// Package audio provides the small amount of audio awareness this tool
// needs: a WAV header probe, reference-audio conversion through ffmpeg,
// and best-effort playback through the system player.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Canonical RIFF/WAVE header layout.
const (
	wavHeaderLen      = 44
	riffMagic         = "RIFF"
	waveMagic         = "WAVE"
	channelCountIndex = 22

	maxReferenceChannels = 2
)

// Static errors.
var (
	ErrNotWAV          = errors.New("not a RIFF/WAVE file")
	ErrBadChannelCount = errors.New("unsupported channel count")
)

// ProbeWAV checks that path holds a mono or stereo RIFF/WAVE file.
// Only the header is inspected; sample data is never read.
func ProbeWAV(path string) error {
	file, openErr := os.Open(path)
	if openErr != nil {
		return fmt.Errorf("failed to open %s: %w", path, openErr)
	}
	defer file.Close()

	header := make([]byte, wavHeaderLen)

	_, readErr := io.ReadFull(file, header)
	if readErr != nil {
		return fmt.Errorf("%w: %s", ErrNotWAV, path)
	}

	if string(header[0:4]) != riffMagic || string(header[8:12]) != waveMagic {
		return fmt.Errorf("%w: %s", ErrNotWAV, path)
	}

	channels := binary.LittleEndian.Uint16(header[channelCountIndex : channelCountIndex+2])
	if channels == 0 || channels > maxReferenceChannels {
		return fmt.Errorf("%w: %d channels in %s", ErrBadChannelCount, channels, path)
	}

	return nil
}
