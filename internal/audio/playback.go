package audio

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/book-expert/logger"
)

// System player binaries by platform.
const (
	playerDarwin = "afplay"
	playerLinux  = "aplay"
)

// SystemPlayer plays WAV files through the platform's command-line
// player. Playback is best effort: a missing player binary is treated
// as "no playback available", not as a failure.
type SystemPlayer struct {
	log *logger.Logger
}

// NewSystemPlayer creates a player that logs playback problems.
func NewSystemPlayer(log *logger.Logger) *SystemPlayer {
	return &SystemPlayer{log: log}
}

// Play blocks until playback finishes or ctx is cancelled.
func (p *SystemPlayer) Play(ctx context.Context, path string) error {
	binary := playerLinux
	if runtime.GOOS == "darwin" {
		binary = playerDarwin
	}

	binaryPath, lookErr := exec.LookPath(binary)
	if lookErr != nil {
		p.log.Warn("No system player (%s) found; skipping playback", binary)

		return nil
	}

	cmd := exec.CommandContext(ctx, binaryPath, path)

	runErr := cmd.Run()
	if runErr != nil {
		return fmt.Errorf("playback of %s failed: %w", path, runErr)
	}

	return nil
}
