// Command tts-manager drives MLX Qwen3-TTS models: one-shot synthesis
// from the command line, an interactive menu, voice enrollment, and a
// NATS worker mode.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/book-expert/logger"

	"github.com/book-expert/tts-manager/internal/audio"
	"github.com/book-expert/tts-manager/internal/config"
	"github.com/book-expert/tts-manager/internal/core"
	"github.com/book-expert/tts-manager/internal/pipeline"
	"github.com/book-expert/tts-manager/internal/synth"
	"github.com/book-expert/tts-manager/internal/textinput"
	"github.com/book-expert/tts-manager/internal/voices"
)

const logFileName = "tts-manager.log"

// application bundles the shared collaborators every command needs.
type application struct {
	cfg        *config.Config
	log        *logger.Logger
	pipe       *pipeline.Pipeline
	converter  core.Converter
	player     core.Player
	resolver   *textinput.Resolver
	voiceStore *voices.Store
}

func setupLogger(logPath string) (*logger.Logger, error) {
	log, err := logger.New(logPath, logFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

// loadConfiguration loads the configuration file when one is available
// and falls back to built-in defaults when it is not. The tool must
// stay usable without any configuration.
func loadConfiguration(bootstrapLog *logger.Logger) *config.Config {
	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Warn("No configuration loaded, using defaults: %v", err)

		cfg = &config.Config{}
		cfg.ApplyDefaults()
	}

	return cfg
}

func newApplication(cfg *config.Config, log *logger.Logger) *application {
	converter := audio.NewFFmpegConverter(
		cfg.Audio.FFmpegPath,
		cfg.Audio.SampleRate,
		time.Duration(cfg.Audio.FFmpegTimeoutSeconds)*time.Second,
		log,
	)

	synthesizer := synth.New(cfg.Generation.GeneratorBin, log)
	pipe := pipeline.New(
		synthesizer,
		cfg.Generation.MaxTokens,
		cfg.Audio.FilenameMaxLen,
		log,
	)

	return &application{
		cfg:        cfg,
		log:        log,
		pipe:       pipe,
		converter:  converter,
		player:     audio.NewSystemPlayer(log),
		resolver:   textinput.NewResolver(),
		voiceStore: voices.NewStore(cfg.Paths.VoicesDir, converter, log),
	}
}

func run() error {
	bootstrapLog, err := setupLogger(os.TempDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	cfg := loadConfiguration(bootstrapLog)

	finalLog := bootstrapLog

	if cfg.Paths.BaseLogsDir != "" {
		configuredLog, logErr := setupLogger(cfg.Paths.BaseLogsDir)
		if logErr != nil {
			bootstrapLog.Warn("Failed to create configured logger: %v", logErr)
		} else {
			finalLog = configuredLog
		}
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing logger: %v\n", closeErr)
		}
	}()

	app := newApplication(cfg, finalLog)

	execErr := newRootCmd(app).Execute()
	if execErr != nil {
		finalLog.Error("Command failed: %v", execErr)

		return execErr
	}

	return nil
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
