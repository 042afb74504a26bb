// Package config provides the configuration structure for the tts-manager.
package config

import (
	"fmt"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
)

// Default values applied when the configuration file leaves them unset.
const (
	defaultVoice          = "Ryan"
	defaultEmotion        = "Calm, but speaking in a broadcaster pace"
	defaultSpeed          = 1.3
	defaultMaxTokens      = 4096
	defaultTimeoutSeconds = 600
	defaultGeneratorBin   = "mlx_audio.tts.generate"

	defaultModelsDir  = "models"
	defaultOutputsDir = "outputs"
	defaultVoicesDir  = "voices"

	defaultSampleRate     = 24000
	defaultFFmpegPath     = "ffmpeg"
	defaultFFmpegTimeout  = 300
	defaultFilenameMaxLen = 20

	defaultNATSURL                  = "nats://127.0.0.1:4222"
	defaultTextProcessedSubject     = "tts.text.processed"
	defaultAudioChunkCreatedSubject = "tts.audio.chunk.created"
	defaultAudioObjectStoreBucket   = "TTS_AUDIO_FILES"
)

// PathsConfig holds the directory layout consumed and produced by the tool.
type PathsConfig struct {
	ModelsDir   string `toml:"models_dir"`
	OutputsDir  string `toml:"outputs_dir"`
	VoicesDir   string `toml:"voices_dir"`
	BaseLogsDir string `toml:"base_logs_dir"`
}

// GenerationConfig holds the defaults for synthesis requests and the
// external generator invocation.
type GenerationConfig struct {
	Voice          string  `toml:"voice"`
	Emotion        string  `toml:"emotion"`
	Speed          float64 `toml:"speed"`
	MaxTokens      int     `toml:"max_tokens"`
	GeneratorBin   string  `toml:"generator_bin"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// AudioConfig holds playback and conversion settings.
type AudioConfig struct {
	SampleRate           int    `toml:"sample_rate"`
	FFmpegPath           string `toml:"ffmpeg_path"`
	FFmpegTimeoutSeconds int    `toml:"ffmpeg_timeout_seconds"`
	AutoPlay             bool   `toml:"auto_play"`
	FilenameMaxLen       int    `toml:"filename_max_len"`
}

// NATSConfig holds the configuration for the serve mode.
type NATSConfig struct {
	URL                      string `toml:"url"`
	TextProcessedSubject     string `toml:"text_processed_subject"`
	AudioChunkCreatedSubject string `toml:"audio_chunk_created_subject"`
	AudioObjectStoreBucket   string `toml:"audio_object_store_bucket"`
}

// Config is the root configuration structure.
type Config struct {
	Paths      PathsConfig      `toml:"paths"`
	Generation GenerationConfig `toml:"generation"`
	Audio      AudioConfig      `toml:"audio"`
	NATS       NATSConfig       `toml:"nats"`
}

// Load loads the configuration for the tts-manager and fills defaults.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	cfg.ApplyDefaults()

	return &cfg, nil
}

// ApplyDefaults fills unset fields with the built-in defaults. It is
// exported so commands that run without a configuration file can build
// a usable Config from the zero value.
func (c *Config) ApplyDefaults() {
	c.Paths.applyDefaults()
	c.Generation.applyDefaults()
	c.Audio.applyDefaults()
	c.NATS.applyDefaults()
}

func (p *PathsConfig) applyDefaults() {
	if p.ModelsDir == "" {
		p.ModelsDir = defaultModelsDir
	}

	if p.OutputsDir == "" {
		p.OutputsDir = defaultOutputsDir
	}

	if p.VoicesDir == "" {
		p.VoicesDir = defaultVoicesDir
	}
}

func (g *GenerationConfig) applyDefaults() {
	if g.Voice == "" {
		g.Voice = defaultVoice
	}

	if g.Emotion == "" {
		g.Emotion = defaultEmotion
	}

	if g.Speed == 0 {
		g.Speed = defaultSpeed
	}

	if g.MaxTokens == 0 {
		g.MaxTokens = defaultMaxTokens
	}

	if g.GeneratorBin == "" {
		g.GeneratorBin = defaultGeneratorBin
	}

	if g.TimeoutSeconds == 0 {
		g.TimeoutSeconds = defaultTimeoutSeconds
	}
}

func (a *AudioConfig) applyDefaults() {
	if a.SampleRate == 0 {
		a.SampleRate = defaultSampleRate
	}

	if a.FFmpegPath == "" {
		a.FFmpegPath = defaultFFmpegPath
	}

	if a.FFmpegTimeoutSeconds == 0 {
		a.FFmpegTimeoutSeconds = defaultFFmpegTimeout
	}

	if a.FilenameMaxLen == 0 {
		a.FilenameMaxLen = defaultFilenameMaxLen
	}
}

func (n *NATSConfig) applyDefaults() {
	if n.URL == "" {
		n.URL = defaultNATSURL
	}

	if n.TextProcessedSubject == "" {
		n.TextProcessedSubject = defaultTextProcessedSubject
	}

	if n.AudioChunkCreatedSubject == "" {
		n.AudioChunkCreatedSubject = defaultAudioChunkCreatedSubject
	}

	if n.AudioObjectStoreBucket == "" {
		n.AudioObjectStoreBucket = defaultAudioObjectStoreBucket
	}
}
