// Package config_test tests the configuration loading for the tts-manager.
package config_test

import (
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/tts-manager/internal/config"
)

func TestConfigUnmarshal(t *testing.T) {
	t.Parallel()

	tomlData := `
[paths]
models_dir = "/srv/tts/models"
outputs_dir = "/srv/tts/outputs"
voices_dir = "/srv/tts/voices"
base_logs_dir = "/var/log/tts-manager"

[generation]
voice = "Serena"
emotion = "Whispering quietly"
speed = 0.8
max_tokens = 2048
generator_bin = "mlx_audio.tts.generate"
timeout_seconds = 120

[audio]
sample_rate = 24000
ffmpeg_path = "/usr/local/bin/ffmpeg"
auto_play = true

[nats]
url = "nats://127.0.0.1:4222"
text_processed_subject = "text.processed"
audio_chunk_created_subject = "audio.chunk.created"
audio_object_store_bucket = "AUDIO_FILES"
`

	var cfg config.Config

	err := toml.Unmarshal([]byte(tomlData), &cfg)
	require.NoError(t, err)

	assert.Equal(t, "/srv/tts/models", cfg.Paths.ModelsDir)
	assert.Equal(t, "/srv/tts/outputs", cfg.Paths.OutputsDir)
	assert.Equal(t, "/srv/tts/voices", cfg.Paths.VoicesDir)
	assert.Equal(t, "/var/log/tts-manager", cfg.Paths.BaseLogsDir)
	assert.Equal(t, "Serena", cfg.Generation.Voice)
	assert.Equal(t, "Whispering quietly", cfg.Generation.Emotion)
	assert.InEpsilon(t, 0.8, cfg.Generation.Speed, 0.001)
	assert.Equal(t, 2048, cfg.Generation.MaxTokens)
	assert.Equal(t, 120, cfg.Generation.TimeoutSeconds)
	assert.Equal(t, 24000, cfg.Audio.SampleRate)
	assert.True(t, cfg.Audio.AutoPlay)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATS.URL)
	assert.Equal(t, "text.processed", cfg.NATS.TextProcessedSubject)
	assert.Equal(t, "audio.chunk.created", cfg.NATS.AudioChunkCreatedSubject)
	assert.Equal(t, "AUDIO_FILES", cfg.NATS.AudioObjectStoreBucket)
}

func TestApplyDefaults(t *testing.T) {
	t.Parallel()

	var cfg config.Config

	cfg.ApplyDefaults()

	assert.Equal(t, "Ryan", cfg.Generation.Voice)
	assert.Equal(t, "Calm, but speaking in a broadcaster pace", cfg.Generation.Emotion)
	assert.InEpsilon(t, 1.3, cfg.Generation.Speed, 0.001)
	assert.Equal(t, 4096, cfg.Generation.MaxTokens)
	assert.Equal(t, "mlx_audio.tts.generate", cfg.Generation.GeneratorBin)
	assert.Equal(t, "models", cfg.Paths.ModelsDir)
	assert.Equal(t, "outputs", cfg.Paths.OutputsDir)
	assert.Equal(t, "voices", cfg.Paths.VoicesDir)
	assert.Equal(t, 24000, cfg.Audio.SampleRate)
	assert.Equal(t, 20, cfg.Audio.FilenameMaxLen)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATS.URL)
	assert.Equal(t, "tts.text.processed", cfg.NATS.TextProcessedSubject)
	assert.Equal(t, "tts.audio.chunk.created", cfg.NATS.AudioChunkCreatedSubject)
	assert.Equal(t, "TTS_AUDIO_FILES", cfg.NATS.AudioObjectStoreBucket)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		Generation: config.GenerationConfig{
			Voice: "Vivian",
			Speed: 1.0,
		},
	}

	cfg.ApplyDefaults()

	assert.Equal(t, "Vivian", cfg.Generation.Voice)
	assert.InEpsilon(t, 1.0, cfg.Generation.Speed, 0.001)
}
