// Package worker provides a NATS worker that turns processed-text
// events into generated audio, exposing the synthesis pipeline to the
// rest of the book pipeline as a job consumer.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/book-expert/events"
	"github.com/book-expert/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/book-expert/tts-manager/internal/core"
	"github.com/book-expert/tts-manager/internal/model"
	"github.com/book-expert/tts-manager/internal/pipeline"
	"github.com/book-expert/tts-manager/internal/textinput"
)

const handleMessageTimeout = 10 * time.Minute

const audioKeyExtension = ".wav"

// ErrEmptyJobText indicates that a job's text object held nothing to
// synthesize.
var ErrEmptyJobText = errors.New("job text is empty")

// Defaults supplies the generation parameters events do not carry.
type Defaults struct {
	Voice    string
	Instruct string
	Speed    float64
}

// NatsWorker listens for TTS jobs on a NATS subject and processes them
// with one long-lived model handle.
type NatsWorker struct {
	natsConnection *nats.Conn
	subject        string
	resultSubject  string
	store          core.ObjectStore
	pipe           *pipeline.Pipeline
	mdl            core.Model
	resolver       *textinput.Resolver
	defaults       Defaults
	log            *logger.Logger
}

// NewNatsWorker creates a worker bound to an already-loaded model.
// Replies go to the request's reply subject when one is set and to
// resultSubject otherwise.
func NewNatsWorker(
	natsConnection *nats.Conn,
	subject, resultSubject string,
	store core.ObjectStore,
	pipe *pipeline.Pipeline,
	mdl core.Model,
	defaults Defaults,
	log *logger.Logger,
) *NatsWorker {
	return &NatsWorker{
		natsConnection: natsConnection,
		subject:        subject,
		resultSubject:  resultSubject,
		store:          store,
		pipe:           pipe,
		mdl:            mdl,
		resolver:       textinput.NewResolver(),
		defaults:       defaults,
		log:            log,
	}
}

// Run subscribes and blocks until ctx is cancelled, then drains the
// subscription.
func (w *NatsWorker) Run(ctx context.Context) error {
	sub, err := w.natsConnection.Subscribe(w.subject, w.handleMessage)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", w.subject, err)
	}

	<-ctx.Done()

	drainErr := sub.Drain()
	if drainErr != nil {
		return fmt.Errorf("failed to drain subscription: %w", drainErr)
	}

	return nil
}

// handleMessage processes one job. Failures are logged and the message
// is skipped; one bad job never stops the worker.
func (w *NatsWorker) handleMessage(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), handleMessageTimeout)
	defer cancel()

	event, parseErr := parseEvent(msg)
	if parseErr != nil {
		w.log.Error("Failed to parse event: %v", parseErr)

		return
	}

	audioKey, processErr := w.processJob(ctx, event)
	if processErr != nil {
		w.log.Error(
			"Failed to process TTS job for workflow %s: %v",
			event.Header.WorkflowID,
			processErr,
		)

		return
	}

	replyEvent := &events.AudioChunkCreatedEvent{
		Header:     event.Header,
		AudioKey:   audioKey,
		PageNumber: event.PageNumber,
		TotalPages: event.TotalPages,
	}

	replyErr := w.publishReply(msg, replyEvent)
	if replyErr != nil {
		w.log.Error(
			"Failed to publish reply for workflow %s: %v",
			event.Header.WorkflowID,
			replyErr,
		)
	}
}

// processJob downloads the text chunk, synthesizes it, and uploads the
// resulting audio under a fresh key.
func (w *NatsWorker) processJob(
	ctx context.Context,
	event *events.TextProcessedEvent,
) (string, error) {
	textData, downloadErr := w.store.Download(ctx, event.TextKey)
	if downloadErr != nil {
		return "", fmt.Errorf(
			"failed to download text for key '%s': %w",
			event.TextKey,
			downloadErr,
		)
	}

	text := strings.TrimSpace(string(textData))
	if text == "" {
		return "", fmt.Errorf("%w: key '%s'", ErrEmptyJobText, event.TextKey)
	}

	req := core.Request{
		Text:     w.resolver.SplitSentences(text),
		Voice:    w.resolveVoice(event.Voice),
		Instruct: w.defaults.Instruct,
		Speed:    w.defaults.Speed,
	}

	audioData, genErr := w.pipe.GenerateBytes(ctx, w.mdl, req)
	if genErr != nil {
		return "", fmt.Errorf("failed to synthesize job text: %w", genErr)
	}

	audioKey := uuid.NewString() + audioKeyExtension

	uploadErr := w.store.Upload(ctx, audioKey, audioData)
	if uploadErr != nil {
		return "", fmt.Errorf(
			"failed to upload audio for key '%s': %w",
			audioKey,
			uploadErr,
		)
	}

	return audioKey, nil
}

// resolveVoice maps the event's voice onto a supported speaker,
// falling back to the configured default for anything unknown.
func (w *NatsWorker) resolveVoice(requested string) string {
	if requested == "" {
		return w.defaults.Voice
	}

	if !model.IsSupportedSpeaker(requested) {
		w.log.Warn(
			"Unsupported voice %q requested; using default %q",
			requested,
			w.defaults.Voice,
		)

		return w.defaults.Voice
	}

	return requested
}

func (w *NatsWorker) publishReply(msg *nats.Msg, replyEvent *events.AudioChunkCreatedEvent) error {
	replyData, marshalErr := json.Marshal(replyEvent)
	if marshalErr != nil {
		return fmt.Errorf("failed to marshal reply event: %w", marshalErr)
	}

	subject := msg.Reply
	if subject == "" {
		subject = w.resultSubject
	}

	respondErr := w.natsConnection.Publish(subject, replyData)
	if respondErr != nil {
		return fmt.Errorf("failed to publish reply event: %w", respondErr)
	}

	return nil
}

func parseEvent(msg *nats.Msg) (*events.TextProcessedEvent, error) {
	var event events.TextProcessedEvent

	err := json.Unmarshal(msg.Data, &event)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	return &event, nil
}
