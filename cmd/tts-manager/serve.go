package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/book-expert/tts-manager/internal/core"
	"github.com/book-expert/tts-manager/internal/model"
	"github.com/book-expert/tts-manager/internal/objectstore"
	"github.com/book-expert/tts-manager/internal/worker"
)

func newServeCmd(app *application) *cobra.Command {
	var tier string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Process synthesis jobs from NATS",
		Long: "Process synthesis jobs from NATS. Text chunks are fetched from " +
			"the JetStream object store, synthesized with a long-lived " +
			"custom-voice model, and the audio is uploaded back.",
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(app, model.Tier(tier))
		},
	}

	cmd.Flags().StringVar(&tier, "model", string(model.TierPro), "model tier: pro or lite")

	return cmd
}

func runServe(app *application, tier model.Tier) error {
	desc, lookupErr := model.Lookup(core.ModeCustom, tier)
	if lookupErr != nil {
		return lookupErr
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	natsConnection, connectErr := nats.Connect(app.cfg.NATS.URL)
	if connectErr != nil {
		return fmt.Errorf(
			"failed to connect to NATS at %s: %w", app.cfg.NATS.URL, connectErr,
		)
	}
	defer natsConnection.Close()

	jetstreamContext, jsErr := natsConnection.JetStream()
	if jsErr != nil {
		return fmt.Errorf("failed to create JetStream context: %w", jsErr)
	}

	store, storeErr := objectstore.New(
		jetstreamContext,
		app.cfg.NATS.AudioObjectStoreBucket,
	)
	if storeErr != nil {
		return storeErr
	}

	modelPath := model.SmartPath(app.cfg.Paths.ModelsDir, desc.Folder)

	app.log.Info("Loading model %s...", desc.Folder)

	mdl, loadErr := app.pipe.LoadModel(ctx, modelPath)
	if loadErr != nil {
		return loadErr
	}

	defaults := worker.Defaults{
		Voice:    app.cfg.Generation.Voice,
		Instruct: app.cfg.Generation.Emotion,
		Speed:    app.cfg.Generation.Speed,
	}

	jobWorker := worker.NewNatsWorker(
		natsConnection,
		app.cfg.NATS.TextProcessedSubject,
		app.cfg.NATS.AudioChunkCreatedSubject,
		store,
		app.pipe,
		mdl,
		defaults,
		app.log,
	)

	app.log.System(
		"Listening for jobs on subject: %s",
		app.cfg.NATS.TextProcessedSubject,
	)

	runErr := jobWorker.Run(ctx)
	if runErr != nil {
		return fmt.Errorf("worker stopped: %w", runErr)
	}

	return nil
}
