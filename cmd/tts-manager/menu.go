package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/book-expert/tts-manager/internal/session"
)

func newMenuCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Run the interactive model menu",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runMenu(app)
		},
	}
}

func runMenu(app *application) error {
	reader, readerErr := session.NewTerminalReader()
	if readerErr != nil {
		return readerErr
	}

	defer func() {
		closeErr := reader.Close()
		if closeErr != nil {
			app.log.Warn("Failed to close terminal reader: %v", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	driver := session.NewDriver(
		app.cfg,
		app.pipe,
		app.voiceStore,
		app.converter,
		app.player,
		reader,
		os.Stdout,
		app.log,
	)

	runErr := driver.Run(ctx)
	if runErr != nil {
		return fmt.Errorf("interactive session failed: %w", runErr)
	}

	fmt.Println("Goodbye.")

	return nil
}
