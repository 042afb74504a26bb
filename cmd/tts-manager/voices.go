package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newVoicesCmd(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voices",
		Short: "Manage enrolled voices for cloning",
	}

	cmd.AddCommand(
		newVoicesListCmd(app),
		newVoicesEnrollCmd(app),
	)

	return cmd
}

func newVoicesListCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List enrolled voices",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runVoicesList(app)
		},
	}
}

func runVoicesList(app *application) error {
	names, listErr := app.voiceStore.List()
	if listErr != nil {
		return listErr
	}

	if len(names) == 0 {
		fmt.Println("No voices enrolled.")

		return nil
	}

	for _, name := range names {
		fmt.Println(name)
	}

	return nil
}

func newVoicesEnrollCmd(app *application) *cobra.Command {
	var transcript string

	cmd := &cobra.Command{
		Use:   "enroll NAME REFERENCE_AUDIO",
		Short: "Enroll a voice from a reference recording",
		Long: "Enroll a voice from a reference recording. Non-WAV references " +
			"are transcoded with ffmpeg before being stored.",
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runVoicesEnroll(app, args[0], args[1], transcript)
		},
	}

	cmd.Flags().StringVar(&transcript, "transcript", "", "transcript of the reference recording")

	return cmd
}

func runVoicesEnroll(app *application, name, referencePath, transcript string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	safeName, enrollErr := app.voiceStore.Enroll(ctx, name, referencePath, transcript)
	if enrollErr != nil {
		return enrollErr
	}

	fmt.Printf("Enrolled voice: %s\n", safeName)

	return nil
}
