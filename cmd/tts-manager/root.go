package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tts-manager",
		Short:         "Manage and run MLX Qwen3-TTS models",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newSpeakCmd(app),
		newDesignCmd(app),
		newCloneCmd(app),
		newMenuCmd(app),
		newVoicesCmd(app),
		newServeCmd(app),
	)

	return cmd
}
