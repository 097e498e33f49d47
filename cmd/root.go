package cmd

import (
	"github.com/carousell/ct-go/pkg/logger/log"
	"github.com/spf13/cobra"

	"github.com/omniwire/chat-sync/internal/app"
	"github.com/omniwire/chat-sync/internal/server"
	"github.com/omniwire/chat-sync/internal/stream"
)

var rootCmd = &cobra.Command{
	Use:           "chat-sync",
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		app.Invoke(
			server.StartServer,
			stream.StartConsumeEvents,
		).Run()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
