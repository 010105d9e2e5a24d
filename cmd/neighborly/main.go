package main

import (
	"fmt"
	"os"

	"github.com/neighborly-labs/neighborly/internal/cli"
	"github.com/neighborly-labs/neighborly/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "neighborly",
		Short: "Neighborly CLI - Conversational assistant for your community",
		Long: `Neighborly CLI provides commands to talk to the community assistant
and manage community posts and help requests.

Environment variables:
  NEIGHBORLY_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.InitCmd())
	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.HistoryCmd())
	rootCmd.AddCommand(client.ReindexCmd())
	rootCmd.AddCommand(client.PostCmd())
	rootCmd.AddCommand(client.HelpRequestCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
