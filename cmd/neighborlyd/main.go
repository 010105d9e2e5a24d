package main

import (
	"fmt"
	"os"

	"github.com/neighborly-labs/neighborly/internal/cli"
	"github.com/neighborly-labs/neighborly/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "neighborlyd",
		Short: "Neighborly daemon",
		Long:  "Neighborly daemon for running the community assistant API server",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
