package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ReindexCmd creates the reindex command.
func ReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the assistant's corpus snapshot",
		Long:  "Re-embeds all community posts and help requests so new content becomes retrievable.",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient()
			if err != nil {
				return err
			}

			if _, err := api.Post("/assistant/reindex", nil); err != nil {
				return fmt.Errorf("reindex failed: %w", err)
			}

			fmt.Println("Corpus snapshot rebuilt.")
			return nil
		},
	}
}
