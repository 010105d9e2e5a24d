package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ChatTurnResponse represents a single recorded turn.
type ChatTurnResponse struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	CreatedAt string `json:"created_at"`
}

// HistoryResponse represents the history API response.
type HistoryResponse struct {
	SessionID string             `json:"session_id"`
	Turns     []ChatTurnResponse `json:"turns"`
}

// HistoryCmd creates the history command.
func HistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <session-id>",
		Short: "Show the recorded conversation for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runHistory(args[0], outputJSON)
		},
	}
}

func runHistory(sessionID string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Get("/assistant/history/" + sessionID)
	if err != nil {
		return fmt.Errorf("history failed: %w", err)
	}

	var historyResp HistoryResponse
	if err := json.Unmarshal(resp.Data, &historyResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(historyResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(historyResp.Turns) == 0 {
		fmt.Println("No conversation recorded for this session.")
		return nil
	}

	fmt.Printf("Session %s (%d turns):\n\n", historyResp.SessionID, len(historyResp.Turns))
	for i, turn := range historyResp.Turns {
		fmt.Printf("User: %s\n", turn.Question)
		fmt.Printf("Bot: %s\n", turn.Answer)
		if i < len(historyResp.Turns)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	return nil
}
