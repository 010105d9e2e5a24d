package client

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// AskRequest represents the assistant ask API request.
type AskRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

// AskResponse represents the assistant ask API response.
type AskResponse struct {
	Question  string   `json:"question"`
	SessionID string   `json:"session_id"`
	Answer    string   `json:"answer"`
	FollowUp  []string `json:"follow_up"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the community assistant a question",
		Long:  "Asks the assistant a question grounded in community posts and help requests. Pass --session to continue an earlier conversation.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAsk(args[0], sessionID, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Session ID (generated if not provided)")

	return cmd
}

func runAsk(question, sessionID string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	newSession := sessionID == ""
	if newSession {
		sessionID = uuid.New().String()
	}

	resp, err := api.Post("/assistant/ask", AskRequest{
		Question:  question,
		SessionID: sessionID,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	var askResp AskResponse
	if err := json.Unmarshal(resp.Data, &askResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(askResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(askResp.Answer)
	if len(askResp.FollowUp) > 0 {
		fmt.Println("\nYou could also ask:")
		for _, q := range askResp.FollowUp {
			fmt.Printf("  - %s\n", q)
		}
	}
	if newSession {
		fmt.Printf("\nSession: %s (pass --session %s to continue)\n", askResp.SessionID, askResp.SessionID)
	}

	return nil
}
