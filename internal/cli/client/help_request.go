package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

// CreateHelpRequestRequest represents the help request creation API request.
type CreateHelpRequestRequest struct {
	Description string `json:"description"`
	Location    string `json:"location,omitempty"`
}

// HelpRequestResponse represents a help request in API responses.
type HelpRequestResponse struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Location    string   `json:"location,omitempty"`
	Volunteers  []string `json:"volunteers"`
	IsResolved  bool     `json:"is_resolved"`
	CreatedAt   string   `json:"created_at"`
}

// HelpRequestListResponse represents the help request list API response.
type HelpRequestListResponse struct {
	Requests []HelpRequestResponse `json:"requests"`
	Cursor   string                `json:"cursor,omitempty"`
	HasMore  bool                  `json:"has_more"`
}

// HelpRequestCmd creates the help-request command group.
func HelpRequestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "help-request",
		Aliases: []string{"hr"},
		Short:   "Manage help requests",
	}

	cmd.AddCommand(helpRequestCreateCmd())
	cmd.AddCommand(helpRequestGetCmd())
	cmd.AddCommand(helpRequestListCmd())
	cmd.AddCommand(helpRequestVolunteerCmd())
	cmd.AddCommand(helpRequestResolveCmd())

	return cmd
}

func helpRequestCreateCmd() *cobra.Command {
	var location string

	cmd := &cobra.Command{
		Use:   "create <description>",
		Short: "Create a help request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClient()
			if err != nil {
				return err
			}

			resp, err := api.Post("/help-requests", CreateHelpRequestRequest{
				Description: args[0],
				Location:    location,
			})
			if err != nil {
				return fmt.Errorf("create failed: %w", err)
			}

			var helpRequest HelpRequestResponse
			if err := json.Unmarshal(resp.Data, &helpRequest); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if outputJSON {
				output, _ := json.MarshalIndent(helpRequest, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			fmt.Println("Created help request.")
			fmt.Printf("ID: %s\n", helpRequest.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&location, "location", "l", "", "Where the help is needed")

	return cmd
}

func helpRequestGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a help request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClient()
			if err != nil {
				return err
			}

			resp, err := api.Get("/help-requests/" + args[0])
			if err != nil {
				return fmt.Errorf("get failed: %w", err)
			}

			var helpRequest HelpRequestResponse
			if err := json.Unmarshal(resp.Data, &helpRequest); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if outputJSON {
				output, _ := json.MarshalIndent(helpRequest, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			printHelpRequest(helpRequest)
			return nil
		},
	}
}

func helpRequestListCmd() *cobra.Command {
	var limit int
	var cursor string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List help requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runHelpRequestList(limit, cursor, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func runHelpRequestList(limit int, cursor string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	query := url.Values{}
	query.Set("limit", fmt.Sprintf("%d", limit))
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	resp, err := api.Get("/help-requests?" + query.Encode())
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	var listResp HelpRequestListResponse
	if err := json.Unmarshal(resp.Data, &listResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(listResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(listResp.Requests) == 0 {
		fmt.Println("No help requests found.")
		return nil
	}

	fmt.Printf("Found %d help requests:\n\n", len(listResp.Requests))
	for i, helpRequest := range listResp.Requests {
		status := "open"
		if helpRequest.IsResolved {
			status = "resolved"
		}
		fmt.Printf("%d. %s [%s]\n", i+1, helpRequest.Description, status)
		if helpRequest.Location != "" {
			fmt.Printf("   Location: %s\n", helpRequest.Location)
		}
		fmt.Printf("   Volunteers: %d\n", len(helpRequest.Volunteers))
		fmt.Printf("   ID: %s\n", helpRequest.ID)
		if i < len(listResp.Requests)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	if listResp.HasMore && listResp.Cursor != "" {
		fmt.Printf("\n%s\n", strings.Repeat("-", 40))
		fmt.Printf("More results available. Use --cursor %s\n", listResp.Cursor)
	}

	return nil
}

func helpRequestVolunteerCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "volunteer <id>",
		Short: "Volunteer for a help request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient()
			if err != nil {
				return err
			}

			resp, err := api.Post("/help-requests/"+args[0]+"/volunteer", map[string]string{"user_id": userID})
			if err != nil {
				return fmt.Errorf("volunteer failed: %w", err)
			}

			var helpRequest HelpRequestResponse
			if err := json.Unmarshal(resp.Data, &helpRequest); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			fmt.Printf("Volunteered. This request now has %d volunteer(s).\n", len(helpRequest.Volunteers))
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID of the volunteer")
	cmd.MarkFlagRequired("user")

	return cmd
}

func helpRequestResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <id>",
		Short: "Mark a help request as resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient()
			if err != nil {
				return err
			}

			if _, err := api.Post("/help-requests/"+args[0]+"/resolve", nil); err != nil {
				return fmt.Errorf("resolve failed: %w", err)
			}

			fmt.Println("Help request resolved.")
			return nil
		},
	}
}

func printHelpRequest(helpRequest HelpRequestResponse) {
	status := "open"
	if helpRequest.IsResolved {
		status = "resolved"
	}
	fmt.Printf("%s [%s]\n", helpRequest.Description, status)
	if helpRequest.Location != "" {
		fmt.Printf("Location: %s\n", helpRequest.Location)
	}
	fmt.Printf("Created: %s\n", helpRequest.CreatedAt)
	fmt.Printf("ID: %s\n", helpRequest.ID)
	if len(helpRequest.Volunteers) > 0 {
		fmt.Printf("Volunteers: %s\n", strings.Join(helpRequest.Volunteers, ", "))
	} else {
		fmt.Println("Volunteers: none yet")
	}
}
