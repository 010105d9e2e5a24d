package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

// CreatePostRequest represents the post creation API request.
type CreatePostRequest struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

// PostResponse represents a community post in API responses.
type PostResponse struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Summary   string `json:"summary,omitempty"`
	CreatedAt string `json:"created_at"`
}

// PostListResponse represents the post list API response.
type PostListResponse struct {
	Posts   []PostResponse `json:"posts"`
	Cursor  string         `json:"cursor,omitempty"`
	HasMore bool           `json:"has_more"`
}

// SummaryResponse represents the post summary API response.
type SummaryResponse struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
}

// PostCmd creates the post command group.
func PostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Manage community posts",
	}

	cmd.AddCommand(postCreateCmd())
	cmd.AddCommand(postGetCmd())
	cmd.AddCommand(postListCmd())
	cmd.AddCommand(postSummarizeCmd())

	return cmd
}

func postCreateCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "create <title> <content>",
		Short: "Create a community post",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runPostCreate(category, args[0], args[1], outputJSON)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "discussion", "Post category (news|discussion)")

	return cmd
}

func runPostCreate(category, title, content string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Post("/posts", CreatePostRequest{
		Category: category,
		Title:    title,
		Content:  content,
	})
	if err != nil {
		return fmt.Errorf("create failed: %w", err)
	}

	var post PostResponse
	if err := json.Unmarshal(resp.Data, &post); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(post, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Created post %q\n", post.Title)
		fmt.Printf("ID: %s\n", post.ID)
	}

	return nil
}

func postGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a community post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClient()
			if err != nil {
				return err
			}

			resp, err := api.Get("/posts/" + args[0])
			if err != nil {
				return fmt.Errorf("get failed: %w", err)
			}

			var post PostResponse
			if err := json.Unmarshal(resp.Data, &post); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if outputJSON {
				output, _ := json.MarshalIndent(post, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			printPost(post)
			return nil
		},
	}
}

func postListCmd() *cobra.Command {
	var limit int
	var cursor string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List community posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runPostList(limit, cursor, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func runPostList(limit int, cursor string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	query := url.Values{}
	query.Set("limit", fmt.Sprintf("%d", limit))
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	resp, err := api.Get("/posts?" + query.Encode())
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	var listResp PostListResponse
	if err := json.Unmarshal(resp.Data, &listResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(listResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(listResp.Posts) == 0 {
		fmt.Println("No posts found.")
		return nil
	}

	fmt.Printf("Found %d posts:\n\n", len(listResp.Posts))
	for i, post := range listResp.Posts {
		fmt.Printf("%d. %s [%s]\n", i+1, post.Title, post.Category)
		content := post.Content
		if len(content) > 100 {
			content = content[:97] + "..."
		}
		fmt.Printf("   %s\n", content)
		fmt.Printf("   ID: %s\n", post.ID)
		if i < len(listResp.Posts)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	if listResp.HasMore && listResp.Cursor != "" {
		fmt.Printf("\n%s\n", strings.Repeat("-", 40))
		fmt.Printf("More results available. Use --cursor %s\n", listResp.Cursor)
	}

	return nil
}

func postSummarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <id>",
		Short: "Generate an AI summary for a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClient()
			if err != nil {
				return err
			}

			resp, err := api.Post("/posts/"+args[0]+"/summary", nil)
			if err != nil {
				return fmt.Errorf("summarize failed: %w", err)
			}

			var summary SummaryResponse
			if err := json.Unmarshal(resp.Data, &summary); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if outputJSON {
				output, _ := json.MarshalIndent(summary, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			fmt.Println(summary.Summary)
			return nil
		},
	}
}

func printPost(post PostResponse) {
	fmt.Printf("%s [%s]\n", post.Title, post.Category)
	fmt.Printf("Created: %s\n", post.CreatedAt)
	fmt.Printf("ID: %s\n\n", post.ID)
	fmt.Println(post.Content)
	if post.Summary != "" {
		fmt.Printf("\nSummary: %s\n", post.Summary)
	}
}
