package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flyerdeck/flyerctl/internal/flyerapi"
	"github.com/flyerdeck/flyerctl/internal/htmltext"
)

var wordpressCmd = &cobra.Command{
	Use:   "wordpress",
	Short: "Schedule or publish WordPress posts",
}

var wordpressScheduleCmd = &cobra.Command{
	Use:   "schedule <flyer-id> <image-id>",
	Short: "Schedule a WordPress post for a generated image",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := wordpressRequest(cmd, args[1], true)
		if err != nil {
			return err
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		post, err := client.ScheduleWordPressPost(cmd.Context(), args[0], req)
		if err != nil {
			return err
		}

		printSuccess("Scheduled WordPress post %q for %s", post.Title, post.ScheduledAt.Format("2006-01-02 15:04"))
		previewContent(post.Content)
		return nil
	},
}

var wordpressPostNowCmd = &cobra.Command{
	Use:   "post-now <flyer-id> <image-id>",
	Short: "Publish a WordPress post immediately",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := wordpressRequest(cmd, args[1], false)
		if err != nil {
			return err
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		post, err := client.PostWordPressNow(cmd.Context(), args[0], req)
		if err != nil {
			return err
		}

		printSuccess("Published WordPress post %q (status %s)", post.Title, post.PostStatus)
		previewContent(post.Content)
		return nil
	},
}

var wordpressListCmd = &cobra.Command{
	Use:   "list <flyer-id>",
	Short: "List scheduled WordPress posts for a flyer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		posts, err := client.ListScheduledWordPress(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		printPosts(posts)
		return nil
	},
}

var wordpressCancelCmd = &cobra.Command{
	Use:   "cancel <flyer-id> <image-id>",
	Short: "Cancel a scheduled WordPress post",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		if err := client.CancelScheduledWordPress(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}

		printSuccess("Canceled scheduled WordPress post for image %s", args[1])
		return nil
	},
}

func wordpressRequest(cmd *cobra.Command, imageID string, scheduled bool) (flyerapi.WordPressPostRequest, error) {
	title, _ := cmd.Flags().GetString("title")
	content, _ := cmd.Flags().GetString("content")
	contentFile, _ := cmd.Flags().GetString("content-file")

	if content != "" && contentFile != "" {
		return flyerapi.WordPressPostRequest{}, fmt.Errorf("--content and --content-file are mutually exclusive")
	}
	if contentFile != "" {
		data, err := os.ReadFile(contentFile)
		if err != nil {
			return flyerapi.WordPressPostRequest{}, fmt.Errorf("reading content file: %w", err)
		}
		content = string(data)
	}

	req := flyerapi.WordPressPostRequest{
		ImageID: imageID,
		Title:   title,
		Content: content,
	}

	if scheduled {
		at, _ := cmd.Flags().GetString("at")
		scheduledAt, err := parsePostTime(at)
		if err != nil {
			return flyerapi.WordPressPostRequest{}, err
		}
		req.ScheduledAt = scheduledAt
	}

	return req, nil
}

// previewContent shows the post body as plain text, since WordPress content
// is HTML.
func previewContent(content string) {
	if content == "" {
		return
	}
	printStatus("Content", "%s", truncate(htmltext.Render(content), 200))
}

func init() {
	for _, c := range []*cobra.Command{wordpressScheduleCmd, wordpressPostNowCmd} {
		c.Flags().String("title", "", "post title")
		c.Flags().String("content", "", "post body (HTML)")
		c.Flags().String("content-file", "", "file containing the post body (HTML)")
	}
	wordpressScheduleCmd.Flags().String("at", "", "post time (RFC 3339 or \"YYYY-MM-DD HH:MM\")")

	wordpressCmd.AddCommand(wordpressScheduleCmd)
	wordpressCmd.AddCommand(wordpressPostNowCmd)
	wordpressCmd.AddCommand(wordpressListCmd)
	wordpressCmd.AddCommand(wordpressCancelCmd)
}
