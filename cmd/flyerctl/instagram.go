package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/flyerdeck/flyerctl/internal/flyerapi"
)

var instagramCmd = &cobra.Command{
	Use:   "instagram",
	Short: "Select images and schedule Instagram posts",
}

var instagramSelectCmd = &cobra.Command{
	Use:   "select <flyer-id> <image-id> [<image-id>...]",
	Short: "Mark generated images for Instagram posting",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		flyerID, imageIDs := args[0], args[1:]
		if err := client.SelectInstagramImages(cmd.Context(), flyerID, imageIDs); err != nil {
			return err
		}

		printSuccess("Selected %d image(s) for Instagram", len(imageIDs))
		return nil
	},
}

var instagramScheduleCmd = &cobra.Command{
	Use:   "schedule <flyer-id> <image-id>",
	Short: "Schedule a selected image as an Instagram post",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		caption, _ := cmd.Flags().GetString("caption")
		at, _ := cmd.Flags().GetString("at")

		scheduledAt, err := parsePostTime(at)
		if err != nil {
			return err
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		post, err := client.ScheduleInstagramPost(cmd.Context(), args[0], flyerapi.SchedulePostRequest{
			ImageID:     args[1],
			Caption:     caption,
			ScheduledAt: scheduledAt,
		})
		if err != nil {
			return err
		}

		printSuccess("Scheduled image %s for %s", post.ImageID, post.ScheduledAt.Format(time.RFC3339))
		return nil
	},
}

var instagramListCmd = &cobra.Command{
	Use:   "list <flyer-id>",
	Short: "List scheduled Instagram posts for a flyer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		posts, err := client.ListScheduledInstagram(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		printPosts(posts)
		return nil
	},
}

var instagramCancelCmd = &cobra.Command{
	Use:   "cancel <flyer-id> <image-id>",
	Short: "Cancel a scheduled Instagram post",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		if err := client.CancelScheduledInstagram(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}

		printSuccess("Canceled scheduled post for image %s", args[1])
		return nil
	},
}

// parsePostTime accepts RFC 3339 or the local "2006-01-02 15:04" form.
func parsePostTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("--at is required (RFC 3339 or \"YYYY-MM-DD HH:MM\")")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("could not parse time %q (want RFC 3339 or \"YYYY-MM-DD HH:MM\")", s)
}

func printPosts(posts []flyerapi.ScheduledPost) {
	if len(posts) == 0 {
		fmt.Println("No scheduled posts.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "IMAGE\tSTATUS\tSCHEDULED\tPOSTED\tERROR")
	for _, p := range posts {
		posted := "-"
		if p.PostedAt != nil {
			posted = p.PostedAt.Format(time.RFC3339)
		}
		errMsg := p.Error
		if errMsg == "" {
			errMsg = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			p.ImageID,
			postLabel(p.PostStatus),
			p.ScheduledAt.Format(time.RFC3339),
			posted,
			errMsg,
		)
	}
	w.Flush()
}

func postLabel(s flyerapi.PostStatus) string {
	switch s {
	case flyerapi.PostPosted:
		return colorize(colorGreen, string(s))
	case flyerapi.PostFailed:
		return colorize(colorRed, string(s))
	default:
		return colorize(colorYellow, string(s))
	}
}

func init() {
	instagramScheduleCmd.Flags().String("caption", "", "post caption")
	instagramScheduleCmd.Flags().String("at", "", "post time (RFC 3339 or \"YYYY-MM-DD HH:MM\")")

	instagramCmd.AddCommand(instagramSelectCmd)
	instagramCmd.AddCommand(instagramScheduleCmd)
	instagramCmd.AddCommand(instagramListCmd)
	instagramCmd.AddCommand(instagramCancelCmd)
}
