package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/flyerdeck/flyerctl/internal/config"
	"github.com/flyerdeck/flyerctl/internal/flyerapi"
	"github.com/flyerdeck/flyerctl/internal/poll"
)

var generateCmd = &cobra.Command{
	Use:   "generate <flyer-id>",
	Short: "Request promotional image generation for a flyer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		wait, _ := cmd.Flags().GetBool("wait")
		intervalFlag, _ := cmd.Flags().GetDuration("poll-interval")
		attemptsFlag, _ := cmd.Flags().GetInt("poll-attempts")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if err := client.GenerateImages(ctx, id); err != nil {
			return err
		}
		printSuccess("Image generation requested for flyer %s", id)

		if !wait {
			return nil
		}

		interval := intervalFlag
		attempts := attemptsFlag
		if cfg, err := config.Load(); err == nil {
			if interval <= 0 {
				interval = cfg.Poll.IntervalDuration()
			}
			if attempts <= 0 {
				attempts = cfg.Poll.MaxAttempts
			}
		}

		var flyer flyerapi.Flyer
		printStep("Waiting for images...")
		st, err := poll.Run(ctx, poll.Config{
			Interval:    interval,
			MaxAttempts: attempts,
			Fetch: func(ctx context.Context) (bool, error) {
				f, err := client.GetFlyer(ctx, id)
				if err != nil {
					return false, err
				}
				flyer = f
				return f.HasGeneratedImages(), nil
			},
		})
		if err != nil {
			return err
		}

		switch st {
		case poll.Canceled:
			return nil
		case poll.Exhausted:
			if f, ferr := client.GetFlyer(ctx, id); ferr == nil {
				flyer = f
			}
			if !flyer.HasGeneratedImages() {
				printWarning("No images ready after %d attempts; generation may still be running server-side", attempts)
				return nil
			}
		}

		printSuccess("Images ready")
		printImages(flyer)
		return nil
	},
}

func init() {
	generateCmd.Flags().Bool("wait", false, "poll until at least one image is generated")
	generateCmd.Flags().Duration("poll-interval", 0, "interval between polls (default from config)")
	generateCmd.Flags().Int("poll-attempts", 0, "maximum poll attempts (default from config)")
}
