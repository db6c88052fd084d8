package main

import (
	"errors"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/flyerdeck/flyerctl/internal/config"
	"github.com/flyerdeck/flyerctl/internal/flyerapi"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show dashboard connectivity and workload summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			printError("config error: %v", err)
			return nil
		}
		printStatus("API", "%s", cfg.API.BaseURL)

		if _, err := config.GetAPIToken(); err != nil {
			if errors.Is(err, config.ErrNoToken) {
				printStatus("Auth", "not logged in")
			} else {
				printStatus("Auth", "error: %v", err)
			}
			return nil
		}
		printStatus("Auth", "token stored")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		flyers, err := client.ListFlyers(ctx)
		if err != nil {
			if errors.Is(err, flyerapi.ErrUnauthorized) {
				printStatus("Server", "rejected token; run flyerctl login again")
				return nil
			}
			printStatus("Server", "unreachable (%v)", err)
			return nil
		}
		printStatus("Server", "reachable")
		printStatus("Flyers", "%d", len(flyers))

		var pending, completed, failed, images int
		for _, f := range flyers {
			switch f.ExtractionStatus {
			case flyerapi.ExtractionCompleted:
				completed++
			case flyerapi.ExtractionFailed:
				failed++
			default:
				pending++
			}
			images += len(f.GeneratedImages)
		}
		printStatus("Extractions", "%d completed, %d in flight, %d failed", completed, pending, failed)
		printStatus("Images", "%d", images)

		// Scheduled posts are per-flyer; tally them concurrently.
		var igPosts, wpPosts atomic.Int64
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(4)
		for _, f := range flyers {
			g.Go(func() error {
				posts, err := client.ListScheduledInstagram(gctx, f.ID)
				if err != nil {
					return err
				}
				igPosts.Add(int64(len(posts)))

				posts, err = client.ListScheduledWordPress(gctx, f.ID)
				if err != nil {
					return err
				}
				wpPosts.Add(int64(len(posts)))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			printWarning("Could not tally scheduled posts: %v", err)
			return nil
		}
		printStatus("Instagram", "%d scheduled", igPosts.Load())
		printStatus("WordPress", "%d scheduled", wpPosts.Load())
		return nil
	},
}
