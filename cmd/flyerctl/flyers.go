package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/flyerdeck/flyerctl/internal/confidence"
	"github.com/flyerdeck/flyerctl/internal/config"
	"github.com/flyerdeck/flyerctl/internal/flyerapi"
	"github.com/flyerdeck/flyerctl/internal/poll"
)

var flyersCmd = &cobra.Command{
	Use:   "flyers",
	Short: "List and inspect flyers",
}

var flyersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all flyers",
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetBool("watch")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		flyers, err := client.ListFlyers(ctx)
		if err != nil {
			return err
		}

		if watch && anyExtracting(flyers) {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			printStep("Waiting for in-flight extractions...")
			st, err := poll.Run(ctx, poll.Config{
				Interval:    cfg.Poll.IntervalDuration(),
				MaxAttempts: cfg.Poll.MaxAttempts,
				Fetch: func(ctx context.Context) (bool, error) {
					fs, err := client.ListFlyers(ctx)
					if err != nil {
						return false, err
					}
					flyers = fs
					return !anyExtracting(fs), nil
				},
			})
			if err != nil {
				return err
			}
			switch st {
			case poll.Canceled:
				return nil
			case poll.Exhausted:
				if fs, ferr := client.ListFlyers(ctx); ferr == nil {
					flyers = fs
				}
				if anyExtracting(flyers) {
					printWarning("Some extractions are still running after %d attempts", cfg.Poll.MaxAttempts)
				}
			}
		}

		if len(flyers) == 0 {
			fmt.Println("No flyers found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tEXTRACTION\tIMAGES\tCREATED")
		for _, f := range flyers {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				f.ID,
				truncate(f.Title, 40),
				extractionLabel(f.ExtractionStatus),
				len(f.GeneratedImages),
				f.CreatedAt.Format("2006-01-02 15:04"),
			)
		}
		return w.Flush()
	},
}

// lowGateFields lists populated gate fields whose confidence is missing,
// unparsable, or not above the auto-generation cutoff.
func lowGateFields(ext *flyerapi.Extraction) []string {
	values := ext.FieldValues()
	var low []string
	for _, key := range confidence.GateFields() {
		if strings.TrimSpace(values[key]) == "" {
			continue
		}
		n, ok := confidence.Normalize(ext.FieldConfidenceLevels[key])
		if !ok || n <= 0.90 {
			low = append(low, key)
		}
	}
	return low
}

func anyExtracting(flyers []flyerapi.Flyer) bool {
	for _, f := range flyers {
		if !f.ExtractionStatus.Terminal() {
			return true
		}
	}
	return false
}

var flyersShowCmd = &cobra.Command{
	Use:   "show <flyer-id>",
	Short: "Show a flyer's extracted fields, confidence bands, and images",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		flyer, err := client.GetFlyer(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		printFlyer(flyer)
		return nil
	},
}

var flyersWatchCmd = &cobra.Command{
	Use:   "watch <flyer-id>",
	Short: "Poll a flyer through extraction and, when confident, image generation",
	Long: `Poll a flyer until its extraction finishes. When every populated field
carries confidence above 90%, image generation is triggered automatically
and polled until at least one image is ready. Lower-confidence flyers are
left for manual review (flyerctl extraction edit).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		interval := cfg.Poll.IntervalDuration()
		attempts := cfg.Poll.MaxAttempts

		ctx := cmd.Context()
		id := args[0]

		var flyer flyerapi.Flyer

		printStep("Waiting for extraction of flyer %s...", id)
		st, err := poll.Run(ctx, poll.Config{
			Interval:    interval,
			MaxAttempts: attempts,
			Fetch: func(ctx context.Context) (bool, error) {
				f, err := client.GetFlyer(ctx, id)
				if err != nil {
					return false, err
				}
				flyer = f
				return f.ExtractionStatus.Terminal(), nil
			},
		})
		if err != nil {
			return err
		}

		switch st {
		case poll.Canceled:
			return nil
		case poll.Exhausted:
			// One last look before giving up; the server may have finished
			// between the final attempt and now.
			if f, ferr := client.GetFlyer(ctx, id); ferr == nil {
				flyer = f
			}
			if !flyer.ExtractionStatus.Terminal() {
				printWarning("Extraction still %s after %d attempts; check back later with flyerctl flyers show %s",
					flyer.ExtractionStatus, attempts, id)
				printFlyer(flyer)
				return nil
			}
		}

		if flyer.ExtractionStatus == flyerapi.ExtractionFailed {
			printError("Extraction failed for flyer %s", id)
			return nil
		}

		printFlyer(flyer)

		ext := flyer.InformationExtraction
		if ext == nil || !confidence.ShouldAutoGenerate(ext.FieldConfidenceLevels, ext.FieldValues()) {
			printWarning("Confidence below the auto-generation threshold; review fields with flyerctl extraction edit %s", id)
			if ext != nil {
				if low := lowGateFields(ext); len(low) > 0 {
					printStatus("Needs review", "%s", strings.Join(low, ", "))
				}
			}
			return nil
		}

		printStep("All fields above 90%% confidence; requesting image generation...")
		if err := client.GenerateImages(ctx, id); err != nil {
			return err
		}

		st, err = poll.Run(ctx, poll.Config{
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
				printFlyer(flyer)
				return nil
			}
		}

		printSuccess("Images ready for flyer %s", id)
		printImages(flyer)
		return nil
	},
}

func printFlyer(f flyerapi.Flyer) {
	fmt.Printf("%s  %s\n", colorize(colorBold, f.Title), f.ID)
	printStatus("Extraction", "%s", extractionLabel(f.ExtractionStatus))

	if ext := f.InformationExtraction; ext != nil {
		values := ext.FieldValues()
		for _, key := range flyerapi.FieldKeys() {
			value := values[key]
			raw := ext.FieldConfidenceLevels[key]
			band := confidence.Classify(value, raw)
			display := value
			if display == "" {
				display = "(missing)"
			}
			fmt.Printf("  %-28s %s  %s\n",
				key,
				colorize(bandColor(band), display),
				colorize(bandColor(band), confidence.FormatPercent(raw)),
			)
		}
	}

	printImages(f)
}

func printImages(f flyerapi.Flyer) {
	for _, img := range f.GeneratedImages {
		line := fmt.Sprintf("%s  %-12s %s", img.ID, img.ImageType, img.GenerationStatus)
		if img.URL != "" {
			line += "  " + img.URL
		}
		fmt.Printf("  %s\n", line)
	}
}

func extractionLabel(s flyerapi.ExtractionStatus) string {
	switch s {
	case flyerapi.ExtractionCompleted:
		return colorize(colorGreen, string(s))
	case flyerapi.ExtractionFailed:
		return colorize(colorRed, string(s))
	default:
		return colorize(colorYellow, string(s))
	}
}

// truncate shortens s to at most n runes, never splitting a multibyte
// sequence.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

func init() {
	flyersListCmd.Flags().Bool("watch", false, "poll until no extraction is in flight")

	flyersCmd.AddCommand(flyersListCmd)
	flyersCmd.AddCommand(flyersShowCmd)
	flyersCmd.AddCommand(flyersWatchCmd)
}
