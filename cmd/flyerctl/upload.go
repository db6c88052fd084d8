package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a flyer image or PDF",
	Long: `Upload a flyer to the dashboard. Extraction starts server-side as soon
as the upload completes; follow it with flyerctl flyers watch.

PDFs are inspected locally before upload: multi-page documents are
flagged, and when no --title is given the first line of text is offered
as the title.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		title, _ := cmd.Flags().GetString("title")

		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			pdfTitle, pages, err := inspectPDF(path)
			if err != nil {
				return fmt.Errorf("inspecting PDF: %w", err)
			}
			if pages > 1 {
				printWarning("PDF has %d pages; only the first is used for extraction", pages)
			}
			if title == "" && pdfTitle != "" {
				title = pdfTitle
				printStep("Using title from PDF text: %q", title)
			}
		}

		if title == "" {
			title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		flyer, err := client.UploadFlyer(cmd.Context(), path, title)
		if err != nil {
			return err
		}

		printSuccess("Uploaded flyer %s (%s)", flyer.ID, flyer.Title)
		printStep("Extraction is %s; follow with flyerctl flyers watch %s", flyer.ExtractionStatus, flyer.ID)
		return nil
	},
}

// inspectPDF returns a title candidate (the first non-empty text line) and
// the page count.
func inspectPDF(path string) (string, int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	pages := r.NumPage()

	var title string
	if reader, err := r.GetPlainText(); err == nil {
		if data, err := io.ReadAll(io.LimitReader(reader, 4<<10)); err == nil {
			for _, line := range strings.Split(string(data), "\n") {
				line = strings.TrimSpace(line)
				if line != "" {
					title = line
					break
				}
			}
		}
	}
	if len(title) > 80 {
		title = title[:80]
	}

	return title, pages, nil
}

func init() {
	uploadCmd.Flags().String("title", "", "flyer title (default: derived from the file)")
}
