package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flyerdeck/flyerctl/internal/edits"
	"github.com/flyerdeck/flyerctl/internal/flyerapi"
)

var extractionCmd = &cobra.Command{
	Use:   "extraction",
	Short: "Correct AI-extracted event fields",
}

var extractionSetCmd = &cobra.Command{
	Use:   "set <flyer-id> <field>=<value> [<field>=<value>...]",
	Short: "Set one or more extraction fields",
	Long: `Set extraction fields directly.

Examples:
  flyerctl extraction set f1 venue_name="Unit 9"
  flyerctl extraction set f1 event_title="Warehouse Rave" location_town_city=Bristol`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		flyer, err := client.GetFlyer(cmd.Context(), id)
		if err != nil {
			return err
		}

		buf := newEditBuffer(flyer)
		for _, pair := range args[1:] {
			key, value, ok := strings.Cut(pair, "=")
			if !ok {
				return fmt.Errorf("invalid argument %q, want field=value", pair)
			}
			if err := buf.Set(key, value); err != nil {
				return fmt.Errorf("%w (valid fields: %s)", err, strings.Join(flyerapi.FieldKeys(), ", "))
			}
		}

		return saveEdits(cmd, client, id, buf)
	},
}

var extractionEditCmd = &cobra.Command{
	Use:   "edit <flyer-id>",
	Short: "Open extraction fields in $EDITOR",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vi"
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		flyer, err := client.GetFlyer(cmd.Context(), id)
		if err != nil {
			return err
		}

		buf := newEditBuffer(flyer)
		data, err := json.MarshalIndent(buf.Values(), "", "  ")
		if err != nil {
			return err
		}

		tmpFile, err := os.CreateTemp("", "flyerctl-extraction-*.json")
		if err != nil {
			return fmt.Errorf("creating temp file: %w", err)
		}
		tmpPath := tmpFile.Name()
		defer os.Remove(tmpPath)

		if _, err := tmpFile.Write(data); err != nil {
			tmpFile.Close()
			return err
		}
		tmpFile.Close()

		editorCmd := exec.Command(editor, tmpPath)
		editorCmd.Stdin = os.Stdin
		editorCmd.Stdout = os.Stdout
		editorCmd.Stderr = os.Stderr
		if err := editorCmd.Run(); err != nil {
			return fmt.Errorf("editor exited with error: %w", err)
		}

		edited, err := os.ReadFile(tmpPath)
		if err != nil {
			return err
		}

		var fields map[string]string
		if err := json.Unmarshal(edited, &fields); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}

		for key, value := range fields {
			if err := buf.Set(key, value); err != nil {
				return fmt.Errorf("%w (valid fields: %s)", err, strings.Join(flyerapi.FieldKeys(), ", "))
			}
		}

		return saveEdits(cmd, client, id, buf)
	},
}

func newEditBuffer(f flyerapi.Flyer) *edits.Buffer {
	snapshot := map[string]string{}
	if f.InformationExtraction != nil {
		snapshot = f.InformationExtraction.FieldValues()
	}
	return edits.NewBuffer(flyerapi.FieldKeys(), snapshot)
}

// saveEdits pushes only the changed fields. An unchanged buffer is a no-op,
// not an error.
func saveEdits(cmd *cobra.Command, client *flyerapi.Client, id string, buf *edits.Buffer) error {
	if !buf.Dirty() {
		fmt.Println("No changes.")
		return nil
	}

	diff := buf.Diff()
	updated, err := client.UpdateExtraction(cmd.Context(), id, diff)
	if err != nil {
		buf.Discard()
		return err
	}

	if updated.InformationExtraction != nil {
		buf.Commit(updated.InformationExtraction.FieldValues())
	}

	printSuccess("Updated %d field(s) on flyer %s", len(diff), id)
	return nil
}

func init() {
	extractionCmd.AddCommand(extractionSetCmd)
	extractionCmd.AddCommand(extractionEditCmd)
}
