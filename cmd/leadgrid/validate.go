package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nravi/leadgrid/internal/api"
	"github.com/nravi/leadgrid/internal/export"
	"github.com/nravi/leadgrid/internal/record"
	"github.com/nravi/leadgrid/internal/store"
	"github.com/nravi/leadgrid/internal/view"
)

var validationColumns = []record.Column{
	{Header: "First Name", Field: "first_name"},
	{Header: "Last Name", Field: "last_name"},
	{Header: "Company", Field: "company_name"},
	{Header: "Domain", Field: "domain"},
	{Header: "Best Email", Field: "best_email", Sub: "email"},
	{Header: "Score", Field: "best_email", Sub: "score"},
	{Header: "All Valid Emails", Field: "valid_emails_with_scores", Sub: "email"},
}

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate and enrich a contact file",
	Long: `Validate and enrich a contact file.

Uploads a CSV, Excel or TXT contact list; the backend discovers each
contact's domain, generates email candidates and scores the valid ones.
Large files can take a while, the upload allows several minutes.

Examples:
  leadgrid validate contacts.csv
  leadgrid validate contacts.xlsx --format xlsx --output validated.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}

		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.requireAuth(cmd.Context()); err != nil {
			return err
		}

		printStep("Uploading %s (%s)", filepath.Base(path), humanize.Bytes(uint64(len(data))))
		result, err := env.client.ValidateFile(cmd.Context(), api.FileUpload{
			Name:    filepath.Base(path),
			Content: data,
		})
		if err != nil {
			var terr *api.TimeoutError
			if errors.As(err, &terr) {
				return fmt.Errorf("upload timed out, the file may be too large: %w", err)
			}
			return err
		}

		if err := env.store.PutJSON(store.KeyLastValidation, result); err != nil {
			printWarning("Could not cache results: %v", err)
		}

		printSuccess("Processed %d records in %.1fs", result.TotalRecordsProcessed, result.ProcessingTimeSeconds)
		view.RenderTable(os.Stdout, result.Results, validationColumns)

		if format, _ := cmd.Flags().GetString("format"); format != "" {
			output, _ := cmd.Flags().GetString("output")
			return exportValidation(result, format, output)
		}
		return nil
	},
}

var validateShowCmd = &cobra.Command{
	Use:   "show [index]",
	Short: "Show cached validation results, or one record in detail",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		var result api.ValidationResult
		if err := env.store.GetJSON(store.KeyLastValidation, &result); err != nil {
			return fmt.Errorf("no cached validation results, run: leadgrid validate <file>")
		}

		if len(args) == 1 {
			idx := 0
			if _, err := fmt.Sscanf(args[0], "%d", &idx); err != nil || idx < 1 || idx > len(result.Results) {
				return fmt.Errorf("index must be between 1 and %d", len(result.Results))
			}
			view.RenderDetail(os.Stdout, result.Results[idx-1])
			return nil
		}

		view.RenderTable(os.Stdout, result.Results, validationColumns)
		return nil
	},
}

func exportValidation(result api.ValidationResult, format, output string) error {
	var data []byte
	var err error
	switch format {
	case "csv":
		data = []byte(export.CSV(result.Results, validationColumns))
	case "json":
		doc := map[string]any{
			"file_name": result.FileName,
			"summary":   result.Summary,
			"results":   result.Results,
		}
		data, err = export.JSON(doc)
	case "xlsx":
		data, err = export.XLSX("Validation", result.Results, validationColumns)
	default:
		return fmt.Errorf("unknown format %q, use csv, json or xlsx", format)
	}
	if err != nil {
		return err
	}

	if output == "" {
		os.Stdout.Write(data)
		return nil
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	printSuccess("Exported %d records to %s", len(result.Results), output)
	return nil
}

func init() {
	validateCmd.Flags().String("format", "", "also export results: csv, json or xlsx")
	validateCmd.Flags().String("output", "", "export file path (default: stdout)")
	validateCmd.AddCommand(validateShowCmd)
}
