package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nravi/leadgrid/internal/api"
	"github.com/nravi/leadgrid/internal/job"
	"github.com/nravi/leadgrid/internal/record"
	"github.com/nravi/leadgrid/internal/store"
	"github.com/nravi/leadgrid/internal/view"
)

var emailCmd = &cobra.Command{
	Use:   "email",
	Short: "Run bulk email campaigns",
}

var emailPreviewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Preview a recipient file's columns and sample rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.requireAuth(cmd.Context()); err != nil {
			return err
		}

		upload, err := readUpload(args[0])
		if err != nil {
			return err
		}

		preview, err := env.client.PreviewFile(cmd.Context(), upload)
		if err != nil {
			return err
		}

		printStatus("Columns", "%s", strings.Join(preview.Columns, ", "))
		cols := columnsFor(preview.Columns)
		view.RenderTable(os.Stdout, preview.Data, cols)
		return nil
	},
}

var emailTemplatesCmd = &cobra.Command{
	Use:   "templates <file>",
	Short: "Upload a per-position template file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.requireAuth(cmd.Context()); err != nil {
			return err
		}

		upload, err := readUpload(args[0])
		if err != nil {
			return err
		}

		set, err := env.client.UploadTemplates(cmd.Context(), upload)
		if err != nil {
			return err
		}

		printSuccess("Loaded %d templates", len(set.Positions))
		for _, p := range set.Positions {
			printStatus("Position", "%s", p)
		}
		return nil
	},
}

// --- content ---

var emailContentCmd = &cobra.Command{
	Use:   "content",
	Short: "Manage the campaign content draft",
}

var emailContentGenerateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Generate campaign content from a prompt",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.requireAuth(cmd.Context()); err != nil {
			return err
		}

		prompt := strings.Join(args, " ")
		printStep("Generating content...")
		content, err := env.client.GenerateContent(cmd.Context(), prompt)
		if err != nil {
			return err
		}

		if err := env.store.PutJSON(store.KeyEmailContent, content); err != nil {
			printWarning("Could not cache draft: %v", err)
		}
		renderContent(content)
		return nil
	},
}

var emailContentShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current draft",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		// Prefer the locally cached draft; fall back to the backend copy.
		var content api.EmailContent
		if err := env.store.GetJSON(store.KeyEmailContent, &content); err != nil || content.Empty() {
			content, err = env.client.GetContent(cmd.Context())
			if err != nil {
				return err
			}
			if !content.Empty() {
				env.store.PutJSON(store.KeyEmailContent, content)
			}
		}
		if content.Empty() {
			printWarning("No draft yet, run: leadgrid email content generate")
			return nil
		}
		renderContent(content)
		return nil
	},
}

var emailContentSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set draft fields by hand",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		var content api.EmailContent
		env.store.GetJSON(store.KeyEmailContent, &content)

		if v, _ := cmd.Flags().GetString("subject"); cmd.Flags().Changed("subject") {
			content.Subject = v
		}
		if v, _ := cmd.Flags().GetString("body"); cmd.Flags().Changed("body") {
			content.Body = v
		}
		if v, _ := cmd.Flags().GetString("sender-name"); cmd.Flags().Changed("sender-name") {
			content.SenderName = v
		}

		if err := env.client.UpdateContent(cmd.Context(), content); err != nil {
			return err
		}
		if err := env.store.PutJSON(store.KeyEmailContent, content); err != nil {
			printWarning("Could not cache draft: %v", err)
		}
		printSuccess("Draft updated")
		return nil
	},
}

var emailContentClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the draft locally and on the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.client.UpdateContent(cmd.Context(), api.EmailContent{}); err != nil {
			printWarning("Could not clear backend draft: %v", err)
		}
		env.store.Delete(store.KeyEmailContent)
		printSuccess("Draft cleared")
		return nil
	},
}

// --- send ---

var emailSendCmd = &cobra.Command{
	Use:   "send <file>",
	Short: "Start a bulk campaign and watch its progress",
	Long: `Start a bulk campaign and watch its progress.

Sender accounts are passed as --account email:password[:display name],
repeated once per mailbox. Content comes from the current draft unless
--use-templates selects a previously uploaded template set.

Examples:
  leadgrid email send recipients.csv --account sales@acme.com:secret:"Acme Sales"
  leadgrid email send recipients.csv --use-templates --position-column role \
    --account a@acme.com:pw1 --account b@acme.com:pw2 --batch-size 20`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.requireAuth(cmd.Context()); err != nil {
			return err
		}

		upload, err := readUpload(args[0])
		if err != nil {
			return err
		}

		accountSpecs, _ := cmd.Flags().GetStringArray("account")
		senders, err := parseAccounts(accountSpecs)
		if err != nil {
			return err
		}

		batchSize, _ := cmd.Flags().GetInt("batch-size")
		useTemplates, _ := cmd.Flags().GetBool("use-templates")
		positionColumn, _ := cmd.Flags().GetString("position-column")

		req := api.BulkSendRequest{
			File:           upload,
			BatchSize:      batchSize,
			UseTemplates:   useTemplates,
			PositionColumn: positionColumn,
			Senders:        senders,
		}
		if !useTemplates {
			if err := env.store.GetJSON(store.KeyEmailContent, &req.Content); err != nil || req.Content.Empty() {
				req.Content, err = env.client.GetContent(cmd.Context())
				if err != nil {
					return err
				}
			}
		}

		printStep("Uploading %s (%s) and starting campaign", upload.Name, humanize.Bytes(uint64(len(upload.Content))))

		runner := &job.Runner{Interval: env.cfg.PollInterval()}
		handle, err := runner.Start(cmd.Context(),
			func(ctx context.Context) error {
				return env.client.StartBulkSend(ctx, req)
			},
			env.client.Progress,
		)
		if err != nil {
			return err
		}
		defer handle.Stop()

		return watchProgress(cmd.Context(), handle)
	},
}

// watchProgress prints status updates until the campaign reaches a terminal
// state.
func watchProgress(ctx context.Context, handle *job.Handle) error {
	for {
		select {
		case status, ok := <-handle.Updates():
			if !ok {
				return finishProgress(handle.Status())
			}
			if status.Total > 0 {
				printStep("Sent %d/%d (%.0f%%)", status.Completed, status.Total, status.Fraction()*100)
			}
			if status.Terminal() {
				return finishProgress(status)
			}
		case <-ctx.Done():
			handle.Stop()
			return ctx.Err()
		}
	}
}

func finishProgress(status job.Status) error {
	switch status.State {
	case job.StateCompleted:
		printSuccess("Campaign completed: %d/%d sent", status.Completed, status.Total)
		return nil
	case job.StateError:
		if status.Detail != "" {
			return fmt.Errorf("campaign failed: %s", status.Detail)
		}
		return fmt.Errorf("campaign failed")
	default:
		printWarning("Campaign stopped while %s", status.State)
		return nil
	}
}

var emailProgressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show the running campaign's progress once",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		status, err := env.client.Progress(cmd.Context())
		if err != nil {
			return err
		}
		printStatus("Status", "%s", status.State)
		if status.Detail != "" {
			printStatus("Detail", "%s", status.Detail)
		}
		printStatus("Sent", "%d/%d", status.Completed, status.Total)
		return nil
	},
}

func renderContent(content api.EmailContent) {
	printStatus("Subject", "%s", content.Subject)
	printStatus("Sender", "%s", content.SenderName)
	fmt.Println()
	fmt.Println(content.Body)
}

func columnsFor(names []string) []record.Column {
	cols := make([]record.Column, len(names))
	for i, n := range names {
		cols[i] = record.Column{Header: n, Field: n}
	}
	return cols
}

func readUpload(path string) (api.FileUpload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return api.FileUpload{}, fmt.Errorf("reading file: %w", err)
	}
	return api.FileUpload{Name: filepath.Base(path), Content: data}, nil
}

// parseAccounts splits "email:password[:name]" specs.
func parseAccounts(specs []string) ([]api.SenderAccount, error) {
	var senders []api.SenderAccount
	for _, spec := range specs {
		parts := strings.SplitN(spec, ":", 3)
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid account %q, expected email:password[:name]", spec)
		}
		acc := api.SenderAccount{Email: parts[0], Password: parts[1]}
		if len(parts) == 3 {
			acc.Name = parts[2]
		}
		senders = append(senders, acc)
	}
	return senders, nil
}

func init() {
	emailSendCmd.Flags().StringArray("account", nil, "sender account as email:password[:name], repeatable")
	emailSendCmd.Flags().Int("batch-size", 10, "emails per sending batch")
	emailSendCmd.Flags().Bool("use-templates", false, "use the uploaded template set instead of the draft")
	emailSendCmd.Flags().String("position-column", "", "recipient column holding the position for template matching")
	emailContentSetCmd.Flags().String("subject", "", "draft subject")
	emailContentSetCmd.Flags().String("body", "", "draft body")
	emailContentSetCmd.Flags().String("sender-name", "", "draft sender display name")

	emailContentCmd.AddCommand(emailContentGenerateCmd)
	emailContentCmd.AddCommand(emailContentShowCmd)
	emailContentCmd.AddCommand(emailContentSetCmd)
	emailContentCmd.AddCommand(emailContentClearCmd)

	emailCmd.AddCommand(emailPreviewCmd)
	emailCmd.AddCommand(emailTemplatesCmd)
	emailCmd.AddCommand(emailContentCmd)
	emailCmd.AddCommand(emailSendCmd)
	emailCmd.AddCommand(emailProgressCmd)
}
