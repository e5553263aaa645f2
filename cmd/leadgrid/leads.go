package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nravi/leadgrid/internal/api"
	"github.com/nravi/leadgrid/internal/export"
	"github.com/nravi/leadgrid/internal/form"
	"github.com/nravi/leadgrid/internal/record"
	"github.com/nravi/leadgrid/internal/store"
	"github.com/nravi/leadgrid/internal/view"
)

// leadColumns is the projection used for the leads table and every export.
var leadColumns = []record.Column{
	{Header: "Name", Field: "name"},
	{Header: "Job Title", Field: "job_title"},
	{Header: "Company", Field: "company"},
	{Header: "Location", Field: "location"},
	{Header: "Industry", Field: "industry"},
	{Header: "Domain", Field: "domain"},
	{Header: "Lead Score", Field: "lead_score"},
	{Header: "LinkedIn URL", Field: "url"},
	{Header: "Validated Emails", Field: "all_emails", Sub: "email"},
	{Header: "Phone Numbers", Field: "phone_numbers", Sub: "phone"},
	{Header: "Search Emails", Field: "search_emails", Sub: "email"},
	{Header: "Search Phones", Field: "search_phones", Sub: "phone"},
}

func newLeadsForm() *form.Controller {
	return form.New(
		form.Field{Name: "job_title"},
		form.Field{Name: "location"},
		form.Field{Name: "industry"},
		form.Field{Name: "lead_limit", Default: "5"},
	)
}

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Generate and export scraped leads",
}

var leadsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run a lead generation scrape",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.requireAuth(cmd.Context()); err != nil {
			return err
		}

		f := newLeadsForm()
		useSaved, _ := cmd.Flags().GetBool("use-saved")
		if useSaved {
			if err := f.LoadSnapshot(env.store, store.KeySearchCriteria); err != nil {
				return fmt.Errorf("no saved search criteria: %w", err)
			}
		}
		for _, name := range []string{"job_title", "location", "industry"} {
			if v, _ := cmd.Flags().GetString(flagName(name)); v != "" {
				f.Set(name, v)
			}
		}
		if limit, _ := cmd.Flags().GetInt("limit"); cmd.Flags().Changed("limit") {
			f.Set("lead_limit", strconv.Itoa(limit))
		}

		if err := f.ValidateRequired("job_title"); err != nil {
			return err
		}

		if save, _ := cmd.Flags().GetBool("save-criteria"); save {
			if err := f.SaveSnapshot(env.store, store.KeySearchCriteria); err != nil {
				printWarning("Could not save search criteria: %v", err)
			}
		}

		limit, err := strconv.Atoi(f.Value("lead_limit"))
		if err != nil || limit <= 0 {
			limit = 5
		}
		query := api.BuildQuery(f.Value("job_title"), f.Value("location"), f.Value("industry"))
		printStep("Scraping up to %d leads: %s", limit, query)

		result, err := env.client.GenerateLeads(cmd.Context(), api.LeadsRequest{
			Query:    query,
			MaxLeads: limit,
		})
		if err != nil {
			return err
		}

		if err := env.store.PutJSON(store.KeyLastLeads, result); err != nil {
			printWarning("Could not cache results: %v", err)
		}

		printSuccess("Generated %d leads", result.TotalLeads)
		view.RenderTable(os.Stdout, result.Leads, leadColumns)
		renderScoreBreakdown(result.Leads)
		return nil
	},
}

func renderScoreBreakdown(leads []record.Record) {
	counts := map[view.Band]int{}
	for _, l := range leads {
		score := 0.0
		if v, ok := l.Get("lead_score"); ok {
			score = v.Num()
		}
		counts[view.ScoreBand(score)]++
	}
	printStatus("High quality", "%d", counts[view.BandHigh])
	printStatus("Medium quality", "%d", counts[view.BandMedium])
	printStatus("Low quality", "%d", counts[view.BandLow])
}

var leadsShowCmd = &cobra.Command{
	Use:   "show [index]",
	Short: "Show cached leads, or one lead in full detail",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := loadCachedLeads(env)
		if err != nil {
			return err
		}

		if len(args) == 1 {
			idx, err := strconv.Atoi(args[0])
			if err != nil || idx < 1 || idx > len(result.Leads) {
				return fmt.Errorf("index must be between 1 and %d", len(result.Leads))
			}
			view.RenderDetail(os.Stdout, result.Leads[idx-1])
			return nil
		}

		view.RenderTable(os.Stdout, result.Leads, leadColumns)
		return nil
	},
}

var leadsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export cached leads as CSV, JSON or XLSX",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := loadCachedLeads(env)
		if err != nil {
			return err
		}

		var data []byte
		switch format {
		case "csv":
			data = []byte(export.CSV(result.Leads, leadColumns))
		case "json":
			doc := map[string]any{
				"generated_at": result.GeneratedAt,
				"summary":      result.Summary,
				"leads":        result.Leads,
			}
			data, err = export.JSON(doc)
		case "xlsx":
			data, err = export.XLSX("Leads", result.Leads, leadColumns)
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
		printSuccess("Exported %d leads to %s", len(result.Leads), output)
		return nil
	},
}

var leadsCriteriaCmd = &cobra.Command{
	Use:   "criteria",
	Short: "Manage saved search criteria",
}

var leadsCriteriaShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show saved search criteria",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		f := newLeadsForm()
		if err := f.LoadSnapshot(env.store, store.KeySearchCriteria); err != nil {
			return fmt.Errorf("no saved search criteria")
		}
		for _, name := range f.Names() {
			printStatus(name, "%s", f.Value(name))
		}
		return nil
	},
}

var leadsCriteriaClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget saved search criteria",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		if err := form.ClearSnapshot(env.store, store.KeySearchCriteria); err != nil {
			return err
		}
		printSuccess("Search criteria cleared")
		return nil
	},
}

func loadCachedLeads(env *appEnv) (api.LeadsResult, error) {
	var result api.LeadsResult
	if err := env.store.GetJSON(store.KeyLastLeads, &result); err != nil {
		return api.LeadsResult{}, fmt.Errorf("no cached leads, run: leadgrid leads generate")
	}
	return result, nil
}

func flagName(field string) string {
	switch field {
	case "job_title":
		return "title"
	default:
		return field
	}
}

func init() {
	leadsGenerateCmd.Flags().String("title", "", "target job title (required unless saved)")
	leadsGenerateCmd.Flags().String("location", "", "target location")
	leadsGenerateCmd.Flags().String("industry", "", "target industry")
	leadsGenerateCmd.Flags().Int("limit", 5, "maximum number of leads")
	leadsGenerateCmd.Flags().Bool("save-criteria", false, "remember these criteria")
	leadsGenerateCmd.Flags().Bool("use-saved", false, "start from saved criteria")
	leadsExportCmd.Flags().String("format", "csv", "export format: csv, json or xlsx")
	leadsExportCmd.Flags().String("output", "", "output file path (default: stdout)")

	leadsCriteriaCmd.AddCommand(leadsCriteriaShowCmd)
	leadsCriteriaCmd.AddCommand(leadsCriteriaClearCmd)
	leadsCmd.AddCommand(leadsGenerateCmd)
	leadsCmd.AddCommand(leadsShowCmd)
	leadsCmd.AddCommand(leadsExportCmd)
	leadsCmd.AddCommand(leadsCriteriaCmd)
}
