package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/nravi/leadgrid/internal/record"
)

// LeadsRequest describes a lead generation run. Query is the full search
// expression; BuildQuery composes one from structured criteria.
type LeadsRequest struct {
	Query    string `json:"query"`
	MaxLeads int    `json:"max_leads"`
}

// LeadsResult is the backend's scrape output: one record per lead plus the
// aggregate counters the backend computed over them.
type LeadsResult struct {
	Status        string          `json:"status"`
	GeneratedAt   string          `json:"generated_at"`
	TotalLeads    int             `json:"total_leads"`
	Leads         []record.Record `json:"leads"`
	Summary       record.Record   `json:"summary"`
	DataBreakdown record.Record   `json:"data_breakdown"`
}

// BuildQuery composes the LinkedIn profile search expression from structured
// criteria. Empty parts are skipped; at least one must be set.
func BuildQuery(jobTitle, location, industry string) string {
	parts := []string{"site:linkedin.com/in"}
	for _, p := range []string{jobTitle, location, industry} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, fmt.Sprintf("%q", p))
		}
	}
	parts = append(parts, `"@gmail.com"`)
	return strings.Join(parts, " ")
}

// GenerateLeads runs a scrape. This is a single long request: the backend
// answers only once the scrape finishes, so the call uses the upload client's
// extended deadline.
func (c *Client) GenerateLeads(ctx context.Context, req LeadsRequest) (LeadsResult, error) {
	if strings.TrimSpace(req.Query) == "" {
		return LeadsResult{}, &ValidationError{Msg: "query is required"}
	}
	if req.MaxLeads <= 0 {
		req.MaxLeads = 10
	}
	var out LeadsResult
	if err := c.postJSONClient(ctx, "generate leads", c.uploadClient, "/webscraping/generate-leads", req, &out); err != nil {
		return LeadsResult{}, err
	}
	return out, nil
}
