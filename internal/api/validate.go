package api

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/nravi/leadgrid/internal/record"
)

// ValidationResult is the backend's file validation output. Each result
// record carries the source row plus the discovered domain, generated email
// candidates, and valid_emails_with_scores.
type ValidationResult struct {
	Status                string          `json:"status"`
	FileName              string          `json:"file_name"`
	TotalRecordsProcessed int             `json:"total_records_processed"`
	ProcessingTimeSeconds float64         `json:"processing_time_seconds"`
	Summary               record.Record   `json:"summary"`
	Results               []record.Record `json:"results"`
}

var validationExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".xls":  true,
	".txt":  true,
}

// ValidateFile uploads a contact file for email discovery and validation.
// Processing is synchronous on the backend, so the request runs against the
// upload deadline; a deadline hit surfaces as *TimeoutError.
func (c *Client) ValidateFile(ctx context.Context, file FileUpload) (ValidationResult, error) {
	if file.Name == "" || len(file.Content) == 0 {
		return ValidationResult{}, &ValidationError{Msg: "a non-empty file is required"}
	}
	if ext := strings.ToLower(filepath.Ext(file.Name)); !validationExtensions[ext] {
		return ValidationResult{}, &ValidationError{Msg: "unsupported file type, use CSV, Excel, or TXT"}
	}
	var out ValidationResult
	err := c.postMultipart(ctx, "validate file", "/api/upload-file", url.Values{},
		map[string]FileUpload{"file": file}, &out)
	if err != nil {
		return ValidationResult{}, err
	}
	return out, nil
}
