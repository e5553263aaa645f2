package api

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/nravi/leadgrid/internal/job"
	"github.com/nravi/leadgrid/internal/record"
)

// FilePreview is the first rows of an uploaded recipient file.
type FilePreview struct {
	Columns []string        `json:"columns"`
	Data    []record.Record `json:"data"`
}

// TemplateSet is a parsed template file: one template per position.
type TemplateSet struct {
	Positions []string        `json:"positions"`
	Templates []record.Record `json:"templates"`
}

// EmailContent is the shared campaign draft: subject, body and sender
// display name.
type EmailContent struct {
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	SenderName string `json:"sender_name"`
}

// Empty reports whether no field of the draft is set.
func (ec EmailContent) Empty() bool {
	return ec.Subject == "" && ec.Body == "" && ec.SenderName == ""
}

// SenderAccount is one sending mailbox for a bulk campaign.
type SenderAccount struct {
	Email    string
	Password string
	Name     string
}

// BulkSendRequest starts a campaign. Either Content is used for every
// recipient, or UseTemplates selects per-position templates previously
// uploaded via UploadTemplates, keyed by PositionColumn.
type BulkSendRequest struct {
	File           FileUpload
	BatchSize      int
	UseTemplates   bool
	PositionColumn string
	Content        EmailContent
	Senders        []SenderAccount
}

// PreviewFile returns the column list and sample rows of a recipient file.
func (c *Client) PreviewFile(ctx context.Context, file FileUpload) (FilePreview, error) {
	if file.Name == "" || len(file.Content) == 0 {
		return FilePreview{}, &ValidationError{Msg: "a non-empty file is required"}
	}
	var out FilePreview
	err := c.postMultipart(ctx, "preview file", "/preview", url.Values{},
		map[string]FileUpload{"file": file}, &out)
	if err != nil {
		return FilePreview{}, err
	}
	return out, nil
}

// UploadTemplates uploads a template file and returns the positions it
// covers. The backend keeps the set server-side for the next bulk send.
func (c *Client) UploadTemplates(ctx context.Context, file FileUpload) (TemplateSet, error) {
	if file.Name == "" || len(file.Content) == 0 {
		return TemplateSet{}, &ValidationError{Msg: "a non-empty template file is required"}
	}
	var out TemplateSet
	err := c.postMultipart(ctx, "upload templates", "/upload-templates", url.Values{},
		map[string]FileUpload{"file": file}, &out)
	if err != nil {
		return TemplateSet{}, err
	}
	return out, nil
}

// GenerateContent asks the backend to draft campaign content from a prompt.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (EmailContent, error) {
	if strings.TrimSpace(prompt) == "" {
		return EmailContent{}, &ValidationError{Msg: "prompt is required"}
	}
	var out EmailContent
	in := map[string]string{"prompt": prompt}
	if err := c.postJSONClient(ctx, "generate content", c.uploadClient, "/generate-content", in, &out); err != nil {
		return EmailContent{}, err
	}
	return out, nil
}

// GetContent fetches the draft stored on the backend.
func (c *Client) GetContent(ctx context.Context) (EmailContent, error) {
	var out EmailContent
	if err := c.getJSON(ctx, "get content", "/get-content", &out); err != nil {
		return EmailContent{}, err
	}
	return out, nil
}

// UpdateContent stores a draft on the backend. Sending the zero value
// clears the stored draft.
func (c *Client) UpdateContent(ctx context.Context, content EmailContent) error {
	return c.postJSON(ctx, "update content", "/update-content", content, nil)
}

// StartBulkSend uploads the recipient file and kicks off the campaign. The
// backend tracks a single campaign at a time; watch it with Progress.
func (c *Client) StartBulkSend(ctx context.Context, req BulkSendRequest) error {
	if req.File.Name == "" || len(req.File.Content) == 0 {
		return &ValidationError{Msg: "a non-empty recipient file is required"}
	}
	if len(req.Senders) == 0 {
		return &ValidationError{Msg: "at least one sender account is required"}
	}
	for _, s := range req.Senders {
		if s.Email == "" || s.Password == "" {
			return &ValidationError{Msg: "sender accounts need both email and password"}
		}
	}
	if !req.UseTemplates && (req.Content.Subject == "" || req.Content.Body == "" || req.Content.SenderName == "") {
		return &ValidationError{Msg: "subject, body and sender name are required unless templates are used"}
	}
	if req.BatchSize <= 0 {
		req.BatchSize = 10
	}

	fields := url.Values{}
	fields.Set("batch_size", strconv.Itoa(req.BatchSize))
	fields.Set("use_templates", strconv.FormatBool(req.UseTemplates))
	fields.Set("position_column", req.PositionColumn)
	if !req.UseTemplates {
		fields.Set("subject", req.Content.Subject)
		fields.Set("body", req.Content.Body)
		fields.Set("sender_name", req.Content.SenderName)
	}
	for _, s := range req.Senders {
		fields.Add("sender_emails[]", s.Email)
		fields.Add("sender_passwords[]", s.Password)
		fields.Add("sender_names[]", s.Name)
	}

	return c.postMultipart(ctx, "start bulk send", "/upload", fields,
		map[string]FileUpload{"file": req.File}, nil)
}

// Progress reports the running campaign's state. The raw status string may
// be "idle", "running", "completed" or "error..." with detail appended.
func (c *Client) Progress(ctx context.Context) (job.Status, error) {
	var resp struct {
		Sent   int    `json:"sent"`
		Total  int    `json:"total"`
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, "progress", "/progress", &resp); err != nil {
		return job.Status{}, err
	}
	state, detail := job.ParseState(resp.Status)
	return job.Status{
		State:     state,
		Detail:    detail,
		Completed: resp.Sent,
		Total:     resp.Total,
	}, nil
}
