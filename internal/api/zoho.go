package api

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nravi/leadgrid/internal/record"
)

// defaultUserID scopes Zoho credentials server-side when no account id is
// supplied.
const defaultUserID = "default_user"

// sendConcurrency bounds parallel reply sending in SendAllReplies.
const sendConcurrency = 3

// ZohoCredentials is the OAuth client registration for the connected CRM.
type ZohoCredentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURI  string `json:"redirect_uri"`
}

// ZohoStatus reports whether the CRM connection is live.
type ZohoStatus struct {
	Connected bool   `json:"connected"`
	Message   string `json:"message"`
}

// Reply is one unread response found in the sender's mailbox.
type Reply struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Date      string `json:"date"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Phone     string `json:"phone"`
}

// SendReplyRequest sends a drafted reply and records the contact as a CRM
// lead.
type SendReplyRequest struct {
	SenderEmail    string        `json:"sender_email"`
	SenderPassword string        `json:"sender_password"`
	RecipientEmail string        `json:"recipient_email"`
	Subject        string        `json:"subject"`
	Body           string        `json:"body"`
	EmailID        string        `json:"email_id"`
	LeadData       record.Record `json:"lead_data"`
}

// BatchItem is the outcome for one reply in a batch send.
type BatchItem struct {
	Email   string
	Sent    bool
	Message string
}

// BatchResult aggregates a batch send. It is returned even when some items
// failed; callers decide how to present the partial outcome.
type BatchResult struct {
	Items  []BatchItem
	Sent   int
	Failed int
}

// SaveZohoCredentials stores the OAuth registration on the backend, scoped
// by user id via the X-User-ID header.
func (c *Client) SaveZohoCredentials(ctx context.Context, userID string, creds ZohoCredentials) error {
	if creds.ClientID == "" || creds.ClientSecret == "" || creds.RedirectURI == "" {
		return &ValidationError{Msg: "client id, client secret and redirect uri are required"}
	}
	if userID == "" {
		userID = defaultUserID
	}
	headers := map[string]string{"X-User-ID": userID}
	return c.postJSONHeaders(ctx, "save zoho credentials", "/save-zoho-credentials", creds, nil, headers)
}

// GetZohoStatus reports the current connection state.
func (c *Client) GetZohoStatus(ctx context.Context) (ZohoStatus, error) {
	var out ZohoStatus
	if err := c.getJSON(ctx, "zoho status", "/zoho-status", &out); err != nil {
		return ZohoStatus{}, err
	}
	return out, nil
}

// GetZohoFields lists the CRM's lead fields, used to sanity-check the lead
// mapping before pushing contacts.
func (c *Client) GetZohoFields(ctx context.Context) ([]record.Record, error) {
	var resp struct {
		Fields []record.Record `json:"fields"`
	}
	if err := c.getJSON(ctx, "zoho fields", "/zoho-fields", &resp); err != nil {
		return nil, err
	}
	return resp.Fields, nil
}

// GetZohoAuthURL returns the OAuth consent URL to open in a browser.
func (c *Client) GetZohoAuthURL(ctx context.Context) (string, error) {
	var resp struct {
		AuthURL string `json:"auth_url"`
	}
	if err := c.getJSON(ctx, "zoho auth url", "/zoho-auth", &resp); err != nil {
		return "", err
	}
	return resp.AuthURL, nil
}

// CheckReplies scans the sender's inbox for responses to sent campaigns.
func (c *Client) CheckReplies(ctx context.Context, senderEmail, senderPassword string) ([]Reply, string, error) {
	if senderEmail == "" || senderPassword == "" {
		return nil, "", &ValidationError{Msg: "sender email and password are required"}
	}
	var resp struct {
		Replies []Reply `json:"replies"`
		Message string  `json:"message"`
	}
	in := map[string]string{
		"sender_email":    senderEmail,
		"sender_password": senderPassword,
	}
	if err := c.postJSONClient(ctx, "check replies", c.uploadClient, "/zoho-check-replies", in, &resp); err != nil {
		return nil, "", err
	}
	return resp.Replies, resp.Message, nil
}

// GenerateReply drafts a professional response to the given email body.
func (c *Client) GenerateReply(ctx context.Context, originalEmail string) (string, error) {
	if strings.TrimSpace(originalEmail) == "" {
		return "", &ValidationError{Msg: "original email text is required"}
	}
	var resp struct {
		Reply string `json:"reply"`
	}
	in := map[string]string{"original_email": originalEmail}
	if err := c.postJSONClient(ctx, "generate reply", c.uploadClient, "/zoho-generate-professional-reply", in, &resp); err != nil {
		return "", err
	}
	return resp.Reply, nil
}

// SendReply sends one drafted reply.
func (c *Client) SendReply(ctx context.Context, req SendReplyRequest) error {
	if req.SenderEmail == "" || req.SenderPassword == "" {
		return &ValidationError{Msg: "sender email and password are required"}
	}
	if req.RecipientEmail == "" || req.Body == "" {
		return &ValidationError{Msg: "recipient and reply body are required"}
	}
	return c.postJSON(ctx, "send reply", "/zoho-send-reply", req, nil)
}

// SendAllReplies sends every drafted reply, a few at a time. Per-item
// failures are collected into the result rather than aborting the batch;
// the error return covers only pre-flight validation.
func (c *Client) SendAllReplies(ctx context.Context, senderEmail, senderPassword string, replies []Reply, drafts map[string]string) (BatchResult, error) {
	if senderEmail == "" || senderPassword == "" {
		return BatchResult{}, &ValidationError{Msg: "sender email and password are required"}
	}

	type indexed struct {
		idx int
		r   Reply
	}
	var todo []indexed
	for i, r := range replies {
		if strings.TrimSpace(drafts[r.ID]) != "" {
			todo = append(todo, indexed{idx: i, r: r})
		}
	}

	items := make([]BatchItem, len(todo))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sendConcurrency)
	for i, t := range todo {
		g.Go(func() error {
			req := SendReplyRequest{
				SenderEmail:    senderEmail,
				SenderPassword: senderPassword,
				RecipientEmail: t.r.From,
				Subject:        "Re: " + t.r.Subject,
				Body:           drafts[t.r.ID],
				EmailID:        t.r.ID,
				LeadData:       replyLeadData(t.r),
			}
			item := BatchItem{Email: t.r.From}
			if err := c.SendReply(gctx, req); err != nil {
				item.Message = err.Error()
			} else {
				item.Sent = true
				item.Message = "sent"
			}
			items[i] = item
			return nil
		})
	}
	g.Wait()

	res := BatchResult{Items: items}
	for _, it := range items {
		if it.Sent {
			res.Sent++
		} else {
			res.Failed++
		}
	}
	return res, nil
}

// replyLeadData builds the CRM lead payload for a reply's sender.
func replyLeadData(r Reply) record.Record {
	first := r.FirstName
	if first == "" {
		if at := strings.IndexByte(r.From, '@'); at > 0 {
			first = r.From[:at]
		} else {
			first = r.From
		}
	}
	company := r.Company
	if company == "" {
		company = "From Email Reply"
	}
	rec := record.New()
	rec.Set("email", record.String(r.From))
	rec.Set("first_name", record.String(first))
	rec.Set("last_name", record.String(r.LastName))
	rec.Set("company", record.String(company))
	rec.Set("phone", record.String(r.Phone))
	return rec
}

// DownloadReplies fetches the backend's running reply log as spreadsheet
// bytes.
func (c *Client) DownloadReplies(ctx context.Context) ([]byte, error) {
	body, err := c.getRaw(ctx, "download replies", "/download-replies")
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("download replies: empty response")
	}
	return body, nil
}
