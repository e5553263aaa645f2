package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

const (
	defaultBaseURL       = "http://localhost:5000"
	defaultTimeout       = 30 * time.Second
	defaultUploadTimeout = 5 * time.Minute

	sessionCookieName = "session_token"
)

// FileUpload is a file attached to a multipart request.
type FileUpload struct {
	Name    string
	Content []byte
}

// Client talks to the lead generation backend. The backend authenticates via
// a session cookie, which the client keeps in its cookie jar; SessionCookie
// and SetSessionCookie expose it for persistence across process runs.
type Client struct {
	baseURL string
	jar     *cookiejar.Jar

	// httpClient covers ordinary JSON requests; uploadClient carries the
	// longer deadline for multipart file uploads and bulk-send kickoff.
	httpClient   *http.Client
	uploadClient *http.Client
}

// NewClient creates a client for the backend at baseURL. Empty baseURL uses
// the local development default.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		jar:          jar,
		httpClient:   &http.Client{Jar: jar, Timeout: defaultTimeout},
		uploadClient: &http.Client{Jar: jar, Timeout: defaultUploadTimeout},
	}
}

// SetTimeouts overrides the request and upload deadlines. Zero values keep
// the current setting.
func (c *Client) SetTimeouts(request, upload time.Duration) {
	if request > 0 {
		c.httpClient.Timeout = request
	}
	if upload > 0 {
		c.uploadClient.Timeout = upload
	}
}

// BaseURL returns the backend base URL the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// SessionCookie returns the current session cookie value, or "" when the
// client holds no session.
func (c *Client) SessionCookie() string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return ""
	}
	for _, ck := range c.jar.Cookies(u) {
		if ck.Name == sessionCookieName {
			return ck.Value
		}
	}
	return ""
}

// SetSessionCookie seeds the jar with a previously persisted session value.
func (c *Client) SetSessionCookie(value string) {
	if value == "" {
		return
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return
	}
	c.jar.SetCookies(u, []*http.Cookie{{Name: sessionCookieName, Value: value, Path: "/"}})
}

// ClearSession drops the session cookie by replacing the jar.
func (c *Client) ClearSession() {
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	c.jar = jar
	c.httpClient.Jar = jar
	c.uploadClient.Jar = jar
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(op, c.httpClient, req, out)
}

func (c *Client) postJSON(ctx context.Context, op, path string, in, out any) error {
	return c.postJSONClient(ctx, op, c.httpClient, path, in, out)
}

// postJSONClient posts JSON using a specific underlying client, so slow
// endpoints can run against the upload deadline.
func (c *Client) postJSONClient(ctx context.Context, op string, hc *http.Client, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(op, hc, req, out)
}

func (c *Client) postJSONHeaders(ctx context.Context, op, path string, in, out any, headers map[string]string) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.do(op, c.httpClient, req, out)
}

// postMultipart sends fields and files as multipart/form-data using the
// upload client. values with repeated keys are sent as repeated form fields.
func (c *Client) postMultipart(ctx context.Context, op, path string, fields url.Values, files map[string]FileUpload, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, vals := range fields {
		for _, v := range vals {
			if err := w.WriteField(key, v); err != nil {
				return fmt.Errorf("writing form field %s: %w", key, err)
			}
		}
	}
	for field, f := range files {
		part, err := w.CreateFormFile(field, f.Name)
		if err != nil {
			return fmt.Errorf("creating form file %s: %w", field, err)
		}
		if _, err := part.Write(f.Content); err != nil {
			return fmt.Errorf("writing form file %s: %w", field, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(op, c.uploadClient, req, out)
}

// do executes the request and decodes the JSON response into out. Non-2xx
// responses are surfaced as *ServerError carrying the backend's message
// verbatim; transport failures become *NetworkError or *TimeoutError.
func (c *Client) do(op string, hc *http.Client, req *http.Request, out any) error {
	resp, err := hc.Do(req)
	if err != nil {
		return classify(op, err)
	}
	defer resp.Body.Close()
	return decodeJSON(resp, out)
}

// getRaw fetches a path and returns the raw body, for file downloads.
func (c *Client) getRaw(ctx context.Context, op, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, serverError(resp)
	}
	return io.ReadAll(resp.Body)
}

// decodeJSON decodes a response body, turning error statuses into
// *ServerError. out may be nil when the caller only cares about success.
func decodeJSON(resp *http.Response, out any) error {
	if resp.StatusCode >= 400 {
		return serverError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// serverError extracts the backend's error message. The backend reports
// errors as {"error": "..."}; when the body is not that shape the raw text
// is used so nothing the server said is lost.
func serverError(resp *http.Response) *ServerError {
	body, _ := io.ReadAll(resp.Body)
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			msg = payload.Error
		} else if payload.Message != "" {
			msg = payload.Message
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", resp.StatusCode)
	}
	return &ServerError{StatusCode: resp.StatusCode, Message: msg}
}
