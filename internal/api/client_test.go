package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestServerErrorMessageVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "Invalid username or password"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Login(context.Background(), "jane", "wrong")

	var serr *ServerError
	if !errors.As(err, &serr) {
		t.Fatalf("expected ServerError, got %T: %v", err, err)
	}
	if serr.Message != "Invalid username or password" {
		t.Errorf("Message = %q, want backend text verbatim", serr.Message)
	}
	if serr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", serr.StatusCode)
	}
}

func TestServerErrorNonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, _, err := c.CheckAuth(context.Background())

	var serr *ServerError
	if !errors.As(err, &serr) {
		t.Fatalf("expected ServerError, got %v", err)
	}
	if serr.Message != "upstream exploded" {
		t.Errorf("Message = %q", serr.Message)
	}
}

func TestNetworkErrorClassification(t *testing.T) {
	// A closed server produces a connection error, not a ServerError.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL)
	_, _, err := c.CheckAuth(context.Background())

	var nerr *NetworkError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected NetworkError, got %T: %v", err, err)
	}
	var serr *ServerError
	if errors.As(err, &serr) {
		t.Error("connection failure classified as ServerError")
	}
}

func TestTimeoutClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetTimeouts(20*time.Millisecond, 20*time.Millisecond)

	_, err := c.ValidateFile(context.Background(), FileUpload{Name: "a.csv", Content: []byte("x")})

	var terr *TimeoutError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TimeoutError, got %T: %v", err, err)
	}
	var nerr *NetworkError
	if errors.As(err, &nerr) {
		t.Error("timeout also matched NetworkError; the types must stay distinct")
	}
}

func TestValidationErrorsAreLocal(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	checks := []error{
		func() error { _, err := c.Login(ctx, "", "pw"); return err }(),
		func() error { _, err := c.GenerateLeads(ctx, LeadsRequest{}); return err }(),
		func() error { _, err := c.ValidateFile(ctx, FileUpload{}); return err }(),
		func() error {
			_, err := c.ValidateFile(ctx, FileUpload{Name: "a.pdf", Content: []byte("x")})
			return err
		}(),
		c.StartBulkSend(ctx, BulkSendRequest{}),
		c.SaveZohoCredentials(ctx, "", ZohoCredentials{}),
		func() error { _, _, err := c.CheckReplies(ctx, "me@acme.com", ""); return err }(),
		c.SendReply(ctx, SendReplyRequest{SenderEmail: "me@acme.com"}),
		func() error {
			_, err := c.SendAllReplies(ctx, "me@acme.com", "", nil, nil)
			return err
		}(),
	}
	for i, err := range checks {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("check %d: expected ValidationError, got %v", i, err)
		}
	}
	if calls != 0 {
		t.Errorf("validation failures hit the network %d times", calls)
	}
}

func TestSessionCookieRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			http.SetCookie(w, &http.Cookie{Name: "session_token", Value: "tok-123", Path: "/"})
			w.Write([]byte(`{"message":"Login successful","user":{"id":1,"username":"jane","email":"j@x.com"}}`))
		case "/auth/check-auth":
			if ck, err := r.Cookie("session_token"); err == nil && ck.Value == "tok-123" {
				w.Write([]byte(`{"authenticated":true,"user":{"id":1,"username":"jane","email":"j@x.com"}}`))
				return
			}
			w.Write([]byte(`{"authenticated":false}`))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	user, err := c.Login(context.Background(), "jane", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Username != "jane" {
		t.Errorf("Username = %q", user.Username)
	}
	if got := c.SessionCookie(); got != "tok-123" {
		t.Fatalf("SessionCookie = %q, want tok-123", got)
	}

	// A fresh client seeded with the persisted value stays logged in.
	c2 := NewClient(srv.URL)
	c2.SetSessionCookie(c.SessionCookie())
	_, ok, err := c2.CheckAuth(context.Background())
	if err != nil || !ok {
		t.Errorf("CheckAuth with restored cookie = (%v, %v), want authenticated", ok, err)
	}

	c2.ClearSession()
	if got := c2.SessionCookie(); got != "" {
		t.Errorf("SessionCookie after ClearSession = %q, want empty", got)
	}
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name                          string
		title, location, industry     string
		want                          string
	}{
		{
			name:  "all parts",
			title: "Software Engineer", location: "Berlin", industry: "Fintech",
			want: `site:linkedin.com/in "Software Engineer" "Berlin" "Fintech" "@gmail.com"`,
		},
		{
			name:  "title only",
			title: "CTO",
			want:  `site:linkedin.com/in "CTO" "@gmail.com"`,
		},
		{
			name:  "whitespace parts skipped",
			title: "CTO", location: "   ",
			want: `site:linkedin.com/in "CTO" "@gmail.com"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildQuery(tt.title, tt.location, tt.industry); got != tt.want {
				t.Errorf("BuildQuery = %q, want %q", got, tt.want)
			}
		})
	}
}
