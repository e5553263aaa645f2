package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestSaveZohoCredentialsHeader(t *testing.T) {
	var gotUserID string
	var gotCreds ZohoCredentials
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = r.Header.Get("X-User-ID")
		decodeBody(r, &gotCreds)
		w.Write([]byte(`{"message": "saved"}`))
	}))
	defer srv.Close()

	creds := ZohoCredentials{ClientID: "id", ClientSecret: "secret", RedirectURI: "https://x/zoho-callback"}
	if err := NewClient(srv.URL).SaveZohoCredentials(context.Background(), "", creds); err != nil {
		t.Fatalf("SaveZohoCredentials: %v", err)
	}
	if gotUserID != "default_user" {
		t.Errorf("X-User-ID = %q, want default_user", gotUserID)
	}
	if gotCreds != creds {
		t.Errorf("credentials = %+v", gotCreds)
	}
}

func TestSendAllRepliesPartialFailure(t *testing.T) {
	var mu sync.Mutex
	sent := make(map[string]bool)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req SendReplyRequest
		decodeBody(r, &req)
		if req.RecipientEmail == "bad@x.com" {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{"error": "mailbox rejected the message"}`))
			return
		}
		mu.Lock()
		sent[req.RecipientEmail] = true
		mu.Unlock()
		w.Write([]byte(`{"message": "sent"}`))
	}))
	defer srv.Close()

	replies := []Reply{
		{ID: "1", From: "good1@x.com", Subject: "Re: hello", Body: "interested"},
		{ID: "2", From: "bad@x.com", Subject: "Re: hello", Body: "tell me more"},
		{ID: "3", From: "good2@x.com", Subject: "Re: hello", Body: "pricing?"},
		{ID: "4", From: "skipped@x.com", Subject: "Re: hello", Body: "no draft"},
	}
	drafts := map[string]string{
		"1": "Thanks for your interest",
		"2": "Here is more detail",
		"3": "Pricing attached",
		"4": "   ",
	}

	result, err := NewClient(srv.URL).SendAllReplies(context.Background(), "me@acme.com", "pw", replies, drafts)
	if err != nil {
		t.Fatalf("SendAllReplies: %v", err)
	}

	if result.Sent != 2 || result.Failed != 1 {
		t.Errorf("result = sent %d / failed %d, want 2/1", result.Sent, result.Failed)
	}
	if len(result.Items) != 3 {
		t.Fatalf("items = %d, want 3 (blank draft skipped)", len(result.Items))
	}
	for _, item := range result.Items {
		if item.Email == "bad@x.com" {
			if item.Sent {
				t.Error("failed recipient marked sent")
			}
			if item.Message == "" {
				t.Error("failed item carries no message")
			}
		}
	}
	if !sent["good1@x.com"] || !sent["good2@x.com"] {
		t.Errorf("successful sends = %v", sent)
	}
}

func TestCheckRepliesAndGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/zoho-check-replies":
			w.Write([]byte(`{"message": "Found 1 reply", "replies": [{"id": "7", "from": "a@x.com", "subject": "Re: offer", "body": "sounds good", "date": "2026-08-30"}]}`))
		case "/zoho-generate-professional-reply":
			w.Write([]byte(`{"reply": "Dear prospect, thank you."}`))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	replies, msg, err := c.CheckReplies(context.Background(), "me@acme.com", "pw")
	if err != nil {
		t.Fatalf("CheckReplies: %v", err)
	}
	if msg != "Found 1 reply" || len(replies) != 1 || replies[0].From != "a@x.com" {
		t.Errorf("replies = %v, msg = %q", replies, msg)
	}

	draft, err := c.GenerateReply(context.Background(), replies[0].Body)
	if err != nil {
		t.Fatalf("GenerateReply: %v", err)
	}
	if draft != "Dear prospect, thank you." {
		t.Errorf("draft = %q", draft)
	}
}

func TestWaitForZohoCallback(t *testing.T) {
	addr := "127.0.0.1:18931"

	type result struct {
		code string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		code, err := WaitForZohoCallback(context.Background(), addr)
		done <- result{code, err}
	}()

	// Wait for the listener to come up.
	var resp *http.Response
	var err error
	for range 50 {
		resp, err = http.Get(fmt.Sprintf("http://%s/zoho-callback?code=auth-code-42", addr))
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("reaching callback server: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("callback status = %d", resp.StatusCode)
	}

	select {
	case res := <-done:
		if res.err != nil {
			t.Fatalf("WaitForZohoCallback: %v", res.err)
		}
		if res.code != "auth-code-42" {
			t.Errorf("code = %q, want auth-code-42", res.code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForZohoCallback did not return")
	}
}

func TestWaitForZohoCallbackDenied(t *testing.T) {
	addr := "127.0.0.1:18932"

	done := make(chan error, 1)
	go func() {
		_, err := WaitForZohoCallback(context.Background(), addr)
		done <- err
	}()

	var resp *http.Response
	var err error
	for range 50 {
		resp, err = http.Get(fmt.Sprintf("http://%s/zoho-callback?error=access_denied", addr))
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("reaching callback server: %v", err)
	}
	resp.Body.Close()

	select {
	case err := <-done:
		if err == nil {
			t.Error("denied authorization returned no error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForZohoCallback did not return")
	}
}

func TestWaitForZohoCallbackContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := WaitForZohoCallback(ctx, "127.0.0.1:18933")
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Error("cancelled wait returned no error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForZohoCallback did not return after cancel")
	}
}
