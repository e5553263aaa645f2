package main

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/nravi/leadgrid/internal/api"
)

func TestColorize(t *testing.T) {
	saved := noColor
	t.Cleanup(func() { noColor = saved })

	noColor = false
	got := colorize(styleSuccess, "done")
	if !strings.HasPrefix(got, string(styleSuccess)) || !strings.HasSuffix(got, styleReset) {
		t.Errorf("colorize with color on = %q", got)
	}
	if got := colorize(styleNone, "done"); got != "done" {
		t.Errorf("colorize with no style = %q, want plain text", got)
	}

	noColor = true
	if got := colorize(styleSuccess, "done"); got != "done" {
		t.Errorf("colorize with --no-color = %q, want plain text", got)
	}
}

func TestPrintHelpersWriteToMessageStream(t *testing.T) {
	savedColor, savedOut := noColor, msgOut
	t.Cleanup(func() { noColor, msgOut = savedColor, savedOut })
	noColor = true

	var buf bytes.Buffer
	msgOut = &buf

	printStep("uploading %s", "leads.csv")
	printSuccess("done")
	printWarning("slow backend")
	printError("rejected")
	printStatus("Total", "%d", 42)

	want := "→ uploading leads.csv\n✓ done\n⚠ slow backend\n✗ rejected\n  Total: 42\n"
	if got := buf.String(); got != want {
		t.Errorf("message stream =\n%q\nwant\n%q", got, want)
	}
}

func TestParseAccounts(t *testing.T) {
	tests := []struct {
		name    string
		specs   []string
		want    []api.SenderAccount
		wantErr bool
	}{
		{
			name:  "email and password",
			specs: []string{"ops@acme.com:hunter2"},
			want:  []api.SenderAccount{{Email: "ops@acme.com", Password: "hunter2"}},
		},
		{
			name:  "with display name",
			specs: []string{"ops@acme.com:hunter2:Acme Ops"},
			want:  []api.SenderAccount{{Email: "ops@acme.com", Password: "hunter2", Name: "Acme Ops"}},
		},
		{
			name:  "third colon-separated field is the name",
			specs: []string{"ops@acme.com:pa:ss"},
			want:  []api.SenderAccount{{Email: "ops@acme.com", Password: "pa", Name: "ss"}},
		},
		{
			name:  "multiple accounts",
			specs: []string{"a@x.com:one", "b@x.com:two:B"},
			want: []api.SenderAccount{
				{Email: "a@x.com", Password: "one"},
				{Email: "b@x.com", Password: "two", Name: "B"},
			},
		},
		{name: "missing password", specs: []string{"a@x.com"}, wantErr: true},
		{name: "empty email", specs: []string{":secret"}, wantErr: true},
		{name: "empty password", specs: []string{"a@x.com:"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAccounts(tt.specs)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseAccounts(%v) accepted a bad spec", tt.specs)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseAccounts(%v): %v", tt.specs, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseAccounts(%v) = %+v, want %+v", tt.specs, got, tt.want)
			}
		})
	}
}

func TestColumnsFor(t *testing.T) {
	cols := columnsFor([]string{"Email", "Position"})
	if len(cols) != 2 {
		t.Fatalf("got %d columns", len(cols))
	}
	if cols[0].Header != "Email" || cols[0].Field != "Email" || cols[0].Sub != "" {
		t.Errorf("cols[0] = %+v", cols[0])
	}
	if cols[1].Header != "Position" || cols[1].Field != "Position" {
		t.Errorf("cols[1] = %+v", cols[1])
	}
}

func TestFlagName(t *testing.T) {
	if got := flagName("job_title"); got != "title" {
		t.Errorf("flagName(job_title) = %q", got)
	}
	if got := flagName("location"); got != "location" {
		t.Errorf("flagName(location) = %q", got)
	}
}

func TestCommandTreeRegistered(t *testing.T) {
	want := []string{
		"login", "register", "logout", "whoami",
		"forgot-password", "reset-password",
		"leads", "validate", "email", "zoho", "dashboard", "config",
	}
	have := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("command %q not registered on root", name)
		}
	}
}
