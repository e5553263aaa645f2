package job

import "testing"

func TestParseState(t *testing.T) {
	tests := []struct {
		raw        string
		wantState  State
		wantDetail string
	}{
		{"idle", StateIdle, ""},
		{"running", StateRunning, ""},
		{"completed", StateCompleted, ""},
		{"error", StateError, ""},
		{"error: smtp auth failed", StateError, "smtp auth failed"},
		{"error - connection reset", StateError, "connection reset"},
		{"something-new", StateRunning, ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			state, detail := ParseState(tt.raw)
			if state != tt.wantState || detail != tt.wantDetail {
				t.Errorf("ParseState(%q) = (%v, %q), want (%v, %q)",
					tt.raw, state, detail, tt.wantState, tt.wantDetail)
			}
		})
	}
}

func TestTerminal(t *testing.T) {
	tests := []struct {
		state State
		want  bool
	}{
		{StateIdle, false},
		{StateRunning, false},
		{StateCompleted, true},
		{StateError, true},
	}
	for _, tt := range tests {
		st := Status{State: tt.state}
		if st.Terminal() != tt.want {
			t.Errorf("Terminal(%v) = %v, want %v", tt.state, st.Terminal(), tt.want)
		}
	}
}

func TestFraction(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		total     int
		want      float64
	}{
		{"zero total", 5, 0, 0},
		{"negative total", 5, -3, 0},
		{"halfway", 5, 10, 0.5},
		{"complete", 10, 10, 1},
		{"overshoot clamps", 15, 10, 1},
		{"negative completed clamps", -1, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Status{Completed: tt.completed, Total: tt.total}
			if got := st.Fraction(); got != tt.want {
				t.Errorf("Fraction() = %v, want %v", got, tt.want)
			}
		})
	}
}
