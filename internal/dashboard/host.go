// Package dashboard hosts the four tool tabs. Exactly one tab is active at
// a time; tabs mount lazily on first visit and, depending on configuration,
// either keep running or suspend their in-flight work when backgrounded.
package dashboard

import (
	"fmt"
	"log/slog"
	"sync"
)

// Tab names one of the fixed dashboard tabs.
type Tab string

const (
	TabLeads     Tab = "leads"
	TabValidator Tab = "validator"
	TabEmail     Tab = "email"
	TabZoho      Tab = "zoho"
)

// Tabs lists every tab in display order.
func Tabs() []Tab {
	return []Tab{TabLeads, TabValidator, TabEmail, TabZoho}
}

// Valid reports whether t names a known tab.
func (t Tab) Valid() bool {
	switch t {
	case TabLeads, TabValidator, TabEmail, TabZoho:
		return true
	}
	return false
}

// Controller is one tab's lifecycle. Suspend is called when the tab loses
// focus and background retention is off; Resume when it regains focus;
// Close when the host shuts down.
type Controller interface {
	Suspend()
	Resume()
	Close()
}

// Mount builds a tab's controller on first activation.
type Mount func(Tab) (Controller, error)

// Host owns tab activation. Controllers mount lazily and are reused across
// switches; a never-visited tab has no controller and costs nothing.
type Host struct {
	mount  Mount
	retain bool
	logger *slog.Logger

	mu      sync.Mutex
	active  Tab
	mounted map[Tab]Controller
	closed  bool
}

// NewHost creates a host with no active tab. When retain is false, switching
// away from a tab suspends it, stopping its in-flight work.
func NewHost(mount Mount, retain bool, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{
		mount:   mount,
		retain:  retain,
		logger:  logger,
		mounted: make(map[Tab]Controller),
	}
}

// Active returns the current tab, or "" before the first Switch.
func (h *Host) Active() Tab {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}

// Mounted reports whether a tab has been activated at least once.
func (h *Host) Mounted(t Tab) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.mounted[t]
	return ok
}

// Switch makes t the active tab, mounting it on first visit. Switching to
// the already-active tab is a no-op.
func (h *Host) Switch(t Tab) error {
	if !t.Valid() {
		return fmt.Errorf("unknown tab %q", t)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return fmt.Errorf("dashboard is closed")
	}
	if t == h.active {
		return nil
	}

	ctrl, ok := h.mounted[t]
	if !ok {
		var err error
		ctrl, err = h.mount(t)
		if err != nil {
			return fmt.Errorf("mounting tab %s: %w", t, err)
		}
		h.mounted[t] = ctrl
	}

	if prev, ok := h.mounted[h.active]; ok && !h.retain {
		h.logger.Debug("suspending background tab", "tab", h.active)
		prev.Suspend()
	}

	h.active = t
	ctrl.Resume()
	return nil
}

// Close tears down every mounted tab. The host refuses further switches.
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for t, ctrl := range h.mounted {
		h.logger.Debug("closing tab", "tab", t)
		ctrl.Close()
	}
	h.active = ""
}
