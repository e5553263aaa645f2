package main

import (
	"context"
	"fmt"

	"github.com/nravi/leadgrid/internal/api"
	"github.com/nravi/leadgrid/internal/config"
	"github.com/nravi/leadgrid/internal/session"
	"github.com/nravi/leadgrid/internal/store"
)

// appEnv bundles everything a command needs: the backend client with the
// persisted session restored, the local store and the session gate.
type appEnv struct {
	cfg    config.Config
	client *api.Client
	store  *store.Store
	gate   *session.Gate
}

// newAppEnv is a var so command tests can substitute a backend.
var newAppEnv = func() (*appEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	st, err := store.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}

	client := api.NewClient(cfg.API.BaseURL)
	client.SetTimeouts(cfg.RequestTimeout(), cfg.UploadTimeout())

	if cookie, err := st.Get(store.KeySessionCookie); err == nil {
		client.SetSessionCookie(cookie)
	}

	return &appEnv{
		cfg:    cfg,
		client: client,
		store:  st,
		gate:   session.New(client, st, nil),
	}, nil
}

func (e *appEnv) Close() {
	e.store.Close()
}

// persistSession saves the current session cookie so the next invocation
// stays logged in.
func (e *appEnv) persistSession() {
	cookie := e.client.SessionCookie()
	if cookie == "" {
		e.store.Delete(store.KeySessionCookie)
		return
	}
	e.store.Put(store.KeySessionCookie, cookie)
}

// requireAuth settles the gate and fails fast when there is no session.
func (e *appEnv) requireAuth(ctx context.Context) error {
	if e.gate.Check(ctx) != session.StateAuthenticated {
		return fmt.Errorf("not logged in, run: leadgrid login")
	}
	return nil
}
