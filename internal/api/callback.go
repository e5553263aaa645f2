package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const callbackPage = `<!DOCTYPE html>
<html><body>
<p>Authorization received. You can close this window and return to the terminal.</p>
</body></html>`

// WaitForZohoCallback runs a local HTTP server on addr and blocks until the
// OAuth redirect delivers an authorization code to /zoho-callback, the
// provider reports an error, or ctx is done. The server shuts down before
// returning.
func WaitForZohoCallback(ctx context.Context, addr string) (string, error) {
	type result struct {
		code string
		err  error
	}
	results := make(chan result, 1)

	r := chi.NewRouter()
	r.Get("/zoho-callback", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		if errMsg := q.Get("error"); errMsg != "" {
			http.Error(w, "authorization failed: "+errMsg, http.StatusBadRequest)
			select {
			case results <- result{err: fmt.Errorf("authorization denied: %s", errMsg)}:
			default:
			}
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "missing code parameter", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(callbackPage))
		select {
		case results <- result{code: code}:
		default:
		}
	})

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("starting callback listener: %w", err)
	}
	srv := &http.Server{Handler: r}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	var res result
	select {
	case res = <-results:
	case err := <-serveErr:
		return "", fmt.Errorf("callback server: %w", err)
	case <-ctx.Done():
		res = result{err: ctx.Err()}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)

	return res.code, res.err
}
