package main

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"leadhunt/internal/httpapi"
	"leadhunt/internal/runner"
)

func (a *app) serveCmd(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	port := fs.Int("port", 0, "listen port (default from config server.port)")
	maxRuns := fs.Int("max-runs", 2, "concurrent runs allowed")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *port == 0 {
		*port = a.cfg().Server.Port
	}

	runs := runner.NewManager(a.runner, *maxRuns, 50)

	handler := httpapi.Handler(httpapi.Deps{
		Hub:         a.hub,
		CfgVal:      &a.cfgVal,
		UserCfgPath: a.userCfgPath,
		LoadCfg:     a.loadCfg,
		Runs:        runs,
		History:     a.history,
		Log:         a.log,
	})

	// Bind to loopback only; the UI runs on the same machine.
	addr := fmt.Sprintf("127.0.0.1:%d", *port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		a.log.Error("[http] listen failed", zap.String("addr", addr), zap.Error(err))
		return 1
	}

	token, err := randomToken(16)
	if err != nil {
		a.log.Error("[http] token", zap.Error(err))
		return 1
	}
	tokenPath := filepath.Join(a.dataDir, ".shutdown-token")
	if err := os.WriteFile(tokenPath, []byte(token), 0o600); err != nil {
		a.log.Warn("[http] could not write shutdown token", zap.Error(err))
	}
	defer os.Remove(tokenPath)

	mux := http.NewServeMux()
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	mux.Handle("/", handler)
	mux.HandleFunc("/shutdown", shutdownHandler(token, srv))

	a.log.Info("[http] listening", zap.String("url", "http://"+addr), zap.String("data_dir", a.absPath(a.dataDir)))

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	err = srv.Serve(ln)

	// let in-flight runs stop and write what they have
	sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if serr := runs.Shutdown(sctx); serr != nil {
		a.log.Warn("[runner] shutdown timed out", zap.Error(serr))
	}

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.log.Error("[http] serve failed", zap.Error(err))
		return 1
	}
	a.log.Info("[http] stopped")
	return 0
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func shutdownHandler(token string, srv *http.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		// Local-only guard (covers typical desktop usage)
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			// RemoteAddr can sometimes be just a host; fall back safely
			host = r.RemoteAddr
		}
		if host != "127.0.0.1" && host != "::1" && host != "localhost" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		// Token guard
		got := r.Header.Get("X-Shutdown-Token")
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// Respond immediately, then shutdown asynchronously
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("shutting down\n"))

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}
}
