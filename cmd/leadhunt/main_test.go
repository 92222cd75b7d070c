package main

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"leadhunt/internal/domain"
	"leadhunt/internal/runner"
	"leadhunt/internal/search"
)

func TestRunRejectsUnknownCommand(t *testing.T) {
	if code := run(context.Background(), []string{"frobnicate"}); code != 2 {
		t.Fatalf("exit code = %d", code)
	}
	if code := run(context.Background(), []string{"help"}); code != 0 {
		t.Fatalf("help exit code = %d", code)
	}
}

func TestShutdownHandlerGuards(t *testing.T) {
	srv := &http.Server{}
	h := shutdownHandler("secret", srv)

	cases := []struct {
		name   string
		method string
		remote string
		token  string
		want   int
	}{
		{"wrong method", http.MethodGet, "127.0.0.1:5000", "secret", http.StatusMethodNotAllowed},
		{"remote caller", http.MethodPost, "192.0.2.1:5000", "secret", http.StatusForbidden},
		{"missing token", http.MethodPost, "127.0.0.1:5000", "", http.StatusUnauthorized},
		{"bad token", http.MethodPost, "[::1]:5000", "nope", http.StatusUnauthorized},
		{"ok", http.MethodPost, "127.0.0.1:5000", "secret", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/shutdown", nil)
			req.RemoteAddr = tc.remote
			if tc.token != "" {
				req.Header.Set("X-Shutdown-Token", tc.token)
			}
			rec := httptest.NewRecorder()
			h(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	log, err := newLogger("chatty")
	if err != nil {
		t.Fatal(err)
	}
	if log.Core().Enabled(-1) {
		t.Fatal("debug should be disabled at the fallback level")
	}
}

func TestRunCmdStopsWhenInputEnds(t *testing.T) {
	cases := []struct {
		name  string
		args  []string
		input string
	}{
		{"count prompt", []string{"-title", "realtor", "-area", "Phoenix"}, ""},
		{"bad count then end", []string{"-title", "realtor", "-area", "Phoenix"}, "lots\n"},
		{"criteria prompts", nil, "realtor\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := &app{in: bufio.NewReader(strings.NewReader(tc.input))}
			done := make(chan int, 1)
			go func() { done <- a.runCmd(context.Background(), tc.args) }()

			select {
			case code := <-done:
				if code != 2 {
					t.Fatalf("exit code = %d", code)
				}
			case <-time.After(5 * time.Second):
				t.Fatal("runCmd kept prompting after input ended")
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	transient := &search.Error{Kind: search.KindTransient, Status: 503}
	fatal := &search.Error{Kind: search.KindFatal, Status: 403}
	lead := []domain.Lead{{Name: "Pat Lee"}}

	cases := []struct {
		name string
		rep  runner.Report
		err  error
		want int
	}{
		{"target reached", runner.Report{StopReason: domain.TargetReached, Leads: lead}, nil, 0},
		{"quota", runner.Report{StopReason: domain.QuotaExceeded}, nil, 0},
		{"retries exhausted", runner.Report{StopReason: domain.Error, Err: transient}, nil, 0},
		{"fatal with leads", runner.Report{StopReason: domain.Error, Err: fatal, Leads: lead}, nil, 0},
		{"fatal", runner.Report{StopReason: domain.Error, Err: fatal}, nil, 1},
		{"export failed", runner.Report{StopReason: domain.TargetReached, Leads: lead}, errors.New("disk full"), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := exitCode(tc.rep, tc.err); got != tc.want {
				t.Fatalf("exitCode = %d, want %d", got, tc.want)
			}
		})
	}
}
