package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"leadhunt/internal/collect"
	"leadhunt/internal/config"
	"leadhunt/internal/domain"
	"leadhunt/internal/events"
	"leadhunt/internal/query"
	"leadhunt/internal/search"
	"leadhunt/internal/store"
)

type stubSearcher struct {
	mu      sync.Mutex
	calls   int
	perPage int
	onFetch func(call int)
}

func (s *stubSearcher) Fetch(ctx context.Context, p query.Page) search.Outcome {
	s.mu.Lock()
	n := s.calls
	s.calls++
	s.mu.Unlock()

	if s.onFetch != nil {
		s.onFetch(n)
	}
	var items []domain.RawResultItem
	for i := 0; i < s.perPage; i++ {
		id := n*s.perPage + i
		items = append(items, domain.RawResultItem{
			Title:   fmt.Sprintf("Pat %c - Realtor", 'A'+rune(id%26)),
			Snippet: fmt.Sprintf("Email p%d@gmail.com", id),
			Link:    fmt.Sprintf("https://www.linkedin.com/in/p%d", id),
		})
	}
	return search.Outcome{Kind: search.KindItems, Items: items}
}

type fixture struct {
	dir     string
	history *store.DB
	hub     *events.Hub
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	db, err := store.Open(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return fixture{dir: dir, history: db, hub: events.NewHub()}
}

func (f fixture) runner(s collect.Searcher, newErr error) *Runner {
	cfg := config.Default()
	cfg.Search.PageDelayMS = 0
	cfg.Search.BackoffSeconds = 0
	return New(Deps{
		Config:  func() config.Config { return cfg },
		DataDir: f.dir,
		NewSearcher: func(config.Config, *zap.Logger) (collect.Searcher, error) {
			if newErr != nil {
				return nil, newErr
			}
			return s, nil
		},
		History: f.history,
		Hub:     f.hub,
		Now:     func() time.Time { return time.Date(2026, 10, 18, 9, 5, 0, 0, time.UTC) },
	})
}

var criteria = domain.SearchCriteria{JobTitle: "realtor", Area: "Phoenix", EmailDomain: "gmail.com", TargetCount: 15}

func TestRunExportsAndRecords(t *testing.T) {
	f := newFixture(t)
	r := f.runner(&stubSearcher{perPage: 10}, nil)

	rep, err := r.Run(context.Background(), criteria)
	if err != nil {
		t.Fatal(err)
	}
	if rep.StopReason != domain.TargetReached || len(rep.Leads) != 15 || rep.Pages != 2 {
		t.Fatalf("report: stop=%s leads=%d pages=%d", rep.StopReason, len(rep.Leads), rep.Pages)
	}
	if rep.RunID == "" || rep.Hint == "" {
		t.Fatalf("report missing id/hint: %+v", rep)
	}
	if len(rep.Files) != 2 {
		t.Fatalf("files: %v", rep.Files)
	}
	for _, p := range rep.Files {
		if filepath.Dir(p) != filepath.Join(f.dir, "extracted_leads") {
			t.Errorf("file outside output dir: %s", p)
		}
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing export: %v", err)
		}
	}

	runs, err := f.history.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != rep.RunID || runs[0].LeadCount != 15 || len(runs[0].Files) != 2 {
		t.Fatalf("history: %+v", runs)
	}
}

func TestRunWithoutLeadsWritesNoFiles(t *testing.T) {
	f := newFixture(t)
	r := f.runner(&stubSearcher{perPage: 0}, nil)

	rep, err := r.Run(context.Background(), criteria)
	if err != nil {
		t.Fatal(err)
	}
	if rep.StopReason != domain.ResultsExhausted || len(rep.Files) != 0 || rep.Leads == nil {
		t.Fatalf("report: %+v", rep)
	}
	if _, err := os.Stat(filepath.Join(f.dir, "extracted_leads")); !os.IsNotExist(err) {
		t.Fatalf("output dir should not be created: %v", err)
	}
}

func TestRunSearcherSetupFailure(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("no credentials")
	r := f.runner(nil, boom)

	ch := f.hub.SubscribeN(8)
	defer f.hub.Unsubscribe(ch)

	rep, err := r.Run(context.Background(), criteria)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if !rep.Failed() || rep.Error == "" {
		t.Fatalf("report: %+v", rep)
	}
	evt, _ := events.Parse(<-ch)
	if evt.Type != events.RunFinished || evt.RunID != rep.RunID {
		t.Fatalf("event: %+v", evt)
	}

	runs, _ := f.history.ListRuns(context.Background(), 10)
	if len(runs) != 1 || runs[0].StopReason != domain.Error || runs[0].Detail == "" {
		t.Fatalf("history: %+v", runs)
	}
}

type failingSearcher struct {
	kind search.Kind
}

func (s failingSearcher) Fetch(context.Context, query.Page) search.Outcome {
	return search.Outcome{Kind: s.kind, Err: &search.Error{Kind: s.kind, Status: 503, Message: "backend error"}}
}

func TestRunFailedOnlyOnFatalErrors(t *testing.T) {
	tests := []struct {
		kind   search.Kind
		failed bool
	}{
		{search.KindTransient, false},
		{search.KindFatal, true},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			f := newFixture(t)
			rep, err := f.runner(failingSearcher{kind: tt.kind}, nil).Run(context.Background(), criteria)
			if err != nil {
				t.Fatal(err)
			}
			if rep.StopReason != domain.Error || len(rep.Leads) != 0 {
				t.Fatalf("report: stop=%s leads=%d", rep.StopReason, len(rep.Leads))
			}
			if rep.Failed() != tt.failed {
				t.Fatalf("Failed() = %v, err = %v", rep.Failed(), rep.Err)
			}
		})
	}
}

func TestManagerCancelKeepsPartialLeads(t *testing.T) {
	f := newFixture(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	s := &stubSearcher{perPage: 2, onFetch: func(call int) {
		if call == 0 {
			close(entered)
			<-release
		}
	}}
	m := NewManager(f.runner(s, nil), 1, 10)

	c := criteria
	c.TargetCount = 100
	snap, err := m.Start(c)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Status != StatusRunning {
		t.Fatalf("status = %s", snap.Status)
	}

	<-entered
	if _, err := m.Start(c); !errors.Is(err, ErrTooManyRuns) {
		t.Fatalf("second start: %v", err)
	}
	if err := m.Cancel(snap.ID); err != nil {
		t.Fatal(err)
	}
	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done, err := m.Wait(ctx, snap.ID)
	if err != nil {
		t.Fatal(err)
	}
	if done.Status != StatusFinished || done.Report == nil {
		t.Fatalf("snapshot: %+v", done)
	}
	if done.Report.StopReason != domain.Cancelled || len(done.Report.Leads) != 2 || len(done.Report.Files) != 2 {
		t.Fatalf("report: stop=%s leads=%d files=%v", done.Report.StopReason, len(done.Report.Leads), done.Report.Files)
	}
	if len(m.List()) != 1 {
		t.Fatalf("list: %+v", m.List())
	}
}

func TestManagerRejectsInvalidCriteria(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.runner(&stubSearcher{}, nil), 1, 10)
	if _, err := m.Start(domain.SearchCriteria{JobTitle: "x"}); err == nil {
		t.Fatal("zero target must be rejected")
	}
	if err := m.Cancel("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cancel missing: %v", err)
	}
}
