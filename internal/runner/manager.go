package runner

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"leadhunt/internal/domain"
)

var (
	ErrNotFound    = errors.New("run not found")
	ErrTooManyRuns = errors.New("too many runs in progress")
)

type Status string

const (
	StatusRunning  Status = "running"
	StatusFinished Status = "finished"
)

// Snapshot is the externally visible state of a managed run.
type Snapshot struct {
	ID        string                `json:"id"`
	Criteria  domain.SearchCriteria `json:"criteria"`
	StartedAt time.Time             `json:"started_at"`
	Status    Status                `json:"status"`
	Report    *Report               `json:"report,omitempty"`
}

type entry struct {
	snap   Snapshot
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager runs searches in the background for the HTTP API. Each run gets
// its own collector; a stop request cancels only that run.
type Manager struct {
	r         *Runner
	maxActive int
	keep      int

	mu   sync.Mutex
	runs map[string]*entry
	wg   sync.WaitGroup
}

// NewManager allows maxActive concurrent runs and remembers the last keep
// finished ones (older runs remain in the history log).
func NewManager(r *Runner, maxActive, keep int) *Manager {
	if maxActive <= 0 {
		maxActive = 2
	}
	if keep <= 0 {
		keep = 50
	}
	return &Manager{r: r, maxActive: maxActive, keep: keep, runs: map[string]*entry{}}
}

// Start validates criteria and launches a run. The run outlives the caller's
// request; use Cancel to stop it.
func (m *Manager) Start(criteria domain.SearchCriteria) (Snapshot, error) {
	criteria = criteria.Normalize()
	if err := criteria.Validate(); err != nil {
		return Snapshot{}, err
	}

	m.mu.Lock()
	if m.activeLocked() >= m.maxActive {
		m.mu.Unlock()
		return Snapshot{}, ErrTooManyRuns
	}
	ctx, cancel := context.WithCancel(context.Background())
	e := &entry{
		snap: Snapshot{
			ID:        uuid.NewString(),
			Criteria:  criteria,
			StartedAt: m.r.d.Now(),
			Status:    StatusRunning,
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}
	m.runs[e.snap.ID] = e
	m.pruneLocked()
	snap := e.snap
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer close(e.done)
		defer cancel()

		rep, err := m.r.RunWithID(ctx, snap.ID, criteria)
		if err != nil {
			m.r.d.Log.Warn("[runner] background run failed", zap.String("run_id", snap.ID), zap.Error(err))
			if rep.Error == "" {
				rep.Error = err.Error()
			}
		}

		m.mu.Lock()
		e.snap.Status = StatusFinished
		e.snap.Report = &rep
		m.mu.Unlock()
	}()

	return snap, nil
}

func (m *Manager) Get(id string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.runs[id]
	if !ok {
		return Snapshot{}, false
	}
	return e.snap, true
}

// List returns known runs, newest first.
func (m *Manager) List() []Snapshot {
	m.mu.Lock()
	out := make([]Snapshot, 0, len(m.runs))
	for _, e := range m.runs {
		out = append(out, e.snap)
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out
}

// Cancel signals a run to stop. Stopping a finished run is a no-op.
func (m *Manager) Cancel(id string) error {
	m.mu.Lock()
	e, ok := m.runs[id]
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	e.cancel()
	return nil
}

// Wait blocks until run id finishes or ctx is done.
func (m *Manager) Wait(ctx context.Context, id string) (Snapshot, error) {
	m.mu.Lock()
	e, ok := m.runs[id]
	m.mu.Unlock()
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	select {
	case <-e.done:
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	snap, _ := m.Get(id)
	return snap, nil
}

// Shutdown cancels every run and waits for them to finish writing.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	for _, e := range m.runs {
		e.cancel()
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) activeLocked() int {
	n := 0
	for _, e := range m.runs {
		if e.snap.Status == StatusRunning {
			n++
		}
	}
	return n
}

func (m *Manager) pruneLocked() {
	var finished []*entry
	for _, e := range m.runs {
		if e.snap.Status == StatusFinished {
			finished = append(finished, e)
		}
	}
	if len(finished) <= m.keep {
		return
	}
	sort.Slice(finished, func(i, j int) bool { return finished[i].snap.StartedAt.Before(finished[j].snap.StartedAt) })
	for _, e := range finished[:len(finished)-m.keep] {
		delete(m.runs, e.snap.ID)
	}
}
