// Package runner ties one search run together: credentials, collection,
// export and the history log.
package runner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"leadhunt/internal/collect"
	"leadhunt/internal/config"
	"leadhunt/internal/domain"
	"leadhunt/internal/events"
	"leadhunt/internal/export"
	"leadhunt/internal/search"
	"leadhunt/internal/secrets"
	"leadhunt/internal/store"
)

// Report is what a finished run hands back to the CLI and the API.
type Report struct {
	RunID      string                `json:"run_id"`
	Criteria   domain.SearchCriteria `json:"criteria"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
	Leads      []domain.Lead         `json:"leads"`
	Pages      int                   `json:"pages"`
	StopReason domain.StopReason     `json:"stop_reason"`
	Hint       string                `json:"hint"`
	Error      string                `json:"error,omitempty"`
	Files      []string              `json:"files"`

	Err error `json:"-"`
}

// Failed reports whether a fatal search error, or a search client that could
// not be built, ended the run before any lead was found. A run that gave up
// on transient failures is not Failed.
func (r Report) Failed() bool {
	return r.StopReason == domain.Error && len(r.Leads) == 0 && search.IsFatal(r.Err)
}

type Deps struct {
	// Config returns the current config snapshot; the server swaps it on PUT /config.
	Config  func() config.Config
	DataDir string

	// NewSearcher builds the search client for one run.
	// Defaults to the Custom Search client with resolved credentials.
	NewSearcher func(cfg config.Config, log *zap.Logger) (collect.Searcher, error)

	History *store.DB // optional
	Hub     *events.Hub
	Log     *zap.Logger
	Now     func() time.Time
}

type Runner struct {
	d Deps
}

func New(d Deps) *Runner {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewSearcher == nil {
		d.NewSearcher = DefaultSearcher
	}
	return &Runner{d: d}
}

// DefaultSearcher resolves credentials and returns the Custom Search client.
func DefaultSearcher(cfg config.Config, log *zap.Logger) (collect.Searcher, error) {
	creds, err := secrets.Resolve(cfg)
	if err != nil {
		return nil, err
	}
	return search.New(creds, cfg.SearchConfig(), log), nil
}

// Run performs one collection under a fresh run id.
func (r *Runner) Run(ctx context.Context, criteria domain.SearchCriteria) (Report, error) {
	return r.RunWithID(ctx, uuid.NewString(), criteria)
}

// RunWithID performs one collection. Leads are exported only when at least
// one was found; every run, failed or not, is appended to the history.
// The returned error covers setup and export failures; collection stops
// (quota, cancel, search errors) are reported through Report.StopReason.
func (r *Runner) RunWithID(ctx context.Context, runID string, criteria domain.SearchCriteria) (Report, error) {
	cfg := r.d.Config()
	log := r.d.Log.With(zap.String("run_id", runID))

	rep := Report{
		RunID:     runID,
		Criteria:  criteria.Normalize(),
		StartedAt: r.d.Now(),
		Leads:     []domain.Lead{},
		Files:     []string{},
	}

	var runErr error
	client, err := r.d.NewSearcher(cfg, log)
	if err != nil {
		// no usable client means no credentials or config; nothing a retry fixes
		rep.Err = &search.Error{Kind: search.KindFatal, Err: err}
		rep.StopReason = domain.Error
		runErr = eris.Wrap(rep.Err, "search client")
		r.publish(runID, events.RunFinished, map[string]any{
			"stop":  rep.StopReason,
			"leads": 0,
			"pages": 0,
			"error": runErr.Error(),
		})
	} else {
		c := collect.New(client, collect.Options{
			Paging:       cfg.Paging(),
			MaxAttempts:  cfg.Search.MaxAttempts,
			Backoff:      cfg.Backoff(),
			PageInterval: cfg.PageInterval(),
			RunID:        runID,
			Log:          log,
			Events:       r.publisher(),
		})
		res := c.Collect(ctx, rep.Criteria)
		rep.Leads = res.Leads
		rep.Pages = res.Pages
		rep.StopReason = res.StopReason
		rep.Err = res.Err
	}

	if len(rep.Leads) > 0 {
		ex := export.New(config.Resolve(r.d.DataDir, cfg.Output.Dir), log)
		// leads already collected are written even after a cancel
		files, err := ex.Export(context.WithoutCancel(ctx), export.BaseName(rep.Criteria, rep.StartedAt), rep.Leads)
		if err != nil {
			log.Error("[runner] export failed", zap.Error(err))
			runErr = err
		}
		rep.Files = append(rep.Files, files...)
		r.publish(runID, events.RunSaved, map[string]any{"files": rep.Files})
	}

	rep.FinishedAt = r.d.Now()
	rep.Hint = rep.StopReason.Hint()
	if rep.Err != nil {
		rep.Error = rep.Err.Error()
	}

	r.record(ctx, log, rep)

	log.Info("[runner] run complete",
		zap.String("stop", string(rep.StopReason)),
		zap.Int("leads", len(rep.Leads)),
		zap.Strings("files", rep.Files),
	)
	return rep, runErr
}

func (r *Runner) record(ctx context.Context, log *zap.Logger, rep Report) {
	if r.d.History == nil {
		return
	}
	run := store.Run{
		ID:         rep.RunID,
		StartedAt:  rep.StartedAt,
		FinishedAt: rep.FinishedAt,
		Criteria:   rep.Criteria,
		LeadCount:  len(rep.Leads),
		Pages:      rep.Pages,
		StopReason: rep.StopReason,
		Detail:     rep.Error,
		Files:      rep.Files,
	}
	if err := r.d.History.AppendRun(context.WithoutCancel(ctx), run); err != nil {
		log.Warn("[runner] history append failed", zap.Error(err))
	}
}

func (r *Runner) publisher() collect.Publisher {
	if r.d.Hub == nil {
		return nil
	}
	return r.d.Hub
}

func (r *Runner) publish(runID, typ string, data any) {
	if r.d.Hub == nil {
		return
	}
	r.d.Hub.Publish(events.MakeEvent(runID, typ, 1, data))
}
