// Package collect drives a search page by page and turns results into leads.
package collect

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"leadhunt/internal/domain"
	"leadhunt/internal/events"
	"leadhunt/internal/query"
	"leadhunt/internal/search"
)

const (
	DefaultMaxAttempts = 3
	DefaultBackoff     = 3 * time.Second
)

// Searcher fetches one page. *search.Client implements it.
type Searcher interface {
	Fetch(ctx context.Context, p query.Page) search.Outcome
}

type Publisher interface {
	Publish(evt string)
}

type Options struct {
	Paging       query.Paging
	MaxAttempts  int           // per page, including the first try
	Backoff      time.Duration // delay before the 2nd attempt; doubles after
	PageInterval time.Duration // minimum spacing between page requests, 0 = none

	RunID  string
	Log    *zap.Logger
	Events Publisher
}

// Collector runs one collection. State lives inside Collect, so a Collector
// may be reused, but concurrent runs should each get their own.
type Collector struct {
	client Searcher
	opts   Options
	log    *zap.Logger
}

func New(client Searcher, opts Options) *Collector {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Backoff < 0 {
		opts.Backoff = 0
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{
		client: client,
		opts:   opts,
		log:    log.With(zap.String("run_id", opts.RunID)),
	}
}

// Collect fetches pages until the target is met, results run out, the API
// refuses, or ctx is cancelled. Leads gathered so far are always returned.
// Cancellation is observed between requests; an in-flight request finishes
// (bounded by the client's timeout) before Collect returns.
func (c *Collector) Collect(ctx context.Context, criteria domain.SearchCriteria) domain.CollectionResult {
	criteria = criteria.Normalize()
	if err := criteria.Validate(); err != nil {
		return c.finish(domain.CollectionResult{StopReason: domain.Error, Err: eris.Wrap(err, "invalid criteria")})
	}

	pages := query.Build(criteria, c.opts.Paging)
	acc := newAccumulator(criteria.EmailDomain)
	pacer := newPacer(c.opts.PageInterval)

	c.log.Info("[collect] start",
		zap.String("query", query.String(criteria)),
		zap.Int("target", criteria.TargetCount),
		zap.Int("max_pages", len(pages)),
	)
	c.publish(events.RunStarted, map[string]any{
		"query":  query.String(criteria),
		"target": criteria.TargetCount,
	})

	res := domain.CollectionResult{}
	stop := func(reason domain.StopReason, err error) domain.CollectionResult {
		res.Leads = acc.leads
		res.StopReason = reason
		res.Err = err
		return c.finish(res)
	}

	for _, p := range pages {
		if ctx.Err() != nil {
			return stop(domain.Cancelled, nil)
		}
		if err := pacer.Wait(ctx); err != nil {
			return stop(domain.Cancelled, nil)
		}

		out, cancelled := c.fetchWithRetry(ctx, p)
		if cancelled {
			return stop(domain.Cancelled, nil)
		}

		switch out.Kind {
		case search.KindItems:
			res.Pages++
			if len(out.Items) == 0 {
				return stop(domain.ResultsExhausted, nil)
			}
			for _, it := range out.Items {
				if lead, ok := acc.add(it); ok {
					c.log.Debug("[collect] lead", zap.String("email", lead.Email), zap.String("profile", lead.ProfileURL))
					c.publish(events.LeadFound, lead)
				}
			}
			c.publish(events.PageFetched, map[string]any{
				"start":  p.Start,
				"items":  len(out.Items),
				"found":  acc.len(),
				"target": criteria.TargetCount,
			})
			if acc.len() >= criteria.TargetCount {
				acc.truncate(criteria.TargetCount)
				return stop(domain.TargetReached, nil)
			}

		case search.KindQuotaExceeded:
			return stop(domain.QuotaExceeded, out.Err)

		case search.KindFatal:
			return stop(domain.Error, out.Err)

		default:
			err := out.Err
			if err == nil {
				err = eris.New("transient search failure")
			}
			return stop(domain.Error, eris.Wrapf(err, "page start=%d failed after %d attempts", p.Start, c.opts.MaxAttempts))
		}
	}

	return stop(domain.ResultsExhausted, nil)
}

// fetchWithRetry retries transient failures of one page with exponential backoff.
// The request context is detached from ctx so a cancel never cuts a request
// short; the backoff wait does observe ctx.
func (c *Collector) fetchWithRetry(ctx context.Context, p query.Page) (out search.Outcome, cancelled bool) {
	reqCtx := context.WithoutCancel(ctx)
	delay := c.opts.Backoff

	for attempt := 1; ; attempt++ {
		out = c.client.Fetch(reqCtx, p)
		if out.Kind != search.KindTransient || attempt >= c.opts.MaxAttempts {
			return out, false
		}

		c.log.Warn("[collect] transient error, retrying",
			zap.Int("start", p.Start),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(out.Err),
		)
		c.publish(events.PageRetry, map[string]any{
			"start":   p.Start,
			"attempt": attempt,
			"error":   errString(out.Err),
		})

		if !sleep(ctx, delay) {
			return out, true
		}
		delay *= 2
	}
}

func (c *Collector) finish(res domain.CollectionResult) domain.CollectionResult {
	if res.Leads == nil {
		res.Leads = []domain.Lead{}
	}
	fields := []zap.Field{
		zap.String("stop", string(res.StopReason)),
		zap.Int("leads", len(res.Leads)),
		zap.Int("pages", res.Pages),
	}
	if res.Err != nil {
		c.log.Warn("[collect] done", append(fields, zap.Error(res.Err))...)
	} else {
		c.log.Info("[collect] done", fields...)
	}
	c.publish(events.RunFinished, map[string]any{
		"stop":  res.StopReason,
		"leads": len(res.Leads),
		"pages": res.Pages,
		"error": errString(res.Err),
	})
	return res
}

func (c *Collector) publish(typ string, data any) {
	if c.opts.Events == nil {
		return
	}
	c.opts.Events.Publish(events.MakeEvent(c.opts.RunID, typ, 1, data))
}

func newPacer(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
