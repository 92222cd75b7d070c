package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"leadhunt/internal/domain"
)

// Run is one line of the search history.
type Run struct {
	ID         string                `json:"id"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
	Criteria   domain.SearchCriteria `json:"criteria"`
	LeadCount  int                   `json:"lead_count"`
	Pages      int                   `json:"pages"`
	StopReason domain.StopReason     `json:"stop_reason"`
	Detail     string                `json:"detail,omitempty"`
	Files      []string              `json:"files"`
}

// AppendRun records a completed run. Runs are never updated.
func (d *DB) AppendRun(ctx context.Context, r Run) error {
	if r.Files == nil {
		r.Files = []string{}
	}
	filesJSON, _ := json.Marshal(r.Files)

	_, err := d.Pool.ExecContext(ctx, `
INSERT INTO runs (id, started_at, finished_at, job_title, area, email_domain, target_count, lead_count, pages, stop_reason, detail, files)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		r.ID,
		r.StartedAt.UTC().Format(time.RFC3339),
		r.FinishedAt.UTC().Format(time.RFC3339),
		r.Criteria.JobTitle,
		r.Criteria.Area,
		r.Criteria.EmailDomain,
		r.Criteria.TargetCount,
		r.LeadCount,
		r.Pages,
		string(r.StopReason),
		r.Detail,
		string(filesJSON),
	)
	if err != nil {
		return eris.Wrapf(err, "append run %s", r.ID)
	}
	return nil
}

// ListRuns returns the most recent runs first.
func (d *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}

	rows, err := d.Pool.QueryContext(ctx, `
SELECT id, started_at, finished_at, job_title, area, email_domain, target_count, lead_count, pages, stop_reason, detail, files
FROM runs
ORDER BY finished_at DESC, rowid DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "list runs")
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r                 Run
			started, finished string
			stop, filesJSON   string
		)
		if err := rows.Scan(
			&r.ID,
			&started,
			&finished,
			&r.Criteria.JobTitle,
			&r.Criteria.Area,
			&r.Criteria.EmailDomain,
			&r.Criteria.TargetCount,
			&r.LeadCount,
			&r.Pages,
			&stop,
			&r.Detail,
			&filesJSON,
		); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		r.StopReason = domain.StopReason(stop)
		_ = json.Unmarshal([]byte(filesJSON), &r.Files)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
