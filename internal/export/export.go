// Package export writes leads to spreadsheet and CSV files with identical columns.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"leadhunt/internal/domain"
)

// Header is shared by every format; Row must stay in the same order.
var Header = []string{"Name", "Email", "Phone", "LinkedIn", "Snippet"}

func Row(l domain.Lead) []string {
	return []string{l.Name, l.Email, l.Phone, l.ProfileURL, l.SourceSnippet}
}

// Writer persists one format.
type Writer interface {
	Ext() string
	Write(path string, leads []domain.Lead) error
}

type Exporter struct {
	Dir     string
	Writers []Writer
	log     *zap.Logger
}

const lockName = ".leadhunt.lock"

// New returns an exporter writing xlsx and csv into dir.
func New(dir string, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{
		Dir:     dir,
		Writers: []Writer{XLSX{}, CSV{}},
		log:     log,
	}
}

var reUnsafe = regexp.MustCompile(`[^A-Za-z0-9._\-]+`)

// BaseName builds "<title>_<area>_<YYYYMMDD_HHMM>" with filesystem-unsafe
// characters removed.
func BaseName(c domain.SearchCriteria, t time.Time) string {
	var parts []string
	for _, p := range []string{c.JobTitle, c.Area} {
		p = strings.Join(strings.Fields(p), "_")
		p = strings.Trim(reUnsafe.ReplaceAllString(p, ""), "._-")
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "leads")
	}
	parts = append(parts, t.Format("20060102_1504"))
	return strings.Join(parts, "_")
}

// Export writes leads with every writer in parallel and returns the file paths
// in writer order. The output dir is locked for the duration so concurrent runs
// cannot pick the same file name. If any writer fails, no file of the set is
// left behind.
func (e *Exporter) Export(ctx context.Context, base string, leads []domain.Lead) ([]string, error) {
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "create output dir %s", e.Dir)
	}

	fl := flock.New(filepath.Join(e.Dir, lockName))
	ok, err := fl.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return nil, eris.Wrap(err, "lock output dir")
	}
	if !ok {
		return nil, eris.New("output dir is locked")
	}
	defer func() { _ = fl.Unlock() }()

	base = e.freeBase(base)
	paths := make([]string, len(e.Writers))
	for i, w := range e.Writers {
		paths[i] = filepath.Join(e.Dir, base+w.Ext())
	}

	g, _ := errgroup.WithContext(ctx)
	for i, w := range e.Writers {
		i, w := i, w
		g.Go(func() error {
			if err := w.Write(paths[i], leads); err != nil {
				return eris.Wrapf(err, "write %s", paths[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// freeBase picked names no file had, so everything here is ours
		for _, p := range paths {
			if rmErr := os.Remove(p); rmErr != nil && !os.IsNotExist(rmErr) {
				e.log.Warn("[export] remove partial file", zap.String("path", p), zap.Error(rmErr))
			}
		}
		return nil, err
	}

	e.log.Info("[export] wrote files", zap.Strings("paths", paths), zap.Int("leads", len(leads)))
	return paths, nil
}

// freeBase appends _2, _3, ... until no writer's file exists yet.
func (e *Exporter) freeBase(base string) string {
	cand := base
	for n := 2; ; n++ {
		taken := false
		for _, w := range e.Writers {
			if _, err := os.Stat(filepath.Join(e.Dir, cand+w.Ext())); err == nil {
				taken = true
				break
			}
		}
		if !taken {
			return cand
		}
		cand = fmt.Sprintf("%s_%d", base, n)
	}
}
