// Package search talks to the Google Custom Search JSON API.
package search

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	customsearch "google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"leadhunt/internal/domain"
	"leadhunt/internal/extract"
	"leadhunt/internal/query"
)

const (
	// DefaultEndpoint is the API base URL; the client appends customsearch/v1.
	DefaultEndpoint = "https://customsearch.googleapis.com/"
	DefaultTimeout  = 15 * time.Second
)

// Credentials is the static key/engine pair the API needs.
type Credentials struct {
	APIKey string `json:"api_key" yaml:"api_key"`
	CX     string `json:"cx" yaml:"cx"`
}

func (c Credentials) Complete() bool {
	return strings.TrimSpace(c.APIKey) != "" && strings.TrimSpace(c.CX) != ""
}

type Config struct {
	Endpoint  string
	Timeout   time.Duration // per request
	UserAgent string
}

// Client issues exactly one request per Fetch and keeps no state between calls.
type Client struct {
	creds   Credentials
	timeout time.Duration
	svc     *customsearch.Service
	initErr error
	log     *zap.Logger
}

func New(creds Credentials, cfg Config, log *zap.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if !strings.HasSuffix(cfg.Endpoint, "/") {
		cfg.Endpoint += "/"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "leadhunt/1.0 (+local)"
	}
	if log == nil {
		log = zap.NewNop()
	}

	// A caller-supplied http.Client bypasses the library's credential
	// transport, so the key is sent per call instead (see Fetch).
	svc, err := customsearch.NewService(context.Background(),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		option.WithEndpoint(cfg.Endpoint),
		option.WithUserAgent(cfg.UserAgent),
	)
	return &Client{
		creds:   creds,
		timeout: cfg.Timeout,
		svc:     svc,
		initErr: err,
		log:     log,
	}
}

var quotaReasons = map[string]bool{
	"ratelimitexceeded":     true,
	"userratelimitexceeded": true,
	"dailylimitexceeded":    true,
	"quotaexceeded":         true,
}

// Fetch requests one page of results.
func (c *Client) Fetch(ctx context.Context, p query.Page) Outcome {
	if !c.creds.Complete() {
		return failed(&Error{Kind: KindFatal, Message: "api key and cx are required"})
	}
	if c.initErr != nil {
		return failed(&Error{Kind: KindFatal, Message: "init client", Err: c.initErr})
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	call := c.svc.Cse.List().
		Cx(c.creds.CX).
		Q(p.Query).
		Start(int64(p.Start)).
		Context(ctx)
	if p.Num > 0 {
		call = call.Num(int64(p.Num))
	}

	started := time.Now()
	res, err := call.Do(googleapi.QueryParameter("key", c.creds.APIKey))
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			c.log.Debug("[search] api error",
				zap.Int("start", p.Start),
				zap.Int("status", gerr.Code),
				zap.Duration("dur", time.Since(started)),
			)
			return failed(classify(gerr))
		}
		msg := "request failed"
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			msg = "request timed out"
		}
		// transport errors and undecodable 200 bodies are both worth a retry
		return failed(&Error{Kind: KindTransient, Message: msg, Err: err})
	}

	c.log.Debug("[search] page",
		zap.Int("start", p.Start),
		zap.Int("items", len(res.Items)),
		zap.Duration("dur", time.Since(started)),
	)
	return items(toItems(res.Items))
}

func classify(gerr *googleapi.Error) *Error {
	e := &Error{Status: gerr.Code, Message: gerr.Message, Err: gerr}
	if len(gerr.Errors) > 0 {
		e.Reason = gerr.Errors[0].Reason
	}
	if e.Message == "" {
		e.Message = strings.TrimSpace(clip(gerr.Body, 256))
	}

	switch {
	case isQuota(gerr):
		e.Kind = KindQuotaExceeded
	case e.Status >= 500:
		e.Kind = KindTransient
	default:
		e.Kind = KindFatal
	}
	return e
}

func isQuota(gerr *googleapi.Error) bool {
	if gerr.Code == http.StatusTooManyRequests {
		return true
	}
	for _, d := range gerr.Errors {
		if quotaReasons[strings.ToLower(d.Reason)] {
			return true
		}
	}
	body := strings.ToLower(gerr.Message + " " + gerr.Body)
	return strings.Contains(body, "resource_exhausted") || strings.Contains(body, "quota")
}

func toItems(in []*customsearch.Result) []domain.RawResultItem {
	out := make([]domain.RawResultItem, 0, len(in))
	for _, it := range in {
		if it == nil {
			continue
		}
		title := extract.CleanText(it.Title)
		if title == "" && it.HtmlTitle != "" {
			title = htmlText(it.HtmlTitle)
		}
		snippet := extract.CleanText(it.Snippet)
		if snippet == "" && it.HtmlSnippet != "" {
			snippet = htmlText(it.HtmlSnippet)
		}
		out = append(out, domain.RawResultItem{
			Title:   title,
			Snippet: snippet,
			Link:    strings.TrimSpace(it.Link),
		})
	}
	return out
}

// htmlText flattens an html fragment (htmlSnippet uses <b> and entities) to text.
func htmlText(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return extract.CleanText(s)
	}
	return extract.CleanText(doc.Text())
}

func isTimeout(err error) bool {
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
