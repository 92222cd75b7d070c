package query

import (
	"strings"

	"leadhunt/internal/domain"
)

const (
	SiteToken = "site:linkedin.com/in"

	// Custom Search JSON API: start + num must stay <= 100.
	DefaultPerPage  = 10
	DefaultMaxStart = 91
)

type Paging struct {
	PerPage  int // 1..10
	MaxStart int // last allowed 1-based start offset
}

type Page struct {
	Query string
	Start int // 1-based offset of the first result
	Num   int
}

// String renders the search query for criteria, e.g.
// site:linkedin.com/in "realtor" "Phoenix" "@gmail.com"
func String(c domain.SearchCriteria) string {
	c = c.Normalize()
	parts := []string{SiteToken}
	for _, term := range []string{c.JobTitle, c.Area} {
		if t := quote(term); t != "" {
			parts = append(parts, t)
		}
	}
	if c.EmailDomain != "" {
		parts = append(parts, quote("@"+c.EmailDomain))
	}
	return strings.Join(parts, " ")
}

// Build returns one Page per request in order, stopping at the API's offset cap
// regardless of the target count.
func Build(c domain.SearchCriteria, p Paging) []Page {
	p = p.withDefaults()
	q := String(c)

	var pages []Page
	for start := 1; start <= p.MaxStart; start += p.PerPage {
		pages = append(pages, Page{Query: q, Start: start, Num: p.PerPage})
	}
	return pages
}

func (p Paging) withDefaults() Paging {
	if p.PerPage <= 0 || p.PerPage > DefaultPerPage {
		p.PerPage = DefaultPerPage
	}
	if p.MaxStart <= 0 || p.MaxStart > DefaultMaxStart {
		p.MaxStart = DefaultMaxStart
	}
	return p
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	return `"` + s + `"`
}
