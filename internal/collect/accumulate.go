package collect

import (
	"strings"

	"leadhunt/internal/domain"
	"leadhunt/internal/extract"
)

// accumulator keeps unique usable leads in discovery order for one run.
type accumulator struct {
	emailDomain string
	seen        map[string]struct{}
	leads       []domain.Lead
}

func newAccumulator(emailDomain string) *accumulator {
	return &accumulator{
		emailDomain: emailDomain,
		seen:        make(map[string]struct{}),
	}
}

// add turns a search hit into a lead and keeps it when it passes the domain
// filter and its dedup key is new. Filtered-out hits never reach the seen set.
func (a *accumulator) add(it domain.RawResultItem) (domain.Lead, bool) {
	lead, ok := buildLead(it, a.emailDomain)
	if !ok {
		return domain.Lead{}, false
	}
	key := DedupKey(lead)
	if key == "" {
		return domain.Lead{}, false
	}
	if _, dup := a.seen[key]; dup {
		return domain.Lead{}, false
	}
	a.seen[key] = struct{}{}
	a.leads = append(a.leads, lead)
	return lead, true
}

func (a *accumulator) len() int { return len(a.leads) }

func (a *accumulator) truncate(n int) {
	if len(a.leads) > n {
		a.leads = a.leads[:n]
	}
}

func buildLead(it domain.RawResultItem, emailDomain string) (domain.Lead, bool) {
	ex := extract.Extract(it.Title + " " + it.Snippet)

	var email string
	for _, e := range ex.Emails {
		if extract.EmailInDomain(e, emailDomain) {
			email = e
			break
		}
	}
	if emailDomain != "" && email == "" {
		return domain.Lead{}, false
	}

	var phone string
	if len(ex.Phones) > 0 {
		phone = ex.Phones[0]
	}

	profile := extract.CanonicalProfileURL(it.Link)
	if profile == "" {
		for _, u := range ex.URLs {
			if profile = extract.CanonicalProfileURL(u); profile != "" {
				break
			}
		}
	}

	lead := domain.Lead{
		Name:          extract.Name(it.Title),
		Email:         email,
		Phone:         phone,
		ProfileURL:    profile,
		SourceSnippet: extract.CleanText(it.Snippet),
	}
	return lead, lead.Usable()
}

// DedupKey is the lowercased email, else the normalized profile URL, else the
// phone digits. Empty when the lead has none of them.
func DedupKey(l domain.Lead) string {
	if l.Email != "" {
		return "email:" + strings.ToLower(l.Email)
	}
	if k := extract.ProfileKey(l.ProfileURL); k != "" {
		return "url:" + k
	}
	if d := extract.PhoneDigits(l.Phone); d != "" {
		return "phone:" + d
	}
	return ""
}
