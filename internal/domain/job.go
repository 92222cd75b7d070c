package domain

import (
	"errors"
	"strings"
)

// SearchCriteria is what the operator asked for. It is not modified once a run starts.
type SearchCriteria struct {
	JobTitle    string `json:"job_title"`
	Area        string `json:"area"`
	EmailDomain string `json:"email_domain"` // optional, e.g. gmail.com
	TargetCount int    `json:"target_count"`
}

// Normalize trims input and canonicalizes the email domain ("@Gmail.com" -> "gmail.com").
func (c SearchCriteria) Normalize() SearchCriteria {
	c.JobTitle = strings.Join(strings.Fields(c.JobTitle), " ")
	c.Area = strings.Join(strings.Fields(c.Area), " ")
	d := strings.ToLower(strings.TrimSpace(c.EmailDomain))
	c.EmailDomain = strings.TrimPrefix(d, "@")
	return c
}

func (c SearchCriteria) Validate() error {
	if c.TargetCount <= 0 {
		return errors.New("target count must be > 0")
	}
	if strings.TrimSpace(c.JobTitle) == "" && strings.TrimSpace(c.Area) == "" {
		return errors.New("job title or area is required")
	}
	if strings.ContainsAny(c.EmailDomain, " @/") {
		return errors.New("email domain must look like example.com")
	}
	return nil
}

// RawResultItem is one search hit as returned by the API.
type RawResultItem struct {
	Title   string
	Snippet string
	Link    string
}

type Lead struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	ProfileURL    string `json:"profile_url"`
	SourceSnippet string `json:"source_snippet"`
}

// Usable reports whether the lead carries at least one contact artifact.
func (l Lead) Usable() bool {
	return l.Email != "" || l.Phone != "" || l.ProfileURL != ""
}
