package extract

import (
	"net/url"
	"strings"
)

func trimURLPunct(s string) string {
	return strings.TrimRight(s, ".,;:!?)]}'\"…")
}

// IsProfileURL reports whether s points at a public LinkedIn profile.
func IsProfileURL(s string) bool {
	l := strings.ToLower(s)
	if !strings.Contains(l, "linkedin.com/") {
		return false
	}
	for _, p := range []string{"linkedin.com/in/", "linkedin.com/pub/"} {
		if i := strings.Index(l, p); i >= 0 && len(strings.Trim(l[i+len(p):], "/")) > 0 {
			return true
		}
	}
	return false
}

// CanonicalProfileURL returns an https URL without query, fragment or trailing
// slash. Google redirect wrappers (/url?q=...) are unwrapped. Returns "" for
// non-profile input.
func CanonicalProfileURL(raw string) string {
	raw = trimURLPunct(strings.TrimSpace(raw))
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	if strings.Contains(strings.ToLower(u.Host), "google.") && strings.HasPrefix(u.Path, "/url") {
		if q := u.Query().Get("q"); q != "" {
			return CanonicalProfileURL(q)
		}
	}

	u.Scheme = "https"
	u.Host = strings.ToLower(u.Host)
	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""

	out := u.String()
	if !IsProfileURL(out) {
		return ""
	}
	return out
}

// ProfileKey is the dedup form of a profile URL: host collapsed to
// linkedin.com (www., uk., ... dropped), lowercased path.
func ProfileKey(raw string) string {
	c := CanonicalProfileURL(raw)
	if c == "" {
		return ""
	}
	l := strings.ToLower(c)
	i := strings.Index(l, "linkedin.com/")
	return l[i:]
}
