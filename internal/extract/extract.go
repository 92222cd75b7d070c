// Package extract pulls contact artifacts out of search result text.
//
// Everything here is pattern based and therefore best-effort: it can both miss
// real contacts and report things that only look like them.
package extract

import (
	"regexp"
	"strings"
)

type Result struct {
	Emails []string // lowercased
	Phones []string // as written; see PhoneDigits
	URLs   []string // public profile URLs
	Name   string
}

var (
	reEmail = regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@(?:[a-z0-9\-]+\.)+[a-z]{2,}`)

	reProfileURL = regexp.MustCompile(`(?i)(?:https?://)?(?:[a-z]{2,3}\.)?linkedin\.com/(?:in|pub)/[^\s"'<>|,;()\[\]{}]+`)
	reAnyURL     = regexp.MustCompile(`(?i)https?://[^\s<>"']+`)

	// grouped digits ("(602) 555-0134", "+44 20 7946 0958") or a bare run of 10-15 digits
	rePhone = regexp.MustCompile(
		`\+?(?:\d{1,3}[ .\-])?(?:\(\d{2,4}\)[ .\-]?|\d{2,4}[ .\-])(?:\d{2,4}[ .\-]){0,3}\d{2,4}` +
			`|\+?\d{10,15}`)

	// year ranges and dates that rePhone also accepts: 2015-2023, 12.05.2023, 2023-05-12
	reDateLike = regexp.MustCompile(
		`^(?:(?:19|20)\d{2}[.\-](?:19|20)\d{2}` +
			`|\d{1,2}[.\-]\d{1,2}[.\-](?:19|20)\d{2}` +
			`|(?:19|20)\d{2}[.\-]\d{1,2}[.\-]\d{1,2})$`)
)

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

// Extract scans text for emails, phone numbers, profile URLs and a display name.
// Output slices are de-duplicated and keep first-appearance order.
func Extract(text string) Result {
	text = CleanText(text)

	res := Result{
		Emails: findEmails(text),
		URLs:   findProfileURLs(text),
		Name:   Name(text),
	}

	// emails and links are full of digit runs; hide them from phone detection
	masked := maskAll(text, reEmail, reAnyURL, reProfileURL)
	res.Phones = findPhones(masked)
	return res
}

func findEmails(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range reEmail.FindAllString(text, -1) {
		m = strings.ToLower(strings.TrimLeft(m, ".-_%+"))
		if !strings.Contains(m, "@") || strings.HasPrefix(m, "@") {
			continue
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

func findProfileURLs(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range reProfileURL.FindAllString(text, -1) {
		m = trimURLPunct(m)
		if !IsProfileURL(m) {
			continue
		}
		k := strings.ToLower(m)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, m)
	}
	return out
}

func findPhones(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, loc := range rePhone.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		// reject pieces of longer digit/word runs (postal codes, ids)
		if start > 0 && isAlnum(text[start-1]) {
			continue
		}
		if end < len(text) && isAlnum(text[end]) {
			continue
		}
		m := strings.TrimSpace(text[start:end])
		if reDateLike.MatchString(m) {
			continue
		}
		d := PhoneDigits(m)
		if len(d) < minPhoneDigits || len(d) > maxPhoneDigits {
			continue
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, m)
	}
	return out
}

// PhoneDigits strips everything but digits.
func PhoneDigits(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// EmailInDomain reports whether email belongs to domain. An empty domain matches everything.
func EmailInDomain(email, domain string) bool {
	domain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "@")
	if domain == "" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(email), "@"+domain)
}

func maskAll(text string, res ...*regexp.Regexp) string {
	b := []byte(text)
	for _, re := range res {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			for i := loc[0]; i < loc[1]; i++ {
				b[i] = ' '
			}
		}
	}
	return string(b)
}

func isAlnum(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
