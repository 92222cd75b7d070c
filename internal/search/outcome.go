package search

import (
	"errors"
	"fmt"

	"leadhunt/internal/domain"
)

type Kind int

const (
	KindItems Kind = iota
	KindQuotaExceeded
	KindTransient
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindItems:
		return "items"
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindTransient:
		return "transient"
	case KindFatal:
		return "fatal"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the result of fetching one page. Items is only meaningful for
// KindItems, where an empty slice means there are no more results.
type Outcome struct {
	Kind  Kind
	Items []domain.RawResultItem
	Err   error // *Error unless Kind == KindItems
}

// Error describes a failed page request.
type Error struct {
	Kind    Kind
	Status  int    // HTTP status, 0 for network failures
	Reason  string // API error reason, e.g. dailyLimitExceeded
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("search %s: status %d: %s", e.Kind, e.Status, msg)
	}
	return fmt.Sprintf("search %s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

func items(list []domain.RawResultItem) Outcome {
	if list == nil {
		list = []domain.RawResultItem{}
	}
	return Outcome{Kind: KindItems, Items: list}
}

func failed(e *Error) Outcome {
	return Outcome{Kind: e.Kind, Err: e}
}

// KindOf returns the Kind carried by err, or false when err is not a search error.
func KindOf(err error) (Kind, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}

func IsFatal(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindFatal
}
