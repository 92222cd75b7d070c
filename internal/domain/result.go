package domain

type StopReason string

const (
	TargetReached    StopReason = "target_reached"
	ResultsExhausted StopReason = "results_exhausted"
	QuotaExceeded    StopReason = "quota_exceeded"
	Error            StopReason = "error"
	Cancelled        StopReason = "cancelled"
)

// Hint is the operator-facing advice for a stop reason.
func (r StopReason) Hint() string {
	switch r {
	case TargetReached:
		return "target reached"
	case ResultsExhausted:
		return "no more search results; try a broader title or area"
	case QuotaExceeded:
		return "search API quota reached; retry later or use a different key"
	case Error:
		return "search failed; check credentials and configuration"
	case Cancelled:
		return "stopped by operator"
	default:
		return string(r)
	}
}

// CollectionResult is the outcome of one collection run. Leads are in discovery order.
type CollectionResult struct {
	Leads      []Lead
	StopReason StopReason
	Err        error // set for Error stops
	Pages      int   // pages successfully fetched
}
