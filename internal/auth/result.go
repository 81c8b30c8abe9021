package auth

// Result is the outcome of a single verification mechanism.
type Result int

const (
	// ResultSkipped means the mechanism is not configured and does not apply.
	ResultSkipped Result = iota
	// ResultPassed means the presented credential was verified.
	ResultPassed
	// ResultFailed means the mechanism is configured but the request did not
	// satisfy it. A configured-but-failed mechanism is never treated as
	// skipped: a present-but-wrong credential always contributes a deny.
	ResultFailed
)

func (r Result) String() string {
	switch r {
	case ResultSkipped:
		return "skipped"
	case ResultPassed:
		return "passed"
	case ResultFailed:
		return "failed"
	default:
		return "unknown"
	}
}
