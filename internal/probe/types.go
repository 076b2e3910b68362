package probe

import (
	"context"
	"time"
)

// Outcome is the result of a single probe attempt.
//
// Reached is true whenever any HTTP response arrived, whatever its status
// code. Transport failures (DNS, refused connection, timeout) leave
// StatusCode at 0 and put the error text in Err.
type Outcome struct {
	Reached    bool
	StatusCode int
	Latency    time.Duration
	Err        string
}

// Checker performs a single check for a given target URL. Implementations
// make exactly one attempt per call; retrying is the caller's business.
type Checker interface {
	Check(ctx context.Context, target string) Outcome
}

// upStatusLimit is the exclusive upper bound of status codes that count as
// up. Redirects are fine, client and server errors are not.
const upStatusLimit = 400

// IsUp applies the single up/down policy used everywhere: the target
// answered and the status code is in [200, 400).
func IsUp(o Outcome) bool {
	return o.Reached && o.StatusCode >= 200 && o.StatusCode < upStatusLimit
}
