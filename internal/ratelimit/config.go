// Package ratelimit enforces fixed-window request limits per caller.
package ratelimit

import "time"

// Limit allows MaxRequests per Window for each key.
// Zero values mean no limit.
type Limit struct {
	MaxRequests int           `yaml:"max_requests"`
	Window      time.Duration `yaml:"window"`
}

// PerMinute returns a limit of n requests per minute. n <= 0 disables it.
func PerMinute(n int) Limit {
	if n <= 0 {
		return Limit{}
	}
	return Limit{MaxRequests: n, Window: time.Minute}
}

// Enabled returns true if the limit restricts anything.
func (l Limit) Enabled() bool {
	return l.MaxRequests > 0 && l.Window > 0
}
