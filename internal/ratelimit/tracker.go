package ratelimit

import "time"

type window struct {
	start time.Time
	count int
}

// snapshot returns the key's count in the current window, starting a new
// window when the previous one has expired. Caller holds the lock.
func (l *Limiter) snapshot(key string, now time.Time) *window {
	w := l.windows[key]
	if w == nil || now.Sub(w.start) >= l.limit.Window {
		w = &window{start: now}
		l.windows[key] = w
	}
	return w
}

// prune drops expired windows so idle keys do not accumulate.
// Caller holds the lock.
func (l *Limiter) prune(now time.Time) {
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.limit.Window {
			delete(l.windows, key)
		}
	}
	l.lastPrune = now
}
