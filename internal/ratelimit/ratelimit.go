// Package ratelimit caps how often the copy-generation endpoint may call
// the external completion API.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter tracks generation calls over sliding minute, hour and day
// windows. A limit of zero disables that window.
type Limiter struct {
	perMinute int
	perHour   int
	perDay    int
	enabled   bool

	minuteWindow []time.Time
	hourWindow   []time.Time
	dayWindow    []time.Time
	mu           sync.Mutex
}

// New creates a limiter with the given per-window limits.
func New(perMinute, perHour, perDay int, enabled bool) *Limiter {
	return &Limiter{
		perMinute: perMinute,
		perHour:   perHour,
		perDay:    perDay,
		enabled:   enabled,
	}
}

// Allow records and permits one call unless a window is exhausted.
func (l *Limiter) Allow() bool {
	if !l.enabled {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.expire(now)

	if l.perMinute > 0 && len(l.minuteWindow) >= l.perMinute {
		return false
	}
	if l.perHour > 0 && len(l.hourWindow) >= l.perHour {
		return false
	}
	if l.perDay > 0 && len(l.dayWindow) >= l.perDay {
		return false
	}

	l.minuteWindow = append(l.minuteWindow, now)
	l.hourWindow = append(l.hourWindow, now)
	l.dayWindow = append(l.dayWindow, now)
	return true
}

// expire drops entries that have aged out of their window.
func (l *Limiter) expire(now time.Time) {
	l.minuteWindow = keepAfter(l.minuteWindow, now.Add(-time.Minute))
	l.hourWindow = keepAfter(l.hourWindow, now.Add(-time.Hour))
	l.dayWindow = keepAfter(l.dayWindow, now.Add(-24*time.Hour))
}

func keepAfter(times []time.Time, cutoff time.Time) []time.Time {
	kept := times[:0]
	for _, t := range times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// Stats is a point-in-time view of limiter usage.
type Stats struct {
	Enabled        bool `json:"enabled"`
	UsedLastMinute int  `json:"used_last_minute"`
	UsedLastHour   int  `json:"used_last_hour"`
	UsedLastDay    int  `json:"used_last_day"`
	LimitPerMinute int  `json:"limit_per_minute"`
	LimitPerHour   int  `json:"limit_per_hour"`
	LimitPerDay    int  `json:"limit_per_day"`
}

// GetStats returns current limiter usage.
func (l *Limiter) GetStats() Stats {
	if !l.enabled {
		return Stats{Enabled: false}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.expire(time.Now())
	return Stats{
		Enabled:        true,
		UsedLastMinute: len(l.minuteWindow),
		UsedLastHour:   len(l.hourWindow),
		UsedLastDay:    len(l.dayWindow),
		LimitPerMinute: l.perMinute,
		LimitPerHour:   l.perHour,
		LimitPerDay:    l.perDay,
	}
}

// Reset clears all tracked calls (useful for testing)
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.minuteWindow = nil
	l.hourWindow = nil
	l.dayWindow = nil
}
