package ratelimit

import (
	"context"
	"sync"
	"time"
)

const defaultPruneInterval = time.Minute

// Memory is a sliding-window log limiter for a single process.
type Memory struct {
	mu            sync.Mutex
	hits          map[string][]time.Time
	now           func() time.Time
	pruneInterval time.Duration
	lastPrune     time.Time
	maxWindow     time.Duration
}

func NewMemory() *Memory {
	return &Memory{
		hits:          map[string][]time.Time{},
		now:           time.Now,
		pruneInterval: defaultPruneInterval,
	}
}

func (m *Memory) Allow(_ context.Context, key string, limit Limit) (Decision, error) {
	if err := limit.validate(); err != nil {
		return Decision{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if limit.Window > m.maxWindow {
		m.maxWindow = limit.Window
	}
	m.prune(now)

	log := dropBefore(m.hits[key], now.Add(-limit.Window))
	if len(log) >= limit.MaxRequests {
		m.hits[key] = log
		return Decision{Allowed: false, RetryAfter: limit.Window}, nil
	}
	log = append(log, now)
	m.hits[key] = log
	return Decision{Allowed: true, Remaining: limit.MaxRequests - len(log)}, nil
}

// prune drops keys idle for longer than the widest window seen.
func (m *Memory) prune(now time.Time) {
	if now.Sub(m.lastPrune) < m.pruneInterval {
		return
	}
	m.lastPrune = now
	cutoff := now.Add(-m.maxWindow)
	for key, log := range m.hits {
		if len(log) == 0 || !log[len(log)-1].After(cutoff) {
			delete(m.hits, key)
		}
	}
}

// dropBefore removes hits at or before cutoff. log is sorted ascending.
func dropBefore(log []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(log) && !log[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return log
	}
	return append(log[:0], log[i:]...)
}

func (m *Memory) keys() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.hits)
}
