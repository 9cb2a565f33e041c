package conversations

import (
	"context"
	"sync"
	"time"

	logx "github.com/OnePunchManz/sumi-backend/pkg/logger"
)

type entry struct {
	acc      *Accumulator
	lastUsed time.Time
}

// Binding maps session ids to their Accumulator. It is the only owner of the
// mapping: accumulators are created by Resolve and dropped by Remove or Sweep.
type Binding struct {
	directive string

	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time // for testing
}

// NewBinding creates an empty binding whose accumulators open with directive.
func NewBinding(directive string) *Binding {
	return &Binding{
		directive: directive,
		entries:   make(map[string]*entry),
		now:       time.Now,
	}
}

// Resolve returns the accumulator of sessionID, creating it on first use.
func (b *Binding) Resolve(sessionID string) *Accumulator {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.entries[sessionID]
	if !ok {
		e = &entry{acc: NewAccumulator(b.directive)}
		b.entries[sessionID] = e
		logx.Debug().Str("session_id", sessionID).Msg("created conversation accumulator")
	}
	e.lastUsed = b.now()
	return e.acc
}

// Peek returns the accumulator of sessionID without creating one.
func (b *Binding) Peek(sessionID string) (*Accumulator, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.entries[sessionID]
	if !ok {
		return nil, false
	}
	return e.acc, true
}

// Remove drops the accumulator of a destroyed session and reports whether one existed.
func (b *Binding) Remove(sessionID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.entries[sessionID]; !ok {
		return false
	}
	delete(b.entries, sessionID)
	return true
}

// Len returns the number of live accumulators.
func (b *Binding) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Sweep evicts accumulators unused for longer than idle. Accumulators inside an
// exchange are skipped. It returns the number evicted.
func (b *Binding) Sweep(idle time.Duration) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	cutoff := b.now().Add(-idle)
	evicted := 0
	for id, e := range b.entries {
		if e.lastUsed.After(cutoff) {
			continue
		}
		if !e.acc.tryAcquire() {
			continue
		}
		delete(b.entries, id)
		e.acc.release()
		evicted++
	}
	return evicted
}

// Run sweeps every interval until ctx is done.
func (b *Binding) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := b.Sweep(idle); n > 0 {
				logx.Info().Int("evicted", n).Int("live", b.Len()).Msg("swept expired conversations")
			}
		}
	}
}
