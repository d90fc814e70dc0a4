// Package ammunition counts the arrows, bolts and other ammunition each
// combatant carries into an encounter.
package ammunition

import (
	"maps"
	"sync"

	dnderr "github.com/KirkDiggler/dnd-tactics/internal/errors"
)

// Tracker checks and spends ammunition
type Tracker interface {
	Available(combatantID, kind string) bool
	Consume(combatantID, kind string) error
}

// Ledger is a Tracker whose counts can be seeded and persisted
type Ledger interface {
	Tracker
	Load(combatantID string, counts map[string]int)
	Counts() map[string]map[string]int
	Restore(counts map[string]map[string]int)
}

// MemoryLedger keeps counts in memory. Combatants that were never loaded are
// not tracked and always have ammunition.
type MemoryLedger struct {
	mu     sync.Mutex
	counts map[string]map[string]int
}

// NewLedger creates an empty ledger
func NewLedger() *MemoryLedger {
	return &MemoryLedger{counts: make(map[string]map[string]int)}
}

// Load replaces the counts carried by a combatant
func (l *MemoryLedger) Load(combatantID string, counts map[string]int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[combatantID] = maps.Clone(counts)
	if l.counts[combatantID] == nil {
		l.counts[combatantID] = map[string]int{}
	}
}

// Available reports whether the combatant has at least one of kind
func (l *MemoryLedger) Available(combatantID, kind string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	carried, tracked := l.counts[combatantID]
	if !tracked || kind == "" {
		return true
	}
	return carried[kind] > 0
}

// Consume spends one of kind
func (l *MemoryLedger) Consume(combatantID, kind string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	carried, tracked := l.counts[combatantID]
	if !tracked || kind == "" {
		return nil
	}
	if carried[kind] <= 0 {
		return dnderr.Newf(dnderr.CodeValidation, "%s has no %s left", combatantID, kind).
			WithMeta("combatant_id", combatantID).
			WithMeta("kind", kind)
	}
	carried[kind]--
	return nil
}

// Counts returns a copy of every tracked count
func (l *MemoryLedger) Counts() map[string]map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]map[string]int, len(l.counts))
	for id, carried := range l.counts {
		out[id] = maps.Clone(carried)
	}
	return out
}

// Restore replaces all counts
func (l *MemoryLedger) Restore(counts map[string]map[string]int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counts = make(map[string]map[string]int, len(counts))
	for id, carried := range counts {
		l.counts[id] = maps.Clone(carried)
		if l.counts[id] == nil {
			l.counts[id] = map[string]int{}
		}
	}
}
