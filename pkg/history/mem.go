package history

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"riverroom-server/pkg/holdem"
)

// Mem is an in-memory Store for tests
type Mem struct {
	mu      sync.Mutex
	actions []*holdem.ActionRecord
	hands   []*HandSummary
}

// NewMem returns an in-memory history store
func NewMem() *Mem {
	return &Mem{}
}

// RecordAction appends one accepted action
func (m *Mem) RecordAction(ctx context.Context, tableID uuid.UUID, record *holdem.ActionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.actions = append(m.actions, record)
	return nil
}

// RecordHand appends the outcome of a finished hand
func (m *Mem) RecordHand(ctx context.Context, summary *HandSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hands = append(m.hands, summary)
	return nil
}

// Actions returns the recorded actions
func (m *Mem) Actions() []*holdem.ActionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	actions := make([]*holdem.ActionRecord, len(m.actions))
	copy(actions, m.actions)
	return actions
}

// Hands returns the recorded hand summaries
func (m *Mem) Hands() []*HandSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	hands := make([]*HandSummary, len(m.hands))
	copy(hands, m.hands)
	return hands
}
