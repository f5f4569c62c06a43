// Package history is the append-only archive collaborator. The engine only
// ever writes to it; nothing in the play path reads it back.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"riverroom-server/pkg/holdem"
)

// HandSummary is the archived outcome of one hand
type HandSummary struct {
	HandID   uuid.UUID     `json:"handId"`
	TableID  uuid.UUID     `json:"tableId"`
	Seq      int64         `json:"seq"`
	Payouts  map[int64]int `json:"payouts"`
	Category string        `json:"category"`
	Aborted  bool          `json:"aborted"`
	Finished time.Time     `json:"finished"`
}

// Store archives hands and their actions. Implementations must be safe for
// concurrent use.
type Store interface {
	// RecordAction appends one accepted action
	RecordAction(ctx context.Context, tableID uuid.UUID, record *holdem.ActionRecord) error

	// RecordHand appends the outcome of a finished hand
	RecordHand(ctx context.Context, summary *HandSummary) error
}
