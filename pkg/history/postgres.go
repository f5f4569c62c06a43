package history

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"riverroom-server/pkg/holdem"
)

// Postgres archives hands into the hands and hand_actions tables
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns a Postgres history store
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// RecordAction appends one accepted action
func (p *Postgres) RecordAction(ctx context.Context, tableID uuid.UUID, record *holdem.ActionRecord) error {
	const query = `
INSERT INTO hand_actions (hand_uuid, table_uuid, player_id, position, action, amount, street, pot_before, pot_after, created)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := p.db.ExecContext(ctx, query,
		record.HandID.String(),
		tableID.String(),
		record.PlayerID,
		record.Position,
		string(record.Action),
		record.Amount,
		record.Street.String(),
		record.PotBefore,
		record.PotAfter,
		record.Time,
	)

	return err
}

// RecordHand appends the outcome of a finished hand
func (p *Postgres) RecordHand(ctx context.Context, summary *HandSummary) error {
	payouts, err := json.Marshal(summary.Payouts)
	if err != nil {
		return err
	}

	const query = `
INSERT INTO hands (uuid, table_uuid, seq, payouts, category, aborted, finished)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = p.db.ExecContext(ctx, query,
		summary.HandID.String(),
		summary.TableID.String(),
		summary.Seq,
		payouts,
		summary.Category,
		summary.Aborted,
		summary.Finished,
	)

	return err
}
