// Package outbox persists party events alongside the write that produced them
// and relays them to Kafka once committed.
package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"party/internal/party/events"
	txcontext "party/pkg/platform/tx"
)

// Entry is one undelivered outbox row.
type Entry struct {
	ID          uuid.UUID
	AggregateID int64
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

// Key is the Kafka partition key.
func (e Entry) Key() []byte {
	return []byte(strconv.FormatInt(e.AggregateID, 10))
}

// PostgresOutbox writes events to the outbox table. Publish joins the
// transaction carried by ctx, so an event commits or rolls back with its row.
type PostgresOutbox struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgres(db *sql.DB) *PostgresOutbox {
	return &PostgresOutbox{db: db, now: time.Now}
}

// Publish inserts e into the outbox.
func (o *PostgresOutbox) Publish(ctx context.Context, e events.Event) error {
	payload, err := e.Marshal()
	if err != nil {
		return err
	}
	query := `
		INSERT INTO outbox (id, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = txcontext.ExecutorFrom(ctx, o.db).ExecContext(ctx, query,
		e.ID,
		int64(e.PartyID),
		string(e.Type),
		payload,
		o.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// ProcessPending locks up to limit undelivered entries, oldest first, hands
// each to deliver and marks the delivered ones published. Rows locked by a
// concurrent relay are skipped. Delivery stops at the first failure; entries
// delivered before it are still marked.
func (o *PostgresOutbox) ProcessPending(ctx context.Context, limit int, deliver func(context.Context, Entry) error) (int, error) {
	tx, err := o.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin outbox tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	entries, err := o.lockPending(ctx, tx, limit)
	if err != nil {
		return 0, err
	}

	delivered := 0
	var deliverErr error
	for _, entry := range entries {
		if deliverErr = deliver(ctx, entry); deliverErr != nil {
			break
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE outbox SET published_at = $2 WHERE id = $1`,
			entry.ID, o.now().UTC(),
		); err != nil {
			return 0, fmt.Errorf("mark outbox entry %s: %w", entry.ID, err)
		}
		delivered++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit outbox tx: %w", err)
	}
	if deliverErr != nil {
		return delivered, fmt.Errorf("deliver outbox entry: %w", deliverErr)
	}
	return delivered, nil
}

func (o *PostgresOutbox) lockPending(ctx context.Context, tx *sql.Tx, limit int) ([]Entry, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, aggregate_id, event_type, payload, created_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("select pending outbox entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox entries: %w", err)
	}
	return entries, nil
}
