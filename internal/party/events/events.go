package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"party/internal/party/models"
)

// Type names a party lifecycle transition.
type Type string

const (
	TypeCreated Type = "party.created"
	TypeUpdated Type = "party.updated"
)

// Event records a committed lifecycle transition. Contact fields are not
// carried; consumers resolve them through the read API.
type Event struct {
	ID         uuid.UUID      `json:"id"`
	Type       Type           `json:"type"`
	PartyID    models.PartyID `json:"partyId"`
	CustID     int64          `json:"custId"`
	Version    int64          `json:"version"`
	OccurredAt time.Time      `json:"occurredAt"`
	RequestID  string         `json:"requestId,omitempty"`
}

// New builds an event for p.
func New(typ Type, p *models.Party, occurredAt time.Time, requestID string) Event {
	return Event{
		ID:         uuid.New(),
		Type:       typ,
		PartyID:    p.ID,
		CustID:     p.CustID,
		Version:    p.Version,
		OccurredAt: occurredAt.UTC(),
		RequestID:  requestID,
	}
}

// Key is the partition key; all events of one party land on one partition.
func (e Event) Key() []byte {
	return []byte(e.PartyID.String())
}

// Marshal encodes the event payload.
func (e Event) Marshal() ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal party event: %w", err)
	}
	return b, nil
}

// LogPublisher records events in the structured log. Used when no outbox is
// configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, e Event) error {
	p.logger.InfoContext(ctx, "party event",
		"event_id", e.ID.String(),
		"event_type", string(e.Type),
		"party_id", e.PartyID.String(),
		"version", e.Version,
		"request_id", e.RequestID,
	)
	return nil
}
