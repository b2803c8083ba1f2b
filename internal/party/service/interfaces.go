package service

import (
	"context"

	"party/internal/party/events"
	"party/internal/party/models"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks Store,EventPublisher

// Store persists party records. Every call is atomic on its own.
//
// Lookups return sentinel.ErrNotFound when nothing matches. Save inserts when
// the record has no ID and updates otherwise; a unique-key collision is reported
// as *models.DuplicateKeyError and a stale Version as sentinel.ErrConflict.
// FindByID called inside RunInTx locks the row until the transaction ends.
type Store interface {
	Save(ctx context.Context, party *models.Party) (*models.Party, error)
	FindByID(ctx context.Context, id models.PartyID) (*models.Party, error)
	FindByCustID(ctx context.Context, custID int64) (*models.Party, error)
	ExistsByCustID(ctx context.Context, custID int64) (bool, error)
	FindByEmailID(ctx context.Context, emailID string) (*models.Party, error)
	ExistsByEmailID(ctx context.Context, emailID string) (bool, error)
}

// StoreTx provides the transactional boundary around read-check-write.
// Implementations may wrap a database transaction or, in memory, a keyed lock.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher receives committed lifecycle events. When called inside
// RunInTx the publish joins the transaction.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}
