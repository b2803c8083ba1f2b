//go:build integration

package outbox_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"party/internal/party/events"
	"party/internal/party/models"
	"party/internal/party/outbox"
	txcontext "party/pkg/platform/tx"
	"party/pkg/testutil/containers"
)

type PostgresOutboxSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	outbox   *outbox.PostgresOutbox
}

func TestPostgresOutboxSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresOutboxSuite))
}

func (s *PostgresOutboxSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.outbox = outbox.NewPostgres(s.postgres.DB)
}

func (s *PostgresOutboxSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "outbox", "party"))
}

func event(id int64) events.Event {
	p := &models.Party{ID: models.PartyID(id), CustID: id * 10, Version: 1}
	return events.New(events.TypeCreated, p, time.Now(), "req-1")
}

func (s *PostgresOutboxSuite) pendingCount() int {
	var n int
	err := s.postgres.DB.QueryRow(`SELECT COUNT(*) FROM outbox WHERE published_at IS NULL`).Scan(&n)
	s.Require().NoError(err)
	return n
}

func (s *PostgresOutboxSuite) TestPublishFollowsTransaction() {
	ctx := context.Background()

	tx, err := s.postgres.DB.BeginTx(ctx, nil)
	s.Require().NoError(err)
	s.Require().NoError(s.outbox.Publish(txcontext.WithTx(ctx, tx), event(1)))
	s.Require().NoError(tx.Rollback())
	s.Equal(0, s.pendingCount(), "rolled back event must not be relayed")

	tx, err = s.postgres.DB.BeginTx(ctx, nil)
	s.Require().NoError(err)
	s.Require().NoError(s.outbox.Publish(txcontext.WithTx(ctx, tx), event(2)))
	s.Require().NoError(tx.Commit())
	s.Equal(1, s.pendingCount())
}

func (s *PostgresOutboxSuite) TestProcessPendingMarksDelivered() {
	ctx := context.Background()
	for i := int64(1); i <= 3; i++ {
		s.Require().NoError(s.outbox.Publish(ctx, event(i)))
	}

	var keys []string
	n, err := s.outbox.ProcessPending(ctx, 10, func(_ context.Context, e outbox.Entry) error {
		keys = append(keys, string(e.Key()))
		return nil
	})
	s.Require().NoError(err)
	s.Equal(3, n)
	s.ElementsMatch([]string{"1", "2", "3"}, keys)
	s.Equal(0, s.pendingCount())
}

func (s *PostgresOutboxSuite) TestProcessPendingKeepsUndelivered() {
	ctx := context.Background()
	for i := int64(1); i <= 3; i++ {
		s.Require().NoError(s.outbox.Publish(ctx, event(i)))
	}

	calls := 0
	n, err := s.outbox.ProcessPending(ctx, 10, func(_ context.Context, e outbox.Entry) error {
		calls++
		if calls == 2 {
			return errors.New("broker down")
		}
		return nil
	})
	s.Require().Error(err)
	s.Equal(1, n)
	s.Equal(2, s.pendingCount())
}
