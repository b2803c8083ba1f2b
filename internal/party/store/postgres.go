package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"party/internal/party/models"
	"party/pkg/platform/sentinel"
	txcontext "party/pkg/platform/tx"
)

// uniqueViolation is SQLSTATE unique_violation.
const uniqueViolation = "23505"

const partyColumns = `id, cust_id, first_name, last_name, email_id, phone_no, version, created_ts, modified_ts`

// PostgresStore persists parties in PostgreSQL. Every method runs on the
// transaction carried by ctx when there is one.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed party store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, party *models.Party) (*models.Party, error) {
	if party == nil {
		return nil, fmt.Errorf("party is required")
	}
	if party.ID.IsZero() {
		return s.insert(ctx, party)
	}
	return s.update(ctx, party)
}

func (s *PostgresStore) insert(ctx context.Context, party *models.Party) (*models.Party, error) {
	query := `
		INSERT INTO party (cust_id, first_name, last_name, email_id, phone_no, version, created_ts, modified_ts)
		VALUES ($1, $2, $3, $4, $5, 1, $6, $7)
		RETURNING ` + partyColumns
	row := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, query,
		party.CustID,
		party.FirstName,
		party.LastName,
		party.EmailID,
		party.PhoneNo,
		party.CreatedAt,
		party.ModifiedAt,
	)
	saved, err := scanParty(row)
	if err != nil {
		if dup := duplicateKey(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("insert party: %w", err)
	}
	return saved, nil
}

// update writes party only if its Version still matches the row.
func (s *PostgresStore) update(ctx context.Context, party *models.Party) (*models.Party, error) {
	query := `
		UPDATE party
		SET cust_id = $3, first_name = $4, last_name = $5, email_id = $6, phone_no = $7,
			modified_ts = $8, version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING ` + partyColumns
	row := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, query,
		int64(party.ID),
		party.Version,
		party.CustID,
		party.FirstName,
		party.LastName,
		party.EmailID,
		party.PhoneNo,
		party.ModifiedAt,
	)
	saved, err := scanParty(row)
	if err == nil {
		return saved, nil
	}
	if dup := duplicateKey(err); dup != nil {
		return nil, dup
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update party: %w", err)
	}

	// Zero rows: the row is gone or its version moved on.
	exists, existsErr := s.exists(ctx, `SELECT EXISTS(SELECT 1 FROM party WHERE id = $1)`, int64(party.ID))
	if existsErr != nil {
		return nil, fmt.Errorf("update party: %w", existsErr)
	}
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	return nil, fmt.Errorf("party %s version %d: %w", party.ID, party.Version, sentinel.ErrConflict)
}

// FindByID locks the row when ctx carries a transaction.
func (s *PostgresStore) FindByID(ctx context.Context, id models.PartyID) (*models.Party, error) {
	query := `SELECT ` + partyColumns + ` FROM party WHERE id = $1`
	if _, ok := txcontext.From(ctx); ok {
		query += ` FOR UPDATE`
	}
	return s.findOne(ctx, "find party by id", query, int64(id))
}

func (s *PostgresStore) FindByCustID(ctx context.Context, custID int64) (*models.Party, error) {
	query := `SELECT ` + partyColumns + ` FROM party WHERE cust_id = $1`
	return s.findOne(ctx, "find party by cust id", query, custID)
}

func (s *PostgresStore) ExistsByCustID(ctx context.Context, custID int64) (bool, error) {
	exists, err := s.exists(ctx, `SELECT EXISTS(SELECT 1 FROM party WHERE cust_id = $1)`, custID)
	if err != nil {
		return false, fmt.Errorf("check cust id: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) FindByEmailID(ctx context.Context, emailID string) (*models.Party, error) {
	query := `SELECT ` + partyColumns + ` FROM party WHERE email_id = $1`
	return s.findOne(ctx, "find party by email id", query, emailID)
}

func (s *PostgresStore) ExistsByEmailID(ctx context.Context, emailID string) (bool, error) {
	exists, err := s.exists(ctx, `SELECT EXISTS(SELECT 1 FROM party WHERE email_id = $1)`, emailID)
	if err != nil {
		return false, fmt.Errorf("check email id: %w", err)
	}
	return exists, nil
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping party store: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) findOne(ctx context.Context, op, query string, arg any) (*models.Party, error) {
	p, err := scanParty(txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (s *PostgresStore) exists(ctx context.Context, query string, arg any) (bool, error) {
	var exists bool
	if err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, query, arg).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func scanParty(row *sql.Row) (*models.Party, error) {
	var (
		p  models.Party
		id int64
	)
	if err := row.Scan(
		&id,
		&p.CustID,
		&p.FirstName,
		&p.LastName,
		&p.EmailID,
		&p.PhoneNo,
		&p.Version,
		&p.CreatedAt,
		&p.ModifiedAt,
	); err != nil {
		return nil, err
	}
	p.ID = models.PartyID(id)
	p.CreatedAt = p.CreatedAt.UTC()
	p.ModifiedAt = p.ModifiedAt.UTC()
	return &p, nil
}

// duplicateKey maps a unique violation to the field it protects, or nil.
func duplicateKey(err error) *models.DuplicateKeyError {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case constraintCustID:
		return &models.DuplicateKeyError{Field: models.FieldCustID}
	case constraintEmailID:
		return &models.DuplicateKeyError{Field: models.FieldEmailID}
	}
	return nil
}
