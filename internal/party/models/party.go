package models

import (
	"strconv"
	"strings"
	"time"

	dErrors "party/pkg/domain-errors"
	"party/pkg/platform/sentinel"
)

// Field names used in conflict reporting and store unique indexes.
const (
	FieldCustID  = "custId"
	FieldEmailID = "emailId"
)

// PartyID is the store-assigned identity. Zero means "not yet persisted".
type PartyID int64

func (id PartyID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func (id PartyID) IsZero() bool {
	return id == 0
}

// ParsePartyID parses a path or query value into a PartyID.
func ParsePartyID(raw string) (PartyID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || v <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "party id must be a positive integer")
	}
	return PartyID(v), nil
}

// ParseCustID parses an external customer identifier.
func ParseCustID(raw string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "custId must be an integer")
	}
	return v, nil
}

// Audit holds system-assigned timestamps.
//
// Invariants:
//   - CreatedAt is set once on creation and never changes
//   - ModifiedAt >= CreatedAt
type Audit struct {
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// Stamp initializes both timestamps for a new record.
func (a *Audit) Stamp(now time.Time) {
	a.CreatedAt = now
	a.ModifiedAt = now
}

// Touch advances ModifiedAt, never moving it before CreatedAt or backwards.
func (a *Audit) Touch(now time.Time) {
	if now.Before(a.CreatedAt) {
		now = a.CreatedAt
	}
	if now.Before(a.ModifiedAt) {
		return
	}
	a.ModifiedAt = now
}

// Party is the persisted customer record.
//
// Invariants:
//   - CustID and EmailID are unique across all parties (enforced by the store at write time)
//   - FirstName, LastName, EmailID and PhoneNo are always populated
//   - ID is assigned exactly once, by the store, on insert
//   - Version increments on every successful write and guards against lost updates
type Party struct {
	ID        PartyID
	CustID    int64
	FirstName string
	LastName  string
	EmailID   string
	PhoneNo   string
	Version   int64
	Audit
}

// Clone returns a copy safe to hand across store boundaries.
func (p *Party) Clone() *Party {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// DuplicateKeyError reports a unique-key collision detected at write time.
type DuplicateKeyError struct {
	Field string
}

func (e *DuplicateKeyError) Error() string {
	return e.Field + " already exists"
}

func (e *DuplicateKeyError) Unwrap() error {
	return sentinel.ErrAlreadyUsed
}
