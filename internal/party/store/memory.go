package store

import (
	"context"
	"fmt"
	"sync"

	"party/internal/party/models"
	"party/pkg/platform/sentinel"
)

// InMemory keeps parties in maps guarded by one RWMutex. Unique keys and the
// version check are enforced inside Save under the write lock, so concurrent
// writers never both win the same custId or emailId.
type InMemory struct {
	mu       sync.RWMutex
	nextID   models.PartyID
	parties  map[models.PartyID]*models.Party
	byCustID map[int64]models.PartyID
	byEmail  map[string]models.PartyID
}

func NewInMemory() *InMemory {
	return &InMemory{
		parties:  make(map[models.PartyID]*models.Party),
		byCustID: make(map[int64]models.PartyID),
		byEmail:  make(map[string]models.PartyID),
	}
}

// Save inserts party when its ID is zero and updates it otherwise. The stored
// copy and the returned copy are independent of the argument.
func (s *InMemory) Save(ctx context.Context, party *models.Party) (*models.Party, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("save party: %w", err)
	}
	if party == nil {
		return nil, fmt.Errorf("party is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if party.ID.IsZero() {
		return s.insertLocked(party)
	}
	return s.updateLocked(party)
}

func (s *InMemory) insertLocked(party *models.Party) (*models.Party, error) {
	if _, taken := s.byCustID[party.CustID]; taken {
		return nil, &models.DuplicateKeyError{Field: models.FieldCustID}
	}
	if _, taken := s.byEmail[party.EmailID]; taken {
		return nil, &models.DuplicateKeyError{Field: models.FieldEmailID}
	}

	s.nextID++
	stored := party.Clone()
	stored.ID = s.nextID
	stored.Version = 1

	s.parties[stored.ID] = stored
	s.byCustID[stored.CustID] = stored.ID
	s.byEmail[stored.EmailID] = stored.ID
	return stored.Clone(), nil
}

func (s *InMemory) updateLocked(party *models.Party) (*models.Party, error) {
	current, ok := s.parties[party.ID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if current.Version != party.Version {
		return nil, fmt.Errorf("party %s version %d: %w", party.ID, party.Version, sentinel.ErrConflict)
	}
	if owner, taken := s.byCustID[party.CustID]; taken && owner != party.ID {
		return nil, &models.DuplicateKeyError{Field: models.FieldCustID}
	}
	if owner, taken := s.byEmail[party.EmailID]; taken && owner != party.ID {
		return nil, &models.DuplicateKeyError{Field: models.FieldEmailID}
	}

	delete(s.byCustID, current.CustID)
	delete(s.byEmail, current.EmailID)

	stored := party.Clone()
	stored.Version = current.Version + 1
	stored.CreatedAt = current.CreatedAt

	s.parties[stored.ID] = stored
	s.byCustID[stored.CustID] = stored.ID
	s.byEmail[stored.EmailID] = stored.ID
	return stored.Clone(), nil
}

func (s *InMemory) FindByID(ctx context.Context, id models.PartyID) (*models.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.parties[id]; ok {
		return p.Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByCustID(ctx context.Context, custID int64) (*models.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byCustID[custID]; ok {
		return s.parties[id].Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ExistsByCustID(ctx context.Context, custID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byCustID[custID]
	return ok, nil
}

func (s *InMemory) FindByEmailID(ctx context.Context, emailID string) (*models.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byEmail[emailID]; ok {
		return s.parties[id].Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ExistsByEmailID(ctx context.Context, emailID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byEmail[emailID]
	return ok, nil
}

// Ping reports the store as reachable.
func (s *InMemory) Ping(ctx context.Context) error {
	return ctx.Err()
}
