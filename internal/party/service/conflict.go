package service

import (
	"context"

	"party/internal/party/models"
	dErrors "party/pkg/domain-errors"
)

// conflictError reports field as taken and counts the rejection.
func (s *Service) conflictError(field string) error {
	if s.metrics != nil {
		s.metrics.IncrementConflict(field)
	}
	return dErrors.New(dErrors.CodeConflict, field+" already exists")
}

// checkCreateConflict rejects a new record whose custId or emailId is taken.
// custId is checked and reported first.
func (s *Service) checkCreateConflict(ctx context.Context, req *models.PartyRequest) error {
	if req.CustID != nil {
		exists, err := s.store.ExistsByCustID(ctx, *req.CustID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "unable to check custId uniqueness")
		}
		if exists {
			return s.conflictError(models.FieldCustID)
		}
	}
	if req.EmailID != nil {
		exists, err := s.store.ExistsByEmailID(ctx, *req.EmailID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "unable to check emailId uniqueness")
		}
		if exists {
			return s.conflictError(models.FieldEmailID)
		}
	}
	return nil
}

// checkUpdateConflict rejects an update that moves custId or emailId onto a
// value held by another record. Unchanged values are not looked up.
func (s *Service) checkUpdateConflict(ctx context.Context, existing *models.Party, req *models.PartyRequest) error {
	if req.CustID != nil && *req.CustID != existing.CustID {
		exists, err := s.store.ExistsByCustID(ctx, *req.CustID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "unable to check custId uniqueness")
		}
		if exists {
			return s.conflictError(models.FieldCustID)
		}
	}
	if req.EmailID != nil && *req.EmailID != existing.EmailID {
		exists, err := s.store.ExistsByEmailID(ctx, *req.EmailID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "unable to check emailId uniqueness")
		}
		if exists {
			return s.conflictError(models.FieldEmailID)
		}
	}
	return nil
}
