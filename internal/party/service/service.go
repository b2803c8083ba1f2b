package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"party/internal/party/events"
	"party/internal/party/mapper"
	"party/internal/party/metrics"
	"party/internal/party/models"
	"party/internal/party/validation"
	dErrors "party/pkg/domain-errors"
	"party/pkg/platform/sentinel"
	"party/pkg/requestcontext"
)

const (
	opCreate      = "create"
	opUpdate      = "update"
	opGetByID     = "get_by_id"
	opGetByCustID = "get_by_cust_id"

	outcomeSuccess = "success"
)

// Caller-visible messages for failures the caller cannot act on.
const (
	msgCreateFailed = "unable to create party"
	msgUpdateFailed = "unable to update party"
	msgLoadFailed   = "unable to load party"
	msgStaleWrite   = "party was modified concurrently"
)

// Service runs the party lifecycle: validation, uniqueness checks,
// persistence and response mapping. It holds no per-request state.
type Service struct {
	store     Store
	tx        StoreTx
	publisher EventPublisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTx sets the transaction runner. Without it writes are serialized per
// party by an in-process lock.
func WithTx(tx StoreTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

func WithEventPublisher(publisher EventPublisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// New constructs a Service over store.
func New(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tx == nil {
		s.tx = newInMemoryStoreTx()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("party/internal/party/service")
	}
	return s
}

// Create validates req, rejects taken custId/emailId values and persists a
// new party.
func (s *Service) Create(ctx context.Context, req *models.PartyRequest) (*models.PartyResponse, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "party.Create")
	defer span.End()

	saved, err := s.create(ctx, req)
	s.finish(ctx, span, opCreate, start, err)
	if err != nil {
		return nil, s.publicError(ctx, opCreate, err, msgCreateFailed)
	}

	span.SetAttributes(attribute.String("party.id", saved.ID.String()))
	s.logger.InfoContext(ctx, "party created",
		"party_id", saved.ID.String(),
		"cust_id", saved.CustID,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
	return mapper.ToResponse(saved), nil
}

func (s *Service) create(ctx context.Context, req *models.PartyRequest) (*models.Party, error) {
	if err := validation.ValidateCreate(req); err != nil {
		return nil, err
	}

	record := mapper.ToRecord(req)
	record.Stamp(requestcontext.Now(ctx))

	var saved *models.Party
	ctx = withLockKey(ctx, "cust:"+strconv.FormatInt(record.CustID, 10))
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.checkCreateConflict(ctx, req); err != nil {
			return err
		}

		var err error
		saved, err = s.store.Save(ctx, record)
		if err != nil {
			return s.translateWriteError(err)
		}

		return s.publish(ctx, events.TypeCreated, saved)
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// Update applies the fields present in req to the party identified by id.
// The read, the uniqueness checks and the write share one transaction.
func (s *Service) Update(ctx context.Context, id models.PartyID, req *models.PartyRequest) (*models.PartyResponse, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "party.Update", trace.WithAttributes(
		attribute.String("party.id", id.String()),
	))
	defer span.End()

	saved, err := s.update(ctx, id, req)
	s.finish(ctx, span, opUpdate, start, err)
	if err != nil {
		return nil, s.publicError(ctx, opUpdate, err, msgUpdateFailed)
	}

	s.logger.InfoContext(ctx, "party updated",
		"party_id", saved.ID.String(),
		"version", saved.Version,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementUpdated()
	}
	return mapper.ToResponse(saved), nil
}

func (s *Service) update(ctx context.Context, id models.PartyID, req *models.PartyRequest) (*models.Party, error) {
	if err := validation.ValidateUpdate(req); err != nil {
		return nil, err
	}

	var saved *models.Party
	ctx = withLockKey(ctx, "party:"+id.String())
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := s.store.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return notFoundByID(id)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, msgLoadFailed)
		}

		if err := s.checkUpdateConflict(ctx, existing, req); err != nil {
			return err
		}

		if isEmptyUpdate(req) {
			saved = existing
			return nil
		}

		updated := existing.Clone()
		mapper.ApplyUpdate(updated, req)
		updated.Touch(requestcontext.Now(ctx))

		saved, err = s.store.Save(ctx, updated)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return notFoundByID(id)
			}
			return s.translateWriteError(err)
		}

		return s.publish(ctx, events.TypeUpdated, saved)
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// GetByID returns the party with the given identity.
func (s *Service) GetByID(ctx context.Context, id models.PartyID) (*models.PartyResponse, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "party.GetByID", trace.WithAttributes(
		attribute.String("party.id", id.String()),
	))
	defer span.End()

	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			err = notFoundByID(id)
		}
		s.finish(ctx, span, opGetByID, start, err)
		return nil, s.publicError(ctx, opGetByID, err, msgLoadFailed)
	}
	s.finish(ctx, span, opGetByID, start, nil)
	return mapper.ToResponse(p), nil
}

// GetByCustID returns the party owning the external customer identifier.
func (s *Service) GetByCustID(ctx context.Context, custID int64) (*models.PartyResponse, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "party.GetByCustID", trace.WithAttributes(
		attribute.Int64("party.cust_id", custID),
	))
	defer span.End()

	p, err := s.store.FindByCustID(ctx, custID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			err = dErrors.New(dErrors.CodeNotFound, "Party not found with custId: "+strconv.FormatInt(custID, 10))
		}
		s.finish(ctx, span, opGetByCustID, start, err)
		return nil, s.publicError(ctx, opGetByCustID, err, msgLoadFailed)
	}
	s.finish(ctx, span, opGetByCustID, start, nil)
	return mapper.ToResponse(p), nil
}

func notFoundByID(id models.PartyID) error {
	return dErrors.New(dErrors.CodeNotFound, "Party not found with id: "+id.String())
}

// translateWriteError maps store write failures to caller-facing codes.
// Unrecognized failures pass through and become internal errors.
func (s *Service) translateWriteError(err error) error {
	var dup *models.DuplicateKeyError
	if errors.As(err, &dup) {
		return s.conflictError(dup.Field)
	}
	if errors.Is(err, sentinel.ErrConflict) {
		if s.metrics != nil {
			s.metrics.IncrementConflict("version")
		}
		return dErrors.Wrap(err, dErrors.CodeConflict, msgStaleWrite)
	}
	return err
}

func (s *Service) publish(ctx context.Context, typ events.Type, p *models.Party) error {
	if s.publisher == nil {
		return nil
	}
	event := events.New(typ, p, requestcontext.Now(ctx), requestcontext.RequestID(ctx))
	if err := s.publisher.Publish(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "unable to record party event")
	}
	return nil
}

// publicError keeps client errors as they are and replaces everything else
// with a generic internal error. The cause is logged, never returned in text.
func (s *Service) publicError(ctx context.Context, op string, err error, msg string) error {
	code := dErrors.CodeOf(err)
	if dErrors.IsClientError(code) {
		return err
	}
	s.logger.ErrorContext(ctx, "party operation failed",
		"operation", op,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

// finish records the span status and the operation metric.
func (s *Service) finish(ctx context.Context, span trace.Span, op string, start time.Time, err error) {
	outcome := outcomeSuccess
	if err != nil {
		code := dErrors.CodeOf(err)
		if !dErrors.IsClientError(code) {
			code = dErrors.CodeInternal
		}
		outcome = string(code)
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	if s.metrics != nil {
		s.metrics.ObserveOperation(op, outcome, start)
	}
	if outcome != outcomeSuccess && outcome != string(dErrors.CodeInternal) {
		s.logger.DebugContext(ctx, "party operation rejected", "operation", op, "outcome", outcome)
	}
}

func isEmptyUpdate(req *models.PartyRequest) bool {
	return req.CustID == nil &&
		req.FirstName == nil &&
		req.LastName == nil &&
		req.EmailID == nil &&
		req.PhoneNo == nil
}
