package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"party/internal/party/models"
	"party/internal/party/validation"
	dErrors "party/pkg/domain-errors"
	"party/pkg/envelope"
	"party/pkg/platform/httputil"
	"party/pkg/requestcontext"
)

const (
	msgCreated = "Party created successfully"
	msgUpdated = "Party updated successfully"
)

// Service defines the party lifecycle operations exposed over HTTP.
type Service interface {
	Create(ctx context.Context, req *models.PartyRequest) (*models.PartyResponse, error)
	Update(ctx context.Context, id models.PartyID, req *models.PartyRequest) (*models.PartyResponse, error)
	GetByID(ctx context.Context, id models.PartyID) (*models.PartyResponse, error)
	GetByCustID(ctx context.Context, custID int64) (*models.PartyResponse, error)
}

// Handler binds the party service to /v1/party.
type Handler struct {
	service      Service
	logger       *slog.Logger
	errMaxLength int
}

// New creates a party Handler. errMaxLength bounds errorDescription.
func New(service Service, logger *slog.Logger, errMaxLength int) *Handler {
	return &Handler{
		service:      service,
		logger:       logger,
		errMaxLength: errMaxLength,
	}
}

// Register mounts the party routes on r. writeLimit wraps the mutating
// routes; pass nil for none.
func (h *Handler) Register(r chi.Router, writeLimit func(http.Handler) http.Handler) {
	r.Route("/v1/party", func(r chi.Router) {
		r.Get("/", h.handleGetByCustID)
		r.Get("/{id}", h.handleGetByID)
		r.Group(func(r chi.Router) {
			if writeLimit != nil {
				r.Use(writeLimit)
			}
			r.Post("/", h.handleCreate)
			r.Put("/{id}", h.handleUpdate)
		})
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	res, err := h.service.Create(ctx, req)
	if err != nil {
		h.writeError(ctx, w, "create party failed", err)
		return
	}
	httputil.WriteSuccess(w, http.StatusCreated, res, msgCreated)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := models.ParsePartyID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(ctx, w, "invalid party id", err)
		return
	}

	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	res, err := h.service.Update(ctx, id, req)
	if err != nil {
		h.writeError(ctx, w, "update party failed", err, "party_id", id.String())
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, res, msgUpdated)
}

func (h *Handler) handleGetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := models.ParsePartyID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(ctx, w, "invalid party id", err)
		return
	}

	res, err := h.service.GetByID(ctx, id)
	if err != nil {
		h.writeError(ctx, w, "get party failed", err, "party_id", id.String())
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, res, "")
}

func (h *Handler) handleGetByCustID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw := r.URL.Query().Get("custId")
	if raw == "" {
		h.writeError(ctx, w, "missing custId", dErrors.New(dErrors.CodeBadRequest, "custId query parameter is required"))
		return
	}
	custID, err := models.ParseCustID(raw)
	if err != nil {
		h.writeError(ctx, w, "invalid custId", err)
		return
	}

	res, err := h.service.GetByCustID(ctx, custID)
	if err != nil {
		h.writeError(ctx, w, "get party by custId failed", err, "cust_id", custID)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, res, "")
}

// decodeRequest unwraps the request envelope. A missing partyData is the
// same validation failure as a null request.
func (h *Handler) decodeRequest(w http.ResponseWriter, r *http.Request) (*models.PartyRequest, bool) {
	var body envelope.Request[models.PartyRequest]
	if err := httputil.DecodeJSON(w, r, &body); err != nil {
		h.writeError(r.Context(), w, "invalid party request body", err)
		return nil, false
	}
	if body.PartyData == nil {
		h.writeError(r.Context(), w, "missing partyData",
			dErrors.New(dErrors.CodeValidation, validation.MsgRequestRequired))
		return nil, false
	}
	return body.PartyData, true
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error, attrs ...any) {
	code := dErrors.CodeOf(err)
	attrs = append(attrs,
		"request_id", requestcontext.RequestID(ctx),
		"code", string(code),
		"error", err,
	)
	if dErrors.IsClientError(code) {
		h.logger.WarnContext(ctx, msg, attrs...)
	} else {
		h.logger.ErrorContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err, h.errMaxLength)
}
