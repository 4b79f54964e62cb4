package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"hearth/internal/dispatch/service"
	"hearth/internal/dispatch/validator"
	apperrors "hearth/pkg/errors"
	httputil "hearth/pkg/http"
	"hearth/pkg/logger"
	"hearth/pkg/model"
)

type BookingHandler struct {
	dispatch    service.DispatchService
	negotiation service.NegotiationService
	validator   *validator.DispatchValidator
	log         *logger.Logger
}

func NewBookingHandler(
	dispatch service.DispatchService,
	negotiation service.NegotiationService,
	v *validator.DispatchValidator,
	log *logger.Logger,
) *BookingHandler {
	return &BookingHandler{
		dispatch:    dispatch,
		negotiation: negotiation,
		validator:   v,
		log:         log,
	}
}

// rejectionResult is the trimmed response for a recorded rejection. The
// full booking stays retrievable through GetByID.
type rejectionResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Reject records a provider's rejection of a booking. An empty body is
// allowed: the provider ID may only arrive via the X-Provider-ID header and
// the reason defaults server-side.
func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var req model.RejectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, "Reject", apperrors.InvalidArgument("Invalid request body"))
		return
	}
	if req.ProviderID == "" {
		req.ProviderID = r.Header.Get("X-Provider-ID")
	}

	if err := h.validator.ValidateRejection(&req); err != nil {
		h.writeError(w, "Reject", apperrors.Validation(err.Error(), nil))
		return
	}

	booking, err := h.dispatch.RecordProviderRejection(r.Context(), id, req.ProviderID, req.Reason)
	if err != nil {
		h.writeError(w, "Reject", err)
		return
	}

	result := rejectionResult{ID: booking.ID, Status: booking.Status}
	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Reject", "operation", "WriteSuccess", "error", err)
	}
}

// Propose records a provider's counter-offer on the booking price and
// answers with the new offer snapshot only.
func (h *BookingHandler) Propose(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var req model.ProposalRequest
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&req); err != nil {
		h.writeError(w, "Propose", apperrors.InvalidArgument("Invalid request body"))
		return
	}
	if req.ProviderID == "" {
		req.ProviderID = r.Header.Get("X-Provider-ID")
	}

	if err := h.validator.ValidateProposal(&req); err != nil {
		h.writeError(w, "Propose", apperrors.Validation(err.Error(), nil))
		return
	}

	offer, err := h.negotiation.ProposeAmount(r.Context(), id, req.ProviderID, req.Amount.String(), req.Note)
	if err != nil {
		h.writeError(w, "Propose", err)
		return
	}

	if err := httputil.WriteSuccess(w, offer); err != nil {
		h.log.Error("failed to write success response", "handler", "Propose", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	booking, err := h.dispatch.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	bookings, total, err := h.dispatch.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings/id/:id/responses/reject", h.Reject)
	router.POST("/api/v1/bookings/id/:id/negotiation", h.Propose)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.GET("/api/v1/bookings", h.GetAll)
}
