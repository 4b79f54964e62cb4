package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"hearth/internal/dispatch/service"
	httputil "hearth/pkg/http"
	"hearth/pkg/logger"
)

type ProviderHandler struct {
	service service.ProviderService
	log     *logger.Logger
}

func NewProviderHandler(service service.ProviderService, log *logger.Logger) *ProviderHandler {
	return &ProviderHandler{
		service: service,
		log:     log,
	}
}

func (h *ProviderHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	provider, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, provider); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

// GetEligible lists active providers that offer the requested service.
func (h *ProviderHandler) GetEligible(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	serviceName := r.URL.Query().Get("service")

	providers, err := h.service.ListEligible(r.Context(), serviceName)
	if err != nil {
		h.writeError(w, "GetEligible", err)
		return
	}

	if err := httputil.WriteSuccess(w, providers); err != nil {
		h.log.Error("failed to write success response", "handler", "GetEligible", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ProviderHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ProviderHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/providers/id/:id", h.GetByID)
	router.GET("/api/v1/providers/eligible", h.GetEligible)
}
