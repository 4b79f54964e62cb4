package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo"

	httputil "hearth/pkg/http"
	"hearth/pkg/logger"
)

const readinessProbeTimeout = 2 * time.Second

type healthStatus struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// HealthHandler serves liveness and readiness probes. Liveness never touches
// dependencies; readiness pings Mongo, the only backend the engine cannot
// degrade without.
type HealthHandler struct {
	mongoClient *mongo.Client
	log         *logger.Logger
}

func NewHealthHandler(mongoClient *mongo.Client, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		mongoClient: mongoClient,
		log:         log,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.write(w, "Health", http.StatusOK, healthStatus{
		Status:  "ok",
		Service: "dispatch",
	})
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessProbeTimeout)
	defer cancel()

	if err := h.mongoClient.Ping(ctx, nil); err != nil {
		h.log.Error("readiness probe failed",
			"dependency", "mongo",
			"error", err,
		)
		h.write(w, "Ready", http.StatusServiceUnavailable, healthStatus{
			Status:  "unavailable",
			Service: "dispatch",
			Checks:  map[string]string{"mongo": "error"},
		})
		return
	}

	h.write(w, "Ready", http.StatusOK, healthStatus{
		Status:  "ready",
		Service: "dispatch",
		Checks:  map[string]string{"mongo": "ok"},
	})
}

func (h *HealthHandler) write(w http.ResponseWriter, handlerName string, status int, body healthStatus) {
	if err := httputil.WriteJSON(w, status, body); err != nil {
		h.log.Error("failed to write JSON response", "handler", handlerName, "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
