package http

import (
	"encoding/json"
	"net/http"

	apperrors "hearth/pkg/errors"
)

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// PaginatedData wraps list payloads with paging metadata inside the envelope.
type PaginatedData struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"total_count"`
	Limit      int   `json:"limit"`
	Offset     int64 `json:"offset"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, payload any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(payload)
}

// WriteError maps an error onto the envelope. AppErrors carry their own HTTP
// status; anything else is an opaque 500.
func WriteError(w http.ResponseWriter, err error) error {
	appErr := apperrors.AsAppError(err)

	message := appErr.Message
	if appErr.Code == apperrors.CodeInternal {
		message = "Internal server error"
	}

	return WriteJSON(w, appErr.StatusCode(), APIResponse{
		Success: false,
		Message: message,
	})
}

func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

func WritePaginated(w http.ResponseWriter, items any, totalCount int64, limit int, offset int64) error {
	return WriteJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: PaginatedData{
			Items:      items,
			TotalCount: totalCount,
			Limit:      limit,
			Offset:     offset,
		},
	})
}
