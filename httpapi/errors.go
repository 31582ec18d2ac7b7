package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ryhazerus/likes"
	"go.uber.org/zap"
)

// WriteError writes a standardized JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, errorType, message string) {
	writeJSON(w, statusCode, errorResponse{Error: errorType, Message: message})
}

// writeServiceError converts service errors to HTTP responses.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var inErr *likes.InputError
	switch {
	case errors.As(err, &inErr):
		WriteError(w, http.StatusBadRequest, "InvalidRequest", fmt.Sprintf("%s %s", inErr.Field, inErr.Reason))
	case errors.Is(err, likes.ErrRateLimitExceeded):
		WriteError(w, http.StatusBadRequest, "RateLimitExceeded",
			fmt.Sprintf("You can only like a post %d times", likes.MaxLikesPerSession))
	case errors.Is(err, likes.ErrUnknownOutcome):
		h.log.Error("like outcome unknown", zap.String("path", r.URL.Path), zap.Error(err))
		WriteError(w, http.StatusGatewayTimeout, "UnknownOutcome", "The like may or may not have been recorded")
	case errors.Is(err, likes.ErrStoreUnavailable):
		h.log.Error("store unavailable", zap.String("path", r.URL.Path), zap.Error(err))
		WriteError(w, http.StatusServiceUnavailable, "StoreUnavailable", "Likes are temporarily unavailable")
	default:
		h.log.Error("likes request failed", zap.String("path", r.URL.Path), zap.Error(err))
		WriteError(w, http.StatusInternalServerError, "InternalError", "Internal server error")
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	// The status line is already sent; nothing useful can be done on failure.
	_ = json.NewEncoder(w).Encode(v)
}
