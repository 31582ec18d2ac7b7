package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/ryhazerus/likes"
	"go.uber.org/zap"
)

// Service is the subset of *likes.Service the handlers need.
type Service interface {
	GetAggregate(ctx context.Context) (int64, error)
	GetForItem(ctx context.Context, itemKey, clientAddress string) (likes.ItemLikes, error)
	ApplyLike(ctx context.Context, itemKey, clientAddress string, delta int64) (int64, error)
}

// Handler serves the likes endpoints.
type Handler struct {
	svc Service
	log *zap.Logger
}

// NewHandler creates a Handler. A nil log discards output.
func NewHandler(svc Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log}
}

type likesResponse struct {
	Likes int64 `json:"likes"`
}

type itemLikesResponse struct {
	Likes            int64 `json:"likes"`
	CurrentUserLikes int64 `json:"currentUserLikes"`
}

type applyLikeRequest struct {
	Value *int64 `json:"value"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HandleGetAggregate returns the total likes across all items.
// GET /api/likes
func (h *Handler) HandleGetAggregate(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.GetAggregate(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, likesResponse{Likes: n})
}

// HandleGetItem returns an item's likes and the caller's own likes on it.
// GET /api/likes/{slug}
func (h *Handler) HandleGetItem(w http.ResponseWriter, r *http.Request) {
	got, err := h.svc.GetForItem(r.Context(), chi.URLParam(r, "slug"), ClientAddress(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, itemLikesResponse{Likes: got.Likes, CurrentUserLikes: got.CurrentUserLikes})
}

// HandleApplyLike adds likes to an item on behalf of the caller.
// PATCH /api/likes/{slug}
//
// Request body: { "value": 1 | 2 | 3 }
func (h *Handler) HandleApplyLike(w http.ResponseWriter, r *http.Request) {
	var req applyLikeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	if req.Value == nil {
		WriteError(w, http.StatusBadRequest, "InvalidRequest", "value is required")
		return
	}

	n, err := h.svc.ApplyLike(r.Context(), chi.URLParam(r, "slug"), ClientAddress(r), *req.Value)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, likesResponse{Likes: n})
}

// ClientAddress returns the caller's address as reported by a fronting
// proxy: the first X-Forwarded-For hop, else X-Real-IP. It returns "" when
// neither header is present, leaving the service to apply its placeholder.
func ClientAddress(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if addr := strings.TrimSpace(first); addr != "" {
			return addr
		}
	}
	return strings.TrimSpace(r.Header.Get("X-Real-IP"))
}
