// internal/claim/handler.go
package claim

import (
	"encoding/json"
	"errors"
	"net/http"

	"foodwise/internal/listing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the claim endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.handleClaim)
	r.Get("/listing/{listingID}", h.handleClaimsFor)
	r.Post("/listing/{listingID}/unavailable", h.handleMarkUnavailable)
	return r
}

func (h *Handler) handleClaim(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ListingID  uuid.UUID `json:"listing_id"`
		ClaimantID uuid.UUID `json:"claimant_id"`
		Contact    string    `json:"contact"`
		Location   string    `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.service.Claim(r.Context(), req.ListingID, req.ClaimantID, req.Contact, req.Location)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(c)
}

func (h *Handler) handleClaimsFor(w http.ResponseWriter, r *http.Request) {
	listingID, err := uuid.Parse(chi.URLParam(r, "listingID"))
	if err != nil {
		http.Error(w, "invalid listing ID", http.StatusBadRequest)
		return
	}

	claims, err := h.service.ClaimsFor(r.Context(), listingID)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(claims)
}

func (h *Handler) handleMarkUnavailable(w http.ResponseWriter, r *http.Request) {
	listingID, err := uuid.Parse(chi.URLParam(r, "listingID"))
	if err != nil {
		http.Error(w, "invalid listing ID", http.StatusBadRequest)
		return
	}
	ownerID, err := uuid.Parse(r.Header.Get("X-Actor-ID"))
	if err != nil {
		http.Error(w, "missing or invalid X-Actor-ID header", http.StatusBadRequest)
		return
	}

	if err := h.service.MarkUnavailable(r.Context(), listingID, ownerID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, listing.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, listing.ErrNotOwner):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, listing.ErrAlreadyConfirmed),
		errors.Is(err, ErrAlreadyClaimed),
		errors.Is(err, ErrSelfClaim),
		errors.Is(err, ErrDuplicateClaimant):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
