// internal/listing/handler.go
package listing

import (
	"encoding/json"
	"errors"
	"net/http"

	"foodwise/internal/geo"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the listing endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.handleCreate)
	r.Get("/", h.handleList)
	r.Get("/{id}", h.handleGet)
	r.Post("/{id}/withdraw", h.handleWithdraw)
	r.Delete("/{id}", h.handleDelete)
	return r
}

// listingResponse wraps a listing with the map affordance for its pickup
// location. The links are forwarded opaquely; an empty location simply omits
// them.
type listingResponse struct {
	*Listing
	MapLink  string `json:"map_link,omitempty"`
	MapEmbed string `json:"map_embed,omitempty"`
}

func toResponse(item *Listing) listingResponse {
	link, embed := geo.MapLinks(item.Location)
	return listingResponse{Listing: item, MapLink: link, MapEmbed: embed}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OwnerID      uuid.UUID `json:"owner_id"`
		Item         string    `json:"item"`
		Qty          string    `json:"qty"`
		Mode         string    `json:"mode"`
		Price        int       `json:"price"`
		Expiry       string    `json:"expiry"`
		PickupWindow string    `json:"pickup_window"`
		Location     string    `json:"location"`
		Contact      string    `json:"contact"`
		Dietary      []string  `json:"dietary"`
		Notes        string    `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.service.CreateListing(r.Context(), CreateRequest{
		OwnerID:      req.OwnerID,
		Item:         req.Item,
		Qty:          req.Qty,
		Mode:         req.Mode,
		Price:        req.Price,
		Expiry:       req.Expiry,
		PickupWindow: req.PickupWindow,
		Location:     req.Location,
		Contact:      req.Contact,
		Dietary:      req.Dietary,
		Notes:        req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toResponse(item))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	items, err := h.service.ListListings(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]listingResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toResponse(item))
	}
	json.NewEncoder(w).Encode(out)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid listing ID", http.StatusBadRequest)
		return
	}

	item, err := h.service.GetListing(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(toResponse(item))
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid listing ID", http.StatusBadRequest)
		return
	}
	ownerID, err := actorID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.WithdrawListing(r.Context(), id, ownerID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid listing ID", http.StatusBadRequest)
		return
	}
	ownerID, err := actorID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteListing(r.Context(), id, ownerID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// actorID reads the acting identity from the X-Actor-ID header. Operations
// always take the actor explicitly; there is no ambient session state.
func actorID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.Header.Get("X-Actor-ID"))
	if err != nil {
		return uuid.Nil, errors.New("missing or invalid X-Actor-ID header")
	}
	return id, nil
}

func writeError(w http.ResponseWriter, err error) {
	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrNotOwner):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrAlreadyConfirmed):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
