package masterdata

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/platform/httpx"
	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/tenant"
)

// Handler manages party and item endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes registers master-data routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/parties", func(r chi.Router) {
		r.Get("/", h.listParties)
		r.Get("/{id}", h.showParty)
		r.Post("/", h.createParty)
		r.Put("/{id}", h.updateParty)
	})
	r.Route("/items", func(r chi.Router) {
		r.Get("/", h.listItems)
		r.Get("/{id}", h.showItem)
		r.Post("/", h.createItem)
		r.Put("/{id}", h.updateItem)
	})
}

type partyRequest struct {
	Name      string `json:"name" validate:"required"`
	GSTIN     string `json:"gstin"`
	Address   string `json:"address"`
	State     string `json:"state"`
	StateCode string `json:"state_code"`
	Phone     string `json:"phone"`
	Email     string `json:"email" validate:"omitempty,email"`
}

type itemRequest struct {
	Name    string  `json:"name" validate:"required"`
	HSNCode string  `json:"hsn_code"`
	Unit    string  `json:"unit"`
	Rate    float64 `json:"rate" validate:"gte=0"`
}

func (h *Handler) listParties(w http.ResponseWriter, r *http.Request) {
	ten, _ := tenant.FromContext(r.Context())
	parties, err := h.service.ListParties(r.Context(), ten.ID)
	if err != nil {
		h.respondError(w, ten.ID, "list parties", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"parties": parties})
}

func (h *Handler) showParty(w http.ResponseWriter, r *http.Request) {
	ten, _ := tenant.FromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	p, err := h.service.GetParty(r.Context(), ten.ID, id)
	if err != nil {
		h.respondError(w, ten.ID, "show party", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"party": p})
}

func (h *Handler) createParty(w http.ResponseWriter, r *http.Request) {
	ten, _ := tenant.FromContext(r.Context())
	req, ok := decodeValid[partyRequest](h, w, r)
	if !ok {
		return
	}
	id, err := h.service.CreateParty(r.Context(), ten.ID, partyFromRequest(req, 0))
	if err != nil {
		h.respondError(w, ten.ID, "create party", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) updateParty(w http.ResponseWriter, r *http.Request) {
	ten, _ := tenant.FromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	req, ok := decodeValid[partyRequest](h, w, r)
	if !ok {
		return
	}
	if err := h.service.UpdateParty(r.Context(), ten.ID, partyFromRequest(req, id)); err != nil {
		h.respondError(w, ten.ID, "update party", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	ten, _ := tenant.FromContext(r.Context())
	items, err := h.service.ListItems(r.Context(), ten.ID)
	if err != nil {
		h.respondError(w, ten.ID, "list items", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) showItem(w http.ResponseWriter, r *http.Request) {
	ten, _ := tenant.FromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	it, err := h.service.GetItem(r.Context(), ten.ID, id)
	if err != nil {
		h.respondError(w, ten.ID, "show item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"item": it})
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	ten, _ := tenant.FromContext(r.Context())
	req, ok := decodeValid[itemRequest](h, w, r)
	if !ok {
		return
	}
	id, err := h.service.CreateItem(r.Context(), ten.ID, itemFromRequest(req, 0))
	if err != nil {
		h.respondError(w, ten.ID, "create item", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	ten, _ := tenant.FromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	req, ok := decodeValid[itemRequest](h, w, r)
	if !ok {
		return
	}
	if err := h.service.UpdateItem(r.Context(), ten.ID, itemFromRequest(req, id)); err != nil {
		h.respondError(w, ten.ID, "update item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) respondError(w http.ResponseWriter, tenantID int64, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "party or item not found")
	case errors.Is(err, tenant.ErrPoolTimeout):
		httpx.Problem(w, http.StatusServiceUnavailable, "Busy", "database busy, retry later")
	default:
		h.logger.Error(op, slog.Int64("tenant", tenantID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return 0, false
	}
	return id, true
}

func decodeValid[T any](h *Handler, w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return req, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return req, false
	}
	return req, true
}

func partyFromRequest(req partyRequest, id int64) Party {
	return Party{
		ID:        id,
		Name:      req.Name,
		GSTIN:     req.GSTIN,
		Address:   req.Address,
		State:     req.State,
		StateCode: req.StateCode,
		Phone:     req.Phone,
		Email:     req.Email,
	}
}

func itemFromRequest(req itemRequest, id int64) Item {
	return Item{
		ID:      id,
		Name:    req.Name,
		HSNCode: req.HSNCode,
		Unit:    req.Unit,
		Rate:    req.Rate,
	}
}
