package quotations

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/platform/httpx"
	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/tenant"
)

// Handler manages quotation endpoints.
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

// MountRoutes registers quotation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listQuotations)
	r.Get("/{id}", h.showQuotation)
	r.Post("/", h.createQuotation)
	r.Put("/{id}", h.updateQuotation)
	r.Post("/{id}/status", h.updateStatus)
	r.Delete("/{id}", h.deleteQuotation)
}

type lineRequest struct {
	ItemID   int64   `json:"item_id" validate:"required,gt=0"`
	Quantity float64 `json:"quantity" validate:"required,gt=0"`
	Rate     float64 `json:"rate" validate:"gte=0"`
}

type quotationRequest struct {
	PartyID  int64         `json:"party_id" validate:"required,gt=0"`
	Date     string        `json:"date"`
	Subtotal float64       `json:"subtotal" validate:"gte=0"`
	CGSTRate float64       `json:"cgst_rate" validate:"gte=0"`
	SGSTRate float64       `json:"sgst_rate" validate:"gte=0"`
	Terms    string        `json:"terms"`
	Lines    []lineRequest `json:"lines" validate:"dive"`
}

func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (CreateInput, bool) {
	var req quotationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return CreateInput{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return CreateInput{}, false
	}
	input := CreateInput{
		PartyID:  req.PartyID,
		Subtotal: req.Subtotal,
		CGSTRate: req.CGSTRate,
		SGSTRate: req.SGSTRate,
		Terms:    req.Terms,
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
			return CreateInput{}, false
		}
		input.Date = date
	}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, LineInput{
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
			Rate:     line.Rate,
		})
	}
	return input, true
}

func (h *Handler) createQuotation(w http.ResponseWriter, r *http.Request) {
	ten, _ := tenant.FromContext(r.Context())
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	id, number, err := h.service.Create(r.Context(), ten.ID, input)
	if err != nil {
		var dup *DuplicateNumberError
		if errors.As(err, &dup) {
			httpx.JSON(w, http.StatusOK, map[string]any{
				"id":        dup.ExistingID,
				"number":    dup.Number,
				"duplicate": true,
			})
			return
		}
		h.respondError(w, ten.ID, "create quotation", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": id, "number": number})
}

func (h *Handler) listQuotations(w http.ResponseWriter, r *http.Request) {
	ten, _ := tenant.FromContext(r.Context())
	quotations, err := h.service.List(r.Context(), ten.ID)
	if err != nil {
		h.respondError(w, ten.ID, "list quotations", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"quotations": quotations})
}

func (h *Handler) showQuotation(w http.ResponseWriter, r *http.Request) {
	ten, _ := tenant.FromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid quotation id")
		return
	}
	q, err := h.service.Get(r.Context(), ten.ID, id)
	if err != nil {
		h.respondError(w, ten.ID, "show quotation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"quotation": q})
}

func (h *Handler) updateQuotation(w http.ResponseWriter, r *http.Request) {
	ten, _ := tenant.FromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid quotation id")
		return
	}
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	if err := h.service.Update(r.Context(), ten.ID, id, input); err != nil {
		h.respondError(w, ten.ID, "update quotation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=Converted Rejected"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	ten, _ := tenant.FromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid quotation id")
		return
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.UpdateStatus(r.Context(), ten.ID, id, Status(req.Status)); err != nil {
		h.respondError(w, ten.ID, "update quotation status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

func (h *Handler) deleteQuotation(w http.ResponseWriter, r *http.Request) {
	ten, _ := tenant.FromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid quotation id")
		return
	}
	if err := h.service.Delete(r.Context(), ten.ID, id); err != nil {
		h.respondError(w, ten.ID, "delete quotation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) respondError(w http.ResponseWriter, tenantID int64, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "quotation not found")
	case errors.Is(err, ErrInvalidTransition):
		httpx.Problem(w, http.StatusConflict, "Invalid Transition", "only pending quotations can change status")
	case errors.Is(err, ErrMissingItemReference):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "every line needs an item reference")
	case errors.Is(err, tenant.ErrPoolTimeout):
		httpx.Problem(w, http.StatusServiceUnavailable, "Busy", "database busy, retry later")
	default:
		h.logger.Error(op, slog.Int64("tenant", tenantID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
