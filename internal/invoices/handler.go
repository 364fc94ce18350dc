package invoices

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

// Handler manages invoice endpoints.
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

// MountRoutes registers invoice routes. Document numbers contain
// slashes, so cancellation takes the number in the request body.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listInvoices)
	r.Get("/{id}", h.showInvoice)
	r.Post("/", h.createInvoice)
	r.Post("/cancel", h.cancelInvoice)
}

type itemRequest struct {
	ItemID   int64   `json:"item_id" validate:"required,gt=0"`
	Quantity float64 `json:"quantity" validate:"required,gt=0"`
}

type detailRequest struct {
	TransportName string `json:"transport_name"`
	VehicleNo     string `json:"vehicle_no"`
	LRNo          string `json:"lr_no"`
	EwayBillNo    string `json:"eway_bill_no"`
	PlaceOfSupply string `json:"place_of_supply"`
	BankName      string `json:"bank_name"`
	AccountNo     string `json:"account_no"`
	IFSCCode      string `json:"ifsc_code"`
}

type createInvoiceRequest struct {
	Number   string        `json:"number"`
	Type     string        `json:"type" validate:"omitempty,oneof=SALE PURCHASE"`
	PartyID  int64         `json:"party_id" validate:"required,gt=0"`
	Date     string        `json:"date"`
	Subtotal float64       `json:"subtotal" validate:"gte=0"`
	CGSTRate float64       `json:"cgst_rate" validate:"gte=0"`
	SGSTRate float64       `json:"sgst_rate" validate:"gte=0"`
	Terms    string        `json:"terms"`
	Detail   detailRequest `json:"detail"`
	Items    []itemRequest `json:"items" validate:"dive"`
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	ten, _ := tenant.FromContext(r.Context())
	var req createInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	input := CreateInput{
		Number:   req.Number,
		Type:     TransactionType(req.Type),
		PartyID:  req.PartyID,
		Subtotal: req.Subtotal,
		CGSTRate: req.CGSTRate,
		SGSTRate: req.SGSTRate,
		Terms:    req.Terms,
		Detail: Detail{
			TransportName: req.Detail.TransportName,
			VehicleNo:     req.Detail.VehicleNo,
			LRNo:          req.Detail.LRNo,
			EwayBillNo:    req.Detail.EwayBillNo,
			PlaceOfSupply: req.Detail.PlaceOfSupply,
			BankName:      req.Detail.BankName,
			AccountNo:     req.Detail.AccountNo,
			IFSCCode:      req.Detail.IFSCCode,
		},
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
			return
		}
		input.Date = date
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, ItemInput{ItemID: item.ItemID, Quantity: item.Quantity})
	}

	id, number, err := h.service.Create(r.Context(), ten.ID, input)
	if err != nil {
		var dup *DuplicateNumberError
		if errors.As(err, &dup) {
			// resubmission of an already-saved document
			httpx.JSON(w, http.StatusOK, map[string]any{
				"id":        dup.ExistingID,
				"number":    dup.Number,
				"duplicate": true,
			})
			return
		}
		h.respondError(w, ten.ID, "create invoice", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": id, "number": number})
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	ten, _ := tenant.FromContext(r.Context())
	invoices, err := h.service.List(r.Context(), ten.ID)
	if err != nil {
		h.respondError(w, ten.ID, "list invoices", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoices": invoices})
}

func (h *Handler) showInvoice(w http.ResponseWriter, r *http.Request) {
	ten, _ := tenant.FromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice id")
		return
	}
	inv, detail, items, err := h.service.Get(r.Context(), ten.ID, id)
	if err != nil {
		h.respondError(w, ten.ID, "show invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"invoice": inv,
		"detail":  detail,
		"items":   items,
	})
}

type cancelInvoiceRequest struct {
	Number string `json:"number" validate:"required"`
}

func (h *Handler) cancelInvoice(w http.ResponseWriter, r *http.Request) {
	ten, _ := tenant.FromContext(r.Context())
	var req cancelInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.Cancel(r.Context(), ten.ID, req.Number); err != nil {
		h.respondError(w, ten.ID, "cancel invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (h *Handler) respondError(w http.ResponseWriter, tenantID int64, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "document not found")
	case errors.Is(err, ErrMissingItemReference):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "every line item needs an item reference")
	case errors.Is(err, tenant.ErrPoolTimeout):
		httpx.Problem(w, http.StatusServiceUnavailable, "Busy", "database busy, retry later")
	default:
		h.logger.Error(op, slog.Int64("tenant", tenantID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
