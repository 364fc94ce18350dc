package ledger

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/platform/httpx"
	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/tenant"
)

// Handler manages ledger endpoints. Invoice numbers contain slashes, so
// they travel as the "invoice" query parameter, never a path segment.
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

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showLedger)
	r.Get("/export", h.exportLedger)
	r.Get("/payments", h.listPayments)
	r.Get("/history", h.showHistory)
	r.Post("/payments", h.recordPayment)
}

type ledgerRow struct {
	Entry
	Due    float64 `json:"due"`
	Status string  `json:"status"`
}

func (h *Handler) showLedger(w http.ResponseWriter, r *http.Request) {
	ten, _ := tenant.FromContext(r.Context())
	entries, err := h.service.BuildLedger(r.Context(), ten.ID)
	if err != nil {
		h.logger.Error("build ledger", slog.Int64("tenant", ten.ID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	rows := make([]ledgerRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, ledgerRow{Entry: e, Due: e.Due(), Status: e.Status()})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"entries": rows,
		"summary": h.service.Summarize(entries),
	})
}

func (h *Handler) exportLedger(w http.ResponseWriter, r *http.Request) {
	ten, _ := tenant.FromContext(r.Context())
	entries, err := h.service.BuildLedger(r.Context(), ten.ID)
	if err != nil {
		h.logger.Error("export ledger", slog.Int64("tenant", ten.ID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="ledger.csv"`)
	if err := WriteLedgerCSV(w, entries); err != nil {
		h.logger.Error("write ledger csv", slog.Int64("tenant", ten.ID), slog.Any("error", err))
	}
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	ten, _ := tenant.FromContext(r.Context())
	invoiceNo := r.URL.Query().Get("invoice")
	payments, err := h.service.PaymentHistory(r.Context(), ten.ID, invoiceNo)
	if err != nil {
		h.respondError(w, ten.ID, "list payments", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payments": payments})
}

func (h *Handler) showHistory(w http.ResponseWriter, r *http.Request) {
	ten, _ := tenant.FromContext(r.Context())
	invoiceNo := r.URL.Query().Get("invoice")
	if invoiceNo == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invoice query parameter required")
		return
	}
	history, err := h.service.History(r.Context(), ten.ID, invoiceNo)
	if err != nil {
		h.respondError(w, ten.ID, "invoice history", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"history": history})
}

type recordPaymentRequest struct {
	InvoiceNo string  `json:"invoice_no" validate:"required"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Date      string  `json:"date"`
	Remarks   string  `json:"remarks"`
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	ten, _ := tenant.FromContext(r.Context())
	var req recordPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input := PaymentInput{
		InvoiceNo: req.InvoiceNo,
		Amount:    req.Amount,
		Remark:    req.Remarks,
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
			return
		}
		input.Date = date
	}
	if err := h.service.RecordPayment(r.Context(), ten.ID, input); err != nil {
		h.respondError(w, ten.ID, "record payment", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

func (h *Handler) respondError(w http.ResponseWriter, tenantID int64, op string, err error) {
	switch {
	case errors.Is(err, ErrInvoiceNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "invoice not found")
	case errors.Is(err, tenant.ErrPoolTimeout):
		httpx.Problem(w, http.StatusServiceUnavailable, "Busy", "database busy, retry later")
	default:
		h.logger.Error(op, slog.Int64("tenant", tenantID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
