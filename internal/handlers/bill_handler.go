package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"billing-backend/internal/invoice"
	"billing-backend/internal/middleware"
	"billing-backend/internal/models"
	"billing-backend/internal/services"
	"billing-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type BillHandler struct {
	Billing  *services.BillingService
	Stock    *services.StockService
	Settings *services.SettingsService
	PDF      *services.InvoicePDFService
}

func NewBillHandler(billing *services.BillingService, stock *services.StockService, settings *services.SettingsService, pdf *services.InvoicePDFService) *BillHandler {
	return &BillHandler{Billing: billing, Stock: stock, Settings: settings, PDF: pdf}
}

// CreateBill commits a cart. The company settings are loaded once per request
// and passed down so numbering and tax use one consistent snapshot.
func (h *BillHandler) CreateBill(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBillRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	settings, err := h.Settings.Load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	bill, err := h.Billing.CreateBill(r.Context(), &req, settings, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	h.archive(bill, settings)
	utils.JSON(w, http.StatusCreated, bill)
}

func (h *BillHandler) archive(bill *models.Bill, settings *models.CompanySettings) {
	if h.PDF == nil || h.PDF.Archive == nil {
		return
	}
	pdf, err := h.PDF.Render(bill, settings)
	if err != nil {
		log.Printf("[Archive] Render failed for %s: %v", bill.InvoiceNumber, err)
		return
	}
	h.PDF.ArchiveAsync(bill.InvoiceNumber, pdf)
}

func (h *BillHandler) PreviewBill(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBillRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	settings, err := h.Settings.Load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	bill, err := h.Billing.PreviewBill(r.Context(), &req, settings)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, bill)
}

// ListBills supports ?q= (invoice number, customer name or phone) and
// ?from=/?to= dates (YYYY-MM-DD, both inclusive).
func (h *BillHandler) ListBills(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "from")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "BAD_REQUEST", "from must be YYYY-MM-DD", nil)
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "BAD_REQUEST", "to must be YYYY-MM-DD", nil)
		return
	}
	if to != nil {
		end := to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		to = &end
	}

	bills, err := h.Billing.ListBills(r.Context(), models.BillFilter{
		Search: r.URL.Query().Get("q"),
		From:   from,
		To:     to,
		Limit:  queryInt(r, "limit", 0),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, bills)
}

func (h *BillHandler) GetBill(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	bill, err := h.Billing.GetBill(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, bill)
}

// GetBillByNumber takes the invoice number in slug form or URL-escaped,
// e.g. NH_0052_25-26 or NH%2F0052%2F25-26.
func (h *BillHandler) GetBillByNumber(w http.ResponseWriter, r *http.Request) {
	number := invoice.FromSlug(mux.Vars(r)["number"])
	bill, err := h.Billing.GetBillByInvoiceNumber(r.Context(), number)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, bill)
}

func (h *BillHandler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	bill, err := h.Billing.GetBill(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	settings, err := h.Settings.Load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	pdf, err := h.PDF.Render(bill, settings)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+services.FileName(bill.InvoiceNumber)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

func (h *BillHandler) ReturnBill(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.ReturnBillRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	ret, err := h.Stock.ReturnBill(r.Context(), id, &req, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, ret)
}
