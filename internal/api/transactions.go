package api

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fjacquet/cashflow/internal/importer"
	"fjacquet/cashflow/internal/ledger"
	"fjacquet/cashflow/internal/models"
	"fjacquet/cashflow/internal/store"
)

type transactionRequest struct {
	Date           string                 `json:"date" binding:"required"`
	ReferenceDate  *string                `json:"reference_date"`
	Description    string                 `json:"description" binding:"required"`
	Amount         decimal.Decimal        `json:"amount"`
	Type           models.TransactionType `json:"type" binding:"required"`
	CategoryLegacy string                 `json:"category_legacy"`
	SourceType     string                 `json:"source_type"`
	IsRecurring    bool                   `json:"is_recurring"`
	ManualTag      string                 `json:"manual_tag"`
}

type transactionPatchRequest struct {
	Date           *string                 `json:"date"`
	ReferenceDate  *string                 `json:"reference_date"`
	Description    *string                 `json:"description"`
	Amount         *decimal.Decimal        `json:"amount"`
	Type           *models.TransactionType `json:"type"`
	CategoryLegacy *string                 `json:"category_legacy"`
	CategoryID     *uint                   `json:"category_id"`
	ManualTag      *string                 `json:"manual_tag"`
	IsRecurring    *bool                   `json:"is_recurring"`
}

type listQuery struct {
	Skip        int    `form:"skip"`
	Limit       int    `form:"limit"`
	Month       int    `form:"month"`
	Year        int    `form:"year"`
	Category    string `form:"category"`
	Search      string `form:"search"`
	IsRecurring *bool  `form:"is_recurring"`
	SourceType  string `form:"source_type"`
	Unverified  bool   `form:"unverified_only"`
}

type periodRequest struct {
	Month int `json:"month" form:"month"`
	Year  int `json:"year" form:"year"`
}

type batchDeleteRequest struct {
	Month      int    `json:"month"`
	Year       int    `json:"year"`
	SourceType string `json:"source_type"`
	CategoryID *uint  `json:"category_id"`
}

type autoCategorizeRequest struct {
	Limit int  `json:"limit"`
	Month int  `json:"month"`
	Year  int  `json:"year"`
	Force bool `json:"force"`
}

type payInvoiceRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Date   *string         `json:"date"`
}

// ListTransactions handles GET /api/transactions.
func (h *Handler) ListTransactions(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "invalid query: "+err.Error())
		return
	}
	page, err := h.svc.Ledger.List(c.Request.Context(), store.TransactionFilter{
		Month:          q.Month,
		Year:           q.Year,
		Category:       q.Category,
		Search:         strings.TrimSpace(q.Search),
		IsRecurring:    q.IsRecurring,
		SourceType:     q.SourceType,
		UnverifiedOnly: q.Unverified,
		Skip:           q.Skip,
		Limit:          q.Limit,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetTransaction handles GET /api/transactions/:id.
func (h *Handler) GetTransaction(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	tx, err := h.svc.Ledger.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// CreateTransaction handles POST /api/transactions.
func (h *Handler) CreateTransaction(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload: "+err.Error())
		return
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ref, err := parseOptionalDate("reference_date", req.ReferenceDate)
	if err != nil {
		h.respondError(c, err)
		return
	}

	tx, err := h.svc.Ledger.Create(c.Request.Context(), ledger.NewTransaction{
		Date:          date,
		ReferenceDate: ref,
		Description:   req.Description,
		Amount:        req.Amount,
		Type:          req.Type,
		Category:      req.CategoryLegacy,
		SourceType:    req.SourceType,
		IsRecurring:   req.IsRecurring,
		ManualTag:     req.ManualTag,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}

// UpdateTransaction handles PATCH /api/transactions/:id.
func (h *Handler) UpdateTransaction(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req transactionPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload: "+err.Error())
		return
	}

	patch := ledger.TransactionPatch{
		Description: req.Description,
		Amount:      req.Amount,
		Type:        req.Type,
		Category:    req.CategoryLegacy,
		CategoryID:  req.CategoryID,
		ManualTag:   req.ManualTag,
		IsRecurring: req.IsRecurring,
	}
	var err error
	if patch.Date, err = parseOptionalDate("date", req.Date); err != nil {
		h.respondError(c, err)
		return
	}
	if patch.ReferenceDate, err = parseOptionalDate("reference_date", req.ReferenceDate); err != nil {
		h.respondError(c, err)
		return
	}

	tx, err := h.svc.Ledger.Update(c.Request.Context(), id, patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// DeleteTransaction handles DELETE /api/transactions/:id.
func (h *Handler) DeleteTransaction(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Ledger.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// BulkDeleteTransactions handles POST /api/transactions/bulk-delete.
func (h *Handler) BulkDeleteTransactions(c *gin.Context) {
	var req struct {
		IDs []uuid.UUID `json:"ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload: "+err.Error())
		return
	}
	if _, err := h.svc.Ledger.BulkDelete(c.Request.Context(), req.IDs); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// BatchDeleteTransactions handles POST /api/transactions/batch-delete.
func (h *Handler) BatchDeleteTransactions(c *gin.Context) {
	var req batchDeleteRequest
	if !bindBody(c, &req) {
		return
	}
	n, err := h.svc.Ledger.BatchDelete(c.Request.Context(), store.BatchDeleteFilter{
		Month:      req.Month,
		Year:       req.Year,
		SourceType: req.SourceType,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

// AutoCategorize handles POST /api/transactions/auto-categorize.
func (h *Handler) AutoCategorize(c *gin.Context) {
	var req autoCategorizeRequest
	if !bindBody(c, &req) {
		return
	}
	res, err := h.svc.Ledger.AutoCategorize(c.Request.Context(), ledger.AutoCategorizeRequest{
		Limit: req.Limit,
		Month: req.Month,
		Year:  req.Year,
		Force: req.Force,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PayInvoice handles POST /api/transactions/pay-invoice.
func (h *Handler) PayInvoice(c *gin.Context) {
	var req payInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload: "+err.Error())
		return
	}
	date, err := parseOptionalDate("date", req.Date)
	if err != nil {
		h.respondError(c, err)
		return
	}
	p := ledger.InvoicePayment{Amount: req.Amount}
	if date != nil {
		p.Date = *date
	}

	legs, err := h.svc.Ledger.PayInvoice(c.Request.Context(), p)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "transactions": legs})
}

// MaterializeMonth handles POST /api/transactions/project. The period comes
// from a JSON body or from the month and year query parameters.
func (h *Handler) MaterializeMonth(c *gin.Context) {
	var req periodRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid payload: "+err.Error())
			return
		}
	} else if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "invalid query: "+err.Error())
		return
	}

	n, err := h.svc.Ledger.Materialize(c.Request.Context(), req.Year, req.Month)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": fmt.Sprintf("Generated %d transactions for %d/%d", n, req.Month, req.Year),
		"count":   n,
	})
}

// UploadStatements handles POST /api/transactions/upload. Files come in the
// multipart fields "files" or "file"; reference_year and reference_month
// optionally override the accounting month.
func (h *Handler) UploadStatements(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, "multipart form required")
		return
	}
	headers := append(append([]*multipart.FileHeader{}, form.File["files"]...), form.File["file"]...)
	if len(headers) == 0 {
		badRequest(c, "at least one file is required")
		return
	}

	year, err := optionalInt(c, "reference_year")
	if err != nil {
		h.respondError(c, err)
		return
	}
	month, err := optionalInt(c, "reference_month")
	if err != nil {
		h.respondError(c, err)
		return
	}
	period, err := importer.NewPeriod(year, month)
	if err != nil {
		h.respondError(c, err)
		return
	}

	uploads := make([]importer.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			h.respondError(c, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err))
			return
		}
		defer f.Close()
		uploads = append(uploads, importer.Upload{Filename: fh.Filename, Content: f})
	}

	report := h.svc.Importer.ImportFiles(c.Request.Context(), uploads, period)
	c.JSON(http.StatusOK, report)
}
