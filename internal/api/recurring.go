package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fjacquet/cashflow/internal/ledger"
	"fjacquet/cashflow/internal/models"
)

type templateRequest struct {
	Description    string                 `json:"description" binding:"required"`
	Amount         decimal.Decimal        `json:"amount"`
	Type           models.TransactionType `json:"type" binding:"required"`
	CategoryID     *uint                  `json:"category_id"`
	CategoryLegacy string                 `json:"category_legacy"`
	IsActive       *bool                  `json:"is_active"`
	DayOfMonth     int                    `json:"day_of_month"`
	StartDate      string                 `json:"start_date" binding:"required"`
	EndDate        *string                `json:"end_date"`
	SourceType     string                 `json:"source_type"`
}

type templatePatchRequest struct {
	Description    *string                 `json:"description"`
	Amount         *decimal.Decimal        `json:"amount"`
	Type           *models.TransactionType `json:"type"`
	CategoryID     *uint                   `json:"category_id"`
	CategoryLegacy *string                 `json:"category_legacy"`
	IsActive       *bool                   `json:"is_active"`
	DayOfMonth     *int                    `json:"day_of_month"`
	StartDate      *string                 `json:"start_date"`
	EndDate        *string                 `json:"end_date"`
	ClearEndDate   bool                    `json:"clear_end_date"`
	SourceType     *string                 `json:"source_type"`
}

func (h *Handler) ListTemplates(c *gin.Context) {
	templates, err := h.svc.Ledger.ListTemplates(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (h *Handler) GetTemplate(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	t, err := h.svc.Ledger.GetTemplate(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) CreateTemplate(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload: "+err.Error())
		return
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		h.respondError(c, err)
		return
	}
	end, err := parseOptionalDate("end_date", req.EndDate)
	if err != nil {
		h.respondError(c, err)
		return
	}

	t, err := h.svc.Ledger.CreateTemplate(c.Request.Context(), ledger.NewTemplate{
		Description: req.Description,
		Amount:      req.Amount,
		Type:        req.Type,
		Category:    req.CategoryLegacy,
		CategoryID:  req.CategoryID,
		IsActive:    req.IsActive,
		DayOfMonth:  req.DayOfMonth,
		StartDate:   start,
		EndDate:     end,
		SourceType:  req.SourceType,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// UpdateTemplate handles PUT /api/recurring/:id. Omitted fields keep their
// value.
func (h *Handler) UpdateTemplate(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req templatePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload: "+err.Error())
		return
	}

	patch := ledger.TemplatePatch{
		Description:  req.Description,
		Amount:       req.Amount,
		Type:         req.Type,
		Category:     req.CategoryLegacy,
		CategoryID:   req.CategoryID,
		IsActive:     req.IsActive,
		DayOfMonth:   req.DayOfMonth,
		ClearEndDate: req.ClearEndDate,
		SourceType:   req.SourceType,
	}
	var err error
	if patch.StartDate, err = parseOptionalDate("start_date", req.StartDate); err != nil {
		h.respondError(c, err)
		return
	}
	if patch.EndDate, err = parseOptionalDate("end_date", req.EndDate); err != nil {
		h.respondError(c, err)
		return
	}

	t, err := h.svc.Ledger.UpdateTemplate(c.Request.Context(), id, patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTemplate(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Ledger.DeleteTemplate(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recurring transaction deleted"})
}
