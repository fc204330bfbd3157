package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fjacquet/cashflow/internal/ledger"
	"fjacquet/cashflow/internal/models"
)

type scenarioItemRequest struct {
	Description  string                 `json:"description" binding:"required"`
	Amount       decimal.Decimal        `json:"amount"`
	Type         models.TransactionType `json:"type" binding:"required"`
	StartDate    string                 `json:"start_date" binding:"required"`
	Installments int                    `json:"installments"`
	IsRecurring  bool                   `json:"is_recurring"`
	SourceType   string                 `json:"source_type"`
}

type scenarioRequest struct {
	Name        string                `json:"name" binding:"required"`
	Description string                `json:"description"`
	Items       []scenarioItemRequest `json:"items"`
}

func (r scenarioItemRequest) toModel(field string) (models.ScenarioItem, error) {
	start, err := parseDate(field, r.StartDate)
	if err != nil {
		return models.ScenarioItem{}, err
	}
	return models.ScenarioItem{
		Description:  r.Description,
		Amount:       r.Amount,
		Type:         r.Type,
		StartDate:    start,
		Installments: r.Installments,
		IsRecurring:  r.IsRecurring,
		SourceType:   r.SourceType,
	}, nil
}

func (h *Handler) ListScenarios(c *gin.Context) {
	scenarios, err := h.svc.Ledger.ListScenarios(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scenarios)
}

func (h *Handler) GetScenario(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	sc, err := h.svc.Ledger.GetScenario(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sc)
}

func (h *Handler) CreateScenario(c *gin.Context) {
	var req scenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload: "+err.Error())
		return
	}
	in := ledger.NewScenario{Name: req.Name, Description: req.Description}
	for i, item := range req.Items {
		m, err := item.toModel(fmt.Sprintf("items[%d].start_date", i))
		if err != nil {
			h.respondError(c, err)
			return
		}
		in.Items = append(in.Items, m)
	}

	sc, err := h.svc.Ledger.CreateScenario(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sc)
}

// AddScenarioItem handles POST /api/scenarios/:id/items and answers with
// the updated scenario.
func (h *Handler) AddScenarioItem(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req scenarioItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload: "+err.Error())
		return
	}
	item, err := req.toModel("start_date")
	if err != nil {
		h.respondError(c, err)
		return
	}

	sc, err := h.svc.Ledger.AddScenarioItem(c.Request.Context(), id, item)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sc)
}

func (h *Handler) DeleteScenario(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Ledger.DeleteScenario(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Scenario deleted successfully"})
}

func (h *Handler) DeleteScenarioItem(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := uintParam(c, "item_id")
	if !ok {
		return
	}
	if err := h.svc.Ledger.DeleteScenarioItem(c.Request.Context(), id, itemID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
