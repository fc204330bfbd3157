package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fjacquet/cashflow/internal/models"
	"fjacquet/cashflow/internal/projection"
)

// Projection handles GET /api/simulation/projection?months=&scenario_id=.
func (h *Handler) Projection(c *gin.Context) {
	months, ok := intOrDefault(c, "months", projection.DefaultMonths)
	if !ok {
		return
	}
	if months < projection.MinMonths || months > projection.MaxMonths {
		badRequest(c, fmt.Sprintf("months must be between %d and %d", projection.MinMonths, projection.MaxMonths))
		return
	}
	var scenarioID *uint
	if raw, err := optionalInt(c, "scenario_id"); err != nil {
		h.respondError(c, err)
		return
	} else if raw != nil {
		if *raw < 1 {
			badRequest(c, "invalid scenario_id")
			return
		}
		id := uint(*raw)
		scenarioID = &id
	}

	p, err := h.svc.Projection.Project(c.Request.Context(), months, scenarioID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DashboardSummary handles GET /api/dashboard/summary?year=.
func (h *Handler) DashboardSummary(c *gin.Context) {
	year, ok := intOrDefault(c, "year", h.Now().Year())
	if !ok {
		return
	}
	sum, err := h.svc.Analytics.Summary(c.Request.Context(), year)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// DashboardBreakdown handles GET /api/dashboard/breakdown?year=&month=.
func (h *Handler) DashboardBreakdown(c *gin.Context) {
	year, ok := intOrDefault(c, "year", h.Now().Year())
	if !ok {
		return
	}
	month, err := optionalInt(c, "month")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if month != nil && (*month < 1 || *month > 12) {
		badRequest(c, "month must be between 1 and 12")
		return
	}
	b, err := h.svc.Analytics.Breakdown(c.Request.Context(), year, month)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// AverageSpending handles GET /api/analytics/average-spending?source=&months=.
func (h *Handler) AverageSpending(c *gin.Context) {
	months, ok := intOrDefault(c, "months", 12)
	if !ok {
		return
	}
	if months < 1 || months > 60 {
		badRequest(c, "months must be between 1 and 60")
		return
	}
	source := strings.TrimSpace(c.DefaultQuery("source", models.SourceCard))

	out, err := h.svc.Analytics.AverageSpending(c.Request.Context(), source, months)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// HealthRatio handles GET /api/analytics/health?year=.
func (h *Handler) HealthRatio(c *gin.Context) {
	year, err := optionalInt(c, "year")
	if err != nil {
		h.respondError(c, err)
		return
	}
	out, err := h.svc.Analytics.HealthRatio(c.Request.Context(), year)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) ListCategories(c *gin.Context) {
	cats, err := h.svc.Ledger.ListCategories(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

func (h *Handler) SeedCategories(c *gin.Context) {
	n, err := h.svc.Ledger.SeedCategories(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inserted": n})
}
