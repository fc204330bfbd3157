// Package api exposes the ledger over HTTP with gin. Every route lives under
// /api and answers JSON.
package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fjacquet/cashflow/internal/analytics"
	"fjacquet/cashflow/internal/importer"
	"fjacquet/cashflow/internal/ledger"
	"fjacquet/cashflow/internal/logging"
	"fjacquet/cashflow/internal/projection"
)

func init() {
	// Amounts travel as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Services are the collaborators behind the handlers.
type Services struct {
	Importer   *importer.Service
	Ledger     *ledger.Service
	Projection *projection.Engine
	Analytics  *analytics.Service
}

// Options tune the router.
type Options struct {
	// CORSOrigins lists the browser origins allowed to call the API. "*"
	// allows any origin.
	CORSOrigins []string
	// MaxUploadBytes bounds the in-memory part of a multipart upload.
	MaxUploadBytes int64
}

// Handler serves the HTTP routes.
type Handler struct {
	svc    Services
	logger logging.Logger
	// Now is the clock used for default periods; tests replace it.
	Now func() time.Time
}

// NewHandler returns a Handler over svc.
func NewHandler(svc Services, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Handler{svc: svc, logger: logger, Now: time.Now}
}

// NewRouter builds the gin engine with recovery, request logging and CORS.
func NewRouter(h *Handler, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.logger))
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))
	if opts.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = opts.MaxUploadBytes
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Finance API is running"})
	})

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	tx := api.Group("/transactions")
	tx.GET("", h.ListTransactions)
	tx.POST("", h.CreateTransaction)
	tx.POST("/upload", h.UploadStatements)
	tx.POST("/project", h.MaterializeMonth)
	tx.POST("/bulk-delete", h.BulkDeleteTransactions)
	tx.POST("/batch-delete", h.BatchDeleteTransactions)
	tx.POST("/auto-categorize", h.AutoCategorize)
	tx.POST("/pay-invoice", h.PayInvoice)
	tx.GET("/:id", h.GetTransaction)
	tx.PATCH("/:id", h.UpdateTransaction)
	tx.DELETE("/:id", h.DeleteTransaction)

	recurring := api.Group("/recurring")
	recurring.GET("", h.ListTemplates)
	recurring.POST("", h.CreateTemplate)
	recurring.GET("/:id", h.GetTemplate)
	recurring.PUT("/:id", h.UpdateTemplate)
	recurring.DELETE("/:id", h.DeleteTemplate)

	scenarios := api.Group("/scenarios")
	scenarios.GET("", h.ListScenarios)
	scenarios.POST("", h.CreateScenario)
	scenarios.GET("/:id", h.GetScenario)
	scenarios.DELETE("/:id", h.DeleteScenario)
	scenarios.POST("/:id/items", h.AddScenarioItem)
	scenarios.DELETE("/:id/items/:item_id", h.DeleteScenarioItem)

	api.GET("/simulation/projection", h.Projection)

	dashboard := api.Group("/dashboard")
	dashboard.GET("/summary", h.DashboardSummary)
	dashboard.GET("/breakdown", h.DashboardBreakdown)

	stats := api.Group("/analytics")
	stats.GET("/average-spending", h.AverageSpending)
	stats.GET("/health", h.HealthRatio)

	categories := api.Group("/categories")
	categories.GET("", h.ListCategories)
	categories.POST("/seed", h.SeedCategories)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []logging.Field{
			logging.F(logging.FieldMethod, c.Request.Method),
			logging.F(logging.FieldPath, c.FullPath()),
			logging.F(logging.FieldStatus, c.Writer.Status()),
			logging.F(logging.FieldDuration, time.Since(start).Milliseconds()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("Request failed", fields...)
			return
		}
		logger.Debug("Request served", fields...)
	}
}
