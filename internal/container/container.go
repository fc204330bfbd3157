// Package container wires the application's dependencies from configuration.
// Commands build one Container and pull the services they need from it.
package container

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	gormlogger "gorm.io/gorm/logger"

	"fjacquet/cashflow/internal/analytics"
	"fjacquet/cashflow/internal/api"
	"fjacquet/cashflow/internal/categorizer"
	"fjacquet/cashflow/internal/config"
	"fjacquet/cashflow/internal/dedup"
	"fjacquet/cashflow/internal/importer"
	"fjacquet/cashflow/internal/ledger"
	"fjacquet/cashflow/internal/logging"
	"fjacquet/cashflow/internal/models"
	"fjacquet/cashflow/internal/projection"
	"fjacquet/cashflow/internal/scheduler"
	"fjacquet/cashflow/internal/similarity"
	"fjacquet/cashflow/internal/statement"
	"fjacquet/cashflow/internal/store"
)

// Container holds the wired services. Fields are private; use the getters.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	store       *store.Store
	gemini      *categorizer.GeminiClient
	categorizer *categorizer.Categorizer

	importer   *importer.Service
	ledger     *ledger.Service
	projection *projection.Engine
	analytics  *analytics.Service
	scheduler  *scheduler.Scheduler
}

// NewContainer opens the store and builds every service on top of it. The
// caller must Close the container.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)

	st, err := store.Open(store.Options{
		Driver:        cfg.Store.Driver,
		DSN:           cfg.Store.DSN,
		HashChunkSize: cfg.Store.HashChunkSize,
		LogLevel:      gormLogLevel(cfg.Log.Level),
	}, logger)
	if err != nil {
		return nil, err
	}

	c := &Container{logger: logger, config: cfg, store: st}
	if err := c.wire(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}

	logger.Info("Container initialized successfully",
		logging.F("driver", cfg.Store.Driver),
		logging.F("ai_enabled", c.gemini != nil),
		logging.F("scheduler_enabled", c.scheduler != nil))
	return c, nil
}

func (c *Container) wire(ctx context.Context) error {
	cfg := c.config
	matcher := similarity.NewLevenshteinMatcher()

	rules, err := store.NewRuleStore(cfg.Categorization.RulesFile, c.logger).Load()
	if err != nil {
		return fmt.Errorf("failed to load keyword rules: %w", err)
	}

	strategies := []categorizer.CategorizationStrategy{
		categorizer.NewHistoryStrategy(matcher, cfg.Categorization.HistoryThreshold, cfg.Categorization.HistoryTolerance, c.logger),
		categorizer.NewKeywordStrategy(rules, c.logger),
	}
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		c.gemini, err = categorizer.NewGeminiClient(ctx, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.RequestsPerMinute, c.logger)
		if err != nil {
			return err
		}
		names, err := c.categoryNames(ctx)
		if err != nil {
			return err
		}
		strategies = append(strategies, categorizer.NewAIStrategy(c.gemini, names, matcher, c.logger))
		c.logger.Info("AI categorization enabled", logging.F("model", cfg.AI.Model))
	} else {
		c.logger.Info("AI categorization disabled")
	}
	c.categorizer = categorizer.New(c.logger, time.Duration(cfg.AI.TimeoutSeconds)*time.Second, strategies...)

	delimiter := []rune(cfg.Import.Delimiter)[0]
	c.importer = importer.NewService(
		statement.NewExtractor(c.logger, delimiter, cfg.Import.InvoicePhrases),
		c.store,
		dedup.NewEngine(c.store, c.logger),
		c.categorizer,
		importer.Options{AutoCategorize: cfg.Import.AutoCategorize, HistoryLimit: cfg.Categorization.HistoryLimit},
		c.logger,
	)

	history := func(ctx context.Context) ([]models.HistoryEntry, error) {
		return c.store.HistoryForCategorization(ctx, cfg.Categorization.HistoryLimit)
	}
	c.ledger = ledger.NewService(c.store, c.categorizer, history, c.logger)
	c.projection = projection.NewEngine(c.store, c.logger)
	c.analytics = analytics.NewService(c.store, c.logger)

	if cfg.Scheduler.Enabled {
		c.scheduler = scheduler.New(c.logger)
		if err := c.scheduler.ScheduleMaterialization(cfg.Scheduler.MaterializeSpec, c.ledger); err != nil {
			return err
		}
	}
	return nil
}

// categoryNames lists the stored category names, falling back to the
// default set on an empty database.
func (c *Container) categoryNames(ctx context.Context) ([]string, error) {
	cats, err := c.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if len(cats) == 0 {
		cats = models.DefaultCategories()
	}
	names := make([]string, 0, len(cats))
	for _, cat := range cats {
		names = append(names, cat.Name)
	}
	return names, nil
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "trace", "debug":
		return gormlogger.Info
	default:
		return 0
	}
}

// Router builds the HTTP handler over the container's services.
func (c *Container) Router() *gin.Engine {
	h := api.NewHandler(api.Services{
		Importer:   c.importer,
		Ledger:     c.ledger,
		Projection: c.projection,
		Analytics:  c.analytics,
	}, c.logger)
	return api.NewRouter(h, api.Options{CORSOrigins: c.config.Server.CORSOrigins})
}

func (c *Container) GetLogger() logging.Logger { return c.logger }

func (c *Container) GetConfig() *config.Config { return c.config }

func (c *Container) GetStore() *store.Store { return c.store }

func (c *Container) GetCategorizer() *categorizer.Categorizer { return c.categorizer }

func (c *Container) GetImporter() *importer.Service { return c.importer }

func (c *Container) GetLedger() *ledger.Service { return c.ledger }

func (c *Container) GetProjection() *projection.Engine { return c.projection }

func (c *Container) GetAnalytics() *analytics.Service { return c.analytics }

// GetScheduler returns nil when the scheduler is disabled.
func (c *Container) GetScheduler() *scheduler.Scheduler { return c.scheduler }

// Close releases the AI client and the database connection.
func (c *Container) Close() error {
	if c.gemini != nil {
		if err := c.gemini.Close(); err != nil {
			c.logger.WithError(err).Warn("Failed to close AI client")
		}
	}
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			return err
		}
	}
	c.logger.Info("Container closed")
	return nil
}
