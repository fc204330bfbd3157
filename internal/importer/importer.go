// Package importer runs the statement intake pipeline: provenance check,
// extraction, optional categorization, then deduplicated commit.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"fjacquet/cashflow/internal/categorizer"
	"fjacquet/cashflow/internal/dateutils"
	"fjacquet/cashflow/internal/dedup"
	"fjacquet/cashflow/internal/logging"
	"fjacquet/cashflow/internal/models"
	"fjacquet/cashflow/internal/parsererror"
	"fjacquet/cashflow/internal/statement"
)

// Per-file and report statuses. StatusPartial only appears on a Report.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusError   = "error"
)

// Upload is one file handed to the pipeline.
type Upload struct {
	Filename string
	Content  io.Reader
}

// Period overrides the accounting month of every imported record.
type Period struct {
	Year  int
	Month int
}

// NewPeriod builds a Period from optional parts. Both nil means no
// override; exactly one set, or an out-of-range month, is a validation
// error.
func NewPeriod(year, month *int) (*Period, error) {
	if year == nil && month == nil {
		return nil, nil
	}
	if year == nil || month == nil {
		return nil, &parsererror.ValidationError{Field: "reference period", Reason: "year and month must be given together"}
	}
	p := &Period{Year: *year, Month: *month}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the month range.
func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return &parsererror.ValidationError{Field: "reference_month", Reason: fmt.Sprintf("%d is not between 1 and 12", p.Month)}
	}
	if p.Year < 1 {
		return &parsererror.ValidationError{Field: "reference_year", Reason: fmt.Sprintf("%d is not a valid year", p.Year)}
	}
	return nil
}

// ReferenceDate is the first day of the period.
func (p Period) ReferenceDate() time.Time {
	return dateutils.Date(p.Year, time.Month(p.Month), 1)
}

// FileResult reports the outcome of one file.
type FileResult struct {
	Filename                 string                           `json:"filename"`
	Status                   string                           `json:"status"`
	Count                    int                              `json:"count"`
	ReconciliationCandidates []models.ReconciliationCandidate `json:"reconciliation_candidates,omitempty"`
	Message                  string                           `json:"message,omitempty"`
	Err                      error                            `json:"-"`
}

// Report is the outcome of ImportFiles.
type Report struct {
	Status        string       `json:"status"`
	TotalImported int          `json:"total_imported"`
	Results       []FileResult `json:"results"`
}

// Repository is what the pipeline reads from the record store.
type Repository interface {
	FileImported(ctx context.Context, filename string) (bool, error)
	CategoryByName(ctx context.Context, name string) (*models.Category, error)
	HistoryForCategorization(ctx context.Context, limit int) ([]models.HistoryEntry, error)
}

// Committer persists a batch.
type Committer interface {
	Commit(ctx context.Context, batch []models.Transaction) (*dedup.Result, error)
}

// Options tune the pipeline.
type Options struct {
	// AutoCategorize predicts a category for every extracted record.
	AutoCategorize bool
	// HistoryLimit bounds the examples loaded for predictions.
	HistoryLimit int
}

// Service imports statement files.
type Service struct {
	extractor *statement.Extractor
	repo      Repository
	committer Committer
	predictor categorizer.Predictor
	opts      Options
	logger    logging.Logger
}

// NewService wires the pipeline. predictor may be nil when AutoCategorize
// is off.
func NewService(extractor *statement.Extractor, repo Repository, committer Committer, predictor categorizer.Predictor, opts Options, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Service{
		extractor: extractor,
		repo:      repo,
		committer: committer,
		predictor: predictor,
		opts:      opts,
		logger:    logger,
	}
}

// ImportFiles imports every upload independently; one failing file never
// stops the others.
func (s *Service) ImportFiles(ctx context.Context, uploads []Upload, period *Period) *Report {
	report := &Report{Results: make([]FileResult, 0, len(uploads))}
	var history []models.HistoryEntry
	historyLoaded := false

	for _, up := range uploads {
		if s.opts.AutoCategorize && s.predictor != nil && !historyLoaded {
			history = s.loadHistory(ctx)
			historyLoaded = true
		}
		res := s.importOne(ctx, up, period, history)
		if res.Status == StatusSuccess {
			report.TotalImported += res.Count
		}
		report.Results = append(report.Results, res)
	}
	report.Status = reportStatus(report.Results)
	return report
}

// reportStatus is success when every file imported, error when none did and
// partial otherwise. An empty batch counts as success.
func reportStatus(results []FileResult) string {
	failed := 0
	for _, res := range results {
		if res.Status != StatusSuccess {
			failed++
		}
	}
	switch {
	case failed == 0:
		return StatusSuccess
	case failed == len(results):
		return StatusError
	default:
		return StatusPartial
	}
}

func (s *Service) importOne(ctx context.Context, up Upload, period *Period, history []models.HistoryEntry) FileResult {
	log := s.logger.WithFields(logging.F(logging.FieldFile, up.Filename))
	fail := func(err error) FileResult {
		log.WithError(err).Warn("File import failed")
		return FileResult{Filename: up.Filename, Status: StatusError, Message: errorMessage(err), Err: err}
	}

	if !strings.EqualFold(filepath.Ext(up.Filename), ".csv") {
		return fail(&parsererror.InvalidFormatError{Filename: up.Filename, Msg: "only CSV files are accepted"})
	}

	imported, err := s.repo.FileImported(ctx, up.Filename)
	if err != nil {
		return fail(err)
	}
	if imported {
		return fail(&parsererror.DuplicateFileError{Filename: up.Filename})
	}

	opts := statement.Options{Filename: up.Filename}
	if period != nil {
		ref := period.ReferenceDate()
		opts.ReferenceDate = &ref
	}
	extracted, err := s.extractor.Extract(up.Content, opts)
	if err != nil {
		return fail(err)
	}
	if extracted.Dialect == statement.DialectUnknown {
		return fail(&parsererror.InvalidFormatError{
			Filename: up.Filename,
			Msg:      "unrecognized statement layout",
			Headers:  extracted.Headers,
		})
	}

	if s.opts.AutoCategorize && s.predictor != nil {
		s.categorize(ctx, extracted.Transactions, history)
	}

	committed, err := s.committer.Commit(ctx, extracted.Transactions)
	if err != nil {
		return fail(err)
	}

	log.Info("File imported",
		logging.F(logging.FieldDialect, string(extracted.Dialect)),
		logging.F(logging.FieldCount, len(committed.Committed)),
		logging.F(logging.FieldCandidates, len(committed.Candidates)))
	return FileResult{
		Filename:                 up.Filename,
		Status:                   StatusSuccess,
		Count:                    len(committed.Committed),
		ReconciliationCandidates: committed.Candidates,
	}
}

// categorize stores each prediction as the manual tag and, when it names
// a known category, links it.
func (s *Service) categorize(ctx context.Context, txs []models.Transaction, history []models.HistoryEntry) {
	cache := make(map[string]*models.Category)
	for i := range txs {
		tx := &txs[i]
		predicted := s.predictor.Predict(ctx, tx.Description, tx.Amount, history)
		tx.ManualTag = predicted
		if predicted == models.CategoryUncategorized {
			continue
		}
		cat, ok := cache[predicted]
		if !ok {
			var err error
			cat, err = s.repo.CategoryByName(ctx, predicted)
			if err != nil {
				s.logger.WithError(err).Warn("Category lookup failed",
					logging.F(logging.FieldCategory, predicted))
			}
			cache[predicted] = cat
		}
		tx.CategoryLegacy = predicted
		if cat != nil {
			id := cat.ID
			tx.CategoryID = &id
		}
	}
}

func (s *Service) loadHistory(ctx context.Context) []models.HistoryEntry {
	history, err := s.repo.HistoryForCategorization(ctx, s.opts.HistoryLimit)
	if err != nil {
		s.logger.WithError(err).Warn("Categorization history unavailable")
		return nil
	}
	return history
}

func errorMessage(err error) string {
	var (
		format    *parsererror.InvalidFormatError
		duplicate *parsererror.DuplicateFileError
	)
	switch {
	case errors.As(err, &format), errors.As(err, &duplicate):
		return err.Error()
	}
	return "Processing error: " + err.Error()
}
