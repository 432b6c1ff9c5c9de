package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/remolab/contracts-ledger/internal/config"
	"github.com/remolab/contracts-ledger/internal/model"
	"github.com/remolab/contracts-ledger/internal/repository"
)

// ExcelGenerator renders a clients report workbook.
type ExcelGenerator interface {
	Generate(report model.ClientsReport) ([]byte, error)
}

// ReportService computes time-ranged earnings aggregates. Reads take no
// locks, so a report may trail an in-flight payment.
type ReportService struct {
	repo         *repository.ReportRepository
	excel        ExcelGenerator
	clientsLimit int
	log          zerolog.Logger
}

func NewReportService(repo *repository.ReportRepository, excel ExcelGenerator, cfg *config.Config, log zerolog.Logger) *ReportService {
	return &ReportService{
		repo:         repo,
		excel:        excel,
		clientsLimit: cfg.Report.BestClientsLimit,
		log:          log,
	}
}

// BestProfession returns the profession with the highest paid-job total in
// the inclusive range, or nil when nothing was paid in range.
func (s *ReportService) BestProfession(ctx context.Context, start, end time.Time) (*model.ProfessionEarnings, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	rows, err := s.repo.BestProfessions(ctx, start, end, 1)
	if err != nil {
		return nil, s.storeError(err, "best profession")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// BestClients returns up to limit clients ordered by amount paid in the
// inclusive range. A non-positive limit falls back to the configured
// default. No matches is an empty list, never an error.
func (s *ReportService) BestClients(ctx context.Context, start, end time.Time, limit int) ([]model.ClientEarnings, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.clientsLimit
	}
	rows, err := s.repo.BestClients(ctx, start, end, limit)
	if err != nil {
		return nil, s.storeError(err, "best clients")
	}
	if rows == nil {
		rows = []model.ClientEarnings{}
	}
	return rows, nil
}

type ExportResult struct {
	FileName string
	Content  []byte
}

// BestClientsExport renders the best-clients aggregate as a workbook.
func (s *ReportService) BestClientsExport(ctx context.Context, start, end time.Time, limit int) (*ExportResult, error) {
	clients, err := s.BestClients(ctx, start, end, limit)
	if err != nil {
		return nil, err
	}

	report := model.ClientsReport{
		PeriodStart: start,
		PeriodEnd:   end,
		Clients:     clients,
	}
	content, err := s.excel.Generate(report)
	if err != nil {
		return nil, s.storeError(err, "render clients report")
	}

	fileName := fmt.Sprintf("best-clients-%s-%s.xlsx",
		start.Format("20060102"), end.Format("20060102"))
	return &ExportResult{FileName: fileName, Content: content}, nil
}

func validateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidInput)
	}
	if start.After(end) {
		return fmt.Errorf("%w: start must be before or equal to end", ErrInvalidInput)
	}
	return nil
}

func (s *ReportService) storeError(err error, operation string) error {
	s.log.Error().Err(err).Str("operation", operation).Msg("report failed")
	return ErrTransactionFailed
}
