package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"

	"github.com/remolab/contracts-ledger/internal/config"
	"github.com/remolab/contracts-ledger/internal/excel"
	"github.com/remolab/contracts-ledger/internal/repository"
)

func newReports(t *testing.T) (*ReportService, sqlmock.Sqlmock) {
	t.Helper()
	database, mock := newMockDB(t)
	cfg := &config.Config{Report: config.ReportConfig{BestClientsLimit: 2}}
	reports := NewReportService(repository.NewReportRepository(database), excel.NewGenerator(), cfg, zerolog.Nop())
	return reports, mock
}

var (
	rangeStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rangeEnd   = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
)

func TestBestProfession(t *testing.T) {
	reports, mock := newReports(t)

	rows := sqlmock.NewRows([]string{"profession", "total_amount"}).
		AddRow("Programmer", 2683.0)
	mock.ExpectQuery("GROUP BY p.profession").
		WithArgs(rangeStart, rangeEnd, 1).
		WillReturnRows(rows)

	best, err := reports.BestProfession(context.Background(), rangeStart, rangeEnd)
	if err != nil {
		t.Fatalf("best profession: %v", err)
	}
	if best == nil || best.Profession != "Programmer" || best.TotalAmount != 2683 {
		t.Fatalf("best = %+v", best)
	}
}

func TestBestProfessionNoData(t *testing.T) {
	reports, mock := newReports(t)

	mock.ExpectQuery("GROUP BY p.profession").
		WithArgs(rangeStart, rangeEnd, 1).
		WillReturnRows(sqlmock.NewRows([]string{"profession", "total_amount"}))

	best, err := reports.BestProfession(context.Background(), rangeStart, rangeEnd)
	if err != nil {
		t.Fatalf("best profession: %v", err)
	}
	if best != nil {
		t.Fatalf("best = %+v, want nil", best)
	}
}

func TestBestProfessionInvalidRange(t *testing.T) {
	reports, _ := newReports(t)

	if _, err := reports.BestProfession(context.Background(), time.Time{}, rangeEnd); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing start: err = %v, want ErrInvalidInput", err)
	}
	if _, err := reports.BestProfession(context.Background(), rangeEnd, rangeStart); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("reversed range: err = %v, want ErrInvalidInput", err)
	}
}

func TestBestClientsDefaultLimit(t *testing.T) {
	reports, mock := newReports(t)

	rows := sqlmock.NewRows([]string{"id", "full_name", "paid"}).
		AddRow(testClientID.String(), "Ash Kovalenko", 300.0).
		AddRow(testContractorID.String(), "Mina Torres", 200.0)
	mock.ExpectQuery("GROUP BY p.id").
		WithArgs(rangeStart, rangeEnd, 2).
		WillReturnRows(rows)

	clients, err := reports.BestClients(context.Background(), rangeStart, rangeEnd, 0)
	if err != nil {
		t.Fatalf("best clients: %v", err)
	}
	if len(clients) != 2 {
		t.Fatalf("clients = %+v", clients)
	}
	if clients[0].FullName != "Ash Kovalenko" || clients[0].Paid != 300 {
		t.Fatalf("top client = %+v", clients[0])
	}
	if clients[1].Paid != 200 {
		t.Fatalf("second client = %+v", clients[1])
	}
}

func TestBestClientsEmpty(t *testing.T) {
	reports, mock := newReports(t)

	mock.ExpectQuery("GROUP BY p.id").
		WithArgs(rangeStart, rangeEnd, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "paid"}))

	clients, err := reports.BestClients(context.Background(), rangeStart, rangeEnd, 5)
	if err != nil {
		t.Fatalf("best clients: %v", err)
	}
	if clients == nil || len(clients) != 0 {
		t.Fatalf("clients = %#v, want empty slice", clients)
	}
}

func TestBestClientsExport(t *testing.T) {
	reports, mock := newReports(t)

	rows := sqlmock.NewRows([]string{"id", "full_name", "paid"}).
		AddRow(testClientID.String(), "Ash Kovalenko", 300.0)
	mock.ExpectQuery("GROUP BY p.id").
		WithArgs(rangeStart, rangeEnd, 2).
		WillReturnRows(rows)

	result, err := reports.BestClientsExport(context.Background(), rangeStart, rangeEnd, 0)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if result.FileName != "best-clients-20240101-20240131.xlsx" {
		t.Fatalf("file name = %q", result.FileName)
	}
	if len(result.Content) == 0 {
		t.Fatal("empty workbook")
	}
}

func TestReportStoreErrorMasked(t *testing.T) {
	reports, mock := newReports(t)

	mock.ExpectQuery("GROUP BY p.profession").
		WillReturnError(errors.New("connection reset"))

	_, err := reports.BestProfession(context.Background(), rangeStart, rangeEnd)
	if !errors.Is(err, ErrTransactionFailed) {
		t.Fatalf("err = %v, want ErrTransactionFailed", err)
	}
}
