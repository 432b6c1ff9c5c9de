package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/remolab/contracts-ledger/internal/config"
	"github.com/remolab/contracts-ledger/internal/excel"
	"github.com/remolab/contracts-ledger/internal/http/middleware"
	"github.com/remolab/contracts-ledger/internal/pdf"
	"github.com/remolab/contracts-ledger/internal/repository"
	"github.com/remolab/contracts-ledger/internal/service"
)

var (
	testClientID   = uuid.MustParse("11111111-1111-4111-8111-111111111111")
	testContractID = uuid.MustParse("33333333-3333-4333-8333-333333333333")
	testJobID      = uuid.MustParse("99999999-9999-4999-8999-999999999999")
)

func newTestRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	database, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}

	cfg := &config.Config{
		Ledger: config.LedgerConfig{DepositCapRatio: 0.25},
		Report: config.ReportConfig{BestClientsLimit: 2},
	}
	log := zerolog.Nop()

	profileRepo := repository.NewProfileRepository(database)
	contractRepo := repository.NewContractRepository(database)
	jobRepo := repository.NewJobRepository(database)
	reportRepo := repository.NewReportRepository(database)

	queries := service.NewQueryService(profileRepo, contractRepo, jobRepo, pdf.NewGenerator(), log)
	ledger := service.NewLedgerService(database, profileRepo, jobRepo, cfg, log)
	reports := service.NewReportService(reportRepo, excel.NewGenerator(), cfg, log)

	handler := NewHandler(queries, ledger, reports, log)
	identity := middleware.Identity(nil, profileRepo)
	return NewRouter(handler, identity, "test"), mock
}

func expectCallerLookup(mock sqlmock.Sqlmock) {
	rows := sqlmock.NewRows([]string{"id", "first_name", "last_name", "profession", "role", "balance"}).
		AddRow(testClientID.String(), "Harry", "Potter", "", "client", 500.0)
	mock.ExpectQuery("FROM profiles").
		WithArgs(testClientID).
		WillReturnRows(rows)
}

func doRequest(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("profile_id", testClientID.String())
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestRequestWithoutIdentityIsRejected(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/contracts", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", recorder.Code)
	}
}

func TestGetContractHidesForeignContract(t *testing.T) {
	router, mock := newTestRouter(t)

	expectCallerLookup(mock)
	otherClient := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "client_id", "contractor_id", "terms", "status"}).
		AddRow(testContractID.String(), otherClient.String(), uuid.New().String(), "terms", "in_progress")
	mock.ExpectQuery("FROM contracts").
		WithArgs(testContractID).
		WillReturnRows(rows)

	recorder := doRequest(router, http.MethodGet, "/contracts/"+testContractID.String(), "")
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", recorder.Code)
	}
}

func TestPayJobRejectionSurfacesReason(t *testing.T) {
	router, mock := newTestRouter(t)

	expectCallerLookup(mock)
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE OF j").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	recorder := doRequest(router, http.MethodPost, "/jobs/pay/"+testJobID.String(), "")
	if recorder.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422, body %s", recorder.Code, recorder.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "payment rejected: job not found or not payable by this profile" {
		t.Fatalf("error = %q", body["error"])
	}
}

func TestDepositRequiresAmount(t *testing.T) {
	router, mock := newTestRouter(t)

	expectCallerLookup(mock)
	recorder := doRequest(router, http.MethodPost, "/balances/deposit/"+testClientID.String(), `{}`)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
}

func TestBestProfessionRequiresRange(t *testing.T) {
	router, mock := newTestRouter(t)

	expectCallerLookup(mock)
	recorder := doRequest(router, http.MethodGet, "/admin/best-profession?start=2024-01-01", "")
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
}

func TestBestClientsLimitTruncates(t *testing.T) {
	router, mock := newTestRouter(t)

	expectCallerLookup(mock)
	rows := sqlmock.NewRows([]string{"id", "full_name", "paid"}).
		AddRow(uuid.New().String(), "Ash Kovalenko", 300.0).
		AddRow(uuid.New().String(), "Mina Torres", 200.0)
	mock.ExpectQuery("GROUP BY p.id").
		WillReturnRows(rows)

	recorder := doRequest(router, http.MethodGet, "/admin/best-clients?start=2024-01-01&end=2024-01-31&limit=2", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", recorder.Code, recorder.Body.String())
	}

	var body []map[string]interface{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body) != 2 {
		t.Fatalf("clients = %d, want 2", len(body))
	}
	if body[0]["full_name"] != "Ash Kovalenko" {
		t.Fatalf("top client = %v", body[0])
	}
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}
}
