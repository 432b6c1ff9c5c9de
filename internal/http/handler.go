package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/remolab/contracts-ledger/internal/http/middleware"
	"github.com/remolab/contracts-ledger/internal/model"
	"github.com/remolab/contracts-ledger/internal/service"
)

type Handler struct {
	queries *service.QueryService
	ledger  *service.LedgerService
	reports *service.ReportService
	log     zerolog.Logger
}

func NewHandler(queries *service.QueryService, ledger *service.LedgerService, reports *service.ReportService, log zerolog.Logger) *Handler {
	return &Handler{queries: queries, ledger: ledger, reports: reports, log: log}
}

func (h *Handler) Register(router *gin.Engine, identity gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(identity)
	protected.GET("/contracts/:id", h.getContract)
	protected.GET("/contracts", h.listContracts)
	protected.GET("/jobs/unpaid", h.listUnpaidJobs)
	protected.POST("/jobs/pay/:job_id", h.payJob)
	protected.GET("/jobs/receipt/:job_id", h.jobReceipt)
	protected.POST("/balances/deposit/:profile_id", h.deposit)
	protected.GET("/admin/best-profession", h.bestProfession)
	protected.GET("/admin/best-clients", h.bestClients)
	protected.GET("/admin/best-clients/export", h.bestClientsExport)
	protected.GET("/profiles/me", h.currentProfile)
}

type contractResponse struct {
	ID           uuid.UUID `json:"id"`
	ClientID     uuid.UUID `json:"client_id"`
	ContractorID uuid.UUID `json:"contractor_id"`
	Terms        string    `json:"terms"`
	Status       string    `json:"status"`
}

type jobResponse struct {
	ID          uuid.UUID  `json:"id"`
	ContractID  uuid.UUID  `json:"contract_id"`
	Description string     `json:"description"`
	Price       float64    `json:"price"`
	Paid        *bool      `json:"paid"`
	PaymentDate *time.Time `json:"payment_date"`
}

type profileResponse struct {
	ID         uuid.UUID `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Profession string    `json:"profession"`
	Role       string    `json:"role"`
	Balance    float64   `json:"balance"`
}

func (h *Handler) getContract(c *gin.Context) {
	caller, ok := middleware.MustProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing profile"})
		return
	}

	contractID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	contract, err := h.queries.GetContract(c.Request.Context(), contractID, caller.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContractResponse(*contract))
}

func (h *Handler) listContracts(c *gin.Context) {
	caller, ok := middleware.MustProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing profile"})
		return
	}

	contracts, err := h.queries.ListContracts(c.Request.Context(), caller.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response := make([]contractResponse, 0, len(contracts))
	for _, contract := range contracts {
		response = append(response, toContractResponse(contract))
	}
	c.JSON(http.StatusOK, response)
}

func (h *Handler) listUnpaidJobs(c *gin.Context) {
	caller, ok := middleware.MustProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing profile"})
		return
	}

	jobs, err := h.queries.ListUnpaidJobs(c.Request.Context(), caller.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response := make([]jobResponse, 0, len(jobs))
	for _, job := range jobs {
		response = append(response, toJobResponse(job))
	}
	c.JSON(http.StatusOK, response)
}

func (h *Handler) payJob(c *gin.Context) {
	caller, ok := middleware.MustProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing profile"})
		return
	}

	jobID, err := uuid.Parse(strings.TrimSpace(c.Param("job_id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	if err := h.ledger.PayJob(c.Request.Context(), jobID, caller.ID); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "payment processed successfully"})
}

type depositRequest struct {
	Amount *float64 `json:"amount"`
}

func (h *Handler) deposit(c *gin.Context) {
	if _, ok := middleware.MustProfile(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing profile"})
		return
	}

	profileID, err := uuid.Parse(strings.TrimSpace(c.Param("profile_id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile id"})
		return
	}

	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Amount == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount is required"})
		return
	}

	if err := h.ledger.Deposit(c.Request.Context(), profileID, *req.Amount); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deposit processed successfully"})
}

func (h *Handler) bestProfession(c *gin.Context) {
	start, end, err := parseRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date range"})
		return
	}

	best, err := h.reports.BestProfession(c.Request.Context(), start, end)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if best == nil {
		c.JSON(http.StatusOK, gin.H{"message": "no data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"profession":   best.Profession,
		"total_amount": best.TotalAmount,
	})
}

func (h *Handler) bestClients(c *gin.Context) {
	start, end, err := parseRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date range"})
		return
	}
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	clients, err := h.reports.BestClients(c.Request.Context(), start, end, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response := make([]gin.H, 0, len(clients))
	for _, client := range clients {
		response = append(response, gin.H{
			"id":        client.ID,
			"full_name": client.FullName,
			"paid":      client.Paid,
		})
	}
	c.JSON(http.StatusOK, response)
}

func (h *Handler) bestClientsExport(c *gin.Context) {
	start, end, err := parseRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date range"})
		return
	}
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	result, err := h.reports.BestClientsExport(c.Request.Context(), start, end, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	const contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, contentType, result.Content)
}

func (h *Handler) jobReceipt(c *gin.Context) {
	caller, ok := middleware.MustProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing profile"})
		return
	}

	jobID, err := uuid.Parse(strings.TrimSpace(c.Param("job_id")))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	result, err := h.queries.JobReceiptPDF(c.Request.Context(), jobID, caller.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) currentProfile(c *gin.Context) {
	caller, ok := middleware.MustProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing profile"})
		return
	}
	c.JSON(http.StatusOK, toProfileResponse(caller))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPaymentRejected), errors.Is(err, service.ErrDepositRejected):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrTransactionFailed):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "transaction failed"})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func toContractResponse(contract model.Contract) contractResponse {
	return contractResponse{
		ID:           contract.ID,
		ClientID:     contract.ClientID,
		ContractorID: contract.ContractorID,
		Terms:        contract.Terms,
		Status:       string(contract.Status),
	}
}

func toJobResponse(job model.Job) jobResponse {
	return jobResponse{
		ID:          job.ID,
		ContractID:  job.ContractID,
		Description: job.Description,
		Price:       job.Price,
		Paid:        job.Paid,
		PaymentDate: job.PaymentDate,
	}
}

func toProfileResponse(profile model.Profile) profileResponse {
	return profileResponse{
		ID:         profile.ID,
		FirstName:  profile.FirstName,
		LastName:   profile.LastName,
		Profession: profile.Profession,
		Role:       string(profile.Role),
		Balance:    profile.Balance,
	}
}

func parseRange(c *gin.Context) (time.Time, time.Time, error) {
	start, err := parseDate(c.Query("start"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDate(c.Query("end"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}

func parseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, service.ErrInvalidInput
	}
	return limit, nil
}
