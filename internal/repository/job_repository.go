package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/remolab/contracts-ledger/internal/model"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// ListUnpaidJobsForProfile returns unpaid jobs on in-progress contracts the
// profile is a party to.
func (r *JobRepository) ListUnpaidJobsForProfile(ctx context.Context, profileID uuid.UUID) ([]model.Job, error) {
	var jobs []model.Job
	err := r.db.WithContext(ctx).Raw(`
		SELECT j.id, j.contract_id, j.description, j.price, j.paid, j.payment_date
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE j.paid IS NOT TRUE
			AND c.status = 'in_progress'
			AND (c.client_id = ? OR c.contractor_id = ?)
		ORDER BY j.created_at ASC
	`, profileID, profileID).Scan(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// LockUnpaidJobForClient loads the job and its owning contract when the job
// is unpaid, the contract is in progress and the client is the payer. The
// job row is locked so a concurrent payment attempt serializes behind this
// transaction and then sees paid = TRUE.
func (r *JobRepository) LockUnpaidJobForClient(ctx context.Context, tx *gorm.DB, jobID, clientID uuid.UUID) (*model.Job, *model.Contract, error) {
	var row struct {
		ID           uuid.UUID
		ContractID   uuid.UUID
		Description  string
		Price        float64
		Paid         *bool
		PaymentDate  *time.Time
		ClientID     uuid.UUID
		ContractorID uuid.UUID
		Status       model.ContractStatus
	}

	err := tx.WithContext(ctx).Raw(`
		SELECT
			j.id,
			j.contract_id,
			j.description,
			j.price,
			j.paid,
			j.payment_date,
			c.client_id,
			c.contractor_id,
			c.status
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE j.id = ?
			AND j.paid IS NOT TRUE
			AND c.status = 'in_progress'
			AND c.client_id = ?
		FOR UPDATE OF j
	`, jobID, clientID).Scan(&row).Error
	if err != nil {
		return nil, nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil, gorm.ErrRecordNotFound
	}

	job := &model.Job{
		ID:          row.ID,
		ContractID:  row.ContractID,
		Description: row.Description,
		Price:       row.Price,
		Paid:        row.Paid,
		PaymentDate: row.PaymentDate,
	}
	contract := &model.Contract{
		ID:           row.ContractID,
		ClientID:     row.ClientID,
		ContractorID: row.ContractorID,
		Status:       row.Status,
	}
	return job, contract, nil
}

// MarkJobPaid flips the paid flag exactly once. The paid guard makes a
// double update impossible even if a caller bypassed the row lock.
func (r *JobRepository) MarkJobPaid(ctx context.Context, tx *gorm.DB, jobID uuid.UUID, paymentDate time.Time) error {
	result := tx.WithContext(ctx).Exec(`
		UPDATE jobs
		SET paid = TRUE, payment_date = ?
		WHERE id = ? AND paid IS NOT TRUE
	`, paymentDate, jobID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SumAmountDue computes the client's live debt: unpaid job prices on
// in-progress contracts. Runs inside the deposit transaction so the cap is
// checked against a current figure.
func (r *JobRepository) SumAmountDue(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) (float64, error) {
	var total float64
	err := tx.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(j.price), 0) AS total
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE c.client_id = ?
			AND c.status = 'in_progress'
			AND j.paid IS NOT TRUE
	`, clientID).Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// GetPaidJobReceipt loads everything printed on a payment receipt for a
// paid job: the job, its contract and both parties.
func (r *JobRepository) GetPaidJobReceipt(ctx context.Context, jobID uuid.UUID) (*model.Receipt, error) {
	var row struct {
		ID                   uuid.UUID
		ContractID           uuid.UUID
		Description          string
		Price                float64
		Paid                 *bool
		PaymentDate          *time.Time
		ClientID             uuid.UUID
		ContractorID         uuid.UUID
		Terms                string
		Status               model.ContractStatus
		ClientFirstName      string
		ClientLastName       string
		ContractorFirstName  string
		ContractorLastName   string
		ContractorProfession string
	}

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			j.id,
			j.contract_id,
			j.description,
			j.price,
			j.paid,
			j.payment_date,
			c.client_id,
			c.contractor_id,
			c.terms,
			c.status,
			client.first_name AS client_first_name,
			client.last_name AS client_last_name,
			contractor.first_name AS contractor_first_name,
			contractor.last_name AS contractor_last_name,
			contractor.profession AS contractor_profession
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles client ON client.id = c.client_id
		JOIN profiles contractor ON contractor.id = c.contractor_id
		WHERE j.id = ? AND j.paid = TRUE
	`, jobID).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	return &model.Receipt{
		Job: model.Job{
			ID:          row.ID,
			ContractID:  row.ContractID,
			Description: row.Description,
			Price:       row.Price,
			Paid:        row.Paid,
			PaymentDate: row.PaymentDate,
		},
		Contract: model.Contract{
			ID:           row.ContractID,
			ClientID:     row.ClientID,
			ContractorID: row.ContractorID,
			Terms:        row.Terms,
			Status:       row.Status,
		},
		Client: model.Profile{
			ID:        row.ClientID,
			FirstName: row.ClientFirstName,
			LastName:  row.ClientLastName,
			Role:      model.RoleClient,
		},
		Contractor: model.Profile{
			ID:         row.ContractorID,
			FirstName:  row.ContractorFirstName,
			LastName:   row.ContractorLastName,
			Profession: row.ContractorProfession,
			Role:       model.RoleContractor,
		},
	}, nil
}
