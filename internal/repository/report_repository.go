package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/remolab/contracts-ledger/internal/model"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// BestProfessions sums paid job prices per contractor profession over the
// inclusive payment-date range, highest first. Ties break on profession
// name so results are reproducible.
func (r *ReportRepository) BestProfessions(ctx context.Context, start, end time.Time, limit int) ([]model.ProfessionEarnings, error) {
	var rows []model.ProfessionEarnings
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			p.profession,
			SUM(j.price) AS total_amount
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.contractor_id
		WHERE j.paid = TRUE
			AND j.payment_date >= ?
			AND j.payment_date <= ?
			AND c.status = 'in_progress'
		GROUP BY p.profession
		ORDER BY total_amount DESC, p.profession ASC
		LIMIT ?
	`, start, end, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// BestClients sums paid job prices per client over the inclusive
// payment-date range, highest first. Ties break on full name, then id.
func (r *ReportRepository) BestClients(ctx context.Context, start, end time.Time, limit int) ([]model.ClientEarnings, error) {
	var rows []model.ClientEarnings
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			p.id,
			p.first_name || ' ' || p.last_name AS full_name,
			SUM(j.price) AS paid
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.client_id
		WHERE j.paid = TRUE
			AND j.payment_date >= ?
			AND j.payment_date <= ?
			AND c.status = 'in_progress'
		GROUP BY p.id, p.first_name, p.last_name
		ORDER BY paid DESC, full_name ASC, p.id ASC
		LIMIT ?
	`, start, end, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
