package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/remolab/contracts-ledger/internal/model"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, first_name, last_name, profession, role, balance
		FROM profiles
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&profile).Error; err != nil {
		return nil, err
	}
	if profile.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &profile, nil
}

// LockProfile loads a profile row under an exclusive row lock. The lock is
// held until the surrounding transaction commits or rolls back.
func (r *ProfileRepository) LockProfile(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Profile, error) {
	var profile model.Profile
	if err := tx.WithContext(ctx).Raw(`
		SELECT id, first_name, last_name, profession, role, balance
		FROM profiles
		WHERE id = ?
		FOR UPDATE
	`, id).Scan(&profile).Error; err != nil {
		return nil, err
	}
	if profile.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &profile, nil
}

// AddToBalance applies a signed delta to a profile balance. Callers must
// hold the row lock and have verified the resulting balance stays
// non-negative; the schema CHECK is the backstop.
func (r *ProfileRepository) AddToBalance(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta float64) error {
	result := tx.WithContext(ctx).Exec(`
		UPDATE profiles
		SET balance = balance + ?
		WHERE id = ?
	`, delta, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
