package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/remolab/contracts-ledger/internal/config"
	"github.com/remolab/contracts-ledger/internal/model"
	"github.com/remolab/contracts-ledger/internal/repository"
)

// LedgerService is the only component that mutates balances. Both of its
// operations run inside a single database transaction with exclusive row
// locks on every account they read then write.
type LedgerService struct {
	db       *gorm.DB
	profiles *repository.ProfileRepository
	jobs     *repository.JobRepository
	capRatio float64
	log      zerolog.Logger

	// Now is swappable in tests.
	Now func() time.Time
}

func NewLedgerService(
	db *gorm.DB,
	profiles *repository.ProfileRepository,
	jobs *repository.JobRepository,
	cfg *config.Config,
	log zerolog.Logger,
) *LedgerService {
	return &LedgerService{
		db:       db,
		profiles: profiles,
		jobs:     jobs,
		capRatio: cfg.Ledger.DepositCapRatio,
		log:      log,
		Now:      time.Now,
	}
}

// PayJob moves the job price from the client balance to the contractor
// balance and marks the job paid, all or nothing. A second attempt on the
// same job observes paid = TRUE and is rejected, never double-paid.
func (s *LedgerService) PayJob(ctx context.Context, jobID, payerID uuid.UUID) error {
	if jobID == uuid.Nil || payerID == uuid.Nil {
		return fmt.Errorf("%w: job id and payer id are required", ErrInvalidInput)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		job, contract, err := s.jobs.LockUnpaidJobForClient(ctx, tx, jobID, payerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: job not found or not payable by this profile", ErrPaymentRejected)
			}
			return err
		}

		client, contractor, err := s.lockParties(ctx, tx, contract)
		if err != nil {
			return err
		}

		if client.Balance < job.Price {
			return fmt.Errorf("%w: insufficient funds", ErrPaymentRejected)
		}

		if err := s.profiles.AddToBalance(ctx, tx, client.ID, -job.Price); err != nil {
			return err
		}
		if err := s.profiles.AddToBalance(ctx, tx, contractor.ID, job.Price); err != nil {
			return err
		}
		return s.jobs.MarkJobPaid(ctx, tx, job.ID, s.Now().UTC())
	})
	return s.mapTransactionError(err, "pay job")
}

// lockParties acquires both account row locks in ascending id order so two
// payments touching the same pair of profiles cannot deadlock.
func (s *LedgerService) lockParties(ctx context.Context, tx *gorm.DB, contract *model.Contract) (client, contractor *model.Profile, err error) {
	first, second := contract.ClientID, contract.ContractorID
	if second.String() < first.String() {
		first, second = second, first
	}

	locked := make(map[uuid.UUID]*model.Profile, 2)
	for _, id := range []uuid.UUID{first, second} {
		profile, err := s.profiles.LockProfile(ctx, tx, id)
		if err != nil {
			return nil, nil, err
		}
		locked[id] = profile
	}
	return locked[contract.ClientID], locked[contract.ContractorID], nil
}

// Deposit credits a client balance, capped at a fraction of the client's
// live unpaid-job debt. The debt aggregate runs inside the same transaction
// as the balance update so the cap never checks a stale figure.
func (s *LedgerService) Deposit(ctx context.Context, profileID uuid.UUID, amount float64) error {
	if profileID == uuid.Nil {
		return fmt.Errorf("%w: profile id is required", ErrInvalidInput)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile, err := s.profiles.LockProfile(ctx, tx, profileID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: profile not found or not a client", ErrDepositRejected)
			}
			return err
		}
		if profile.Role != model.RoleClient {
			return fmt.Errorf("%w: profile not found or not a client", ErrDepositRejected)
		}

		totalAmountDue, err := s.jobs.SumAmountDue(ctx, tx, profile.ID)
		if err != nil {
			return err
		}
		if totalAmountDue == 0 {
			return fmt.Errorf("%w: no amount due", ErrDepositRejected)
		}
		if amount > totalAmountDue*s.capRatio {
			return fmt.Errorf("%w: amount exceeds %.0f%% of amount due", ErrDepositRejected, s.capRatio*100)
		}

		return s.profiles.AddToBalance(ctx, tx, profile.ID, amount)
	})
	return s.mapTransactionError(err, "deposit")
}

// mapTransactionError passes documented rejections through untouched and
// collapses everything else to ErrTransactionFailed, keeping storage detail
// out of responses while it still lands in the log.
func (s *LedgerService) mapTransactionError(err error, operation string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrPaymentRejected) || errors.Is(err, ErrDepositRejected) || errors.Is(err, ErrInvalidInput) {
		return err
	}
	s.log.Error().Err(err).Str("operation", operation).Msg("ledger transaction failed")
	return ErrTransactionFailed
}
