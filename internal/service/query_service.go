package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/remolab/contracts-ledger/internal/model"
	"github.com/remolab/contracts-ledger/internal/repository"
)

// PDFGenerator renders a payment receipt document.
type PDFGenerator interface {
	Generate(receipt model.Receipt) ([]byte, error)
}

// QueryService serves the read paths: contract and job lookups scoped to
// the calling profile, plus profile lookup. It never mutates state.
type QueryService struct {
	profiles  *repository.ProfileRepository
	contracts *repository.ContractRepository
	jobs      *repository.JobRepository
	pdf       PDFGenerator
	log       zerolog.Logger
}

func NewQueryService(
	profiles *repository.ProfileRepository,
	contracts *repository.ContractRepository,
	jobs *repository.JobRepository,
	pdf PDFGenerator,
	log zerolog.Logger,
) *QueryService {
	return &QueryService{
		profiles:  profiles,
		contracts: contracts,
		jobs:      jobs,
		pdf:       pdf,
		log:       log,
	}
}

// GetContract returns the contract only when the caller is a party to it.
// A contract that exists but belongs to someone else surfaces exactly like
// a missing one.
func (s *QueryService) GetContract(ctx context.Context, contractID, callerID uuid.UUID) (*model.Contract, error) {
	if contractID == uuid.Nil || callerID == uuid.Nil {
		return nil, ErrNotFound
	}
	contract, err := s.contracts.GetContract(ctx, contractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, s.storeError(err, "get contract")
	}
	if !contract.IsParty(callerID) {
		return nil, ErrNotFound
	}
	return contract, nil
}

func (s *QueryService) ListContracts(ctx context.Context, callerID uuid.UUID) ([]model.Contract, error) {
	if callerID == uuid.Nil {
		return []model.Contract{}, nil
	}
	contracts, err := s.contracts.ListActiveContractsForProfile(ctx, callerID)
	if err != nil {
		return nil, s.storeError(err, "list contracts")
	}
	if contracts == nil {
		contracts = []model.Contract{}
	}
	return contracts, nil
}

func (s *QueryService) ListUnpaidJobs(ctx context.Context, callerID uuid.UUID) ([]model.Job, error) {
	if callerID == uuid.Nil {
		return []model.Job{}, nil
	}
	jobs, err := s.jobs.ListUnpaidJobsForProfile(ctx, callerID)
	if err != nil {
		return nil, s.storeError(err, "list unpaid jobs")
	}
	if jobs == nil {
		jobs = []model.Job{}
	}
	return jobs, nil
}

func (s *QueryService) LookupProfile(ctx context.Context, profileID uuid.UUID) (*model.Profile, error) {
	if profileID == uuid.Nil {
		return nil, ErrNotFound
	}
	profile, err := s.profiles.GetProfile(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, s.storeError(err, "lookup profile")
	}
	return profile, nil
}

type ReceiptResult struct {
	FileName string
	Content  []byte
}

// JobReceiptPDF renders a receipt for a paid job the caller is a party to.
func (s *QueryService) JobReceiptPDF(ctx context.Context, jobID, callerID uuid.UUID) (*ReceiptResult, error) {
	if jobID == uuid.Nil || callerID == uuid.Nil {
		return nil, ErrNotFound
	}
	receipt, err := s.jobs.GetPaidJobReceipt(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, s.storeError(err, "job receipt")
	}
	if !receipt.Contract.IsParty(callerID) {
		return nil, ErrNotFound
	}

	content, err := s.pdf.Generate(*receipt)
	if err != nil {
		return nil, s.storeError(err, "render receipt")
	}
	return &ReceiptResult{
		FileName: fmt.Sprintf("receipt-%s.pdf", receipt.Job.ID),
		Content:  content,
	}, nil
}

func (s *QueryService) storeError(err error, operation string) error {
	s.log.Error().Err(err).Str("operation", operation).Msg("query failed")
	return ErrTransactionFailed
}
