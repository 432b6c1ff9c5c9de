package model

import (
	"time"

	"github.com/google/uuid"
)

// Job is a billable unit of work under a contract. Paid is nullable in
// storage: NULL means the job was never paid. PaymentDate is set exactly
// once, when the payment commits.
type Job struct {
	ID          uuid.UUID
	ContractID  uuid.UUID
	Description string
	Price       float64
	Paid        *bool
	PaymentDate *time.Time
}

func (j Job) IsPaid() bool {
	return j.Paid != nil && *j.Paid
}
