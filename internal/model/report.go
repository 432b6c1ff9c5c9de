package model

import (
	"time"

	"github.com/google/uuid"
)

type ProfessionEarnings struct {
	Profession  string
	TotalAmount float64
}

type ClientEarnings struct {
	ID       uuid.UUID
	FullName string
	Paid     float64
}

type ClientsReport struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Clients     []ClientEarnings
}

// Receipt collects everything printed on a payment receipt for a paid job.
type Receipt struct {
	Job        Job
	Contract   Contract
	Client     Profile
	Contractor Profile
}
