package model

import "github.com/google/uuid"

type ContractStatus string

const (
	ContractStatusNew        ContractStatus = "new"
	ContractStatusInProgress ContractStatus = "in_progress"
	ContractStatusTerminated ContractStatus = "terminated"
)

type Contract struct {
	ID           uuid.UUID
	ClientID     uuid.UUID
	ContractorID uuid.UUID
	Terms        string
	Status       ContractStatus
}

// IsParty reports whether the profile is the client or the contractor of
// the contract. A zero profile id is never a party.
func (c Contract) IsParty(profileID uuid.UUID) bool {
	if profileID == uuid.Nil {
		return false
	}
	return profileID == c.ClientID || profileID == c.ContractorID
}
