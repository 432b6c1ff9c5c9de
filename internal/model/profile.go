package model

import "github.com/google/uuid"

type ProfileRole string

const (
	RoleClient     ProfileRole = "client"
	RoleContractor ProfileRole = "contractor"
)

type Profile struct {
	ID         uuid.UUID
	FirstName  string
	LastName   string
	Profession string
	Role       ProfileRole
	Balance    float64
}

func (p Profile) FullName() string {
	return p.FirstName + " " + p.LastName
}
