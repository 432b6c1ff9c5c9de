package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/remolab/contracts-ledger/internal/model"
)

func TestGetProfile(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewProfileRepository(database)

	profileID := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "first_name", "last_name", "profession", "role", "balance"}).
		AddRow(profileID.String(), "Harry", "Potter", "", "client", 1150.0)
	mock.ExpectQuery("FROM profiles").
		WithArgs(profileID).
		WillReturnRows(rows)

	profile, err := repo.GetProfile(context.Background(), profileID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.Role != model.RoleClient || profile.Balance != 1150 {
		t.Fatalf("profile = %+v", profile)
	}
	if profile.FullName() != "Harry Potter" {
		t.Fatalf("full name = %q", profile.FullName())
	}
}

func TestGetProfileNotFound(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewProfileRepository(database)

	mock.ExpectQuery("FROM profiles").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetProfile(context.Background(), uuid.New())
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want gorm.ErrRecordNotFound", err)
	}
}

func TestAddToBalanceRequiresExistingRow(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewProfileRepository(database)

	profileID := uuid.New()
	mock.ExpectExec("UPDATE profiles").
		WithArgs(25.0, profileID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.AddToBalance(context.Background(), database, profileID, 25)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want gorm.ErrRecordNotFound", err)
	}
}
