package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/radiodent/radiodiagnostic-api/internal/model"
	"github.com/radiodent/radiodiagnostic-api/internal/utils"
)

// newMock returns a stub database; expectations are verified on cleanup.
func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

func TestUserCreateRejectsUnknownRole(t *testing.T) {
	db, _ := newMock(t) // no statements expected
	repo := NewUserRepo(db)

	_, err := repo.Create(context.Background(), "A", "a@clinic.id", "pw", "nurse", 4)
	if !errors.Is(err, ErrInvariant) {
		t.Fatalf("err = %v, want ErrInvariant", err)
	}
}

func TestUserCreateDuplicateEmailWritesNothing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery("SELECT email FROM users").
		WithArgs("taken@clinic.id").
		WillReturnRows(sqlmock.NewRows([]string{"email"}).AddRow("taken@clinic.id"))

	_, err := repo.Create(context.Background(), "A", "Taken@clinic.id ", "pw", model.RoleDoctor, 4)
	if !errors.Is(err, ErrInvariant) {
		t.Fatalf("err = %v, want ErrInvariant", err)
	}
}

func TestUserCreateRolePrefixedID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery("SELECT email FROM users").
		WithArgs("drg@clinic.id").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), "Drg. Sari", "drg@clinic.id", sqlmock.AnyArg(), model.RoleDoctor).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u, err := repo.Create(context.Background(), "Drg. Sari", "DRG@clinic.id", "initialpw", model.RoleDoctor, 4)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !strings.HasPrefix(u.ID, "doctor-") {
		t.Errorf("id %q not role-prefixed", u.ID)
	}
	if u.Email != "drg@clinic.id" {
		t.Errorf("email %q not normalized", u.Email)
	}
}

func TestVerifyCredentialWrongPassword(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	hash, err := utils.HashPassword("rightpw", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	mock.ExpectQuery("SELECT id, password FROM users").
		WithArgs("drg@clinic.id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password"}).AddRow("doctor-1", hash))

	_, err = repo.VerifyCredential(context.Background(), "drg@clinic.id", "wrongpw")
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("err = %v, want ErrAuthentication", err)
	}
}

func TestVerifyCredentialUnknownEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery("SELECT id, password FROM users").
		WithArgs("ghost@clinic.id").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.VerifyCredential(context.Background(), "ghost@clinic.id", "pw")
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("err = %v, want ErrAuthentication", err)
	}
}

func TestVerifyRoleChecksStoredRole(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery("SELECT role FROM users").
		WithArgs("radiographer-1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow(model.RoleRadiographer))

	err := repo.VerifyRole(context.Background(), "radiographer-1", model.RoleDoctor)
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("err = %v, want ErrAuthentication", err)
	}
}

func TestVerifyRoleUnknownCredential(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery("SELECT role FROM users").
		WithArgs("doctor-gone").
		WillReturnError(sql.ErrNoRows)

	err := repo.VerifyRole(context.Background(), "doctor-gone", model.RoleDoctor)
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("err = %v, want ErrAuthentication", err)
	}
}

func TestUserDeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec("DELETE FROM users").
		WithArgs("doctor-gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "doctor-gone")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
