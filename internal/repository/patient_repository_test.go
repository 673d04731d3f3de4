package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/radiodent/radiodiagnostic-api/internal/model"
)

func samplePatientInput() PatientInput {
	return PatientInput{
		MedicNumber:    "MR-0042",
		Fullname:       "Budi Santoso",
		IDNumber:       "3201010101900001",
		Gender:         "male",
		Religion:       "islam",
		Address:        "Jl. Melati 4",
		BornLocation:   "Bandung",
		BornDate:       time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC),
		PhoneNumber:    "08123456789",
		ReferralOrigin: "Puskesmas Cibiru",
	}
}

func TestPatientCreateDuplicateIDNumberWritesNothing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPatientRepo(db)
	in := samplePatientInput()

	mock.ExpectQuery("SELECT id_number FROM patients").
		WithArgs(in.IDNumber).
		WillReturnRows(sqlmock.NewRows([]string{"id_number"}).AddRow(in.IDNumber))

	_, err := repo.Create(context.Background(), in)
	if !errors.Is(err, ErrInvariant) {
		t.Fatalf("err = %v, want ErrInvariant", err)
	}
}

func TestPatientCreateStoresDerivedAge(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPatientRepo(db)
	in := samplePatientInput()
	wantAge := model.AgeAt(in.BornDate, time.Now().UTC())

	mock.ExpectQuery("SELECT id_number FROM patients").
		WithArgs(in.IDNumber).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO patients").
		WithArgs(sqlmock.AnyArg(), in.MedicNumber, in.Fullname, in.IDNumber,
			in.Gender, in.Religion, in.Address, in.BornLocation, in.BornDate,
			wantAge, in.PhoneNumber, in.ReferralOrigin).
		WillReturnResult(sqlmock.NewResult(0, 1))

	p, err := repo.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !strings.HasPrefix(p.ID, "patient-") {
		t.Errorf("id %q not prefixed", p.ID)
	}
	if p.Age != wantAge {
		t.Errorf("age = %d, want %d", p.Age, wantAge)
	}
}

func TestPatientUpdateMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPatientRepo(db)
	in := samplePatientInput()

	mock.ExpectExec("UPDATE patients SET").
		WithArgs(in.MedicNumber, in.Fullname, in.IDNumber, in.Gender, in.Religion,
			in.Address, in.BornLocation, in.BornDate, sqlmock.AnyArg(),
			in.PhoneNumber, in.ReferralOrigin, "patient-gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), "patient-gone", in)
	if !errors.Is(err, ErrInvariant) {
		t.Fatalf("err = %v, want ErrInvariant", err)
	}
}

func TestPatientDeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPatientRepo(db)

	mock.ExpectExec("DELETE FROM patients").
		WithArgs("patient-gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "patient-gone")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
