package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

var diagnosisTestColumns = []string{"id", "tooth_number", "system_diagnosis",
	"manual_diagnosis", "verificator_diagnosis", "verificator_note",
	"is_correct", "radiographic_id"}

func TestUpsertSystemRejectsInvalidTooth(t *testing.T) {
	db, _ := newMock(t) // no statements expected
	repo := NewDiagnosisRepo(db)

	_, err := repo.UpsertSystem(context.Background(), "radiographic-1", 19, "karies")
	if !errors.Is(err, ErrInvariant) {
		t.Fatalf("err = %v, want ErrInvariant", err)
	}
}

func TestUpsertSystemSingleStatement(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDiagnosisRepo(db)

	mock.ExpectExec("ON DUPLICATE KEY UPDATE system_diagnosis").
		WithArgs(sqlmock.AnyArg(), 36, "karies", "radiographic-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM diagnoses WHERE tooth_number").
		WithArgs(36, "radiographic-1").
		WillReturnRows(sqlmock.NewRows(diagnosisTestColumns).
			AddRow("diagnose-1", 36, "karies", nil, nil, nil, nil, "radiographic-1"))

	d, err := repo.UpsertSystem(context.Background(), "radiographic-1", 36, "karies")
	if err != nil {
		t.Fatalf("UpsertSystem: %v", err)
	}
	if d.ID != "diagnose-1" || d.ToothNumber != 36 {
		t.Errorf("row = %+v", d)
	}
	if d.SystemDiagnosis == nil || *d.SystemDiagnosis != "karies" {
		t.Errorf("system diagnosis = %v", d.SystemDiagnosis)
	}
	if d.ManualDiagnosis != nil || d.IsCorrect != nil {
		t.Errorf("manual fields should stay empty: %+v", d)
	}
}

func TestUpsertManualMarksConfirmed(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDiagnosisRepo(db)

	mock.ExpectExec("ON DUPLICATE KEY UPDATE manual_diagnosis").
		WithArgs(sqlmock.AnyArg(), 21, "impaksi", "radiographic-1").
		WillReturnResult(sqlmock.NewResult(0, 2)) // existing row updated
	mock.ExpectQuery("SELECT (.+) FROM diagnoses WHERE tooth_number").
		WithArgs(21, "radiographic-1").
		WillReturnRows(sqlmock.NewRows(diagnosisTestColumns).
			AddRow("diagnose-2", 21, "karies", "impaksi", nil, nil, 1, "radiographic-1"))

	d, err := repo.UpsertManual(context.Background(), "radiographic-1", 21, "impaksi")
	if err != nil {
		t.Fatalf("UpsertManual: %v", err)
	}
	if d.ID != "diagnose-2" {
		t.Errorf("id = %q, want the pre-existing row id", d.ID)
	}
	if d.IsCorrect == nil || *d.IsCorrect != 1 {
		t.Errorf("is_correct = %v, want 1", d.IsCorrect)
	}
	if d.SystemDiagnosis == nil || *d.SystemDiagnosis != "karies" {
		t.Errorf("system diagnosis lost: %v", d.SystemDiagnosis)
	}
}

func TestUpsertManualUnknownRadiograph(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDiagnosisRepo(db)

	mock.ExpectExec("ON DUPLICATE KEY UPDATE manual_diagnosis").
		WithArgs(sqlmock.AnyArg(), 21, "impaksi", "radiographic-gone").
		WillReturnError(errors.New("Error 1452: Cannot add or update a child row"))

	_, err := repo.UpsertManual(context.Background(), "radiographic-gone", 21, "impaksi")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateVerificatorMissingRow(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDiagnosisRepo(db)

	mock.ExpectExec("UPDATE diagnoses SET verificator_diagnosis").
		WithArgs("benar", "sudah sesuai", 1, "diagnose-gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.UpdateVerificator(context.Background(), "diagnose-gone", "benar", "sudah sesuai", 1)
	if !errors.Is(err, ErrInvariant) {
		t.Fatalf("err = %v, want ErrInvariant", err)
	}
}

func TestGetByNaturalKeyDuplicateRows(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDiagnosisRepo(db)

	mock.ExpectExec("ON DUPLICATE KEY UPDATE system_diagnosis").
		WithArgs(sqlmock.AnyArg(), 36, "karies", "radiographic-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM diagnoses WHERE tooth_number").
		WithArgs(36, "radiographic-1").
		WillReturnRows(sqlmock.NewRows(diagnosisTestColumns).
			AddRow("diagnose-1", 36, "karies", nil, nil, nil, nil, "radiographic-1").
			AddRow("diagnose-9", 36, "karies", nil, nil, nil, nil, "radiographic-1"))

	_, err := repo.UpsertSystem(context.Background(), "radiographic-1", 36, "karies")
	if err == nil {
		t.Fatal("duplicate rows for the unique pair must surface an error")
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvariant) {
		t.Fatalf("err = %v, want a plain internal error", err)
	}
}
