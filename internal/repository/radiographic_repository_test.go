package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var radiographTestColumns = []string{"patient_id", "medic_number", "fullname",
	"id", "panoramik_picture", "panoramik_upload_date", "panoramik_check_date",
	"manual_interpretation", "status", "doctor_id", "doctor_fullname",
	"radiographer_fullname"}

func TestUploadForPatientFirstVisitInsertsPair(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRadiographicRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT radiographic_id FROM histories").
		WithArgs("patient-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO radiographics").
		WithArgs(sqlmock.AnyArg(), "/upload/pictures/pano.png", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO histories").
		WithArgs(sqlmock.AnyArg(), "patient-1", "radiographer-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rad, err := repo.UploadForPatient(context.Background(), "patient-1", "radiographer-1", "/upload/pictures/pano.png")
	if err != nil {
		t.Fatalf("UploadForPatient: %v", err)
	}
	if !strings.HasPrefix(rad.ID, "radiographic-") {
		t.Errorf("id %q not prefixed", rad.ID)
	}
	if rad.Status != 0 || rad.PanoramikCheckDate != nil {
		t.Errorf("fresh upload must be unreviewed: %+v", rad)
	}
}

func TestUploadForPatientRepeatVisitOverwrites(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRadiographicRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT radiographic_id FROM histories").
		WithArgs("patient-1").
		WillReturnRows(sqlmock.NewRows([]string{"radiographic_id"}).AddRow("radiographic-9"))
	mock.ExpectExec("UPDATE radiographics SET panoramik_picture").
		WithArgs("/upload/pictures/pano2.png", sqlmock.AnyArg(), "radiographic-9").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE histories SET radiographer_id").
		WithArgs("radiographer-2", "patient-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rad, err := repo.UploadForPatient(context.Background(), "patient-1", "radiographer-2", "/upload/pictures/pano2.png")
	if err != nil {
		t.Fatalf("UploadForPatient: %v", err)
	}
	if rad.ID != "radiographic-9" {
		t.Errorf("id = %q, want the reused radiograph id", rad.ID)
	}
	if rad.ManualInterpretation != nil || rad.Status != 0 {
		t.Errorf("repeat upload must clear the review state: %+v", rad)
	}
}

func TestUploadForPatientUnknownPatient(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRadiographicRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT radiographic_id FROM histories").
		WithArgs("patient-gone").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO radiographics").
		WithArgs(sqlmock.AnyArg(), "/upload/pictures/pano.png", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO histories").
		WithArgs(sqlmock.AnyArg(), "patient-gone", "radiographer-1", sqlmock.AnyArg()).
		WillReturnError(errors.New("Error 1452: Cannot add or update a child row"))
	mock.ExpectRollback()

	_, err := repo.UploadForPatient(context.Background(), "patient-gone", "radiographer-1", "/upload/pictures/pano.png")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListAppliesMonthAndSearchFilters(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRadiographicRepo(db)
	uploaded := time.Date(2023, time.March, 7, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(3, "%budi%", "%budi%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT histories.patient_id").
		WithArgs(3, "%budi%", "%budi%", 20, 0).
		WillReturnRows(sqlmock.NewRows(radiographTestColumns).
			AddRow("patient-1", "MR-0042", "Budi Santoso", "radiographic-9",
				"/upload/pictures/pano.png", uploaded, nil, nil, 0,
				nil, nil, "Rina"))

	rows, total, err := repo.List(context.Background(), RadiographSearchQuery{Month: 3, Search: "Budi"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("total=%d rows=%d", total, len(rows))
	}
	got := rows[0]
	if got.PatientName != "Budi Santoso" || got.RadiographerName != "Rina" {
		t.Errorf("row = %+v", got)
	}
	if got.DoctorName != nil || got.PanoramikCheckDate != nil {
		t.Errorf("unreviewed row must keep nil review fields: %+v", got)
	}
}

func TestAllByMonthRejectsInvalidMonth(t *testing.T) {
	db, _ := newMock(t) // no statements expected
	repo := NewRadiographicRepo(db)

	_, err := repo.AllByMonth(context.Background(), 13)
	if !errors.Is(err, ErrInvariant) {
		t.Fatalf("err = %v, want ErrInvariant", err)
	}
}

func TestRadiographDeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRadiographicRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM diagnoses").
		WithArgs("radiographic-gone").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM histories").
		WithArgs("radiographic-gone").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM radiographics").
		WithArgs("radiographic-gone").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "radiographic-gone")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
