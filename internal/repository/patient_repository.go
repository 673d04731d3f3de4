package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/radiodent/radiodiagnostic-api/internal/model"
	"github.com/radiodent/radiodiagnostic-api/internal/utils"
)

// PatientRepo owns all SQL touching the `patients` table.
type PatientRepo struct{ DB *sql.DB }

func NewPatientRepo(db *sql.DB) *PatientRepo { return &PatientRepo{DB: db} }

const patientColumns = `id, medic_number, fullname, id_number, gender, religion,
	address, born_location, born_date, age, phone_number, referral_origin`

// PatientInput carries the writable fields of a patient record. Age is not
// part of the input: it is derived from BornDate when the row is written.
type PatientInput struct {
	MedicNumber    string
	Fullname       string
	IDNumber       string
	Gender         string
	Religion       string
	Address        string
	BornLocation   string
	BornDate       time.Time
	PhoneNumber    string
	ReferralOrigin string
}

// Create inserts a patient with a fresh "patient-…" id. The stored age is
// computed from the birth date at insert time and never recomputed. A
// duplicate id_number yields ErrInvariant and performs no write.
func (r *PatientRepo) Create(ctx context.Context, in PatientInput) (model.Patient, error) {
	if err := r.verifyNewIDNumber(ctx, in.IDNumber); err != nil {
		return model.Patient{}, err
	}

	id, err := utils.NewID("patient")
	if err != nil {
		return model.Patient{}, err
	}
	age := model.AgeAt(in.BornDate, time.Now().UTC())

	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO patients (id, medic_number, fullname, id_number, gender, religion,
			address, born_location, born_date, age, phone_number, referral_origin)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		id, in.MedicNumber, in.Fullname, in.IDNumber, in.Gender, in.Religion,
		in.Address, in.BornLocation, in.BornDate, age, in.PhoneNumber, in.ReferralOrigin)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return model.Patient{}, fmt.Errorf("%w: patient already registered", ErrInvariant)
		}
		return model.Patient{}, err
	}

	return model.Patient{
		ID:             id,
		MedicNumber:    in.MedicNumber,
		Fullname:       in.Fullname,
		IDNumber:       in.IDNumber,
		Gender:         in.Gender,
		Religion:       in.Religion,
		Address:        in.Address,
		BornLocation:   in.BornLocation,
		BornDate:       in.BornDate,
		Age:            age,
		PhoneNumber:    in.PhoneNumber,
		ReferralOrigin: in.ReferralOrigin,
	}, nil
}

// verifyNewIDNumber rejects national id numbers already registered.
func (r *PatientRepo) verifyNewIDNumber(ctx context.Context, idNumber string) error {
	var existing string
	err := r.DB.QueryRowContext(ctx,
		"SELECT id_number FROM patients WHERE id_number=? LIMIT 1", idNumber).Scan(&existing)
	switch {
	case err == sql.ErrNoRows:
		return nil
	case err != nil:
		return err
	default:
		return fmt.Errorf("%w: patient already registered", ErrInvariant)
	}
}

// GetAll returns every patient ordered by name.
func (r *PatientRepo) GetAll(ctx context.Context) ([]model.Patient, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+patientColumns+" FROM patients ORDER BY fullname")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Patient{}
	for rows.Next() {
		var p model.Patient
		if err := scanPatient(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetByID fetches a patient by id. Missing rows yield ErrNotFound.
func (r *PatientRepo) GetByID(ctx context.Context, id string) (model.Patient, error) {
	var p model.Patient
	err := scanPatient(r.DB.QueryRowContext(ctx,
		"SELECT "+patientColumns+" FROM patients WHERE id=? LIMIT 1", id), &p)
	if err == sql.ErrNoRows {
		return model.Patient{}, fmt.Errorf("%w: patient %s", ErrNotFound, id)
	}
	return p, err
}

// Update rewrites a patient row. The stored age is refreshed from the (new)
// birth date at write time, matching the insert-time derivation. A changed
// id_number must not collide with another patient.
func (r *PatientRepo) Update(ctx context.Context, id string, in PatientInput) error {
	age := model.AgeAt(in.BornDate, time.Now().UTC())
	res, err := r.DB.ExecContext(ctx,
		`UPDATE patients SET medic_number=?, fullname=?, id_number=?, gender=?,
			religion=?, address=?, born_location=?, born_date=?, age=?,
			phone_number=?, referral_origin=?
		WHERE id=?`,
		in.MedicNumber, in.Fullname, in.IDNumber, in.Gender, in.Religion,
		in.Address, in.BornLocation, in.BornDate, age, in.PhoneNumber,
		in.ReferralOrigin, id)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return fmt.Errorf("%w: patient already registered", ErrInvariant)
		}
		return err
	}
	return requireMatch(res, fmt.Errorf("%w: patient update failed", ErrInvariant))
}

// Delete removes a patient row. Missing ids yield ErrNotFound.
func (r *PatientRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM patients WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireMatch(res, fmt.Errorf("%w: patient %s", ErrNotFound, id))
}

func scanPatient(row rowScanner, p *model.Patient) error {
	return row.Scan(&p.ID, &p.MedicNumber, &p.Fullname, &p.IDNumber, &p.Gender,
		&p.Religion, &p.Address, &p.BornLocation, &p.BornDate, &p.Age,
		&p.PhoneNumber, &p.ReferralOrigin)
}
