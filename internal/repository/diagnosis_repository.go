package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/radiodent/radiodiagnostic-api/internal/model"
	"github.com/radiodent/radiodiagnostic-api/internal/utils"
)

// DiagnosisRepo owns all SQL touching the `diagnoses` table. Rows are keyed
// by the natural (tooth_number, radiographic_id) pair; a UNIQUE KEY on that
// pair lets both upserts run as a single atomic statement, so two concurrent
// upserts for the same tooth can never produce duplicate rows.
type DiagnosisRepo struct{ DB *sql.DB }

func NewDiagnosisRepo(db *sql.DB) *DiagnosisRepo { return &DiagnosisRepo{DB: db} }

const diagnosisColumns = `id, tooth_number, system_diagnosis, manual_diagnosis,
	verificator_diagnosis, verificator_note, is_correct, radiographic_id`

// UpsertSystem records a model-generated diagnosis for one tooth on one
// radiograph. An existing row for the pair keeps its id and only the
// system_diagnosis field changes.
func (r *DiagnosisRepo) UpsertSystem(ctx context.Context, radiographicID string, toothNumber int, systemDiagnosis string) (model.Diagnosis, error) {
	if !model.ValidToothNumber(toothNumber) {
		return model.Diagnosis{}, fmt.Errorf("%w: invalid tooth number %d", ErrInvariant, toothNumber)
	}
	id, err := utils.NewID("diagnose")
	if err != nil {
		return model.Diagnosis{}, err
	}

	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO diagnoses (id, tooth_number, system_diagnosis, radiographic_id)
		VALUES (?,?,?,?)
		ON DUPLICATE KEY UPDATE system_diagnosis=VALUES(system_diagnosis)`,
		id, toothNumber, systemDiagnosis, radiographicID)
	if err != nil {
		if strings.Contains(err.Error(), "1452") { // FK violation
			return model.Diagnosis{}, fmt.Errorf("%w: radiograph %s", ErrNotFound, radiographicID)
		}
		return model.Diagnosis{}, err
	}

	return r.getByNaturalKey(ctx, radiographicID, toothNumber)
}

// UpsertManual records a doctor-entered diagnosis for one tooth on one
// radiograph and flags the row as confirmed. An existing row for the pair
// keeps its id and only the manual fields change.
func (r *DiagnosisRepo) UpsertManual(ctx context.Context, radiographicID string, toothNumber int, manualDiagnosis string) (model.Diagnosis, error) {
	if !model.ValidToothNumber(toothNumber) {
		return model.Diagnosis{}, fmt.Errorf("%w: invalid tooth number %d", ErrInvariant, toothNumber)
	}
	id, err := utils.NewID("diagnose")
	if err != nil {
		return model.Diagnosis{}, err
	}

	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO diagnoses (id, tooth_number, manual_diagnosis, is_correct, radiographic_id)
		VALUES (?,?,?,1,?)
		ON DUPLICATE KEY UPDATE manual_diagnosis=VALUES(manual_diagnosis), is_correct=1`,
		id, toothNumber, manualDiagnosis, radiographicID)
	if err != nil {
		if strings.Contains(err.Error(), "1452") { // FK violation
			return model.Diagnosis{}, fmt.Errorf("%w: radiograph %s", ErrNotFound, radiographicID)
		}
		return model.Diagnosis{}, err
	}

	return r.getByNaturalKey(ctx, radiographicID, toothNumber)
}

// UpdateVerificator stores the reviewer's verdict on an existing diagnosis.
// Updating a missing id is a failed write, not a lookup, and yields
// ErrInvariant.
func (r *DiagnosisRepo) UpdateVerificator(ctx context.Context, diagnosisID, verificatorDiagnosis, verificatorNote string, isCorrect int) (model.Diagnosis, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE diagnoses SET verificator_diagnosis=?, verificator_note=?, is_correct=? WHERE id=?",
		verificatorDiagnosis, verificatorNote, isCorrect, diagnosisID)
	if err != nil {
		return model.Diagnosis{}, err
	}
	if err := requireMatch(res, fmt.Errorf("%w: diagnosis update failed", ErrInvariant)); err != nil {
		return model.Diagnosis{}, err
	}
	return r.GetByID(ctx, diagnosisID)
}

// GetByID fetches one diagnosis row.
func (r *DiagnosisRepo) GetByID(ctx context.Context, diagnosisID string) (model.Diagnosis, error) {
	var d model.Diagnosis
	err := scanDiagnosis(r.DB.QueryRowContext(ctx,
		"SELECT "+diagnosisColumns+" FROM diagnoses WHERE id=? LIMIT 1", diagnosisID), &d)
	if err == sql.ErrNoRows {
		return model.Diagnosis{}, fmt.Errorf("%w: diagnosis %s", ErrNotFound, diagnosisID)
	}
	return d, err
}

// ListByRadiographic returns every per-tooth diagnosis of a radiograph,
// ordered by tooth number. The result feeds the aggregated array in the
// radiograph detail view.
func (r *DiagnosisRepo) ListByRadiographic(ctx context.Context, radiographicID string) ([]model.Diagnosis, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+diagnosisColumns+" FROM diagnoses WHERE radiographic_id=? ORDER BY tooth_number",
		radiographicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Diagnosis{}
	for rows.Next() {
		var d model.Diagnosis
		if err := scanDiagnosis(rows, &d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// getByNaturalKey fetches the single surviving row for a pair. More than one
// row would violate the unique key; the LIMIT-less scan surfaces that as an
// internal error instead of hiding it.
func (r *DiagnosisRepo) getByNaturalKey(ctx context.Context, radiographicID string, toothNumber int) (model.Diagnosis, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+diagnosisColumns+" FROM diagnoses WHERE tooth_number=? AND radiographic_id=?",
		toothNumber, radiographicID)
	if err != nil {
		return model.Diagnosis{}, err
	}
	defer rows.Close()

	var (
		d model.Diagnosis
		n int
	)
	for rows.Next() {
		if n == 0 {
			if err := scanDiagnosis(rows, &d); err != nil {
				return model.Diagnosis{}, err
			}
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return model.Diagnosis{}, err
	}
	switch {
	case n == 0:
		return model.Diagnosis{}, fmt.Errorf("%w: diagnosis for tooth %d on %s", ErrNotFound, toothNumber, radiographicID)
	case n > 1:
		return model.Diagnosis{}, fmt.Errorf("duplicate diagnosis rows for tooth %d on %s", toothNumber, radiographicID)
	}
	return d, nil
}

func scanDiagnosis(row rowScanner, d *model.Diagnosis) error {
	var (
		system, manual sql.NullString
		verDiag, note  sql.NullString
		isCorrect      sql.NullInt64
	)
	err := row.Scan(&d.ID, &d.ToothNumber, &system, &manual,
		&verDiag, &note, &isCorrect, &d.RadiographicID)
	if err != nil {
		return err
	}
	d.SystemDiagnosis = strPtr(system)
	d.ManualDiagnosis = strPtr(manual)
	d.VerificatorDiagnosis = strPtr(verDiag)
	d.VerificatorNote = strPtr(note)
	if isCorrect.Valid {
		v := int(isCorrect.Int64)
		d.IsCorrect = &v
	}
	return nil
}
