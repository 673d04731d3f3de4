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

// RadiographicRepo owns all SQL touching the `radiographics` and `histories`
// tables. A history row links a radiograph to the patient and the staff who
// produced and review it; the upload path keeps at most one history per
// patient and overwrites the radiograph it references on repeat visits.
type RadiographicRepo struct{ DB *sql.DB }

func NewRadiographicRepo(db *sql.DB) *RadiographicRepo { return &RadiographicRepo{DB: db} }

// UploadForPatient records a panoramic image for a patient. If the patient
// already has a history, the radiograph referenced by that history is
// overwritten in place (fresh upload date, interpretation cleared) instead
// of inserting a new row; otherwise a radiographic and a linking history are
// created together. The whole operation runs in one transaction with the
// history row locked, so concurrent uploads for the same patient cannot
// produce orphan radiographs.
func (r *RadiographicRepo) UploadForPatient(ctx context.Context, patientID, radiographerID, pictureURL string) (model.Radiographic, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Radiographic{}, err
	}
	defer tx.Rollback()

	uploadDate := time.Now().UTC().Truncate(24 * time.Hour)

	var radiographicID string
	err = tx.QueryRowContext(ctx,
		"SELECT radiographic_id FROM histories WHERE patient_id=? LIMIT 1 FOR UPDATE",
		patientID).Scan(&radiographicID)
	switch {
	case err == sql.ErrNoRows:
		radiographicID, err = r.insertPair(ctx, tx, patientID, radiographerID, pictureURL, uploadDate)
		if err != nil {
			return model.Radiographic{}, err
		}
	case err != nil:
		return model.Radiographic{}, err
	default:
		// repeat visit: reuse the existing radiograph, reset its review state
		res, err := tx.ExecContext(ctx,
			`UPDATE radiographics SET panoramik_picture=?, panoramik_upload_date=?,
				panoramik_check_date=NULL, manual_interpretation=NULL, status=0
			WHERE id=?`,
			pictureURL, uploadDate, radiographicID)
		if err != nil {
			return model.Radiographic{}, err
		}
		if err := requireMatch(res, fmt.Errorf("%w: radiograph update failed", ErrInvariant)); err != nil {
			return model.Radiographic{}, err
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE histories SET radiographer_id=? WHERE patient_id=?",
			radiographerID, patientID); err != nil {
			return model.Radiographic{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Radiographic{}, err
	}
	return model.Radiographic{
		ID:                  radiographicID,
		PanoramikPicture:    pictureURL,
		PanoramikUploadDate: uploadDate,
		Status:              0,
	}, nil
}

// insertPair creates the radiographic row and the history row linking it to
// the patient. A foreign-key failure on patient_id means the patient does
// not exist.
func (r *RadiographicRepo) insertPair(ctx context.Context, tx *sql.Tx, patientID, radiographerID, pictureURL string, uploadDate time.Time) (string, error) {
	radiographicID, err := utils.NewID("radiographic")
	if err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO radiographics (id, panoramik_picture, panoramik_upload_date, status)
		VALUES (?,?,?,0)`,
		radiographicID, pictureURL, uploadDate); err != nil {
		return "", err
	}

	historyID, err := utils.NewID("history")
	if err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO histories (id, patient_id, radiographer_id, radiographic_id)
		VALUES (?,?,?,?)`,
		historyID, patientID, radiographerID, radiographicID); err != nil {
		if strings.Contains(err.Error(), "1452") { // FK violation
			return "", fmt.Errorf("%w: patient %s", ErrNotFound, patientID)
		}
		return "", err
	}
	return radiographicID, nil
}

// RadiographRow is one joined radiograph view: the radiograph itself plus
// patient and staff names from its history.
type RadiographRow struct {
	PatientID            string     `json:"patient_id"`
	MedicNumber          string     `json:"medic_number"`
	PatientName          string     `json:"fullname"`
	RadiographicID       string     `json:"radiographics_id"`
	PanoramikPicture     string     `json:"panoramik_picture"`
	PanoramikUploadDate  time.Time  `json:"panoramik_upload_date"`
	PanoramikCheckDate   *time.Time `json:"panoramik_check_date"`
	ManualInterpretation *string    `json:"manual_interpretation"`
	Status               int        `json:"status"`
	DoctorID             *string    `json:"doctor_id,omitempty"`
	DoctorName           *string    `json:"doctor_name"`
	RadiographerName     string     `json:"radiographer_name"`
}

const radiographJoin = `
	FROM histories
	LEFT JOIN patients ON histories.patient_id = patients.id
	LEFT JOIN radiographics ON histories.radiographic_id = radiographics.id
	LEFT JOIN users doctor ON histories.doctor_id = doctor.id
	INNER JOIN users radiographer ON histories.radiographer_id = radiographer.id`

const radiographSelect = `SELECT histories.patient_id, patients.medic_number,
	patients.fullname, radiographics.id, radiographics.panoramik_picture,
	radiographics.panoramik_upload_date, radiographics.panoramik_check_date,
	radiographics.manual_interpretation, radiographics.status,
	histories.doctor_id, doctor.fullname, radiographer.fullname` + radiographJoin

// GetByID returns the joined view of one radiograph. Missing rows yield
// ErrNotFound.
func (r *RadiographicRepo) GetByID(ctx context.Context, radiographicID string) (RadiographRow, error) {
	var row RadiographRow
	err := scanRadiographRow(r.DB.QueryRowContext(ctx,
		radiographSelect+" WHERE histories.radiographic_id=? LIMIT 1", radiographicID), &row)
	if err == sql.ErrNoRows {
		return RadiographRow{}, fmt.Errorf("%w: radiograph %s", ErrNotFound, radiographicID)
	}
	return row, err
}

// UpdatePicture replaces the stored image URL of a radiograph.
func (r *RadiographicRepo) UpdatePicture(ctx context.Context, radiographicID, pictureURL string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE radiographics SET panoramik_picture=? WHERE id=?", pictureURL, radiographicID)
	if err != nil {
		return err
	}
	return requireMatch(res, fmt.Errorf("%w: radiograph picture update failed", ErrInvariant))
}

// UpdateInterpretation stores the doctor's manual interpretation and stamps
// the check date with the current date.
func (r *RadiographicRepo) UpdateInterpretation(ctx context.Context, radiographicID, interpretation string) error {
	checkDate := time.Now().UTC().Truncate(24 * time.Hour)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE radiographics SET manual_interpretation=?, panoramik_check_date=?, status=1 WHERE id=?",
		interpretation, checkDate, radiographicID)
	if err != nil {
		return err
	}
	return requireMatch(res, fmt.Errorf("%w: interpretation update failed", ErrInvariant))
}

// ClearInterpretation removes the manual interpretation and its check date,
// returning the radiograph to the unreviewed state.
func (r *RadiographicRepo) ClearInterpretation(ctx context.Context, radiographicID string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE radiographics SET manual_interpretation=NULL, panoramik_check_date=NULL, status=0 WHERE id=?",
		radiographicID)
	if err != nil {
		return err
	}
	return requireMatch(res, fmt.Errorf("%w: interpretation update failed", ErrInvariant))
}

// AssignDoctor sets the reviewing doctor on the history of a radiograph.
func (r *RadiographicRepo) AssignDoctor(ctx context.Context, radiographicID, doctorID string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE histories SET doctor_id=? WHERE radiographic_id=?", doctorID, radiographicID)
	if err != nil {
		if strings.Contains(err.Error(), "1452") { // FK violation
			return fmt.Errorf("%w: doctor %s", ErrNotFound, doctorID)
		}
		return err
	}
	return requireMatch(res, fmt.Errorf("%w: radiograph assignment failed", ErrInvariant))
}

// Delete removes a radiograph and its dependent history and diagnosis rows.
// Missing ids yield ErrNotFound.
func (r *RadiographicRepo) Delete(ctx context.Context, radiographicID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM diagnoses WHERE radiographic_id=?", radiographicID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM histories WHERE radiographic_id=?", radiographicID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		"DELETE FROM radiographics WHERE id=?", radiographicID)
	if err != nil {
		return err
	}
	if err := requireMatch(res, fmt.Errorf("%w: radiograph %s", ErrNotFound, radiographicID)); err != nil {
		return err
	}
	return tx.Commit()
}

func scanRadiographRow(row rowScanner, d *RadiographRow) error {
	var (
		checkDate      sql.NullTime
		interpretation sql.NullString
		doctorID       sql.NullString
		doctorName     sql.NullString
	)
	err := row.Scan(&d.PatientID, &d.MedicNumber, &d.PatientName,
		&d.RadiographicID, &d.PanoramikPicture, &d.PanoramikUploadDate,
		&checkDate, &interpretation, &d.Status,
		&doctorID, &doctorName, &d.RadiographerName)
	if err != nil {
		return err
	}
	if checkDate.Valid {
		t := checkDate.Time
		d.PanoramikCheckDate = &t
	}
	d.ManualInterpretation = strPtr(interpretation)
	d.DoctorID = strPtr(doctorID)
	d.DoctorName = strPtr(doctorName)
	return nil
}
