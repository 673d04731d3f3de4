package model

import "time"

// Radiographic represents one panoramic X-ray image plus its interpretation
// state, as stored in the `radiographics` table.
//
// Fields:
//
//	ID                   – primary key, "radiographic-…" string.
//	PanoramikPicture     – URL of the uploaded panoramic image.
//	PanoramikUploadDate  – date the image was uploaded.
//	PanoramikCheckDate   – date the doctor recorded an interpretation (nullable).
//	ManualInterpretation – free-text interpretation by the doctor (nullable).
//	Status               – 0/1 workflow flag.
type Radiographic struct {
	ID                   string     // radiographics.id
	PanoramikPicture     string     // radiographics.panoramik_picture
	PanoramikUploadDate  time.Time  // radiographics.panoramik_upload_date
	PanoramikCheckDate   *time.Time // radiographics.panoramik_check_date (nullable)
	ManualInterpretation *string    // radiographics.manual_interpretation (nullable)
	Status               int        // radiographics.status
}

// History is one clinical encounter linking a patient, the staff involved
// and a radiograph, as stored in the `histories` table. The upload flow
// keeps at most one history per patient and re-points uploads at the
// radiograph it references instead of inserting new rows per visit.
//
// Fields:
//
//	ID             – primary key, "history-…" string.
//	PatientID      – patient the encounter belongs to.
//	RadiographerID – radiographer who produced the image.
//	DoctorID       – reviewing doctor (nullable until assigned).
//	RadiographicID – radiograph produced during the encounter.
type History struct {
	ID             string  // histories.id
	PatientID      string  // histories.patient_id
	RadiographerID string  // histories.radiographer_id
	DoctorID       *string // histories.doctor_id (nullable)
	RadiographicID string  // histories.radiographic_id
}
