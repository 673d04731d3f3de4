// Package queue defines message payloads exchanged over the message broker
// and the background consumer that ingests detection results.
package queue

// RadiographUploadedEvent is published after a panoramic image is stored and
// its database rows are written. The detection worker picks it up, runs the
// model on the image and answers with a DiagnosisResultEvent.
type RadiographUploadedEvent struct {
	RadiographicID string `json:"radiographic_id"`
	PatientID      string `json:"patient_id"`
	PictureURL     string `json:"picture_url"`
	UploadedAt     string `json:"uploaded_at"`
}

// ToothResult is one per-tooth finding inside a DiagnosisResultEvent.
type ToothResult struct {
	ToothNumber int    `json:"tooth_number"`
	Diagnosis   string `json:"diagnosis"`
}

// DiagnosisResultEvent carries the detection model's output for one
// radiograph. Each tooth result is upserted into the diagnoses table under
// the (tooth_number, radiographic_id) natural key, so re-deliveries and
// re-runs of the model update rows instead of duplicating them.
type DiagnosisResultEvent struct {
	RadiographicID string        `json:"radiographic_id"`
	Results        []ToothResult `json:"results"`
	ProducedAt     string        `json:"produced_at"`
}
