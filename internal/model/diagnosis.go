package model

// Diagnosis is a per-tooth finding attached to a radiograph, as stored in
// the `diagnoses` table. Rows are unique per (tooth_number, radiographic_id)
// pair; both the system pipeline and doctors upsert against that key.
//
// Fields:
//
//	ID                   – primary key, "diagnose-…" string.
//	ToothNumber          – FDI two-digit tooth code.
//	SystemDiagnosis      – label produced by the detection model (nullable).
//	ManualDiagnosis      – label entered by the doctor (nullable).
//	VerificatorDiagnosis – reviewer override label (nullable).
//	VerificatorNote      – reviewer free-text note (nullable).
//	IsCorrect            – reviewer correctness flag (nullable).
//	RadiographicID       – radiograph the finding belongs to.
type Diagnosis struct {
	ID                   string  // diagnoses.id
	ToothNumber          int     // diagnoses.tooth_number
	SystemDiagnosis      *string // diagnoses.system_diagnosis (nullable)
	ManualDiagnosis      *string // diagnoses.manual_diagnosis (nullable)
	VerificatorDiagnosis *string // diagnoses.verificator_diagnosis (nullable)
	VerificatorNote      *string // diagnoses.verificator_note (nullable)
	IsCorrect            *int    // diagnoses.is_correct (nullable)
	RadiographicID       string  // diagnoses.radiographic_id
}

// fdiToothNumbers is the set of tooth codes accepted by the diagnosis
// endpoints: permanent teeth (quadrants 1-4) and deciduous teeth
// (quadrants 5-8) in FDI notation.
var fdiToothNumbers = map[int]bool{}

func init() {
	for _, n := range []int{
		11, 12, 13, 14, 15, 16, 17, 18,
		21, 22, 23, 24, 25, 26, 27, 28,
		31, 32, 33, 34, 35, 36, 37, 38,
		41, 42, 43, 44, 45, 46, 47, 48,
		51, 52, 53, 54, 55,
		61, 62, 63, 64, 65,
		71, 72, 73, 74, 75,
		81, 82, 83, 84, 85,
	} {
		fdiToothNumbers[n] = true
	}
}

// ValidToothNumber reports whether n is a valid FDI tooth code.
func ValidToothNumber(n int) bool {
	return fdiToothNumbers[n]
}
