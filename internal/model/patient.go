package model

import "time"

// Patient represents a clinic patient as stored in the `patients` table.
// Age is computed from BornDate once, when the row is written, and stored
// as-is afterwards; it is not recomputed on read.
//
// Fields:
//
//	ID             – primary key, "patient-…" string.
//	MedicNumber    – clinic-issued medical record number.
//	Fullname       – patient name.
//	IDNumber       – unique national identity number.
//	Gender         – gender string.
//	Religion       – religion string.
//	Address        – street address.
//	BornLocation   – place of birth.
//	BornDate       – date of birth.
//	Age            – whole years at the time the row was written.
//	PhoneNumber    – contact number.
//	ReferralOrigin – referring clinic or practitioner.
type Patient struct {
	ID             string    // patients.id
	MedicNumber    string    // patients.medic_number
	Fullname       string    // patients.fullname
	IDNumber       string    // patients.id_number
	Gender         string    // patients.gender
	Religion       string    // patients.religion
	Address        string    // patients.address
	BornLocation   string    // patients.born_location
	BornDate       time.Time // patients.born_date
	Age            int       // patients.age
	PhoneNumber    string    // patients.phone_number
	ReferralOrigin string    // patients.referral_origin
}

// AgeAt returns the patient age in whole years at the given reference time.
// Used when inserting or updating a patient row.
func AgeAt(born, at time.Time) int {
	years := at.Year() - born.Year()
	if at.Month() < born.Month() ||
		(at.Month() == born.Month() && at.Day() < born.Day()) {
		years--
	}
	if years < 0 {
		years = 0
	}
	return years
}
