package model

import (
	"testing"
	"time"
)

func TestValidRole(t *testing.T) {
	for _, r := range []string{RoleAdmin, RoleDoctor, RoleRadiographer} {
		if !ValidRole(r) {
			t.Errorf("ValidRole(%q) = false, want true", r)
		}
	}
	for _, r := range []string{"", "Doctor", "ADMIN", "nurse", "verificator"} {
		if ValidRole(r) {
			t.Errorf("ValidRole(%q) = true, want false", r)
		}
	}
}

func TestAgeAt(t *testing.T) {
	born := time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		at   time.Time
		want int
	}{
		{"day before birthday", time.Date(2020, time.June, 14, 0, 0, 0, 0, time.UTC), 29},
		{"on birthday", time.Date(2020, time.June, 15, 0, 0, 0, 0, time.UTC), 30},
		{"day after birthday", time.Date(2020, time.June, 16, 0, 0, 0, 0, time.UTC), 30},
		{"earlier month", time.Date(2020, time.February, 1, 0, 0, 0, 0, time.UTC), 29},
		{"later month", time.Date(2020, time.December, 1, 0, 0, 0, 0, time.UTC), 30},
		{"born in the future clamps to zero", time.Date(1989, time.January, 1, 0, 0, 0, 0, time.UTC), 0},
	}
	for _, tc := range cases {
		if got := AgeAt(born, tc.at); got != tc.want {
			t.Errorf("%s: AgeAt = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestValidToothNumber(t *testing.T) {
	valid := []int{11, 18, 21, 28, 31, 38, 41, 48, 51, 55, 61, 65, 71, 75, 81, 85}
	for _, n := range valid {
		if !ValidToothNumber(n) {
			t.Errorf("ValidToothNumber(%d) = false, want true", n)
		}
	}
	invalid := []int{0, 1, 10, 19, 20, 29, 39, 49, 50, 56, 60, 66, 76, 86, 90, 111, -11}
	for _, n := range invalid {
		if ValidToothNumber(n) {
			t.Errorf("ValidToothNumber(%d) = true, want false", n)
		}
	}
}
