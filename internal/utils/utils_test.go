package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewID(t *testing.T) {
	id, err := NewID("patient")
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	if !strings.HasPrefix(id, "patient-") {
		t.Fatalf("id %q lacks prefix", id)
	}
	if got := len(strings.TrimPrefix(id, "patient-")); got != 16 {
		t.Fatalf("suffix length = %d, want 16", got)
	}

	other, err := NewID("patient")
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	if id == other {
		t.Fatal("two generated ids collided")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret", 4) // min cost keeps the test fast
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash equals plaintext")
	}
	if !VerifyPassword(hash, "s3cret") {
		t.Fatal("VerifyPassword rejected the right password")
	}
	if VerifyPassword(hash, "wrong") {
		t.Fatal("VerifyPassword accepted a wrong password")
	}
}

func TestNewAccessTokenClaims(t *testing.T) {
	at, err := NewAccessToken("topsecret", "doctor-aabbccddeeff0011", "doctor", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	tok, err := jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			t.Fatalf("unexpected signing method %v", tk.Method)
		}
		return []byte("topsecret"), nil
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !tok.Valid {
		t.Fatal("token did not validate")
	}
	claims := tok.Claims.(jwt.MapClaims)
	if claims["sub"] != "doctor-aabbccddeeff0011" {
		t.Errorf("sub = %v", claims["sub"])
	}
	if claims["role"] != "doctor" {
		t.Errorf("role = %v", claims["role"])
	}
	if until := time.Until(at.Exp); until < 14*time.Minute || until > 16*time.Minute {
		t.Errorf("expiry %v not ~15m out", until)
	}

	if _, err := jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("othersecret"), nil
	}); err == nil {
		t.Fatal("token verified with the wrong secret")
	}
}

func TestRefreshTokenHashing(t *testing.T) {
	rt, err := NewRefreshToken(30)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	if len(rt.Raw) != 96 {
		t.Fatalf("raw length = %d, want 96", len(rt.Raw))
	}
	if until := time.Until(rt.Exp); until < 29*24*time.Hour {
		t.Errorf("expiry %v too close", until)
	}

	h1 := HashRefreshRaw(rt.Raw)
	h2 := HashRefreshRaw(rt.Raw)
	if h1 != h2 {
		t.Fatal("hash is not deterministic")
	}
	if len(h1) != 64 {
		t.Fatalf("hash length = %d, want 64", len(h1))
	}
	if h1 == rt.Raw[:64] {
		t.Fatal("hash looks like the raw token")
	}
}
