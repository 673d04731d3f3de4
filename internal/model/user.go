package model

import "time"

// Clinical roles stored in users.role. Every authorization gate in the
// repository layer compares against these values; nothing else is valid.
const (
	RoleAdmin        = "admin"
	RoleDoctor       = "doctor"
	RoleRadiographer = "radiographer"
)

// ValidRole reports whether the given role is one of the three enumerated
// clinical roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleDoctor, RoleRadiographer:
		return true
	}
	return false
}

// User represents an application user record as stored in the `users`
// table. Each field corresponds to a column in the database. The json tags
// are omitted here because these structs are primarily used internally by
// the repository layer; handlers define separate response types with
// appropriate JSON tags.
//
// Fields:
//
//	ID             – primary key, role-prefixed string (e.g. "doctor-…").
//	Fullname       – display name of the staff member.
//	Email          – unique email address.
//	PasswordHash   – bcrypt hashed password.
//	Role           – one of admin, doctor, radiographer.
//	PhoneNumber    – optional contact number.
//	Gender         – optional gender string.
//	Profession     – optional profession label.
//	Address        – optional street address.
//	Province       – optional province name.
//	City           – optional city name.
//	PostalCode     – optional postal code.
//	ProfilePicture – URL of the uploaded profile picture, if any.
//	Status         – 0 until the user replaces the initial password, then 1.
type User struct {
	ID             string  // users.id
	Fullname       string  // users.fullname
	Email          string  // users.email
	PasswordHash   string  // users.password
	Role           string  // users.role
	PhoneNumber    *string // users.phone_number (nullable)
	Gender         *string // users.gender (nullable)
	Profession     *string // users.profession (nullable)
	Address        *string // users.address (nullable)
	Province       *string // users.province (nullable)
	City           *string // users.city (nullable)
	PostalCode     *string // users.postal_code (nullable)
	ProfilePicture *string // users.profile_picture (nullable)
	Status         int     // users.status
}

// RefreshToken models an entry in the `refresh_tokens` table. Each refresh
// token belongs to a user and contains metadata for expiry and revocation.
// The plain token is not stored; only its SHA-256 hash.
//
// Fields:
//
//	ID        – primary key identifier.
//	UserID    – owner of the token.
//	TokenHash – SHA-256 hex digest of the token value.
//	ExpiresAt – expiration timestamp of the token.
//	RevokedAt – when the token was revoked (null if still active).
//	CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    string     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
