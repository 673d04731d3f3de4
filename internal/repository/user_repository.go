package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/radiodent/radiodiagnostic-api/internal/model"
	"github.com/radiodent/radiodiagnostic-api/internal/utils"
)

// UserRepo owns all SQL touching the `users` table, including the role
// checks that gate every protected operation in the API.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, fullname, email, password, role, phone_number, gender,
	profession, address, province, city, postal_code, profile_picture, status`

// Create inserts a staff user with a role-prefixed id and a bcrypt-hashed
// password. A duplicate email yields ErrInvariant and performs no write.
func (r *UserRepo) Create(ctx context.Context, fullname, email, password, role string, cost int) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !model.ValidRole(role) {
		return model.User{}, fmt.Errorf("%w: unknown role %q", ErrInvariant, role)
	}
	if err := r.verifyNewEmail(ctx, email); err != nil {
		return model.User{}, err
	}

	id, err := utils.NewID(role)
	if err != nil {
		return model.User{}, err
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}

	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id, fullname, email, password, role, status) VALUES (?,?,?,?,?,0)",
		id, fullname, email, hash, role)
	if err != nil {
		// unique key on email backs up the pre-check
		if strings.Contains(err.Error(), "1062") {
			return model.User{}, fmt.Errorf("%w: email already in use", ErrInvariant)
		}
		return model.User{}, err
	}
	return model.User{ID: id, Fullname: fullname, Email: email, Role: role}, nil
}

// verifyNewEmail rejects emails already present in the users table.
func (r *UserRepo) verifyNewEmail(ctx context.Context, email string) error {
	var existing string
	err := r.DB.QueryRowContext(ctx,
		"SELECT email FROM users WHERE email=? LIMIT 1", email).Scan(&existing)
	switch {
	case err == sql.ErrNoRows:
		return nil
	case err != nil:
		return err
	default:
		return fmt.Errorf("%w: email already in use", ErrInvariant)
	}
}

// ListStaff returns all doctor and radiographer users. Admin accounts are
// excluded from the listing.
func (r *UserRepo) ListStaff(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE role IN ('doctor','radiographer') ORDER BY fullname")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// ListByRole returns all users holding exactly the given role.
func (r *UserRepo) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE role=? ORDER BY fullname", role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// GetByID fetches a user by id. Missing rows yield ErrNotFound.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return model.User{}, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	return u, err
}

// ProfileUpdate carries the editable profile fields of a user.
type ProfileUpdate struct {
	Fullname    string
	Email       string
	PhoneNumber string
	Gender      string
	Profession  string
	Address     string
	Province    string
	City        string
	PostalCode  string
}

// UpdateProfile rewrites the profile fields of a user. An update that
// matches no row yields ErrInvariant, mirroring the failed-write semantics
// of the other mutations.
func (r *UserRepo) UpdateProfile(ctx context.Context, id string, p ProfileUpdate) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET fullname=?, email=?, phone_number=?, gender=?,
			profession=?, address=?, province=?, city=?, postal_code=?
		WHERE id=?`,
		p.Fullname, strings.ToLower(strings.TrimSpace(p.Email)), p.PhoneNumber,
		p.Gender, p.Profession, p.Address, p.Province, p.City, p.PostalCode, id)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return fmt.Errorf("%w: email already in use", ErrInvariant)
		}
		return err
	}
	return requireMatch(res, fmt.Errorf("%w: user update failed", ErrInvariant))
}

// UpdatePicture stores the URL of a freshly uploaded profile picture.
func (r *UserRepo) UpdatePicture(ctx context.Context, id, pictureURL string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET profile_picture=? WHERE id=?", pictureURL, id)
	if err != nil {
		return err
	}
	return requireMatch(res, fmt.Errorf("%w: user picture update failed", ErrInvariant))
}

// UpdatePassword replaces the stored hash and flips status to 1, marking
// that the initial password has been changed.
func (r *UserRepo) UpdatePassword(ctx context.Context, id, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password=?, status=1 WHERE id=?", hash, id)
	if err != nil {
		return err
	}
	return requireMatch(res, fmt.Errorf("%w: user password update failed", ErrInvariant))
}

// Delete removes a user row. Missing ids yield ErrNotFound.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireMatch(res, fmt.Errorf("%w: user %s", ErrNotFound, id))
}

// RoleByEmail returns the stored role for an email address.
func (r *UserRepo) RoleByEmail(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var role string
	err := r.DB.QueryRowContext(ctx,
		"SELECT role FROM users WHERE email=? LIMIT 1", email).Scan(&role)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: user %s", ErrNotFound, email)
	}
	return role, err
}

// VerifyCredential checks an email/password pair and returns the credential
// id on success. Unknown emails and wrong passwords are indistinguishable to
// the caller; both yield ErrAuthentication.
func (r *UserRepo) VerifyCredential(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var (
		id   string
		hash string
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, password FROM users WHERE email=? LIMIT 1", email).Scan(&id, &hash)
	switch {
	case err == sql.ErrNoRows:
		return "", fmt.Errorf("%w: wrong credentials", ErrAuthentication)
	case err != nil:
		return "", err
	}
	if !utils.VerifyPassword(hash, password) {
		return "", fmt.Errorf("%w: wrong credentials", ErrAuthentication)
	}
	return id, nil
}

// VerifyRole asserts that the credential id exists and that its stored role
// is one of the given roles. The lookup always hits the users table so a
// role change takes effect immediately, regardless of what the JWT claims.
func (r *UserRepo) VerifyRole(ctx context.Context, credentialID string, roles ...string) error {
	var role string
	err := r.DB.QueryRowContext(ctx,
		"SELECT role FROM users WHERE id=? LIMIT 1", credentialID).Scan(&role)
	switch {
	case err == sql.ErrNoRows:
		return fmt.Errorf("%w: invalid credential", ErrAuthentication)
	case err != nil:
		return err
	}
	for _, allowed := range roles {
		if role == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: role %s has no access", ErrAuthentication, role)
}

// requireMatch converts a zero-rows-affected result into the given domain
// error.
func requireMatch(res sql.Result, domainErr error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domainErr
	}
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface{ Scan(dest ...any) error }

func scanUser(row rowScanner) (model.User, error) {
	var (
		u                          model.User
		phone, gender, profession  sql.NullString
		address, province, city    sql.NullString
		postalCode, profilePicture sql.NullString
	)
	err := row.Scan(&u.ID, &u.Fullname, &u.Email, &u.PasswordHash, &u.Role,
		&phone, &gender, &profession, &address, &province, &city,
		&postalCode, &profilePicture, &u.Status)
	if err != nil {
		return model.User{}, err
	}
	u.PhoneNumber = strPtr(phone)
	u.Gender = strPtr(gender)
	u.Profession = strPtr(profession)
	u.Address = strPtr(address)
	u.Province = strPtr(province)
	u.City = strPtr(city)
	u.PostalCode = strPtr(postalCode)
	u.ProfilePicture = strPtr(profilePicture)
	return u, nil
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
