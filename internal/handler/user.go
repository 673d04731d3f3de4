package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/radiodent/radiodiagnostic-api/internal/config"
	"github.com/radiodent/radiodiagnostic-api/internal/model"
	"github.com/radiodent/radiodiagnostic-api/internal/repository"
	"github.com/radiodent/radiodiagnostic-api/internal/storage"
)

// UserHandler bundles dependencies for user management and profile
// endpoints.
type UserHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Tokens   *repository.TokenRepo
	Pictures *storage.PictureStore
}

func NewUserHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, p *storage.PictureStore) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u, Tokens: t, Pictures: p}
}

// ----- DTOs -----

type createUserReq struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type editProfileReq struct {
	Fullname    string `json:"fullname"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Gender      string `json:"gender"`
	Profession  string `json:"profession"`
	Address     string `json:"address"`
	Province    string `json:"province"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
}

type editPasswordReq struct {
	Password string `json:"password"`
}

// userResp mirrors a user row without the password hash.
type userResp struct {
	ID             string  `json:"id"`
	Fullname       string  `json:"fullname"`
	Email          string  `json:"email"`
	Role           string  `json:"role"`
	PhoneNumber    *string `json:"phone_number"`
	Gender         *string `json:"gender"`
	Profession     *string `json:"profession"`
	Address        *string `json:"address"`
	Province       *string `json:"province"`
	City           *string `json:"city"`
	PostalCode     *string `json:"postal_code"`
	ProfilePicture *string `json:"profile_picture"`
	Status         int     `json:"status"`
}

func toUserResp(u model.User) userResp {
	return userResp{
		ID:             u.ID,
		Fullname:       u.Fullname,
		Email:          u.Email,
		Role:           u.Role,
		PhoneNumber:    u.PhoneNumber,
		Gender:         u.Gender,
		Profession:     u.Profession,
		Address:        u.Address,
		Province:       u.Province,
		City:           u.City,
		PostalCode:     u.PostalCode,
		ProfilePicture: u.ProfilePicture,
		Status:         u.Status,
	}
}

// Create handles POST /v1/users. Admin only: registers a doctor,
// radiographer or admin account with an initial password.
func (h *UserHandler) Create(c echo.Context) error {
	credID, err := credentialID(c)
	if err != nil {
		return err
	}
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if req.Fullname == "" || req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "fullname/email/password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.VerifyRole(ctx, credID, model.RoleAdmin); err != nil {
		return respondError(c, err)
	}
	u, err := h.Users.Create(ctx, req.Fullname, req.Email, req.Password, req.Role, h.Cfg.BcryptCost)
	if err != nil {
		return respondError(c, err)
	}
	return created(c, "user added", toUserResp(u))
}

// ListStaff handles GET /v1/users. Admin only: lists all doctor and
// radiographer accounts.
func (h *UserHandler) ListStaff(c echo.Context) error {
	credID, err := credentialID(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.VerifyRole(ctx, credID, model.RoleAdmin); err != nil {
		return respondError(c, err)
	}
	users, err := h.Users.ListStaff(ctx)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]userResp, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResp(u))
	}
	return okCount(c, out, len(out))
}

// Me handles GET /v1/me, returning the caller's own record.
func (h *UserHandler) Me(c echo.Context) error {
	credID, err := credentialID(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, credID)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, toUserResp(u))
}

// UpdateMe handles PUT /v1/me: self-service profile edit.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	credID, err := credentialID(c)
	if err != nil {
		return err
	}
	var req editProfileReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err = h.Users.UpdateProfile(ctx, credID, repository.ProfileUpdate{
		Fullname:    req.Fullname,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Gender:      req.Gender,
		Profession:  req.Profession,
		Address:     req.Address,
		Province:    req.Province,
		City:        req.City,
		PostalCode:  req.PostalCode,
	})
	if err != nil {
		return respondError(c, err)
	}
	return created(c, "user updated", echo.Map{"id": credID})
}

// UpdateMyPicture handles PUT /v1/me/picture: multipart profile picture
// upload. The stored file is removed again if the database update fails.
func (h *UserHandler) UpdateMyPicture(c echo.Context) error {
	credID, err := credentialID(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("profile_picture")
	if err != nil {
		return fail(c, http.StatusBadRequest, "profile_picture file required")
	}

	url, err := h.Pictures.SavePicture(fh)
	if err != nil {
		return respondError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.UpdatePicture(ctx, credID, url); err != nil {
		_ = h.Pictures.Remove(url) // do not orphan the stored file
		return respondError(c, err)
	}
	return created(c, "user picture updated", echo.Map{"profile_picture": url})
}

// UpdateMyPassword handles PUT /v1/me/password: re-hashes the password,
// flips the status flag and revokes every live refresh token of the
// account.
func (h *UserHandler) UpdateMyPassword(c echo.Context) error {
	credID, err := credentialID(c)
	if err != nil {
		return err
	}
	var req editPasswordReq
	if err := c.Bind(&req); err != nil || req.Password == "" {
		return fail(c, http.StatusBadRequest, "password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.UpdatePassword(ctx, credID, req.Password, h.Cfg.BcryptCost); err != nil {
		return respondError(c, err)
	}
	if err := h.Tokens.RevokeAllForUser(ctx, credID); err != nil {
		return respondError(c, err)
	}
	return created(c, "user password updated", echo.Map{"id": credID})
}

// Delete handles DELETE /v1/users/:userId. Admin only.
func (h *UserHandler) Delete(c echo.Context) error {
	credID, err := credentialID(c)
	if err != nil {
		return err
	}
	userID := c.Param("userId")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.VerifyRole(ctx, credID, model.RoleAdmin); err != nil {
		return respondError(c, err)
	}
	if err := h.Users.Delete(ctx, userID); err != nil {
		return respondError(c, err)
	}
	if err := h.Tokens.RevokeAllForUser(ctx, userID); err != nil {
		return respondError(c, err)
	}
	return created(c, "user deleted", echo.Map{"id": userID})
}
