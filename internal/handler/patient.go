package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/radiodent/radiodiagnostic-api/internal/model"
	"github.com/radiodent/radiodiagnostic-api/internal/repository"
)

// PatientHandler bundles dependencies for patient record endpoints.
// Patients are created and mutated by radiographers only; any clinical role
// may read them.
type PatientHandler struct {
	Users    *repository.UserRepo
	Patients *repository.PatientRepo
}

func NewPatientHandler(u *repository.UserRepo, p *repository.PatientRepo) *PatientHandler {
	return &PatientHandler{Users: u, Patients: p}
}

type patientReq struct {
	MedicNumber    string `json:"medic_number"`
	Fullname       string `json:"fullname"`
	IDNumber       string `json:"id_number"`
	Gender         string `json:"gender"`
	Religion       string `json:"religion"`
	Address        string `json:"address"`
	BornLocation   string `json:"born_location"`
	BornDate       string `json:"born_date"` // YYYY-MM-DD
	PhoneNumber    string `json:"phone_number"`
	ReferralOrigin string `json:"referral_origin"`
}

func (r patientReq) toInput() (repository.PatientInput, error) {
	born, err := time.Parse("2006-01-02", r.BornDate)
	if err != nil {
		return repository.PatientInput{}, err
	}
	return repository.PatientInput{
		MedicNumber:    r.MedicNumber,
		Fullname:       r.Fullname,
		IDNumber:       r.IDNumber,
		Gender:         r.Gender,
		Religion:       r.Religion,
		Address:        r.Address,
		BornLocation:   r.BornLocation,
		BornDate:       born,
		PhoneNumber:    r.PhoneNumber,
		ReferralOrigin: r.ReferralOrigin,
	}, nil
}

// patientResp mirrors a patients row.
type patientResp struct {
	ID             string `json:"id"`
	MedicNumber    string `json:"medic_number"`
	Fullname       string `json:"fullname"`
	IDNumber       string `json:"id_number"`
	Gender         string `json:"gender"`
	Religion       string `json:"religion"`
	Address        string `json:"address"`
	BornLocation   string `json:"born_location"`
	BornDate       string `json:"born_date"`
	Age            int    `json:"age"`
	PhoneNumber    string `json:"phone_number"`
	ReferralOrigin string `json:"referral_origin"`
}

func toPatientResp(p model.Patient) patientResp {
	return patientResp{
		ID:             p.ID,
		MedicNumber:    p.MedicNumber,
		Fullname:       p.Fullname,
		IDNumber:       p.IDNumber,
		Gender:         p.Gender,
		Religion:       p.Religion,
		Address:        p.Address,
		BornLocation:   p.BornLocation,
		BornDate:       p.BornDate.Format("2006-01-02"),
		Age:            p.Age,
		PhoneNumber:    p.PhoneNumber,
		ReferralOrigin: p.ReferralOrigin,
	}
}

// Create handles POST /v1/patients. Radiographer only.
func (h *PatientHandler) Create(c echo.Context) error {
	credID, err := credentialID(c)
	if err != nil {
		return err
	}
	var req patientReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if req.Fullname == "" || req.IDNumber == "" {
		return fail(c, http.StatusBadRequest, "fullname/id_number required")
	}
	in, err := req.toInput()
	if err != nil {
		return fail(c, http.StatusBadRequest, "born_date must be YYYY-MM-DD")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.VerifyRole(ctx, credID, model.RoleRadiographer); err != nil {
		return respondError(c, err)
	}
	p, err := h.Patients.Create(ctx, in)
	if err != nil {
		return respondError(c, err)
	}
	return created(c, "patient added", toPatientResp(p))
}

// List handles GET /v1/patients. Readable by both clinical roles.
func (h *PatientHandler) List(c echo.Context) error {
	credID, err := credentialID(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.VerifyRole(ctx, credID, model.RoleRadiographer, model.RoleDoctor); err != nil {
		return respondError(c, err)
	}
	patients, err := h.Patients.GetAll(ctx)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]patientResp, 0, len(patients))
	for _, p := range patients {
		out = append(out, toPatientResp(p))
	}
	return okCount(c, out, len(out))
}

// Get handles GET /v1/patients/:patientId.
func (h *PatientHandler) Get(c echo.Context) error {
	credID, err := credentialID(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.VerifyRole(ctx, credID, model.RoleRadiographer, model.RoleDoctor); err != nil {
		return respondError(c, err)
	}
	p, err := h.Patients.GetByID(ctx, c.Param("patientId"))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, toPatientResp(p))
}

// Update handles PUT /v1/patients/:patientId. Radiographer only.
func (h *PatientHandler) Update(c echo.Context) error {
	credID, err := credentialID(c)
	if err != nil {
		return err
	}
	var req patientReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	in, err := req.toInput()
	if err != nil {
		return fail(c, http.StatusBadRequest, "born_date must be YYYY-MM-DD")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.VerifyRole(ctx, credID, model.RoleRadiographer); err != nil {
		return respondError(c, err)
	}
	if err := h.Patients.Update(ctx, c.Param("patientId"), in); err != nil {
		return respondError(c, err)
	}
	return created(c, "patient updated", echo.Map{"id": c.Param("patientId")})
}

// Delete handles DELETE /v1/patients/:patientId. Radiographer only; a
// missing id yields 404.
func (h *PatientHandler) Delete(c echo.Context) error {
	credID, err := credentialID(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.VerifyRole(ctx, credID, model.RoleRadiographer); err != nil {
		return respondError(c, err)
	}
	if err := h.Patients.Delete(ctx, c.Param("patientId")); err != nil {
		return respondError(c, err)
	}
	return created(c, "patient deleted", echo.Map{"id": c.Param("patientId")})
}
