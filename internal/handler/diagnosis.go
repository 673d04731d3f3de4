package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/radiodent/radiodiagnostic-api/internal/model"
	"github.com/radiodent/radiodiagnostic-api/internal/repository"
)

// DiagnosisHandler bundles dependencies for per-tooth diagnosis endpoints.
// All writes are doctor-gated; system diagnoses normally arrive through the
// queue consumer, but the endpoint exists for manual backfill.
type DiagnosisHandler struct {
	Users     *repository.UserRepo
	Diagnoses *repository.DiagnosisRepo
}

func NewDiagnosisHandler(u *repository.UserRepo, d *repository.DiagnosisRepo) *DiagnosisHandler {
	return &DiagnosisHandler{Users: u, Diagnoses: d}
}

// ----- DTOs -----

type diagnosisUpsertReq struct {
	ToothNumber int    `json:"tooth_number"`
	Diagnosis   string `json:"diagnosis"`
}

type verificatorReq struct {
	VerificatorDiagnosis string `json:"verificator_diagnosis"`
	VerificatorNote      string `json:"verificator_note"`
	IsCorrect            *int   `json:"is_correct"`
}

// diagnosisResp mirrors one diagnoses row.
type diagnosisResp struct {
	ID                   string  `json:"id"`
	ToothNumber          int     `json:"tooth_number"`
	SystemDiagnosis      *string `json:"system_diagnosis"`
	ManualDiagnosis      *string `json:"manual_diagnosis"`
	VerificatorDiagnosis *string `json:"verificator_diagnosis"`
	VerificatorNote      *string `json:"verificator_note"`
	IsCorrect            *int    `json:"is_correct"`
	RadiographicID       string  `json:"radiographic_id"`
}

func toDiagnosisResp(d model.Diagnosis) diagnosisResp {
	return diagnosisResp{
		ID:                   d.ID,
		ToothNumber:          d.ToothNumber,
		SystemDiagnosis:      d.SystemDiagnosis,
		ManualDiagnosis:      d.ManualDiagnosis,
		VerificatorDiagnosis: d.VerificatorDiagnosis,
		VerificatorNote:      d.VerificatorNote,
		IsCorrect:            d.IsCorrect,
		RadiographicID:       d.RadiographicID,
	}
}

func toDiagnosisResps(ds []model.Diagnosis) []diagnosisResp {
	out := make([]diagnosisResp, 0, len(ds))
	for _, d := range ds {
		out = append(out, toDiagnosisResp(d))
	}
	return out
}

// UpsertSystem handles POST /v1/diagnoses/:radiographicId/system. Doctor
// only: records (or overwrites) the model-generated diagnosis for one tooth.
func (h *DiagnosisHandler) UpsertSystem(c echo.Context) error {
	return h.upsert(c, h.Diagnoses.UpsertSystem, "system diagnosis recorded")
}

// UpsertManual handles POST /v1/diagnoses/:radiographicId/manual. Doctor
// only: records (or overwrites) the doctor's own diagnosis for one tooth.
func (h *DiagnosisHandler) UpsertManual(c echo.Context) error {
	return h.upsert(c, h.Diagnoses.UpsertManual, "manual diagnosis recorded")
}

func (h *DiagnosisHandler) upsert(c echo.Context,
	write func(ctx context.Context, radiographicID string, toothNumber int, diagnosis string) (model.Diagnosis, error),
	message string,
) error {
	credID, err := credentialID(c)
	if err != nil {
		return err
	}
	radiographicID := c.Param("radiographicId")
	var req diagnosisUpsertReq
	if err := c.Bind(&req); err != nil || req.Diagnosis == "" {
		return fail(c, http.StatusBadRequest, "tooth_number/diagnosis required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.VerifyRole(ctx, credID, model.RoleDoctor); err != nil {
		return respondError(c, err)
	}
	d, err := write(ctx, radiographicID, req.ToothNumber, req.Diagnosis)
	if err != nil {
		return respondError(c, err)
	}
	return created(c, message, toDiagnosisResp(d))
}

// UpdateVerificator handles PUT /v1/diagnoses/:diagnosisId/verificator.
// Doctor only: stores the second-reader verdict on an existing diagnosis.
func (h *DiagnosisHandler) UpdateVerificator(c echo.Context) error {
	credID, err := credentialID(c)
	if err != nil {
		return err
	}
	diagnosisID := c.Param("diagnosisId")
	var req verificatorReq
	if err := c.Bind(&req); err != nil || req.VerificatorDiagnosis == "" || req.IsCorrect == nil {
		return fail(c, http.StatusBadRequest, "verificator_diagnosis/is_correct required")
	}
	if *req.IsCorrect != 0 && *req.IsCorrect != 1 {
		return fail(c, http.StatusBadRequest, "is_correct must be 0 or 1")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.VerifyRole(ctx, credID, model.RoleDoctor); err != nil {
		return respondError(c, err)
	}
	d, err := h.Diagnoses.UpdateVerificator(ctx, diagnosisID, req.VerificatorDiagnosis, req.VerificatorNote, *req.IsCorrect)
	if err != nil {
		return respondError(c, err)
	}
	return created(c, "verificator diagnosis recorded", toDiagnosisResp(d))
}
