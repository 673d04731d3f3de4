package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/radiodent/radiodiagnostic-api/internal/export"
	"github.com/radiodent/radiodiagnostic-api/internal/model"
	"github.com/radiodent/radiodiagnostic-api/internal/queue"
	"github.com/radiodent/radiodiagnostic-api/internal/repository"
	queue_publisher "github.com/radiodent/radiodiagnostic-api/internal/service"
	"github.com/radiodent/radiodiagnostic-api/internal/storage"
)

// RadiographicHandler bundles dependencies for radiograph endpoints: upload,
// listing/search, detail with diagnoses, review edits and recap export.
type RadiographicHandler struct {
	Users         *repository.UserRepo
	Radiographics *repository.RadiographicRepo
	Diagnoses     *repository.DiagnosisRepo
	Pictures      *storage.PictureStore
}

func NewRadiographicHandler(u *repository.UserRepo, r *repository.RadiographicRepo, d *repository.DiagnosisRepo, p *storage.PictureStore) *RadiographicHandler {
	return &RadiographicHandler{Users: u, Radiographics: r, Diagnoses: d, Pictures: p}
}

// radiographResp mirrors a radiographics row.
type radiographResp struct {
	ID                   string     `json:"id"`
	PanoramikPicture     string     `json:"panoramik_picture"`
	PanoramikUploadDate  time.Time  `json:"panoramik_upload_date"`
	PanoramikCheckDate   *time.Time `json:"panoramik_check_date"`
	ManualInterpretation *string    `json:"manual_interpretation"`
	Status               int        `json:"status"`
}

func toRadiographResp(r model.Radiographic) radiographResp {
	return radiographResp{
		ID:                   r.ID,
		PanoramikPicture:     r.PanoramikPicture,
		PanoramikUploadDate:  r.PanoramikUploadDate,
		PanoramikCheckDate:   r.PanoramikCheckDate,
		ManualInterpretation: r.ManualInterpretation,
		Status:               r.Status,
	}
}

// radiographDetail is the detail view: the joined row plus the aggregated
// per-tooth diagnosis array.
type radiographDetail struct {
	repository.RadiographRow
	Diagnoses []diagnosisResp `json:"diagnoses"`
}

// Upload handles POST /v1/radiographics/patients/:patientId. Radiographer
// only, multipart body with a "panoramik_picture" image. Repeat uploads for
// the same patient overwrite the radiograph referenced by the patient's
// history instead of inserting new rows. On success a
// radiographic.uploaded event is published for the detection worker.
func (h *RadiographicHandler) Upload(c echo.Context) error {
	credID, err := credentialID(c)
	if err != nil {
		return err
	}
	patientID := c.Param("patientId")
	fh, err := c.FormFile("panoramik_picture")
	if err != nil {
		return fail(c, http.StatusBadRequest, "panoramik_picture file required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Users.VerifyRole(ctx, credID, model.RoleRadiographer); err != nil {
		return respondError(c, err)
	}

	url, err := h.Pictures.SavePicture(fh)
	if err != nil {
		return respondError(c, err)
	}

	radiographic, err := h.Radiographics.UploadForPatient(ctx, patientID, credID, url)
	if err != nil {
		_ = h.Pictures.Remove(url) // do not orphan the stored file
		return respondError(c, err)
	}

	// fire-and-forget: the detection worker picks this up asynchronously
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue_publisher.PublishRadiographUploaded(ctx, queue.RadiographUploadedEvent{
			RadiographicID: radiographic.ID,
			PatientID:      patientID,
			PictureURL:     url,
			UploadedAt:     radiographic.PanoramikUploadDate.Format(time.RFC3339),
		})
	}()

	return created(c, "radiograph added", toRadiographResp(radiographic))
}

// List handles GET /v1/radiographics. Both clinical roles. Supports
// ?month=1..12, ?search= (patient name or medic number substring), ?page=
// and ?page_size=.
func (h *RadiographicHandler) List(c echo.Context) error {
	credID, err := credentialID(c)
	if err != nil {
		return err
	}
	q := repository.RadiographSearchQuery{
		Search: c.QueryParam("search"),
	}
	if m := c.QueryParam("month"); m != "" {
		n, err := strconv.Atoi(m)
		if err != nil || n < 1 || n > 12 {
			return fail(c, http.StatusBadRequest, "month must be 1-12")
		}
		q.Month = n
	}
	q.Page, _ = strconv.Atoi(c.QueryParam("page"))
	q.PageSize, _ = strconv.Atoi(c.QueryParam("page_size"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Users.VerifyRole(ctx, credID, model.RoleRadiographer, model.RoleDoctor); err != nil {
		return respondError(c, err)
	}
	rows, total, err := h.Radiographics.List(ctx, q)
	if err != nil {
		return respondError(c, err)
	}
	count := len(rows)
	return c.JSON(http.StatusOK, envelope{
		Status: "success",
		Data:   echo.Map{"radiographics": rows, "total": total},
		Count:  &count,
	})
}

// Recaps handles GET /v1/radiographics/recaps?month=N. Radiographer only:
// exports the month's radiographs to a spreadsheet and returns its URL.
func (h *RadiographicHandler) Recaps(c echo.Context) error {
	credID, err := credentialID(c)
	if err != nil {
		return err
	}
	month, err := strconv.Atoi(c.QueryParam("month"))
	if err != nil || month < 1 || month > 12 {
		return fail(c, http.StatusBadRequest, "month must be 1-12")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	if err := h.Users.VerifyRole(ctx, credID, model.RoleRadiographer); err != nil {
		return respondError(c, err)
	}
	rows, err := h.Radiographics.AllByMonth(ctx, month)
	if err != nil {
		return respondError(c, err)
	}

	f, filename, err := export.BuildRecap(rows, time.Month(month))
	if err != nil {
		return respondError(c, err)
	}
	path, url := h.Pictures.RecapPath(filename)
	if err := f.SaveAs(path); err != nil {
		return respondError(c, err)
	}
	return ok(c, echo.Map{"excel_url": url})
}

// Get handles GET /v1/radiographics/detail/:radiographicId. Both clinical
// roles: joined view plus the aggregated diagnosis array.
func (h *RadiographicHandler) Get(c echo.Context) error {
	credID, err := credentialID(c)
	if err != nil {
		return err
	}
	radiographicID := c.Param("radiographicId")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Users.VerifyRole(ctx, credID, model.RoleRadiographer, model.RoleDoctor); err != nil {
		return respondError(c, err)
	}
	row, err := h.Radiographics.GetByID(ctx, radiographicID)
	if err != nil {
		return respondError(c, err)
	}
	diagnoses, err := h.Diagnoses.ListByRadiographic(ctx, radiographicID)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, radiographDetail{RadiographRow: row, Diagnoses: toDiagnosisResps(diagnoses)})
}

// UpdatePicture handles PUT /v1/radiographics/edit/:radiographicId/picture.
// Radiographer only, multipart body.
func (h *RadiographicHandler) UpdatePicture(c echo.Context) error {
	credID, err := credentialID(c)
	if err != nil {
		return err
	}
	radiographicID := c.Param("radiographicId")
	fh, err := c.FormFile("panoramik_picture")
	if err != nil {
		return fail(c, http.StatusBadRequest, "panoramik_picture file required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Users.VerifyRole(ctx, credID, model.RoleRadiographer); err != nil {
		return respondError(c, err)
	}
	url, err := h.Pictures.SavePicture(fh)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Radiographics.UpdatePicture(ctx, radiographicID, url); err != nil {
		_ = h.Pictures.Remove(url)
		return respondError(c, err)
	}
	return created(c, "radiograph picture updated", echo.Map{
		"id":                radiographicID,
		"panoramik_picture": url,
	})
}

type interpretationReq struct {
	ManualInterpretation string `json:"manual_interpretation"`
}

// UpdateInterpretation handles
// PUT /v1/radiographics/edit/:radiographicId/interpretation. Doctor only:
// stores the interpretation and stamps the check date.
func (h *RadiographicHandler) UpdateInterpretation(c echo.Context) error {
	credID, err := credentialID(c)
	if err != nil {
		return err
	}
	radiographicID := c.Param("radiographicId")
	var req interpretationReq
	if err := c.Bind(&req); err != nil || req.ManualInterpretation == "" {
		return fail(c, http.StatusBadRequest, "manual_interpretation required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.VerifyRole(ctx, credID, model.RoleDoctor); err != nil {
		return respondError(c, err)
	}
	if err := h.Radiographics.UpdateInterpretation(ctx, radiographicID, req.ManualInterpretation); err != nil {
		return respondError(c, err)
	}
	return created(c, "manual interpretation updated", echo.Map{"id": radiographicID})
}

// ClearInterpretation handles
// DELETE /v1/radiographics/edit/:radiographicId/interpretation. Doctor only.
func (h *RadiographicHandler) ClearInterpretation(c echo.Context) error {
	credID, err := credentialID(c)
	if err != nil {
		return err
	}
	radiographicID := c.Param("radiographicId")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.VerifyRole(ctx, credID, model.RoleDoctor); err != nil {
		return respondError(c, err)
	}
	if err := h.Radiographics.ClearInterpretation(ctx, radiographicID); err != nil {
		return respondError(c, err)
	}
	return created(c, "manual interpretation cleared", echo.Map{"id": radiographicID})
}

type assignDoctorReq struct {
	DoctorID string `json:"doctor_id"`
}

// AssignDoctor handles PUT /v1/radiographics/edit/:radiographicId/doctor.
// Radiographer only: sets the reviewing doctor on the radiograph's history.
func (h *RadiographicHandler) AssignDoctor(c echo.Context) error {
	credID, err := credentialID(c)
	if err != nil {
		return err
	}
	radiographicID := c.Param("radiographicId")
	var req assignDoctorReq
	if err := c.Bind(&req); err != nil || req.DoctorID == "" {
		return fail(c, http.StatusBadRequest, "doctor_id required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.VerifyRole(ctx, credID, model.RoleRadiographer); err != nil {
		return respondError(c, err)
	}
	if err := h.Radiographics.AssignDoctor(ctx, radiographicID, req.DoctorID); err != nil {
		return respondError(c, err)
	}
	return created(c, "radiograph doctor updated", echo.Map{"id": radiographicID})
}

// Delete handles DELETE /v1/radiographics/delete/:radiographicId.
// Radiographer only; removes the radiograph with its history and diagnoses.
func (h *RadiographicHandler) Delete(c echo.Context) error {
	credID, err := credentialID(c)
	if err != nil {
		return err
	}
	radiographicID := c.Param("radiographicId")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Users.VerifyRole(ctx, credID, model.RoleRadiographer); err != nil {
		return respondError(c, err)
	}
	if err := h.Radiographics.Delete(ctx, radiographicID); err != nil {
		return respondError(c, err)
	}
	return created(c, "radiograph deleted", echo.Map{"id": radiographicID})
}

// ListRadiographers handles GET /v1/radiographics/staff/radiographers.
func (h *RadiographicHandler) ListRadiographers(c echo.Context) error {
	return h.listStaffByRole(c, model.RoleRadiographer)
}

// ListDoctors handles GET /v1/radiographics/staff/doctors.
func (h *RadiographicHandler) ListDoctors(c echo.Context) error {
	return h.listStaffByRole(c, model.RoleDoctor)
}

func (h *RadiographicHandler) listStaffByRole(c echo.Context, role string) error {
	credID, err := credentialID(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.VerifyRole(ctx, credID, model.RoleRadiographer, model.RoleDoctor); err != nil {
		return respondError(c, err)
	}
	users, err := h.Users.ListByRole(ctx, role)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]userResp, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResp(u))
	}
	return okCount(c, out, len(out))
}
