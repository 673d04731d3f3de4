package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/radiodent/radiodiagnostic-api/internal/handler"
	"github.com/radiodent/radiodiagnostic-api/internal/middleware"
	"github.com/radiodent/radiodiagnostic-api/internal/model"
)

// Handlers carries every constructed handler so registration stays one call
// in main.
type Handlers struct {
	Auth          *handler.AuthHandler
	Users         *handler.UserHandler
	Patients      *handler.PatientHandler
	Radiographics *handler.RadiographicHandler
	Diagnoses     *handler.DiagnosisHandler
}

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI registers all versioned routes. Unauthenticated operations
// live under /v1/auth; everything else lives under /v1 behind the JWT and
// role middleware. The rate limiter wraps both groups.
func RegisterAPI(e *echo.Echo, h Handlers, jwtSecret string, limiter echo.MiddlewareFunc) {
	// Token endpoints: no session required, but rate limited since login is
	// the obvious brute-force target.
	pub := e.Group("/v1/auth", limiter)
	pub.POST("/login", h.Auth.Login)
	pub.POST("/refresh", h.Auth.Refresh)
	pub.POST("/logout", h.Auth.Logout)

	auth := e.Group("/v1", limiter)
	auth.Use(middleware.JWTAuth(jwtSecret))
	// Coarse claim filter only: every handler re-verifies the stored role
	// through the users table before acting.
	auth.Use(middleware.RequireRole(model.RoleAdmin, model.RoleDoctor, model.RoleRadiographer))

	// Self-service profile.
	auth.GET("/me", h.Users.Me)
	auth.PUT("/me", h.Users.UpdateMe)
	auth.PUT("/me/picture", h.Users.UpdateMyPicture)
	auth.PUT("/me/password", h.Users.UpdateMyPassword)

	// User management (admin).
	auth.POST("/users", h.Users.Create)
	auth.GET("/users", h.Users.ListStaff)
	auth.DELETE("/users/:userId", h.Users.Delete)

	// Patient records.
	auth.POST("/patients", h.Patients.Create)
	auth.GET("/patients", h.Patients.List)
	auth.GET("/patients/:patientId", h.Patients.Get)
	auth.PUT("/patients/:patientId", h.Patients.Update)
	auth.DELETE("/patients/:patientId", h.Patients.Delete)

	// Radiographs. The static literal segments (recaps, staff, detail, edit,
	// delete) keep them from colliding with the id parameters.
	auth.POST("/radiographics/patients/:patientId", h.Radiographics.Upload)
	auth.GET("/radiographics", h.Radiographics.List)
	auth.GET("/radiographics/recaps", h.Radiographics.Recaps)
	auth.GET("/radiographics/staff/radiographers", h.Radiographics.ListRadiographers)
	auth.GET("/radiographics/staff/doctors", h.Radiographics.ListDoctors)
	auth.GET("/radiographics/detail/:radiographicId", h.Radiographics.Get)
	auth.PUT("/radiographics/edit/:radiographicId/picture", h.Radiographics.UpdatePicture)
	auth.PUT("/radiographics/edit/:radiographicId/interpretation", h.Radiographics.UpdateInterpretation)
	auth.DELETE("/radiographics/edit/:radiographicId/interpretation", h.Radiographics.ClearInterpretation)
	auth.PUT("/radiographics/edit/:radiographicId/doctor", h.Radiographics.AssignDoctor)
	auth.DELETE("/radiographics/delete/:radiographicId", h.Radiographics.Delete)

	// Per-tooth diagnoses.
	auth.POST("/diagnoses/:radiographicId/system", h.Diagnoses.UpsertSystem)
	auth.POST("/diagnoses/:radiographicId/manual", h.Diagnoses.UpsertManual)
	auth.PUT("/diagnoses/:diagnosisId/verificator", h.Diagnoses.UpdateVerificator)
}

// RegisterUploads serves stored pictures and recap spreadsheets under
// /upload. The URLs handed out by the storage layer resolve here.
func RegisterUploads(e *echo.Echo, root string) {
	e.Static("/upload", root)
}
