package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/radiodent/radiodiagnostic-api/internal/config"
	"github.com/radiodent/radiodiagnostic-api/internal/database"
	"github.com/radiodent/radiodiagnostic-api/internal/handler"
	"github.com/radiodent/radiodiagnostic-api/internal/middleware"
	"github.com/radiodent/radiodiagnostic-api/internal/queue"
	"github.com/radiodent/radiodiagnostic-api/internal/repository"
	"github.com/radiodent/radiodiagnostic-api/internal/router"
	"github.com/radiodent/radiodiagnostic-api/internal/storage"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	store, err := storage.NewPictureStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	patients := repository.NewPatientRepo(db)
	radiographics := repository.NewRadiographicRepo(db)
	diagnoses := repository.NewDiagnosisRepo(db)

	// Detection results arrive over the broker; the consumer reconnects on
	// its own, so it just runs for the life of the process.
	go func() {
		if err := queue.StartDiagnosisConsumer(diagnoses); err != nil {
			log.Printf("diagnosis consumer stopped: %v", err)
		}
	}()

	rlCfg := config.LoadRateLimitConfig()
	rdb := config.NewRedisClient()
	if rlCfg.Enabled && rdb == nil {
		log.Println("redis unavailable, rate limiting disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	router.RegisterRoutes(e)
	router.RegisterUploads(e, store.Root())
	router.RegisterAPI(e, router.Handlers{
		Auth:          handler.NewAuthHandler(cfg, users, tokens),
		Users:         handler.NewUserHandler(cfg, users, tokens, store),
		Patients:      handler.NewPatientHandler(users, patients),
		Radiographics: handler.NewRadiographicHandler(users, radiographics, diagnoses, store),
		Diagnoses:     handler.NewDiagnosisHandler(users, diagnoses),
	}, cfg.JWTSecret, middleware.NewTokenBucket(rlCfg, rdb))

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
