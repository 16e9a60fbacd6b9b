package main // Entry point package

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/prebel/reservas-service/internal/config"
	"github.com/prebel/reservas-service/internal/database"
	"github.com/prebel/reservas-service/internal/handler"
	"github.com/prebel/reservas-service/internal/middleware"
	"github.com/prebel/reservas-service/internal/notify"
	"github.com/prebel/reservas-service/internal/queue"
	"github.com/prebel/reservas-service/internal/repository"
	"github.com/prebel/reservas-service/internal/router"
	"github.com/prebel/reservas-service/internal/service"
	"github.com/prebel/reservas-service/internal/storage"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("no se pudo conectar a la base de datos")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := database.EnsureSchema(ctx, db); err != nil {
		log.WithError(err).Fatal("no se pudo inicializar el esquema")
	}

	admins := repository.NewAdminRepo(db)
	if err := admins.Seed(ctx, cfg.SeedAdminUser, cfg.SeedAdminPass, cfg.SeedAdminNombre, cfg.BcryptCost); err != nil {
		log.WithError(err).Fatal("no se pudo crear el admin inicial")
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis no disponible: cache de sesión y rate limiting deshabilitados")
	}
	tokens := repository.NewTokenCache(rdb, cfg.SessionTTL)

	blobs, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		log.WithError(err).Fatal("no se pudo preparar el directorio de archivos")
	}

	reservas := repository.NewReservaRepo(db)
	intake := service.NewIntakeService(reservas, blobs, cfg.MaxFileMB, log)
	lifecycle := service.NewLifecycleService(
		reservas,
		notify.NewEmailNotifier(cfg.SMTP, log),
		queue.NewPublisher(log),
		log,
	)

	go queue.StartConfirmConsumer(log)

	e := echo.New()
	e.HideBanner = true

	guard := middleware.NewSessionGuard(admins, tokens, log)
	intakeLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	router.Register(e,
		handler.NewPublicHandler(intake, log),
		handler.NewAuthHandler(cfg, admins, tokens, log),
		handler.NewReservaHandler(lifecycle, reservas, log),
		guard, intakeLimit, blobs.Dir(),
	)

	addr := ":" + cfg.Port
	log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("servidor de reservas iniciado")
	if err := e.Start(addr); err != nil {
		log.WithError(err).Fatal("el servidor terminó con error")
	}
}
