package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"meal_reservations/internal/config"
	"meal_reservations/internal/jobs"
	"meal_reservations/internal/logger"
	"meal_reservations/internal/mailer"
	"meal_reservations/internal/middleware"
	"meal_reservations/internal/routes"
	"meal_reservations/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}

	// Initialize structured logging to file
	out := logger.Setup(cfg.Log.File, cfg.Log.Level)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetSecret(cfg.JWTSecret)

	db := config.InitDB(cfg.Database)
	clock := services.NewClock(cfg.Location)
	mail := mailer.New(cfg.SMTP)

	r := routes.SetupRouter(routes.Options{
		DB:             db,
		Clock:          clock,
		Mailer:         mail,
		FrontendURL:    cfg.FrontendURL,
		AllowedOrigins: cfg.AllowedOrigins,
		AccessLog: ginlog.SetLogger(
			ginlog.WithWriter(out),
			ginlog.WithSkipPath([]string{"/api/health"}),
		),
	})

	if cfg.Reminder.Enabled {
		reminder := jobs.NewReminder(
			services.NewSettingsService(db),
			services.NewUserService(db, mail, cfg.FrontendURL),
			mail, clock, cfg.FrontendURL,
		)
		scheduler, err := jobs.Schedule(reminder, cfg.Reminder.Schedule)
		if err != nil {
			logrus.Fatal(err)
		}
		defer scheduler.Stop()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithFields(logrus.Fields{
			"port":     cfg.Port,
			"env":      cfg.Env,
			"timezone": cfg.Location.String(),
		}).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Error during shutdown")
	}
	logrus.Info("Server stopped")
}
