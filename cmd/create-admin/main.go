// Command create-admin creates a superadmin account, or promotes the user
// that already owns the e-mail.
//
//	create-admin <email> <password> [name] [funcNumber]
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"meal_reservations/internal/config"
	"meal_reservations/internal/mailer"
	"meal_reservations/internal/services"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: create-admin <email> <password> [name] [funcNumber]")
		os.Exit(2)
	}
	email, password := os.Args[1], os.Args[2]
	name, funcNumber := "Admin General", "ADMIN001"
	if len(os.Args) > 3 {
		name = os.Args[3]
	}
	if len(os.Args) > 4 {
		funcNumber = os.Args[4]
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}
	db := config.InitDB(cfg.Database)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := services.NewUserService(db, mailer.LogMailer{}, cfg.FrontendURL)
	created, err := users.EnsureSuperAdmin(ctx, email, password, name, funcNumber)
	if err != nil {
		logrus.Fatalf("create admin: %v", err)
	}
	if created {
		logrus.WithField("email", email).Info("Superadmin created")
	} else {
		logrus.WithField("email", email).Info("User already existed, promoted to superadmin")
	}
}
