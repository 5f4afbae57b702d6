// Command check-duplicates lists (user, week) pairs holding more than one
// reservation. Databases created with the unique index never have any; older
// ones may, and the index cannot be added until they are cleaned up.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"meal_reservations/internal/config"
	"meal_reservations/internal/models"
)

type duplicate struct {
	UserID    uint
	WeekStart string
	Count     int
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}
	// Opened without migrating: migration would fail on the duplicates being hunted.
	db, err := config.Open(cfg.Database)
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var dups []duplicate
	err = db.WithContext(ctx).Model(&models.Reservation{}).
		Select("user_id, week_start, COUNT(*) AS count").
		Group("user_id, week_start").
		Having("COUNT(*) > 1").
		Order("week_start, user_id").
		Scan(&dups).Error
	if err != nil {
		logrus.Fatalf("query duplicates: %v", err)
	}

	if len(dups) == 0 {
		fmt.Println("No duplicate reservations found.")
		return
	}
	for _, d := range dups {
		fmt.Printf("user %d, week %s: %d reservations\n", d.UserID, d.WeekStart, d.Count)
	}
	logrus.WithField("pairs", len(dups)).Warn("Duplicate reservations found")
	os.Exit(1)
}
