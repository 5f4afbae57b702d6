package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "APP_ENV", "JWT_SECRET", "DB_DRIVER", "APP_TIMEZONE", "ALLOWED_ORIGINS", "SMTP_HOST", "REMINDER_CRON"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "America/Montevideo", cfg.Location.String())
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.False(t, cfg.SMTP.Enabled())
	assert.Equal(t, "0 9 * * *", cfg.Reminder.Schedule)
	assert.Equal(t,
		"host=localhost user=postgres password=password dbname=reservas port=5432 sslmode=disable TimeZone=UTC",
		cfg.Database.DSN())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("SMTP_HOST", "smtp.example")
	t.Setenv("SMTP_PORT", "not-a-number")
	t.Setenv("REMINDERS_ENABLED", "false")
	t.Setenv("APP_TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.SMTP.Enabled())
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.False(t, cfg.Reminder.Enabled)
	assert.Equal(t, "UTC", cfg.Location.String())
}

func TestLoadRejectsBadConfig(t *testing.T) {
	t.Run("driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "mysql")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("timezone", func(t *testing.T) {
		t.Setenv("APP_TIMEZONE", "Mars/Olympus")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("production secret", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("JWT_SECRET", "")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	db, err := Open(DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasTable("reservations"))
	assert.True(t, db.Migrator().HasIndex("reservations", "idx_reservation_user_week"))
}
