package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal_reservations/internal/booking"
	"meal_reservations/internal/models"
)

func TestSettingsGetCreatesDefaults(t *testing.T) {
	svc := NewSettingsService(newTestDB(t))
	ctx := context.Background()

	found, err := svc.Find(ctx)
	require.NoError(t, err)
	assert.Nil(t, found)

	d, err := svc.Deadline(ctx)
	require.NoError(t, err)
	assert.Equal(t, booking.DefaultDeadline(), d)

	st, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(models.SettingsID), st.ID)
	assert.Equal(t, 3, st.DeadlineDay)
	assert.Equal(t, "23:59", st.DeadlineTime)
	assert.Equal(t, "Sistema de Reservas Corporativo", st.CompanyName)
}

func TestSettingsUpdateKeepsZeroValues(t *testing.T) {
	svc := NewSettingsService(newTestDB(t))
	ctx := context.Background()

	sunday, on, clock := 0, true, "18:30"
	_, err := svc.Update(ctx, SettingsUpdate{DeadlineDay: &sunday, DeadlineTime: &clock, MaintenanceMode: &on})
	require.NoError(t, err)

	d, err := svc.Deadline(ctx)
	require.NoError(t, err)
	assert.Equal(t, booking.Deadline{Day: 0, Time: "18:30"}, d)

	maintenance, err := svc.MaintenanceMode(ctx)
	require.NoError(t, err)
	assert.True(t, maintenance)

	off := false
	_, err = svc.Update(ctx, SettingsUpdate{MaintenanceMode: &off})
	require.NoError(t, err)
	maintenance, err = svc.MaintenanceMode(ctx)
	require.NoError(t, err)
	assert.False(t, maintenance)

	st, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, st.DeadlineDay, "partial update must not reset other fields")
}

func TestSettingsUpdateValidates(t *testing.T) {
	svc := NewSettingsService(newTestDB(t))
	ctx := context.Background()

	bad := 7
	_, err := svc.Update(ctx, SettingsUpdate{DeadlineDay: &bad})
	var ve *booking.ValidationError
	require.True(t, errors.As(err, &ve))

	badTime := "25:00"
	_, err = svc.Update(ctx, SettingsUpdate{DeadlineTime: &badTime})
	require.True(t, errors.As(err, &ve))

	kind := "banner"
	_, err = svc.Update(ctx, SettingsUpdate{AnnouncementType: &kind})
	require.True(t, errors.As(err, &ve))

	st, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.DeadlineDay)
	assert.Equal(t, "23:59", st.DeadlineTime)
}
