package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"meal_reservations/internal/booking"
	"meal_reservations/internal/mailer"
	"meal_reservations/internal/models"
	"meal_reservations/internal/services"
)

const (
	// reminderWindow is how many days ahead of the deadline reminders start.
	reminderWindow = 3
	runTimeout     = 5 * time.Minute

	finalDaySubject = "ULTIMO DIA: Cierre de Reservas"
	reminderSubject = "Recordatorio: Reserva tu menu de la proxima semana"
)

// Reminder mails the users that have not reserved the upcoming week yet.
type Reminder struct {
	settings    *services.SettingsService
	users       *services.UserService
	mailer      mailer.Mailer
	clock       services.Clock
	frontendURL string
}

func NewReminder(settings *services.SettingsService, users *services.UserService, m mailer.Mailer, clock services.Clock, frontendURL string) *Reminder {
	return &Reminder{
		settings:    settings,
		users:       users,
		mailer:      m,
		clock:       clock,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// Run sends one round of reminders and returns how many mails went out.
// Nothing is sent when settings were never saved or when the deadline is
// more than three days away or already past.
func (r *Reminder) Run(ctx context.Context) (int, error) {
	st, err := r.settings.Find(ctx)
	if err != nil {
		return 0, fmt.Errorf("load settings: %w", err)
	}
	if st == nil {
		logrus.Info("Reminder skipped: settings not initialised")
		return 0, nil
	}

	deadline := booking.Deadline{Day: st.DeadlineDay, Time: st.DeadlineTime}
	diff := booking.DaysUntilDeadline(r.clock.Today(), deadline)
	if diff < 0 || diff > reminderWindow {
		logrus.WithField("days_until_deadline", diff).Info("No reminders today")
		return 0, nil
	}

	week := r.clock.NextWeek()
	pending, err := r.users.WithoutReservation(ctx, week)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		logrus.WithField("week_start", week).Info("Every user already reserved")
		return 0, nil
	}

	logrus.WithFields(logrus.Fields{
		"week_start":          week,
		"days_until_deadline": diff,
		"recipients":          len(pending),
	}).Info("Sending reservation reminders")

	sent := 0
	for _, u := range pending {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		if err := r.mailer.Send(ctx, r.message(u, week, deadline, diff == 0)); err != nil {
			logrus.WithError(err).WithField("user_id", u.ID).Error("Failed to send reminder")
			continue
		}
		sent++
	}
	return sent, nil
}

func (r *Reminder) message(u models.User, week string, d booking.Deadline, finalDay bool) mailer.Message {
	subject, headline := reminderSubject, "No olvides reservar tu comedor."
	if finalDay {
		subject, headline = finalDaySubject, "Hoy cierran las reservas!"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hola %s,\n\n%s\n\n", u.Name, headline)
	fmt.Fprintf(&b, "Aun no ingresaste tus opciones de comedor para la semana del %s.\n", week)
	fmt.Fprintf(&b, "Tienes hasta el %s a las %s para hacer tu pedido.\n\n", booking.DayName(d.Day), d.Time)
	fmt.Fprintf(&b, "Reserva aqui: %s\n", r.frontendURL)

	return mailer.Message{To: u.Email, Subject: subject, Text: b.String()}
}

// Schedule runs the reminder on expr (standard five-field cron syntax) in the
// clock's timezone. The caller stops the returned scheduler on shutdown.
func Schedule(r *Reminder, expr string) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(r.clock.Location))
	_, err := c.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		if _, err := r.Run(ctx); err != nil {
			logrus.WithError(err).Error("Reminder job failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule reminders %q: %w", expr, err)
	}
	c.Start()
	logrus.WithField("schedule", expr).Info("Reminder job scheduled")
	return c, nil
}
