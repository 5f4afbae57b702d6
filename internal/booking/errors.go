package booking

import "fmt"

// ValidationError is a malformed or incomplete submission. Its message is
// safe to show to the caller.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// WrongWeekError rejects reservations for any week other than the upcoming one.
type WrongWeekError struct {
	Expected string
	Got      string
}

func (e *WrongWeekError) Error() string {
	return fmt.Sprintf("Las reservas solo se abren para la semana que inicia el %s", e.Expected)
}

// DeadlineClosedError is returned once the configured cutoff has passed.
type DeadlineClosedError struct {
	Deadline Deadline
}

func (e *DeadlineClosedError) Error() string {
	return fmt.Sprintf("El periodo de reservas ha cerrado (Cierra el %s a las %s).", DayName(e.Deadline.Day), e.Deadline.Time)
}

// MenuNotConfiguredError means a menu that should have been seeded is missing.
// It is a server-side fault, not a caller error.
type MenuNotConfiguredError struct {
	Week string
	Day  string
}

func (e *MenuNotConfiguredError) Error() string {
	if e.Day != "" {
		return fmt.Sprintf("Error interno: Menu no configurado para %s", e.Day)
	}
	return fmt.Sprintf("Error interno: Menu no configurado para %s", e.Week)
}
