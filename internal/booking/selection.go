package booking

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TimeSlots is the fixed set of pickup times.
var TimeSlots = []string{
	"11:00", "11:30", "12:00", "12:30", "13:00", "13:30", "14:00",
	"21:00", "21:30", "22:00",
}

// IsTimeSlot reports whether slot is one of TimeSlots.
func IsTimeSlot(slot string) bool {
	return contains(TimeSlots, slot)
}

// Selection is one weekday's choice inside a reservation.
type Selection struct {
	Day     string `json:"day"`
	Meal    string `json:"meal"`
	Dessert string `json:"dessert"`
	Bread   bool   `json:"bread"`
}

// SubmittedSelection is a selection as sent by a client. Bread is kept raw so
// that only a literal JSON true counts.
type SubmittedSelection struct {
	Day     string          `json:"day"`
	Meal    string          `json:"meal"`
	Dessert string          `json:"dessert"`
	Bread   json.RawMessage `json:"bread,omitempty"`
}

func strictTrue(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("true"))
}

// ValidateSelections checks a submission against the authoritative menu of
// the target week and returns the selections ordered lunes..viernes.
//
// Checks run in order: day coverage, menu membership per day, time slot.
func ValidateSelections(submitted []SubmittedSelection, timeSlot string, menu MenuDays) ([]Selection, error) {
	if len(submitted) != len(DayKeys) {
		return nil, &ValidationError{Msg: "Debe enviar una seleccion para cada dia lunes-viernes"}
	}

	byDay := make(map[string]SubmittedSelection, len(DayKeys))
	for _, s := range submitted {
		if _, seen := byDay[s.Day]; !seen {
			byDay[s.Day] = s
		}
	}
	for _, day := range DayKeys {
		if _, ok := byDay[day]; !ok {
			return nil, &ValidationError{Msg: fmt.Sprintf("Falta seleccion para %s", day)}
		}
	}

	normalized := make([]Selection, 0, len(DayKeys))
	for _, day := range DayKeys {
		match := byDay[day]
		offer, ok := menu[day]
		if !ok {
			return nil, &MenuNotConfiguredError{Day: day}
		}
		if !contains(offer.Meals, match.Meal) || !contains(offer.Desserts, match.Dessert) {
			return nil, &ValidationError{Msg: fmt.Sprintf("Opcion invalida en %s", day)}
		}
		normalized = append(normalized, Selection{
			Day:     day,
			Meal:    match.Meal,
			Dessert: match.Dessert,
			Bread:   strictTrue(match.Bread),
		})
	}

	if !IsTimeSlot(timeSlot) {
		return nil, &ValidationError{Msg: "Horario no valido"}
	}
	return normalized, nil
}

// EncodeSelections is the canonical column encoding of a reservation's days.
func EncodeSelections(sel []Selection) ([]byte, error) {
	if sel == nil {
		sel = []Selection{}
	}
	return json.Marshal(sel)
}

// DecodeSelections reverses EncodeSelections.
func DecodeSelections(raw []byte) ([]Selection, error) {
	var sel []Selection
	if err := json.Unmarshal(raw, &sel); err != nil {
		return nil, fmt.Errorf("decode selections: %w", err)
	}
	return sel, nil
}
