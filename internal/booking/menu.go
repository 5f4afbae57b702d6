package booking

import (
	"encoding/json"
	"fmt"
	"strings"
)

// OptionsPerDay is the number of meals and of desserts offered each day.
const OptionsPerDay = 3

// MenuDay lists the meals and desserts offered on one weekday.
type MenuDay struct {
	Meals    []string `json:"meals"`
	Desserts []string `json:"desserts"`
}

// MenuDays maps a weekday key (lunes..viernes) to its offer.
type MenuDays map[string]MenuDay

var defaultMenuDays = MenuDays{
	"lunes":     {Meals: []string{"Pollo grille con papas", "Pasta al pesto", "Ensalada de quinoa"}, Desserts: []string{"Fruta fresca", "Brownie", "Yogur con granola"}},
	"martes":    {Meals: []string{"Carne al horno", "Risotto de hongos", "Wrap vegetariano"}, Desserts: []string{"Mousse de chocolate", "Gelatina", "Manzana asada"}},
	"miercoles": {Meals: []string{"Pescado al limon", "Lasagna vegetal", "Tacos de pollo"}, Desserts: []string{"Cheesecake", "Fruta fresca", "Flan casero"}},
	"jueves":    {Meals: []string{"Hamburguesa casera", "Curry de garbanzos", "Fideos salteados"}, Desserts: []string{"Brownie", "Helado", "Yogur con granola"}},
	"viernes":   {Meals: []string{"Pizza artesanal", "Sushi bowl", "Ensalada cesar"}, Desserts: []string{"Tiramisu", "Fruta fresca", "Panqueques"}},
}

// DefaultMenuDays returns a fresh copy of the seed menu.
func DefaultMenuDays() MenuDays {
	out := make(MenuDays, len(defaultMenuDays))
	for day, md := range defaultMenuDays {
		out[day] = MenuDay{
			Meals:    append([]string(nil), md.Meals...),
			Desserts: append([]string(nil), md.Desserts...),
		}
	}
	return out
}

// fillOptions keeps the non-blank submitted names, pads from fallback and
// truncates to OptionsPerDay.
func fillOptions(submitted, fallback []string) []string {
	out := make([]string, 0, OptionsPerDay)
	for _, s := range submitted {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	out = append(out, fallback...)
	if len(out) > OptionsPerDay {
		out = out[:OptionsPerDay]
	}
	return out
}

// NormalizeMenuDays merges an edit into the stored menu. Each day ends with
// exactly three meals and three desserts: short lists are padded from the
// current value (or the seed menu), long ones are truncated.
func NormalizeMenuDays(submitted, current MenuDays) (MenuDays, error) {
	defaults := DefaultMenuDays()
	out := make(MenuDays, len(DayKeys))
	for _, day := range DayKeys {
		fallback, ok := current[day]
		if !ok {
			fallback = defaults[day]
		}
		entry := submitted[day]
		meals := fillOptions(entry.Meals, fallback.Meals)
		desserts := fillOptions(entry.Desserts, fallback.Desserts)
		if len(meals) != OptionsPerDay || len(desserts) != OptionsPerDay {
			return nil, &ValidationError{Msg: fmt.Sprintf("Cada dia debe tener 3 comidas y 3 postres (%s)", day)}
		}
		out[day] = MenuDay{Meals: meals, Desserts: desserts}
	}
	return out, nil
}

// EncodeMenuDays is the canonical column encoding of a menu.
func EncodeMenuDays(days MenuDays) ([]byte, error) {
	return json.Marshal(days)
}

// DecodeMenuDays reverses EncodeMenuDays.
func DecodeMenuDays(raw []byte) (MenuDays, error) {
	var days MenuDays
	if err := json.Unmarshal(raw, &days); err != nil {
		return nil, fmt.Errorf("decode menu days: %w", err)
	}
	return days, nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
