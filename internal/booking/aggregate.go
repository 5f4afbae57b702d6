package booking

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// PopularDishLimit caps the popular-dishes ranking.
const PopularDishLimit = 5

// Record is the flattened view of a stored reservation that the reporters
// consume. Selections holds the raw column so a corrupt row can be skipped
// without failing the whole report.
type Record struct {
	ID         uint
	UserID     uint
	UserName   string
	FuncNumber string
	WeekStart  string
	TimeSlot   string
	Selections []byte
}

// SlotTally counts one (day, time slot) cell of a production sheet.
type SlotTally struct {
	Meals    map[string]int `json:"meals"`
	Desserts map[string]int `json:"desserts"`
	Bread    int            `json:"bread"`
}

// SlotStats is keyed by day, then by time slot.
type SlotStats map[string]map[string]*SlotTally

func (s SlotStats) cell(day, slot string) *SlotTally {
	bySlot, ok := s[day]
	if !ok {
		bySlot = make(map[string]*SlotTally)
		s[day] = bySlot
	}
	t, ok := bySlot[slot]
	if !ok {
		t = &SlotTally{Meals: map[string]int{}, Desserts: map[string]int{}}
		bySlot[slot] = t
	}
	return t
}

func decodeRecord(r Record) ([]Selection, bool) {
	sel, err := DecodeSelections(r.Selections)
	if err != nil {
		logrus.WithError(err).WithField("reservation_id", r.ID).Warn("skipping reservation with unreadable selections")
		return nil, false
	}
	return sel, true
}

func skipSelection(r Record, sel Selection, reason string) {
	logrus.WithFields(logrus.Fields{
		"reservation_id": r.ID,
		"day":            sel.Day,
		"time_slot":      r.TimeSlot,
	}).Warn("skipping selection: " + reason)
}

// AggregateByDaySlot folds reservations into per-day, per-slot tallies of
// meals, desserts and bread. It returns the number of skipped entries.
func AggregateByDaySlot(records []Record) (SlotStats, int) {
	stats := SlotStats{}
	skipped := 0
	for _, r := range records {
		slot := strings.TrimSpace(r.TimeSlot)
		if slot == "" {
			logrus.WithField("reservation_id", r.ID).Warn("skipping reservation without time slot")
			skipped++
			continue
		}
		selections, ok := decodeRecord(r)
		if !ok {
			skipped++
			continue
		}
		for _, sel := range selections {
			if !IsDayKey(sel.Day) {
				skipSelection(r, sel, "unknown day")
				skipped++
				continue
			}
			t := stats.cell(sel.Day, slot)
			if sel.Meal != "" {
				t.Meals[sel.Meal]++
			}
			if sel.Dessert != "" {
				t.Desserts[sel.Dessert]++
			}
			if sel.Bread {
				t.Bread++
			}
		}
	}
	return stats, skipped
}

type DishCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type DailyStat struct {
	Date         string `json:"date"`
	DayName      string `json:"dayName"`
	Total        int    `json:"total"`
	WithBread    int    `json:"withBread"`
	WithoutBread int    `json:"withoutBread"`
}

type UserStats struct {
	TotalUsers  int `json:"totalUsers"`
	ActiveUsers int `json:"activeUsers"`
}

type BreadStats struct {
	WithBread    int `json:"withBread"`
	WithoutBread int `json:"withoutBread"`
}

type SlotCount struct {
	Time  string `json:"time"`
	Count int    `json:"count"`
}

// DetailRow is one line of the printable per-day detail listing.
type DetailRow struct {
	Date       string `json:"date"`
	Day        string `json:"day"`
	UserName   string `json:"userName"`
	FuncNumber string `json:"funcNumber"`
	Meal       string `json:"meal"`
	Dessert    string `json:"dessert"`
	Bread      string `json:"bread"`
	TimeSlot   string `json:"timeSlot"`
}

// Report is the admin statistics view of one week.
type Report struct {
	Week                 string      `json:"week"`
	PopularDishes        []DishCount `json:"popularDishes"`
	DailyStats           []DailyStat `json:"dailyStats"`
	UserStats            UserStats   `json:"userStats"`
	BreadStats           BreadStats  `json:"breadStats"`
	TimeSlotStats        []SlotCount `json:"timeSlotStats"`
	DetailedReservations []DetailRow `json:"detailedReservations"`
	Skipped              int         `json:"skipped"`
}

// BuildReport computes dish popularity, daily totals with the bread split,
// slot usage, user activity and the detail listing for weekStart.
func BuildReport(weekStart string, records []Record, totalUsers int) Report {
	report := Report{
		Week:                 weekStart,
		DetailedReservations: []DetailRow{},
	}

	daily := map[string]*DailyStat{}
	for _, day := range DayKeys {
		date, err := DayDate(weekStart, day)
		if err != nil {
			logrus.WithError(err).WithField("week", weekStart).Warn("cannot pre-initialise daily stats")
			break
		}
		daily[date] = &DailyStat{Date: date, DayName: day}
	}

	slots := map[string]int{}
	for _, s := range TimeSlots {
		slots[s] = 0
	}

	dishes := map[string]int{}
	active := map[uint]struct{}{}

	for _, r := range records {
		active[r.UserID] = struct{}{}
		if r.TimeSlot != "" {
			slots[r.TimeSlot]++
		}

		selections, ok := decodeRecord(r)
		if !ok {
			report.Skipped++
			continue
		}
		for _, sel := range selections {
			if sel.Meal == "" {
				continue
			}
			dishes[sel.Meal]++
			if sel.Bread {
				report.BreadStats.WithBread++
			} else {
				report.BreadStats.WithoutBread++
			}

			date, err := DayDate(r.WeekStart, sel.Day)
			if err != nil {
				skipSelection(r, sel, err.Error())
				report.Skipped++
				continue
			}
			ds, ok := daily[date]
			if !ok {
				ds = &DailyStat{Date: date, DayName: sel.Day}
				daily[date] = ds
			}
			ds.Total++
			bread := "No"
			if sel.Bread {
				ds.WithBread++
				bread = "Sí"
			} else {
				ds.WithoutBread++
			}

			name := r.UserName
			if name == "" {
				name = "Desconocido"
			}
			report.DetailedReservations = append(report.DetailedReservations, DetailRow{
				Date:       date,
				Day:        sel.Day,
				UserName:   name,
				FuncNumber: r.FuncNumber,
				Meal:       sel.Meal,
				Dessert:    sel.Dessert,
				Bread:      bread,
				TimeSlot:   r.TimeSlot,
			})
		}
	}

	report.PopularDishes = rankDishes(dishes, PopularDishLimit)

	report.DailyStats = make([]DailyStat, 0, len(daily))
	for _, ds := range daily {
		report.DailyStats = append(report.DailyStats, *ds)
	}
	sort.Slice(report.DailyStats, func(i, j int) bool {
		return report.DailyStats[i].Date < report.DailyStats[j].Date
	})

	report.TimeSlotStats = make([]SlotCount, 0, len(slots))
	for slot, n := range slots {
		report.TimeSlotStats = append(report.TimeSlotStats, SlotCount{Time: slot, Count: n})
	}
	sort.Slice(report.TimeSlotStats, func(i, j int) bool {
		return report.TimeSlotStats[i].Time < report.TimeSlotStats[j].Time
	})

	report.UserStats = UserStats{TotalUsers: totalUsers, ActiveUsers: len(active)}
	return report
}

// rankDishes orders by count descending, then name ascending, and keeps the first limit.
func rankDishes(counts map[string]int, limit int) []DishCount {
	out := make([]DishCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, DishCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
