package tasks

import (
	"math"
	"sort"
	"time"

	"munjiz/internal/models"
)

type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// lastSelectableYear bounds the dashboard year picker.
const lastSelectableYear = 2090

const dueSoonDays = 5

// List returns the tasks matching f ordered by due date, overdue first.
// Unknown filters behave like FilterAll.
func (r *Repository) List(f Filter) []models.Task {
	var out []models.Task
	for _, t := range r.Snapshot() {
		switch f {
		case FilterActive:
			if t.IsCompleted() {
				continue
			}
		case FilterCompleted:
			if !t.IsCompleted() {
				continue
			}
		}
		out = append(out, t)
	}
	sortByDue(out)
	return out
}

// Completed returns completed tasks in stored order.
func (r *Repository) Completed() []models.Task {
	var out []models.Task
	for _, t := range r.Snapshot() {
		if t.IsCompleted() {
			out = append(out, t)
		}
	}
	return out
}

type Stats struct {
	Year             int           `json:"year"`
	Total            int           `json:"total"`
	Completed        int           `json:"completed"`
	Remaining        int           `json:"remaining"`
	DueSoon          int           `json:"dueSoon"`
	Overdue          int           `json:"overdue"`
	CompletionRate   int           `json:"completionRate"`
	MonthlyCompleted [12]int       `json:"monthlyCompleted"`
	ActiveTasks      []models.Task `json:"activeTasks"`
	AvailableYears   []int         `json:"availableYears"`
}

// Stats summarizes the tasks due in year as seen on today.
func (r *Repository) Stats(year int, today time.Time) Stats {
	all := r.Snapshot()
	today = models.StartOfDay(today, r.loc)
	st := Stats{Year: year, AvailableYears: availableYears(all, today, r.loc)}

	for _, t := range all {
		due, err := models.ParseDate(t.DueDate, r.loc)
		if err != nil || due.Year() != year {
			continue
		}
		st.Total++
		if t.IsCompleted() {
			st.Completed++
			st.MonthlyCompleted[due.Month()-1]++
			continue
		}
		st.Remaining++
		st.ActiveTasks = append(st.ActiveTasks, t)
		switch diff := models.DaysBetween(today, due); {
		case diff < 0:
			st.Overdue++
		case diff <= dueSoonDays:
			st.DueSoon++
		}
	}
	if st.Total > 0 {
		st.CompletionRate = int(math.Round(float64(st.Completed) / float64(st.Total) * 100))
	}
	sortByDue(st.ActiveTasks)
	return st
}

// Calendar groups the tasks due in the given month by due date.
func (r *Repository) Calendar(year int, month time.Month) map[string][]models.Task {
	out := make(map[string][]models.Task)
	for _, t := range r.Snapshot() {
		due, err := models.ParseDate(t.DueDate, r.loc)
		if err != nil || due.Year() != year || due.Month() != month {
			continue
		}
		out[t.DueDate] = append(out[t.DueDate], t)
	}
	return out
}

func availableYears(all []models.Task, today time.Time, loc *time.Location) []int {
	seen := make(map[int]bool)
	for _, t := range all {
		if due, err := models.ParseDate(t.DueDate, loc); err == nil {
			seen[due.Year()] = true
		}
	}
	for y := today.Year(); y <= lastSelectableYear; y++ {
		seen[y] = true
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

func sortByDue(ts []models.Task) {
	sort.SliceStable(ts, func(i, j int) bool {
		return ts[i].DueDate < ts[j].DueDate
	})
}
