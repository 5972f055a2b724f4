package reminder

import (
	"time"

	"munjiz/internal/models"
)

// DaysUntil counts local calendar days from today to the due date.
// Negative means overdue.
func DaysUntil(dueDate string, today time.Time, loc *time.Location) (int, error) {
	due, err := models.ParseDate(dueDate, loc)
	if err != nil {
		return 0, err
	}
	return models.DaysBetween(models.StartOfDay(today, loc), due), nil
}
