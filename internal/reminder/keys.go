package reminder

import "fmt"

// Family names one of the independent trigger conditions evaluated per
// task on every tick.
type Family string

// Reminder families.
const (
	FamilyCustom    Family = "custom"
	FamilyFiveDay   Family = "five-day"
	FamilyThreshold Family = "threshold"
	FamilyFrequency Family = "frequency"
	FamilyDueToday  Family = "due-today"
)

// Dedup keys. A family has fired for an event exactly when the log holds
// a notification with the matching key as its id. Keys for conditions
// that recur daily carry the local date.

// CustomKey is stable for as long as the reminder value is unchanged, so
// rescheduling yields a fresh key.
func CustomKey(taskID, customReminderDate string) string {
	return fmt.Sprintf("custom-rem-%s-%s", taskID, customReminderDate)
}

// FiveDayKey fires at most once per day.
func FiveDayKey(today, taskID string) string {
	return fmt.Sprintf("popup-5days-%s-%s", today, taskID)
}

// ThresholdKey has no date: each threshold fires once per task.
func ThresholdKey(threshold int, taskID string) string {
	return fmt.Sprintf("rem-setting-%d-%s", threshold, taskID)
}

// FrequencyKey fires at most once per day for a given period.
func FrequencyKey(period int, today, taskID string) string {
	return fmt.Sprintf("freq-%d-%s-%s", period, today, taskID)
}

// DueTodayKey has no date: the task is due on a single day.
func DueTodayKey(taskID string) string {
	return "rem-today-" + taskID
}
