package models

import (
	"strconv"
	"strings"
)

// Settings are the user's preferences. ReminderTime is the default alert
// lead time in hours, kept as the string the settings form submits.
type Settings struct {
	FullName     string `json:"fullName"`
	JobTitle     string `json:"jobTitle"`
	EmailEnabled bool   `json:"emailEnabled"`
	InAppEnabled bool   `json:"inAppEnabled"`
	SoundEnabled bool   `json:"soundEnabled"`
	Language     string `json:"language"`
	Timezone     string `json:"timezone"`
	ReminderTime string `json:"reminderTime"`
}

func DefaultSettings() Settings {
	return Settings{
		FullName:     "Aljefre",
		JobTitle:     "Senior Officer",
		EmailEnabled: true,
		InAppEnabled: true,
		SoundEnabled: true,
		Language:     "ar",
		Timezone:     "Dubai (GMT+04:00)",
		ReminderTime: "24",
	}
}

// AlertDaysThreshold converts ReminderTime to whole days before the due
// date. "1" means the same day. Only the leading integer counts, so
// "48h" is two days; values with no leading digits mean one day.
func (s Settings) AlertDaysThreshold() int {
	raw := strings.TrimSpace(s.ReminderTime)
	if raw == "1" {
		return 0
	}
	hours, ok := leadingInt(raw)
	if !ok || hours < 0 {
		return 1
	}
	return hours / 24
}

// leadingInt parses an optionally signed run of digits at the start of s
// and ignores the rest.
func leadingInt(s string) (int, bool) {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
