package tasks

import (
	"time"

	"munjiz/internal/models"
)

// SeedTasks returns the demo tasks shown on first run, dated relative to
// today.
func SeedTasks(today time.Time, loc *time.Location, newID func() string) []models.Task {
	day := func(offset int) string {
		return models.FormatDate(models.StartOfDay(today, loc).AddDate(0, 0, offset), loc)
	}
	return []models.Task{
		{
			ID:                     newID(),
			Title:                  "تسليم المشروع النهائي",
			Description:            "يجب تسليم كافة الملفات والتقارير للعميل.",
			StartDate:              day(-10),
			DueDate:                day(5),
			Priority:               models.PriorityUrgent,
			Status:                 models.StatusPending,
			EmailReminderFrequency: models.FrequencyNone,
		},
		{
			ID:                     newID(),
			Title:                  "مراجعة الميزانية السنوية",
			Description:            "تحليل نفقات الربع الأول وإعداد تقرير للمدير المالي.",
			StartDate:              day(-2),
			DueDate:                day(2),
			Priority:               models.PriorityHigh,
			Status:                 models.StatusInProgress,
			EmailReminderFrequency: models.FrequencyEvery2Days,
		},
		{
			ID:                     newID(),
			Title:                  "تحديث المحتوى التسويقي",
			Description:            "تعديل النصوص في صفحة الهبوط وإضافة صور جديدة.",
			StartDate:              day(-5),
			DueDate:                day(-1),
			Priority:               models.PriorityMedium,
			Status:                 models.StatusPending,
			EmailReminderFrequency: models.FrequencyNone,
		},
		{
			ID:                     newID(),
			Title:                  "اجتماع الفريق الأسبوعي",
			Description:            "مناقشة سير العمل وتوزيع المهام الجديدة.",
			StartDate:              day(10),
			DueDate:                day(15),
			Priority:               models.PriorityLow,
			Status:                 models.StatusPending,
			EmailReminderFrequency: models.FrequencyEvery5Days,
		},
	}
}
