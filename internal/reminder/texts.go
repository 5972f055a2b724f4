package reminder

import "fmt"

// User-facing reminder texts. The client ships in Arabic.
const (
	textCustomNativeTitle = "تذكير مخصص 🔔"
	textCustomPopup       = "هذا تذكيرك المخصص للمهمة. هل ترغب في مراجعتها الآن؟"
	textCustomTitle       = "🔔 تذكير مخصص"
	textCustomMessage     = "حان موعد التذكير للمهمة المجدولة."

	textFiveDayNativeTitle = "⏳ تنبيه الموعد النهائي"
	textFiveDayPopupTitle  = "تنبيه الموعد النهائي ⏳"
	textFiveDayTitle       = "متبقي 5 أيام"
	textFiveDayMessage     = "المهمة تستحق التسليم خلال 5 أيام."

	textThresholdMessage = "موعد استحقاق المهمة يقترب."
	textFrequencyMessage = "تم إرسال تذكير للمهمة."

	textDueTodayTitle   = "موعد التسليم اليوم!"
	textDueTodayMessage = "يجب تسليم المهمة اليوم."
)

func textCustomNativeBody(title string) string {
	return "حان موعد: " + title
}

func textFiveDayNativeBody(title string) string {
	return "متبقي 5 أيام على تسليم: " + title
}

func textFiveDayPopup(title string) string {
	return fmt.Sprintf("متبقي 5 أيام فقط على موعد تسليم المهمة: %q. هل تريد تأجيل التذكير أم إيقافه؟", title)
}

func textThresholdTitle(lead int) string {
	if lead == 0 {
		return "تذكير: اليوم"
	}
	return fmt.Sprintf("تذكير: %d أيام متبقية", lead)
}

func textFrequencyTitle(days int) string {
	return fmt.Sprintf("تذكير دوري: متبقي %d أيام", days)
}
