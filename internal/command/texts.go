package command

// UI texts in English
const (
	greetText = "👋 I am your notification dispatcher.\n\n" +
		"Create named schedules and I will ping you with each schedule's message on its own interval.\n"

	usageText = "I understand these commands:\n" +
		"/start — help and current schedules\n" +
		"/list — schedules with intervals and messages\n" +
		"/all — schedules with next fire time and countdown\n" +
		"/create <name> <minutes> [message] — add a schedule\n" +
		"/change <name> <minutes> — update an interval\n" +
		"/delete <name> — remove a schedule\n" +
		"/refresh <name> — restart a countdown\n" +
		"/timer <name> — time left until the next fire\n" +
		"/send <name> — deliver a schedule's message right now\n" +
		"/history [n] — recent deliveries"

	noSchedulesText = "No schedules yet. Start with /create <name> <minutes> [message]."

	defaultMessageFmt = "🔔 Reminder: %s"
)
