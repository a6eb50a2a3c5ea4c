package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/marinavibecoder/telegram-notification-bot/internal/domain"
	"github.com/marinavibecoder/telegram-notification-bot/internal/scheduler"
)

// HistoryReader serves the /history command. history.Log implements it.
type HistoryReader interface {
	Recent(n int) ([]domain.Delivery, error)
}

// Interpreter turns one line of text into one line-oriented text response.
// It holds no state between commands; the schedule store is the state.
type Interpreter struct {
	svc  *scheduler.Service
	hist HistoryReader
	log  *zap.Logger
}

// New creates an interpreter over the scheduling service.
func New(svc *scheduler.Service, hist HistoryReader, log *zap.Logger) *Interpreter {
	return &Interpreter{svc: svc, hist: hist, log: log}
}

// Handle executes a single raw command and always returns exactly one
// response, success or error. It never panics on malformed input.
func (i *Interpreter) Handle(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return i.usage()
	}
	// Telegram appends "@botname" to commands in some clients.
	cmd := strings.ToLower(strings.SplitN(fields[0], "@", 2)[0])
	args := fields[1:]

	switch cmd {
	case "/start":
		return greetText + "\n" + usageText + "\n\n" + i.summary()
	case "/list":
		return i.list()
	case "/all":
		return i.all()
	case "/create":
		return i.create(args)
	case "/change":
		return i.change(args)
	case "/delete":
		return i.delete(args)
	case "/refresh":
		return i.refresh(args)
	case "/timer":
		return i.timer(args)
	case "/send":
		return i.send(args)
	case "/history":
		return i.history(args)
	default:
		return i.usage()
	}
}

func (i *Interpreter) usage() string {
	return usageText + "\n\n" + i.summary()
}

func (i *Interpreter) summary() string {
	n := len(i.svc.List())
	switch n {
	case 0:
		return noSchedulesText
	case 1:
		return "You have 1 schedule. See /list."
	default:
		return fmt.Sprintf("You have %d schedules. See /list.", n)
	}
}

func (i *Interpreter) list() string {
	schedules := i.svc.List()
	if len(schedules) == 0 {
		return noSchedulesText
	}
	var b strings.Builder
	b.WriteString("🧾 Your schedules:\n")
	for _, s := range schedules {
		fmt.Fprintf(&b, "• %s — every %dm: %s\n", s.Name, s.IntervalMin, s.Message)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (i *Interpreter) all() string {
	schedules := i.svc.List()
	if len(schedules) == 0 {
		return noSchedulesText
	}
	var b strings.Builder
	b.WriteString("🧾 Your schedules:\n")
	for _, s := range schedules {
		left, err := i.svc.Remaining(s.Name)
		if err != nil {
			// Deleted between List and Remaining; skip the stale row.
			continue
		}
		fmt.Fprintf(&b, "• %s — every %dm, next at %s (in %s)\n",
			s.Name, s.IntervalMin,
			s.NextFireAt.UTC().Format("2006-01-02 15:04 UTC"),
			domain.FormatRemaining(left),
		)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (i *Interpreter) create(args []string) string {
	if len(args) < 2 {
		return "Usage: /create <name> <minutes> [message]\nExample: /create work 30 Back to the desk!"
	}
	name := args[0]
	mins, err := domain.ParseInterval(args[1])
	if err != nil {
		return i.renderError(err, name)
	}
	message := strings.Join(args[2:], " ")
	if message == "" {
		message = fmt.Sprintf(defaultMessageFmt, name)
	}
	sch, err := i.svc.Create(name, mins, message)
	if err != nil {
		return i.renderError(err, name)
	}
	return fmt.Sprintf("✅ Created %q: every %d minutes. First fire in %d minutes.", sch.Name, sch.IntervalMin, sch.IntervalMin)
}

func (i *Interpreter) change(args []string) string {
	if len(args) != 2 {
		return "Usage: /change <name> <minutes>\nExample: /change work 45"
	}
	name := args[0]
	mins, err := domain.ParseInterval(args[1])
	if err != nil {
		return i.renderError(err, name)
	}
	if _, err := i.svc.Change(name, mins); err != nil {
		return i.renderError(err, name)
	}
	return fmt.Sprintf("✅ %q now fires every %d minutes. Next fire in %d minutes.", name, mins, mins)
}

func (i *Interpreter) delete(args []string) string {
	if len(args) != 1 {
		return "Usage: /delete <name>"
	}
	name := args[0]
	if err := i.svc.Delete(name); err != nil {
		return i.renderError(err, name)
	}
	return fmt.Sprintf("🗑 Deleted %q.", name)
}

func (i *Interpreter) refresh(args []string) string {
	if len(args) != 1 {
		return "Usage: /refresh <name>"
	}
	name := args[0]
	sch, err := i.svc.Refresh(name)
	if err != nil {
		return i.renderError(err, name)
	}
	return fmt.Sprintf("🔄 %q restarted. Next fire in %d minutes.", name, sch.IntervalMin)
}

func (i *Interpreter) timer(args []string) string {
	if len(args) != 1 {
		return "Usage: /timer <name>"
	}
	name := args[0]
	left, err := i.svc.Remaining(name)
	if err != nil {
		return i.renderError(err, name)
	}
	return fmt.Sprintf("⏳ %q fires in %s.", name, domain.FormatRemaining(left))
}

func (i *Interpreter) send(args []string) string {
	if len(args) != 1 {
		return "Usage: /send <name>"
	}
	name := args[0]
	if err := i.svc.SendNow(name); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return i.renderError(err, name)
		}
		// A command-triggered send reports transport failures to the caller.
		return fmt.Sprintf("⚠️ Sending %q failed: %v", name, err)
	}
	return fmt.Sprintf("📨 Sent %q.", name)
}

func (i *Interpreter) history(args []string) string {
	n := 10
	if len(args) > 1 {
		return "Usage: /history [n]"
	}
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			return "Usage: /history [n] — n must be a positive number."
		}
		n = v
	}
	if i.hist == nil {
		return "Delivery history is not available."
	}
	deliveries, err := i.hist.Recent(n)
	if err != nil {
		i.log.Error("history read failed", zap.Error(err))
		return "⚠️ Could not read the delivery history."
	}
	if len(deliveries) == 0 {
		return "Nothing delivered yet."
	}
	var b strings.Builder
	b.WriteString("📜 Recent deliveries:\n")
	for _, d := range deliveries {
		mark := "✅"
		detail := ""
		if !d.OK {
			mark = "❌"
			detail = " (" + d.Error + ")"
		}
		fmt.Fprintf(&b, "%s %s %s%s\n", mark, d.SentAt.UTC().Format("2006-01-02 15:04"), d.Schedule, detail)
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderError maps domain errors onto friendly replies; anything
// unexpected is logged and reported generically, never as a stack trace.
func (i *Interpreter) renderError(err error, name string) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Sprintf("❌ No schedule named %q. Use /list to see what exists.", name)
	case errors.Is(err, domain.ErrDuplicateName):
		return fmt.Sprintf("❌ A schedule named %q already exists. Use /change to retime it.", name)
	case errors.Is(err, domain.ErrInvalidInterval):
		return "❌ The interval must be a whole number of minutes, at least 1."
	default:
		i.log.Error("command failed", zap.String("schedule", name), zap.Error(err))
		return "⚠️ Something went wrong. Please try again."
	}
}
