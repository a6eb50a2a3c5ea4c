package command

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/marinavibecoder/telegram-notification-bot/internal/domain"
	"github.com/marinavibecoder/telegram-notification-bot/internal/engine"
	"github.com/marinavibecoder/telegram-notification-bot/internal/scheduler"
	"github.com/marinavibecoder/telegram-notification-bot/internal/store"
)

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) SendMessage(text string) error {
	f.sent = append(f.sent, text)
	return f.err
}

type fakeTimer struct{ stopped bool }

func (t *fakeTimer) Stop() bool {
	was := t.stopped
	t.stopped = true
	return !was
}

type fakeHistory struct {
	deliveries []domain.Delivery
	err        error
}

func (f *fakeHistory) Recent(n int) ([]domain.Delivery, error) {
	if f.err != nil {
		return nil, f.err
	}
	if n > len(f.deliveries) {
		n = len(f.deliveries)
	}
	return f.deliveries[:n], nil
}

func newInterpreter(t *testing.T) (*Interpreter, *fakeSender, *fakeHistory) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "schedules.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	eng := engine.NewWith(zap.NewNop(), clock, func(time.Duration, func()) engine.Timer {
		return &fakeTimer{}
	})
	sender := &fakeSender{}
	hist := &fakeHistory{}
	svc := scheduler.NewWith(st, eng, sender, nil, zap.NewNop(), clock)
	return New(svc, hist, zap.NewNop()), sender, hist
}

func TestHandle_UnknownCommandReturnsUsage(t *testing.T) {
	i, _, _ := newInterpreter(t)
	for _, raw := range []string{"/bogus", "hello there", "", "   "} {
		resp := i.Handle(raw)
		if !strings.Contains(resp, "/create <name> <minutes>") {
			t.Fatalf("Handle(%q) = %q, want usage text", raw, resp)
		}
	}
}

func TestHandle_StartIncludesHelpAndSummary(t *testing.T) {
	i, _, _ := newInterpreter(t)
	resp := i.Handle("/start")
	if !strings.Contains(resp, "/change <name> <minutes>") {
		t.Fatalf("missing help in %q", resp)
	}
	if !strings.Contains(resp, "No schedules yet") {
		t.Fatalf("missing summary in %q", resp)
	}

	i.Handle("/create work 30")
	if resp := i.Handle("/start"); !strings.Contains(resp, "1 schedule") {
		t.Fatalf("summary not updated: %q", resp)
	}
}

func TestHandle_CreateAndList(t *testing.T) {
	i, _, _ := newInterpreter(t)
	resp := i.Handle("/create work 30 Back to the desk!")
	if !strings.Contains(resp, `Created "work"`) {
		t.Fatalf("create response: %q", resp)
	}
	resp = i.Handle("/list")
	if !strings.Contains(resp, "work — every 30m: Back to the desk!") {
		t.Fatalf("list response: %q", resp)
	}
}

func TestHandle_CreateDefaultsMessage(t *testing.T) {
	i, sender, _ := newInterpreter(t)
	i.Handle("/create water 45")
	i.Handle("/send water")
	if len(sender.sent) != 1 || !strings.Contains(sender.sent[0], "water") {
		t.Fatalf("default message = %v", sender.sent)
	}
}

func TestHandle_CreateErrors(t *testing.T) {
	i, _, _ := newInterpreter(t)
	if resp := i.Handle("/create"); !strings.Contains(resp, "Usage: /create") {
		t.Fatalf("arg-count hint missing: %q", resp)
	}
	if resp := i.Handle("/create work abc"); !strings.Contains(resp, "whole number of minutes") {
		t.Fatalf("invalid interval: %q", resp)
	}
	if resp := i.Handle("/create work 0"); !strings.Contains(resp, "whole number of minutes") {
		t.Fatalf("zero interval: %q", resp)
	}
	i.Handle("/create work 30")
	if resp := i.Handle("/create work 15"); !strings.Contains(resp, "already exists") {
		t.Fatalf("duplicate: %q", resp)
	}
	// The original schedule must be untouched by the failed create.
	if resp := i.Handle("/list"); !strings.Contains(resp, "every 30m") {
		t.Fatalf("original lost: %q", resp)
	}
}

func TestHandle_ChangeAndTimer(t *testing.T) {
	i, _, _ := newInterpreter(t)
	i.Handle("/create work 30")
	if resp := i.Handle("/change work 5"); !strings.Contains(resp, "every 5 minutes") {
		t.Fatalf("change: %q", resp)
	}
	resp := i.Handle("/timer work")
	if !strings.Contains(resp, "5m 00s") {
		t.Fatalf("timer after change: %q", resp)
	}
	if resp := i.Handle("/change ghost 10"); !strings.Contains(resp, `No schedule named "ghost"`) {
		t.Fatalf("change ghost: %q", resp)
	}
	if resp := i.Handle("/change work"); !strings.Contains(resp, "Usage: /change") {
		t.Fatalf("arg-count hint missing: %q", resp)
	}
}

func TestHandle_DeleteThenTimer(t *testing.T) {
	i, _, _ := newInterpreter(t)
	i.Handle("/create work 30")
	if resp := i.Handle("/delete work"); !strings.Contains(resp, `Deleted "work"`) {
		t.Fatalf("delete: %q", resp)
	}
	if resp := i.Handle("/timer work"); !strings.Contains(resp, `No schedule named "work"`) {
		t.Fatalf("timer after delete: %q", resp)
	}
}

func TestHandle_RefreshKeepsInterval(t *testing.T) {
	i, _, _ := newInterpreter(t)
	i.Handle("/create work 30")
	if resp := i.Handle("/refresh work"); !strings.Contains(resp, "Next fire in 30 minutes") {
		t.Fatalf("refresh: %q", resp)
	}
	if resp := i.Handle("/refresh ghost"); !strings.Contains(resp, `No schedule named "ghost"`) {
		t.Fatalf("refresh ghost: %q", resp)
	}
}

func TestHandle_All(t *testing.T) {
	i, _, _ := newInterpreter(t)
	i.Handle("/create work 30")
	i.Handle("/create gym 90")
	resp := i.Handle("/all")
	if !strings.Contains(resp, "work — every 30m, next at 2025-03-10 12:30 UTC (in 30m 00s)") {
		t.Fatalf("all: %q", resp)
	}
	// Insertion order: work before gym.
	if strings.Index(resp, "work") > strings.Index(resp, "gym") {
		t.Fatalf("order lost: %q", resp)
	}
}

func TestHandle_SendReportsTransportError(t *testing.T) {
	i, sender, _ := newInterpreter(t)
	i.Handle("/create work 30 hi")
	sender.err = errors.New("telegram: 502")
	resp := i.Handle("/send work")
	if !strings.Contains(resp, "failed") || !strings.Contains(resp, "502") {
		t.Fatalf("send error not reported: %q", resp)
	}
	if resp := i.Handle("/send ghost"); !strings.Contains(resp, `No schedule named "ghost"`) {
		t.Fatalf("send ghost: %q", resp)
	}
}

func TestHandle_CommandWithBotSuffixAndCase(t *testing.T) {
	i, _, _ := newInterpreter(t)
	i.Handle("/create Work 30")
	if resp := i.Handle("/LIST@notify_bot"); !strings.Contains(resp, "Work — every 30m") {
		t.Fatalf("suffixed command: %q", resp)
	}
	// Schedule names stay case-sensitive even though commands do not.
	if resp := i.Handle("/timer work"); !strings.Contains(resp, `No schedule named "work"`) {
		t.Fatalf("name case-folding happened: %q", resp)
	}
}

func TestHandle_History(t *testing.T) {
	i, _, hist := newInterpreter(t)
	if resp := i.Handle("/history"); !strings.Contains(resp, "Nothing delivered yet") {
		t.Fatalf("empty history: %q", resp)
	}
	sent := time.Date(2025, time.March, 10, 11, 0, 0, 0, time.UTC)
	hist.deliveries = []domain.Delivery{
		{ID: "a", Schedule: "work", SentAt: sent, OK: true},
		{ID: "b", Schedule: "gym", SentAt: sent.Add(time.Minute), OK: false, Error: "telegram: 502"},
	}
	resp := i.Handle("/history 2")
	if !strings.Contains(resp, "✅ 2025-03-10 11:00 work") {
		t.Fatalf("history: %q", resp)
	}
	if !strings.Contains(resp, "❌") || !strings.Contains(resp, "telegram: 502") {
		t.Fatalf("failed delivery not marked: %q", resp)
	}
	if resp := i.Handle("/history nope"); !strings.Contains(resp, "Usage: /history") {
		t.Fatalf("bad n: %q", resp)
	}
}
