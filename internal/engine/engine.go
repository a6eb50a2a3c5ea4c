package engine

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/marinavibecoder/telegram-notification-bot/internal/domain"
)

// Timer is the handle of a pending one-shot timer.
type Timer interface {
	Stop() bool
}

// TimerFunc registers fn to run once after delay and returns its handle.
// Production wires time.AfterFunc; tests substitute a manual trigger.
type TimerFunc func(delay time.Duration, fn func()) Timer

// Engine keeps exactly one armed timer per schedule name. The bookkeeping
// is never persisted; timers are re-armed from stored state on startup.
type Engine struct {
	log      *zap.Logger
	now      func() time.Time
	newTimer TimerFunc

	mu    sync.Mutex
	armed map[string]*entry
}

type entry struct {
	timer  Timer
	nextAt time.Time
}

// New builds an engine backed by the runtime clock and time.AfterFunc.
func New(log *zap.Logger) *Engine {
	return NewWith(log, time.Now, func(d time.Duration, fn func()) Timer {
		return time.AfterFunc(d, fn)
	})
}

// NewWith injects the clock and timer primitive. Tests use this seam.
func NewWith(log *zap.Logger, now func() time.Time, newTimer TimerFunc) *Engine {
	return &Engine{
		log:      log,
		now:      now,
		newTimer: newTimer,
		armed:    make(map[string]*entry),
	}
}

// Arm registers a one-shot timer that invokes fire when at is reached,
// replacing any previous timer for the same name. A due time already in
// the past fires with zero delay.
func (e *Engine) Arm(name string, at time.Time, fire func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if old, ok := e.armed[name]; ok {
		old.timer.Stop()
	}
	delay := at.Sub(e.now())
	if delay < 0 {
		delay = 0
	}
	e.armed[name] = &entry{timer: e.newTimer(delay, fire), nextAt: at}
	e.log.Debug("timer armed", zap.String("schedule", name), zap.Duration("delay", delay))
}

// Disarm cancels the timer for name. Asking to disarm an unknown name is
// not an error: a fire may already have consumed the timer.
func (e *Engine) Disarm(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if old, ok := e.armed[name]; ok {
		old.timer.Stop()
		delete(e.armed, name)
		e.log.Debug("timer disarmed", zap.String("schedule", name))
	}
}

// Remaining reports the time left until the armed due instant, clamped at
// zero. It never mutates timer state.
func (e *Engine) Remaining(name string) (time.Duration, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ent, ok := e.armed[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrNotFound, name)
	}
	left := ent.nextAt.Sub(e.now())
	if left < 0 {
		left = 0
	}
	return left, nil
}

// Armed reports whether a timer is currently tracked for name.
func (e *Engine) Armed(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.armed[name]
	return ok
}
