package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marinavibecoder/telegram-notification-bot/internal/domain"
	"github.com/marinavibecoder/telegram-notification-bot/internal/engine"
	"github.com/marinavibecoder/telegram-notification-bot/internal/store"
)

// Sender is the minimal interface the dispatcher needs to deliver a text
// message to the configured recipient. telegram.Router implements it.
type Sender interface {
	SendMessage(text string) error
}

// Recorder persists dispatch outcomes. history.Log implements it.
type Recorder interface {
	Record(d domain.Delivery) error
}

// Service coordinates the schedule store, the timing engine and the
// notification dispatch. A single mutex serializes every
// read-modify-persist-rearm cycle, whether command-driven or fire-driven,
// so a /change racing a fire can never lose an update or double-arm.
type Service struct {
	store  *store.FileStore
	engine *engine.Engine
	sender Sender
	rec    Recorder
	log    *zap.Logger
	now    func() time.Time
	mu     sync.Mutex
}

// New builds a Service on the runtime clock.
func New(st *store.FileStore, eng *engine.Engine, sender Sender, rec Recorder, log *zap.Logger) *Service {
	return NewWith(st, eng, sender, rec, log, time.Now)
}

// NewWith injects the clock. Tests use this seam.
func NewWith(st *store.FileStore, eng *engine.Engine, sender Sender, rec Recorder, log *zap.Logger, now func() time.Time) *Service {
	return &Service{store: st, engine: eng, sender: sender, rec: rec, log: log, now: now}
}

// Create adds a schedule due a full interval from now and arms its timer.
func (s *Service) Create(name string, mins int, message string) (domain.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.Get(name); err == nil {
		return domain.Schedule{}, fmt.Errorf("%w: %q", domain.ErrDuplicateName, name)
	}
	if mins < 1 {
		return domain.Schedule{}, fmt.Errorf("%w: %d minutes", domain.ErrInvalidInterval, mins)
	}

	now := s.now().UTC()
	sch := domain.Schedule{
		Name:        name,
		IntervalMin: mins,
		Message:     message,
		NextFireAt:  now.Add(time.Duration(mins) * time.Minute),
		CreatedAt:   now,
	}
	if err := s.store.Put(sch); err != nil {
		return domain.Schedule{}, err
	}
	s.arm(sch)
	s.log.Info("schedule created", zap.String("name", name), zap.Int("interval_min", mins))
	return sch, nil
}

// Change updates the interval and restarts the countdown from now.
// CreatedAt and fire history are preserved.
func (s *Service) Change(name string, mins int) (domain.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sch, err := s.store.Get(name)
	if err != nil {
		return domain.Schedule{}, err
	}
	if mins < 1 {
		return domain.Schedule{}, fmt.Errorf("%w: %d minutes", domain.ErrInvalidInterval, mins)
	}

	sch.IntervalMin = mins
	sch.NextFireAt = s.now().UTC().Add(time.Duration(mins) * time.Minute)
	if err := s.store.Put(sch); err != nil {
		return domain.Schedule{}, err
	}
	s.arm(sch)
	s.log.Info("schedule changed", zap.String("name", name), zap.Int("interval_min", mins))
	return sch, nil
}

// Refresh restarts the countdown from now without changing the interval.
func (s *Service) Refresh(name string) (domain.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sch, err := s.store.Get(name)
	if err != nil {
		return domain.Schedule{}, err
	}
	sch.NextFireAt = s.now().UTC().Add(sch.Interval())
	if err := s.store.Put(sch); err != nil {
		return domain.Schedule{}, err
	}
	s.arm(sch)
	s.log.Info("schedule refreshed", zap.String("name", name))
	return sch, nil
}

// Delete removes the schedule and cancels its timer.
func (s *Service) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Remove(name); err != nil {
		return err
	}
	s.engine.Disarm(name)
	s.log.Info("schedule deleted", zap.String("name", name))
	return nil
}

// Remaining reports the time left until the named schedule fires.
func (s *Service) Remaining(name string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sch, err := s.store.Get(name)
	if err != nil {
		return 0, err
	}
	if left, err := s.engine.Remaining(name); err == nil {
		return left, nil
	}
	// Timer momentarily consumed by an in-flight fire; fall back to state.
	left := sch.NextFireAt.Sub(s.now().UTC())
	if left < 0 {
		left = 0
	}
	return left, nil
}

// SendNow delivers the schedule's message immediately without touching its
// countdown. Transport errors are returned to the caller.
func (s *Service) SendNow(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sch, err := s.store.Get(name)
	if err != nil {
		return err
	}
	return s.deliver(sch, s.now().UTC())
}

// List returns all schedules in insertion order.
func (s *Service) List() []domain.Schedule {
	return s.store.List()
}

// RearmAll arms a timer for every stored schedule. Called once at startup.
// A schedule whose due time passed while the process was offline fires
// exactly once immediately and then resumes its regular cadence.
func (s *Service) RearmAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	for _, sch := range s.store.List() {
		if !sch.NextFireAt.After(now) {
			s.log.Info("catch-up fire", zap.String("name", sch.Name), zap.Time("was_due", sch.NextFireAt))
			s.fireLocked(sch.Name)
			continue
		}
		s.arm(sch)
	}
}

// Fire is the timer expiry callback for the named schedule.
func (s *Service) Fire(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fireLocked(name)
}

// fireLocked runs the dispatch sequence: re-check existence, best-effort
// send, advance the countdown, persist, re-arm. Caller holds s.mu.
func (s *Service) fireLocked(name string) {
	sch, err := s.store.Get(name)
	if err != nil {
		// Deleted while the fire was in flight; never resurrect its timer.
		s.log.Debug("fire for missing schedule ignored", zap.String("name", name))
		return
	}

	now := s.now().UTC()
	if err := s.deliver(sch, now); err != nil {
		// A missed send must not desynchronize future fires.
		s.log.Warn("notification send failed", zap.String("name", name), zap.Error(err))
	}

	sch.LastFireAt = &now
	sch.NextFireAt = now.Add(sch.Interval())
	if err := s.store.Put(sch); err != nil {
		s.log.Error("persist after fire failed", zap.String("name", name), zap.Error(err))
	}
	s.arm(sch)
}

// deliver sends the message and records the outcome in the delivery log.
func (s *Service) deliver(sch domain.Schedule, now time.Time) error {
	err := s.sender.SendMessage(sch.Message)

	d := domain.Delivery{
		ID:       uuid.NewString(),
		Schedule: sch.Name,
		Message:  sch.Message,
		SentAt:   now,
		OK:       err == nil,
	}
	if err != nil {
		d.Error = err.Error()
	}
	if s.rec != nil {
		if rerr := s.rec.Record(d); rerr != nil {
			s.log.Warn("record delivery failed", zap.String("name", sch.Name), zap.Error(rerr))
		}
	}
	return err
}

func (s *Service) arm(sch domain.Schedule) {
	name := sch.Name
	s.engine.Arm(name, sch.NextFireAt, func() { s.Fire(name) })
}
