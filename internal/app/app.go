package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/marinavibecoder/telegram-notification-bot/internal/command"
	"github.com/marinavibecoder/telegram-notification-bot/internal/config"
	"github.com/marinavibecoder/telegram-notification-bot/internal/engine"
	"github.com/marinavibecoder/telegram-notification-bot/internal/history"
	"github.com/marinavibecoder/telegram-notification-bot/internal/scheduler"
	"github.com/marinavibecoder/telegram-notification-bot/internal/store"
	"github.com/marinavibecoder/telegram-notification-bot/internal/telegram"
)

const startupText = "🚀 Bot started. Your schedules are re-armed; /start for commands."

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	hist    *history.Log
	router  *telegram.Router
	svc     *scheduler.Service
	client  *telegram.Client
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	// The HTTP client timeout bounds every Telegram API call, so neither a
	// send nor a reply can block dispatch indefinitely.
	httpClient := &http.Client{Timeout: cfg.SendTimeout + 30*time.Second}
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, httpSrv: srv}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting notification dispatcher",
		zap.String("state", a.cfg.StatePath),
		zap.String("http", a.cfg.HTTPAddr),
	)

	// Refuse to run over unreadable state; a corrupt file is never overwritten.
	st, err := store.Open(a.cfg.StatePath)
	if err != nil {
		a.log.Error("open schedule store failed", zap.Error(err))
		return err
	}
	a.log.Info("schedule store ready", zap.Int("schedules", st.Len()))

	hist, err := history.Open(ctx, a.cfg.HistoryPath)
	if err != nil {
		a.log.Error("open delivery log failed", zap.Error(err))
		return err
	}
	a.hist = hist

	a.client = telegram.NewClient(a.bot, a.cfg.ChatID, a.cfg.SendTimeout)
	eng := engine.New(a.log)
	a.svc = scheduler.New(st, eng, a.client, hist, a.log)
	interp := command.New(a.svc, hist, a.log)
	a.router = telegram.NewRouter(a.client, interp, a.log, a.cfg.ChatID)

	// Re-arm timers from persisted state; anything past due fires once now.
	a.svc.RearmAll()

	if err := a.client.SendMessage(startupText); err != nil {
		a.log.Warn("startup announcement failed", zap.Error(err))
	}

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			a.shutdown()
			return nil

		case upd := <-updCh:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}

func (a *App) shutdown() {
	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.httpSrv.Shutdown(shCtx); err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}
	if a.hist != nil {
		_ = a.hist.Close()
	}
	// Schedule state needs no final flush: every mutation saved on the spot.
}
