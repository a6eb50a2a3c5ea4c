package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// Client sends plain-text messages to the configured recipient. It
// satisfies scheduler.Sender.
type Client struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	limiter *rate.Limiter
	timeout time.Duration
}

// NewClient wraps the bot API with a per-chat rate limit (Telegram allows
// roughly one message per second per chat) and a bounded send timeout.
func NewClient(bot *tgbotapi.BotAPI, chatID int64, timeout time.Duration) *Client {
	return &Client{
		bot:     bot,
		chatID:  chatID,
		limiter: rate.NewLimiter(rate.Every(time.Second), 5),
		timeout: timeout,
	}
}

// SendMessage delivers text to the configured recipient.
func (c *Client) SendMessage(text string) error {
	return c.sendTo(c.chatID, text)
}

func (c *Client) sendTo(chatID int64, text string) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := c.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
