package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/marinavibecoder/telegram-notification-bot/internal/command"
)

// Router feeds incoming Telegram updates to the command interpreter and
// replies with whatever text it produces.
type Router struct {
	client *Client
	interp *command.Interpreter
	log    *zap.Logger
	chatID int64
}

// NewRouter creates the update router for the single configured chat.
func NewRouter(client *Client, interp *command.Interpreter, log *zap.Logger, chatID int64) *Router {
	return &Router{client: client, interp: interp, log: log, chatID: chatID}
}

// HandleUpdate processes one update. Non-message updates and messages from
// other chats are ignored — this bot serves exactly one recipient.
func (r *Router) HandleUpdate(_ context.Context, upd tgbotapi.Update) {
	if upd.Message == nil {
		return
	}
	msg := upd.Message
	if msg.Chat.ID != r.chatID {
		r.log.Debug("ignoring message from foreign chat", zap.Int64("chat_id", msg.Chat.ID))
		return
	}

	resp := r.interp.Handle(strings.TrimSpace(msg.Text))
	if err := r.client.sendTo(msg.Chat.ID, resp); err != nil {
		r.log.Error("reply failed", zap.Error(err))
	}
}
