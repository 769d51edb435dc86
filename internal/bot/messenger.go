package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"todo-planner/internal/repository"
)

// ownerKey is the settings slot that remembers the chat the planner belongs to.
const ownerKey = "owner_chat_id"

// Settings is the key-value store the owner chat id is kept in.
type Settings interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Sender is the part of the Telegram API the bot needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Messenger sends messages and delivers reminders to the owner chat.
type Messenger struct {
	api      Sender
	settings Settings
	log      *zap.Logger
}

func NewMessenger(api Sender, settings Settings, log *zap.Logger) *Messenger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Messenger{api: api, settings: settings, log: log.Named("messenger")}
}

// Owner returns the registered owner chat id.
func (m *Messenger) Owner(ctx context.Context) (int64, bool) {
	raw, err := m.settings.Get(ctx, ownerKey)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			m.log.Warn("owner_lookup_failed", zap.Error(err))
		}
		return 0, false
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		m.log.Warn("owner_value_invalid", zap.ByteString("value", raw))
		return 0, false
	}
	return id, true
}

func (m *Messenger) SetOwner(ctx context.Context, chatID int64) error {
	return m.settings.Set(ctx, ownerKey, []byte(strconv.FormatInt(chatID, 10)))
}

func (m *Messenger) ClearOwner(ctx context.Context) error {
	return m.settings.Delete(ctx, ownerKey)
}

// Ready reports whether a chat is registered to receive reminders.
func (m *Messenger) Ready(ctx context.Context) bool {
	_, ok := m.Owner(ctx)
	return ok
}

// Deliver sends a reminder to the owner chat.
func (m *Messenger) Deliver(ctx context.Context, title, body string) error {
	chatID, ok := m.Owner(ctx)
	if !ok {
		return fmt.Errorf("no owner chat registered")
	}
	text := fmt.Sprintf("⏰ <b>%s</b>\n%s", html.EscapeString(title), html.EscapeString(body))
	return m.SendText(chatID, text, nil)
}

// SendText sends an HTML message with an optional reply markup.
func (m *Messenger) SendText(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := m.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// Ack answers a callback query so the client stops its spinner.
func (m *Messenger) Ack(callbackID, text string) {
	if _, err := m.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		m.log.Warn("callback_ack_failed", zap.Error(err))
	}
}
