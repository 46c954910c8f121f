package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vozlegal/intake/internal/errors"
	"github.com/vozlegal/intake/internal/service"
	"github.com/vozlegal/intake/internal/session"
)

const defaultUpdateTimeout = 30

// TelegramAdapter runs intake conversations over Telegram long-polling.
// Each chat maps to one intake session; the mapping lives only in
// memory, so a restart starts conversations fresh.
type TelegramAdapter struct {
	token         string
	updateTimeout int
	intake        *service.Intake
	bot           *tgbotapi.BotAPI
	updates       tgbotapi.UpdatesChannel

	mu       sync.Mutex
	sessions map[int64]string
}

func NewTelegramAdapter(token string, intake *service.Intake, updateTimeout int) *TelegramAdapter {
	if updateTimeout <= 0 {
		updateTimeout = defaultUpdateTimeout
	}
	return &TelegramAdapter{
		token:         token,
		updateTimeout: updateTimeout,
		intake:        intake,
		sessions:      make(map[int64]string),
	}
}

func (t *TelegramAdapter) Name() string {
	return "telegram"
}

func (t *TelegramAdapter) Start(ctx context.Context) error {
	var err error
	t.bot, err = tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return errors.Wrap(err, "failed to init telegram bot")
	}

	slog.Info("Telegram adapter started", "user", t.bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = t.updateTimeout

	t.updates = t.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case update := <-t.updates:
				t.handleUpdate(ctx, update)
			}
		}
	}()

	return nil
}

func (t *TelegramAdapter) Stop(ctx context.Context) error {
	if t.bot != nil {
		t.bot.StopReceivingUpdates()
	}
	return nil
}

func (t *TelegramAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	msg := update.Message
	chatID := msg.Chat.ID

	if msg.Text == "/end" {
		t.endConversation(ctx, chatID)
		t.send(chatID, "Your conversation has ended. Message us anytime to start a new one.")
		return
	}

	result, err := t.intake.HandleTurn(ctx, service.TurnRequest{
		SessionID: t.sessionFor(chatID),
		UserID:    fmt.Sprintf("telegram:%d", msg.From.ID),
		Channel:   session.ChannelChat,
		Input:     msg.Text,
	})
	if errors.IsCategory(err, errors.ErrNotFound) {
		// Session expired underneath us; restart the conversation.
		t.forget(chatID)
		result, err = t.intake.HandleTurn(ctx, service.TurnRequest{
			UserID:  fmt.Sprintf("telegram:%d", msg.From.ID),
			Channel: session.ChannelChat,
			Input:   msg.Text,
		})
	}
	if err != nil {
		slog.Error("Telegram turn failed", "chat_id", chatID, "error", err)
		return
	}

	t.remember(chatID, result.Session.ID)
	t.send(chatID, result.Reply)
}

func (t *TelegramAdapter) send(chatID int64, content string) {
	if content == "" {
		return
	}
	if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, content)); err != nil {
		slog.Error("Failed to send telegram message", "chat_id", chatID, "error", err)
	}
}

func (t *TelegramAdapter) sessionFor(chatID int64) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessions[chatID]
}

func (t *TelegramAdapter) remember(chatID int64, sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[chatID] = sessionID
}

func (t *TelegramAdapter) forget(chatID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, chatID)
}

func (t *TelegramAdapter) endConversation(ctx context.Context, chatID int64) {
	t.mu.Lock()
	sessionID, ok := t.sessions[chatID]
	delete(t.sessions, chatID)
	t.mu.Unlock()

	if ok {
		t.intake.EndSession(ctx, sessionID)
	}
}

func (t *TelegramAdapter) Health(ctx context.Context) error {
	if t.bot == nil {
		return errors.Transient("telegram bot not initialized")
	}

	if _, err := t.bot.GetMe(); err != nil {
		return errors.Transient("telegram connection failed: " + err.Error())
	}

	return nil
}
