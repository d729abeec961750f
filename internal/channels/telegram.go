package channels

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/basket/tasktrack/internal/dialog"
	"github.com/basket/tasktrack/internal/render"
	"github.com/basket/tasktrack/internal/shared"
)

// TelegramChannel is the platform listener: it consumes long-poll updates,
// converts them into dialogue events, and implements the engine's Responder
// on the way back out. The bot serves private chats, so the chat id and the
// platform user id coincide.
type TelegramChannel struct {
	token       string
	pollTimeout int
	engine      *dialog.Engine
	logger      *slog.Logger
	bot         *tgbotapi.BotAPI
}

// NewTelegramChannel creates a new Telegram channel. The engine's Responder
// must be wired to this value (see SetEngine) before Start.
func NewTelegramChannel(token string, pollTimeoutSeconds int, logger *slog.Logger) *TelegramChannel {
	if pollTimeoutSeconds <= 0 {
		pollTimeoutSeconds = 60
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TelegramChannel{
		token:       token,
		pollTimeout: pollTimeoutSeconds,
		logger:      logger,
	}
}

// SetEngine attaches the dialogue engine. Split from the constructor because
// the engine itself needs this channel as its Responder.
func (t *TelegramChannel) SetEngine(engine *dialog.Engine) {
	t.engine = engine
}

func (t *TelegramChannel) Name() string {
	return "telegram"
}

func (t *TelegramChannel) Start(ctx context.Context) error {
	var err error
	t.bot, err = tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return fmt.Errorf("telegram init failed: %w", err)
	}

	t.logger.Info("telegram bot started", "user", t.bot.Self.UserName)

	// Reconnection loop with exponential backoff.
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		u := tgbotapi.NewUpdate(0)
		u.Timeout = t.pollTimeout
		updates := t.bot.GetUpdatesChan(u)

		pollErr := t.pollUpdates(ctx, updates)

		// Always clean up the old polling goroutine before reconnecting.
		t.bot.StopReceivingUpdates()

		if pollErr != nil {
			t.logger.Warn("telegram poll disconnected, reconnecting", "error", pollErr, "backoff", backoff)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}

		// pollUpdates returned nil means ctx was cancelled.
		return nil
	}
}

// pollUpdates reads from the update channel until ctx is done, the channel
// closes, or no updates arrive within 2.5x the long-poll timeout (stall
// detection: the library blocks rather than closing the channel on a dead
// connection). Returns nil on context cancellation, or an error to trigger
// reconnection.
func (t *TelegramChannel) pollUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) error {
	stallTimeout := time.Duration(t.pollTimeout) * time.Second * 5 / 2

	timer := time.NewTimer(stallTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return fmt.Errorf("update channel closed")
			}

			// Reset stall timer on every received update (including empty
			// long-poll returns).
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(stallTimeout)

			if ev, ok := toEvent(&update); ok {
				// Cross-user concurrency is wanted here; the engine
				// serializes per user internally.
				evCtx := shared.WithTraceID(ctx, shared.NewTraceID())
				go t.engine.Handle(evCtx, ev)
			}
		case <-timer.C:
			return fmt.Errorf("no updates received for %v (possible disconnect)", stallTimeout)
		}
	}
}

// toEvent maps a Telegram update onto a dialogue event. Non-text updates
// (stickers, photos, channel posts) are dropped.
func toEvent(update *tgbotapi.Update) (dialog.Event, bool) {
	if msg := update.Message; msg != nil && msg.From != nil && msg.Text != "" {
		id := dialog.Identity{
			UserID:      msg.From.ID,
			DisplayName: msg.From.FirstName,
			Handle:      msg.From.UserName,
		}
		if msg.IsCommand() {
			return dialog.CommandEvent{
				Identity: id,
				Command:  msg.Command(),
				RawText:  msg.Text,
			}, true
		}
		return dialog.TextEvent{Identity: id, Text: msg.Text}, true
	}

	if query := update.CallbackQuery; query != nil && query.Message != nil {
		return dialog.ButtonEvent{
			Identity: dialog.Identity{
				UserID:      query.From.ID,
				DisplayName: query.From.FirstName,
				Handle:      query.From.UserName,
			},
			MessageID: query.Message.MessageID,
			PressID:   query.ID,
			Payload:   query.Data,
		}, true
	}
	return nil, false
}

// SendMessage implements dialog.Responder.
func (t *TelegramChannel) SendMessage(_ context.Context, userID int64, text string, buttons render.Buttons) error {
	msg := tgbotapi.NewMessage(userID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup := toMarkup(buttons); markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// EditMessage implements dialog.Responder.
func (t *TelegramChannel) EditMessage(_ context.Context, userID int64, messageID int, text string, buttons render.Buttons) error {
	var err error
	if markup := toMarkup(buttons); markup != nil {
		edit := tgbotapi.NewEditMessageTextAndMarkup(userID, messageID, text, *markup)
		edit.ParseMode = tgbotapi.ModeHTML
		_, err = t.bot.Send(edit)
	} else {
		edit := tgbotapi.NewEditMessageText(userID, messageID, text)
		edit.ParseMode = tgbotapi.ModeHTML
		_, err = t.bot.Send(edit)
	}
	if err != nil {
		return fmt.Errorf("edit message %d: %w", messageID, err)
	}
	return nil
}

// AnswerButtonPress implements dialog.Responder.
func (t *TelegramChannel) AnswerButtonPress(_ context.Context, pressID, toast string, showAlert bool) error {
	answer := tgbotapi.NewCallback(pressID, toast)
	if showAlert {
		answer = tgbotapi.NewCallbackWithAlert(pressID, toast)
	}
	if _, err := t.bot.Request(answer); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}

func toMarkup(buttons render.Buttons) *tgbotapi.InlineKeyboardMarkup {
	if len(buttons) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, row := range buttons {
		cells := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			cells = append(cells, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, cells)
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}
