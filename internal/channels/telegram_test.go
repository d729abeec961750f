package channels

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/basket/tasktrack/internal/dialog"
	"github.com/basket/tasktrack/internal/render"
)

// Compile-time checks: the Telegram channel is both a Channel and the
// engine's Responder.
var (
	_ Channel          = (*TelegramChannel)(nil)
	_ dialog.Responder = (*TelegramChannel)(nil)
)

func TestTelegramChannel_Name(t *testing.T) {
	ch := NewTelegramChannel("fake-token", 0, nil)
	if got := ch.Name(); got != "telegram" {
		t.Fatalf("Name() = %q, want %q", got, "telegram")
	}
}

func TestNewTelegramChannel_DefaultsPollTimeout(t *testing.T) {
	ch := NewTelegramChannel("fake-token", -1, nil)
	if ch.pollTimeout != 60 {
		t.Fatalf("expected default poll timeout 60, got %d", ch.pollTimeout)
	}
}

func makeCommandUpdate(text string) *tgbotapi.Update {
	return &tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: 42, FirstName: "Ann", UserName: "ann_dev"},
			Chat: &tgbotapi.Chat{ID: 42},
			Text: text,
			Entities: []tgbotapi.MessageEntity{
				{Type: "bot_command", Offset: 0, Length: len("/add")},
			},
		},
	}
}

func TestToEvent_Command(t *testing.T) {
	ev, ok := toEvent(makeCommandUpdate("/add"))
	if !ok {
		t.Fatal("expected an event")
	}
	cmd, isCmd := ev.(dialog.CommandEvent)
	if !isCmd {
		t.Fatalf("expected CommandEvent, got %T", ev)
	}
	if cmd.Command != "add" || cmd.RawText != "/add" {
		t.Fatalf("wrong command event: %+v", cmd)
	}
	if cmd.UserID != 42 || cmd.DisplayName != "Ann" || cmd.Handle != "ann_dev" {
		t.Fatalf("wrong identity: %+v", cmd.Identity)
	}
}

func TestToEvent_PlainText(t *testing.T) {
	update := &tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: 42, FirstName: "Ann"},
			Chat: &tgbotapi.Chat{ID: 42},
			Text: "buy milk",
		},
	}

	ev, ok := toEvent(update)
	if !ok {
		t.Fatal("expected an event")
	}
	txt, isText := ev.(dialog.TextEvent)
	if !isText {
		t.Fatalf("expected TextEvent, got %T", ev)
	}
	if txt.Text != "buy milk" || txt.UserID != 42 {
		t.Fatalf("wrong text event: %+v", txt)
	}
}

func TestToEvent_CallbackQuery(t *testing.T) {
	update := &tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "press-9",
			From: &tgbotapi.User{ID: 42, FirstName: "Ann"},
			Message: &tgbotapi.Message{
				MessageID: 17,
				Chat:      &tgbotapi.Chat{ID: 42},
			},
			Data: "complete_3",
		},
	}

	ev, ok := toEvent(update)
	if !ok {
		t.Fatal("expected an event")
	}
	btn, isBtn := ev.(dialog.ButtonEvent)
	if !isBtn {
		t.Fatalf("expected ButtonEvent, got %T", ev)
	}
	if btn.Payload != "complete_3" || btn.MessageID != 17 || btn.PressID != "press-9" {
		t.Fatalf("wrong button event: %+v", btn)
	}
}

func TestToEvent_DropsNonTextUpdates(t *testing.T) {
	// A sticker arrives as a message with empty text.
	update := &tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: 42},
			Chat: &tgbotapi.Chat{ID: 42},
		},
	}
	if _, ok := toEvent(update); ok {
		t.Fatal("empty-text message should be dropped")
	}

	if _, ok := toEvent(&tgbotapi.Update{}); ok {
		t.Fatal("empty update should be dropped")
	}
}

func TestToMarkup(t *testing.T) {
	if toMarkup(nil) != nil {
		t.Fatal("nil buttons must map to nil markup")
	}

	markup := toMarkup(render.TaskActionsKeyboard(7))
	if markup == nil {
		t.Fatal("expected markup")
	}
	rows := markup.InlineKeyboard
	if len(rows) != 1 || len(rows[0]) != 2 {
		t.Fatalf("wrong keyboard shape: %+v", rows)
	}
	if rows[0][0].CallbackData == nil || *rows[0][0].CallbackData != "complete_7" {
		t.Fatalf("wrong callback data: %+v", rows[0][0])
	}
	if rows[0][1].CallbackData == nil || *rows[0][1].CallbackData != "delete_7" {
		t.Fatalf("wrong callback data: %+v", rows[0][1])
	}
}
