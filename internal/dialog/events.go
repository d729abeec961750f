// Package dialog is the conversation core: it interprets incoming chat
// events against per-user conversational state, performs the associated
// store mutation, and emits outbound responses through a Responder.
package dialog

import (
	"context"

	"github.com/basket/tasktrack/internal/render"
)

// Identity is the platform-supplied user identity attached to every event.
type Identity struct {
	UserID      int64
	DisplayName string
	Handle      string
}

// CommandEvent is a slash command, e.g. /add.
type CommandEvent struct {
	Identity
	Command string // command name without the leading slash
	RawText string
}

// TextEvent is a plain text message with no command.
type TextEvent struct {
	Identity
	Text string
}

// ButtonEvent is an inline-button press echoing back its payload.
type ButtonEvent struct {
	Identity
	MessageID int    // message carrying the pressed button
	PressID   string // platform id used to acknowledge the press
	Payload   string
}

// Event is any inbound chat event the engine can route.
type Event interface {
	ident() Identity
}

func (e CommandEvent) ident() Identity { return e.Identity }
func (e TextEvent) ident() Identity    { return e.Identity }
func (e ButtonEvent) ident() Identity  { return e.Identity }

// Responder delivers the engine's outbound actions. The Telegram channel
// implements it; tests use a fake.
type Responder interface {
	// SendMessage sends a new message to the user's chat, optionally with
	// inline buttons.
	SendMessage(ctx context.Context, userID int64, text string, buttons render.Buttons) error
	// EditMessage replaces the text (and buttons) of an existing message.
	EditMessage(ctx context.Context, userID int64, messageID int, text string, buttons render.Buttons) error
	// AnswerButtonPress acknowledges a button press, optionally with a toast
	// or a modal alert.
	AnswerButtonPress(ctx context.Context, pressID, toast string, showAlert bool) error
}
