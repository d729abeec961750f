// Package channels connects the dialogue engine to messaging platforms.
// Telegram is the only channel today; the interface keeps the engine
// ignorant of which platform delivered an event.
package channels

import "context"

// Channel is one messaging platform integration.
type Channel interface {
	// Name identifies the channel, e.g. "telegram".
	Name() string

	// Start blocks consuming platform updates until the context is
	// cancelled or a fatal error occurs.
	Start(ctx context.Context) error
}
