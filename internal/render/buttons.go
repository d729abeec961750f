// Package render turns store records into user-facing message text and
// inline-button layouts. It knows nothing about the dialogue engine or the
// transport; the channel maps Buttons onto the platform's markup.
package render

import "fmt"

// Callback payloads baked into rendered buttons. These exact strings are a
// wire contract with buttons already present in users' chat history; do not
// change them.
const (
	PayloadSkipDescription = "skip_description"
	PayloadCompletePrefix  = "complete_"
	PayloadDeletePrefix    = "delete_"
)

// Button is one inline button: visible label plus the opaque payload echoed
// back when pressed.
type Button struct {
	Text string
	Data string
}

// Buttons is a button grid, outer slice per row.
type Buttons [][]Button

// SkipDescriptionKeyboard is shown with the description prompt.
func SkipDescriptionKeyboard() Buttons {
	return Buttons{
		{{Text: "⏭ Skip Description", Data: PayloadSkipDescription}},
	}
}

// TaskActionsKeyboard is attached to each pending task card in /list.
func TaskActionsKeyboard(taskID int64) Buttons {
	return Buttons{
		{
			{Text: "✅ Complete", Data: fmt.Sprintf("%s%d", PayloadCompletePrefix, taskID)},
			{Text: "🗑 Delete", Data: fmt.Sprintf("%s%d", PayloadDeletePrefix, taskID)},
		},
	}
}
