package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/basket/tasktrack/internal/store"
	"github.com/basket/tasktrack/internal/validate"
)

// Messages are rendered as Telegram HTML. User-supplied text is escaped
// before being embedded in markup.

const timeLayout = "2006-01-02 15:04"
const dateLayout = "2006-01-02"

// WelcomeNew greets a user registered by this /start.
func WelcomeNew(firstName string) string {
	return fmt.Sprintf(
		"👋 Hello, %s! Welcome to Task Tracker Bot!\n\n"+
			"I'll help you manage your tasks efficiently.\n\n"+
			"Available commands:\n"+
			"/add - Add a new task\n"+
			"/list - View your pending tasks\n"+
			"/completed - View completed tasks\n"+
			"/cancel - Cancel current operation\n\n"+
			"Let's get started! Use /add to create your first task.",
		html.EscapeString(firstName))
}

// WelcomeBack greets a returning user.
func WelcomeBack(firstName string) string {
	return fmt.Sprintf(
		"👋 Welcome back, %s!\n\n"+
			"Available commands:\n"+
			"/add - Add a new task\n"+
			"/list - View your pending tasks\n"+
			"/completed - View completed tasks\n"+
			"/cancel - Cancel current operation",
		html.EscapeString(firstName))
}

// TitlePrompt opens the task-creation flow.
func TitlePrompt() string {
	return fmt.Sprintf(
		"📝 Let's create a new task!\n\n"+
			"Please enter the task title (max %d characters):\n\n"+
			"Use /cancel to abort.",
		validate.MaxTitleLen)
}

// DescriptionPrompt follows an accepted title.
func DescriptionPrompt() string {
	return fmt.Sprintf(
		"📋 Great! Now enter a description for your task (max %d characters).\n\n"+
			"Or click Skip if you don't want to add a description:",
		validate.MaxDescriptionLen)
}

// TaskCreated confirms creation. The description, when present, is shown
// truncated to 100 characters as in the list views.
func TaskCreated(task *store.Task) string {
	var b strings.Builder
	b.WriteString("✅ Task created successfully!\n\n")
	fmt.Fprintf(&b, "📝 <b>%s</b>\n", html.EscapeString(task.Title))
	if task.Description != "" {
		fmt.Fprintf(&b, "📋 %s\n", html.EscapeString(truncate(task.Description, 100)))
	}
	b.WriteString("\nUse /list to view all your tasks.")
	return b.String()
}

// CancelNothing replies to /cancel outside any flow.
func CancelNothing() string {
	return "✅ No active operation to cancel.\n\n" +
		"Use /add to create a task or /list to view your tasks."
}

// Cancelled confirms an aborted flow.
func Cancelled() string {
	return "❌ Operation cancelled.\n\n" +
		"Use /add to create a task or /list to view your tasks."
}

// PendingEmpty is the /list empty state.
func PendingEmpty() string {
	return "📝 You have no pending tasks!\n\n" +
		"Use /add to create your first task."
}

// PendingHeader precedes the per-task cards.
func PendingHeader(count int) string {
	return fmt.Sprintf("📋 <b>Your Pending Tasks (%d):</b>", count)
}

// PendingCard renders one pending task; the channel attaches the
// Complete/Delete keyboard to it.
func PendingCard(task *store.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📝 <b>%s</b>\n", html.EscapeString(task.Title))
	if task.Description != "" {
		fmt.Fprintf(&b, "📋 %s\n", html.EscapeString(truncate(task.Description, 150)))
	}
	fmt.Fprintf(&b, "🕐 Created: %s", task.CreatedAt.Format(timeLayout))
	return b.String()
}

// CompletedEmpty is the /completed empty state.
func CompletedEmpty() string {
	return "✅ You haven't completed any tasks yet!\n\n" +
		"Use /list to view your pending tasks."
}

// CompletedList renders all completed tasks as one aggregated message.
func CompletedList(tasks []store.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ <b>Completed Tasks (%d):</b>\n\n", len(tasks))
	for i, task := range tasks {
		fmt.Fprintf(&b, "%d. <b>%s</b>\n", i+1, html.EscapeString(task.Title))
		if task.Description != "" {
			fmt.Fprintf(&b, "   📋 %s\n", html.EscapeString(truncate(task.Description, 100)))
		}
		if task.CompletedAt != nil {
			fmt.Fprintf(&b, "   ✅ Completed: %s\n", task.CompletedAt.Format(timeLayout))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// CompletedCard is the in-place rewrite of a task card after its Complete
// button is pressed.
func CompletedCard(task *store.Task) string {
	var b strings.Builder
	b.WriteString("✅ <b>COMPLETED</b>\n\n")
	fmt.Fprintf(&b, "📝 <s>%s</s>\n", html.EscapeString(task.Title))
	if task.Description != "" {
		fmt.Fprintf(&b, "📋 <s>%s</s>\n", html.EscapeString(truncate(task.Description, 150)))
	}
	if task.CompletedAt != nil {
		fmt.Fprintf(&b, "✅ Completed: %s", task.CompletedAt.Format(timeLayout))
	}
	return b.String()
}

// DeletedCard is the in-place rewrite after the Delete button.
func DeletedCard(title string) string {
	return fmt.Sprintf(
		"🗑 <b>DELETED</b>\n\n"+
			"📝 <s>%s</s>\n\n"+
			"This task has been permanently removed.",
		html.EscapeString(title))
}

// StatsMessage renders the /stats overview. The completion rate is derived
// here from the counts; it is display-only and never stored.
func StatsMessage(user *store.User, stats *store.Stats) string {
	rate := 0.0
	if stats.Total > 0 {
		rate = float64(stats.Completed) / float64(stats.Total) * 100
	}

	var b strings.Builder
	b.WriteString("📊 <b>Your Statistics</b>\n\n")
	fmt.Fprintf(&b, "👤 User: %s\n", html.EscapeString(user.FirstName))
	fmt.Fprintf(&b, "📅 Member since: %s\n\n", user.CreatedAt.Format(dateLayout))
	b.WriteString("📝 <b>Tasks Overview:</b>\n")
	fmt.Fprintf(&b, "   • Total tasks: %d\n", stats.Total)
	fmt.Fprintf(&b, "   • Pending: %d ⏳\n", stats.Pending)
	fmt.Fprintf(&b, "   • Completed: %d ✅\n", stats.Completed)
	fmt.Fprintf(&b, "   • Completion rate: %.1f%%\n\n", rate)
	if recent := stats.MostRecentCompleted; recent != nil && recent.CompletedAt != nil {
		fmt.Fprintf(&b, "🎯 Last completed: <b>%s</b>\n", html.EscapeString(recent.Title))
		fmt.Fprintf(&b, "   (%s)\n", recent.CompletedAt.Format(timeLayout))
	}
	return b.String()
}

// StatsNoUser replies to /stats from an id with no user row.
func StatsNoUser() string {
	return "❌ User not found. Please use /start first."
}

// Help is the static /help text.
func Help() string {
	return "📚 <b>Task Tracker Bot - Help</b>\n\n" +
		"<b>Available Commands:</b>\n\n" +
		"🆕 <b>Creating Tasks:</b>\n" +
		"/add - Create a new task\n" +
		"   • You'll be asked for a title (required)\n" +
		"   • Then for a description (optional)\n" +
		"   • Use /cancel anytime to abort\n\n" +
		"📋 <b>Viewing Tasks:</b>\n" +
		"/list - View all pending tasks\n" +
		"/completed - View completed tasks\n" +
		"/stats - View your statistics\n\n" +
		"⚙️ <b>Task Actions:</b>\n" +
		"   • ✅ Complete - Mark task as done\n" +
		"   • 🗑 Delete - Remove task permanently\n\n" +
		"🛠 <b>Other Commands:</b>\n" +
		"/cancel - Cancel current operation\n" +
		"/help - Show this help message\n" +
		"/start - Restart the bot\n\n" +
		"💡 <b>Tips:</b>\n" +
		"   • Tasks are saved automatically\n" +
		"   • Completed tasks are kept for your records\n" +
		"   • Each task can have a title up to 200 characters\n" +
		"   • Descriptions can be up to 1000 characters"
}

// Validation error texts. These re-prompt without changing the dialogue
// step.

func EmptyTitleError() string {
	return "❌ Title cannot be empty. Please enter a task title."
}

func TitleTooLongError(length int) string {
	return fmt.Sprintf("❌ Title is too long (%d characters). Maximum is %d characters.", length, validate.MaxTitleLen)
}

func DescriptionTooLongError(length int) string {
	return fmt.Sprintf("❌ Description is too long (%d characters). Maximum is %d characters.", length, validate.MaxDescriptionLen)
}

// Generic failure texts.

func GenericError() string {
	return "❌ An unexpected error occurred. Please try again or contact support."
}

func GenericButtonError() string {
	return "❌ An error occurred. Please try again."
}

func TaskNotFoundAlert() string {
	return "❌ Task not found!"
}

func TaskCompletedToast() string {
	return "✅ Task marked as completed!"
}

func TaskDeletedToast() string {
	return "🗑 Task deleted!"
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
