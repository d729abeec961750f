package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/basket/tasktrack/internal/render"
	"github.com/basket/tasktrack/internal/store"
	"github.com/basket/tasktrack/internal/validate"
)

// fieldTitle is the accumulated-fields key holding the accepted title while
// the flow waits for a description.
const fieldTitle = "title"

func (e *Engine) handleStart(ctx context.Context, logger *slog.Logger, ev CommandEvent) error {
	e.states.Clear(ev.UserID)

	firstName := ev.DisplayName
	if firstName == "" {
		firstName = "User"
	}
	created, err := e.store.CreateUserIfAbsent(ctx, ev.UserID, firstName, ev.Handle)
	if err != nil {
		return fmt.Errorf("register user: %w", err)
	}

	text := render.WelcomeBack(firstName)
	if created {
		text = render.WelcomeNew(firstName)
		logger.Info("new user registered", "first_name", firstName)
	}
	return e.resp.SendMessage(ctx, ev.UserID, text, nil)
}

func (e *Engine) handleAdd(ctx context.Context, logger *slog.Logger, ev CommandEvent) error {
	// Unconditional overwrite: an in-flight flow is silently discarded.
	e.states.SetStep(ev.UserID, StepAwaitingTitle, nil)
	logger.Info("task creation flow started")
	return e.resp.SendMessage(ctx, ev.UserID, render.TitlePrompt(), nil)
}

func (e *Engine) handleCancel(ctx context.Context, logger *slog.Logger, ev CommandEvent) error {
	state, ok := e.states.Get(ev.UserID)
	if !ok || state.Step == StepIdle {
		return e.resp.SendMessage(ctx, ev.UserID, render.CancelNothing(), nil)
	}
	e.states.Clear(ev.UserID)
	logger.Info("flow cancelled", "step", state.Step.String())
	return e.resp.SendMessage(ctx, ev.UserID, render.Cancelled(), nil)
}

func (e *Engine) handleList(ctx context.Context, logger *slog.Logger, ev CommandEvent) error {
	e.states.Clear(ev.UserID)

	tasks, err := e.store.ListTasks(ctx, ev.UserID, store.TaskStatusPending)
	if err != nil {
		return fmt.Errorf("list pending tasks: %w", err)
	}
	if len(tasks) == 0 {
		return e.resp.SendMessage(ctx, ev.UserID, render.PendingEmpty(), nil)
	}

	if err := e.resp.SendMessage(ctx, ev.UserID, render.PendingHeader(len(tasks)), nil); err != nil {
		return err
	}
	// One message per task so each carries its own action buttons.
	for i := range tasks {
		task := &tasks[i]
		if err := e.resp.SendMessage(ctx, ev.UserID, render.PendingCard(task), render.TaskActionsKeyboard(task.ID)); err != nil {
			return err
		}
	}
	logger.Info("listed pending tasks", "count", len(tasks))
	return nil
}

func (e *Engine) handleCompleted(ctx context.Context, logger *slog.Logger, ev CommandEvent) error {
	e.states.Clear(ev.UserID)

	tasks, err := e.store.ListTasks(ctx, ev.UserID, store.TaskStatusCompleted)
	if err != nil {
		return fmt.Errorf("list completed tasks: %w", err)
	}
	if len(tasks) == 0 {
		return e.resp.SendMessage(ctx, ev.UserID, render.CompletedEmpty(), nil)
	}
	logger.Info("listed completed tasks", "count", len(tasks))
	return e.resp.SendMessage(ctx, ev.UserID, render.CompletedList(tasks), nil)
}

func (e *Engine) handleStats(ctx context.Context, logger *slog.Logger, ev CommandEvent) error {
	e.states.Clear(ev.UserID)

	user, err := e.store.GetUser(ctx, ev.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return e.resp.SendMessage(ctx, ev.UserID, render.StatsNoUser(), nil)
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	stats, err := e.store.Stats(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("load stats: %w", err)
	}
	logger.Info("stats viewed", "total", stats.Total, "completed", stats.Completed)
	return e.resp.SendMessage(ctx, ev.UserID, render.StatsMessage(user, stats), nil)
}

func (e *Engine) handleHelp(ctx context.Context, _ *slog.Logger, ev CommandEvent) error {
	e.states.Clear(ev.UserID)
	return e.resp.SendMessage(ctx, ev.UserID, render.Help(), nil)
}

// handleText is the state tier: plain text is meaningful only inside a
// flow. In Idle it is deliberately a no-op, not an error.
func (e *Engine) handleText(ctx context.Context, logger *slog.Logger, ev TextEvent) error {
	state, ok := e.states.Get(ev.UserID)
	if !ok {
		logger.Debug("text outside any flow, ignored")
		return nil
	}

	switch state.Step {
	case StepAwaitingTitle:
		return e.handleTitleInput(ctx, logger, ev)
	case StepAwaitingDescription:
		return e.handleDescriptionInput(ctx, logger, ev, state)
	default:
		logger.Debug("text outside any flow, ignored")
		return nil
	}
}

func (e *Engine) handleTitleInput(ctx context.Context, logger *slog.Logger, ev TextEvent) error {
	if err := validate.Title(ev.Text); err != nil {
		// Re-prompt and stay on this step; the user resubmits.
		text := render.EmptyTitleError()
		if errors.Is(err, validate.ErrTitleTooLong) {
			text = render.TitleTooLongError(len([]rune(ev.Text)))
		}
		logger.Info("title rejected", "reason", err)
		return e.resp.SendMessage(ctx, ev.UserID, text, nil)
	}

	title := strings.TrimSpace(ev.Text)
	e.states.SetStep(ev.UserID, StepAwaitingDescription, map[string]string{fieldTitle: title})
	logger.Info("title accepted")
	return e.resp.SendMessage(ctx, ev.UserID, render.DescriptionPrompt(), render.SkipDescriptionKeyboard())
}

func (e *Engine) handleDescriptionInput(ctx context.Context, logger *slog.Logger, ev TextEvent, state State) error {
	if err := validate.Description(ev.Text); err != nil {
		logger.Info("description rejected", "reason", err)
		return e.resp.SendMessage(ctx, ev.UserID, render.DescriptionTooLongError(len([]rune(ev.Text))), nil)
	}

	title, ok := state.Fields[fieldTitle]
	if !ok || title == "" {
		// Should not happen: the flow cannot reach this step without an
		// accepted title. Reset rather than create a broken task.
		e.states.Clear(ev.UserID)
		return fmt.Errorf("awaiting_description state without a title field")
	}

	task, err := e.createTask(ctx, ev.Identity, title, strings.TrimSpace(ev.Text))
	if err != nil {
		// State is intentionally left intact: the user can resend the
		// description once the store recovers.
		return err
	}
	e.states.Clear(ev.UserID)
	logger.Info("task created", "task_id", task.ID)
	return e.resp.SendMessage(ctx, ev.UserID, render.TaskCreated(task), nil)
}

// createTask registers the user if this id has never been seen (a user who
// skipped /start must not trip the tasks foreign key) and inserts the task.
func (e *Engine) createTask(ctx context.Context, id Identity, title, description string) (*store.Task, error) {
	firstName := id.DisplayName
	if firstName == "" {
		firstName = "User"
	}
	if _, err := e.store.CreateUserIfAbsent(ctx, id.UserID, firstName, id.Handle); err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	task, err := e.store.CreateTask(ctx, id.UserID, title, description)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	e.metrics.TasksCreated.Add(ctx, 1)
	return task, nil
}
