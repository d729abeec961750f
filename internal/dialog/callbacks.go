package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	otelx "github.com/basket/tasktrack/internal/otel"
	"github.com/basket/tasktrack/internal/render"
	"github.com/basket/tasktrack/internal/store"
	"go.opentelemetry.io/otel/trace"
)

// handleSkipDescription finishes the creation flow with no description. The
// prompt message that carried the Skip button is edited into the
// confirmation rather than sending a new message.
func (e *Engine) handleSkipDescription(ctx context.Context, logger *slog.Logger, ev ButtonEvent) error {
	state, ok := e.states.Get(ev.UserID)
	title := state.Fields[fieldTitle]
	if !ok || state.Step != StepAwaitingDescription || title == "" {
		// A button from an abandoned or restarted flow. Acknowledge and
		// change nothing.
		logger.Debug("skip pressed with no active description step")
		return e.resp.AnswerButtonPress(ctx, ev.PressID, "", false)
	}

	task, err := e.createTask(ctx, ev.Identity, title, "")
	if err != nil {
		// As with the text path, keep the state so the press (or a typed
		// description) can be retried.
		return err
	}
	e.states.Clear(ev.UserID)
	logger.Info("task created without description", "task_id", task.ID)

	if err := e.resp.EditMessage(ctx, ev.UserID, ev.MessageID, render.TaskCreated(task), nil); err != nil {
		return err
	}
	return e.resp.AnswerButtonPress(ctx, ev.PressID, "", false)
}

func (e *Engine) handleCompleteButton(ctx context.Context, logger *slog.Logger, ev ButtonEvent) error {
	taskID, ok := parseTaskID(ev.Payload, render.PayloadCompletePrefix)
	if !ok {
		return e.resp.AnswerButtonPress(ctx, ev.PressID, render.TaskNotFoundAlert(), true)
	}
	trace.SpanFromContext(ctx).SetAttributes(otelx.AttrTaskID.Int64(taskID))

	task, err := e.store.CompleteTask(ctx, taskID, ev.UserID)
	if errors.Is(err, store.ErrNotFound) {
		// Missing or someone else's task; callers cannot tell which.
		logger.Info("complete rejected", "task_id", taskID)
		return e.resp.AnswerButtonPress(ctx, ev.PressID, render.TaskNotFoundAlert(), true)
	}
	if err != nil {
		return fmt.Errorf("complete task %d: %w", taskID, err)
	}
	e.metrics.TasksCompleted.Add(ctx, 1)
	logger.Info("task completed", "task_id", taskID)

	if err := e.resp.EditMessage(ctx, ev.UserID, ev.MessageID, render.CompletedCard(task), nil); err != nil {
		return err
	}
	return e.resp.AnswerButtonPress(ctx, ev.PressID, render.TaskCompletedToast(), false)
}

func (e *Engine) handleDeleteButton(ctx context.Context, logger *slog.Logger, ev ButtonEvent) error {
	taskID, ok := parseTaskID(ev.Payload, render.PayloadDeletePrefix)
	if !ok {
		return e.resp.AnswerButtonPress(ctx, ev.PressID, render.TaskNotFoundAlert(), true)
	}
	trace.SpanFromContext(ctx).SetAttributes(otelx.AttrTaskID.Int64(taskID))

	task, err := e.store.DeleteTask(ctx, taskID, ev.UserID)
	if errors.Is(err, store.ErrNotFound) {
		logger.Info("delete rejected", "task_id", taskID)
		return e.resp.AnswerButtonPress(ctx, ev.PressID, render.TaskNotFoundAlert(), true)
	}
	if err != nil {
		return fmt.Errorf("delete task %d: %w", taskID, err)
	}
	e.metrics.TasksDeleted.Add(ctx, 1)
	logger.Info("task deleted", "task_id", taskID)

	if err := e.resp.EditMessage(ctx, ev.UserID, ev.MessageID, render.DeletedCard(task.Title), nil); err != nil {
		return err
	}
	return e.resp.AnswerButtonPress(ctx, ev.PressID, render.TaskDeletedToast(), false)
}
