package dialog

import (
	"context"
	"log/slog"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	otelx "github.com/basket/tasktrack/internal/otel"
	"github.com/basket/tasktrack/internal/render"
	"github.com/basket/tasktrack/internal/shared"
	"github.com/basket/tasktrack/internal/store"
)

// Engine routes inbound chat events to handlers and serializes processing
// per user. Invocations for different users run concurrently; a second
// event from the same user waits for the first to finish.
type Engine struct {
	store   *store.Store
	states  *StateStore
	resp    Responder
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *otelx.Metrics
	locks   *userLocks
}

// NewEngine wires the dialogue core. tracer and metrics may be nil; no-op
// instruments are substituted so handlers never nil-check telemetry.
func NewEngine(st *store.Store, states *StateStore, resp Responder, logger *slog.Logger, tracer trace.Tracer, metrics *otelx.Metrics) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(otelx.TracerName)
	}
	if metrics == nil {
		metrics, _ = otelx.NewMetrics(metricnoop.NewMeterProvider().Meter(otelx.MeterName))
	}
	return &Engine{
		store:   st,
		states:  states,
		resp:    resp,
		logger:  logger,
		tracer:  tracer,
		metrics: metrics,
		locks:   newUserLocks(),
	}
}

// States exposes the conversation state store to collaborators that expire
// stale dialogues. Nothing else may touch it.
func (e *Engine) States() *StateStore {
	return e.states
}

// Handle processes one inbound event end to end. It never panics and never
// returns an error: every failure is translated into a user-facing apology
// and a structured log entry, and the engine keeps serving.
func (e *Engine) Handle(ctx context.Context, ev Event) {
	id := ev.ident()
	unlock := e.locks.lock(id.UserID)
	defer unlock()

	if shared.TraceID(ctx) == "-" {
		ctx = shared.WithTraceID(ctx, shared.NewTraceID())
	}
	ctx = shared.WithUserID(ctx, id.UserID)

	name := eventName(ev)
	logger := e.logger.With("trace_id", shared.TraceID(ctx), "user_id", id.UserID, "event", name)

	ctx, span := otelx.StartServerSpan(ctx, e.tracer, "dialog."+name, otelx.AttrUserID.Int64(id.UserID))
	defer span.End()

	start := time.Now()
	defer func() {
		e.metrics.UpdateDuration.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributes(otelx.AttrHandler.String(name)))
		if r := recover(); r != nil {
			logger.Error("handler panic", "panic", r, "stack", string(debug.Stack()))
			e.apologize(ctx, logger, ev)
		}
	}()

	if err := e.dispatch(ctx, logger, ev); err != nil {
		e.metrics.StoreErrors.Add(ctx, 1)
		logger.Error("event handling failed", "error", err)
		e.apologize(ctx, logger, ev)
		return
	}
	logger.Debug("event handled", "duration_ms", time.Since(start).Milliseconds())
}

// dispatch is the three-tier router: explicit commands first, then button
// payload patterns, then the user's conversation state. A command always
// wins, so /cancel and /add work mid-flow.
func (e *Engine) dispatch(ctx context.Context, logger *slog.Logger, ev Event) error {
	switch ev := ev.(type) {
	case CommandEvent:
		switch ev.Command {
		case "start":
			return e.handleStart(ctx, logger, ev)
		case "add":
			return e.handleAdd(ctx, logger, ev)
		case "cancel":
			return e.handleCancel(ctx, logger, ev)
		case "list":
			return e.handleList(ctx, logger, ev)
		case "completed":
			return e.handleCompleted(ctx, logger, ev)
		case "stats":
			return e.handleStats(ctx, logger, ev)
		case "help":
			return e.handleHelp(ctx, logger, ev)
		}
		// Unknown commands are not commands to us: route the raw text
		// through the state tier, where a mid-flow user may have typed a
		// title that happens to start with a slash.
		return e.handleText(ctx, logger, TextEvent{Identity: ev.Identity, Text: ev.RawText})

	case ButtonEvent:
		switch {
		case ev.Payload == render.PayloadSkipDescription:
			return e.handleSkipDescription(ctx, logger, ev)
		case strings.HasPrefix(ev.Payload, render.PayloadCompletePrefix):
			return e.handleCompleteButton(ctx, logger, ev)
		case strings.HasPrefix(ev.Payload, render.PayloadDeletePrefix):
			return e.handleDeleteButton(ctx, logger, ev)
		}
		// Stale or foreign payload: acknowledge so the client stops its
		// spinner, change nothing.
		logger.Debug("unmatched button payload", "payload", ev.Payload)
		return e.resp.AnswerButtonPress(ctx, ev.PressID, "", false)

	case TextEvent:
		return e.handleText(ctx, logger, ev)
	}
	return nil
}

// apologize surfaces a failure to the user without touching any state.
// Button presses get a modal alert; everything else a chat message.
func (e *Engine) apologize(ctx context.Context, logger *slog.Logger, ev Event) {
	var err error
	if button, ok := ev.(ButtonEvent); ok {
		err = e.resp.AnswerButtonPress(ctx, button.PressID, render.GenericButtonError(), true)
	} else {
		err = e.resp.SendMessage(ctx, ev.ident().UserID, render.GenericError(), nil)
	}
	if err != nil {
		logger.Error("failed to deliver error message", "error", err)
	}
}

func eventName(ev Event) string {
	switch ev := ev.(type) {
	case CommandEvent:
		return "command." + ev.Command
	case ButtonEvent:
		switch {
		case ev.Payload == render.PayloadSkipDescription:
			return "button.skip_description"
		case strings.HasPrefix(ev.Payload, render.PayloadCompletePrefix):
			return "button.complete"
		case strings.HasPrefix(ev.Payload, render.PayloadDeletePrefix):
			return "button.delete"
		default:
			return "button.unknown"
		}
	default:
		return "text"
	}
}

// parseTaskID extracts the decimal task id from a button payload like
// "complete_42".
func parseTaskID(payload, prefix string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimPrefix(payload, prefix), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
