package otel

import "go.opentelemetry.io/otel/metric"

// Metrics holds all tasktrack metric instruments.
type Metrics struct {
	UpdateDuration metric.Float64Histogram
	TasksCreated   metric.Int64Counter
	TasksCompleted metric.Int64Counter
	TasksDeleted   metric.Int64Counter
	StoreErrors    metric.Int64Counter
}

// NewMetrics creates all metric instruments from the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.UpdateDuration, err = meter.Float64Histogram("tasktrack.update.duration",
		metric.WithDescription("Dialogue engine update processing duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.TasksCreated, err = meter.Int64Counter("tasktrack.tasks.created",
		metric.WithDescription("Tasks created through the dialogue flow"),
	)
	if err != nil {
		return nil, err
	}

	m.TasksCompleted, err = meter.Int64Counter("tasktrack.tasks.completed",
		metric.WithDescription("Tasks marked completed"),
	)
	if err != nil {
		return nil, err
	}

	m.TasksDeleted, err = meter.Int64Counter("tasktrack.tasks.deleted",
		metric.WithDescription("Tasks deleted"),
	)
	if err != nil {
		return nil, err
	}

	m.StoreErrors, err = meter.Int64Counter("tasktrack.store.errors",
		metric.WithDescription("Durable-store operation failures"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}
