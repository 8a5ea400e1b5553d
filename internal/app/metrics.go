package app

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ayusman/mudra/internal/gesture"
)

const instrumentationName = "github.com/ayusman/mudra/internal/app"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// metrics counts loop activity. Without an installed OTel SDK every
// instrument is a no-op.
type metrics struct {
	ticks        metric.Int64Counter
	absent       metric.Int64Counter
	actions      metric.Int64Counter
	sourceErrors metric.Int64Counter
}

func newMetrics(m metric.Meter) (*metrics, error) {
	var (
		mt  metrics
		err error
	)

	mt.ticks, err = m.Int64Counter(
		"mudra.ticks",
		metric.WithDescription("Ticks processed by the engine"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}

	mt.absent, err = m.Int64Counter(
		"mudra.frames.absent",
		metric.WithDescription("Ticks without a detected hand"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating absent counter: %w", err)
	}

	mt.actions, err = m.Int64Counter(
		"mudra.actions",
		metric.WithDescription("Pointer actions dispatched"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating actions counter: %w", err)
	}

	mt.sourceErrors, err = m.Int64Counter(
		"mudra.source.errors",
		metric.WithDescription("Landmark source read failures"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating source errors counter: %w", err)
	}

	return &mt, nil
}

func (m *metrics) tick(ctx context.Context, absent bool) {
	m.ticks.Add(ctx, 1)
	if absent {
		m.absent.Add(ctx, 1)
	}
}

func (m *metrics) dispatched(ctx context.Context, actions []gesture.Action) {
	for _, a := range actions {
		m.actions.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", a.Kind.String())))
	}
}

func (m *metrics) sourceError(ctx context.Context) {
	m.sourceErrors.Add(ctx, 1)
}
