// Package observe provides the OpenTelemetry metrics recorded by wordcoach.
//
// Instruments are created from a [metric.MeterProvider]. [InitProvider] wires
// the SDK provider to a Prometheus exporter so the server can expose them on
// /metrics. Tests should use [NewMetrics] with their own provider.
package observe

import (
	"context"
	"strconv"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/at-ishikawa/wordcoach"

// Metrics holds the metric instruments of the application.
type Metrics struct {
	// Evaluations counts pronunciation evaluations. Attribute: grade.
	Evaluations metric.Int64Counter

	// Score records the combined pronunciation score of each evaluation.
	Score metric.Int64Histogram

	// Outcomes counts applied practice outcomes. Attributes: correct, status.
	Outcomes metric.Int64Counter

	// Conflicts counts optimistic-lock conflicts seen while saving progress.
	Conflicts metric.Int64Counter

	// Reminders counts due-word notifications. Attribute: status.
	Reminders metric.Int64Counter
}

var scoreBuckets = []float64{10, 20, 30, 40, 50, 60, 70, 80, 85, 90, 95, 100}

// NewMetrics creates the instruments on the given provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Evaluations, err = m.Int64Counter("wordcoach.pronunciation.evaluations",
		metric.WithDescription("Total pronunciation evaluations by grade."),
	); err != nil {
		return nil, err
	}
	if met.Score, err = m.Int64Histogram("wordcoach.pronunciation.score",
		metric.WithDescription("Combined pronunciation score from 0 to 100."),
		metric.WithExplicitBucketBoundaries(scoreBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Outcomes, err = m.Int64Counter("wordcoach.practice.outcomes",
		metric.WithDescription("Total practice outcomes applied by correctness and resulting status."),
	); err != nil {
		return nil, err
	}
	if met.Conflicts, err = m.Int64Counter("wordcoach.practice.conflicts",
		metric.WithDescription("Total version conflicts while saving progress."),
	); err != nil {
		return nil, err
	}
	if met.Reminders, err = m.Int64Counter("wordcoach.reminders.sent",
		metric.WithDescription("Total due-word reminders by delivery status."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns a package-level instance created from the global
// meter provider on first use.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordEvaluation records one pronunciation evaluation.
func (m *Metrics) RecordEvaluation(ctx context.Context, grade string, score int) {
	m.Evaluations.Add(ctx, 1, metric.WithAttributes(attribute.String("grade", grade)))
	m.Score.Record(ctx, int64(score))
}

// RecordOutcome records one applied practice outcome.
func (m *Metrics) RecordOutcome(ctx context.Context, correct bool, status string) {
	m.Outcomes.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("correct", strconv.FormatBool(correct)),
			attribute.String("status", status),
		),
	)
}

// RecordConflict records one optimistic-lock conflict.
func (m *Metrics) RecordConflict(ctx context.Context) {
	m.Conflicts.Add(ctx, 1)
}

// RecordReminder records one reminder delivery with status "sent" or "failed".
func (m *Metrics) RecordReminder(ctx context.Context, status string) {
	m.Reminders.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}
