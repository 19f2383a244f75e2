package lineage

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zoobzio/capitan"
	"go.uber.org/zap"
)

// LogObserver writes one structured log line per lineage signal. Failures
// are logged at error level, everything else at debug.
type LogObserver struct {
	logger    *zap.Logger
	listeners []*capitan.Listener
}

// NewLogObserver hooks every lineage signal. Call Close to detach.
func NewLogObserver(logger *zap.Logger) *LogObserver {
	o := &LogObserver{logger: logger}
	for _, ns := range allSignals {
		name := ns.name
		o.listeners = append(o.listeners, capitan.Hook(ns.signal, func(_ context.Context, e *capitan.Event) {
			fields := zapFields(e)
			if e.Severity() == capitan.SeverityError {
				o.logger.Error(name, fields...)
				return
			}
			o.logger.Debug(name, fields...)
		}))
	}
	return o
}

// Close detaches every hook.
func (o *LogObserver) Close() error {
	for _, l := range o.listeners {
		l.Close()
	}
	o.listeners = nil
	return nil
}

// fieldKey is the part of a capitan key the log observer needs.
type fieldKey[T any] interface {
	Name() string
	From(e *capitan.Event) (T, bool)
}

func appendField[T any](fields []zap.Field, e *capitan.Event, key fieldKey[T], conv func(string, T) zap.Field) []zap.Field {
	if v, ok := key.From(e); ok {
		fields = append(fields, conv(key.Name(), v))
	}
	return fields
}

// zapFields converts the lineage fields present on e.
func zapFields(e *capitan.Event) []zap.Field {
	var fields []zap.Field
	for _, key := range []fieldKey[string]{
		FieldBranch, FieldParent, FieldEventType, FieldEventID,
		FieldStepName, FieldStepType, FieldTopic, FieldQuery,
		FieldToolName, FieldToolStatus, FieldSource,
	} {
		fields = appendField(fields, e, key, zap.String)
	}
	for _, key := range []fieldKey[int]{FieldEventCount, FieldContextDocs, FieldChunkCount} {
		fields = appendField(fields, e, key, zap.Int)
	}
	fields = appendField(fields, e, FieldStepDuration, zap.Duration)
	fields = appendField(fields, e, FieldTemperature, zap.Float32)
	fields = appendField(fields, e, FieldError, zap.NamedError)
	return fields
}

// MetricsObserver maintains Prometheus metrics from lineage signals.
//
//	lineage_steps_total{step_type,outcome}
//	lineage_step_duration_seconds{step_type}
//	lineage_events_appended_total{event_type}
//	lineage_drafts_reused_total
//	lineage_tool_calls_total{status}
type MetricsObserver struct {
	steps       *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	events      *prometheus.CounterVec
	draftsReuse prometheus.Counter
	toolCalls   *prometheus.CounterVec
	listeners   []*capitan.Listener
}

// NewMetricsObserver registers the collectors with reg and hooks the step,
// event, draft and tool signals.
func NewMetricsObserver(reg prometheus.Registerer) (*MetricsObserver, error) {
	o := &MetricsObserver{
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lineage_steps_total",
			Help: "Branch stages finished, by step type and outcome.",
		}, []string{"step_type", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lineage_step_duration_seconds",
			Help:    "Branch stage duration, by step type.",
			Buckets: prometheus.DefBuckets,
		}, []string{"step_type"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lineage_events_appended_total",
			Help: "Events appended to branches, by event type.",
		}, []string{"event_type"}),
		draftsReuse: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lineage_drafts_reused_total",
			Help: "Draft arrows satisfied by an existing draft.",
		}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lineage_tool_calls_total",
			Help: "Tool invocations requested by models, by status.",
		}, []string{"status"}),
	}

	for _, c := range []prometheus.Collector{o.steps, o.duration, o.events, o.draftsReuse, o.toolCalls} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register lineage metrics: %w", err)
		}
	}

	o.listeners = append(o.listeners,
		capitan.Hook(StepCompleted, func(_ context.Context, e *capitan.Event) {
			o.observeStep(e, "completed")
		}),
		capitan.Hook(StepFailed, func(_ context.Context, e *capitan.Event) {
			o.observeStep(e, "failed")
		}),
		capitan.Hook(EventAppended, func(_ context.Context, e *capitan.Event) {
			eventType, _ := FieldEventType.From(e)
			o.events.WithLabelValues(eventType).Inc()
		}),
		capitan.Hook(DraftReused, func(_ context.Context, _ *capitan.Event) {
			o.draftsReuse.Inc()
		}),
		capitan.Hook(ToolInvoked, func(_ context.Context, e *capitan.Event) {
			status, _ := FieldToolStatus.From(e)
			o.toolCalls.WithLabelValues(status).Inc()
		}),
	)
	return o, nil
}

func (o *MetricsObserver) observeStep(e *capitan.Event, outcome string) {
	stepType, _ := FieldStepType.From(e)
	o.steps.WithLabelValues(stepType, outcome).Inc()
	if d, ok := FieldStepDuration.From(e); ok {
		o.duration.WithLabelValues(stepType).Observe(d.Seconds())
	}
}

// Close detaches every hook. Registered collectors stay registered.
func (o *MetricsObserver) Close() error {
	for _, l := range o.listeners {
		l.Close()
	}
	o.listeners = nil
	return nil
}
