package pubsub

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Instrumentation creates producer spans around transport batch sends using
// the globally registered OpenTelemetry tracer provider. Register providers
// before constructing the publisher (see the telemetry package), otherwise
// spans are recorded against the no-op provider.
type Instrumentation struct {
	tracer trace.Tracer
}

// NewInstrumentation resolves a tracer from the global provider under the
// given service name.
func NewInstrumentation(serviceName string) (*Instrumentation, error) {
	if serviceName == "" {
		return nil, fmt.Errorf("service name cannot be empty")
	}

	return &Instrumentation{
		tracer: otel.GetTracerProvider().Tracer(serviceName),
	}, nil
}

// startBatchSpan opens a producer span for one transport batch. The returned
// context carries the span so transports can propagate trace context onto the
// wire if they choose to.
func (i *Instrumentation) startBatchSpan(ctx context.Context, topic, key string, count, bytes int) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		semconv.MessagingDestinationName(topic),
		semconv.MessagingBatchMessageCount(count),
		attribute.String("messaging.operation.type", "publish"),
		attribute.Int("messaging.message.body.size", bytes),
	}
	if key != "" {
		attrs = append(attrs, attribute.String("messaging.message.ordering_key", key))
	}

	return i.tracer.Start(ctx, "publish "+topic,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(attrs...),
	)
}

// endBatchSpan closes the span with a status derived from the transport
// outcome.
func (i *Instrumentation) endBatchSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "published")
	}
	span.End()
}
