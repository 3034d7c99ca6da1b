package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	checkoutSessions metric.Int64Counter
	checkoutResolved metric.Int64Counter
	ticketsIssued    metric.Int64Counter
	remindersSent    metric.Int64Counter
	enrollments      metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "pulsehub"
	}
	meter := provider.Meter(name)

	checkoutSessions, err := meter.Int64Counter("pulsehub_checkout_sessions_total")
	if err != nil {
		return nil, err
	}
	checkoutResolved, err := meter.Int64Counter("pulsehub_checkout_resolved_total")
	if err != nil {
		return nil, err
	}
	ticketsIssued, err := meter.Int64Counter("pulsehub_tickets_issued_total")
	if err != nil {
		return nil, err
	}
	remindersSent, err := meter.Int64Counter("pulsehub_reminders_sent_total")
	if err != nil {
		return nil, err
	}
	enrollments, err := meter.Int64Counter("pulsehub_course_enrollments_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		checkoutSessions: checkoutSessions,
		checkoutResolved: checkoutResolved,
		ticketsIssued:    ticketsIssued,
		remindersSent:    remindersSent,
		enrollments:      enrollments,
	}, nil
}

// RecordCheckoutSession increments checkout session creation counts.
func (m *Metrics) RecordCheckoutSession(ctx context.Context, purchaseType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("purchase_type", strings.TrimSpace(purchaseType)))
	m.checkoutSessions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCheckoutResolved increments resolved callback counts by outcome.
func (m *Metrics) RecordCheckoutResolved(ctx context.Context, purchaseType, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("purchase_type", strings.TrimSpace(purchaseType)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.checkoutResolved.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordTicketIssued increments confirmed ticket counts.
func (m *Metrics) RecordTicketIssued(ctx context.Context, status string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("status", strings.TrimSpace(status)))
	m.ticketsIssued.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordReminderSent increments reminder delivery counts per channel.
func (m *Metrics) RecordReminderSent(ctx context.Context, channel string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("channel", strings.TrimSpace(channel)))
	m.remindersSent.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordEnrollment increments course enrollment counts.
func (m *Metrics) RecordEnrollment(ctx context.Context, source string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("source", strings.TrimSpace(source)))
	m.enrollments.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"space_id":      {},
	"endpoint":      {},
	"status_code":   {},
	"status":        {},
	"purchase_type": {},
	"outcome":       {},
	"channel":       {},
	"source":        {},
	"reason":        {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
