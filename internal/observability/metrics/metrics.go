// Package metrics exposes the ledger's OpenTelemetry instruments.
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
	grantsIssued    metric.Int64Counter
	creditsGranted  metric.Int64Counter
	creditsConsumed metric.Int64Counter
	debtCleared     metric.Int64Counter
	quotaResets     metric.Int64Counter
	usageEvents     metric.Int64Counter
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

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "", "grpc":
		return otlpmetricgrpc.New(context.Background(),
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	case "http":
		return otlpmetrichttp.New(context.Background(),
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported metrics exporter protocol %q", protocol)
	}
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "creditd"
	}
	meter := provider.Meter(name)

	grantsIssued, err := meter.Int64Counter("credits_grants_issued_total")
	if err != nil {
		return nil, err
	}
	creditsGranted, err := meter.Int64Counter("credits_granted_total")
	if err != nil {
		return nil, err
	}
	creditsConsumed, err := meter.Int64Counter("credits_consumed_total")
	if err != nil {
		return nil, err
	}
	debtCleared, err := meter.Int64Counter("credits_debt_cleared_total")
	if err != nil {
		return nil, err
	}
	quotaResets, err := meter.Int64Counter("credits_quota_resets_total")
	if err != nil {
		return nil, err
	}
	usageEvents, err := meter.Int64Counter("credits_usage_events_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		grantsIssued:    grantsIssued,
		creditsGranted:  creditsGranted,
		creditsConsumed: creditsConsumed,
		debtCleared:     debtCleared,
		quotaResets:     quotaResets,
		usageEvents:     usageEvents,
	}, nil
}

// RecordGrant counts an issued grant and its nominal amount.
func (m *Metrics) RecordGrant(ctx context.Context, grantType string, amount int64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("grant_type", grantType))
	m.grantsIssued.Add(ctx, 1, attrs)
	m.creditsGranted.Add(ctx, amount, attrs)
}

// RecordConsumption counts consumed credits and the usage event.
func (m *Metrics) RecordConsumption(ctx context.Context, credits int64, byok bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.Bool("byok", byok))
	m.usageEvents.Add(ctx, 1, attrs)
	if credits > 0 {
		m.creditsConsumed.Add(ctx, credits, attrs)
	}
}

// RecordDebtCleared counts debt forgiven during grant creation.
func (m *Metrics) RecordDebtCleared(ctx context.Context, amount int64) {
	if m == nil {
		return
	}
	m.debtCleared.Add(ctx, amount)
}

// RecordQuotaReset counts an applied monthly reset.
func (m *Metrics) RecordQuotaReset(ctx context.Context) {
	if m == nil {
		return
	}
	m.quotaResets.Add(ctx, 1)
}
