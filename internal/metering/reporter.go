// Package metering reports purchased-credit consumption to the external
// payment-processor usage integration. Calls are best-effort: the ledger's own
// rows are the source of truth and a metering outage never rolls them back.
package metering

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type PurchasedUsage struct {
	OwnerID  string         `json:"owner_id"`
	Amount   int64          `json:"amount"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type Reporter interface {
	ReportPurchasedUsage(ctx context.Context, usage PurchasedUsage) error
}

// LogReporter is the default adapter when no metering endpoint is configured.
type LogReporter struct {
	log *zap.Logger
}

func NewLogReporter(log *zap.Logger) *LogReporter {
	return &LogReporter{log: log.Named("metering.log")}
}

func (r *LogReporter) ReportPurchasedUsage(_ context.Context, usage PurchasedUsage) error {
	r.log.Info("purchased usage reported",
		zap.String("owner_id", usage.OwnerID),
		zap.Int64("amount", usage.Amount),
	)
	return nil
}

// WebhookReporter posts purchased usage to an HTTP endpoint.
type WebhookReporter struct {
	url    string
	client *http.Client
	log    *zap.Logger
}

func NewWebhookReporter(url string, log *zap.Logger) *WebhookReporter {
	return &WebhookReporter{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log.Named("metering.webhook"),
	}
}

func (r *WebhookReporter) ReportPurchasedUsage(ctx context.Context, usage PurchasedUsage) error {
	payload, err := json.Marshal(usage)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("metering webhook returned status %d", resp.StatusCode)
	}
	return nil
}
