// SPDX-License-Identifier: Apache-2.0

package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/distopia/bootstrap/internal/domain"
	"github.com/distopia/bootstrap/internal/metrics"
	"github.com/google/uuid"
)

const (
	webhookRetryAttempts = 3
	webhookRetryBase     = 300 * time.Millisecond
	webhookHeaderSig     = "X-Signature"
)

type runFinishedPayload struct {
	RunID      uuid.UUID        `json:"run_id"`
	Status     domain.RunStatus `json:"status"`
	FinishedAt time.Time        `json:"finished_at"`
}

// Webhook announces finished bootstrap runs to a configured URL so deploy
// dashboards and chat hooks see the outcome without scraping the console.
type Webhook struct {
	url        string
	secret     string
	logger     *slog.Logger
	httpClient *http.Client
}

func NewWebhook(url, secret string, logger *slog.Logger) *Webhook {
	if logger == nil {
		logger = slog.Default()
	}
	return &Webhook{
		url:    strings.TrimSpace(url),
		secret: secret,
		logger: logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NotifyRunFinished delivers the terminal payload with up to three
// attempts and exponential backoff. Delivery failure is logged, never
// surfaced: a lost notification must not fail a finished run.
func (w *Webhook) NotifyRunFinished(ctx context.Context, report *domain.RunReport) {
	if w.url == "" {
		return
	}

	body, err := json.Marshal(runFinishedPayload{
		RunID:      report.ID,
		Status:     report.Status,
		FinishedAt: report.FinishedAt,
	})
	if err != nil {
		w.logger.Error("webhook payload marshal failed",
			"run_id", report.ID,
			"status", report.Status,
			"error", err,
		)
		return
	}

	signature := signPayload(w.secret, body)

	var lastErr error
	for attempt := 1; attempt <= webhookRetryAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
		if err != nil {
			lastErr = err
			break
		}
		req.Header.Set("Content-Type", "application/json")
		if signature != "" {
			req.Header.Set(webhookHeaderSig, signature)
		}

		resp, err := w.httpClient.Do(req)
		if err != nil {
			lastErr = err
			w.logger.Warn("webhook failure",
				"run_id", report.ID,
				"status", report.Status,
				"attempt", attempt,
				"error", err,
			)
		} else {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
				w.logger.Info("webhook delivered",
					"run_id", report.ID,
					"status", report.Status,
					"attempt", attempt,
					"response_status", resp.StatusCode,
				)
				metrics.IncWebhookDelivery("delivered")
				return
			}

			lastErr = fmt.Errorf("non-2xx response: %d", resp.StatusCode)
			w.logger.Warn("webhook failure",
				"run_id", report.ID,
				"status", report.Status,
				"attempt", attempt,
				"response_status", resp.StatusCode,
			)
		}

		if attempt < webhookRetryAttempts {
			wait := webhookRetryBase * time.Duration(1<<(attempt-1))
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				w.logger.Warn("webhook canceled before retry",
					"run_id", report.ID,
					"status", report.Status,
					"attempt", attempt,
					"error", ctx.Err(),
				)
				metrics.IncWebhookDelivery("canceled")
				return
			case <-timer.C:
			}
		}
	}

	if lastErr != nil {
		w.logger.Error("webhook retries exhausted",
			"run_id", report.ID,
			"status", report.Status,
			"error", lastErr,
		)
		metrics.IncWebhookDelivery("failed")
	}
}

func signPayload(secret string, payload []byte) string {
	if strings.TrimSpace(secret) == "" {
		return ""
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
