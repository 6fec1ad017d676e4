// SPDX-License-Identifier: Apache-2.0

package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/distopia/bootstrap/internal/domain"
	"github.com/google/uuid"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestWebhook(url, secret string, client *http.Client) *Webhook {
	w := NewWebhook(url, secret, discardLogger())
	w.httpClient = client
	return w
}

func TestNotifyRunFinishedRetriesAndSigns(t *testing.T) {
	var attempts int32
	runID := uuid.New()
	finishedAt := time.Now().UTC().Truncate(time.Second)
	secret := "super-secret"

	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		current := atomic.AddInt32(&attempts, 1)

		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}

		gotSig := r.Header.Get(webhookHeaderSig)
		wantSig := signPayload(secret, body)
		if gotSig != wantSig {
			t.Fatalf("expected signature %q got %q", wantSig, gotSig)
		}

		var payload runFinishedPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		if payload.RunID != runID {
			t.Fatalf("expected run id %s got %s", runID, payload.RunID)
		}
		if payload.Status != domain.RunAborted {
			t.Fatalf("expected status %s got %s", domain.RunAborted, payload.Status)
		}
		if !payload.FinishedAt.Equal(finishedAt) {
			t.Fatalf("expected finished_at %s got %s", finishedAt, payload.FinishedAt)
		}

		if current < 3 {
			return &http.Response{
				StatusCode: http.StatusInternalServerError,
				Body:       io.NopCloser(strings.NewReader("fail")),
				Header:     make(http.Header),
			}, nil
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("ok")),
			Header:     make(http.Header),
		}, nil
	})}

	w := newTestWebhook("http://webhook.local/callback", secret, client)

	w.NotifyRunFinished(context.Background(), &domain.RunReport{
		ID:         runID,
		Status:     domain.RunAborted,
		FinishedAt: finishedAt,
	})

	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Fatalf("expected 3 webhook attempts got %d", got)
	}
}

func TestNotifyRunFinishedStopsAfterRetryLimit(t *testing.T) {
	var attempts int32

	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		atomic.AddInt32(&attempts, 1)
		return &http.Response{
			StatusCode: http.StatusInternalServerError,
			Body:       io.NopCloser(strings.NewReader("fail")),
			Header:     make(http.Header),
		}, nil
	})}

	w := newTestWebhook("http://webhook.local/callback", "", client)

	w.NotifyRunFinished(context.Background(), &domain.RunReport{
		ID:         uuid.New(),
		Status:     domain.RunSucceeded,
		FinishedAt: time.Now(),
	})

	if got := atomic.LoadInt32(&attempts); got != int32(webhookRetryAttempts) {
		t.Fatalf("expected %d webhook attempts got %d", webhookRetryAttempts, got)
	}
}

func TestNotifyRunFinishedNoURLIsNoop(t *testing.T) {
	var attempts int32

	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		atomic.AddInt32(&attempts, 1)
		return nil, nil
	})}

	w := newTestWebhook("", "secret", client)
	w.NotifyRunFinished(context.Background(), &domain.RunReport{ID: uuid.New()})

	if atomic.LoadInt32(&attempts) != 0 {
		t.Fatal("expected no delivery without a configured URL")
	}
}

func TestSignPayloadEmptySecret(t *testing.T) {
	if sig := signPayload("", []byte("body")); sig != "" {
		t.Fatalf("expected empty signature without a secret, got %q", sig)
	}
	if sig := signPayload("secret", []byte("body")); sig == "" {
		t.Fatal("expected a signature with a secret")
	}
}
