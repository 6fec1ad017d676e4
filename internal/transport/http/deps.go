// SPDX-License-Identifier: Apache-2.0

package httptransport

import (
	"context"

	"github.com/distopia/bootstrap/internal/domain"
)

// StatusSource exposes the sequencer's observable state. Implemented by
// *sequencer.Sequencer.
type StatusSource interface {
	LastReport() (*domain.RunReport, bool)
	InProgress() bool
	Ready() bool
}

// RunTrigger starts a new bootstrap run. Implemented by
// *sequencer.Sequencer.
type RunTrigger interface {
	Execute(ctx context.Context) (*domain.RunReport, error)
}

// HistoryLister returns recent recorded runs. Implemented by
// *history.Recorder; optional.
type HistoryLister interface {
	ListRecentRuns(ctx context.Context, limit int) ([]domain.RunReport, error)
}
