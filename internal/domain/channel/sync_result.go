package channel

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SyncRunStatus is the overall outcome of one sync run
type SyncRunStatus string

const (
	// SyncCompleted indicates every item succeeded
	SyncCompleted SyncRunStatus = "COMPLETED"
	// SyncCompletedWithErrors indicates the run finished but lost items
	SyncCompletedWithErrors SyncRunStatus = "COMPLETED_WITH_ERRORS"
	// SyncFailed indicates the run could not make any progress
	SyncFailed SyncRunStatus = "FAILED"
	// SyncNotImplemented indicates the provider does not support the entity
	SyncNotImplemented SyncRunStatus = "NOT_IMPLEMENTED"
)

// String returns the string representation of SyncRunStatus
func (s SyncRunStatus) String() string {
	return string(s)
}

// SyncResult accumulates per-run counters for one sync operation. A failure
// on one item is recorded here and never aborts the batch.
type SyncResult struct {
	RunID     uuid.UUID
	ChannelID uuid.UUID
	StartedAt time.Time
	EndedAt   time.Time
	Status    SyncRunStatus

	OrdersImported int
	OrdersUpdated  int
	OrdersFailed   int
	OrdersSkipped  int

	ProductsImported int
	ProductsUpdated  int
	ProductsFailed   int
	ProductsSkipped  int

	InventoryUpdated int
	InventoryFailed  int
	InventorySkipped int

	// Errors holds one human-readable message per failed item
	Errors []string
}

// NewSyncResult starts a result for one run against one channel
func NewSyncResult(channelID uuid.UUID) *SyncResult {
	return &SyncResult{
		RunID:     uuid.New(),
		ChannelID: channelID,
		StartedAt: time.Now(),
	}
}

// AddError records one failed item with an item-identifying prefix
func (r *SyncResult) AddError(itemRef string, err error) {
	r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", itemRef, err))
}

// Fail marks the run as unable to start or continue and records the reason
func (r *SyncResult) Fail(err error) *SyncResult {
	r.Status = SyncFailed
	r.Errors = append(r.Errors, err.Error())
	r.EndedAt = time.Now()
	return r
}

// Finalize computes the overall status from the counters
func (r *SyncResult) Finalize() *SyncResult {
	r.EndedAt = time.Now()
	if r.Status == SyncFailed || r.Status == SyncNotImplemented {
		return r
	}
	if len(r.Errors) > 0 {
		r.Status = SyncCompletedWithErrors
	} else {
		r.Status = SyncCompleted
	}
	return r
}

// Outcome returns a short human-readable summary, stored on the channel as
// the last-sync outcome
func (r *SyncResult) Outcome() string {
	return fmt.Sprintf("%s: %d imported, %d updated, %d skipped, %d failed",
		r.Status,
		r.OrdersImported+r.ProductsImported,
		r.OrdersUpdated+r.ProductsUpdated+r.InventoryUpdated,
		r.OrdersSkipped+r.ProductsSkipped+r.InventorySkipped,
		r.OrdersFailed+r.ProductsFailed+r.InventoryFailed)
}
