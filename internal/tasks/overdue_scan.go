package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/circulation/internal/fees"
	"github.com/mrlokans/circulation/internal/services"
)

const OverdueScanQueue = "overdue_scan"

// OverdueLister lists open loans that are past their due date.
type OverdueLister interface {
	OverdueLoans() ([]services.OverdueLoan, error)
}

// OverdueNotifier records a notice for one overdue loan.
type OverdueNotifier interface {
	LogOverdueNotice(patronID string, bookID uint, title string, daysOverdue int, fee string)
}

// OverdueScanTask finds every overdue loan and records a notice for it.
type OverdueScanTask struct {
	// Trigger says who asked for the scan: "schedule", "api" or "cli".
	Trigger string `json:"trigger,omitempty"`
}

// Config returns the queue configuration for overdue scans.
func (t OverdueScanTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        OverdueScanQueue,
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// OverdueScanResult summarizes one scan. Loans less than a full day late
// owe nothing yet; they are counted in InGrace and get no notice.
type OverdueScanResult struct {
	Overdue      int
	InGrace      int
	Patrons      int
	TotalFeesDue fees.Money
}

// RunOverdueScan performs the scan synchronously.
func RunOverdueScan(ctx context.Context, lister OverdueLister, notifier OverdueNotifier) (OverdueScanResult, error) {
	var result OverdueScanResult

	loans, err := lister.OverdueLoans()
	if err != nil {
		return result, fmt.Errorf("list overdue loans: %w", err)
	}

	patrons := make(map[string]struct{})
	for _, loan := range loans {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if loan.Fee.IsZero() {
			result.InGrace++
			continue
		}
		if notifier != nil {
			notifier.LogOverdueNotice(loan.PatronID, loan.BookID, loan.Title, loan.Fee.DaysOverdue, loan.Fee.Amount.String())
		}
		patrons[loan.PatronID] = struct{}{}
		result.Overdue++
		result.TotalFeesDue += loan.Fee.Amount
	}
	result.Patrons = len(patrons)

	return result, nil
}

// OverdueScanProcessor creates a processor function for OverdueScanTask.
func OverdueScanProcessor(lister OverdueLister, notifier OverdueNotifier) backlite.QueueProcessor[OverdueScanTask] {
	return func(ctx context.Context, task OverdueScanTask) error {
		if lister == nil {
			return fmt.Errorf("overdue lister not configured")
		}

		result, err := RunOverdueScan(ctx, lister, notifier)
		if err != nil {
			return fmt.Errorf("overdue scan: %w", err)
		}

		log.Printf("[TASK] Overdue scan (%s) complete: %d overdue loans across %d patrons, $%s outstanding, %d within the first day",
			task.Trigger, result.Overdue, result.Patrons, result.TotalFeesDue, result.InGrace)
		return nil
	}
}

// NewOverdueScanQueue creates a backlite queue for overdue scans.
func NewOverdueScanQueue(lister OverdueLister, notifier OverdueNotifier) backlite.Queue {
	return backlite.NewQueue(OverdueScanProcessor(lister, notifier))
}
