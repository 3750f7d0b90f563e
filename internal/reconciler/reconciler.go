// Package reconciler decides which pending withdrawals of a wallet can still be approved.
//
// Withdrawals are reserved against the committed balance in queue order (oldest first).
// A request that does not fit is marked unapprovable and reserves nothing, so later,
// smaller requests may still fit behind it. The result is advisory: the approval commit
// re-checks the balance under a row lock.
package reconciler

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidInput = errors.New("invalid reconciler input")

type PendingWithdrawal struct {
	ID        int
	Amount    decimal.Decimal
	CreatedAt time.Time
}

type Row struct {
	PendingWithdrawal
	AvailableBalance decimal.Decimal
	CanApprove       bool
}

type Result struct {
	CurrentBalance decimal.Decimal
	// AvailableAfter is the balance left once every approvable row is deducted.
	AvailableAfter decimal.Decimal
	Rows           []Row
}

// Reconcile walks pending in order and reserves each approvable amount.
// pending must be strictly ascending by (CreatedAt, ID) and every amount must be positive.
func Reconcile(currentBalance decimal.Decimal, pending []PendingWithdrawal) (Result, error) {
	if err := validate(pending); err != nil {
		return Result{}, err
	}

	running := currentBalance
	rows := make([]Row, 0, len(pending))
	for _, w := range pending {
		row := Row{PendingWithdrawal: w, AvailableBalance: running}
		if w.Amount.LessThanOrEqual(running) {
			row.CanApprove = true
			running = running.Sub(w.Amount)
		}
		rows = append(rows, row)
	}

	return Result{
		CurrentBalance: currentBalance,
		AvailableAfter: running,
		Rows:           rows,
	}, nil
}

// Sort orders pending by creation time, breaking ties by ID.
func Sort(pending []PendingWithdrawal) {
	sort.SliceStable(pending, func(i, j int) bool {
		return less(pending[i], pending[j])
	})
}

func less(a, b PendingWithdrawal) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID < b.ID
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

func validate(pending []PendingWithdrawal) error {
	for i, w := range pending {
		if !w.Amount.IsPositive() {
			return fmt.Errorf("%w: withdrawal %d has non-positive amount %s", ErrInvalidInput, w.ID, w.Amount)
		}
		if i > 0 && !less(pending[i-1], w) {
			return fmt.Errorf("%w: withdrawal %d is out of queue order", ErrInvalidInput, w.ID)
		}
	}
	return nil
}
