// Package notify relays transaction events to connected users and admins.
package notify

import (
	"fmt"
	"time"

	"github.com/GlebRadaev/exchange/internal/domain"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindStatusChange Kind = "transaction.status_changed"
	KindNewPending   Kind = "transaction.pending_created"
)

// AdminChannel receives every event an administrator session needs to refresh its queues.
const AdminChannel = "admin"

func UserChannel(userID int) string {
	return fmt.Sprintf("user:%d", userID)
}

type Event struct {
	Kind Kind `json:"kind"`
	Data any  `json:"data"`
}

type StatusChange struct {
	TransactionID   int                      `json:"transactionId"`
	Status          domain.TransactionStatus `json:"status"`
	Type            domain.TransactionType   `json:"type"`
	Amount          decimal.Decimal          `json:"amount"`
	Currency        domain.Currency          `json:"currency"`
	UpdatedAt       time.Time                `json:"updatedAt"`
	RejectionReason *string                  `json:"rejectionReason,omitempty"`
}

type PendingSummary struct {
	TransactionID int                    `json:"transactionId"`
	UserID        int                    `json:"userId"`
	WalletID      int                    `json:"walletId"`
	Type          domain.TransactionType `json:"type"`
	Currency      domain.Currency        `json:"currency"`
	Amount        decimal.Decimal        `json:"amount"`
	CreatedAt     time.Time              `json:"createdAt"`
}

func StatusChangeOf(t *domain.Transaction) StatusChange {
	return StatusChange{
		TransactionID:   t.ID,
		Status:          t.Status,
		Type:            t.Type,
		Amount:          t.Amount,
		Currency:        t.Currency,
		UpdatedAt:       t.UpdatedAt,
		RejectionReason: t.RejectionReason,
	}
}

func PendingSummaryOf(t *domain.Transaction) PendingSummary {
	return PendingSummary{
		TransactionID: t.ID,
		UserID:        t.UserID,
		WalletID:      t.WalletID,
		Type:          t.Type,
		Currency:      t.Currency,
		Amount:        t.Amount,
		CreatedAt:     t.CreatedAt,
	}
}
