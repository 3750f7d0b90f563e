package dto

import "github.com/shopspring/decimal"

type RejectRequestDTO struct {
	RejectionReason string `json:"rejectionReason" example:"Proof of payment does not match the amount"`
}

type PendingWithdrawalDTO struct {
	TransactionResponseDTO
	AvailableBalance decimal.Decimal `json:"availableBalance" swaggertype:"string" example:"100"`
	CanApprove       bool            `json:"canApprove" example:"true"`
}

// WithdrawalGroupDTO is one wallet's pending withdrawal queue, oldest request first.
type WithdrawalGroupDTO struct {
	UserID         int                    `json:"userId" example:"1"`
	WalletID       int                    `json:"walletId" example:"10"`
	Currency       string                 `json:"currency" example:"USDT"`
	CurrentBalance decimal.Decimal        `json:"currentBalance" swaggertype:"string" example:"100"`
	AvailableAfter decimal.Decimal        `json:"availableAfter" swaggertype:"string" example:"40"`
	Withdrawals    []PendingWithdrawalDTO `json:"withdrawals"`
}

// DecisionResponseDTO answers an approve or reject with a message and the updated transaction.
type DecisionResponseDTO struct {
	Message     string                 `json:"message" example:"Transaction approved"`
	Transaction TransactionResponseDTO `json:"transaction"`
}
