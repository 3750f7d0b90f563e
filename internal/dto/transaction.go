package dto

import (
	"time"

	"github.com/GlebRadaev/exchange/internal/domain"
	"github.com/shopspring/decimal"
)

type DepositRequestDTO struct {
	Currency        string          `json:"currency" example:"USDT"`
	Amount          decimal.Decimal `json:"amount" swaggertype:"string" example:"25.5"`
	TransactionHash string          `json:"transactionHash" example:"7c0e1a5f3b9d2e4c6a8b0d1f3e5c7a9b2d4f6e8a0c1b3d5f7e9a2c4b6d8f0e1a"`
	WalletAddress   string          `json:"walletAddress,omitempty" example:"TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"`
	FileKey         string          `json:"fileKey" example:"proofs/2024/05/01/receipt.png"`
}

type WithdrawalRequestDTO struct {
	Currency      string          `json:"currency" example:"USDT"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"string" example:"60"`
	WalletAddress string          `json:"walletAddress" example:"TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"`
}

type TransactionResponseDTO struct {
	ID              int             `json:"id" example:"5"`
	UserID          int             `json:"userId" example:"1"`
	WalletID        int             `json:"walletId" example:"10"`
	Type            string          `json:"type" example:"withdrawal"`
	Currency        string          `json:"currency" example:"USDT"`
	Amount          decimal.Decimal `json:"amount" swaggertype:"string" example:"60"`
	TransactionHash string          `json:"transactionHash,omitempty" example:""`
	Status          string          `json:"status" example:"pending"`
	WalletAddress   string          `json:"walletAddress,omitempty" example:"TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"`
	FileKey         string          `json:"fileKey,omitempty" example:""`
	RejectionReason *string         `json:"rejectionReason,omitempty"`
	ChainStatus     string          `json:"chainStatus" example:"skipped"`
	CreatedAt       time.Time       `json:"createdAt" example:"2024-05-01T12:00:00Z"`
	UpdatedAt       time.Time       `json:"updatedAt" example:"2024-05-01T12:00:00Z"`
}

func TransactionFrom(t domain.Transaction) TransactionResponseDTO {
	return TransactionResponseDTO{
		ID:              t.ID,
		UserID:          t.UserID,
		WalletID:        t.WalletID,
		Type:            string(t.Type),
		Currency:        string(t.Currency),
		Amount:          t.Amount,
		TransactionHash: t.TransactionHash,
		Status:          string(t.Status),
		WalletAddress:   t.WalletAddress,
		FileKey:         t.FileKey,
		RejectionReason: t.RejectionReason,
		ChainStatus:     string(t.ChainStatus),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func TransactionsFrom(transactions []domain.Transaction) []TransactionResponseDTO {
	response := make([]TransactionResponseDTO, len(transactions))
	for i, t := range transactions {
		response[i] = TransactionFrom(t)
	}
	return response
}
