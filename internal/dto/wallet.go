package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateWalletRequestDTO struct {
	Currency string `json:"currency" example:"USDT"`
}

type WalletResponseDTO struct {
	ID        int             `json:"id" example:"10"`
	Currency  string          `json:"currency" example:"USDT"`
	Balance   decimal.Decimal `json:"balance" swaggertype:"string" example:"100.5"`
	Available decimal.Decimal `json:"available" swaggertype:"string" example:"40.5"`
	CreatedAt time.Time       `json:"createdAt" example:"2024-05-01T12:00:00Z"`
	UpdatedAt time.Time       `json:"updatedAt" example:"2024-05-01T12:00:00Z"`
}
