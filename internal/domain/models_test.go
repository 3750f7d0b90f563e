package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransactionStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from TransactionStatus
		to   TransactionStatus
		want bool
	}{
		{"pending to approved", StatusPending, StatusApproved, true},
		{"pending to rejected", StatusPending, StatusRejected, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"pending to pending", StatusPending, StatusPending, false},
		{"approved to rejected", StatusApproved, StatusRejected, false},
		{"rejected to approved", StatusRejected, StatusApproved, false},
		{"cancelled to approved", StatusCancelled, StatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestCurrency(t *testing.T) {
	assert.True(t, CurrencyUSDT.Valid())
	assert.True(t, CurrencyJOD.Valid())
	assert.False(t, Currency("BTC").Valid())
	assert.Equal(t, int32(6), CurrencyUSDT.Precision())
	assert.Equal(t, int32(3), CurrencyJOD.Precision())
}

func TestCurrency_ValidAmount(t *testing.T) {
	tests := []struct {
		name     string
		currency Currency
		amount   string
		want     bool
	}{
		{"usdt six decimals", CurrencyUSDT, "1.123456", true},
		{"usdt seven decimals", CurrencyUSDT, "1.1234567", false},
		{"jod three decimals", CurrencyJOD, "10.125", true},
		{"jod four decimals", CurrencyJOD, "10.1255", false},
		{"trailing zeros", CurrencyJOD, "10.1000000", true},
		{"zero", CurrencyUSDT, "0", false},
		{"negative", CurrencyUSDT, "-1", false},
		{"largest storable", CurrencyUSDT, "9999999999999999.999999", true},
		{"too many integer digits", CurrencyUSDT, "10000000000000000", false},
		{"far too large", CurrencyJOD, "1e30", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.currency.ValidAmount(decimal.RequireFromString(tt.amount)))
		})
	}
}
