package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Currency string

const (
	CurrencyUSDT Currency = "USDT"
	CurrencyJOD  Currency = "JOD"
)

// Valid reports whether c is one of the supported currencies.
func (c Currency) Valid() bool {
	return c == CurrencyUSDT || c == CurrencyJOD
}

// Precision is the number of fractional digits an amount in c may carry.
func (c Currency) Precision() int32 {
	if c == CurrencyJOD {
		return 3
	}
	return 6
}

// MaxAmount is the exclusive upper bound of amounts and balances, the 16 integer digits
// of the NUMERIC(24, 8) columns.
var MaxAmount = decimal.New(1, 16)

// ValidAmount reports whether a is positive, below MaxAmount and carries no more fractional
// digits than c allows.
func (c Currency) ValidAmount(a decimal.Decimal) bool {
	return a.IsPositive() && a.LessThan(MaxAmount) && a.Equal(a.Truncate(c.Precision()))
}

type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
)

func (t TransactionType) Valid() bool {
	return t == TransactionDeposit || t == TransactionWithdrawal
}

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusApproved  TransactionStatus = "approved"
	StatusRejected  TransactionStatus = "rejected"
	StatusCancelled TransactionStatus = "cancelled"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed out of s.
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// CanTransitionTo allows only pending -> approved | rejected | cancelled.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	return s == StatusPending && next.IsTerminal()
}

// ChainStatus is the result of looking a deposit hash up on the TRON network.
type ChainStatus string

const (
	ChainUnverified ChainStatus = "unverified"
	ChainConfirmed  ChainStatus = "confirmed"
	ChainNotFound   ChainStatus = "not_found"
	ChainMismatch   ChainStatus = "mismatch"
	ChainSkipped    ChainStatus = "skipped"
)

type User struct {
	ID           int       `db:"id"`
	Login        string    `db:"login"`
	PasswordHash string    `db:"password_hash"`
	Role         Role      `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

type Wallet struct {
	ID        int             `db:"id"`
	UserID    int             `db:"user_id"`
	Currency  Currency        `db:"currency"`
	Balance   decimal.Decimal `db:"balance"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

type Transaction struct {
	ID              int               `db:"id"`
	UserID          int               `db:"user_id"`
	WalletID        int               `db:"wallet_id"`
	Type            TransactionType   `db:"type"`
	Currency        Currency          `db:"currency"`
	Amount          decimal.Decimal   `db:"amount"`
	TransactionHash string            `db:"transaction_hash"`
	Status          TransactionStatus `db:"status"`
	WalletAddress   string            `db:"wallet_address"`
	FileKey         string            `db:"file_key"`
	RejectionReason *string           `db:"rejection_reason"`
	ChainStatus     ChainStatus       `db:"chain_status"`
	CreatedAt       time.Time         `db:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at"`
}

// TransactionFilter narrows a user's transaction history. Zero values match everything.
type TransactionFilter struct {
	Type   TransactionType
	Status TransactionStatus
}
