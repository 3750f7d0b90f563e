package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrWalletNotFound         = fmt.Errorf("wallet %w", ErrNotFound)
	ErrWalletExists           = errors.New("wallet already exists")
	ErrInvalidStateTransition = errors.New("transaction is not pending")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrDuplicateHash          = errors.New("deposit with this transaction hash already submitted")
	ErrUserExists             = errors.New("username already taken")
	ErrBalanceLimit           = errors.New("wallet balance limit exceeded")

	// ErrValidation is wrapped by every error caused by malformed client input.
	ErrValidation      = errors.New("validation failed")
	ErrInvalidCurrency = fmt.Errorf("%w: currency must be USDT or JOD", ErrValidation)
)
