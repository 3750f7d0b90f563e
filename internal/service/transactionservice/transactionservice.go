package transactionservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/GlebRadaev/exchange/internal/domain"
	"github.com/GlebRadaev/exchange/internal/notify"
	"github.com/GlebRadaev/exchange/internal/pg"
	"github.com/GlebRadaev/exchange/pkg/validate"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:generate mockgen -source=transactionservice.go -destination=mock_transactionservice.go -package=transactionservice

var (
	ErrInvalidAmount   = fmt.Errorf("%w: amount must be positive, under 16 integer digits and within currency precision", domain.ErrValidation)
	ErrInvalidHash     = fmt.Errorf("%w: transaction hash must be 64 hex characters", domain.ErrValidation)
	ErrInvalidAddress  = fmt.Errorf("%w: invalid wallet address", domain.ErrValidation)
	ErrFileKeyRequired = fmt.Errorf("%w: proof file key is required", domain.ErrValidation)
	ErrInvalidFilter   = fmt.Errorf("%w: unknown transaction type or status", domain.ErrValidation)
)

type WalletRepo interface {
	FindByUserAndCurrency(ctx context.Context, userID int, currency domain.Currency) (*domain.Wallet, error)
}

type TransactionRepo interface {
	Create(ctx context.Context, t *domain.Transaction) (*domain.Transaction, error)
	FindByUserID(ctx context.Context, userID int, filter domain.TransactionFilter) ([]domain.Transaction, error)
	FindByIDForUpdate(ctx context.Context, id int) (*domain.Transaction, error)
	UpdateStatus(ctx context.Context, id int, status domain.TransactionStatus, reason *string) (time.Time, error)
}

type Balances interface {
	Available(ctx context.Context, wallet *domain.Wallet) (decimal.Decimal, error)
}

type Notifier interface {
	NotifyStatusChange(ctx context.Context, userID int, change notify.StatusChange)
	NotifyNewPending(ctx context.Context, summary notify.PendingSummary)
}

type DepositRequest struct {
	Currency        domain.Currency
	Amount          decimal.Decimal
	TransactionHash string
	WalletAddress   string
	FileKey         string
}

type WithdrawalRequest struct {
	Currency      domain.Currency
	Amount        decimal.Decimal
	WalletAddress string
}

type Service struct {
	walletRepo      WalletRepo
	transactionRepo TransactionRepo
	balances        Balances
	notifier        Notifier
	txManager       pg.TXManager
}

func New(walletRepo WalletRepo, transactionRepo TransactionRepo, balances Balances, notifier Notifier, txManager pg.TXManager) *Service {
	return &Service{
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		balances:        balances,
		notifier:        notifier,
		txManager:       txManager,
	}
}

func (s *Service) SubmitDeposit(ctx context.Context, userID int, req DepositRequest) (*domain.Transaction, error) {
	if !req.Currency.Valid() {
		return nil, domain.ErrInvalidCurrency
	}
	if !req.Currency.ValidAmount(req.Amount) {
		return nil, ErrInvalidAmount
	}
	hash := strings.TrimSpace(req.TransactionHash)
	address := strings.TrimSpace(req.WalletAddress)
	chainStatus := domain.ChainSkipped
	if req.Currency == domain.CurrencyUSDT {
		hash = strings.ToLower(hash)
		if !validate.IsTxHash(hash) {
			return nil, ErrInvalidHash
		}
		if address != "" && !validate.IsTronAddress(address) {
			return nil, ErrInvalidAddress
		}
		chainStatus = domain.ChainUnverified
	}
	fileKey := strings.TrimSpace(req.FileKey)
	if fileKey == "" {
		return nil, ErrFileKeyRequired
	}

	wallet, err := s.walletRepo.FindByUserAndCurrency(ctx, userID, req.Currency)
	if err != nil {
		return nil, err
	}

	deposit, err := s.transactionRepo.Create(ctx, &domain.Transaction{
		UserID:          userID,
		WalletID:        wallet.ID,
		Type:            domain.TransactionDeposit,
		Currency:        req.Currency,
		Amount:          req.Amount,
		TransactionHash: hash,
		WalletAddress:   address,
		FileKey:         fileKey,
		ChainStatus:     chainStatus,
	})
	if err != nil {
		zap.L().Error("failed to create deposit", zap.Int("userID", userID), zap.Error(err))
		return nil, err
	}

	zap.L().Info("deposit submitted", zap.Int("transactionID", deposit.ID), zap.Int("userID", userID))
	s.notifier.NotifyNewPending(ctx, notify.PendingSummaryOf(deposit))
	return deposit, nil
}

// RequestWithdrawal queues a withdrawal if it fits into the wallet's available balance.
// The check is advisory; the approval commit re-checks under lock.
func (s *Service) RequestWithdrawal(ctx context.Context, userID int, req WithdrawalRequest) (*domain.Transaction, error) {
	if !req.Currency.Valid() {
		return nil, domain.ErrInvalidCurrency
	}
	if !req.Currency.ValidAmount(req.Amount) {
		return nil, ErrInvalidAmount
	}
	address := strings.TrimSpace(req.WalletAddress)
	if address == "" || (req.Currency == domain.CurrencyUSDT && !validate.IsTronAddress(address)) {
		return nil, ErrInvalidAddress
	}

	wallet, err := s.walletRepo.FindByUserAndCurrency(ctx, userID, req.Currency)
	if err != nil {
		return nil, err
	}
	available, err := s.balances.Available(ctx, wallet)
	if err != nil {
		return nil, err
	}
	if req.Amount.GreaterThan(available) {
		zap.L().Info("withdrawal exceeds available balance",
			zap.Int("userID", userID),
			zap.String("amount", req.Amount.String()),
			zap.String("available", available.String()),
		)
		return nil, domain.ErrInsufficientBalance
	}

	withdrawal, err := s.transactionRepo.Create(ctx, &domain.Transaction{
		UserID:        userID,
		WalletID:      wallet.ID,
		Type:          domain.TransactionWithdrawal,
		Currency:      req.Currency,
		Amount:        req.Amount,
		WalletAddress: address,
		ChainStatus:   domain.ChainSkipped,
	})
	if err != nil {
		zap.L().Error("failed to create withdrawal", zap.Int("userID", userID), zap.Error(err))
		return nil, err
	}

	zap.L().Info("withdrawal requested", zap.Int("transactionID", withdrawal.ID), zap.Int("userID", userID))
	s.notifier.NotifyNewPending(ctx, notify.PendingSummaryOf(withdrawal))
	return withdrawal, nil
}

// Cancel withdraws a user's own pending request. Other users' transactions are reported as not found.
func (s *Service) Cancel(ctx context.Context, userID, id int) (*domain.Transaction, error) {
	var cancelled *domain.Transaction
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		t, err := s.transactionRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t.UserID != userID {
			return domain.ErrNotFound
		}
		if !t.Status.CanTransitionTo(domain.StatusCancelled) {
			return domain.ErrInvalidStateTransition
		}
		updatedAt, err := s.transactionRepo.UpdateStatus(ctx, id, domain.StatusCancelled, nil)
		if err != nil {
			return err
		}
		t.Status = domain.StatusCancelled
		t.UpdatedAt = updatedAt
		cancelled = t
		return nil
	})
	if err != nil {
		zap.L().Info("cancel rejected", zap.Int("transactionID", id), zap.Int("userID", userID), zap.Error(err))
		return nil, err
	}

	zap.L().Info("transaction cancelled", zap.Int("transactionID", id), zap.Int("userID", userID))
	s.notifier.NotifyStatusChange(ctx, userID, notify.StatusChangeOf(cancelled))
	return cancelled, nil
}

func (s *Service) List(ctx context.Context, userID int, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	if (filter.Type != "" && !filter.Type.Valid()) || (filter.Status != "" && !filter.Status.Valid()) {
		return nil, ErrInvalidFilter
	}
	transactions, err := s.transactionRepo.FindByUserID(ctx, userID, filter)
	if err != nil {
		zap.L().Error("failed to list transactions", zap.Int("userID", userID), zap.Error(err))
		return nil, err
	}
	return transactions, nil
}
