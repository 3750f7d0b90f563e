package walletservice

import (
	"context"
	"fmt"

	"github.com/GlebRadaev/exchange/internal/domain"
	"github.com/GlebRadaev/exchange/internal/reconciler"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:generate mockgen -source=walletservice.go -destination=mock_walletservice.go -package=walletservice

type WalletRepo interface {
	Create(ctx context.Context, userID int, currency domain.Currency) (*domain.Wallet, error)
	FindByUserID(ctx context.Context, userID int) ([]domain.Wallet, error)
	FindByUserAndCurrency(ctx context.Context, userID int, currency domain.Currency) (*domain.Wallet, error)
}

type TransactionRepo interface {
	FindPendingWithdrawalsByWallet(ctx context.Context, walletID int) ([]domain.Transaction, error)
}

// WalletView is a wallet together with the balance left after its approvable pending withdrawals.
type WalletView struct {
	domain.Wallet
	Available decimal.Decimal
}

type Service struct {
	walletRepo      WalletRepo
	transactionRepo TransactionRepo
}

func New(walletRepo WalletRepo, transactionRepo TransactionRepo) *Service {
	return &Service{
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
	}
}

func (s *Service) CreateWallet(ctx context.Context, userID int, currency domain.Currency) (*domain.Wallet, error) {
	if !currency.Valid() {
		return nil, domain.ErrInvalidCurrency
	}
	wallet, err := s.walletRepo.Create(ctx, userID, currency)
	if err != nil {
		zap.L().Error("failed to create wallet", zap.Int("userID", userID), zap.String("currency", string(currency)), zap.Error(err))
		return nil, err
	}
	zap.L().Info("wallet created", zap.Int("userID", userID), zap.Int("walletID", wallet.ID), zap.String("currency", string(currency)))
	return wallet, nil
}

func (s *Service) GetWallets(ctx context.Context, userID int) ([]WalletView, error) {
	wallets, err := s.walletRepo.FindByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get wallets", zap.Int("userID", userID), zap.Error(err))
		return nil, err
	}

	views := make([]WalletView, 0, len(wallets))
	for i := range wallets {
		available, err := s.Available(ctx, &wallets[i])
		if err != nil {
			return nil, err
		}
		views = append(views, WalletView{Wallet: wallets[i], Available: available})
	}
	return views, nil
}

func (s *Service) GetWalletBalance(ctx context.Context, userID int, currency domain.Currency) (*WalletView, error) {
	if !currency.Valid() {
		return nil, domain.ErrInvalidCurrency
	}
	wallet, err := s.walletRepo.FindByUserAndCurrency(ctx, userID, currency)
	if err != nil {
		return nil, err
	}
	available, err := s.Available(ctx, wallet)
	if err != nil {
		return nil, err
	}
	return &WalletView{Wallet: *wallet, Available: available}, nil
}

// Available runs the reconciler over the wallet's pending withdrawals.
func (s *Service) Available(ctx context.Context, wallet *domain.Wallet) (decimal.Decimal, error) {
	pending, err := s.transactionRepo.FindPendingWithdrawalsByWallet(ctx, wallet.ID)
	if err != nil {
		zap.L().Error("failed to get pending withdrawals", zap.Int("walletID", wallet.ID), zap.Error(err))
		return decimal.Zero, err
	}

	queue := make([]reconciler.PendingWithdrawal, len(pending))
	for i, t := range pending {
		queue[i] = reconciler.PendingWithdrawal{ID: t.ID, Amount: t.Amount, CreatedAt: t.CreatedAt}
	}
	result, err := reconciler.Reconcile(wallet.Balance, queue)
	if err != nil {
		return decimal.Zero, fmt.Errorf("reconcile wallet %d: %w", wallet.ID, err)
	}
	return result.AvailableAfter, nil
}
