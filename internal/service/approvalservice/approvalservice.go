// Package approvalservice serves the administrator queues and commits approval decisions.
package approvalservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/GlebRadaev/exchange/internal/domain"
	"github.com/GlebRadaev/exchange/internal/metrics"
	"github.com/GlebRadaev/exchange/internal/notify"
	"github.com/GlebRadaev/exchange/internal/pg"
	"github.com/GlebRadaev/exchange/internal/reconciler"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:generate mockgen -source=approvalservice.go -destination=mock_approvalservice.go -package=approvalservice

var ErrReasonRequired = fmt.Errorf("%w: rejection reason is required", domain.ErrValidation)

type TransactionRepo interface {
	FindPending(ctx context.Context, txType domain.TransactionType) ([]domain.Transaction, error)
	FindByIDForUpdate(ctx context.Context, id int) (*domain.Transaction, error)
	UpdateStatus(ctx context.Context, id int, status domain.TransactionStatus, reason *string) (time.Time, error)
}

type WalletRepo interface {
	FindByID(ctx context.Context, id int) (*domain.Wallet, error)
	FindByIDForUpdate(ctx context.Context, id int) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, id int, balance decimal.Decimal) error
}

type Notifier interface {
	NotifyStatusChange(ctx context.Context, userID int, change notify.StatusChange)
}

type WithdrawalRow struct {
	domain.Transaction
	AvailableBalance decimal.Decimal
	CanApprove       bool
}

// WithdrawalGroup is the reconciled pending queue of one wallet.
type WithdrawalGroup struct {
	UserID         int
	WalletID       int
	Currency       domain.Currency
	CurrentBalance decimal.Decimal
	AvailableAfter decimal.Decimal
	Withdrawals    []WithdrawalRow
}

type Service struct {
	transactionRepo TransactionRepo
	walletRepo      WalletRepo
	notifier        Notifier
	txManager       pg.TXManager
}

func New(transactionRepo TransactionRepo, walletRepo WalletRepo, notifier Notifier, txManager pg.TXManager) *Service {
	return &Service{
		transactionRepo: transactionRepo,
		walletRepo:      walletRepo,
		notifier:        notifier,
		txManager:       txManager,
	}
}

func (s *Service) ListPendingDeposits(ctx context.Context) ([]domain.Transaction, error) {
	deposits, err := s.transactionRepo.FindPending(ctx, domain.TransactionDeposit)
	if err != nil {
		zap.L().Error("failed to list pending deposits", zap.Error(err))
		return nil, err
	}
	return deposits, nil
}

// ListPendingWithdrawals groups the pending withdrawals by wallet and reconciles each group
// against the wallet's committed balance. Groups keep the order of their oldest request.
func (s *Service) ListPendingWithdrawals(ctx context.Context) ([]WithdrawalGroup, error) {
	pending, err := s.transactionRepo.FindPending(ctx, domain.TransactionWithdrawal)
	if err != nil {
		zap.L().Error("failed to list pending withdrawals", zap.Error(err))
		return nil, err
	}

	var order []int
	byWallet := make(map[int][]domain.Transaction)
	for _, t := range pending {
		if _, ok := byWallet[t.WalletID]; !ok {
			order = append(order, t.WalletID)
		}
		byWallet[t.WalletID] = append(byWallet[t.WalletID], t)
	}

	groups := make([]WithdrawalGroup, 0, len(order))
	for _, walletID := range order {
		group, err := s.reconcileGroup(ctx, walletID, byWallet[walletID])
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func (s *Service) reconcileGroup(ctx context.Context, walletID int, withdrawals []domain.Transaction) (WithdrawalGroup, error) {
	wallet, err := s.walletRepo.FindByID(ctx, walletID)
	if err != nil {
		zap.L().Error("failed to get wallet", zap.Int("walletID", walletID), zap.Error(err))
		return WithdrawalGroup{}, err
	}

	queue := make([]reconciler.PendingWithdrawal, len(withdrawals))
	for i, t := range withdrawals {
		queue[i] = reconciler.PendingWithdrawal{ID: t.ID, Amount: t.Amount, CreatedAt: t.CreatedAt}
	}
	result, err := reconciler.Reconcile(wallet.Balance, queue)
	if err != nil {
		zap.L().Error("failed to reconcile withdrawals", zap.Int("walletID", walletID), zap.Error(err))
		return WithdrawalGroup{}, fmt.Errorf("reconcile wallet %d: %w", walletID, err)
	}

	rows := make([]WithdrawalRow, len(result.Rows))
	for i, row := range result.Rows {
		rows[i] = WithdrawalRow{
			Transaction:      withdrawals[i],
			AvailableBalance: row.AvailableBalance,
			CanApprove:       row.CanApprove,
		}
	}
	return WithdrawalGroup{
		UserID:         wallet.UserID,
		WalletID:       wallet.ID,
		Currency:       wallet.Currency,
		CurrentBalance: result.CurrentBalance,
		AvailableAfter: result.AvailableAfter,
		Withdrawals:    rows,
	}, nil
}

func (s *Service) Approve(ctx context.Context, id int) (*domain.Transaction, error) {
	return s.commit(ctx, id, domain.StatusApproved, nil)
}

func (s *Service) Reject(ctx context.Context, id int, reason string) (*domain.Transaction, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	return s.commit(ctx, id, domain.StatusRejected, &reason)
}

// commit locks the transaction row, then the wallet row, and applies the decision in one
// database transaction. On error nothing is written and the transaction stays pending.
func (s *Service) commit(ctx context.Context, id int, status domain.TransactionStatus, reason *string) (*domain.Transaction, error) {
	start := time.Now()
	txType := "unknown"

	var decided *domain.Transaction
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		t, err := s.transactionRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		txType = string(t.Type)
		if !t.Status.CanTransitionTo(status) {
			return domain.ErrInvalidStateTransition
		}

		if status == domain.StatusApproved {
			if err := s.applyToWallet(ctx, t); err != nil {
				return err
			}
		}

		updatedAt, err := s.transactionRepo.UpdateStatus(ctx, id, status, reason)
		if err != nil {
			return err
		}
		t.Status = status
		t.RejectionReason = reason
		t.UpdatedAt = updatedAt
		decided = t
		return nil
	})

	metrics.Decisions.WithLabelValues(txType, string(status), metrics.Result(err)).Inc()
	metrics.DecisionDuration.WithLabelValues(txType).Observe(time.Since(start).Seconds())
	if err != nil {
		zap.L().Info("decision not committed",
			zap.Int("transactionID", id),
			zap.String("status", string(status)),
			zap.Error(err),
		)
		return nil, err
	}

	zap.L().Info("decision committed",
		zap.Int("transactionID", id),
		zap.String("type", txType),
		zap.String("status", string(status)),
	)
	// Published after commit: concurrent decisions for one user may arrive out of commit
	// order, so subscribers order by UpdatedAt.
	s.notifier.NotifyStatusChange(ctx, decided.UserID, notify.StatusChangeOf(decided))
	return decided, nil
}

func (s *Service) applyToWallet(ctx context.Context, t *domain.Transaction) error {
	wallet, err := s.walletRepo.FindByIDForUpdate(ctx, t.WalletID)
	if err != nil {
		return err
	}

	var balance decimal.Decimal
	switch t.Type {
	case domain.TransactionWithdrawal:
		if wallet.Balance.LessThan(t.Amount) {
			zap.L().Info("withdrawal exceeds committed balance",
				zap.Int("transactionID", t.ID),
				zap.String("amount", t.Amount.String()),
				zap.String("balance", wallet.Balance.String()),
			)
			return domain.ErrInsufficientBalance
		}
		balance = wallet.Balance.Sub(t.Amount)
	case domain.TransactionDeposit:
		balance = wallet.Balance.Add(t.Amount)
		if !balance.LessThan(domain.MaxAmount) {
			return domain.ErrBalanceLimit
		}
	default:
		return fmt.Errorf("unknown transaction type %q", t.Type)
	}
	return s.walletRepo.UpdateBalance(ctx, wallet.ID, balance)
}
