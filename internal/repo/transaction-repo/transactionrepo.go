package transactionrepo

import (
	"context"
	"errors"
	"time"

	"github.com/GlebRadaev/exchange/internal/domain"
	"github.com/GlebRadaev/exchange/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	txColumns = `id, user_id, wallet_id, type, currency, amount, transaction_hash, status,
		wallet_address, file_key, rejection_reason, chain_status, created_at, updated_at`

	createQuery = `
		INSERT INTO transactions (user_id, wallet_id, type, currency, amount, transaction_hash,
			wallet_address, file_key, chain_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, status, created_at, updated_at
	`
	findByUserIDQuery = `
		SELECT ` + txColumns + `
		FROM transactions
		WHERE user_id = $1
			AND ($2 = '' OR type = $2)
			AND ($3 = '' OR status = $3)
		ORDER BY created_at DESC, id DESC
	`
	findByIDQuery = `
		SELECT ` + txColumns + `
		FROM transactions
		WHERE id = $1
	`
	findByIDForUpdateQuery = findByIDQuery + "FOR UPDATE"

	// clock_timestamp is taken while the row locks are held, unlike NOW() which is the
	// start of the database transaction.
	updateStatusQuery = `
		UPDATE transactions
		SET status = $1, rejection_reason = $2, updated_at = clock_timestamp()
		WHERE id = $3 AND status = 'pending'
		RETURNING updated_at
	`
	findPendingQuery = `
		SELECT ` + txColumns + `
		FROM transactions
		WHERE type = $1 AND status = 'pending'
		ORDER BY created_at, id
	`
	findPendingByWalletQuery = `
		SELECT ` + txColumns + `
		FROM transactions
		WHERE wallet_id = $1 AND type = $2 AND status = 'pending'
		ORDER BY created_at, id
	`
	findUncheckedDepositsQuery = `
		SELECT ` + txColumns + `
		FROM transactions
		WHERE type = 'deposit' AND status = 'pending' AND currency = $1
			AND chain_status IN ('unverified', 'not_found')
		ORDER BY created_at, id
		LIMIT $2
	`
	updateChainStatusQuery = `
		UPDATE transactions
		SET chain_status = $1
		WHERE id = $2
	`
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(
		&t.ID, &t.UserID, &t.WalletID, &t.Type, &t.Currency, &t.Amount, &t.TransactionHash, &t.Status,
		&t.WalletAddress, &t.FileKey, &t.RejectionReason, &t.ChainStatus, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repository) Create(ctx context.Context, t *domain.Transaction) (*domain.Transaction, error) {
	err := r.db.QueryRow(ctx, createQuery,
		t.UserID, t.WalletID, t.Type, t.Currency, t.Amount, t.TransactionHash, t.WalletAddress, t.FileKey, t.ChainStatus,
	).Scan(&t.ID, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return nil, domain.ErrDuplicateHash
		}
		zap.L().Error("can't save transaction", zap.Int("userID", t.UserID), zap.Error(err))
		return nil, err
	}
	return t, nil
}

func (r *Repository) FindByUserID(ctx context.Context, userID int, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	return r.findMany(ctx, findByUserIDQuery, userID, string(filter.Type), string(filter.Status))
}

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.Transaction, error) {
	return r.findOne(ctx, findByIDQuery, id)
}

// FindByIDForUpdate locks the transaction row until the surrounding transaction ends.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id int) (*domain.Transaction, error) {
	return r.findOne(ctx, findByIDForUpdateQuery, id)
}

// UpdateStatus moves a pending transaction to status and returns the new updated_at.
// A row that is no longer pending is left untouched and reported as ErrInvalidStateTransition.
func (r *Repository) UpdateStatus(ctx context.Context, id int, status domain.TransactionStatus, reason *string) (time.Time, error) {
	var updatedAt time.Time
	err := r.db.QueryRow(ctx, updateStatusQuery, status, reason, id).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, domain.ErrInvalidStateTransition
		}
		zap.L().Error("can't update transaction status", zap.Int("transactionID", id), zap.Error(err))
		return time.Time{}, err
	}
	return updatedAt, nil
}

// FindPending returns pending transactions of type, oldest first.
func (r *Repository) FindPending(ctx context.Context, txType domain.TransactionType) ([]domain.Transaction, error) {
	return r.findMany(ctx, findPendingQuery, txType)
}

// FindPendingWithdrawalsByWallet returns the wallet's withdrawal queue ordered by (created_at, id).
func (r *Repository) FindPendingWithdrawalsByWallet(ctx context.Context, walletID int) ([]domain.Transaction, error) {
	return r.findMany(ctx, findPendingByWalletQuery, walletID, domain.TransactionWithdrawal)
}

func (r *Repository) FindUncheckedDeposits(ctx context.Context, currency domain.Currency, limit uint32) ([]domain.Transaction, error) {
	return r.findMany(ctx, findUncheckedDepositsQuery, currency, limit)
}

func (r *Repository) UpdateChainStatus(ctx context.Context, id int, status domain.ChainStatus) error {
	_, err := r.db.Exec(ctx, updateChainStatusQuery, status, id)
	if err != nil {
		zap.L().Error("can't update chain status", zap.Int("transactionID", id), zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) findOne(ctx context.Context, query string, args ...any) (*domain.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		zap.L().Error("can't find transaction", zap.Error(err))
		return nil, err
	}
	return t, nil
}

func (r *Repository) findMany(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't get transactions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			zap.L().Error("can't scan transaction", zap.Error(err))
			return nil, err
		}
		transactions = append(transactions, *t)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("can't iterate transactions", zap.Error(err))
		return nil, err
	}
	return transactions, nil
}
