package walletrepo

import (
	"context"
	"errors"

	"github.com/GlebRadaev/exchange/internal/domain"
	"github.com/GlebRadaev/exchange/internal/pg"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	walletColumns = "id, user_id, currency, balance, created_at, updated_at"

	createQuery = `
		INSERT INTO wallets (user_id, currency, balance)
		VALUES ($1, $2, 0)
		RETURNING ` + walletColumns

	findByUserIDQuery = `
		SELECT ` + walletColumns + `
		FROM wallets
		WHERE user_id = $1
		ORDER BY id
	`
	findByUserAndCurrencyQuery = `
		SELECT ` + walletColumns + `
		FROM wallets
		WHERE user_id = $1 AND currency = $2
	`
	findByIDQuery = `
		SELECT ` + walletColumns + `
		FROM wallets
		WHERE id = $1
	`
	findByIDForUpdateQuery = findByIDQuery + "FOR UPDATE"

	updateBalanceQuery = `
		UPDATE wallets
		SET balance = $1, updated_at = NOW()
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

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var w domain.Wallet
	if err := row.Scan(&w.ID, &w.UserID, &w.Currency, &w.Balance, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *Repository) Create(ctx context.Context, userID int, currency domain.Currency) (*domain.Wallet, error) {
	wallet, err := scanWallet(r.db.QueryRow(ctx, createQuery, userID, currency))
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return nil, domain.ErrWalletExists
		}
		zap.L().Error("can't create wallet", zap.Int("userID", userID), zap.Error(err))
		return nil, err
	}
	return wallet, nil
}

func (r *Repository) FindByUserID(ctx context.Context, userID int) ([]domain.Wallet, error) {
	rows, err := r.db.Query(ctx, findByUserIDQuery, userID)
	if err != nil {
		zap.L().Error("can't get wallets", zap.Int("userID", userID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	wallets := make([]domain.Wallet, 0)
	for rows.Next() {
		wallet, err := scanWallet(rows)
		if err != nil {
			zap.L().Error("can't scan wallet", zap.Error(err))
			return nil, err
		}
		wallets = append(wallets, *wallet)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("can't iterate wallets", zap.Error(err))
		return nil, err
	}
	return wallets, nil
}

func (r *Repository) FindByUserAndCurrency(ctx context.Context, userID int, currency domain.Currency) (*domain.Wallet, error) {
	return r.findOne(ctx, findByUserAndCurrencyQuery, userID, currency)
}

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.Wallet, error) {
	return r.findOne(ctx, findByIDQuery, id)
}

// FindByIDForUpdate locks the wallet row until the surrounding transaction ends.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id int) (*domain.Wallet, error) {
	return r.findOne(ctx, findByIDForUpdateQuery, id)
}

func (r *Repository) findOne(ctx context.Context, query string, args ...any) (*domain.Wallet, error) {
	wallet, err := scanWallet(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}
		zap.L().Error("can't find wallet", zap.Error(err))
		return nil, err
	}
	return wallet, nil
}

func (r *Repository) UpdateBalance(ctx context.Context, id int, balance decimal.Decimal) error {
	tag, err := r.db.Exec(ctx, updateBalanceQuery, balance, id)
	if err != nil {
		zap.L().Error("can't update wallet balance", zap.Int("walletID", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWalletNotFound
	}
	return nil
}
