package walletrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/GlebRadaev/exchange/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	now     = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	columns = []string{"id", "user_id", "currency", "balance", "created_at", "updated_at"}
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockDB.Close)

	return New(mockDB), mockDB
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)

	tests := []struct {
		name        string
		prepareMock func()
		expectedErr error
		expected    *domain.Wallet
	}{
		{
			name: "Wallet created",
			prepareMock: func() {
				mock.ExpectQuery(regexp.QuoteMeta(createQuery)).
					WithArgs(1, domain.CurrencyUSDT).
					WillReturnRows(pgxmock.NewRows(columns).AddRow(10, 1, domain.CurrencyUSDT, decimal.Zero, now, now))
			},
			expected: &domain.Wallet{ID: 10, UserID: 1, Currency: domain.CurrencyUSDT, Balance: decimal.Zero, CreatedAt: now, UpdatedAt: now},
		},
		{
			name: "Wallet already exists",
			prepareMock: func() {
				mock.ExpectQuery(regexp.QuoteMeta(createQuery)).
					WithArgs(1, domain.CurrencyUSDT).
					WillReturnError(&pgconn.PgError{Code: "23505"})
			},
			expectedErr: domain.ErrWalletExists,
		},
		{
			name: "Database error",
			prepareMock: func() {
				mock.ExpectQuery(regexp.QuoteMeta(createQuery)).
					WithArgs(1, domain.CurrencyUSDT).
					WillReturnError(errors.New("database error"))
			},
			expectedErr: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			wallet, err := repo.Create(context.Background(), 1, domain.CurrencyUSDT)
			if tt.expectedErr != nil {
				assert.EqualError(t, err, tt.expectedErr.Error())
				assert.Nil(t, wallet)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, wallet)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_FindByUserID(t *testing.T) {
	repo, mock := NewMock(t)

	t.Run("Wallets found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(findByUserIDQuery)).
			WithArgs(1).
			WillReturnRows(pgxmock.NewRows(columns).
				AddRow(10, 1, domain.CurrencyUSDT, decimal.RequireFromString("100.5"), now, now).
				AddRow(11, 1, domain.CurrencyJOD, decimal.RequireFromString("7.125"), now, now))

		wallets, err := repo.FindByUserID(context.Background(), 1)

		require.NoError(t, err)
		require.Len(t, wallets, 2)
		assert.Equal(t, domain.CurrencyUSDT, wallets[0].Currency)
		assert.True(t, decimal.RequireFromString("7.125").Equal(wallets[1].Balance))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No wallets", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(findByUserIDQuery)).
			WithArgs(2).
			WillReturnRows(pgxmock.NewRows(columns))

		wallets, err := repo.FindByUserID(context.Background(), 2)

		require.NoError(t, err)
		assert.NotNil(t, wallets)
		assert.Empty(t, wallets)
	})

	t.Run("Query error", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(findByUserIDQuery)).
			WithArgs(3).
			WillReturnError(errors.New("database error"))

		wallets, err := repo.FindByUserID(context.Background(), 3)

		assert.Error(t, err)
		assert.Nil(t, wallets)
	})
}

func TestRepository_FindOne(t *testing.T) {
	repo, mock := NewMock(t)

	tests := []struct {
		name        string
		prepareMock func()
		call        func() (*domain.Wallet, error)
		expectedErr error
	}{
		{
			name: "By user and currency",
			prepareMock: func() {
				mock.ExpectQuery(regexp.QuoteMeta(findByUserAndCurrencyQuery)).
					WithArgs(1, domain.CurrencyJOD).
					WillReturnRows(pgxmock.NewRows(columns).AddRow(10, 1, domain.CurrencyJOD, decimal.Zero, now, now))
			},
			call: func() (*domain.Wallet, error) {
				return repo.FindByUserAndCurrency(context.Background(), 1, domain.CurrencyJOD)
			},
		},
		{
			name: "By id",
			prepareMock: func() {
				mock.ExpectQuery(regexp.QuoteMeta(findByIDQuery)).
					WithArgs(10).
					WillReturnRows(pgxmock.NewRows(columns).AddRow(10, 1, domain.CurrencyJOD, decimal.Zero, now, now))
			},
			call: func() (*domain.Wallet, error) {
				return repo.FindByID(context.Background(), 10)
			},
		},
		{
			name: "By id for update",
			prepareMock: func() {
				mock.ExpectQuery(regexp.QuoteMeta(findByIDForUpdateQuery)).
					WithArgs(10).
					WillReturnRows(pgxmock.NewRows(columns).AddRow(10, 1, domain.CurrencyJOD, decimal.Zero, now, now))
			},
			call: func() (*domain.Wallet, error) {
				return repo.FindByIDForUpdate(context.Background(), 10)
			},
		},
		{
			name: "Not found",
			prepareMock: func() {
				mock.ExpectQuery(regexp.QuoteMeta(findByIDQuery)).
					WithArgs(99).
					WillReturnError(pgx.ErrNoRows)
			},
			call: func() (*domain.Wallet, error) {
				return repo.FindByID(context.Background(), 99)
			},
			expectedErr: domain.ErrWalletNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			wallet, err := tt.call()
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, wallet)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 10, wallet.ID)
				assert.Equal(t, domain.CurrencyJOD, wallet.Currency)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_UpdateBalance(t *testing.T) {
	repo, mock := NewMock(t)
	balance := decimal.RequireFromString("40")

	tests := []struct {
		name        string
		prepareMock func()
		expectedErr error
	}{
		{
			name: "Updated",
			prepareMock: func() {
				mock.ExpectExec(regexp.QuoteMeta(updateBalanceQuery)).
					WithArgs(balance, 10).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "Missing wallet",
			prepareMock: func() {
				mock.ExpectExec(regexp.QuoteMeta(updateBalanceQuery)).
					WithArgs(balance, 10).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			expectedErr: domain.ErrWalletNotFound,
		},
		{
			name: "Check constraint",
			prepareMock: func() {
				mock.ExpectExec(regexp.QuoteMeta(updateBalanceQuery)).
					WithArgs(balance, 10).
					WillReturnError(&pgconn.PgError{Code: "23514"})
			},
			expectedErr: &pgconn.PgError{Code: "23514"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			err := repo.UpdateBalance(context.Background(), 10, balance)
			if tt.expectedErr != nil {
				assert.EqualError(t, err, tt.expectedErr.Error())
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
