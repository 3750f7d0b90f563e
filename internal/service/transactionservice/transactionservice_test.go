package transactionservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GlebRadaev/exchange/internal/domain"
	"github.com/GlebRadaev/exchange/internal/notify"
	"github.com/GlebRadaev/exchange/internal/pg"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

const (
	validHash    = "7c0e1a5f3b9d2e4c6a8b0d1f3e5c7a9b2d4f6e8a0c1b3d5f7e9a2c4b6d8f0e1a"
	validAddress = "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type mocks struct {
	walletRepo      *MockWalletRepo
	transactionRepo *MockTransactionRepo
	balances        *MockBalances
	notifier        *MockNotifier
	txManager       *pg.MockTXManager
}

func NewMock(t *testing.T) (*Service, *mocks) {
	ctrl := gomock.NewController(t)
	m := &mocks{
		walletRepo:      NewMockWalletRepo(ctrl),
		transactionRepo: NewMockTransactionRepo(ctrl),
		balances:        NewMockBalances(ctrl),
		notifier:        NewMockNotifier(ctrl),
		txManager:       pg.NewMockTXManager(ctrl),
	}
	m.txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error { return fn(ctx) }).
		AnyTimes()
	return New(m.walletRepo, m.transactionRepo, m.balances, m.notifier, m.txManager), m
}

func created(t *domain.Transaction) (*domain.Transaction, error) {
	t.ID = 5
	t.Status = domain.StatusPending
	t.CreatedAt = now
	t.UpdatedAt = now
	return t, nil
}

func TestSubmitDeposit(t *testing.T) {
	service, m := NewMock(t)
	usdtWallet := &domain.Wallet{ID: 10, UserID: 1, Currency: domain.CurrencyUSDT}
	jodWallet := &domain.Wallet{ID: 11, UserID: 1, Currency: domain.CurrencyJOD}

	tests := []struct {
		name          string
		req           DepositRequest
		prepareMock   func()
		expectedChain domain.ChainStatus
		expectedError error
	}{
		{
			name: "USDT deposit",
			req: DepositRequest{
				Currency:        domain.CurrencyUSDT,
				Amount:          decimal.RequireFromString("25.5"),
				TransactionHash: "  " + validHash + " ",
				WalletAddress:   validAddress,
				FileKey:         "proofs/1.png",
			},
			prepareMock: func() {
				m.walletRepo.EXPECT().FindByUserAndCurrency(gomock.Any(), 1, domain.CurrencyUSDT).Return(usdtWallet, nil)
				m.transactionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
						assert.Equal(t, validHash, tx.TransactionHash)
						assert.Equal(t, 10, tx.WalletID)
						assert.Equal(t, domain.TransactionDeposit, tx.Type)
						return created(tx)
					})
				m.notifier.EXPECT().NotifyNewPending(gomock.Any(), gomock.Any()).
					Do(func(_ context.Context, summary notify.PendingSummary) {
						assert.Equal(t, 5, summary.TransactionID)
						assert.Equal(t, domain.TransactionDeposit, summary.Type)
					})
			},
			expectedChain: domain.ChainUnverified,
		},
		{
			name: "JOD deposit skips chain verification",
			req: DepositRequest{
				Currency: domain.CurrencyJOD,
				Amount:   decimal.RequireFromString("10.125"),
				FileKey:  "proofs/2.png",
			},
			prepareMock: func() {
				m.walletRepo.EXPECT().FindByUserAndCurrency(gomock.Any(), 1, domain.CurrencyJOD).Return(jodWallet, nil)
				m.transactionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
						return created(tx)
					})
				m.notifier.EXPECT().NotifyNewPending(gomock.Any(), gomock.Any())
			},
			expectedChain: domain.ChainSkipped,
		},
		{
			name: "Unsupported currency",
			req: DepositRequest{
				Currency: "BTC",
				Amount:   decimal.NewFromInt(1),
				FileKey:  "proofs/3.png",
			},
			prepareMock:   func() {},
			expectedError: domain.ErrInvalidCurrency,
		},
		{
			name: "Zero amount",
			req: DepositRequest{
				Currency:        domain.CurrencyUSDT,
				Amount:          decimal.Zero,
				TransactionHash: validHash,
				FileKey:         "proofs/3.png",
			},
			prepareMock:   func() {},
			expectedError: ErrInvalidAmount,
		},
		{
			name: "Too many JOD decimals",
			req: DepositRequest{
				Currency: domain.CurrencyJOD,
				Amount:   decimal.RequireFromString("1.0001"),
				FileKey:  "proofs/3.png",
			},
			prepareMock:   func() {},
			expectedError: ErrInvalidAmount,
		},
		{
			name: "Amount beyond balance column",
			req: DepositRequest{
				Currency:        domain.CurrencyUSDT,
				Amount:          domain.MaxAmount,
				TransactionHash: validHash,
				FileKey:         "proofs/3.png",
			},
			prepareMock:   func() {},
			expectedError: ErrInvalidAmount,
		},
		{
			name: "Malformed hash",
			req: DepositRequest{
				Currency:        domain.CurrencyUSDT,
				Amount:          decimal.NewFromInt(1),
				TransactionHash: "0xdeadbeef",
				FileKey:         "proofs/3.png",
			},
			prepareMock:   func() {},
			expectedError: ErrInvalidHash,
		},
		{
			name: "Malformed sender address",
			req: DepositRequest{
				Currency:        domain.CurrencyUSDT,
				Amount:          decimal.NewFromInt(1),
				TransactionHash: validHash,
				WalletAddress:   "0x52908400098527886E0F7030069857D2E4169EE7",
				FileKey:         "proofs/3.png",
			},
			prepareMock:   func() {},
			expectedError: ErrInvalidAddress,
		},
		{
			name: "Missing file key",
			req: DepositRequest{
				Currency:        domain.CurrencyUSDT,
				Amount:          decimal.NewFromInt(1),
				TransactionHash: validHash,
			},
			prepareMock:   func() {},
			expectedError: ErrFileKeyRequired,
		},
		{
			name: "Wallet missing",
			req: DepositRequest{
				Currency: domain.CurrencyJOD,
				Amount:   decimal.NewFromInt(1),
				FileKey:  "proofs/3.png",
			},
			prepareMock: func() {
				m.walletRepo.EXPECT().FindByUserAndCurrency(gomock.Any(), 1, domain.CurrencyJOD).Return(nil, domain.ErrWalletNotFound)
			},
			expectedError: domain.ErrWalletNotFound,
		},
		{
			name: "Duplicate hash",
			req: DepositRequest{
				Currency:        domain.CurrencyUSDT,
				Amount:          decimal.NewFromInt(1),
				TransactionHash: validHash,
				FileKey:         "proofs/3.png",
			},
			prepareMock: func() {
				m.walletRepo.EXPECT().FindByUserAndCurrency(gomock.Any(), 1, domain.CurrencyUSDT).Return(usdtWallet, nil)
				m.transactionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, domain.ErrDuplicateHash)
			},
			expectedError: domain.ErrDuplicateHash,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			deposit, err := service.SubmitDeposit(context.Background(), 1, tt.req)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, deposit)
			} else {
				require.NoError(t, err)
				assert.Equal(t, domain.StatusPending, deposit.Status)
				assert.Equal(t, tt.expectedChain, deposit.ChainStatus)
			}
		})
	}
}

func TestRequestWithdrawal(t *testing.T) {
	service, m := NewMock(t)
	wallet := &domain.Wallet{ID: 10, UserID: 1, Currency: domain.CurrencyUSDT, Balance: decimal.NewFromInt(100)}

	tests := []struct {
		name          string
		req           WithdrawalRequest
		prepareMock   func()
		expectedError error
	}{
		{
			name: "Fits available balance",
			req:  WithdrawalRequest{Currency: domain.CurrencyUSDT, Amount: decimal.NewFromInt(40), WalletAddress: validAddress},
			prepareMock: func() {
				m.walletRepo.EXPECT().FindByUserAndCurrency(gomock.Any(), 1, domain.CurrencyUSDT).Return(wallet, nil)
				m.balances.EXPECT().Available(gomock.Any(), wallet).Return(decimal.NewFromInt(40), nil)
				m.transactionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
						assert.Equal(t, domain.TransactionWithdrawal, tx.Type)
						assert.Equal(t, validAddress, tx.WalletAddress)
						return created(tx)
					})
				m.notifier.EXPECT().NotifyNewPending(gomock.Any(), gomock.Any())
			},
		},
		{
			name: "Exceeds available balance",
			req:  WithdrawalRequest{Currency: domain.CurrencyUSDT, Amount: decimal.RequireFromString("40.01"), WalletAddress: validAddress},
			prepareMock: func() {
				m.walletRepo.EXPECT().FindByUserAndCurrency(gomock.Any(), 1, domain.CurrencyUSDT).Return(wallet, nil)
				m.balances.EXPECT().Available(gomock.Any(), wallet).Return(decimal.NewFromInt(40), nil)
			},
			expectedError: domain.ErrInsufficientBalance,
		},
		{
			name:          "Amount beyond balance column",
			req:           WithdrawalRequest{Currency: domain.CurrencyUSDT, Amount: decimal.New(1, 30), WalletAddress: validAddress},
			prepareMock:   func() {},
			expectedError: ErrInvalidAmount,
		},
		{
			name:          "Invalid TRON address",
			req:           WithdrawalRequest{Currency: domain.CurrencyUSDT, Amount: decimal.NewFromInt(1), WalletAddress: "TNotAnAddress"},
			prepareMock:   func() {},
			expectedError: ErrInvalidAddress,
		},
		{
			name:          "Missing JOD destination",
			req:           WithdrawalRequest{Currency: domain.CurrencyJOD, Amount: decimal.NewFromInt(1), WalletAddress: " "},
			prepareMock:   func() {},
			expectedError: ErrInvalidAddress,
		},
		{
			name:          "Negative amount",
			req:           WithdrawalRequest{Currency: domain.CurrencyJOD, Amount: decimal.NewFromInt(-1), WalletAddress: "JO94CBJO0010000000000131000302"},
			prepareMock:   func() {},
			expectedError: ErrInvalidAmount,
		},
		{
			name: "Balance lookup fails",
			req:  WithdrawalRequest{Currency: domain.CurrencyUSDT, Amount: decimal.NewFromInt(1), WalletAddress: validAddress},
			prepareMock: func() {
				m.walletRepo.EXPECT().FindByUserAndCurrency(gomock.Any(), 1, domain.CurrencyUSDT).Return(wallet, nil)
				m.balances.EXPECT().Available(gomock.Any(), wallet).Return(decimal.Zero, errors.New("database error"))
			},
			expectedError: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			withdrawal, err := service.RequestWithdrawal(context.Background(), 1, tt.req)
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
				assert.Nil(t, withdrawal)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 5, withdrawal.ID)
			}
		})
	}
}

func TestCancel(t *testing.T) {
	service, m := NewMock(t)
	later := now.Add(time.Minute)

	pendingOf := func(userID int, status domain.TransactionStatus) *domain.Transaction {
		return &domain.Transaction{
			ID:       3,
			UserID:   userID,
			Type:     domain.TransactionWithdrawal,
			Currency: domain.CurrencyUSDT,
			Amount:   decimal.NewFromInt(60),
			Status:   status,
		}
	}

	tests := []struct {
		name          string
		prepareMock   func()
		expectedError error
	}{
		{
			name: "Owner cancels pending",
			prepareMock: func() {
				m.transactionRepo.EXPECT().FindByIDForUpdate(gomock.Any(), 3).Return(pendingOf(1, domain.StatusPending), nil)
				m.transactionRepo.EXPECT().UpdateStatus(gomock.Any(), 3, domain.StatusCancelled, (*string)(nil)).Return(later, nil)
				m.notifier.EXPECT().NotifyStatusChange(gomock.Any(), 1, gomock.Any()).
					Do(func(_ context.Context, _ int, change notify.StatusChange) {
						assert.Equal(t, domain.StatusCancelled, change.Status)
						assert.Equal(t, later, change.UpdatedAt)
					})
			},
		},
		{
			name: "Another user's transaction",
			prepareMock: func() {
				m.transactionRepo.EXPECT().FindByIDForUpdate(gomock.Any(), 3).Return(pendingOf(2, domain.StatusPending), nil)
			},
			expectedError: domain.ErrNotFound,
		},
		{
			name: "Already approved",
			prepareMock: func() {
				m.transactionRepo.EXPECT().FindByIDForUpdate(gomock.Any(), 3).Return(pendingOf(1, domain.StatusApproved), nil)
			},
			expectedError: domain.ErrInvalidStateTransition,
		},
		{
			name: "Missing transaction",
			prepareMock: func() {
				m.transactionRepo.EXPECT().FindByIDForUpdate(gomock.Any(), 3).Return(nil, domain.ErrNotFound)
			},
			expectedError: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			cancelled, err := service.Cancel(context.Background(), 1, 3)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, cancelled)
			} else {
				require.NoError(t, err)
				assert.Equal(t, domain.StatusCancelled, cancelled.Status)
			}
		})
	}
}

func TestList(t *testing.T) {
	service, m := NewMock(t)

	t.Run("Filtered", func(t *testing.T) {
		filter := domain.TransactionFilter{Type: domain.TransactionDeposit, Status: domain.StatusPending}
		m.transactionRepo.EXPECT().FindByUserID(gomock.Any(), 1, filter).Return([]domain.Transaction{{ID: 1}}, nil)

		list, err := service.List(context.Background(), 1, filter)

		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("Unknown status", func(t *testing.T) {
		list, err := service.List(context.Background(), 1, domain.TransactionFilter{Status: "done"})

		assert.ErrorIs(t, err, ErrInvalidFilter)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Nil(t, list)
	})
}
