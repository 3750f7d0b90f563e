package approvalservice

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/GlebRadaev/exchange/internal/domain"
	"github.com/GlebRadaev/exchange/internal/notify"
	"github.com/GlebRadaev/exchange/internal/pg"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// store keeps rows in memory. Its Begin holds one lock for the whole unit of work,
// which serializes commits the way row locks on a shared wallet do.
type store struct {
	mu           sync.Mutex
	transactions map[int]domain.Transaction
	wallets      map[int]domain.Wallet
}

func newStore(wallets []domain.Wallet, transactions []domain.Transaction) *store {
	s := &store{
		transactions: make(map[int]domain.Transaction),
		wallets:      make(map[int]domain.Wallet),
	}
	for _, w := range wallets {
		s.wallets[w.ID] = w
	}
	for _, t := range transactions {
		s.transactions[t.ID] = t
	}
	return s
}

func (s *store) Begin(ctx context.Context, fn pg.TransactionalFn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	transactions := make(map[int]domain.Transaction, len(s.transactions))
	for k, v := range s.transactions {
		transactions[k] = v
	}
	wallets := make(map[int]domain.Wallet, len(s.wallets))
	for k, v := range s.wallets {
		wallets[k] = v
	}

	if err := fn(ctx); err != nil {
		s.transactions = transactions
		s.wallets = wallets
		return err
	}
	return nil
}

func (s *store) FindPending(_ context.Context, txType domain.TransactionType) ([]domain.Transaction, error) {
	var pending []domain.Transaction
	for _, t := range s.transactions {
		if t.Type == txType && t.Status == domain.StatusPending {
			pending = append(pending, t)
		}
	}
	return pending, nil
}

func (s *store) FindByIDForUpdate(_ context.Context, id int) (*domain.Transaction, error) {
	t, ok := s.transactions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (s *store) UpdateStatus(_ context.Context, id int, status domain.TransactionStatus, reason *string) (time.Time, error) {
	t, ok := s.transactions[id]
	if !ok || t.Status != domain.StatusPending {
		return time.Time{}, domain.ErrInvalidStateTransition
	}
	t.Status = status
	t.RejectionReason = reason
	t.UpdatedAt = time.Now()
	s.transactions[id] = t
	return t.UpdatedAt, nil
}

type walletTable struct{ *store }

func (w walletTable) FindByID(_ context.Context, id int) (*domain.Wallet, error) {
	wallet, ok := w.wallets[id]
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	return &wallet, nil
}

func (w walletTable) FindByIDForUpdate(ctx context.Context, id int) (*domain.Wallet, error) {
	return w.FindByID(ctx, id)
}

func (w walletTable) UpdateBalance(_ context.Context, id int, balance decimal.Decimal) error {
	wallet, ok := w.wallets[id]
	if !ok {
		return domain.ErrWalletNotFound
	}
	wallet.Balance = balance
	w.wallets[id] = wallet
	return nil
}

type recorder struct {
	mu      sync.Mutex
	changes []notify.StatusChange
}

func (r *recorder) NotifyStatusChange(_ context.Context, _ int, change notify.StatusChange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, change)
}

func newCommitService(s *store) (*Service, *recorder) {
	rec := &recorder{}
	return New(s, walletTable{s}, rec, s), rec
}

func TestCommit_ConcurrentApprovalsExceedingBalance(t *testing.T) {
	s := newStore(
		[]domain.Wallet{{ID: 10, UserID: 1, Currency: domain.CurrencyUSDT, Balance: decimal.NewFromInt(100)}},
		[]domain.Transaction{
			withdrawal(1, 1, 10, "60", 0),
			withdrawal(2, 1, 10, "50", 1),
		},
	)
	service, rec := newCommitService(s)

	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make([]error, 2)
	for i, id := range []int{1, 2} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, errs[i] = service.Approve(context.Background(), id)
		}()
	}
	close(start)
	wg.Wait()

	approved := 0
	for _, err := range errs {
		if err == nil {
			approved++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	}
	require.Equal(t, 1, approved)

	winner, loser := s.transactions[1], s.transactions[2]
	if errs[0] != nil {
		winner, loser = loser, winner
	}
	assert.Equal(t, domain.StatusApproved, winner.Status)
	assert.Equal(t, domain.StatusPending, loser.Status)
	assert.True(t, decimal.NewFromInt(100).Sub(winner.Amount).Equal(s.wallets[10].Balance),
		"balance %s", s.wallets[10].Balance)
	assert.Len(t, rec.changes, 1)
}

func TestCommit_ManyConcurrentApprovalsNeverOverdraw(t *testing.T) {
	var pending []domain.Transaction
	for i := 1; i <= 20; i++ {
		pending = append(pending, withdrawal(i, 1, 10, "10", i))
	}
	s := newStore([]domain.Wallet{{ID: 10, UserID: 1, Balance: decimal.NewFromInt(100)}}, pending)
	service, _ := newCommitService(s)

	var wg sync.WaitGroup
	var mu sync.Mutex
	approved := 0
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if _, err := service.Approve(context.Background(), id); err == nil {
				mu.Lock()
				approved++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, approved)
	assert.True(t, s.wallets[10].Balance.IsZero(), "balance %s", s.wallets[10].Balance)
}

func TestCommit_RejectLeavesBalanceUntouched(t *testing.T) {
	s := newStore(
		[]domain.Wallet{{ID: 10, UserID: 1, Balance: decimal.NewFromInt(100)}},
		[]domain.Transaction{withdrawal(1, 1, 10, "60", 0)},
	)
	service, rec := newCommitService(s)

	rejected, err := service.Reject(context.Background(), 1, "invalid proof")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusRejected, rejected.Status)
	stored := s.transactions[1]
	assert.Equal(t, domain.StatusRejected, stored.Status)
	require.NotNil(t, stored.RejectionReason)
	assert.Equal(t, "invalid proof", *stored.RejectionReason)
	assert.True(t, decimal.NewFromInt(100).Equal(s.wallets[10].Balance))
	require.Len(t, rec.changes, 1)
	assert.Equal(t, "invalid proof", *rec.changes[0].RejectionReason)

	_, err = service.Approve(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

type failingStatus struct{ *store }

func (f failingStatus) UpdateStatus(context.Context, int, domain.TransactionStatus, *string) (time.Time, error) {
	return time.Time{}, domain.ErrInvalidStateTransition
}

func TestCommit_FailedStatusUpdateRollsBackDebit(t *testing.T) {
	s := newStore(
		[]domain.Wallet{{ID: 10, UserID: 1, Balance: decimal.NewFromInt(100)}},
		[]domain.Transaction{withdrawal(1, 1, 10, "60", 0)},
	)
	rec := &recorder{}
	service := New(failingStatus{s}, walletTable{s}, rec, s)

	_, err := service.Approve(context.Background(), 1)

	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	assert.True(t, decimal.NewFromInt(100).Equal(s.wallets[10].Balance), "balance %s", s.wallets[10].Balance)
	assert.Equal(t, domain.StatusPending, s.transactions[1].Status)
	assert.Empty(t, rec.changes)
}
