package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GlebRadaev/exchange/internal/domain"
	"github.com/GlebRadaev/exchange/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*Relay, *MockPublisher) {
	ctrl := gomock.NewController(t)
	bus := NewMockPublisher(ctrl)
	return NewRelay(bus), bus
}

func approvedWithdrawal() *domain.Transaction {
	return &domain.Transaction{
		ID:        3,
		UserID:    7,
		WalletID:  10,
		Type:      domain.TransactionWithdrawal,
		Currency:  domain.CurrencyUSDT,
		Amount:    decimal.RequireFromString("60"),
		Status:    domain.StatusApproved,
		UpdatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRelay_NotifyStatusChange(t *testing.T) {
	relay, bus := NewMock(t)
	change := StatusChangeOf(approvedWithdrawal())
	want := Event{Kind: KindStatusChange, Data: change}

	gomock.InOrder(
		bus.EXPECT().Publish(gomock.Any(), "user:7", want).Return(nil),
		bus.EXPECT().Publish(gomock.Any(), AdminChannel, want).Return(nil),
	)

	relay.NotifyStatusChange(context.Background(), 7, change)
}

func TestRelay_PublishErrorsAreSwallowed(t *testing.T) {
	relay, bus := NewMock(t)
	change := StatusChangeOf(approvedWithdrawal())
	failed := metrics.Notifications.WithLabelValues(string(KindStatusChange), metrics.ResultError)
	before := testutil.ToFloat64(failed)

	gomock.InOrder(
		bus.EXPECT().Publish(gomock.Any(), "user:7", gomock.Any()).Return(errors.New("redis down")),
		bus.EXPECT().Publish(gomock.Any(), AdminChannel, gomock.Any()).Return(nil),
	)

	assert.NotPanics(t, func() {
		relay.NotifyStatusChange(context.Background(), 7, change)
	})
	assert.Equal(t, before+1, testutil.ToFloat64(failed))
}

func TestRelay_PublishesAfterRequestContextEnds(t *testing.T) {
	relay, bus := NewMock(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bus.EXPECT().Publish(gomock.Any(), AdminChannel, gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, event Event) error {
			assert.NoError(t, ctx.Err())
			assert.Equal(t, KindNewPending, event.Kind)
			return nil
		})

	relay.NotifyNewPending(ctx, PendingSummaryOf(approvedWithdrawal()))
}

func TestStatusChangeOf_CarriesRejectionReason(t *testing.T) {
	reason := "address mismatch"
	tx := approvedWithdrawal()
	tx.Status = domain.StatusRejected
	tx.RejectionReason = &reason

	change := StatusChangeOf(tx)

	assert.Equal(t, domain.StatusRejected, change.Status)
	assert.Equal(t, &reason, change.RejectionReason)
	assert.Equal(t, 3, change.TransactionID)
}
