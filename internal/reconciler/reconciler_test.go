package reconciler

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func queue(amounts ...string) []PendingWithdrawal {
	pending := make([]PendingWithdrawal, len(amounts))
	for i, a := range amounts {
		pending[i] = PendingWithdrawal{
			ID:        i + 1,
			Amount:    decimal.RequireFromString(a),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return pending
}

type expectedRow struct {
	available  string
	canApprove bool
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name           string
		balance        string
		pending        []PendingWithdrawal
		expectedRows   []expectedRow
		availableAfter string
	}{
		{
			name:    "Later request does not fit after the first",
			balance: "100",
			pending: queue("60", "50"),
			expectedRows: []expectedRow{
				{"100", true},
				{"40", false},
			},
			availableAfter: "40",
		},
		{
			name:    "Third equal request exceeds what is left",
			balance: "100",
			pending: queue("40", "40", "40"),
			expectedRows: []expectedRow{
				{"100", true},
				{"60", true},
				{"20", false},
			},
			availableAfter: "20",
		},
		{
			name:           "Empty queue",
			balance:        "50",
			pending:        nil,
			expectedRows:   []expectedRow{},
			availableAfter: "50",
		},
		{
			name:    "Unapprovable request reserves nothing",
			balance: "100",
			pending: queue("30", "80", "70"),
			expectedRows: []expectedRow{
				{"100", true},
				{"70", false},
				{"70", true},
			},
			availableAfter: "0",
		},
		{
			name:    "Amount equal to available is approvable",
			balance: "25.5",
			pending: queue("25.5"),
			expectedRows: []expectedRow{
				{"25.5", true},
			},
			availableAfter: "0",
		},
		{
			name:    "One cent over available is not approvable",
			balance: "25.5",
			pending: queue("25.51"),
			expectedRows: []expectedRow{
				{"25.5", false},
			},
			availableAfter: "25.5",
		},
		{
			name:    "Zero balance approves nothing",
			balance: "0",
			pending: queue("0.000001", "10"),
			expectedRows: []expectedRow{
				{"0", false},
				{"0", false},
			},
			availableAfter: "0",
		},
		{
			name:    "Negative balance approves nothing",
			balance: "-5",
			pending: queue("1"),
			expectedRows: []expectedRow{
				{"-5", false},
			},
			availableAfter: "-5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balance := decimal.RequireFromString(tt.balance)
			result, err := Reconcile(balance, tt.pending)
			require.NoError(t, err)

			assert.True(t, balance.Equal(result.CurrentBalance))
			assert.True(t, decimal.RequireFromString(tt.availableAfter).Equal(result.AvailableAfter),
				"available after: got %s", result.AvailableAfter)
			require.Len(t, result.Rows, len(tt.expectedRows))
			for i, want := range tt.expectedRows {
				row := result.Rows[i]
				assert.Equal(t, tt.pending[i].ID, row.ID)
				assert.True(t, decimal.RequireFromString(want.available).Equal(row.AvailableBalance),
					"row %d available: got %s want %s", i, row.AvailableBalance, want.available)
				assert.Equal(t, want.canApprove, row.CanApprove, "row %d", i)
			}
		})
	}
}

func TestReconcile_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		pending []PendingWithdrawal
	}{
		{
			name:    "Negative amount",
			pending: queue("10", "-1"),
		},
		{
			name:    "Zero amount",
			pending: queue("0"),
		},
		{
			name: "Out of order",
			pending: []PendingWithdrawal{
				{ID: 1, Amount: decimal.NewFromInt(1), CreatedAt: base.Add(time.Minute)},
				{ID: 2, Amount: decimal.NewFromInt(1), CreatedAt: base},
			},
		},
		{
			name: "Tie broken by descending id",
			pending: []PendingWithdrawal{
				{ID: 2, Amount: decimal.NewFromInt(1), CreatedAt: base},
				{ID: 1, Amount: decimal.NewFromInt(1), CreatedAt: base},
			},
		},
		{
			name: "Duplicate entry",
			pending: []PendingWithdrawal{
				{ID: 1, Amount: decimal.NewFromInt(1), CreatedAt: base},
				{ID: 1, Amount: decimal.NewFromInt(1), CreatedAt: base},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reconcile(decimal.NewFromInt(100), tt.pending)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestReconcile_TiesResolvedByID(t *testing.T) {
	pending := []PendingWithdrawal{
		{ID: 7, Amount: decimal.NewFromInt(70), CreatedAt: base},
		{ID: 3, Amount: decimal.NewFromInt(60), CreatedAt: base},
	}
	Sort(pending)

	result, err := Reconcile(decimal.NewFromInt(100), pending)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Rows[0].ID)
	assert.True(t, result.Rows[0].CanApprove)
	assert.Equal(t, 7, result.Rows[1].ID)
	assert.False(t, result.Rows[1].CanApprove)
}

func TestReconcile_Properties(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	for iter := 0; iter < 500; iter++ {
		balance := decimal.New(rnd.Int63n(100000), -2)
		n := rnd.Intn(12)
		pending := make([]PendingWithdrawal, n)
		for i := range pending {
			pending[i] = PendingWithdrawal{
				ID:        i + 1,
				Amount:    decimal.New(rnd.Int63n(50000)+1, -2),
				CreatedAt: base.Add(time.Duration(rnd.Intn(3)) * time.Second * time.Duration(i)),
			}
		}
		Sort(pending)

		first, err := Reconcile(balance, pending)
		require.NoError(t, err)
		second, err := Reconcile(balance, pending)
		require.NoError(t, err)
		assert.Equal(t, first, second, "reconcile must be deterministic")

		reserved := decimal.Zero
		for _, row := range first.Rows {
			assert.True(t, balance.Sub(reserved).Equal(row.AvailableBalance))
			assert.Equal(t, row.Amount.LessThanOrEqual(row.AvailableBalance), row.CanApprove)
			if row.CanApprove {
				reserved = reserved.Add(row.Amount)
			}
		}
		assert.True(t, reserved.LessThanOrEqual(balance), "reserved %s exceeds balance %s", reserved, balance)
		assert.True(t, balance.Sub(reserved).Equal(first.AvailableAfter))
	}
}
