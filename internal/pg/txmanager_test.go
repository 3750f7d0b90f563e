package pg

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func NewMock(t *testing.T) (*TxManager, *DB, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockDB.Close)
	return NewTXManager(mockDB), New(mockDB), mockDB
}

func TestTxManager_Begin(t *testing.T) {
	const query = `UPDATE wallets SET balance = $1 WHERE id = $2`
	errFn := errors.New("fn failed")

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		fnErr     error
		expectErr error
		beginErr  bool
	}{
		{
			name: "Commit on success",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(query)).
					WithArgs("10", 1).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "Rollback when fn fails",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(query)).
					WithArgs("10", 1).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				mock.ExpectRollback()
			},
			fnErr:     errFn,
			expectErr: errFn,
		},
		{
			name: "Begin error",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin().WillReturnError(errors.New("connection refused"))
			},
			beginErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txManager, db, mock := NewMock(t)
			tt.mockSetup(mock)

			err := txManager.Begin(context.Background(), func(ctx context.Context) error {
				if _, err := db.Exec(ctx, query, "10", 1); err != nil {
					return err
				}
				return tt.fnErr
			})

			switch {
			case tt.beginErr:
				assert.Error(t, err)
			case tt.expectErr != nil:
				assert.ErrorIs(t, err, tt.expectErr)
			default:
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTxManager_NestedBeginJoinsOuter(t *testing.T) {
	txManager, db, mock := NewMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM wallets`)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCommit()

	err := txManager.Begin(context.Background(), func(ctx context.Context) error {
		return txManager.Begin(ctx, func(ctx context.Context) error {
			_, err := db.Exec(ctx, `DELETE FROM wallets`)
			return err
		})
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
