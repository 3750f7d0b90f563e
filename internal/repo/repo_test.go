package repo

import (
	"testing"

	"github.com/GlebRadaev/exchange/internal/pg"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := New(pg.New(mock))

	assert.NotNil(t, repo.UserRepo)
	assert.NotNil(t, repo.WalletRepo)
	assert.NotNil(t, repo.TransactionRepo)
	assert.NoError(t, mock.ExpectationsWereMet())
}
