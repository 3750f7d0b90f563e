package repo

import (
	"github.com/GlebRadaev/exchange/internal/pg"
	transactionrepo "github.com/GlebRadaev/exchange/internal/repo/transaction-repo"
	userrepo "github.com/GlebRadaev/exchange/internal/repo/user-repo"
	walletrepo "github.com/GlebRadaev/exchange/internal/repo/wallet-repo"
)

type Repositories struct {
	UserRepo        *userrepo.Repository
	WalletRepo      *walletrepo.Repository
	TransactionRepo *transactionrepo.Repository
}

// New builds the repositories on conn. Pass a *pg.DB so queries join the
// transaction opened by pg.TxManager.
func New(conn pg.Database) *Repositories {
	return &Repositories{
		UserRepo:        userrepo.New(conn),
		WalletRepo:      walletrepo.New(conn),
		TransactionRepo: transactionrepo.New(conn),
	}
}
