package service

import (
	"context"
	"time"

	"github.com/GlebRadaev/exchange/internal/handlers/admin"
	"github.com/GlebRadaev/exchange/internal/handlers/auth"
	"github.com/GlebRadaev/exchange/internal/handlers/transactions"
	"github.com/GlebRadaev/exchange/internal/handlers/wallet"
	"github.com/GlebRadaev/exchange/internal/pg"
	"github.com/GlebRadaev/exchange/internal/repo"
	"github.com/GlebRadaev/exchange/internal/service/approvalservice"
	"github.com/GlebRadaev/exchange/internal/service/authservice"
	"github.com/GlebRadaev/exchange/internal/service/transactionservice"
	"github.com/GlebRadaev/exchange/internal/service/walletservice"
	pkgauth "github.com/GlebRadaev/exchange/pkg/auth"
)

type Deps struct {
	TxManager pg.TXManager
	Notifier  transactionservice.Notifier
	Hash      pkgauth.HashServiceInterface
	JWT       pkgauth.JWTServiceInterface
	TokenTTL  time.Duration
}

type Services struct {
	AuthService        auth.Service
	WalletService      wallet.Service
	TransactionService transactions.Service
	ApprovalService    admin.Service

	auth *authservice.Service
}

func New(repo *repo.Repositories, deps Deps) *Services {
	walletService := walletservice.New(repo.WalletRepo, repo.TransactionRepo)
	transactionService := transactionservice.New(repo.WalletRepo, repo.TransactionRepo, walletService, deps.Notifier, deps.TxManager)
	approvalService := approvalservice.New(repo.TransactionRepo, repo.WalletRepo, deps.Notifier, deps.TxManager)
	authService := authservice.New(repo.UserRepo, deps.Hash, deps.JWT, deps.TokenTTL)

	return &Services{
		AuthService:        authService,
		WalletService:      walletService,
		TransactionService: transactionService,
		ApprovalService:    approvalService,
		auth:               authService,
	}
}

// EnsureAdmin creates the bootstrap administrator account when it does not exist yet.
func (s *Services) EnsureAdmin(ctx context.Context, login, password string) error {
	return s.auth.EnsureAdmin(ctx, login, password)
}
