package handlers

import (
	"net/http"
	"time"

	_ "github.com/GlebRadaev/exchange/docs"
	"github.com/GlebRadaev/exchange/internal/domain"
	adminhandlers "github.com/GlebRadaev/exchange/internal/handlers/admin"
	authhandlers "github.com/GlebRadaev/exchange/internal/handlers/auth"
	eventshandlers "github.com/GlebRadaev/exchange/internal/handlers/events"
	transactionshandlers "github.com/GlebRadaev/exchange/internal/handlers/transactions"
	wallethandlers "github.com/GlebRadaev/exchange/internal/handlers/wallet"
	"github.com/GlebRadaev/exchange/internal/metrics"
	"github.com/GlebRadaev/exchange/internal/service"
	"github.com/GlebRadaev/exchange/pkg/auth"
	"github.com/GlebRadaev/exchange/pkg/idempotency"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:generate mockgen -source=handlers.go -destination=mock_handlers.go -package=handlers

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
}

type WalletHandler interface {
	CreateWallet(w http.ResponseWriter, r *http.Request)
	GetWallets(w http.ResponseWriter, r *http.Request)
	GetWallet(w http.ResponseWriter, r *http.Request)
}

type TransactionHandler interface {
	SubmitDeposit(w http.ResponseWriter, r *http.Request)
	RequestWithdrawal(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type AdminHandler interface {
	ListPendingDeposits(w http.ResponseWriter, r *http.Request)
	ListPendingWithdrawals(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type EventsHandler interface {
	UserEvents(w http.ResponseWriter, r *http.Request)
	AdminEvents(w http.ResponseWriter, r *http.Request)
}

// Options carries what the router needs besides the handlers.
// A nil Cache disables Idempotency-Key support.
type Options struct {
	JWT            auth.JWTServiceInterface
	AllowedOrigins []string
	Cache          redis.UniversalClient
	IdempotencyTTL time.Duration
}

type Handlers struct {
	AuthHandler        AuthHandler
	WalletHandler      WalletHandler
	TransactionHandler TransactionHandler
	AdminHandler       AdminHandler
	EventsHandler      EventsHandler
	opts               Options
}

func New(s *service.Services, hub eventshandlers.Hub, opts Options) *Handlers {
	return &Handlers{
		AuthHandler:        authhandlers.New(s.AuthService),
		WalletHandler:      wallethandlers.New(s.WalletService),
		TransactionHandler: transactionshandlers.New(s.TransactionService),
		AdminHandler:       adminhandlers.New(s.ApprovalService),
		EventsHandler:      eventshandlers.New(hub),
		opts:               opts,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		cors.Handler(cors.Options{
			AllowedOrigins:   h.opts.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", idempotency.HeaderKey},
			ExposedHeaders:   []string{"Authorization"},
			AllowCredentials: false,
			MaxAge:           300,
		}),
		middleware.RealIP,
		auth.QueryToken,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/user", func(r chi.Router) {
		r.Post("/register", h.AuthHandler.Register)
		r.Post("/login", h.AuthHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(h.opts.JWT))
			r.Route("/wallets", func(r chi.Router) {
				r.Post("/", h.WalletHandler.CreateWallet)
				r.Get("/", h.WalletHandler.GetWallets)
				r.Get("/{currency}", h.WalletHandler.GetWallet)
			})
			r.Group(func(r chi.Router) {
				if h.opts.Cache != nil {
					r.Use(idempotency.Middleware(h.opts.Cache, h.opts.IdempotencyTTL))
				}
				r.Post("/deposits", h.TransactionHandler.SubmitDeposit)
				r.Post("/withdrawals", h.TransactionHandler.RequestWithdrawal)
			})
			r.Get("/transactions", h.TransactionHandler.List)
			r.Post("/transactions/{id}/cancel", h.TransactionHandler.Cancel)
			r.Get("/events", h.EventsHandler.UserEvents)
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(auth.Middleware(h.opts.JWT), auth.RequireRole(string(domain.RoleAdmin)))
		r.Get("/deposits/pending", h.AdminHandler.ListPendingDeposits)
		r.Get("/withdrawals/pending", h.AdminHandler.ListPendingWithdrawals)
		r.Post("/transactions/{id}/approve", h.AdminHandler.Approve)
		r.Post("/transactions/{id}/reject", h.AdminHandler.Reject)
		r.Get("/events", h.EventsHandler.AdminEvents)
	})

	return r
}
