package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/GlebRadaev/exchange/internal/chaincheck"
	"github.com/GlebRadaev/exchange/internal/config"
	"github.com/GlebRadaev/exchange/internal/handlers"
	"github.com/GlebRadaev/exchange/internal/notify"
	"github.com/GlebRadaev/exchange/internal/pg"
	"github.com/GlebRadaev/exchange/internal/repo"
	"github.com/GlebRadaev/exchange/internal/service"
	"github.com/GlebRadaev/exchange/pkg/auth"
	"github.com/GlebRadaev/exchange/pkg/clients"
	"github.com/GlebRadaev/exchange/pkg/logger"
)

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg   *config.Config
	api   *handlers.Handlers
	srv   *service.Services
	repo  *repo.Repositories
	hub   *notify.Hub
	cache redis.UniversalClient
	chain *chaincheck.Service

	errCh chan error
	wg    sync.WaitGroup
	ready bool
}

func New() *Application {
	return &Application{
		errCh: make(chan error),
	}
}

func (a *Application) Start(ctx context.Context) error {
	cfg := config.New()

	err := logger.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}

	pool, err := getPgxpool(ctx, cfg)
	if err != nil {
		zap.L().Error("build pgx pool failed: ", zap.Error(err))
		return fmt.Errorf("can't build pgx pool: %w", err)
	}
	if err := pg.RunMigrations(pool); err != nil {
		zap.L().Error("migrations failed: ", zap.Error(err))
		return fmt.Errorf("can't run migrations: %w", err)
	}

	cache, err := getRedis(ctx, cfg)
	if err != nil {
		zap.L().Error("connect to redis failed: ", zap.Error(err))
		return fmt.Errorf("can't connect to redis: %w", err)
	}

	a.cfg = cfg
	a.cache = cache
	a.hub = notify.NewHub(cfg.AllowedOrigins)
	a.repo = repo.New(pg.New(pool))

	jwtService := auth.NewJWTService(cfg.JWTSecret)
	a.srv = service.New(a.repo, service.Deps{
		TxManager: pg.NewTXManager(pool),
		Notifier:  notify.NewRelay(a.startNotifications(ctx)),
		Hash:      auth.NewHashService(bcrypt.DefaultCost),
		JWT:       jwtService,
		TokenTTL:  cfg.TokenTTL,
	})
	if err := a.srv.EnsureAdmin(ctx, cfg.AdminLogin, cfg.AdminPassword); err != nil {
		return fmt.Errorf("can't create admin account: %w", err)
	}

	a.api = handlers.New(a.srv, a.hub, handlers.Options{
		JWT:            jwtService,
		AllowedOrigins: cfg.AllowedOrigins,
		Cache:          cache,
		IdempotencyTTL: cfg.IdempotencyTTL,
	})

	if err = a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}

	a.startChainCheck(ctx)

	a.ready = true
	zap.L().Info("all systems started successfully")
	return nil
}

func getPgxpool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		return nil, err
	}
	return dbpool, nil
}

// getRedis returns nil when no Redis URL is configured.
func getRedis(ctx context.Context, cfg *config.Config) (redis.UniversalClient, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// startNotifications runs the websocket hub and returns the bus services publish to.
func (a *Application) startNotifications(ctx context.Context) notify.Publisher {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.hub.Run(ctx)
	}()

	if a.cache == nil {
		zap.L().Info("redis not configured, notifications stay in-process")
		return notify.NewLocalBus(a.hub)
	}

	bus := notify.NewRedisBus(a.cache)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := bus.Run(ctx, a.hub); err != nil && ctx.Err() == nil {
			a.errCh <- fmt.Errorf("notification subscriber exited with error: %w", err)
		}
	}()
	return bus
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router)
	server := http.Server{
		Addr:    a.cfg.Address,
		Handler: router,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(sCtx)
		if a.cache != nil {
			a.cache.Close()
		}
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server on port", zap.String("port", a.cfg.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

func (a *Application) startChainCheck(ctx context.Context) {
	if a.cfg.ChainCheckInterval <= 0 || a.cfg.TronAPIAddress == "" {
		zap.L().Info("chain check disabled")
		return
	}
	a.chain = chaincheck.New(a.cfg, a.repo.TransactionRepo, clients.NewHTTPClient(http.Header{"Accept": []string{"application/json"}}))

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-a.chain.Start(ctx)
	}()
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	close(a.errCh)
	wg.Wait()

	return appErr
}
