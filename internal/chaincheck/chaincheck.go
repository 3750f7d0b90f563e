// Package chaincheck looks pending USDT deposits up on the TRON network.
//
// The result only annotates the deposit for the reviewing administrator.
// Balances change through the approval commit alone.
package chaincheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/GlebRadaev/exchange/internal/config"
	"github.com/GlebRadaev/exchange/internal/domain"
	"github.com/GlebRadaev/exchange/internal/metrics"
	"github.com/GlebRadaev/exchange/pkg/clients"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -source=chaincheck.go -destination=mock_chaincheck.go -package=chaincheck

const (
	maxRetries    = 3
	retryInterval = time.Second
	batchLimit    = 100
	workers       = 5

	apiKeyHeader  = "TRON-PRO-API-KEY"
	transferEvent = "Transfer"
	// usdtDecimals is the TRC20 USDT token precision; event values are in base units.
	usdtDecimals = 6
)

var ErrUnexpectedStatus = errors.New("unexpected status code")

type Repo interface {
	FindUncheckedDeposits(ctx context.Context, currency domain.Currency, limit uint32) ([]domain.Transaction, error)
	UpdateChainStatus(ctx context.Context, id int, status domain.ChainStatus) error
}

type eventsResponse struct {
	Data    []event `json:"data"`
	Success bool    `json:"success"`
}

type event struct {
	EventName       string `json:"event_name"`
	ContractAddress string `json:"contract_address"`
	Result          struct {
		Value string `json:"value"`
	} `json:"result"`
}

type Service struct {
	url        string
	apiKey     string
	contract   string
	repo       Repo
	client     clients.HTTPClientI
	limit      uint32
	workerPool WorkerPoolI
	interval   time.Duration
	inFlight   sync.Map
}

func New(cfg *config.Config, repo Repo, client clients.HTTPClientI) *Service {
	return &Service{
		url:        cfg.TronAPIAddress,
		apiKey:     cfg.TronAPIKey,
		contract:   cfg.USDTContract,
		repo:       repo,
		client:     client,
		limit:      batchLimit,
		workerPool: NewWorkerPool(workers),
		interval:   cfg.ChainCheckInterval,
	}
}

// Start polls until ctx is cancelled. The returned channel is closed once the poller has stopped.
func (s *Service) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	zap.L().Info("chain check started", zap.Duration("interval", s.interval))
	go func() {
		defer close(done)
		defer s.workerPool.Close()
		s.run(ctx)
	}()
	return done
}

func (s *Service) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("chain check stopped")
			return
		case <-ticker.C:
			s.processDeposits(ctx)
		}
	}
}

func (s *Service) processDeposits(ctx context.Context) {
	deposits, err := s.repo.FindUncheckedDeposits(ctx, domain.CurrencyUSDT, s.limit)
	if err != nil {
		zap.L().Error("failed to fetch deposits for chain check", zap.Error(err))
		return
	}

	var g errgroup.Group
	for _, deposit := range deposits {
		if _, loaded := s.inFlight.LoadOrStore(deposit.ID, struct{}{}); loaded {
			continue
		}

		g.Go(func() error {
			err := s.workerPool.AddTask(ctx, func() error {
				defer s.inFlight.Delete(deposit.ID)
				return s.checkDeposit(ctx, deposit)
			})
			if err != nil {
				s.inFlight.Delete(deposit.ID)
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Error("chain check batch interrupted", zap.Error(err))
	}
}

func (s *Service) checkDeposit(ctx context.Context, deposit domain.Transaction) error {
	body, err := s.fetchEvents(ctx, deposit.TransactionHash)
	if err != nil {
		return fmt.Errorf("deposit %d: %w", deposit.ID, err)
	}

	var response eventsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return fmt.Errorf("deposit %d: failed to parse events: %w", deposit.ID, err)
	}

	status := s.classify(response.Data, deposit.Amount)
	metrics.ChainChecks.WithLabelValues(string(status)).Inc()
	if status == deposit.ChainStatus {
		return nil
	}
	if err := s.repo.UpdateChainStatus(ctx, deposit.ID, status); err != nil {
		return fmt.Errorf("deposit %d: failed to store chain status: %w", deposit.ID, err)
	}
	zap.L().Info("deposit chain status updated",
		zap.Int("transactionID", deposit.ID),
		zap.String("hash", deposit.TransactionHash),
		zap.String("chainStatus", string(status)),
	)
	return nil
}

// classify reports confirmed when one USDT Transfer event carries exactly amount.
func (s *Service) classify(events []event, amount decimal.Decimal) domain.ChainStatus {
	if len(events) == 0 {
		return domain.ChainNotFound
	}
	for _, e := range events {
		if e.EventName != transferEvent || e.ContractAddress != s.contract {
			continue
		}
		value, err := decimal.NewFromString(e.Result.Value)
		if err != nil {
			continue
		}
		if value.Shift(-usdtDecimals).Equal(amount) {
			return domain.ChainConfirmed
		}
	}
	return domain.ChainMismatch
}

func (s *Service) fetchEvents(ctx context.Context, hash string) ([]byte, error) {
	url := s.url + "/v1/transactions/" + hash + "/events"
	var headers http.Header
	if s.apiKey != "" {
		headers = http.Header{apiKeyHeader: []string{s.apiKey}}
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		statusCode, respBody, respHeaders, err := s.client.Get(ctx, url, headers)
		if err != nil {
			lastErr = err
			if err := sleep(ctx, retryInterval*time.Duration(attempt)); err != nil {
				return nil, err
			}
			continue
		}

		switch statusCode {
		case http.StatusOK:
			return respBody, nil
		case http.StatusNotFound:
			return []byte(`{"data":[]}`), nil
		case http.StatusTooManyRequests:
			lastErr = fmt.Errorf("%w: %d", ErrUnexpectedStatus, statusCode)
			wait := retryAfter(respHeaders, attempt)
			zap.L().Warn("rate limited by TRON API", zap.Int("attempt", attempt), zap.Duration("retryAfter", wait))
			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, statusCode)
		}
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}

func retryAfter(headers http.Header, attempt int) time.Duration {
	if seconds, err := strconv.Atoi(headers.Get("Retry-After")); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	return retryInterval * time.Duration(attempt)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
