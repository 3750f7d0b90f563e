package transactions

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/GlebRadaev/exchange/internal/domain"
	"github.com/GlebRadaev/exchange/internal/dto"
	"github.com/GlebRadaev/exchange/internal/handlers/httperr"
	"github.com/GlebRadaev/exchange/internal/service/transactionservice"
	"github.com/GlebRadaev/exchange/pkg/auth"
	"github.com/GlebRadaev/exchange/pkg/utils"
	"github.com/go-chi/chi/v5"
)

//go:generate mockgen -source=transactions.go -destination=mock_transactions.go -package=transactions

type Service interface {
	SubmitDeposit(ctx context.Context, userID int, req transactionservice.DepositRequest) (*domain.Transaction, error)
	RequestWithdrawal(ctx context.Context, userID int, req transactionservice.WithdrawalRequest) (*domain.Transaction, error)
	Cancel(ctx context.Context, userID, id int) (*domain.Transaction, error)
	List(ctx context.Context, userID int, filter domain.TransactionFilter) ([]domain.Transaction, error)
}

type TransactionHandler struct {
	transactionService Service
}

func New(transactionService Service) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

func currencyOf(s string) domain.Currency {
	return domain.Currency(strings.ToUpper(strings.TrimSpace(s)))
}

// SubmitDeposit godoc
//
//	@Summary		Submit a deposit
//	@Description	Register a deposit for admin review. USDT deposits need the 64-hex TRON transaction id.
//	@Description	An optional Idempotency-Key header makes retries safe.
//	@Tags			Transactions
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			Idempotency-Key	header		string					false	"Client generated retry key"
//	@Param			request			body		dto.DepositRequestDTO	true	"Deposit"
//	@Success		201				{object}	dto.TransactionResponseDTO
//	@Failure		400				{object}	utils.Response	"Invalid deposit"
//	@Failure		401				{object}	utils.Response	"User not authorized"
//	@Failure		404				{object}	utils.Response	"Wallet not found"
//	@Failure		409				{object}	utils.Response	"Hash already submitted"
//	@Failure		500				{object}	utils.Response	"Internal server error"
//	@Router			/api/user/deposits [post]
func (h *TransactionHandler) SubmitDeposit(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.DepositRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	deposit, err := h.transactionService.SubmitDeposit(r.Context(), userID, transactionservice.DepositRequest{
		Currency:        currencyOf(req.Currency),
		Amount:          req.Amount,
		TransactionHash: req.TransactionHash,
		WalletAddress:   req.WalletAddress,
		FileKey:         req.FileKey,
	})
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.TransactionFrom(*deposit))
}

// RequestWithdrawal godoc
//
//	@Summary		Request a withdrawal
//	@Description	Queue a withdrawal to an external address. The amount must fit the wallet's available balance.
//	@Tags			Transactions
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			Idempotency-Key	header		string						false	"Client generated retry key"
//	@Param			request			body		dto.WithdrawalRequestDTO	true	"Withdrawal"
//	@Success		201				{object}	dto.TransactionResponseDTO
//	@Failure		400				{object}	utils.Response	"Invalid withdrawal"
//	@Failure		401				{object}	utils.Response	"User not authorized"
//	@Failure		402				{object}	utils.Response	"Insufficient balance"
//	@Failure		404				{object}	utils.Response	"Wallet not found"
//	@Failure		500				{object}	utils.Response	"Internal server error"
//	@Router			/api/user/withdrawals [post]
func (h *TransactionHandler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.WithdrawalRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	withdrawal, err := h.transactionService.RequestWithdrawal(r.Context(), userID, transactionservice.WithdrawalRequest{
		Currency:      currencyOf(req.Currency),
		Amount:        req.Amount,
		WalletAddress: req.WalletAddress,
	})
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.TransactionFrom(*withdrawal))
}

// Cancel godoc
//
//	@Summary		Cancel a pending transaction
//	@Tags			Transactions
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int	true	"Transaction id"
//	@Success		200	{object}	dto.TransactionResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid id"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"Transaction not found"
//	@Failure		409	{object}	utils.Response	"Transaction is not pending"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/user/transactions/{id}/cancel [post]
func (h *TransactionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	cancelled, err := h.transactionService.Cancel(r.Context(), userID, id)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.TransactionFrom(*cancelled))
}

// List godoc
//
//	@Summary		Transaction history
//	@Description	The user's deposits and withdrawals, newest first.
//	@Tags			Transactions
//	@Security		BearerAuth
//	@Produce		json
//	@Param			type	query		string	false	"deposit or withdrawal"
//	@Param			status	query		string	false	"pending, approved, rejected or cancelled"
//	@Success		200		{array}		dto.TransactionResponseDTO
//	@Success		204		{object}	utils.Response	"No transactions"
//	@Failure		400		{object}	utils.Response	"Unknown filter value"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/user/transactions [get]
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	query := r.URL.Query()
	filter := domain.TransactionFilter{
		Type:   domain.TransactionType(strings.ToLower(query.Get("type"))),
		Status: domain.TransactionStatus(strings.ToLower(query.Get("status"))),
	}
	transactions, err := h.transactionService.List(r.Context(), userID, filter)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	if len(transactions) == 0 {
		utils.RespondWithJSON(w, http.StatusNoContent, nil)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.TransactionsFrom(transactions))
}
