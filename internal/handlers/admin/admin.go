package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/GlebRadaev/exchange/internal/domain"
	"github.com/GlebRadaev/exchange/internal/dto"
	"github.com/GlebRadaev/exchange/internal/handlers/httperr"
	"github.com/GlebRadaev/exchange/internal/service/approvalservice"
	"github.com/GlebRadaev/exchange/pkg/utils"
	"github.com/go-chi/chi/v5"
)

//go:generate mockgen -source=admin.go -destination=mock_admin.go -package=admin

type Service interface {
	ListPendingDeposits(ctx context.Context) ([]domain.Transaction, error)
	ListPendingWithdrawals(ctx context.Context) ([]approvalservice.WithdrawalGroup, error)
	Approve(ctx context.Context, id int) (*domain.Transaction, error)
	Reject(ctx context.Context, id int, reason string) (*domain.Transaction, error)
}

type AdminHandler struct {
	approvalService Service
}

func New(approvalService Service) *AdminHandler {
	return &AdminHandler{
		approvalService: approvalService,
	}
}

// ListPendingDeposits godoc
//
//	@Summary		Pending deposits
//	@Description	Deposits awaiting review, oldest first, with the TRON lookup result.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.TransactionResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		403	{object}	utils.Response	"Admin role required"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/deposits/pending [get]
func (h *AdminHandler) ListPendingDeposits(w http.ResponseWriter, r *http.Request) {
	deposits, err := h.approvalService.ListPendingDeposits(r.Context())
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.TransactionsFrom(deposits))
}

// ListPendingWithdrawals godoc
//
//	@Summary		Pending withdrawals
//	@Description	Pending withdrawals grouped per wallet. Each row carries the balance left for it after
//	@Description	the older approvable requests of the same wallet, and whether it can still be approved.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.WithdrawalGroupDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		403	{object}	utils.Response	"Admin role required"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/withdrawals/pending [get]
func (h *AdminHandler) ListPendingWithdrawals(w http.ResponseWriter, r *http.Request) {
	groups, err := h.approvalService.ListPendingWithdrawals(r.Context())
	if err != nil {
		httperr.Respond(w, err)
		return
	}

	response := make([]dto.WithdrawalGroupDTO, len(groups))
	for i, g := range groups {
		rows := make([]dto.PendingWithdrawalDTO, len(g.Withdrawals))
		for j, row := range g.Withdrawals {
			rows[j] = dto.PendingWithdrawalDTO{
				TransactionResponseDTO: dto.TransactionFrom(row.Transaction),
				AvailableBalance:       row.AvailableBalance,
				CanApprove:             row.CanApprove,
			}
		}
		response[i] = dto.WithdrawalGroupDTO{
			UserID:         g.UserID,
			WalletID:       g.WalletID,
			Currency:       string(g.Currency),
			CurrentBalance: g.CurrentBalance,
			AvailableAfter: g.AvailableAfter,
			Withdrawals:    rows,
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// Approve godoc
//
//	@Summary		Approve a pending transaction
//	@Description	Credits a deposit or debits a withdrawal. Withdrawals are re-checked against the locked balance.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int	true	"Transaction id"
//	@Success		200	{object}	dto.DecisionResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid id"
//	@Failure		402	{object}	utils.Response	"Insufficient balance"
//	@Failure		404	{object}	utils.Response	"Transaction not found"
//	@Failure		409	{object}	utils.Response	"Transaction is not pending"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/transactions/{id}/approve [post]
func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := transactionID(w, r)
	if !ok {
		return
	}
	approved, err := h.approvalService.Approve(r.Context(), id)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.DecisionResponseDTO{
		Message:     "Transaction approved",
		Transaction: dto.TransactionFrom(*approved),
	})
}

// Reject godoc
//
//	@Summary		Reject a pending transaction
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"Transaction id"
//	@Param			request	body		dto.RejectRequestDTO	true	"Reason shown to the user"
//	@Success		200		{object}	dto.DecisionResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid id or missing reason"
//	@Failure		404		{object}	utils.Response	"Transaction not found"
//	@Failure		409		{object}	utils.Response	"Transaction is not pending"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/transactions/{id}/reject [post]
func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := transactionID(w, r)
	if !ok {
		return
	}
	var req dto.RejectRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	rejected, err := h.approvalService.Reject(r.Context(), id, req.RejectionReason)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.DecisionResponseDTO{
		Message:     "Transaction rejected",
		Transaction: dto.TransactionFrom(*rejected),
	})
}

func transactionID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid transaction id")
		return 0, false
	}
	return id, true
}
