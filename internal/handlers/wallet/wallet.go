package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/GlebRadaev/exchange/internal/domain"
	"github.com/GlebRadaev/exchange/internal/dto"
	"github.com/GlebRadaev/exchange/internal/handlers/httperr"
	"github.com/GlebRadaev/exchange/internal/service/walletservice"
	"github.com/GlebRadaev/exchange/pkg/auth"
	"github.com/GlebRadaev/exchange/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=wallet.go -destination=mock_wallet.go -package=wallet

type Service interface {
	CreateWallet(ctx context.Context, userID int, currency domain.Currency) (*domain.Wallet, error)
	GetWallets(ctx context.Context, userID int) ([]walletservice.WalletView, error)
	GetWalletBalance(ctx context.Context, userID int, currency domain.Currency) (*walletservice.WalletView, error)
}

type WalletHandler struct {
	walletService Service
}

func New(walletService Service) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
	}
}

// CreateWallet godoc
//
//	@Summary		Open a wallet
//	@Description	Create the user's wallet for a currency. One wallet per currency.
//	@Tags			Wallets
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CreateWalletRequestDTO	true	"Wallet currency"
//	@Success		201		{object}	dto.WalletResponseDTO
//	@Failure		400		{object}	utils.Response	"Unsupported currency"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		409		{object}	utils.Response	"Wallet already exists"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/user/wallets [post]
func (h *WalletHandler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.CreateWalletRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	currency := domain.Currency(strings.ToUpper(strings.TrimSpace(req.Currency)))
	wallet, err := h.walletService.CreateWallet(r.Context(), userID, currency)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, walletResponse(*wallet, wallet.Balance))
}

// GetWallets godoc
//
//	@Summary		List wallets
//	@Description	Wallets of the authenticated user with the committed balance and the balance still
//	@Description	available once every approvable pending withdrawal is paid out.
//	@Tags			Wallets
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.WalletResponseDTO
//	@Success		204	{object}	utils.Response	"No wallets yet"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/user/wallets [get]
func (h *WalletHandler) GetWallets(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	wallets, err := h.walletService.GetWallets(r.Context(), userID)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	if len(wallets) == 0 {
		utils.RespondWithJSON(w, http.StatusNoContent, nil)
		return
	}

	response := make([]dto.WalletResponseDTO, len(wallets))
	for i, view := range wallets {
		response[i] = walletResponse(view.Wallet, view.Available)
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// GetWallet godoc
//
//	@Summary		Wallet balance
//	@Description	Committed and available balance of the user's wallet in one currency.
//	@Tags			Wallets
//	@Security		BearerAuth
//	@Produce		json
//	@Param			currency	path		string	true	"USDT or JOD"
//	@Success		200			{object}	dto.WalletResponseDTO
//	@Failure		400			{object}	utils.Response	"Unsupported currency"
//	@Failure		401			{object}	utils.Response	"User not authorized"
//	@Failure		404			{object}	utils.Response	"Wallet not found"
//	@Failure		500			{object}	utils.Response	"Internal server error"
//	@Router			/api/user/wallets/{currency} [get]
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	currency := domain.Currency(strings.ToUpper(chi.URLParam(r, "currency")))
	view, err := h.walletService.GetWalletBalance(r.Context(), userID, currency)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, walletResponse(view.Wallet, view.Available))
}

func walletResponse(wallet domain.Wallet, available decimal.Decimal) dto.WalletResponseDTO {
	return dto.WalletResponseDTO{
		ID:        wallet.ID,
		Currency:  string(wallet.Currency),
		Balance:   wallet.Balance,
		Available: available,
		CreatedAt: wallet.CreatedAt,
		UpdatedAt: wallet.UpdatedAt,
	}
}
