package events

import (
	"net/http"

	"github.com/GlebRadaev/exchange/internal/notify"
	"github.com/GlebRadaev/exchange/pkg/auth"
	"go.uber.org/zap"
)

//go:generate mockgen -source=events.go -destination=mock_events.go -package=events

type Hub interface {
	Serve(w http.ResponseWriter, r *http.Request, channel string) error
}

type EventsHandler struct {
	hub Hub
}

func New(hub Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// UserEvents godoc
//
//	@Summary		Transaction status stream
//	@Description	Websocket. Pushes a transaction.status_changed event whenever one of the user's
//	@Description	transactions is approved, rejected or cancelled. The token may be passed as ?token=.
//	@Tags			Events
//	@Security		BearerAuth
//	@Param			token	query	string	false	"JWT, for clients that cannot set headers"
//	@Success		101
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Router			/api/user/events [get]
func (h *EventsHandler) UserEvents(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)
	h.serve(w, r, notify.UserChannel(userID))
}

// AdminEvents godoc
//
//	@Summary		Admin queue stream
//	@Description	Websocket. Pushes transaction.pending_created for every new request and
//	@Description	transaction.status_changed for every decision or cancellation.
//	@Tags			Events
//	@Security		BearerAuth
//	@Param			token	query	string	false	"JWT, for clients that cannot set headers"
//	@Success		101
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		403	{object}	utils.Response	"Admin role required"
//	@Router			/api/admin/events [get]
func (h *EventsHandler) AdminEvents(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, notify.AdminChannel)
}

// serve hands the connection to the hub. A failed upgrade has already been answered.
func (h *EventsHandler) serve(w http.ResponseWriter, r *http.Request, channel string) {
	if err := h.hub.Serve(w, r, channel); err != nil {
		zap.L().Info("websocket upgrade failed", zap.String("channel", channel), zap.Error(err))
	}
}
