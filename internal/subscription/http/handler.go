package http

import (
	"net/http"
	"strings"

	"github.com/clipstream/clipstream-backend/internal/auth/gate"
	commonhttp "github.com/clipstream/clipstream-backend/internal/common/http"
	"github.com/clipstream/clipstream-backend/internal/common/logger"
	"github.com/clipstream/clipstream-backend/internal/subscription/service"
)

type SubscriptionHandler struct {
	subs *service.SubscriptionService
	log  *logger.Logger
}

func NewSubscriptionHandler(subs *service.SubscriptionService, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subs: subs, log: log}
}

// Dispatch routes everything under /api/v1/subscriptions/.
func (h *SubscriptionHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	rest := pathTail(r.URL.Path, "/api/v1/subscriptions/")

	switch {
	case rest == "me/channels" && r.Method == http.MethodGet:
		h.Subscribed(w, r)
	case strings.HasSuffix(rest, "/subscribers") && r.Method == http.MethodGet:
		h.Subscribers(w, r)
	case r.Method == http.MethodPost:
		h.Toggle(w, r)
	default:
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// Toggle handles POST /api/v1/subscriptions/{channelID}.
func (h *SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	principal, ok := gate.PrincipalFromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	channelID := pathTail(r.URL.Path, "/api/v1/subscriptions/")
	if channelID == "" {
		commonhttp.WriteError(w, http.StatusBadRequest, "channel id is required")
		return
	}

	subscribed, err := h.subs.Toggle(r.Context(), string(principal.UserID), channelID)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	message := "unsubscribed successfully"
	if subscribed {
		message = "subscribed successfully"
	}
	commonhttp.WriteSuccess(w, http.StatusOK, map[string]bool{"subscribed": subscribed}, message)
}

// Subscribers handles GET /api/v1/subscriptions/{channelID}/subscribers.
func (h *SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	channelID := strings.TrimSuffix(pathTail(r.URL.Path, "/api/v1/subscriptions/"), "/subscribers")
	if channelID == "" {
		commonhttp.WriteError(w, http.StatusBadRequest, "channel id is required")
		return
	}

	users, err := h.subs.Subscribers(r.Context(), channelID)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteSuccess(w, http.StatusOK, users, "subscribers fetched successfully")
}

// Subscribed handles GET /api/v1/subscriptions/me/channels for the caller.
func (h *SubscriptionHandler) Subscribed(w http.ResponseWriter, r *http.Request) {
	principal, ok := gate.PrincipalFromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	channels, err := h.subs.SubscribedChannels(r.Context(), string(principal.UserID))
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteSuccess(w, http.StatusOK, channels, "subscribed channels fetched successfully")
}

func pathTail(path, prefix string) string {
	return strings.Trim(strings.TrimPrefix(path, prefix), "/")
}
