package http

import (
	"net/http"
	"strings"

	"github.com/clipstream/clipstream-backend/internal/auth/gate"
	commonhttp "github.com/clipstream/clipstream-backend/internal/common/http"
	"github.com/clipstream/clipstream-backend/internal/common/logger"
	"github.com/clipstream/clipstream-backend/internal/tweet/service"
)

const routePrefix = "/api/v1/tweets"

type tweetRequest struct {
	Content string `json:"content"`
}

type TweetHandler struct {
	tweets *service.TweetService
	log    *logger.Logger
}

func NewTweetHandler(tweets *service.TweetService, log *logger.Logger) *TweetHandler {
	return &TweetHandler{tweets: tweets, log: log}
}

// Collection handles POST /api/v1/tweets.
func (h *TweetHandler) Collection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	principal, ok := gate.PrincipalFromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req tweetRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tweet, err := h.tweets.Create(r.Context(), string(principal.UserID), req.Content)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteSuccess(w, http.StatusCreated, tweet, "tweet created successfully")
}

// Item handles GET /api/v1/tweets/user/{userId} and PATCH/DELETE
// /api/v1/tweets/{id}.
func (h *TweetHandler) Item(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, routePrefix), "/")

	if strings.HasPrefix(rest, "user/") {
		if r.Method != http.MethodGet {
			commonhttp.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.listByOwner(w, r, strings.TrimPrefix(rest, "user/"))
		return
	}

	if rest == "" {
		commonhttp.WriteError(w, http.StatusBadRequest, "tweet id is required")
		return
	}

	switch r.Method {
	case http.MethodPatch:
		h.update(w, r, rest)
	case http.MethodDelete:
		h.delete(w, r, rest)
	default:
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *TweetHandler) listByOwner(w http.ResponseWriter, r *http.Request, ownerID string) {
	if ownerID == "" {
		commonhttp.WriteError(w, http.StatusBadRequest, "user id is required")
		return
	}

	tweets, err := h.tweets.ListByOwner(r.Context(), ownerID)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteSuccess(w, http.StatusOK, tweets, "tweets fetched successfully")
}

func (h *TweetHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := gate.PrincipalFromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req tweetRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tweet, err := h.tweets.Update(r.Context(), id, string(principal.UserID), req.Content)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteSuccess(w, http.StatusOK, tweet, "tweet updated successfully")
}

func (h *TweetHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := gate.PrincipalFromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	if err := h.tweets.Delete(r.Context(), id, string(principal.UserID)); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteSuccess(w, http.StatusOK, nil, "tweet deleted successfully")
}
