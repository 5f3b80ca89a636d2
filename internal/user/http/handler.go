package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/clipstream/clipstream-backend/internal/auth/gate"
	"github.com/clipstream/clipstream-backend/internal/common/constants"
	commonhttp "github.com/clipstream/clipstream-backend/internal/common/http"
	"github.com/clipstream/clipstream-backend/internal/common/logger"
	"github.com/clipstream/clipstream-backend/internal/media"
	"github.com/clipstream/clipstream-backend/internal/user/domain"
	"github.com/clipstream/clipstream-backend/internal/user/service"
)

// UserHandler serves account routes: current user, account updates, profile
// images, channel profiles, and watch history.
type UserHandler struct {
	users  *service.UserService
	stager *media.Stager
	log    *logger.Logger
}

func NewUserHandler(users *service.UserService, stager *media.Stager, log *logger.Logger) *UserHandler {
	return &UserHandler{users: users, stager: stager, log: log}
}

func (h *UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := gate.PrincipalFromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	user, err := h.users.Get(r.Context(), principal.UserID)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteSuccess(w, http.StatusOK, user.Public(), "current user fetched successfully")
}

func (h *UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	principal, ok := gate.PrincipalFromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req struct {
		FullName *string `json:"fullname"`
		Email    *string `json:"email"`
	}
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.UpdateAccount(r.Context(), principal.UserID, service.UpdateAccountParams{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteSuccess(w, http.StatusOK, user.Public(), "account updated successfully")
}

func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", h.users.UpdateAvatar)
}

func (h *UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", h.users.UpdateCoverImage)
}

type imageUpdate func(ctx context.Context, id domain.ID, staged *media.StagedFile) (*domain.User, error)

func (h *UserHandler) updateImage(w http.ResponseWriter, r *http.Request, field string, update imageUpdate) {
	principal, ok := gate.PrincipalFromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	if err := r.ParseMultipartForm(constants.MaxImageUploadSize); err != nil {
		commonhttp.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	staged, err := h.stager.StageForm(r, field, constants.MaxImageUploadSize)
	if err != nil {
		commonhttp.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer staged.Discard()

	user, err := update(r.Context(), principal.UserID, staged)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteSuccess(w, http.StatusOK, user.Public(), "profile image updated successfully")
}

// ChannelProfile handles GET /api/v1/users/channel/{username}.
func (h *UserHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	username := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/users/channel/"), "/")
	if username == "" {
		commonhttp.WriteError(w, http.StatusBadRequest, "username is required")
		return
	}

	var viewerID domain.ID
	if principal, ok := gate.PrincipalFromContext(r.Context()); ok {
		viewerID = principal.UserID
	}

	profile, err := h.users.ChannelProfile(r.Context(), username, viewerID)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteSuccess(w, http.StatusOK, profile, "channel profile fetched successfully")
}

func (h *UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	principal, ok := gate.PrincipalFromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	videos, err := h.users.WatchHistory(r.Context(), principal.UserID)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteSuccess(w, http.StatusOK, videos, "watch history fetched successfully")
}
