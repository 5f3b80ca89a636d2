package http

import (
	"net/http"

	"github.com/clipstream/clipstream-backend/internal/auth/gate"
	"github.com/clipstream/clipstream-backend/internal/auth/service"
	commonhttp "github.com/clipstream/clipstream-backend/internal/common/http"
	"github.com/clipstream/clipstream-backend/internal/common/logger"
	"github.com/clipstream/clipstream-backend/internal/user/domain"
)

type registerRequest struct {
	FullName string `json:"fullname"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type loginResponse struct {
	User         domain.PublicUser `json:"user"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
}

// AuthHandler serves the credential lifecycle: register, login, refresh,
// logout, change password. Tokens are returned both as HttpOnly cookies and in
// the response body, so browser and non-browser clients use the same routes.
type AuthHandler struct {
	auth    *service.AuthService
	cookies cookieWriter
	log     *logger.Logger
}

func NewAuthHandler(auth *service.AuthService, secureCookies bool, log *logger.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, cookies: cookieWriter{secure: secureCookies}, log: log}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.auth.Register(r.Context(), service.RegisterParams{
		FullName: req.FullName,
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteSuccess(w, http.StatusCreated, user.Public(), "user registered successfully")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, pair, err := h.auth.Login(r.Context(), service.LoginParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	h.cookies.setTokenCookies(w, pair.AccessToken, pair.RefreshToken, h.auth.AccessTokenTTL(), h.auth.RefreshTokenTTL())
	commonhttp.WriteSuccess(w, http.StatusOK, loginResponse{
		User:         user.Public(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "user logged in successfully")
}

// RefreshToken accepts the refresh token from the cookie or the body. Unlike
// the auth gate, this endpoint may explain what went wrong: the caller already
// holds a refresh token, so distinguishing "expired" from "superseded" leaks
// nothing useful to an attacker.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	token := ""
	if c, err := r.Cookie(refreshTokenCookie); err == nil {
		token = c.Value
	}
	if token == "" {
		var req refreshRequest
		if err := commonhttp.DecodeJSON(r, &req); err == nil {
			token = req.RefreshToken
		}
	}

	pair, err := h.auth.Refresh(r.Context(), token)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	h.cookies.setTokenCookies(w, pair.AccessToken, pair.RefreshToken, h.auth.AccessTokenTTL(), h.auth.RefreshTokenTTL())
	commonhttp.WriteSuccess(w, http.StatusOK, pair, "access token refreshed")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	principal, ok := gate.PrincipalFromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	if err := h.auth.Logout(r.Context(), principal.UserID); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	h.cookies.clearTokenCookies(w)
	commonhttp.WriteSuccess(w, http.StatusOK, nil, "user logged out successfully")
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	principal, ok := gate.PrincipalFromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req changePasswordRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.auth.ChangePassword(r.Context(), principal.UserID, req.OldPassword, req.NewPassword); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteSuccess(w, http.StatusOK, nil, "password changed successfully")
}
