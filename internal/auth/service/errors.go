package service

import (
	"net/http"

	commonerrors "github.com/clipstream/clipstream-backend/internal/common/errors"
)

var (
	// ErrInvalidCredentials covers both "no such account" and "wrong password"
	// on login; the two cases are indistinguishable to the caller.
	ErrInvalidCredentials = commonerrors.NewDomainError(
		"INVALID_CREDENTIALS",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"invalid username or password",
	)

	ErrWrongPassword = commonerrors.NewDomainError(
		"WRONG_PASSWORD",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"current password is incorrect",
	)

	ErrUsernameTaken = commonerrors.NewDomainError(
		"USERNAME_TAKEN",
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"username already taken",
	)

	ErrEmailTaken = commonerrors.NewDomainError(
		"EMAIL_TAKEN",
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"email already registered",
	)

	ErrValidationFailed = commonerrors.NewDomainError(
		"VALIDATION_FAILED",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"request validation failed",
	)

	// Token verification failures. Expired is reported separately because the
	// refresh endpoint tells the client to log in again, while a malformed or
	// forged token is simply rejected.
	ErrTokenExpired = commonerrors.NewDomainError(
		"TOKEN_EXPIRED",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"token has expired",
	)

	ErrTokenInvalid = commonerrors.NewDomainError(
		"TOKEN_INVALID",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"token is invalid",
	)

	ErrTokenMalformed = commonerrors.NewDomainError(
		"TOKEN_MALFORMED",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"token is malformed",
	)

	ErrRefreshTokenMissing = commonerrors.NewDomainError(
		"REFRESH_TOKEN_MISSING",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"refresh token is required",
	)

	// ErrRefreshTokenSuperseded means the presented token verified fine but is
	// no longer the one in the account's session slot: it was already rotated,
	// revoked, or replaced by a newer login.
	ErrRefreshTokenSuperseded = commonerrors.NewDomainError(
		"REFRESH_TOKEN_SUPERSEDED",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"refresh token is no longer valid",
	)
)
