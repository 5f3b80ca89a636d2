package service

import (
	"net/http"

	commonerrors "github.com/clipstream/clipstream-backend/internal/common/errors"
)

var (
	errValidation = commonerrors.NewDomainError(
		"VALIDATION_FAILED",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"request validation failed",
	)

	errEmailTaken = commonerrors.NewDomainError(
		"EMAIL_TAKEN",
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"email already registered",
	)
)
