package service

import (
	"context"
	"errors"
	"time"

	"github.com/clipstream/clipstream-backend/internal/common/clock"
	"github.com/clipstream/clipstream-backend/internal/common/crypto"
	commonerrors "github.com/clipstream/clipstream-backend/internal/common/errors"
	"github.com/clipstream/clipstream-backend/internal/common/logger"
	"github.com/clipstream/clipstream-backend/internal/user/domain"
	"github.com/clipstream/clipstream-backend/internal/user/repository"
)

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type RegisterParams struct {
	FullName string `validate:"required,max=100"`
	Email    string `validate:"required,email"`
	Username string `validate:"required,min=3,max=32,alphanum"`
	Password string `validate:"required,min=8,max=72"`
}

type LoginParams struct {
	Username string
	Email    string
	Password string `validate:"required"`
}

type AuthService struct {
	users  repository.UserRepository
	hasher crypto.PasswordHasher
	issuer *TokenIssuer
	ledger *SessionLedger
	idGen  crypto.IDGenerator
	clock  clock.Clock
	log    *logger.Logger
}

func NewAuthService(
	users repository.UserRepository,
	hasher crypto.PasswordHasher,
	issuer *TokenIssuer,
	ledger *SessionLedger,
	idGen crypto.IDGenerator,
	clk clock.Clock,
	log *logger.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		issuer: issuer,
		ledger: ledger,
		idGen:  idGen,
		clock:  clk,
		log:    log,
	}
}

func (s *AuthService) Register(ctx context.Context, params RegisterParams) (*domain.User, error) {
	params.Username = domain.NormalizeHandle(params.Username)
	params.Email = domain.NormalizeHandle(params.Email)

	if err := validate.Struct(params); err != nil {
		return nil, commonerrors.WithDetails(ErrValidationFailed, validationDetails(err)...)
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, commonerrors.ErrInternalError.WithCause(err)
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return nil, commonerrors.ErrInternalError.WithCause(err)
	}

	now := s.clock.Now().UTC()
	user := &domain.User{
		ID:           domain.ID(id),
		Username:     params.Username,
		Email:        params.Email,
		FullName:     params.FullName,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.users.Create(ctx, user)
	switch {
	case errors.Is(err, repository.ErrUsernameTaken):
		return nil, ErrUsernameTaken
	case errors.Is(err, repository.ErrEmailTaken):
		return nil, ErrEmailTaken
	case err != nil:
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"action":  "register",
		"user_id": user.ID,
	}).Infof("user registered: %s", user.Username)

	return user, nil
}

// Login verifies credentials, issues a fresh token pair, and persists the
// refresh token into the account's session slot. An account lookup miss and a
// password mismatch are reported identically.
func (s *AuthService) Login(ctx context.Context, params LoginParams) (*domain.User, TokenPair, error) {
	if params.Username == "" && params.Email == "" {
		return nil, TokenPair{}, commonerrors.WithDetails(ErrValidationFailed, "username or email is required")
	}
	if err := validate.Struct(params); err != nil {
		return nil, TokenPair{}, commonerrors.WithDetails(ErrValidationFailed, validationDetails(err)...)
	}

	var user *domain.User
	var err error
	if params.Username != "" {
		user, err = s.users.FindByUsername(ctx, params.Username)
	} else {
		user, err = s.users.FindByEmail(ctx, params.Email)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return nil, TokenPair{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, params.Password); err != nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, TokenPair{}, err
	}

	user.RefreshToken = pair.RefreshToken

	s.log.WithFields(ctx, logger.Fields{
		"action":  "login",
		"user_id": user.ID,
	}).Info("user logged in")

	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a new pair, rotating the session
// slot. A token that verifies but lost a concurrent rotation race is rejected
// as superseded, so every refresh token is usable at most once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if refreshToken == "" {
		return TokenPair{}, ErrRefreshTokenMissing
	}

	claims, err := s.issuer.VerifyRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, err
	}

	user, err := s.users.FindByID(ctx, domain.ID(claims.UserID))
	if errors.Is(err, repository.ErrNotFound) {
		return TokenPair{}, ErrRefreshTokenSuperseded
	}
	if err != nil {
		return TokenPair{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	newAccess, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		return TokenPair{}, commonerrors.ErrInternalError.WithCause(err)
	}
	newRefresh, err := s.issuer.IssueRefreshToken(user.ID)
	if err != nil {
		return TokenPair{}, commonerrors.ErrInternalError.WithCause(err)
	}

	if err := s.ledger.Rotate(ctx, user.ID, refreshToken, newRefresh); err != nil {
		return TokenPair{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"action":  "refresh",
		"user_id": user.ID,
	}).Debug("refresh token rotated")

	return TokenPair{AccessToken: newAccess, RefreshToken: newRefresh}, nil
}

func (s *AuthService) Logout(ctx context.Context, userID domain.ID) error {
	if err := s.ledger.Revoke(ctx, userID); err != nil {
		return err
	}

	s.log.WithFields(ctx, logger.Fields{
		"action":  "logout",
		"user_id": userID,
	}).Info("user logged out")

	return nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID domain.ID, oldPassword, newPassword string) error {
	if len(newPassword) < 8 || len(newPassword) > 72 {
		return commonerrors.WithDetails(ErrValidationFailed, "password must be between 8 and 72 characters")
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return commonerrors.ErrUserNotFound
	}
	if err != nil {
		return commonerrors.ErrDatabaseError.WithCause(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, oldPassword); err != nil {
		return ErrWrongPassword
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return commonerrors.ErrInternalError.WithCause(err)
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return commonerrors.ErrDatabaseError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"action":  "change_password",
		"user_id": userID,
	}).Info("password changed")

	return nil
}

// VerifyAccess is what the auth gate calls per request.
func (s *AuthService) VerifyAccess(tokenString string) (*AccessClaims, error) {
	return s.issuer.VerifyAccessToken(tokenString)
}

func (s *AuthService) RefreshTokenTTL() time.Duration {
	return s.issuer.refreshTTL
}

func (s *AuthService) AccessTokenTTL() time.Duration {
	return s.issuer.accessTTL
}

func (s *AuthService) issuePair(ctx context.Context, user *domain.User) (TokenPair, error) {
	access, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		return TokenPair{}, commonerrors.ErrInternalError.WithCause(err)
	}
	refresh, err := s.issuer.IssueRefreshToken(user.ID)
	if err != nil {
		return TokenPair{}, commonerrors.ErrInternalError.WithCause(err)
	}
	if err := s.ledger.Persist(ctx, user.ID, refresh); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
