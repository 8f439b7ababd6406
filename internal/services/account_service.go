package services

import (
	"context"
	"errors"
	"fmt"

	"finance/internal/auth"
	"finance/internal/db"
	"finance/internal/store"
	"finance/internal/validator"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// AccountService owns registration, credentials and sign-in bookkeeping.
type AccountService struct {
	txRunner     db.TxRunner
	users        UserStore
	audit        AuditStore
	startingCash int64
	hash         func(string) (string, error)
}

func NewAccountService(txRunner db.TxRunner, users UserStore, audit AuditStore, startingCash int64) *AccountService {
	return &AccountService{
		txRunner:     txRunner,
		users:        users,
		audit:        audit,
		startingCash: startingCash,
		hash:         auth.HashPassword,
	}
}

type RegisterRequest struct {
	Username     string
	Password     string
	Confirmation string
}

func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (string, error) {
	if err := validator.Required(req.Username, req.Password); err != nil {
		return "", err
	}
	if err := validator.ConfirmPassword(req.Password, req.Confirmation); err != nil {
		return "", err
	}
	if err := validator.ValidateUsername(req.Username); err != nil {
		return "", err
	}
	hash, err := s.hash(req.Password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	userID := uuid.NewString()
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.users.Create(ctx, tx, userID, req.Username, hash, s.startingCash); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, userID, store.AuditRegister, "user", userID, map[string]any{
			"username": req.Username,
		})
	})
	if err != nil {
		if db.IsUniqueViolation(err, store.UsernameConstraint) {
			return "", ErrDuplicateUsername
		}
		return "", err
	}
	return userID, nil
}

type LoginRequest struct {
	Username string
	Password string
}

// dummyHash keeps the cost of a failed lookup close to a real comparison.
var dummyHash, _ = auth.HashPassword("not-a-real-password")

func (s *AccountService) Authenticate(ctx context.Context, req LoginRequest) (string, error) {
	if err := validator.Required(req.Username, req.Password); err != nil {
		return "", err
	}
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			auth.CheckPassword(dummyHash, req.Password)
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !auth.CheckPassword(user.Hash, req.Password) {
		return "", ErrInvalidCredentials
	}
	if err := s.logEvent(ctx, user.ID, store.AuditLogin); err != nil {
		return "", err
	}
	return user.ID, nil
}

func (s *AccountService) Logout(ctx context.Context, userID string) error {
	return s.logEvent(ctx, userID, store.AuditLogout)
}

type ChangePasswordRequest struct {
	UserID       string
	Current      string
	Password     string
	Confirmation string
}

func (s *AccountService) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	if err := validator.Required(req.Current); err != nil {
		return err
	}
	user, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.Hash, req.Current) {
		return ErrInvalidCredentials
	}
	if err := validator.ConfirmPassword(req.Password, req.Confirmation); err != nil {
		return err
	}
	hash, err := s.hash(req.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.users.UpdateHash(ctx, tx, req.UserID, hash); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, req.UserID, store.AuditPasswordChange, "user", req.UserID, nil)
	})
}

// UsernameAvailable reports whether username could be registered right now.
func (s *AccountService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	if username == "" {
		return false, nil
	}
	exists, err := s.users.UsernameExists(ctx, username)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

func (s *AccountService) logEvent(ctx context.Context, userID, action string) error {
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.audit.Log(ctx, tx, userID, action, "user", userID, nil)
	})
}
