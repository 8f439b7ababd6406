package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"finance/internal/models"
)

var ErrNotFound = errors.New("not found")

const UsernameConstraint = "users_username_key"

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, username, hash, cash, created_at, updated_at`

func (s *UserStore) Create(ctx context.Context, tx Execer, id, username, hash string, cash int64) error {
	query := `
		INSERT INTO users (id, username, hash, cash)
		VALUES ($1, $2, $3, $4)
	`
	_, err := tx.ExecContext(ctx, query, id, username, hash, cash)
	return err
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return user, notFound(err)
}

func (s *UserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return user, notFound(err)
}

// GetForUpdate reads the user row and locks it until tx ends.
func (s *UserStore) GetForUpdate(ctx context.Context, tx Getter, userID string) (models.User, error) {
	var user models.User
	err := tx.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, userID)
	return user, notFound(err)
}

func (s *UserStore) UpdateCash(ctx context.Context, tx Execer, userID string, cash int64) error {
	if cash < 0 {
		return fmt.Errorf("update cash: negative balance %d", cash)
	}
	result, err := tx.ExecContext(ctx, `UPDATE users SET cash = $1, updated_at = NOW() WHERE id = $2`, cash, userID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (s *UserStore) UpdateHash(ctx context.Context, tx Execer, userID, hash string) error {
	result, err := tx.ExecContext(ctx, `UPDATE users SET hash = $1, updated_at = NOW() WHERE id = $2`, hash, userID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (s *UserStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
	return exists, err
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
