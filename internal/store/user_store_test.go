package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"finance/internal/models"
)

func TestUserStoreCreate(t *testing.T) {
	ctx := context.Background()
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO users") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 4 || args[0] != "user-1" || args[1] != "alice" || args[3] != int64(1000000) {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	store := NewUserStore(stubDB{})
	if err := store.Create(ctx, execer, "user-1", "alice", "hash", 1000000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUserStoreGetByUsername(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore(stubDB{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "FROM users WHERE username = $1") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 1 || args[0] != "alice" {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*models.User) = models.User{ID: "user-1", Username: "alice", Hash: "hash", Cash: 500}
			return nil
		},
	})
	user, err := store.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "user-1" || user.Hash != "hash" || user.Cash != 500 {
		t.Fatalf("unexpected user: %#v", user)
	}
}

func TestUserStoreGetByIDNotFound(t *testing.T) {
	store := NewUserStore(stubDB{
		getFn: func(context.Context, any, string, ...any) error {
			return sql.ErrNoRows
		},
	})
	if _, err := store.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserStoreGetForUpdateLocksRow(t *testing.T) {
	getter := stubGetter{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.HasSuffix(strings.TrimSpace(query), "FOR UPDATE") {
				t.Fatalf("expected row lock: %s", query)
			}
			*dest.(*models.User) = models.User{ID: "user-1", Cash: 10}
			return nil
		},
	}
	user, err := NewUserStore(stubDB{}).GetForUpdate(context.Background(), getter, "user-1")
	if err != nil || user.Cash != 10 {
		t.Fatalf("unexpected result: %#v %v", user, err)
	}
}

func TestUserStoreUpdateCash(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore(stubDB{})
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "UPDATE users SET cash") {
				t.Fatalf("unexpected query: %s", query)
			}
			if args[0] != int64(950000) || args[1] != "user-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	if err := store.UpdateCash(ctx, execer, "user-1", 950000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.UpdateCash(ctx, stubExecer{}, "user-1", -1); err == nil {
		t.Fatalf("expected negative balance to be refused")
	}
	missing := stubExecer{
		execFn: func(context.Context, string, ...any) (sql.Result, error) {
			return stubResult{rows: 0}, nil
		},
	}
	if err := store.UpdateCash(ctx, missing, "ghost", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserStoreUpdateHash(t *testing.T) {
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "SET hash = $1") || args[0] != "new-hash" {
				t.Fatalf("unexpected call: %s %#v", query, args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	if err := NewUserStore(stubDB{}).UpdateHash(context.Background(), execer, "user-1", "new-hash"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUserStoreUsernameExists(t *testing.T) {
	store := NewUserStore(stubDB{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "SELECT EXISTS") {
				t.Fatalf("unexpected query: %s", query)
			}
			*dest.(*bool) = args[0] == "alice"
			return nil
		},
	})
	exists, err := store.UsernameExists(context.Background(), "alice")
	if err != nil || !exists {
		t.Fatalf("expected alice to exist: %v", err)
	}
	exists, err = store.UsernameExists(context.Background(), "bob")
	if err != nil || exists {
		t.Fatalf("expected bob to be free: %v", err)
	}
}
