package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"salvage_search/internal/domain"
)

// ErrUserNotFound reports a saved search whose owner no longer exists.
var ErrUserNotFound = errors.New("user not found")

type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, email, billing_customer_id, discord_user_id, discord_linked
		FROM users
		WHERE id = $1`

	var user domain.User
	err := sqlx.GetContext(ctx, getExecutor(ctx, s.db), &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}
