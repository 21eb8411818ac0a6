package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"meteoproxy/internal/registry"
)

// AccountByCredentials looks up an account by exact username/password match.
// The password never leaves the store.
func (s *Store) AccountByCredentials(ctx context.Context, username, password string) (*registry.Account, error) {
	var account registry.Account
	err := s.db.GetContext(ctx, &account, `
		SELECT id, username, role
		FROM users
		WHERE username = ? AND password = ?`, username, password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, registry.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select account: %w", err)
	}
	return &account, nil
}
