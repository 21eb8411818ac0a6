package store

import (
	"context"
	"fmt"
	"time"

	"meteoproxy/internal/registry"
)

// Favorites returns all favorite cities, newest-added first.
func (s *Store) Favorites(ctx context.Context) ([]registry.Favorite, error) {
	favorites := []registry.Favorite{}
	err := s.db.SelectContext(ctx, &favorites, `
		SELECT id, city_name, added_at
		FROM favorites
		ORDER BY added_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("select favorites: %w", err)
	}
	return favorites, nil
}

// AddFavorite inserts a favorite city. A duplicate name, compared
// case-insensitively by the column collation, fails with registry.ErrConflict.
func (s *Store) AddFavorite(ctx context.Context, city string, addedAt time.Time) (*registry.Favorite, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO favorites (city_name, added_at) VALUES (?, ?)",
		city, addedAt,
	)
	if isUniqueViolation(err) {
		return nil, registry.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("insert favorite: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("favorite id: %w", err)
	}
	return &registry.Favorite{ID: id, City: city, AddedAt: addedAt}, nil
}

// RemoveFavorite deletes a favorite by city name, matched case-insensitively,
// and returns the number of rows affected.
func (s *Store) RemoveFavorite(ctx context.Context, city string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM favorites WHERE city_name = ?", city)
	if err != nil {
		return 0, fmt.Errorf("delete favorite: %w", err)
	}
	return res.RowsAffected()
}
