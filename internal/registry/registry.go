// Package registry holds the CRUD and uniqueness logic over favorite cities,
// admin-authored weather reports and admin accounts. Every operation is a
// single atomic store transition; there is no state machine here.
package registry

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrNotFound means no row was affected by an update, delete or lookup.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a case-insensitive uniqueness constraint was violated.
	ErrConflict = errors.New("already exists")

	// ErrEmptyCity and ErrEmptyContent flag missing required fields before
	// any store access.
	ErrEmptyCity    = errors.New("city name is required")
	ErrEmptyContent = errors.New("content is required")

	// ErrBadCredentials is returned for any username/password pair that does
	// not match an account exactly.
	ErrBadCredentials = errors.New("invalid credentials")
)

// Favorite is a bookmarked city. City names are unique case-insensitively.
type Favorite struct {
	ID      int64     `json:"id" db:"id"`
	City    string    `json:"city_name" db:"city_name"`
	AddedAt time.Time `json:"added_at" db:"added_at"`
}

// WeatherReport is an admin-authored note attached to a free-text city name.
// Content is the only field editable after creation.
type WeatherReport struct {
	ID        int64     `json:"id" db:"id"`
	City      string    `json:"city_name" db:"city_name"`
	Title     *string   `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	AuthorID  *int64    `json:"author_id" db:"author_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Account is an admin account, always returned without its password.
type Account struct {
	ID       int64  `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
	Role     string `json:"role" db:"role"`
}

// Store is the persistence contract the registry runs on.
type Store interface {
	Favorites(ctx context.Context) ([]Favorite, error)
	AddFavorite(ctx context.Context, city string, addedAt time.Time) (*Favorite, error)
	RemoveFavorite(ctx context.Context, city string) (int64, error)

	CreateReport(ctx context.Context, report *WeatherReport) (int64, error)
	UpdateReportContent(ctx context.Context, id int64, content string) (int64, error)
	DeleteReport(ctx context.Context, id int64) (int64, error)
	ReportsByCity(ctx context.Context, city string) ([]WeatherReport, error)
	ReportsByAuthor(ctx context.Context, authorID int64) ([]WeatherReport, error)

	AccountByCredentials(ctx context.Context, username, password string) (*Account, error)
}

type Registry struct {
	store  Store
	logger zerolog.Logger

	now func() time.Time
}

func New(store Store, logger zerolog.Logger) *Registry {
	return &Registry{
		store:  store,
		logger: logger.With().Str("component", "registry").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Favorites returns all favorite cities, newest-added first.
func (r *Registry) Favorites(ctx context.Context) ([]Favorite, error) {
	return r.store.Favorites(ctx)
}

// AddFavorite bookmarks a city with a server-assigned timestamp. A duplicate
// name, compared case-insensitively, fails with ErrConflict.
func (r *Registry) AddFavorite(ctx context.Context, city string) (*Favorite, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, ErrEmptyCity
	}

	fav, err := r.store.AddFavorite(ctx, city, r.now())
	if err != nil {
		return nil, err
	}
	r.logger.Info().Str("city", city).Msg("favorite added")
	return fav, nil
}

// RemoveFavorite deletes a bookmarked city. Removing an unknown city fails
// with ErrNotFound.
func (r *Registry) RemoveFavorite(ctx context.Context, city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		return ErrEmptyCity
	}

	affected, err := r.store.RemoveFavorite(ctx, city)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	r.logger.Info().Str("city", city).Msg("favorite removed")
	return nil
}

// CreateReport stores a report. The city name is kept verbatim; unlike
// favorites, it is not required to match anything previously seen.
func (r *Registry) CreateReport(ctx context.Context, city string, title *string, content string, authorID *int64) (int64, error) {
	if strings.TrimSpace(city) == "" {
		return 0, ErrEmptyCity
	}
	if strings.TrimSpace(content) == "" {
		return 0, ErrEmptyContent
	}

	report := &WeatherReport{
		City:      city,
		Title:     title,
		Content:   content,
		AuthorID:  authorID,
		CreatedAt: r.now(),
	}
	id, err := r.store.CreateReport(ctx, report)
	if err != nil {
		return 0, err
	}
	r.logger.Info().Int64("report_id", id).Str("city", city).Msg("report created")
	return id, nil
}

// UpdateReport replaces a report's content, the only mutable field.
func (r *Registry) UpdateReport(ctx context.Context, id int64, content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}

	affected, err := r.store.UpdateReportContent(ctx, id, content)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteReport removes a report by id.
func (r *Registry) DeleteReport(ctx context.Context, id int64) error {
	affected, err := r.store.DeleteReport(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReportsForCity returns reports whose city matches case-insensitively,
// newest first.
func (r *Registry) ReportsForCity(ctx context.Context, city string) ([]WeatherReport, error) {
	return r.store.ReportsByCity(ctx, city)
}

// ReportsByAuthor returns reports by one author id, newest first.
func (r *Registry) ReportsByAuthor(ctx context.Context, authorID int64) ([]WeatherReport, error) {
	return r.store.ReportsByAuthor(ctx, authorID)
}

// Login checks credentials by exact match and returns the account without its
// password. Credentials are verified per request; there is no session state.
func (r *Registry) Login(ctx context.Context, username, password string) (*Account, error) {
	account, err := r.store.AccountByCredentials(ctx, username, password)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	r.logger.Info().Str("username", account.Username).Msg("login succeeded")
	return account, nil
}
