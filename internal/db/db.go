// Package db provides favorites persistence on PostgreSQL or SQLite.
package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/interview-prep/internal/types"
)

// Favorites list limits.
const (
	DefaultFavoritesLimit = 1000
	MaxFavoritesLimit     = 1000
)

// Store persists favorite questions.
type Store interface {
	// EnsureSchema creates the favorites table if needed.
	EnsureSchema(ctx context.Context) error
	// InsertFavorite saves fav, filling ID and CreatedAt when unset.
	InsertFavorite(ctx context.Context, fav *types.FavoriteQuestion) error
	// ListFavorites returns favorites newest first.
	ListFavorites(ctx context.Context, limit int) ([]types.FavoriteQuestion, error)
	// DeleteFavorite removes a favorite and reports how many rows were deleted.
	DeleteFavorite(ctx context.Context, id string) (int64, error)
	Close()
}

// Open connects to the store named by databaseURL. postgres:// and
// postgresql:// URLs use a pgx pool; sqlite:, file: and paths ending in
// .db or .sqlite use SQLite.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		pg, err := Connect(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return pg, nil
	}

	path, ok := sqlitePath(databaseURL)
	if !ok {
		return nil, fmt.Errorf("unsupported database URL %q: expected postgres://, sqlite: or a .db path", redact(databaseURL))
	}
	lite, err := OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	return lite, nil
}

func sqlitePath(databaseURL string) (string, bool) {
	switch {
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return strings.TrimPrefix(databaseURL, "sqlite://"), true
	case strings.HasPrefix(databaseURL, "sqlite:"):
		return strings.TrimPrefix(databaseURL, "sqlite:"), true
	case strings.HasPrefix(databaseURL, "file:"),
		strings.HasSuffix(databaseURL, ".db"),
		strings.HasSuffix(databaseURL, ".sqlite"):
		return databaseURL, true
	}
	return "", false
}

// prepareFavorite fills the fields a new favorite must have.
func prepareFavorite(fav *types.FavoriteQuestion) {
	if fav.ID == "" {
		fav.ID = uuid.NewString()
	}
	if fav.CreatedAt.IsZero() {
		fav.CreatedAt = time.Now().UTC()
	}
	if fav.Source == "" {
		fav.Source = types.SourceAIGenerated
	}
	if fav.Difficulty == "" {
		fav.Difficulty = types.DifficultyMedium
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultFavoritesLimit
	}
	if limit > MaxFavoritesLimit {
		return MaxFavoritesLimit
	}
	return limit
}

// redact hides the password of a URL-style DSN.
func redact(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	userinfo := dsn[scheme+3 : at]
	if colon := strings.Index(userinfo, ":"); colon >= 0 {
		return dsn[:scheme+3] + userinfo[:colon] + ":***" + dsn[at:]
	}
	return dsn
}
