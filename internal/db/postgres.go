package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/interview-prep/internal/types"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS favorites (
	id              TEXT PRIMARY KEY,
	question        TEXT NOT NULL,
	answer          TEXT NOT NULL,
	category        TEXT NOT NULL,
	source          TEXT NOT NULL,
	source_url      TEXT,
	company         TEXT,
	skill_tag       TEXT,
	difficulty      TEXT NOT NULL DEFAULT 'medium',
	job_description TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS favorites_created_at_idx ON favorites (created_at DESC);`

// EnsureSchema creates the favorites table if it does not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to create favorites schema: %w", err)
	}
	return nil
}

// InsertFavorite stores a favorite question.
func (db *DB) InsertFavorite(ctx context.Context, fav *types.FavoriteQuestion) error {
	prepareFavorite(fav)
	_, err := db.pool.Exec(ctx,
		`INSERT INTO favorites (id, question, answer, category, source, source_url, company,
		                        skill_tag, difficulty, job_description, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		fav.ID, fav.Question, fav.Answer, string(fav.Category), string(fav.Source), fav.SourceURL,
		fav.Company, fav.SkillTag, string(fav.Difficulty), fav.JobDescription, fav.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert favorite: %w", err)
	}
	return nil
}

// ListFavorites returns up to limit favorites, newest first.
func (db *DB) ListFavorites(ctx context.Context, limit int) ([]types.FavoriteQuestion, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, question, answer, category, source, source_url, company, skill_tag,
		        difficulty, job_description, created_at
		 FROM favorites ORDER BY created_at DESC LIMIT $1`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	favorites := make([]types.FavoriteQuestion, 0)
	for rows.Next() {
		var f types.FavoriteQuestion
		var category, source, difficulty string
		if err := rows.Scan(&f.ID, &f.Question, &f.Answer, &category, &source, &f.SourceURL,
			&f.Company, &f.SkillTag, &difficulty, &f.JobDescription, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		f.Category = types.Category(category)
		f.Source = types.QuestionSource(source)
		f.Difficulty = types.Difficulty(difficulty)
		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorites: %w", err)
	}
	return favorites, nil
}

// DeleteFavorite deletes a favorite by ID and returns the number of rows removed.
func (db *DB) DeleteFavorite(ctx context.Context, id string) (int64, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM favorites WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete favorite: %w", err)
	}
	return tag.RowsAffected(), nil
}
