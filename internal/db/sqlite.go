package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jonathan/interview-prep/internal/types"
)

// sqliteTimeFormat is fixed width so that text ordering matches time ordering.
const sqliteTimeFormat = "2006-01-02T15:04:05.000000000Z"

// SQLiteDB stores favorites in a local SQLite file.
type SQLiteDB struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the SQLite database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteDB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	return &SQLiteDB{db: db}, nil
}

// Close closes the database.
func (s *SQLiteDB) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

// EnsureSchema creates the favorites table if it does not exist.
func (s *SQLiteDB) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS favorites (
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
		created_at      TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create favorites schema: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS favorites_created_at_idx ON favorites (created_at)`); err != nil {
		return fmt.Errorf("failed to create favorites index: %w", err)
	}
	return nil
}

// InsertFavorite stores a favorite question.
func (s *SQLiteDB) InsertFavorite(ctx context.Context, fav *types.FavoriteQuestion) error {
	prepareFavorite(fav)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO favorites (id, question, answer, category, source, source_url, company,
		                        skill_tag, difficulty, job_description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fav.ID, fav.Question, fav.Answer, string(fav.Category), string(fav.Source),
		nullString(fav.SourceURL), nullString(fav.Company), nullString(fav.SkillTag),
		string(fav.Difficulty), fav.JobDescription, fav.CreatedAt.UTC().Format(sqliteTimeFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to insert favorite: %w", err)
	}
	return nil
}

// ListFavorites returns up to limit favorites, newest first.
func (s *SQLiteDB) ListFavorites(ctx context.Context, limit int) ([]types.FavoriteQuestion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, question, answer, category, source, source_url, company, skill_tag,
		        difficulty, job_description, created_at
		 FROM favorites ORDER BY created_at DESC LIMIT ?`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	favorites := make([]types.FavoriteQuestion, 0)
	for rows.Next() {
		var f types.FavoriteQuestion
		var category, source, difficulty, createdAt string
		var sourceURL, company, skillTag sql.NullString
		if err := rows.Scan(&f.ID, &f.Question, &f.Answer, &category, &source, &sourceURL,
			&company, &skillTag, &difficulty, &f.JobDescription, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		f.Category = types.Category(category)
		f.Source = types.QuestionSource(source)
		f.Difficulty = types.Difficulty(difficulty)
		f.SourceURL = stringPtr(sourceURL)
		f.Company = stringPtr(company)
		f.SkillTag = stringPtr(skillTag)
		if f.CreatedAt, err = time.Parse(sqliteTimeFormat, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at %q: %w", createdAt, err)
		}
		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorites: %w", err)
	}
	return favorites, nil
}

// DeleteFavorite deletes a favorite by ID and returns the number of rows removed.
func (s *SQLiteDB) DeleteFavorite(ctx context.Context, id string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete favorite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted favorites: %w", err)
	}
	return n, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
