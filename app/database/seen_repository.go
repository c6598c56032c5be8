package database

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// SQLSeenRepository tracks which articles each user has been served.
type SQLSeenRepository struct {
	db *DB
}

var _ SeenRepository = (*SQLSeenRepository)(nil)

func NewSeenRepository(db *DB) *SQLSeenRepository {
	return &SQLSeenRepository{db: db}
}

func (r *SQLSeenRepository) GetSeenIDs(ctx context.Context, userID string, articleIDs []string) (map[string]bool, error) {
	seen := make(map[string]bool)
	if len(articleIDs) == 0 {
		return seen, nil
	}

	query, args, err := sq.Select("article_id").
		From("seen_articles").
		Where(sq.Eq{"user_id": userID, "article_id": articleIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get seen ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan seen id: %w", err)
		}
		seen[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seen ids: %w", err)
	}

	return seen, nil
}

func (r *SQLSeenRepository) MarkSeen(ctx context.Context, userID, articleID string) error {
	now := time.Now().UTC().Format(timeLayout)

	query, args, err := sq.Insert("seen_articles").
		Columns("user_id", "article_id", "seen_at").
		Values(userID, articleID, now).
		Suffix("ON CONFLICT (user_id, article_id) DO UPDATE SET seen_at = excluded.seen_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}
	return nil
}

func (r *SQLSeenRepository) DeleteOrphaned(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM seen_articles WHERE article_id NOT IN (SELECT id FROM articles)")
	if err != nil {
		return 0, fmt.Errorf("delete orphaned seen records: %w", err)
	}
	return res.RowsAffected()
}
