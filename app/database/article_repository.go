package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/typefeed/typefeed/app/news"
)

const timeLayout = time.RFC3339

// SQLArticleRepository persists articles in SQLite.
type SQLArticleRepository struct {
	db *DB
}

var _ ArticleRepository = (*SQLArticleRepository)(nil)

func NewArticleRepository(db *DB) *SQLArticleRepository {
	return &SQLArticleRepository{db: db}
}

func (r *SQLArticleRepository) UpsertArticle(ctx context.Context, article news.Article) (bool, error) {
	now := time.Now().UTC()

	query, args, err := sq.Insert("articles").
		Columns("id", "url", "title", "content", "source", "image_url",
			"category", "published_at", "is_full_content", "created_at").
		Values(uuid.NewString(), article.URL, article.Title, article.Content,
			article.Source, article.ImageURL, string(article.Category),
			article.PublishedAt.UTC().Format(timeLayout), 0, now.Format(timeLayout)).
		Suffix("ON CONFLICT (url) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build upsert: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("upsert article: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *SQLArticleRepository) GetByURL(ctx context.Context, url string) (*Article, error) {
	query, args, err := articleSelect().Where(sq.Eq{"url": url}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	article, err := scanArticle(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get article by url: %w", err)
	}
	return article, nil
}

func (r *SQLArticleRepository) GetRecentByCategory(ctx context.Context, category news.Category, limit int) ([]Article, error) {
	query, args, err := articleSelect().
		Where(sq.Eq{"category": string(category)}).
		OrderBy("created_at DESC", "id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get recent articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, *article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}

	return articles, nil
}

func (r *SQLArticleRepository) SetFullContent(ctx context.Context, id string, content string) error {
	query, args, err := sq.Update("articles").
		Set("content", content).
		Set("is_full_content", 1).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set full content: %w", err)
	}
	return nil
}

func (r *SQLArticleRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := sq.Delete("articles").
		Where(sq.Lt{"created_at": cutoff.UTC().Format(timeLayout)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete old articles: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLArticleRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM articles")
	if err != nil {
		return 0, fmt.Errorf("delete all articles: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLArticleRepository) CountByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT category, COUNT(*) FROM articles GROUP BY category")
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[category] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}

	return counts, nil
}

func (r *SQLArticleRepository) GetArticleCount(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return count, nil
}

func articleSelect() sq.SelectBuilder {
	return sq.Select("id", "url", "title", "content", "source", "image_url",
		"category", "published_at", "is_full_content", "created_at").
		From("articles")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*Article, error) {
	var a Article
	var category, publishedAt, createdAt string
	var isFull int

	err := row.Scan(&a.ID, &a.URL, &a.Title, &a.Content, &a.Source,
		&a.ImageURL, &category, &publishedAt, &isFull, &createdAt)
	if err != nil {
		return nil, err
	}

	a.Category = news.Category(category)
	a.IsFullContent = isFull != 0
	if a.PublishedAt, err = time.Parse(timeLayout, publishedAt); err != nil {
		return nil, fmt.Errorf("parse published_at: %w", err)
	}
	if a.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &a, nil
}
