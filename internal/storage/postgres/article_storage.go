package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/blograg/internal/common"
	"github.com/ternarybob/blograg/internal/interfaces"
	"github.com/ternarybob/blograg/internal/models"
)

// ErrArticleNotFound is returned by GetArticle for an unknown URL
var ErrArticleNotFound = fmt.Errorf("article %w", common.ErrNotFound)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS blog_articles (
		id SERIAL PRIMARY KEY,
		url TEXT UNIQUE NOT NULL,
		title TEXT,
		date_published TIMESTAMP,
		date_published_raw TEXT,
		date_modified TIMESTAMP,
		author TEXT,
		description TEXT,
		tags TEXT[],
		text TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT now(),
		updated_at TIMESTAMP NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_blog_articles_date_published ON blog_articles (date_published DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_blog_articles_tags ON blog_articles USING GIN (tags)`,
	`CREATE INDEX IF NOT EXISTS idx_blog_articles_text_fts ON blog_articles USING GIN (to_tsvector('english', text))`,
	`CREATE INDEX IF NOT EXISTS idx_blog_articles_title_fts ON blog_articles USING GIN (to_tsvector('english', title))`,
	`CREATE INDEX IF NOT EXISTS idx_blog_articles_author ON blog_articles (author)`,
	`CREATE INDEX IF NOT EXISTS idx_blog_articles_author_date ON blog_articles (author, date_published DESC)`,
}

const upsertArticleSQL = `
INSERT INTO blog_articles (url, title, date_published, date_published_raw, date_modified, author, description, tags, text)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (url) DO UPDATE SET
	title = EXCLUDED.title,
	date_published = EXCLUDED.date_published,
	date_published_raw = EXCLUDED.date_published_raw,
	date_modified = EXCLUDED.date_modified,
	author = EXCLUDED.author,
	description = EXCLUDED.description,
	tags = EXCLUDED.tags,
	text = EXCLUDED.text,
	updated_at = now()`

const selectColumns = `url, COALESCE(title, ''), date_published, COALESCE(date_published_raw, ''), date_modified,
	COALESCE(author, ''), COALESCE(description, ''), COALESCE(tags, '{}'), COALESCE(text, ''), created_at, updated_at`

// ArticleStorage implements interfaces.ArticleStorage on PostgreSQL
type ArticleStorage struct {
	pool   *pgxpool.Pool
	logger arbor.ILogger
}

// NewArticleStorage connects to PostgreSQL and ensures the schema exists
func NewArticleStorage(ctx context.Context, config *common.PostgresConfig, logger arbor.ILogger) (*ArticleStorage, error) {
	if config.DSN == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}

	poolConfig, err := pgxpool.ParseConfig(config.DSN)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres dsn: %w", err)
	}
	if config.MaxConns > 0 {
		poolConfig.MaxConns = config.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	s := &ArticleStorage{pool: pool, logger: logger}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Debug().Msg("PostgreSQL article storage initialized")
	return s, nil
}

var _ interfaces.ArticleStorage = (*ArticleStorage)(nil)

func (s *ArticleStorage) migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

func (s *ArticleStorage) UpsertArticle(ctx context.Context, article *models.Article) error {
	if article.URL == "" {
		return fmt.Errorf("article URL is required")
	}

	tags := article.Tags
	if tags == nil {
		tags = []string{}
	}

	_, err := s.pool.Exec(ctx, upsertArticleSQL,
		article.URL,
		article.Title,
		article.DatePublished,
		article.DatePublishedRaw,
		article.DateModified,
		article.Author,
		article.Description,
		tags,
		article.Text,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert article %s: %w", article.URL, err)
	}
	return nil
}

func (s *ArticleStorage) GetArticle(ctx context.Context, url string) (*models.Article, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM blog_articles WHERE url = $1`, url)
	article, err := scanArticle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrArticleNotFound, url)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return article, nil
}

func (s *ArticleStorage) FetchAll(ctx context.Context) ([]*models.Article, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+selectColumns+` FROM blog_articles ORDER BY date_published DESC NULLS LAST`)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	var articles []*models.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	return articles, nil
}

func (s *ArticleStorage) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM blog_articles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}

func (s *ArticleStorage) Close() error {
	s.pool.Close()
	return nil
}

func scanArticle(row pgx.Row) (*models.Article, error) {
	var (
		a             models.Article
		datePublished *time.Time
		dateModified  *time.Time
	)
	err := row.Scan(
		&a.URL,
		&a.Title,
		&datePublished,
		&a.DatePublishedRaw,
		&dateModified,
		&a.Author,
		&a.Description,
		&a.Tags,
		&a.Text,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.DatePublished = datePublished
	a.DateModified = dateModified
	return &a, nil
}
