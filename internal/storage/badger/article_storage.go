package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/blograg/internal/common"
	"github.com/ternarybob/blograg/internal/interfaces"
	"github.com/ternarybob/blograg/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ErrArticleNotFound is returned by GetArticle for an unknown URL
var ErrArticleNotFound = fmt.Errorf("article %w", common.ErrNotFound)

// ArticleStorage implements interfaces.ArticleStorage on Badger, keyed by URL
type ArticleStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewArticleStorage creates a new ArticleStorage instance
func NewArticleStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ArticleStorage {
	return &ArticleStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ArticleStorage) UpsertArticle(ctx context.Context, article *models.Article) error {
	if article.URL == "" {
		return fmt.Errorf("article URL is required")
	}

	now := time.Now()
	var existing models.Article
	if err := s.db.Store().Get(article.URL, &existing); err == nil {
		article.CreatedAt = existing.CreatedAt
	} else if err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to load article %s: %w", article.URL, err)
	}
	if article.CreatedAt.IsZero() {
		article.CreatedAt = now
	}
	article.UpdatedAt = now

	if err := s.db.Store().Upsert(article.URL, article); err != nil {
		return fmt.Errorf("failed to save article: %w", err)
	}
	return nil
}

func (s *ArticleStorage) GetArticle(ctx context.Context, url string) (*models.Article, error) {
	var article models.Article
	if err := s.db.Store().Get(url, &article); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("%w: %s", ErrArticleNotFound, url)
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return &article, nil
}

func (s *ArticleStorage) FetchAll(ctx context.Context) ([]*models.Article, error) {
	var articles []models.Article
	if err := s.db.Store().Find(&articles, nil); err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	result := make([]*models.Article, len(articles))
	for i := range articles {
		result[i] = &articles[i]
	}
	SortByPublishedDesc(result)

	return result, nil
}

func (s *ArticleStorage) Count(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Article{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return int(count), nil
}

// Close is a no-op; the shared BadgerDB is closed by its owner
func (s *ArticleStorage) Close() error {
	return nil
}

// SortByPublishedDesc orders articles newest first with undated articles last
func SortByPublishedDesc(articles []*models.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		a, b := articles[i].DatePublished, articles[j].DatePublished
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}
