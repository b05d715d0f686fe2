package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/strichliste-rs/strichliste-rs-sub000/internal/models"
	"github.com/strichliste-rs/strichliste-rs-sub000/internal/money"
	"github.com/strichliste-rs/strichliste-rs-sub000/internal/storage"
)

// CreateArticle inserts an article together with its first price entry.
func (s *SQLiteStore) CreateArticle(ctx context.Context, name, barcode string, price money.Value, since int64) (*models.Article, error) {
	now := time.Now().Unix()

	var code any
	if barcode != "" {
		code = barcode
	}

	res, err := s.q.ExecContext(ctx,
		"INSERT INTO articles (name, barcode, created_at) VALUES (?, ?, ?)",
		name, code, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert article: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted article id: %w", err)
	}

	if err := s.AddArticlePrice(ctx, id, price, since); err != nil {
		return nil, err
	}

	return &models.Article{ID: id, Name: name, Barcode: barcode, Price: price, CreatedAt: now}, nil
}

// GetArticle retrieves an article with its currently effective price.
func (s *SQLiteStore) GetArticle(ctx context.Context, id int64) (*models.Article, error) {
	article := &models.Article{}
	var barcode sql.NullString
	err := s.q.QueryRowContext(ctx,
		"SELECT id, name, barcode, created_at FROM articles WHERE id = ?", id,
	).Scan(&article.ID, &article.Name, &barcode, &article.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	if barcode.Valid {
		article.Barcode = barcode.String
	}

	price, err := s.ArticlePriceAt(ctx, id, time.Now().Unix())
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	article.Price = price
	return article, nil
}

// ListArticles returns all articles with their currently effective prices,
// ordered by name.
func (s *SQLiteStore) ListArticles(ctx context.Context) ([]models.Article, error) {
	now := time.Now().Unix()
	rows, err := s.q.QueryContext(ctx, `
		SELECT a.id, a.name, a.barcode, a.created_at,
		       COALESCE((
		           SELECT p.price FROM article_prices p
		           WHERE p.article_id = a.id AND p.effective_since <= ?
		           ORDER BY p.effective_since DESC, p.rowid DESC LIMIT 1
		       ), 0)
		FROM articles a
		ORDER BY a.name`, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	var articles []models.Article
	for rows.Next() {
		var article models.Article
		var barcode sql.NullString
		if err := rows.Scan(&article.ID, &article.Name, &barcode, &article.CreatedAt, &article.Price); err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		if barcode.Valid {
			article.Barcode = barcode.String
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}
	return articles, nil
}

// AddArticlePrice appends a price entry effective from the given time.
func (s *SQLiteStore) AddArticlePrice(ctx context.Context, articleID int64, price money.Value, since int64) error {
	_, err := s.q.ExecContext(ctx,
		"INSERT INTO article_prices (article_id, price, effective_since) VALUES (?, ?, ?)",
		articleID, price, since,
	)
	if err != nil {
		return fmt.Errorf("failed to insert article price: %w", err)
	}
	return nil
}

// ArticlePriceAt returns the price in force at time at: the entry with the
// latest effective_since not after at, not the absolute latest price.
// Entries sharing a timestamp resolve to the most recently inserted one.
func (s *SQLiteStore) ArticlePriceAt(ctx context.Context, articleID int64, at int64) (money.Value, error) {
	var price money.Value
	err := s.q.QueryRowContext(ctx,
		`SELECT price FROM article_prices
		 WHERE article_id = ? AND effective_since <= ?
		 ORDER BY effective_since DESC, rowid DESC LIMIT 1`,
		articleID, at,
	).Scan(&price)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, storage.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up article price: %w", err)
	}
	return price, nil
}
