package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// Product is a generated product listed in the shop.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	MockupURL   string `json:"mockupUrl,omitempty"`
	PriceCents  int64  `json:"priceCents"`
	Currency    string `json:"currency"`

	CategoryID  int    `json:"categoryId"`
	MatchScore  int    `json:"matchScore"`
	MatchSource string `json:"matchSource"`

	PrintfulProductID int   `json:"printfulProductId"`
	PrintfulVariantID int   `json:"printfulVariantId"`
	SyncProductID     int64 `json:"syncProductId,omitempty"`

	Prompt    string    `json:"prompt"`
	Style     string    `json:"style"`
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

const productColumns = `id, name, description, image_url, mockup_url, price_cents, currency,
	category_id, match_score, match_source, printful_product_id, printful_variant_id,
	sync_product_id, prompt, style, created_by, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*Product, error) {
	var p Product
	var mockupURL, createdBy sql.NullString
	var syncProductID sql.NullInt64

	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.ImageURL, &mockupURL, &p.PriceCents, &p.Currency,
		&p.CategoryID, &p.MatchScore, &p.MatchSource, &p.PrintfulProductID, &p.PrintfulVariantID,
		&syncProductID, &p.Prompt, &p.Style, &createdBy, &p.CreatedAt)
	if err != nil {
		return nil, err
	}

	p.MockupURL = mockupURL.String
	p.CreatedBy = createdBy.String
	p.SyncProductID = syncProductID.Int64
	return &p, nil
}

// SaveProduct stores or updates a product. A zero CreatedAt is set to now.
func (s *SQLiteStore) SaveProduct(p *Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			image_url = excluded.image_url,
			mockup_url = excluded.mockup_url,
			price_cents = excluded.price_cents,
			currency = excluded.currency,
			category_id = excluded.category_id,
			match_score = excluded.match_score,
			match_source = excluded.match_source,
			printful_product_id = excluded.printful_product_id,
			printful_variant_id = excluded.printful_variant_id,
			sync_product_id = excluded.sync_product_id
	`, p.ID, p.Name, p.Description, p.ImageURL, nullString(p.MockupURL), p.PriceCents, p.Currency,
		p.CategoryID, p.MatchScore, p.MatchSource, p.PrintfulProductID, p.PrintfulVariantID,
		nullInt64(p.SyncProductID), p.Prompt, p.Style, nullString(p.CreatedBy), p.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}

	return nil
}

// GetProduct retrieves a product by id.
// Returns nil, nil if the product doesn't exist.
func (s *SQLiteStore) GetProduct(id string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := scanProduct(s.db.QueryRow("SELECT "+productColumns+" FROM products WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return p, nil
}

// ListProducts returns up to limit products, newest first.
func (s *SQLiteStore) ListProducts(limit int) ([]Product, error) {
	return s.queryProducts("SELECT "+productColumns+" FROM products ORDER BY created_at DESC, rowid DESC LIMIT ?", limit)
}

// ListProductsByCategory returns up to limit products of a category, newest first.
func (s *SQLiteStore) ListProductsByCategory(categoryID, limit int) ([]Product, error) {
	return s.queryProducts("SELECT "+productColumns+" FROM products WHERE category_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?", categoryID, limit)
}

func (s *SQLiteStore) queryProducts(query string, args ...any) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// DeleteProduct removes a product.
func (s *SQLiteStore) DeleteProduct(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM products WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(n int64) sql.NullInt64 {
	return sql.NullInt64{Int64: n, Valid: n != 0}
}
