package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yourchoicemarket/llm-shop/internal/printful"
)

// OrderLine is one product of an order.
type OrderLine struct {
	ProductID      string `json:"productId"`
	VariantID      int    `json:"variantId"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

// Order is a placed order. The recipient is stored encrypted.
type Order struct {
	ID              string             `json:"id"`
	PrintfulOrderID int64              `json:"printfulOrderId,omitempty"`
	Status          string             `json:"status"`
	Shipping        string             `json:"shipping"`
	Currency        string             `json:"currency"`
	Recipient       printful.Recipient `json:"recipient"`
	Items           []OrderLine        `json:"items"`
	SubtotalCents   int64              `json:"subtotalCents"`
	DiscountCents   int64              `json:"discountCents"`
	ShippingCents   int64              `json:"shippingCents"`
	TaxCents        int64              `json:"taxCents"`
	TotalCents      int64              `json:"totalCents"`
	CreatedBy       string             `json:"createdBy,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
}

// SaveOrder stores or updates an order. A zero CreatedAt is set to now.
func (s *SQLiteStore) SaveOrder(o *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recipientJSON, err := json.Marshal(o.Recipient)
	if err != nil {
		return fmt.Errorf("failed to marshal recipient: %w", err)
	}
	encryptedRecipient, err := Encrypt(recipientJSON, s.encryptionKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt recipient: %w", err)
	}

	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}

	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}

	_, err = s.db.Exec(`
		INSERT INTO orders (id, printful_order_id, status, shipping, currency, encrypted_recipient, items,
			subtotal_cents, discount_cents, shipping_cents, tax_cents, total_cents, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			printful_order_id = excluded.printful_order_id,
			status = excluded.status,
			encrypted_recipient = excluded.encrypted_recipient
	`, o.ID, nullInt64(o.PrintfulOrderID), o.Status, o.Shipping, o.Currency, encryptedRecipient, string(itemsJSON),
		o.SubtotalCents, o.DiscountCents, o.ShippingCents, o.TaxCents, o.TotalCents, nullString(o.CreatedBy), o.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}

	return nil
}

// GetOrder retrieves an order by id.
// Returns nil, nil if the order doesn't exist.
func (s *SQLiteStore) GetOrder(id string) (*Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var o Order
	var printfulOrderID sql.NullInt64
	var createdBy sql.NullString
	var encryptedRecipient, itemsJSON string

	err := s.db.QueryRow(`
		SELECT id, printful_order_id, status, shipping, currency, encrypted_recipient, items,
			subtotal_cents, discount_cents, shipping_cents, tax_cents, total_cents, created_by, created_at
		FROM orders WHERE id = ?`, id,
	).Scan(&o.ID, &printfulOrderID, &o.Status, &o.Shipping, &o.Currency, &encryptedRecipient, &itemsJSON,
		&o.SubtotalCents, &o.DiscountCents, &o.ShippingCents, &o.TaxCents, &o.TotalCents, &createdBy, &o.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	recipientJSON, err := Decrypt(encryptedRecipient, s.encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt recipient: %w", err)
	}
	if err := json.Unmarshal(recipientJSON, &o.Recipient); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipient: %w", err)
	}
	if err := json.Unmarshal([]byte(itemsJSON), &o.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order items: %w", err)
	}

	o.PrintfulOrderID = printfulOrderID.Int64
	o.CreatedBy = createdBy.String
	return &o, nil
}
