package shop

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/yourchoicemarket/llm-shop/internal/printful"
	"github.com/yourchoicemarket/llm-shop/internal/storage"
)

// CheckoutItem is one cart line.
type CheckoutItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CheckoutRequest is a cart submitted for fulfillment.
type CheckoutRequest struct {
	Items         []CheckoutItem     `json:"items"`
	Recipient     printful.Recipient `json:"recipient"`
	Shipping      string             `json:"shipping"`
	Currency      string             `json:"currency"`
	DiscountCents int64              `json:"discountCents"`
	UserID        string             `json:"-"`
}

func (r CheckoutRequest) validate() error {
	if len(r.Items) == 0 {
		return fmt.Errorf("%w: no items", ErrInvalidOrder)
	}
	for i, item := range r.Items {
		if item.ProductID == "" {
			return fmt.Errorf("%w: item %d has no product", ErrInvalidOrder, i+1)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("%w: item %d quantity must be at least 1", ErrInvalidOrder, i+1)
		}
	}
	if r.DiscountCents < 0 {
		return fmt.Errorf("%w: negative discount", ErrInvalidOrder)
	}

	rc := r.Recipient
	required := []struct {
		field string
		value string
	}{
		{"name", rc.Name},
		{"address1", rc.Address1},
		{"city", rc.City},
		{"country_code", rc.CountryCode},
		{"zip", rc.Zip},
		{"email", rc.Email},
	}
	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.field)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: recipient is missing %s", ErrInvalidOrder, strings.Join(missing, ", "))
	}
	if !strings.Contains(rc.Email, "@") {
		return fmt.Errorf("%w: invalid email", ErrInvalidOrder)
	}
	return nil
}

// PlaceOrder prices the cart, submits it to Printful and stores it.
func (s *Service) PlaceOrder(ctx context.Context, req CheckoutRequest) (o *storage.Order, err error) {
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
		}
		ordersPlaced.WithLabelValues(result).Inc()
	}()

	if err := req.validate(); err != nil {
		return nil, err
	}

	order := &storage.Order{
		ID:        uuid.NewString(),
		Status:    "pending",
		Shipping:  req.Shipping,
		Currency:  req.Currency,
		Recipient: req.Recipient,
		CreatedBy: req.UserID,
	}
	if order.Shipping == "" {
		order.Shipping = DefaultShipping
	}
	if order.Currency == "" {
		order.Currency = s.opts.Currency
	}
	order.Recipient.CountryCode = strings.ToUpper(order.Recipient.CountryCode)

	var items []printful.OrderItem
	for _, item := range req.Items {
		p, err := s.Store.GetProduct(item.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductID)
		}

		order.Items = append(order.Items, storage.OrderLine{
			ProductID:      p.ID,
			VariantID:      p.PrintfulVariantID,
			Name:           p.Name,
			Quantity:       item.Quantity,
			UnitPriceCents: p.PriceCents,
		})
		order.SubtotalCents += p.PriceCents * int64(item.Quantity)

		items = append(items, printful.OrderItem{
			VariantID:   p.PrintfulVariantID,
			ExternalID:  p.ID,
			Name:        p.Name,
			Quantity:    item.Quantity,
			RetailPrice: formatCents(p.PriceCents),
			Files:       []printful.File{{URL: p.ImageURL}},
		})
	}

	order.DiscountCents = min(req.DiscountCents, order.SubtotalCents)
	order.TaxCents = toCents(float64(order.SubtotalCents-order.DiscountCents) / 100 * s.opts.TaxRate)
	order.ShippingCents = toCents(s.opts.ShippingCost)
	order.TotalCents = order.SubtotalCents - order.DiscountCents + order.ShippingCents + order.TaxCents

	pfOrder, err := s.Printful.CreateOrder(ctx, printful.OrderRequest{
		ExternalID: order.ID,
		Shipping:   order.Shipping,
		Recipient:  order.Recipient,
		Items:      items,
		RetailCosts: &printful.RetailCosts{
			Currency: order.Currency,
			Subtotal: formatCents(order.SubtotalCents),
			Discount: formatCents(order.DiscountCents),
			Shipping: formatCents(order.ShippingCents),
			Tax:      formatCents(order.TaxCents),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit order: %w", err)
	}
	order.PrintfulOrderID = pfOrder.ID
	if pfOrder.Status != "" {
		order.Status = pfOrder.Status
	}

	if err := s.Store.SaveOrder(order); err != nil {
		// The order exists at Printful; log enough to reconcile by hand.
		log.Error().Err(err).Str("orderID", order.ID).Int64("printfulOrderID", pfOrder.ID).Msg("order submitted but not saved")
		return nil, err
	}

	log.Info().
		Str("orderID", order.ID).
		Int64("printfulOrderID", order.PrintfulOrderID).
		Int("lines", len(order.Items)).
		Int64("totalCents", order.TotalCents).
		Msg("order placed")

	return order, nil
}

// GetOrder returns an order or ErrOrderNotFound.
func (s *Service) GetOrder(id string) (*storage.Order, error) {
	o, err := s.Store.GetOrder(id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}
