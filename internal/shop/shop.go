// Package shop turns a shopper's free-text request into a print-on-demand
// product and places orders for generated products.
package shop

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/yourchoicemarket/llm-shop/internal/catalog"
	"github.com/yourchoicemarket/llm-shop/internal/llm"
	"github.com/yourchoicemarket/llm-shop/internal/printful"
	"github.com/yourchoicemarket/llm-shop/internal/storage"
)

var (
	ErrEmptyPrompt     = errors.New("prompt is empty")
	ErrNoCategory      = errors.New("no matching product category")
	ErrNoProducts      = errors.New("no printable products in category")
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrInvalidOrder    = errors.New("invalid order")
)

const (
	DefaultCurrency = "USD"
	DefaultShipping = "STANDARD"
)

var (
	productsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shop",
			Name:      "products_generated_total",
			Help:      "Product generation attempts by result",
		},
		[]string{"result"},
	)
	generationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "shop",
			Name:      "product_generation_duration_seconds",
			Help:      "Time to generate a product end to end",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 80},
		},
	)
	ordersPlaced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shop",
			Name:      "orders_total",
			Help:      "Order attempts by result",
		},
		[]string{"result"},
	)
)

// Store is the persistence the service needs.
type Store interface {
	SaveProduct(p *storage.Product) error
	GetProduct(id string) (*storage.Product, error)
	ListProducts(limit int) ([]storage.Product, error)
	ListProductsByCategory(categoryID, limit int) ([]storage.Product, error)
	SaveOrder(o *storage.Order) error
	GetOrder(id string) (*storage.Order, error)
}

// ImageStore keeps generated artwork where Printful can download it.
type ImageStore interface {
	Save(png []byte) (name, url string, err error)
}

// Deps are the collaborators of Service.
type Deps struct {
	Analyzer llm.ProductAnalyzer
	Images   llm.ImageGenerator
	Files    ImageStore
	Printful printful.Service
	Catalog  *catalog.Store
	Store    Store
}

// Options are the pricing and matching knobs.
type Options struct {
	MinMatchScore int
	PriceMarkup   float64
	TaxRate       float64
	ShippingCost  float64
	Currency      string
}

type Service struct {
	Deps
	opts Options
}

func NewService(deps Deps, opts Options) *Service {
	if opts.PriceMarkup <= 0 {
		opts.PriceMarkup = 1
	}
	if opts.Currency == "" {
		opts.Currency = DefaultCurrency
	}
	return &Service{Deps: deps, opts: opts}
}

// parseCents converts a decimal amount such as "9.25" to cents.
func parseCents(amount string) (int64, error) {
	f, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return toCents(f), nil
}

func toCents(f float64) int64 {
	return int64(math.Round(f * 100))
}

// formatCents renders cents as a decimal string, e.g. 1499 -> "14.99".
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
