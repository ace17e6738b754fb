package printful

import (
	"context"

	"github.com/yourchoicemarket/llm-shop/internal/catalog"
)

// Service abstracts the Printful API operations used by the shop.
// This interface allows for easy mocking in tests.
type Service interface {
	// GetCategories returns the catalog category list.
	GetCategories(ctx context.Context) ([]catalog.Category, error)

	// GetProducts lists the catalog products in a category.
	GetProducts(ctx context.Context, categoryID int) ([]Product, error)

	// GetProduct returns a catalog product with its variants.
	GetProduct(ctx context.Context, productID int) (*ProductDetail, error)

	// CreateSyncProduct adds a product with print files to the store.
	CreateSyncProduct(ctx context.Context, payload SyncProductRequest) (*SyncProduct, error)

	// CreateMockupTask starts mockup generation and returns the task key.
	CreateMockupTask(ctx context.Context, productID int, payload MockupRequest) (string, error)

	// WaitForMockupURL blocks until the mockup task finishes.
	WaitForMockupURL(ctx context.Context, taskKey string) (string, error)

	// CreateOrder submits an order for fulfillment.
	CreateOrder(ctx context.Context, payload OrderRequest) (*Order, error)
}
