package printful

import (
	"context"
	"sync"

	"github.com/yourchoicemarket/llm-shop/internal/catalog"
)

// MockService is a test double for Service.
// Each method can be overridden with a custom function.
// If not overridden, methods return sensible defaults.
// Thread-safe for use in concurrent tests.
type MockService struct {
	GetCategoriesFunc     func(ctx context.Context) ([]catalog.Category, error)
	GetProductsFunc       func(ctx context.Context, categoryID int) ([]Product, error)
	GetProductFunc        func(ctx context.Context, productID int) (*ProductDetail, error)
	CreateSyncProductFunc func(ctx context.Context, payload SyncProductRequest) (*SyncProduct, error)
	CreateMockupTaskFunc  func(ctx context.Context, productID int, payload MockupRequest) (string, error)
	WaitForMockupURLFunc  func(ctx context.Context, taskKey string) (string, error)
	CreateOrderFunc       func(ctx context.Context, payload OrderRequest) (*Order, error)

	mu sync.Mutex

	// Calls tracks all method invocations for assertions
	Calls []MockCall
}

// MockCall records a method call for test assertions.
type MockCall struct {
	Method string
	Args   []any
}

// Ensure MockService implements Service
var _ Service = (*MockService)(nil)

func (m *MockService) record(method string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
}

// CallsTo returns the recorded calls of one method.
func (m *MockService) CallsTo(method string) []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var calls []MockCall
	for _, c := range m.Calls {
		if c.Method == method {
			calls = append(calls, c)
		}
	}
	return calls
}

func (m *MockService) GetCategories(ctx context.Context) ([]catalog.Category, error) {
	m.record("GetCategories")
	if m.GetCategoriesFunc != nil {
		return m.GetCategoriesFunc(ctx)
	}
	return catalog.DefaultCategories(), nil
}

func (m *MockService) GetProducts(ctx context.Context, categoryID int) ([]Product, error) {
	m.record("GetProducts", categoryID)
	if m.GetProductsFunc != nil {
		return m.GetProductsFunc(ctx, categoryID)
	}
	return []Product{{ID: 71, MainCategoryID: categoryID, Title: "Mock Product"}}, nil
}

func (m *MockService) GetProduct(ctx context.Context, productID int) (*ProductDetail, error) {
	m.record("GetProduct", productID)
	if m.GetProductFunc != nil {
		return m.GetProductFunc(ctx, productID)
	}
	return &ProductDetail{
		Product:  Product{ID: productID, Title: "Mock Product"},
		Variants: []Variant{{ID: 4011, ProductID: productID, Name: "Mock Variant", Price: "10.00", InStock: true}},
	}, nil
}

func (m *MockService) CreateSyncProduct(ctx context.Context, payload SyncProductRequest) (*SyncProduct, error) {
	m.record("CreateSyncProduct", payload)
	if m.CreateSyncProductFunc != nil {
		return m.CreateSyncProductFunc(ctx, payload)
	}
	return &SyncProduct{ID: 1001, ExternalID: payload.SyncProduct.ExternalID, Name: payload.SyncProduct.Name, Variants: len(payload.SyncVariants)}, nil
}

func (m *MockService) CreateMockupTask(ctx context.Context, productID int, payload MockupRequest) (string, error) {
	m.record("CreateMockupTask", productID, payload)
	if m.CreateMockupTaskFunc != nil {
		return m.CreateMockupTaskFunc(ctx, productID, payload)
	}
	return "mock-task-key", nil
}

func (m *MockService) WaitForMockupURL(ctx context.Context, taskKey string) (string, error) {
	m.record("WaitForMockupURL", taskKey)
	if m.WaitForMockupURLFunc != nil {
		return m.WaitForMockupURLFunc(ctx, taskKey)
	}
	return "https://files.cdn.printful.com/mockup/mock.png", nil
}

func (m *MockService) CreateOrder(ctx context.Context, payload OrderRequest) (*Order, error) {
	m.record("CreateOrder", payload)
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, payload)
	}
	return &Order{
		ID:          5001,
		ExternalID:  payload.ExternalID,
		Status:      "draft",
		Shipping:    payload.Shipping,
		Recipient:   payload.Recipient,
		Items:       payload.Items,
		RetailCosts: payload.RetailCosts,
	}, nil
}
