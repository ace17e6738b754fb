package printful

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/yourchoicemarket/llm-shop/internal/catalog"
)

const (
	ApiBaseUrl = "https://api.printful.com"

	DefaultPollInterval    = 3 * time.Second
	DefaultMaxPollAttempts = 10
)

var (
	// ErrMockupPending is returned when a mockup task did not finish in time.
	ErrMockupPending = errors.New("mockup not ready")
	// ErrMockupFailed is returned when Printful reports the mockup task as failed.
	ErrMockupFailed = errors.New("mockup generation failed")
)

// envelope is the wrapper around every Printful API response.
type envelope[T any] struct {
	Code   int `json:"code"`
	Result T   `json:"result"`
}

type apiError struct {
	Code  int `json:"code"`
	Error struct {
		Reason  string `json:"reason"`
		Message string `json:"message"`
	} `json:"error"`
}

type ClientOpts struct {
	BaseURL string
	Token   string
	StoreID string
}

type Client struct {
	httpClient *resty.Client
	baseURL    string

	// PollInterval and MaxPollAttempts control WaitForMockupURL.
	PollInterval    time.Duration
	MaxPollAttempts int
}

// Ensure Client implements Service
var _ Service = (*Client)(nil)

func NewClient(opts ClientOpts) *Client {
	c := Client{
		baseURL:         ApiBaseUrl,
		PollInterval:    DefaultPollInterval,
		MaxPollAttempts: DefaultMaxPollAttempts,
	}
	if opts.BaseURL != "" {
		c.baseURL = opts.BaseURL
	}
	c.httpClient = resty.New().
		SetBaseURL(c.baseURL).
		SetTimeout(60*time.Second).
		SetHeader("Accept", "application/json").
		SetError(&apiError{})
	if opts.Token != "" {
		c.httpClient.SetAuthToken(opts.Token)
	}
	if opts.StoreID != "" {
		c.httpClient.SetHeader("X-PF-Store-Id", opts.StoreID)
	}

	return &c
}

func (c *Client) req(ctx context.Context, result any) *resty.Request {
	request := c.httpClient.
		NewRequest().
		SetContext(ctx)

	if result != nil {
		request.SetResult(result)
	}

	return request
}

// GetCategories returns the full catalog category list.
func (c *Client) GetCategories(ctx context.Context) ([]catalog.Category, error) {
	result := &envelope[struct {
		Categories []catalog.Category `json:"categories"`
	}]{}

	if _, err := handleError(c.req(ctx, result).Get("/categories")); err != nil {
		return nil, err
	}
	return result.Result.Categories, nil
}

// GetProducts lists the catalog products of a category.
func (c *Client) GetProducts(ctx context.Context, categoryID int) ([]Product, error) {
	result := &envelope[[]Product]{}

	_, err := handleError(c.req(ctx, result).
		SetQueryParam("category_id", strconv.Itoa(categoryID)).
		Get("/products"))
	if err != nil {
		return nil, err
	}
	return result.Result, nil
}

// GetProduct returns a catalog product with its variants.
func (c *Client) GetProduct(ctx context.Context, productID int) (*ProductDetail, error) {
	result := &envelope[ProductDetail]{}

	_, err := handleError(c.req(ctx, result).
		SetPathParam("id", strconv.Itoa(productID)).
		Get("/products/{id}"))
	if err != nil {
		return nil, err
	}
	return &result.Result, nil
}

// CreateSyncProduct adds a product to the store.
func (c *Client) CreateSyncProduct(ctx context.Context, payload SyncProductRequest) (*SyncProduct, error) {
	result := &envelope[SyncProduct]{}

	_, err := handleError(c.req(ctx, result).
		SetBody(payload).
		Post("/store/products"))
	if err != nil {
		return nil, err
	}
	return &result.Result, nil
}

// CreateMockupTask starts mockup generation and returns the task key.
func (c *Client) CreateMockupTask(ctx context.Context, productID int, payload MockupRequest) (string, error) {
	result := &envelope[MockupTask]{}

	_, err := handleError(c.req(ctx, result).
		SetPathParam("id", strconv.Itoa(productID)).
		SetBody(payload).
		Post("/mockup-generator/create-task/{id}"))
	if err != nil {
		return "", err
	}
	if result.Result.TaskKey == "" {
		return "", fmt.Errorf("mockup task created without a task key")
	}
	return result.Result.TaskKey, nil
}

// GetMockupTask returns the current state of a mockup task.
func (c *Client) GetMockupTask(ctx context.Context, taskKey string) (*MockupTask, error) {
	result := &envelope[MockupTask]{}

	_, err := handleError(c.req(ctx, result).
		SetQueryParam("task_key", taskKey).
		Get("/mockup-generator/task"))
	if err != nil {
		return nil, err
	}
	return &result.Result, nil
}

// WaitForMockupURL polls a mockup task until it completes and returns the
// first mockup's URL. Each attempt waits PollInterval first, since a task is
// never done right after creation.
func (c *Client) WaitForMockupURL(ctx context.Context, taskKey string) (string, error) {
	for attempt := 1; attempt <= c.MaxPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.PollInterval):
		}

		task, err := c.GetMockupTask(ctx, taskKey)
		if err != nil {
			return "", err
		}

		log.Debug().Str("taskKey", taskKey).Str("status", task.Status).Int("attempt", attempt).Msg("mockup task status")

		switch task.Status {
		case TaskCompleted:
			for _, m := range task.Mockups {
				if m.MockupURL != "" {
					return m.MockupURL, nil
				}
			}
			return "", fmt.Errorf("mockup task %s completed without mockups", taskKey)
		case TaskFailed:
			return "", fmt.Errorf("%w: %s", ErrMockupFailed, task.Error)
		}
	}

	return "", ErrMockupPending
}

// CreateOrder submits an order. Printful keeps new orders as drafts until
// they are confirmed from the dashboard.
func (c *Client) CreateOrder(ctx context.Context, payload OrderRequest) (*Order, error) {
	result := &envelope[Order]{}

	_, err := handleError(c.req(ctx, result).
		SetBody(payload).
		Post("/orders"))
	if err != nil {
		return nil, err
	}
	return &result.Result, nil
}

// handleError is a generic error handler for failing response (>399 status
// code). Without this, failing responses would have nil error.
func handleError(res *resty.Response, err error) (*resty.Response, error) {
	if err != nil {
		return res, err
	}
	if res.IsError() {
		if apiErr, ok := res.Error().(*apiError); ok && apiErr.Error.Message != "" {
			return res, fmt.Errorf("request failed: %s %s (status: %d): %s", res.Request.Method, res.Request.URL, res.StatusCode(), apiErr.Error.Message)
		}
		return res, fmt.Errorf("request failed: %s %s (status: %d)", res.Request.Method, res.Request.URL, res.StatusCode())
	}

	return res, nil
}
