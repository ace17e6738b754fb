package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"github.com/yourchoicemarket/llm-shop/internal/catalog"
	"github.com/yourchoicemarket/llm-shop/internal/shop"
	"github.com/yourchoicemarket/llm-shop/internal/storage"
)

// Shop is the part of shop.Service the HTTP API exposes.
type Shop interface {
	GenerateProduct(ctx context.Context, req shop.GenerateRequest) (*storage.Product, error)
	ListProducts(limit, categoryID int) ([]storage.Product, error)
	GetProduct(id string) (*storage.Product, error)
	PlaceOrder(ctx context.Context, req shop.CheckoutRequest) (*storage.Order, error)
	GetOrder(id string) (*storage.Order, error)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping() error
}

type Options struct {
	Addr           string
	AllowedOrigins []string
	ImageDir       string
	MinMatchScore  int
	Production     bool
	// Registry receives the HTTP metrics and backs /metrics. When nil the
	// global Prometheus registry is used.
	Registry *prometheus.Registry
}

type Server struct {
	opts    Options
	shop    Shop
	catalog *catalog.Store
	db      Pinger
	router  *gin.Engine
	handler http.Handler
	server  *http.Server
}

func New(opts Options, shop Shop, cat *catalog.Store, db Pinger) *Server {
	if opts.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		metrics    http.Handler          = promhttp.Handler()
	)
	if opts.Registry != nil {
		registerer = opts.Registry
		metrics = promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})
	}

	s := &Server{
		opts:    opts,
		shop:    shop,
		catalog: cat,
		db:      db,
	}

	router := gin.New()

	// Middleware
	router.Use(Logger())
	router.Use(Recovery())
	router.Use(NewMetrics(registerer).Middleware())

	// Routes
	router.GET("/healthz", s.health)
	router.GET("/metrics", gin.WrapH(metrics))
	if opts.ImageDir != "" {
		router.Static("/images", opts.ImageDir)
	}

	router.POST("/generateProduct", s.generateProduct)

	products := router.Group("/products")
	{
		products.GET("", s.listProducts)
		products.GET("/:id", s.getProduct)
	}

	categories := router.Group("/categories")
	{
		categories.GET("", s.listCategories)
		categories.GET("/:id", s.getCategory)
		categories.POST("/match", s.matchCategory)
	}

	orders := router.Group("/orders")
	{
		orders.POST("", s.placeOrder)
		orders.GET("/:id", s.getOrder)
	}

	s.router = router
	s.handler = cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         600,
	}).Handler(router)

	return s
}

// Handler returns the full HTTP handler, CORS included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until Stop is called. Returns nil after a graceful shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Generating a product waits on two model calls and a mockup task
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Str("addr", s.opts.Addr).Msg("starting http server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	log.Info().Msg("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	if s.db != nil {
		if err := s.db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"categories": s.catalog.Load().Len(),
	})
}
