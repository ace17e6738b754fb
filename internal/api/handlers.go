package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/yourchoicemarket/llm-shop/internal/shop"
	"github.com/yourchoicemarket/llm-shop/internal/storage"
)

type generateRequest struct {
	Prompt string `json:"prompt" binding:"required"`
	Style  string `json:"style"`
}

// productResponse adds the fields the storefront reads to a stored product.
type productResponse struct {
	storage.Product
	Image string `json:"image"`
	Title string `json:"title"`
	Price string `json:"price"`
}

func newProductResponse(p *storage.Product) productResponse {
	image := p.MockupURL
	if image == "" {
		image = p.ImageURL
	}
	return productResponse{
		Product: *p,
		Image:   image,
		Title:   p.Name,
		Price:   strconv.FormatFloat(float64(p.PriceCents)/100, 'f', 2, 64),
	}
}

func (s *Server) generateProduct(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}

	p, err := s.shop.GenerateProduct(c.Request.Context(), shop.GenerateRequest{
		Prompt: req.Prompt,
		Style:  req.Style,
	})
	if err != nil {
		s.writeError(c, err, http.StatusBadGateway)
		return
	}
	c.JSON(http.StatusOK, newProductResponse(p))
}

func (s *Server) listProducts(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	categoryID, err := queryInt(c, "categoryId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid categoryId"})
		return
	}

	products, err := s.shop.ListProducts(limit, categoryID)
	if err != nil {
		s.writeError(c, err, http.StatusInternalServerError)
		return
	}
	resp := make([]productResponse, len(products))
	for i := range products {
		resp[i] = newProductResponse(&products[i])
	}
	c.JSON(http.StatusOK, gin.H{"products": resp})
}

func (s *Server) getProduct(c *gin.Context) {
	p, err := s.shop.GetProduct(c.Param("id"))
	if err != nil {
		s.writeError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, newProductResponse(p))
}

func (s *Server) placeOrder(c *gin.Context) {
	var req shop.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	order, err := s.shop.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err, http.StatusBadGateway)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (s *Server) getOrder(c *gin.Context) {
	order, err := s.shop.GetOrder(c.Param("id"))
	if err != nil {
		s.writeError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, order)
}

// writeError maps domain errors to status codes. Anything unknown gets
// fallback, which is 502 for handlers that call out to Gemini or Printful.
func (s *Server) writeError(c *gin.Context, err error, fallback int) {
	status := fallback
	switch {
	case errors.Is(err, shop.ErrEmptyPrompt), errors.Is(err, shop.ErrInvalidOrder):
		status = http.StatusBadRequest
	case errors.Is(err, shop.ErrNoCategory), errors.Is(err, shop.ErrNoProducts):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, shop.ErrProductNotFound), errors.Is(err, shop.ErrOrderNotFound):
		status = http.StatusNotFound
	}

	_ = c.Error(err)
	msg := err.Error()
	if status >= 500 {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		if status == http.StatusInternalServerError {
			msg = "internal server error"
		}
	}
	c.JSON(status, gin.H{"error": msg})
}

// queryInt parses an optional integer query parameter. Missing means 0.
func queryInt(c *gin.Context, key string) (int, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
