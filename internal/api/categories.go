package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yourchoicemarket/llm-shop/internal/catalog"
)

func (s *Server) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories": s.catalog.Load().Categories(),
		"tree":       s.catalog.Tree().Roots(),
	})
}

func (s *Server) getCategory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	cat, ok := s.catalog.Load().Category(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}

	tree := s.catalog.Tree()
	children := make([]catalog.Category, 0)
	for _, child := range tree.Children(id) {
		children = append(children, child.Category)
	}
	c.JSON(http.StatusOK, gin.H{
		"category":   cat,
		"path":       tree.Path(id),
		"breadcrumb": tree.PathString(id),
		"children":   children,
	})
}

type matchRequest struct {
	Text     string `json:"text" binding:"required"`
	MinScore *int   `json:"minScore"`
}

func (s *Server) matchCategory(c *gin.Context) {
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	minScore := s.opts.MinMatchScore
	if req.MinScore != nil {
		minScore = *req.MinScore
	}
	c.JSON(http.StatusOK, s.catalog.Match(req.Text, minScore))
}
