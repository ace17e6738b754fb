package llm

import (
	"context"
	"strings"
)

// ProductIdea is what the model made of a shopper's free-text request.
type ProductIdea struct {
	Product     string `json:"product"`     // Product type, e.g. "mug" or "t-shirt"
	ImagePrompt string `json:"imagePrompt"` // Artwork to print, without the product itself
	Title       string `json:"title"`       // Short listing title
	Description string `json:"description"` // One or two sentences of listing copy
}

// Usage contains token usage and cost information.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
	CostUSD      float64
}

// AnalysisResult contains the product idea and usage information.
type AnalysisResult struct {
	Idea  *ProductIdea
	Usage Usage
}

// ProductAnalyzer splits a shopper's prompt into a product type and an image prompt.
type ProductAnalyzer interface {
	AnalyzePrompt(ctx context.Context, prompt, style string) (*AnalysisResult, error)
}

// ImageGenerator renders artwork for a product. It returns PNG data.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, imagePrompt, style string) ([]byte, error)
}

// Art styles offered by the storefront.
const (
	StyleCartoon    = "Cartoon"
	StyleWatercolor = "Watercolor"
	StyleRealistic  = "Realistic"
)

// NormalizeStyle maps user input to one of the known styles, ignoring case.
// Unknown or empty input falls back to StyleRealistic.
func NormalizeStyle(style string) string {
	for _, s := range []string{StyleCartoon, StyleWatercolor, StyleRealistic} {
		if strings.EqualFold(strings.TrimSpace(style), s) {
			return s
		}
	}
	return StyleRealistic
}
