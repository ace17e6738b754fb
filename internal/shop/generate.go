package shop

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/yourchoicemarket/llm-shop/internal/catalog"
	"github.com/yourchoicemarket/llm-shop/internal/llm"
	"github.com/yourchoicemarket/llm-shop/internal/printful"
	"github.com/yourchoicemarket/llm-shop/internal/storage"
	"golang.org/x/sync/errgroup"
)

// GenerateRequest is a shopper's request for a new product.
type GenerateRequest struct {
	Prompt string
	Style  string
	UserID string
}

// GenerateProduct runs the whole pipeline: the prompt is split into a product
// type and artwork, the product type is matched to a catalog category, a
// Printful product is chosen while the artwork renders, and the result is
// published to the Printful store and saved.
func (s *Service) GenerateProduct(ctx context.Context, req GenerateRequest) (p *storage.Product, err error) {
	start := time.Now()
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
		}
		productsGenerated.WithLabelValues(result).Inc()
		generationDuration.Observe(time.Since(start).Seconds())
	}()

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}
	style := llm.NormalizeStyle(req.Style)

	analysis, err := s.Analyzer.AnalyzePrompt(ctx, prompt, style)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze prompt: %w", err)
	}
	idea := analysis.Idea

	match := s.matchIdea(idea)
	if !match.OK {
		return nil, fmt.Errorf("%w for %q", ErrNoCategory, idea.Product)
	}

	log.Info().
		Str("product", idea.Product).
		Int("categoryID", match.CategoryID).
		Int("score", match.Score).
		Str("source", string(match.Source)).
		Msg("matched product category")

	var (
		chosen   printful.Product
		imageURL string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		products, err := s.Printful.GetProducts(gctx, match.CategoryID)
		if err != nil {
			return fmt.Errorf("failed to list products: %w", err)
		}
		var ok bool
		if chosen, ok = pickProduct(products, idea.Product); !ok {
			return fmt.Errorf("%w %d", ErrNoProducts, match.CategoryID)
		}
		return nil
	})
	g.Go(func() error {
		png, err := s.Images.GenerateImage(gctx, idea.ImagePrompt, style)
		if err != nil {
			return fmt.Errorf("failed to generate artwork: %w", err)
		}
		_, imageURL, err = s.Files.Save(png)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	detail, err := s.Printful.GetProduct(ctx, chosen.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", chosen.ID, err)
	}
	variant, ok := pickVariant(detail.Variants)
	if !ok {
		return nil, fmt.Errorf("%w: product %d has no variants", ErrNoProducts, chosen.ID)
	}
	cost, err := parseCents(variant.Price)
	if err != nil {
		return nil, fmt.Errorf("variant %d: %w", variant.ID, err)
	}
	price := toCents(float64(cost) / 100 * s.opts.PriceMarkup)

	product := &storage.Product{
		ID:                uuid.NewString(),
		Name:              idea.Title,
		Description:       idea.Description,
		ImageURL:          imageURL,
		PriceCents:        price,
		Currency:          s.opts.Currency,
		CategoryID:        match.CategoryID,
		MatchScore:        match.Score,
		MatchSource:       string(match.Source),
		PrintfulProductID: chosen.ID,
		PrintfulVariantID: variant.ID,
		Prompt:            prompt,
		Style:             style,
		CreatedBy:         req.UserID,
	}

	synced, err := s.Printful.CreateSyncProduct(ctx, printful.SyncProductRequest{
		SyncProduct: printful.SyncProductInfo{
			ExternalID: product.ID,
			Name:       product.Name,
			Thumbnail:  imageURL,
		},
		SyncVariants: []printful.SyncVariantInfo{{
			VariantID:   variant.ID,
			RetailPrice: formatCents(price),
			Files:       []printful.File{{URL: imageURL}},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create store product: %w", err)
	}
	product.SyncProductID = synced.ID

	product.MockupURL = s.renderMockup(ctx, chosen.ID, variant.ID, imageURL)

	if err := s.Store.SaveProduct(product); err != nil {
		return nil, err
	}

	log.Info().
		Str("productID", product.ID).
		Str("name", product.Name).
		Int("printfulProductID", chosen.ID).
		Int("variantID", variant.ID).
		Int64("priceCents", price).
		Dur("took", time.Since(start)).
		Msg("product generated")

	return product, nil
}

// matchIdea matches the product type, then the title if that fails.
func (s *Service) matchIdea(idea *llm.ProductIdea) catalog.MatchResult {
	res := s.Catalog.Match(idea.Product, s.opts.MinMatchScore)
	if !res.OK && idea.Title != "" && idea.Title != idea.Product {
		res = s.Catalog.Match(idea.Title, s.opts.MinMatchScore)
	}
	return res
}

// renderMockup returns a mockup URL, or "" when mockup generation fails.
// A missing mockup does not fail the product; the artwork is shown instead.
func (s *Service) renderMockup(ctx context.Context, productID, variantID int, imageURL string) string {
	taskKey, err := s.Printful.CreateMockupTask(ctx, productID, printful.MockupRequest{
		VariantIDs: []int{variantID},
		Format:     "png",
		Files:      []printful.MockupFile{{Placement: "default", ImageURL: imageURL}},
	})
	if err != nil {
		log.Warn().Err(err).Int("printfulProductID", productID).Msg("failed to create mockup task")
		return ""
	}

	url, err := s.Printful.WaitForMockupURL(ctx, taskKey)
	if err != nil {
		log.Warn().Err(err).Str("taskKey", taskKey).Msg("mockup not available")
		return ""
	}
	return url
}

// pickProduct chooses the catalog product whose title shares the most tokens
// with the wanted product type. Discontinued products are skipped and ties go
// to the earlier product.
func pickProduct(products []printful.Product, wanted string) (printful.Product, bool) {
	want := make(map[string]bool)
	for tok := range catalog.Tokenize(wanted) {
		want[tok] = true
	}

	best, bestScore, found := printful.Product{}, -1, false
	for _, p := range products {
		if p.IsDiscontinued {
			continue
		}
		score := 0
		for tok := range catalog.Tokenize(p.Title) {
			if want[tok] {
				score++
			}
		}
		if score > bestScore {
			best, bestScore, found = p, score, true
		}
	}
	return best, found
}

// pickVariant returns the first variant in stock, or the first variant when
// none is flagged as in stock.
func pickVariant(variants []printful.Variant) (printful.Variant, bool) {
	if len(variants) == 0 {
		return printful.Variant{}, false
	}
	for _, v := range variants {
		if v.InStock {
			return v, true
		}
	}
	return variants[0], true
}

// ListProducts returns the newest products, optionally of one category.
func (s *Service) ListProducts(limit, categoryID int) ([]storage.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if categoryID != 0 {
		return s.Store.ListProductsByCategory(categoryID, limit)
	}
	return s.Store.ListProducts(limit)
}

// GetProduct returns a product or ErrProductNotFound.
func (s *Service) GetProduct(id string) (*storage.Product, error) {
	p, err := s.Store.GetProduct(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}
