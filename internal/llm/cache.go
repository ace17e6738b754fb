package llm

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/rs/zerolog/log"
	"github.com/yourchoicemarket/llm-shop/internal/storage"
)

// AnalysisCache persists product ideas keyed by request hash.
type AnalysisCache interface {
	GetAnalysisCache(hash string) (*storage.AnalysisCacheEntry, error)
	SetAnalysisCache(hash string, entry *storage.AnalysisCacheEntry) error
}

// CachedAnalyzer wraps a ProductAnalyzer with SQLite caching.
type CachedAnalyzer struct {
	inner ProductAnalyzer
	store AnalysisCache
}

// NewCachedAnalyzer creates a cached analyzer. A nil store disables caching.
func NewCachedAnalyzer(inner ProductAnalyzer, store AnalysisCache) *CachedAnalyzer {
	return &CachedAnalyzer{inner: inner, store: store}
}

// hashRequest creates a SHA256 hash of prompt and style.
// Each part is length prefixed so ("ab","c") and ("a","bc") differ.
func hashRequest(prompt, style string) string {
	h := sha256.New()
	for _, part := range []string{prompt, NormalizeStyle(style)} {
		binary.Write(h, binary.LittleEndian, int64(len(part)))
		h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// AnalyzePrompt implements ProductAnalyzer with caching.
func (c *CachedAnalyzer) AnalyzePrompt(ctx context.Context, prompt, style string) (*AnalysisResult, error) {
	hash := hashRequest(prompt, style)

	if c.store != nil {
		cached, err := c.store.GetAnalysisCache(hash)
		if err != nil {
			log.Warn().Err(err).Msg("failed to check analysis cache")
		} else if cached != nil {
			log.Debug().Str("hash", hash[:16]).Msg("analysis cache hit")
			return &AnalysisResult{
				Idea: &ProductIdea{
					Product:     cached.Product,
					ImagePrompt: cached.ImagePrompt,
					Title:       cached.Title,
					Description: cached.Description,
				},
			}, nil
		}
	}

	result, err := c.inner.AnalyzePrompt(ctx, prompt, style)
	if err != nil {
		return nil, err
	}

	if c.store != nil && result.Idea != nil {
		entry := &storage.AnalysisCacheEntry{
			Product:     result.Idea.Product,
			ImagePrompt: result.Idea.ImagePrompt,
			Title:       result.Idea.Title,
			Description: result.Idea.Description,
		}
		if err := c.store.SetAnalysisCache(hash, entry); err != nil {
			log.Warn().Err(err).Msg("failed to cache analysis result")
		} else {
			log.Debug().Str("hash", hash[:16]).Msg("cached analysis result")
		}
	}

	return result, nil
}
