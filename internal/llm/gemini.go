package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const (
	geminiModel = "gemini-2.5-flash"
	imagenModel = "imagen-3.0-generate-002"
)

// Gemini pricing (per million tokens)
const (
	geminiInputPricePerMillion  = 0.30
	geminiOutputPricePerMillion = 2.50
	imagenPricePerImage         = 0.03
)

const productPrompt = `Your task is to figure out what product the user wants to buy and what artwork should be printed on it, based on the following request:

%q

Preferred art style: %s

Respond in JSON format with these fields:
- product: the kind of print-on-demand product, as a short noun (e.g. "mug", "t-shirt", "poster", "tote bag")
- imagePrompt: a prompt for an image generator describing ONLY the artwork. It must NOT mention or depict the product itself.
- title: a short catchy product title (max 60 characters)
- description: one or two sentences of shop copy

Example response:
{"product": "cup", "imagePrompt": "a santa on a red background with a reindeer", "title": "Santa's Reindeer Mug", "description": "Start your winter mornings with Santa and his most loyal reindeer."}

Respond ONLY with the JSON object, no markdown or other text.`

// ErrNoImage is returned when the image model produced nothing, usually
// because every candidate was filtered.
var ErrNoImage = errors.New("no image generated")

// productIdeaSchema forces the model into the ProductIdea shape.
var productIdeaSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"product":     {Type: genai.TypeString},
		"imagePrompt": {Type: genai.TypeString},
		"title":       {Type: genai.TypeString},
		"description": {Type: genai.TypeString},
	},
	Required:         []string{"product", "imagePrompt"},
	PropertyOrdering: []string{"product", "imagePrompt", "title", "description"},
}

// Gemini uses Google's Gemini and Imagen models for product ideas and artwork.
type Gemini struct {
	client *genai.Client
}

// NewGemini creates a Gemini client authenticated with apiKey.
func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{client: client}, nil
}

// AnalyzePrompt implements ProductAnalyzer.
func (g *Gemini) AnalyzePrompt(ctx context.Context, prompt, style string) (*AnalysisResult, error) {
	text := fmt.Sprintf(productPrompt, prompt, NormalizeStyle(style))

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   productIdeaSchema,
	}

	result, err := g.client.Models.GenerateContent(ctx, geminiModel, []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(text)}, genai.RoleUser),
	}, config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from Gemini")
	}

	idea, err := parseProductIdea(result.Text())
	if err != nil {
		return nil, err
	}

	usage := Usage{}
	if result.UsageMetadata != nil {
		usage.InputTokens = int64(result.UsageMetadata.PromptTokenCount)
		usage.OutputTokens = int64(result.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int64(result.UsageMetadata.TotalTokenCount)
		usage.CostUSD = calculateGeminiCost(usage.InputTokens, usage.OutputTokens, geminiInputPricePerMillion, geminiOutputPricePerMillion)
	}

	log.Info().
		Str("model", geminiModel).
		Str("product", idea.Product).
		Int64("inputTokens", usage.InputTokens).
		Int64("outputTokens", usage.OutputTokens).
		Float64("costUSD", usage.CostUSD).
		Msg("product idea llm call")

	return &AnalysisResult{Idea: idea, Usage: usage}, nil
}

// GenerateImage implements ImageGenerator.
func (g *Gemini) GenerateImage(ctx context.Context, imagePrompt, style string) ([]byte, error) {
	prompt := buildImagePrompt(imagePrompt, style)

	result, err := g.client.Models.GenerateImages(ctx, imagenModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/png",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate image: %w", err)
	}

	for _, img := range result.GeneratedImages {
		if img.Image == nil || len(img.Image.ImageBytes) == 0 {
			if img.RAIFilteredReason != "" {
				log.Warn().Str("reason", img.RAIFilteredReason).Msg("generated image was filtered")
			}
			continue
		}

		log.Info().
			Str("model", imagenModel).
			Int("bytes", len(img.Image.ImageBytes)).
			Float64("costUSD", imagenPricePerImage).
			Msg("image generation call")

		return img.Image.ImageBytes, nil
	}

	return nil, ErrNoImage
}

func buildImagePrompt(imagePrompt, style string) string {
	return strings.TrimSpace(imagePrompt) + " in the style of " + NormalizeStyle(style)
}

func calculateGeminiCost(inputTokens, outputTokens int64, inputPrice, outputPrice float64) float64 {
	inputCost := float64(inputTokens) / 1_000_000 * inputPrice
	outputCost := float64(outputTokens) / 1_000_000 * outputPrice
	return inputCost + outputCost
}

// extractJSONObject extracts a JSON object from text that may contain markdown
// code blocks or other formatting.
func extractJSONObject(text string) (string, error) {
	text = strings.TrimSpace(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response: %s", text)
	}
	return text[start : end+1], nil
}

func parseProductIdea(text string) (*ProductIdea, error) {
	jsonStr, err := extractJSONObject(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w", err)
	}

	var idea ProductIdea
	if err := json.Unmarshal([]byte(jsonStr), &idea); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w (response: %s)", err, jsonStr)
	}

	idea.Product = strings.TrimSpace(idea.Product)
	idea.ImagePrompt = strings.TrimSpace(idea.ImagePrompt)
	if idea.Product == "" {
		return nil, fmt.Errorf("model did not name a product (response: %s)", jsonStr)
	}
	if idea.Title == "" {
		idea.Title = idea.Product
	}

	return &idea, nil
}
