package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"upscaler/internal/core/domain"
	"upscaler/internal/core/port"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const modalityImage = "IMAGE"

// Gemini sends upscale requests to the Gemini API generateContent endpoint.
type Gemini struct {
	client *genai.Client
}

// NewGemini creates a Gemini API client. baseURL overrides the API host and is only set in tests.
func NewGemini(ctx context.Context, apiKey, baseURL string) (*Gemini, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating gemini client: %w", err)
	}

	return &Gemini{client: client}, nil
}

// GeminiFactory returns a port.GeneratorFactory for the Gemini provider.
func GeminiFactory(baseURL string) port.GeneratorFactory {
	return func(ctx context.Context, apiKey string) (port.ImageGenerator, error) {
		return NewGemini(ctx, apiKey, baseURL)
	}
}

func (g *Gemini) GenerateFromImage(ctx context.Context, request domain.UpscaleRequest) ([]domain.Part, error) {
	if len(request.Source.Data) == 0 {
		return nil, errors.New("missing image")
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(request.Prompt),
			genai.NewPartFromBytes(request.Source.Data, request.Source.MIMEType),
		}, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, request.Model, contents, newGenerateConfig(request))
	if err != nil {
		return nil, classifyGeminiError(err)
	}

	parts := toParts(resp)

	log.Debug().
		Str("model", request.Model).
		Int("parts", len(parts)).
		Msg("gemini response")

	return parts, nil
}

func newGenerateConfig(request domain.UpscaleRequest) *genai.GenerateContentConfig {
	imageConfig := &genai.ImageConfig{ImageSize: request.ImageSize}
	if request.AspectRatio != "" && request.AspectRatio != domain.AspectAuto {
		imageConfig.AspectRatio = request.AspectRatio
	}

	return &genai.GenerateContentConfig{
		ResponseModalities: []string{modalityImage},
		ImageConfig:        imageConfig,
	}
}

// toParts flattens the parts of every candidate into domain parts, preserving order.
func toParts(resp *genai.GenerateContentResponse) []domain.Part {
	if resp == nil {
		return nil
	}

	var parts []domain.Part
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}

		for _, p := range candidate.Content.Parts {
			switch {
			case p == nil:
				continue
			case p.InlineData != nil:
				parts = append(parts, domain.InlineImagePart{
					Data:     p.InlineData.Data,
					MIMEType: p.InlineData.MIMEType,
				})
			case p.Thought:
				parts = append(parts, domain.OtherPart{Kind: "thought"})
			case p.Text != "":
				parts = append(parts, domain.TextPart{Text: p.Text})
			default:
				parts = append(parts, domain.OtherPart{Kind: "unknown"})
			}
		}
	}

	return parts
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var apiErrPtr *genai.APIError
		if !errors.As(err, &apiErrPtr) || apiErrPtr == nil {
			return fmt.Errorf("gemini request failed: %w", err)
		}
		apiErr = *apiErrPtr
	}

	if apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden {
		return fmt.Errorf("gemini API error %d %s: %w", apiErr.Code, apiErr.Message, domain.ErrUnauthorized)
	}

	return fmt.Errorf("gemini API error: %w", err)
}
