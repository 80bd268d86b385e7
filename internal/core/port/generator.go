package port

import (
	"context"
	"image"
	"upscaler/internal/core/domain"
)

type ImageGenerator interface {
	// GenerateFromImage sends a single image upscale request and returns the response content parts in order.
	GenerateFromImage(ctx context.Context, request domain.UpscaleRequest) ([]domain.Part, error)
}

// GeneratorFactory builds a generator authenticated with the given API key.
type GeneratorFactory func(ctx context.Context, apiKey string) (ImageGenerator, error)

type Upscaler interface {
	// Upscale returns the upscaled image, or an *domain.UpscaleError describing why none was produced.
	Upscale(ctx context.Context, source domain.SourceImage) (image.Image, error)
}

type CredentialResolver interface {
	// Resolve returns the API credential or an error wrapping domain.ErrMissingCredential.
	Resolve() (string, error)
}
