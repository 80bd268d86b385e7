package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"time"
	"upscaler/internal/core/domain"
	"upscaler/internal/core/port"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// UpscaleOptions holds the request settings shared by every image in a batch.
type UpscaleOptions struct {
	Prompt      string
	Model       string
	ImageSize   string
	AspectRatio string
	Timeout     time.Duration
	// RequestsPerMinute caps calls to the generator. Zero means unlimited.
	RequestsPerMinute int
}

// Upscaler is the remote upscale client. It turns generator responses into decoded images and classifies
// every failure into a domain.UpscaleError.
type Upscaler struct {
	generator port.ImageGenerator
	decoder   port.ImageCodec
	limiter   *rate.Limiter
	options   UpscaleOptions
}

func NewUpscaler(generator port.ImageGenerator, decoder port.ImageCodec, options UpscaleOptions) *Upscaler {
	u := &Upscaler{generator: generator, decoder: decoder, options: options}

	if options.RequestsPerMinute > 0 {
		u.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(options.RequestsPerMinute)), 1)
	}

	return u
}

// Request builds the request sent for source.
func (u *Upscaler) Request(source domain.SourceImage) domain.UpscaleRequest {
	return domain.UpscaleRequest{
		Prompt:      u.options.Prompt,
		Model:       u.options.Model,
		ImageSize:   u.options.ImageSize,
		AspectRatio: u.options.AspectRatio,
		Source:      source,
	}
}

func (u *Upscaler) Upscale(ctx context.Context, source domain.SourceImage) (image.Image, error) {
	l := log.With().Str("file", source.Name).Str("model", u.options.Model).Logger()

	if u.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.options.Timeout)
		defer cancel()
	}

	if u.limiter != nil {
		if err := u.limiter.Wait(ctx); err != nil {
			return nil, domain.NewUpscaleError(domain.KindTransport, fmt.Errorf("rate limiter: %w", err))
		}
	}

	started := time.Now()
	parts, err := u.generator.GenerateFromImage(ctx, u.Request(source))
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, domain.NewUpscaleError(domain.KindAuth, err)
		}
		return nil, domain.NewUpscaleError(domain.KindTransport, err)
	}

	l.Debug().Dur("took", time.Since(started)).Int("parts", len(parts)).Msg("generator responded")

	part, ok := domain.FirstInlineImage(parts)
	if !ok {
		return nil, domain.NewUpscaleError(domain.KindNoImageReturned, domain.ErrNoImage)
	}

	data, err := inlineBytes(part)
	if err != nil {
		return nil, domain.NewUpscaleError(domain.KindDecode, err)
	}

	img, err := u.decoder.DecodeBytes(data)
	if err != nil {
		return nil, domain.NewUpscaleError(domain.KindDecode, err)
	}

	l.Debug().
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Str("mimeType", part.MIMEType).
		Msg("received upscaled image")

	return img, nil
}

// inlineBytes returns the raw image bytes of part, decoding base64 text when the payload is not binary.
func inlineBytes(part domain.InlineImagePart) ([]byte, error) {
	if !part.Base64 && !isBase64Text(part.Data) {
		return part.Data, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(string(part.Data))
	if err != nil {
		if !part.Base64 {
			return part.Data, nil
		}
		return nil, fmt.Errorf("invalid base64 image data: %w", err)
	}

	return decoded, nil
}

func isBase64Text(data []byte) bool {
	if len(data) < 4 || len(data)%4 != 0 {
		return false
	}

	for _, c := range data {
		switch {
		case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9', c == '+', c == '/', c == '=':
		default:
			return false
		}
	}

	return true
}
