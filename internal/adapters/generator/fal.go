package generator

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"upscaler/internal/adapters/file"
	"upscaler/internal/core/domain"
	"upscaler/internal/core/port"

	"github.com/rs/zerolog/log"
)

// FAL provides a wrapper for the FAL upscaler API.
type FAL struct {
	falAPIKey       string
	upscaleEndpoint string
	upscaleFactor   float64
}

func NewFAL(upscaleEndpoint, apiKey string, upscaleFactor float64) *FAL {
	return &FAL{
		falAPIKey:       apiKey,
		upscaleEndpoint: upscaleEndpoint,
		upscaleFactor:   upscaleFactor,
	}
}

// FALFactory returns a port.GeneratorFactory for the FAL provider.
func FALFactory(endpoint string, upscaleFactor float64) port.GeneratorFactory {
	return func(_ context.Context, apiKey string) (port.ImageGenerator, error) {
		return NewFAL(endpoint, apiKey, upscaleFactor), nil
	}
}

type upscaleRequest struct {
	ImageURL      string  `json:"image_url"`
	Prompt        string  `json:"prompt,omitempty"`
	UpscaleFactor float64 `json:"upscale_factor,omitempty"`
	SyncMode      bool    `json:"sync_mode"`
}

type falImage struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}

type imageResponse struct {
	Image  *falImage  `json:"image"`
	Images []falImage `json:"images"`
}

func (f *FAL) GenerateFromImage(ctx context.Context, request domain.UpscaleRequest) ([]domain.Part, error) {
	if len(request.Source.Data) == 0 {
		return nil, errors.New("missing image")
	}

	falRequest := upscaleRequest{
		ImageURL:      dataURI(request.Source.MIMEType, request.Source.Data),
		Prompt:        request.Prompt,
		UpscaleFactor: f.upscaleFactor,
		SyncMode:      true,
	}

	payloadBuf := new(bytes.Buffer)
	err := json.NewEncoder(payloadBuf).Encode(falRequest)
	if err != nil {
		return nil, fmt.Errorf("error encoding FAL request: %w", err)
	}

	body, err := f.postFALRequest(ctx, f.upscaleEndpoint, payloadBuf)
	if err != nil {
		return nil, fmt.Errorf("FAL request failed: %w", err)
	}

	var result imageResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("error unmarshalling FAL imageResponse: %w", err)
	}

	images := result.Images
	if result.Image != nil {
		images = append([]falImage{*result.Image}, images...)
	}

	log.Debug().Int("images", len(images)).Msg("FAL imageResponse")

	parts := make([]domain.Part, 0, len(images))
	for _, img := range images {
		part, err := f.toPart(ctx, img)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}

	return parts, nil
}

// toPart turns a returned image into an inline part. Data URIs stay base64 text, other URLs are downloaded.
func (f *FAL) toPart(ctx context.Context, img falImage) (domain.Part, error) {
	if img.URL == "" {
		return domain.OtherPart{Kind: "empty"}, nil
	}

	if mimeType, payload, ok := parseDataURI(img.URL); ok {
		if mimeType == "" {
			mimeType = img.ContentType
		}
		return domain.InlineImagePart{Data: []byte(payload), MIMEType: mimeType, Base64: true}, nil
	}

	data, err := file.Download(ctx, img.URL)
	if err != nil {
		return nil, fmt.Errorf("error downloading FAL image: %w", err)
	}

	return domain.InlineImagePart{Data: data, MIMEType: img.ContentType}, nil
}

func (f *FAL) postFALRequest(ctx context.Context, url string, payloadBuf *bytes.Buffer) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, payloadBuf)
	if err != nil {
		log.Error().Err(err).Msg("error creating POST request for FAL")
		return nil, err
	}

	req.Header.Add("Authorization", "Key "+f.falAPIKey)
	req.Header.Add("Content-Type", "application/json")

	client := &http.Client{}
	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error executing FAL request: %w", err)
	}

	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading FAL response: %w", err)
	}

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("FAL status %d: %w", res.StatusCode, domain.ErrUnauthorized)
	case res.StatusCode >= http.StatusBadRequest:
		return nil, fmt.Errorf("FAL status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}

func dataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func parseDataURI(uri string) (mimeType, payload string, ok bool) {
	rest, found := strings.CutPrefix(uri, "data:")
	if !found {
		return "", "", false
	}

	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return "", "", false
	}

	mimeType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", "", false
	}

	return mimeType, payload, true
}
