package generator

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"upscaler/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func geminiRequestFixture() domain.UpscaleRequest {
	return domain.UpscaleRequest{
		Prompt:      "upscale",
		Model:       "gemini-3-pro-image-preview",
		ImageSize:   "2K",
		AspectRatio: "16:9",
		Source:      domain.SourceImage{Name: "a.png", MIMEType: "image/png", Data: []byte("png-bytes")},
	}
}

func TestGemini_GenerateFromImage(t *testing.T) {
	imageData := base64.StdEncoding.EncodeToString([]byte("upscaled-bytes"))

	tests := []struct {
		name           string
		responseBody   string
		responseStatus int
		wantParts      []domain.Part
		wantErr        bool
		wantAuthErr    bool
	}{
		{
			name: "text then image",
			responseBody: `{"candidates":[{"content":{"role":"model","parts":[` +
				`{"text":"Here is your image"},` +
				`{"inlineData":{"mimeType":"image/png","data":"` + imageData + `"}}]}}]}`,
			responseStatus: http.StatusOK,
			wantParts: []domain.Part{
				domain.TextPart{Text: "Here is your image"},
				domain.InlineImagePart{Data: []byte("upscaled-bytes"), MIMEType: "image/png"},
			},
		},
		{
			name:           "no candidates",
			responseBody:   `{"candidates":[]}`,
			responseStatus: http.StatusOK,
			wantParts:      nil,
		},
		{
			name:           "unauthorized",
			responseBody:   `{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`,
			responseStatus: http.StatusForbidden,
			wantErr:        true,
			wantAuthErr:    true,
		},
		{
			name:           "bad request",
			responseBody:   `{"error":{"code":400,"message":"bad image","status":"INVALID_ARGUMENT"}}`,
			responseStatus: http.StatusBadRequest,
			wantErr:        true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.True(t, strings.HasSuffix(r.URL.Path, "gemini-3-pro-image-preview:generateContent"))

				var body map[string]interface{}
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Contains(t, body, "contents")
				assert.Contains(t, body, "generationConfig")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.responseStatus)
				w.Write([]byte(tc.responseBody))
			}))
			defer srv.Close()

			g, err := NewGemini(t.Context(), "test-api-key", srv.URL)
			require.NoError(t, err)

			got, err := g.GenerateFromImage(t.Context(), geminiRequestFixture())
			if tc.wantErr {
				require.Error(t, err)
				assert.Equal(t, tc.wantAuthErr, errors.Is(err, domain.ErrUnauthorized))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantParts, got)
		})
	}
}

func TestGemini_GenerateFromImageMissingImage(t *testing.T) {
	g, err := NewGemini(t.Context(), "test-api-key", "http://127.0.0.1:0")
	require.NoError(t, err)

	_, err = g.GenerateFromImage(t.Context(), domain.UpscaleRequest{Prompt: "upscale"})
	require.EqualError(t, err, "missing image")
}

func TestNewGenerateConfig(t *testing.T) {
	req := geminiRequestFixture()

	cfg := newGenerateConfig(req)
	assert.Equal(t, []string{"IMAGE"}, cfg.ResponseModalities)
	require.NotNil(t, cfg.ImageConfig)
	assert.Equal(t, "16:9", cfg.ImageConfig.AspectRatio)
	assert.Equal(t, "2K", cfg.ImageConfig.ImageSize)

	req.AspectRatio = domain.AspectAuto
	cfg = newGenerateConfig(req)
	assert.Empty(t, cfg.ImageConfig.AspectRatio)
}

func TestToParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			nil,
			{Content: nil},
			{Content: &genai.Content{Parts: []*genai.Part{
				nil,
				{Text: "thinking", Thought: true},
				{Text: "caption"},
				{InlineData: &genai.Blob{Data: []byte("img"), MIMEType: "image/webp"}},
				{},
			}}},
		},
	}

	assert.Equal(t, []domain.Part{
		domain.OtherPart{Kind: "thought"},
		domain.TextPart{Text: "caption"},
		domain.InlineImagePart{Data: []byte("img"), MIMEType: "image/webp"},
		domain.OtherPart{Kind: "unknown"},
	}, toParts(resp))

	assert.Nil(t, toParts(nil))
}

func TestClassifyGeminiError(t *testing.T) {
	err := classifyGeminiError(genai.APIError{Code: http.StatusUnauthorized, Message: "nope"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	err = classifyGeminiError(genai.APIError{Code: http.StatusTooManyRequests, Message: "quota"})
	assert.NotErrorIs(t, err, domain.ErrUnauthorized)

	err = classifyGeminiError(errors.New("connection reset"))
	assert.EqualError(t, err, "gemini request failed: connection reset")
}
