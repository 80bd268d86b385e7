package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"upscaler/internal/core/domain"
	"upscaler/internal/core/port"
)

type MockImageGenerator struct {
	mutex     sync.Mutex
	responses map[string][]domain.Part
	errs      map[string]error
	requests  []domain.UpscaleRequest
	onRequest func(name string)
}

func (m *MockImageGenerator) GenerateFromImage(_ context.Context, request domain.UpscaleRequest) ([]domain.Part, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.requests = append(m.requests, request)
	if m.onRequest != nil {
		m.onRequest(request.Source.Name)
	}
	if err := m.errs[request.Source.Name]; err != nil {
		return nil, err
	}

	return m.responses[request.Source.Name], nil
}

func (m *MockImageGenerator) calledFor() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	names := make([]string, len(m.requests))
	for i, r := range m.requests {
		names[i] = r.Source.Name
	}

	return names
}

// MockCodec decodes any file whose name is not in decodeErrs and "encodes" by writing a marker file.
type MockCodec struct {
	mutex      sync.Mutex
	decodeErrs map[string]error
	encodeErr  error
	encoded    []string
}

func (m *MockCodec) Decode(path string) (domain.SourceImage, error) {
	name := filepath.Base(path)
	if err := m.decodeErrs[name]; err != nil {
		return domain.SourceImage{}, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	return domain.SourceImage{
		Name:     name,
		Image:    img,
		Mode:     domain.ModeRGBA,
		Format:   "png",
		MIMEType: "image/png",
		Data:     []byte("source:" + name),
	}, nil
}

func (m *MockCodec) DecodeBytes(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}

	return img, nil
}

func (m *MockCodec) Encode(img image.Image, path string) (int64, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.encodeErr != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrEncode, m.encodeErr)
	}

	content := fmt.Sprintf("%dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return 0, err
	}

	m.encoded = append(m.encoded, filepath.Base(path))

	return int64(len(content)), nil
}

type MockStore struct {
	files   []string
	listErr error
	ensured []string
	moved   []string
}

func (m *MockStore) EnsureDir(dir string) error {
	m.ensured = append(m.ensured, dir)
	return os.MkdirAll(dir, 0o755)
}

func (m *MockStore) ListImages(_ string) ([]string, error) {
	return m.files, m.listErr
}

func (m *MockStore) Move(path, dir string) (string, error) {
	m.moved = append(m.moved, filepath.Base(path))
	return filepath.Join(dir, filepath.Base(path)), nil
}

type MockCredentials struct {
	key string
}

func (m *MockCredentials) Resolve() (string, error) {
	if m.key == "" {
		return "", fmt.Errorf("%w: set GOOGLE_API_KEY or GEMINI_API_KEY environment variable",
			domain.ErrMissingCredential)
	}

	return m.key, nil
}

type MockReporter struct {
	mutex    sync.Mutex
	noImages bool
	found    int
	saved    []string
	skipped  []string
	summary  *domain.Tally
}

func (m *MockReporter) Start(_, _, _, _ string) {}

func (m *MockReporter) NoImages(_ string) { m.noImages = true }

func (m *MockReporter) Found(count int) { m.found = count }

func (m *MockReporter) Processing(_ string, _, _ int) {}

func (m *MockReporter) Saved(name string, _ int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.saved = append(m.saved, name)
}

func (m *MockReporter) Skipped(name string, _ error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.skipped = append(m.skipped, name)
}

func (m *MockReporter) Summary(tally domain.Tally, _ string) { m.summary = &tally }

func factoryFor(g port.ImageGenerator) port.GeneratorFactory {
	return func(_ context.Context, _ string) (port.ImageGenerator, error) {
		return g, nil
	}
}

func failingFactory(_ context.Context, _ string) (port.ImageGenerator, error) {
	return nil, errors.New("mock error")
}

func pngBytes(w, h int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})

	var buf bytes.Buffer
	_ = png.Encode(&buf, img)

	return buf.Bytes()
}
