package converter

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"upscaler/internal/adapters/file"
	"upscaler/internal/core/domain"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	"github.com/rs/zerolog/log"
)

// WebP decodes common raster formats and encodes to lossy WebP.
type WebP struct {
	quality  float32
	lossless bool
}

func NewWebP(quality float32, lossless bool) *WebP {
	return &WebP{quality: quality, lossless: lossless}
}

func (c *WebP) Decode(path string) (domain.SourceImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.SourceImage{}, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return domain.SourceImage{}, fmt.Errorf("%w: %s: %w", domain.ErrDecode, filepath.Base(path), err)
	}

	mode := domain.ColorModeOf(img)

	log.Debug().
		Str("file", filepath.Base(path)).
		Str("format", format).
		Str("mode", string(mode)).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Msg("decoded image")

	return domain.SourceImage{
		Name:     filepath.Base(path),
		Image:    img,
		Mode:     mode,
		Format:   format,
		MIMEType: "image/" + format,
		Data:     data,
	}, nil
}

func (c *WebP) DecodeBytes(data []byte) (image.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}

	log.Debug().Str("format", format).Int("bytes", len(data)).Msg("decoded payload")

	return img, nil
}

func (c *WebP) Encode(img image.Image, path string) (int64, error) {
	options, err := c.options()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrEncode, err)
	}

	prepared := Normalize(img)

	n, err := file.WriteAtomic(path, func(w io.Writer) error {
		return webp.Encode(w, prepared, options)
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", domain.ErrEncode, filepath.Base(path), err)
	}

	return n, nil
}

func (c *WebP) options() (*encoder.Options, error) {
	if c.lossless {
		return encoder.NewLosslessEncoderOptions(encoder.PresetDefault, 6)
	}

	return encoder.NewLossyEncoderOptions(encoder.PresetDefault, c.quality)
}

// Normalize converts img to NRGBA for the encoder. Modes with alpha or a palette keep their transparency,
// everything else is flattened to opaque color.
func Normalize(img image.Image) *image.NRGBA {
	if domain.ColorModeOf(img).HasAlpha() {
		return imaging.Clone(img)
	}

	b := img.Bounds()
	background := imaging.New(b.Dx(), b.Dy(), color.Black)

	return imaging.Overlay(background, img, image.Pt(0, 0), 1)
}
