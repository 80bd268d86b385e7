package domain

import (
	"image"
	"path/filepath"
	"strings"
)

type ColorMode string

const (
	ModePaletted ColorMode = "P"
	ModeRGBA     ColorMode = "RGBA"
	ModeRGB      ColorMode = "RGB"
	ModeGray     ColorMode = "L"
	ModeCMYK     ColorMode = "CMYK"
	ModeOther    ColorMode = "other"
)

// HasAlpha reports whether images in this mode can carry per-pixel transparency.
func (m ColorMode) HasAlpha() bool {
	return m == ModePaletted || m == ModeRGBA
}

// ColorModeOf maps the concrete image type to its color mode.
func ColorModeOf(img image.Image) ColorMode {
	switch img.(type) {
	case *image.Paletted:
		return ModePaletted
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64, *image.Alpha, *image.Alpha16,
		*image.NYCbCrA:
		return ModeRGBA
	case *image.YCbCr:
		return ModeRGB
	case *image.Gray, *image.Gray16:
		return ModeGray
	case *image.CMYK:
		return ModeCMYK
	default:
		return ModeOther
	}
}

// SourceImage is an input file decoded into memory, along with the raw bytes that are sent upstream.
type SourceImage struct {
	Name     string
	Image    image.Image
	Mode     ColorMode
	Format   string
	MIMEType string
	Data     []byte
}

// Stem returns the file name without its extension.
func (s SourceImage) Stem() string {
	return Stem(s.Name)
}

func Stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// UpscaleRequest is the value handed to a generator for a single image.
type UpscaleRequest struct {
	Prompt      string
	Model       string
	ImageSize   string
	AspectRatio string
	Source      SourceImage
}

// Tally is a point-in-time copy of batch counters.
type Tally struct {
	Attempted int
	Succeeded int
	Failed    int
}
