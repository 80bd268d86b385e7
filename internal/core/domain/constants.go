package domain

import (
	"errors"
	"strings"
)

var (
	ErrMissingCredential = errors.New("missing API credential")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrDecode            = errors.New("failed to decode image")
	ErrEncode            = errors.New("failed to encode image")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNoImage           = errors.New("no image returned")
)

// SupportedExtensions lists the input extensions picked up by a batch run.
var SupportedExtensions = []string{".png", ".jpg", ".jpeg", ".webp", ".gif", ".bmp"}

// IsSupportedExtension reports whether ext, dot included, is an eligible input extension. Case is ignored.
func IsSupportedExtension(ext string) bool {
	for _, e := range SupportedExtensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}

	return false
}

// AspectRatios accepted by the remote service. AspectAuto leaves the ratio to the model.
var AspectRatios = []string{AspectAuto, "1:1", "2:3", "3:2", "3:4", "4:3", "4:5", "5:4", "9:16", "16:9", "21:9"}

// ImageSizes are the resolution tiers accepted by the remote service.
var ImageSizes = []string{"1K", "2K", "4K"}

const AspectAuto = "AUTO"

// DefaultWebPQuality is the lossy WebP quality used unless output.quality overrides it.
const DefaultWebPQuality = 95
