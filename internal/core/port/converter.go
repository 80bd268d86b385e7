package port

import (
	"image"
	"upscaler/internal/core/domain"
)

type ImageCodec interface {
	// Decode reads and decodes the image file at path.
	Decode(path string) (domain.SourceImage, error)
	// DecodeBytes decodes an in-memory image payload.
	DecodeBytes(data []byte) (image.Image, error)
	// Encode writes img to path in the output format and returns the number of bytes written.
	Encode(img image.Image, path string) (int64, error)
}
