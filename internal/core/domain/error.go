package domain

import "fmt"

type ErrorKind string

const (
	KindTransport       ErrorKind = "transport"
	KindAuth            ErrorKind = "auth"
	KindNoImageReturned ErrorKind = "no_image"
	KindDecode          ErrorKind = "decode"
)

// UpscaleError is returned by the upscale client for every failure.
type UpscaleError struct {
	Kind ErrorKind
	Err  error
}

func NewUpscaleError(kind ErrorKind, err error) *UpscaleError {
	return &UpscaleError{Kind: kind, Err: err}
}

func (e *UpscaleError) Error() string {
	return fmt.Sprintf("upscale failed (%s): %v", e.Kind, e.Err)
}

func (e *UpscaleError) Unwrap() error {
	return e.Err
}
