package port

import "upscaler/internal/core/domain"

// Reporter prints human-readable progress for a batch run.
type Reporter interface {
	Start(provider, model, size, aspect string)
	NoImages(dir string)
	Found(count int)
	Processing(name string, current, total int)
	Saved(name string, size int64)
	Skipped(name string, err error)
	Summary(tally domain.Tally, outputDir string)
}
