package reporter

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"upscaler/internal/core/domain"

	"github.com/dustin/go-humanize"
)

const rule = 50

// Console writes human-readable progress to an io.Writer, usually stdout.
type Console struct {
	mutex sync.Mutex
	out   io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Start(provider, model, size, aspect string) {
	c.printf("%s\n", strings.Repeat("=", rule))
	c.printf("Image Upscaler (%s: %s)\n", provider, model)
	c.printf("Target: %s @ %s\n", size, aspect)
	c.printf("%s\n", strings.Repeat("=", rule))
}

func (c *Console) NoImages(dir string) {
	c.printf("No images found in %s/\n", dir)
}

func (c *Console) Found(count int) {
	c.printf("\nFound %d images to process\n\n", count)
}

func (c *Console) Processing(name string, current, total int) {
	c.printf("  [%d/%d] Processing: %s\n", current, total, name)
}

func (c *Console) Saved(name string, size int64) {
	c.printf("  Saved: %s (%s)\n", name, humanize.Bytes(uint64(size)))
}

func (c *Console) Skipped(name string, err error) {
	c.printf("  Error processing %s: %v\n", name, err)
}

func (c *Console) Summary(tally domain.Tally, outputDir string) {
	c.printf("\n%s\n", strings.Repeat("=", rule))
	c.printf("Complete: %d/%d images upscaled\n", tally.Succeeded, tally.Attempted)
	c.printf("Output directory: %s/\n", outputDir)
	c.printf("%s\n", strings.Repeat("=", rule))
}

func (c *Console) printf(format string, args ...any) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	_, _ = fmt.Fprintf(c.out, format, args...)
}
