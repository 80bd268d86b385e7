package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"upscaler/internal/core/domain"
	"upscaler/internal/core/port"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type BatchOptions struct {
	InputDir  string
	OutputDir string
	// DoneDir receives inputs once their output is written. Empty leaves inputs in place.
	DoneDir   string
	Extension string
	// Concurrency is the number of files in flight. Values below 1 mean one.
	Concurrency int
	Provider    string
}

// Batch drives a whole run: credential check, discovery, then decode, upscale and encode for every file.
type Batch struct {
	options     BatchOptions
	upscale     UpscaleOptions
	credentials port.CredentialResolver
	factory     port.GeneratorFactory
	store       port.FileStore
	codec       port.ImageCodec
	reporter    port.Reporter
}

func NewBatch(options BatchOptions,
	upscale UpscaleOptions,
	credentials port.CredentialResolver,
	factory port.GeneratorFactory,
	store port.FileStore,
	codec port.ImageCodec,
	reporter port.Reporter) *Batch {
	return &Batch{
		options:     options,
		upscale:     upscale,
		credentials: credentials,
		factory:     factory,
		store:       store,
		codec:       codec,
		reporter:    reporter,
	}
}

// Run processes every eligible file in the input directory. Per-file failures are reported and counted but
// never returned; an error is only returned when the run cannot start or was cancelled.
func (b *Batch) Run(ctx context.Context) (domain.Tally, error) {
	b.reporter.Start(b.options.Provider, b.upscale.Model, b.upscale.ImageSize, b.upscale.AspectRatio)

	apiKey, err := b.credentials.Resolve()
	if err != nil {
		return domain.Tally{}, err
	}

	for _, dir := range []string{b.options.OutputDir, b.options.DoneDir} {
		if dir == "" {
			continue
		}
		if err := b.store.EnsureDir(dir); err != nil {
			return domain.Tally{}, err
		}
	}

	paths, err := b.store.ListImages(b.options.InputDir)
	if err != nil {
		return domain.Tally{}, err
	}

	if len(paths) == 0 {
		b.reporter.NoImages(b.options.InputDir)
		return domain.Tally{}, nil
	}

	b.reporter.Found(len(paths))
	warnStemCollisions(paths)

	generator, err := b.factory(ctx, apiKey)
	if err != nil {
		return domain.Tally{}, fmt.Errorf("error creating %s generator: %w", b.options.Provider, err)
	}

	upscaler := NewUpscaler(generator, b.codec, b.upscale)

	tally := &Tally{}
	g := &errgroup.Group{}
	g.SetLimit(max(b.options.Concurrency, 1))

	for i, path := range paths {
		if ctx.Err() != nil {
			log.Warn().Int("remaining", len(paths)-i).Msg("batch cancelled, skipping remaining files")
			break
		}

		g.Go(func() error {
			if ctx.Err() != nil {
				log.Debug().Str("file", filepath.Base(path)).Msg("batch cancelled, not starting file")
				return nil
			}

			tally.Attempt()
			if b.process(ctx, upscaler, path, i+1, len(paths)) {
				tally.Succeed()
			} else {
				tally.Fail()
			}
			return nil
		})
	}

	_ = g.Wait()

	result := tally.Snapshot()
	b.reporter.Summary(result, b.options.OutputDir)

	return result, ctx.Err()
}

// process runs one file through decode, upscale and encode and reports whether an output was written.
func (b *Batch) process(ctx context.Context, upscaler port.Upscaler, path string, current, total int) bool {
	name := filepath.Base(path)
	l := log.With().Str("file", name).Int("index", current).Int("total", total).Logger()

	b.reporter.Processing(name, current, total)

	source, err := b.codec.Decode(path)
	if err != nil {
		l.Error().Err(err).Msg("could not decode input")
		b.reporter.Skipped(name, err)
		return false
	}

	upscaled, err := upscaler.Upscale(ctx, source)
	if err != nil {
		kind := domain.KindTransport
		var upscaleErr *domain.UpscaleError
		if errors.As(err, &upscaleErr) {
			kind = upscaleErr.Kind
		}
		l.Error().Err(err).Str("kind", string(kind)).Msg("upscale failed")
		b.reporter.Skipped(name, err)
		return false
	}

	outputName := source.Stem() + b.options.Extension
	size, err := b.codec.Encode(upscaled, filepath.Join(b.options.OutputDir, outputName))
	if err != nil {
		l.Error().Err(err).Msg("could not write output")
		b.reporter.Skipped(name, err)
		return false
	}

	b.reporter.Saved(outputName, size)

	if b.options.DoneDir != "" {
		if _, err := b.store.Move(path, b.options.DoneDir); err != nil {
			l.Warn().Err(err).Msg("could not move input to done directory")
		}
	}

	l.Info().Str("output", outputName).Int64("bytes", size).Msg("image upscaled")

	return true
}

func warnStemCollisions(paths []string) {
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		stem := domain.Stem(path)
		if first, ok := seen[stem]; ok {
			log.Warn().
				Str("first", filepath.Base(first)).
				Str("second", filepath.Base(path)).
				Msg("inputs share a stem, the later output overwrites the earlier one")
			continue
		}
		seen[stem] = path
	}
}
