package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"upscaler/internal/adapters/converter"
	"upscaler/internal/adapters/file"
	"upscaler/internal/adapters/generator"
	"upscaler/internal/adapters/logger"
	"upscaler/internal/adapters/reporter"
	"upscaler/internal/config"
	"upscaler/internal/core/service"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	logger.ConfigureDefault()

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file, using process environment")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	err := run(ctx, os.Args[1:], os.Stdout, newRegistry)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		log.Warn().Msg("interrupted")
		os.Exit(130)
	default:
		log.Fatal().Err(err).Msg("upscaler failed")
	}
}

func run(ctx context.Context, args []string, stdout io.Writer,
	providers func(cfg *config.Config) *generator.Registry) error {
	fs := config.Flags()
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(viper.New(), fs)
	if err != nil {
		return err
	}

	closer := logger.Configure(cfg.Log.Level, cfg.Log.File, os.Stderr)
	defer closer.Close()

	registry := providers(cfg)
	factory, err := registry.Get(cfg.Upscale.Provider)
	if err != nil {
		return err
	}

	batch := service.NewBatch(
		service.BatchOptions{
			InputDir:    cfg.Input.Dir,
			OutputDir:   cfg.Output.Dir,
			DoneDir:     cfg.Done.Dir,
			Extension:   cfg.Output.Extension,
			Concurrency: cfg.Upscale.Concurrency,
			Provider:    cfg.Upscale.Provider,
		},
		service.UpscaleOptions{
			Prompt:            cfg.Upscale.Prompt,
			Model:             cfg.Upscale.Model,
			ImageSize:         cfg.Upscale.ImageSize,
			AspectRatio:       cfg.Upscale.AspectRatio,
			Timeout:           cfg.Upscale.Timeout,
			RequestsPerMinute: cfg.Upscale.RequestsPerMinute,
		},
		config.NewEnvCredentials(cfg.CredentialEnv()...),
		factory,
		file.NewStore(),
		converter.NewWebP(cfg.Output.Quality, cfg.Output.Lossless),
		reporter.NewConsole(stdout),
	)

	tally, err := batch.Run(ctx)
	if err != nil {
		return err
	}

	log.Info().
		Int("attempted", tally.Attempted).
		Int("succeeded", tally.Succeeded).
		Int("failed", tally.Failed).
		Msg("batch finished")

	return nil
}

func newRegistry(cfg *config.Config) *generator.Registry {
	registry := &generator.Registry{}
	registry.Register(config.ProviderGemini, generator.GeminiFactory(""))
	registry.Register(config.ProviderFAL, generator.FALFactory(cfg.FAL.Endpoint, cfg.FAL.UpscaleFactor))

	return registry
}
