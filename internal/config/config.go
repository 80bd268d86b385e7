package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"upscaler/internal/core/domain"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ProviderGemini = "gemini"
	ProviderFAL    = "fal"
)

const DefaultPrompt = "Upscale this image to higher resolution. " +
	"Do not modify, edit, or change anything about the image content. " +
	"Preserve all original details, colors, composition, and elements exactly as they are. " +
	"Only increase the resolution."

type Config struct {
	Input   InputConfig   `mapstructure:"input"`
	Output  OutputConfig  `mapstructure:"output"`
	Done    DoneConfig    `mapstructure:"done"`
	Upscale UpscaleConfig `mapstructure:"upscale"`
	FAL     FALConfig     `mapstructure:"fal"`
	Log     LogConfig     `mapstructure:"log"`
}

type InputConfig struct {
	Dir string `mapstructure:"dir"`
}

type OutputConfig struct {
	Dir       string  `mapstructure:"dir"`
	Extension string  `mapstructure:"extension"`
	Quality   float32 `mapstructure:"quality"`
	Lossless  bool    `mapstructure:"lossless"`
}

// DoneConfig controls where successfully processed inputs are moved. An empty Dir leaves inputs in place.
type DoneConfig struct {
	Dir string `mapstructure:"dir"`
}

type UpscaleConfig struct {
	Provider          string        `mapstructure:"provider"`
	Model             string        `mapstructure:"model"`
	ImageSize         string        `mapstructure:"image_size"`
	AspectRatio       string        `mapstructure:"aspect_ratio"`
	Prompt            string        `mapstructure:"prompt"`
	Timeout           time.Duration `mapstructure:"timeout"`
	Concurrency       int           `mapstructure:"concurrency"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

type FALConfig struct {
	Endpoint      string  `mapstructure:"endpoint"`
	UpscaleFactor float64 `mapstructure:"upscale_factor"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// SetDefaults registers the built-in values for every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("input.dir", "in")
	v.SetDefault("output.dir", "out")
	v.SetDefault("output.extension", ".webp")
	v.SetDefault("output.quality", domain.DefaultWebPQuality)
	v.SetDefault("output.lossless", false)
	v.SetDefault("done.dir", "")
	v.SetDefault("upscale.provider", ProviderGemini)
	v.SetDefault("upscale.model", "gemini-3-pro-image-preview")
	v.SetDefault("upscale.image_size", "2K")
	v.SetDefault("upscale.aspect_ratio", "16:9")
	v.SetDefault("upscale.prompt", DefaultPrompt)
	v.SetDefault("upscale.timeout", "5m")
	v.SetDefault("upscale.concurrency", 1)
	v.SetDefault("upscale.requests_per_minute", 0)
	v.SetDefault("fal.endpoint", "https://fal.run/fal-ai/clarity-upscaler")
	v.SetDefault("fal.upscale_factor", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// Flags returns the command line flag set understood by Load.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("upscaler", pflag.ContinueOnError)
	fs.String("config", "", "path to a TOML config file (default ./upscaler.toml if present)")
	fs.String("in", "", "input directory")
	fs.String("out", "", "output directory")
	fs.String("done", "", "move processed inputs to this directory")
	fs.String("provider", "", "upscale provider: gemini or fal")
	fs.String("model", "", "remote model name")
	fs.String("size", "", "target size tier: 1K, 2K or 4K")
	fs.String("aspect", "", "target aspect ratio, e.g. 16:9, or AUTO")
	fs.Int("concurrency", 0, "number of images processed at once")
	fs.String("log-level", "", "log level: debug, info, warn or error")

	return fs
}

var flagKeys = map[string]string{
	"in":          "input.dir",
	"out":         "output.dir",
	"done":        "done.dir",
	"provider":    "upscale.provider",
	"model":       "upscale.model",
	"size":        "upscale.image_size",
	"aspect":      "upscale.aspect_ratio",
	"concurrency": "upscale.concurrency",
	"log-level":   "log.level",
}

// Load builds a Config from defaults, an optional config file, UPSCALER_* environment variables and the
// parsed flags, in increasing order of precedence.
func Load(v *viper.Viper, fs *pflag.FlagSet) (*Config, error) {
	SetDefaults(v)

	v.SetConfigType("toml")
	v.SetEnvPrefix("upscaler")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var explicit string
	if fs != nil {
		explicit, _ = fs.GetString("config")
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("error binding flag %s: %w", name, err)
				}
			}
		}
	}

	if explicit != "" {
		v.SetConfigFile(explicit)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not read config file %s: %w", explicit, err)
		}
	} else {
		v.SetConfigName("upscaler")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("could not read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the values a batch run depends on.
func (c *Config) Validate() error {
	var errs []error

	if c.Input.Dir == "" {
		errs = append(errs, errors.New("input.dir must not be empty"))
	}
	if c.Output.Dir == "" {
		errs = append(errs, errors.New("output.dir must not be empty"))
	}
	if !strings.HasPrefix(c.Output.Extension, ".") {
		errs = append(errs, fmt.Errorf("output.extension %q must start with a dot", c.Output.Extension))
	}
	if c.Output.Quality < 0 || c.Output.Quality > 100 {
		errs = append(errs, fmt.Errorf("output.quality %v out of range 0-100", c.Output.Quality))
	}
	if c.Upscale.Provider != ProviderGemini && c.Upscale.Provider != ProviderFAL {
		errs = append(errs, fmt.Errorf("unknown upscale.provider %q", c.Upscale.Provider))
	}
	if !slices.Contains(domain.ImageSizes, c.Upscale.ImageSize) {
		errs = append(errs, fmt.Errorf("upscale.image_size %q not one of %v", c.Upscale.ImageSize, domain.ImageSizes))
	}
	if !slices.Contains(domain.AspectRatios, c.Upscale.AspectRatio) {
		errs = append(errs,
			fmt.Errorf("upscale.aspect_ratio %q not one of %v", c.Upscale.AspectRatio, domain.AspectRatios))
	}
	if c.Upscale.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("upscale.concurrency must be at least 1, got %d", c.Upscale.Concurrency))
	}
	if c.Upscale.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("upscale.requests_per_minute must not be negative"))
	}
	if c.Upscale.Timeout <= 0 {
		errs = append(errs, errors.New("upscale.timeout must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, errors.Join(errs...))
	}

	return nil
}

// CredentialEnv returns the environment variable names checked for the provider's API key, in priority order.
func (c *Config) CredentialEnv() []string {
	if c.Upscale.Provider == ProviderFAL {
		return []string{"FAL_KEY", "FAL_API_KEY"}
	}

	return []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"}
}
