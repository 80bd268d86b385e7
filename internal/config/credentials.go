package config

import (
	"fmt"
	"os"
	"strings"
	"upscaler/internal/core/domain"
)

// EnvCredentials resolves an API key from the first non-empty environment variable in Names.
type EnvCredentials struct {
	Names  []string
	lookup func(string) (string, bool)
}

func NewEnvCredentials(names ...string) *EnvCredentials {
	return &EnvCredentials{Names: names, lookup: os.LookupEnv}
}

func (e *EnvCredentials) Resolve() (string, error) {
	for _, name := range e.Names {
		if value, ok := e.lookup(name); ok && value != "" {
			return value, nil
		}
	}

	return "", fmt.Errorf("%w: set %s environment variable", domain.ErrMissingCredential,
		strings.Join(e.Names, " or "))
}
