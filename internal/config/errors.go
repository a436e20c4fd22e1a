package config

import (
	"fmt"

	"github.com/storefront-labs/backend-integration/internal/errors"
)

// NewErrInvalidValue returns an error for an invalid configuration value.
// Secret values must not be passed here.
func NewErrInvalidValue(key string, value string) error {
	return fmt.Errorf("%w: '%s' (value: '%s')", errors.ErrInvalidConfig, key, value)
}
