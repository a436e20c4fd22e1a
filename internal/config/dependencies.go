package config

import (
	"bytes"
	stdErrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"

	"github.com/storefront-labs/backend-integration/internal/errors"
)

// Dependency is an additional downstream service probed over HTTP.
type Dependency struct {
	// Name is the service name shown in health details.
	Name string `toml:"name" yaml:"name"`

	// URL is the absolute URL that is requested.
	URL string `toml:"url" yaml:"url"`

	// Method defaults to GET.
	Method string `toml:"method,omitempty" yaml:"method,omitempty"`

	// ExpectedStatus requires an exact status code, zero accepts any 2xx or 3xx.
	ExpectedStatus int `toml:"expected_status,omitempty" yaml:"expected_status,omitempty"`
}

// DependencyFile is the on-disk format of the dependencies file.
type DependencyFile struct {
	Dependencies []Dependency `toml:"dependencies" yaml:"dependencies"`
}

// Validate checks a single dependency entry.
func (d Dependency) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required),
		validation.Field(&d.URL, validation.Required, is.URL),
		validation.Field(&d.Method,
			validation.In(http.MethodGet, http.MethodHead, http.MethodPost, http.MethodOptions),
		),
		validation.Field(&d.ExpectedStatus,
			validation.When(d.ExpectedStatus != 0, validation.Min(100), validation.Max(599)),
		),
	)
}

// LoadDependencies reads the dependencies file at path. The format is chosen by extension:
// '.toml', or '.yaml'/'.yml'. An empty path yields no dependencies.
// Entries are returned in file order.
func LoadDependencies(path string) ([]Dependency, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading dependencies file: %w", errors.ErrInvalidConfig, err)
	}

	var file DependencyFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&file)
		if err != nil {
			return nil, fmt.Errorf("%w: parsing '%s': %w", errors.ErrInvalidConfig, path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown keys in '%s': %v", errors.ErrInvalidConfig, path, undecoded)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil && !stdErrors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: parsing '%s': %w", errors.ErrInvalidConfig, path, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported dependencies file extension: '%s'", errors.ErrInvalidConfig, ext)
	}

	if err := validateDependencies(file.Dependencies); err != nil {
		return nil, err
	}

	return file.Dependencies, nil
}

func validateDependencies(deps []Dependency) error {
	seen := make(map[string]struct{}, len(deps))
	for i := range deps {
		deps[i].Name = strings.TrimSpace(deps[i].Name)
		deps[i].URL = strings.TrimSpace(deps[i].URL)
		deps[i].Method = strings.ToUpper(strings.TrimSpace(deps[i].Method))
		d := deps[i]

		if err := d.Validate(); err != nil {
			return fmt.Errorf("%w: dependency %d (%s): %w", errors.ErrInvalidConfig, i, d.Name, err)
		}
		if _, ok := seen[d.Name]; ok {
			return fmt.Errorf("%w: duplicate dependency name: '%s'", errors.ErrInvalidConfig, d.Name)
		}
		seen[d.Name] = struct{}{}
	}

	return nil
}
