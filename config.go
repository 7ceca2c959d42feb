package revu

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/revuhq/revu/service/coordinator"
)

// Store vendors.
const (
	StoreVendorMemory = "memory"
	StoreVendorFs     = "fs"
)

// Config is a serialisable representation of the service configuration. The
// zero-value is useful, all nested fields inherit their package defaults.
type Config struct {
	Coordinator coordinator.Config `json:"coordinator" yaml:"coordinator"`
	Store       StoreConfig        `json:"store" yaml:"store"`
}

// StoreConfig selects the task store backend.
type StoreConfig struct {
	Vendor  string `json:"vendor" yaml:"vendor"`
	BaseURL string `json:"baseURL" yaml:"baseURL"`
}

// DefaultConfig returns a Config populated with the package defaults. Callers
// may modify the returned struct before passing it to New.
func DefaultConfig() *Config {
	return &Config{
		Coordinator: coordinator.DefaultConfig(),
		Store:       StoreConfig{Vendor: StoreVendorMemory},
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	switch c.Store.Vendor {
	case "", StoreVendorMemory:
	case StoreVendorFs:
		if c.Store.BaseURL == "" {
			return fmt.Errorf("store.baseURL is required for the %v vendor", StoreVendorFs)
		}
	default:
		return fmt.Errorf("unsupported store.vendor: %v", c.Store.Vendor)
	}
	return c.Coordinator.Validate()
}

// LoadConfig reads a YAML configuration from the supplied URL (file path,
// s3://, gs://, mem:// and other afs schemes are accepted).
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %v: %w", URL, err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %v: %w", URL, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
