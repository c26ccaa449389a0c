package config

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyERPURL              = "erp.url"
	KeyERPTimeoutSeconds   = "erp.timeout_seconds"
	KeyLighthouseURL       = "lighthouse.url"
	KeyLighthouseClusterID = "lighthouse.cluster_id"
	KeyLighthouseAppID     = "lighthouse.app_id"
	KeyLighthouseAPIKey    = "lighthouse.api_key"
	KeySyncDefaultShift    = "sync.default_shift"
	KeySyncPullAfterSync   = "sync.pull_after_sync"
)

type Config struct {
	ERP        ERPConfig        `mapstructure:"erp" validate:"required"`
	Lighthouse LighthouseConfig `mapstructure:"lighthouse" validate:"required"`
	Sync       SyncConfig       `mapstructure:"sync"`
}

type ERPConfig struct {
	URL            string `mapstructure:"url" validate:"required,url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gte=0"`
}

// Timeout returns the configured ERP transport timeout, defaulting to
// 15 seconds.
func (c ERPConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type LighthouseConfig struct {
	URL       string `mapstructure:"url" validate:"required,url"`
	ClusterID string `mapstructure:"cluster_id" validate:"required"`
	AppID     string `mapstructure:"app_id"`
	APIKey    string `mapstructure:"api_key"`
}

type SyncConfig struct {
	DefaultShift  string `mapstructure:"default_shift"`
	PullAfterSync bool   `mapstructure:"pull_after_sync"`
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# plansync configuration
erp:
  url: "https://erp.example.com"
  timeout_seconds: 15

lighthouse:
  url: "https://api.lighthouse.example.com"
  cluster_id: ""
  app_id: ""
  api_key: ""

sync:
  default_shift: "G"
  pull_after_sync: true
`
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateShift(cfg.Sync.DefaultShift); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyERPTimeoutSeconds, 15)
	v.SetDefault(KeySyncDefaultShift, "G")
	v.SetDefault(KeySyncPullAfterSync, true)
}

func validateShift(code string) error {
	switch strings.TrimSpace(code) {
	case "", "D", "G", "E":
		return nil
	}
	return fmt.Errorf("validation failed: sync.default_shift %q is not supported (valid: D, G, E)", code)
}
