// config.go - Application configuration management
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ConfigAPI holds the AI service connection settings.
type ConfigAPI struct {
	Key            string  `toml:"key"`
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	Temperature    float64 `toml:"temperature"`
	MaxTokens      int     `toml:"max_tokens"`
	MaxRetries     int     `toml:"max_retries"`
	RetryBaseDelay int     `toml:"retry_base_delay_seconds"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	RequestsPerMin int     `toml:"requests_per_minute"`
	TestMode       bool    `toml:"test_mode"`
}

// ConfigScan holds the file selection settings.
type ConfigScan struct {
	IncludePatterns []string `toml:"include_patterns"`
	ExcludePatterns []string `toml:"exclude_patterns"`
	MaxFileSizeKB   int      `toml:"max_file_size_kb"`
	MaxFileCount    int      `toml:"max_file_count"`
}

// ConfigBatch holds the batch orchestration settings.
type ConfigBatch struct {
	ChunkSize       int `toml:"chunk_size"`
	StepIntervalSec int `toml:"step_interval_seconds"`
	StaleRunHours   int `toml:"stale_run_hours"`
}

// ConfigPatch holds the patch generation and apply settings.
type ConfigPatch struct {
	Format              string `toml:"format"` // unified or context
	AutoApply           bool   `toml:"auto_apply"`
	BackupRetentionDays int    `toml:"backup_retention_days"`
}

// ConfigServer holds the HTTP server settings.
type ConfigServer struct {
	RequestsPerSecond int `toml:"requests_per_second"`
}

// ClientConfig is the full configuration file structure.
type ClientConfig struct {
	API    ConfigAPI    `toml:"api"`
	Scan   ConfigScan   `toml:"scan"`
	Batch  ConfigBatch  `toml:"batch"`
	Patch  ConfigPatch  `toml:"patch"`
	Server ConfigServer `toml:"server"`
}

// Default include patterns cover the source, module, include and install
// file extensions of a PHP-framework project plus its front-end assets.
var DefaultIncludePatterns = []string{
	".php", ".module", ".inc", ".install", ".theme", ".profile",
	".yml", ".twig", ".js", ".css",
}

// Default exclude patterns. Deny rules win over include patterns.
var DefaultExcludePatterns = []string{
	".*",
	"vendor/", "node_modules/",
	"tests/", "test/",
	"build/", "dist/",
}

var DefaultConfigAPI = ConfigAPI{
	BaseURL:        "https://api.openai.com/v1",
	Model:          "gpt-4o-mini",
	Temperature:    0.1,
	MaxTokens:      4096,
	MaxRetries:     3,
	RetryBaseDelay: 2,
	TimeoutSeconds: 120,
	RequestsPerMin: 60,
	TestMode:       false,
}

var DefaultConfigScan = ConfigScan{
	IncludePatterns: DefaultIncludePatterns,
	ExcludePatterns: DefaultExcludePatterns,
	MaxFileSizeKB:   512,
	MaxFileCount:    100000,
}

var DefaultConfigBatch = ConfigBatch{
	ChunkSize:       50,
	StepIntervalSec: 1,
	StaleRunHours:   24,
}

var DefaultConfigPatch = ConfigPatch{
	Format:              "unified",
	AutoApply:           false,
	BackupRetentionDays: 7,
}

var DefaultConfigServer = ConfigServer{
	RequestsPerSecond: 100,
}

// DefaultClientConfig is the configuration used when no file is present.
var DefaultClientConfig = ClientConfig{
	API:    DefaultConfigAPI,
	Scan:   DefaultConfigScan,
	Batch:  DefaultConfigBatch,
	Patch:  DefaultConfigPatch,
	Server: DefaultConfigServer,
}

// Global client configuration
var clientConfig ClientConfig

// GetClientConfig gets the current client configuration
func GetClientConfig() ClientConfig {
	return clientConfig
}

// SetClientConfig sets the client configuration
func SetClientConfig(config ClientConfig) {
	clientConfig = config
}

// LoadConfigFile loads configuration from a TOML file, falling back to
// defaults when the file does not exist. The UPGRADE_ANALYZER_API_KEY
// environment variable overrides the file value.
func LoadConfigFile(path string) error {
	cfg := DefaultClientConfig

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read config file %s: %v", path, err)
		}
	} else if err := toml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %v", path, err)
	}

	if key := os.Getenv("UPGRADE_ANALYZER_API_KEY"); key != "" {
		cfg.API.Key = key
	}

	clientConfig = cfg
	return nil
}

const (
	credentialPrefix    = "sk-"
	credentialMinLength = 20
)

// ValidateCredential checks the API key format rule. A malformed credential
// is treated the same as a missing one: analysis is unavailable.
func ValidateCredential(key string) bool {
	return strings.HasPrefix(key, credentialPrefix) && len(key) >= credentialMinLength
}

// AppInfo holds application metadata
type AppInfo struct {
	AppName  string `json:"appName"`
	Version  string `json:"version"`
	OSName   string `json:"osName"`
	ArchName string `json:"archName"`
}

var appInfo AppInfo

func GetAppInfo() AppInfo {
	return appInfo
}

func SetAppInfo(info AppInfo) {
	appInfo = info
}
