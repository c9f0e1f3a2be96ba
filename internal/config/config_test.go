package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCredential(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		valid bool
	}{
		{"well formed", "sk-0123456789abcdef0123", true},
		{"exactly minimum length", "sk-01234567890123456", true},
		{"empty", "", false},
		{"wrong prefix", "pk-0123456789abcdef0123", false},
		{"prefix only", "sk-", false},
		{"too short", "sk-abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateCredential(tt.key))
		})
	}
}

func TestLoadConfigFile_MissingFileUsesDefaults(t *testing.T) {
	require.NoError(t, LoadConfigFile(filepath.Join(t.TempDir(), "missing.toml")))

	cfg := GetClientConfig()
	assert.Equal(t, DefaultConfigBatch.ChunkSize, cfg.Batch.ChunkSize)
	assert.Equal(t, DefaultConfigAPI.BaseURL, cfg.API.BaseURL)
	assert.Equal(t, DefaultIncludePatterns, cfg.Scan.IncludePatterns)
}

func TestLoadConfigFile_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[api]
model = "gpt-4o"
max_retries = 5

[batch]
chunk_size = 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	require.NoError(t, LoadConfigFile(path))

	cfg := GetClientConfig()
	assert.Equal(t, "gpt-4o", cfg.API.Model)
	assert.Equal(t, 5, cfg.API.MaxRetries)
	assert.Equal(t, 10, cfg.Batch.ChunkSize)
	// Untouched sections keep defaults
	assert.Equal(t, DefaultConfigPatch.BackupRetentionDays, cfg.Patch.BackupRetentionDays)
}

func TestLoadConfigFile_EnvKeyOverride(t *testing.T) {
	t.Setenv("UPGRADE_ANALYZER_API_KEY", "sk-from-environment-0001")

	require.NoError(t, LoadConfigFile(filepath.Join(t.TempDir(), "missing.toml")))
	assert.Equal(t, "sk-from-environment-0001", GetClientConfig().API.Key)
}

func TestLoadConfigFile_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [valid toml"), 0644))

	assert.Error(t, LoadConfigFile(path))
}
