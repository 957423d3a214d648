package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bedrockEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LLM_PROVIDER", "bedrock")
	t.Setenv("AWS_REGION_NAME", "us-east-1")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIATEST")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
}

func TestLoadDefaults(t *testing.T) {
	bedrockEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "repoguard", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, LLMProviderBedrock, cfg.LLM.Provider)
	assert.Equal(t, defaultFileExtensions, cfg.Scan.FileExtensions)
	assert.True(t, cfg.Scan.ExcludeVCSDirs)
	assert.Equal(t, 5*time.Minute, cfg.Scan.CloneTimeout)
}

func TestValidateMissingBedrockCredentials(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "bedrock")
	t.Setenv("AWS_REGION_NAME", "")
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AWS_REGION_NAME")
	assert.Contains(t, err.Error(), "AWS_ACCESS_KEY_ID")
	assert.Contains(t, err.Error(), "AWS_SECRET_ACCESS_KEY")
}

func TestValidateClaudeProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "claude")
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, LLMProviderClaude, cfg.LLM.Provider)
}

func TestValidateUnknownProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "llamafarm")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM_PROVIDER")
}

func TestScanExtensionsOverride(t *testing.T) {
	bedrockEnv(t)
	t.Setenv("SCAN_FILE_EXTENSIONS", ".rs, .c ,.h")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{".rs", ".c", ".h"}, cfg.Scan.FileExtensions)
}

func TestScanExtensionsMustHaveDot(t *testing.T) {
	bedrockEnv(t)
	t.Setenv("SCAN_FILE_EXTENSIONS", "py,js")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must start with a dot")
}
