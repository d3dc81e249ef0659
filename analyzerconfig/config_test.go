package analyzerconfig_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NunaInc/nudl-analysis/analyzerconfig"
)

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv("NUDL_SOURCE_ROOTS")
	os.Unsetenv("NUDL_MODULE_EXT")
	os.Unsetenv("NUDL_MAX_SPECIALIZATIONS")
	os.Unsetenv("NUDL_DEBUG")

	cfg := analyzerconfig.Load("")
	assert.Equal(t, ".nudl", cfg.ModuleExt)
	assert.Equal(t, 256, cfg.MaxSpecializations)
	assert.False(t, cfg.Debug)
	assert.Equal(t, []string{"."}, cfg.SourceRoots)
	assert.Equal(t, "", cfg.CacheDSN)
}

func TestLoadReadsEnvOverrides(t *testing.T) {
	t.Setenv("NUDL_SOURCE_ROOTS", "a:b:c")
	t.Setenv("NUDL_MODULE_EXT", ".nd")
	t.Setenv("NUDL_MAX_SPECIALIZATIONS", "10")
	t.Setenv("NUDL_DEBUG", "true")
	t.Setenv("NUDL_CACHE_DSN", "/tmp/nudl-cache.db")

	cfg := analyzerconfig.Load("")
	require.Equal(t, []string{"a", "b", "c"}, cfg.SourceRoots)
	assert.Equal(t, ".nd", cfg.ModuleExt)
	assert.Equal(t, 10, cfg.MaxSpecializations)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "/tmp/nudl-cache.db", cfg.CacheDSN)
}

func TestLoadIgnoresMissingEnvFile(t *testing.T) {
	cfg := analyzerconfig.Load("/nonexistent/path/.env")
	assert.NotNil(t, cfg)
}
