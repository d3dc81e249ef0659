package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NunaInc/nudl-analysis/analyzerconfig"
)

func TestScenariosAreWellFormed(t *testing.T) {
	for name, sc := range scenarios() {
		t.Run(name, func(t *testing.T) {
			require.NotEmpty(t, sc.Description)
			_, ok := sc.Modules[sc.Entry]
			require.True(t, ok, "entry module %q must be present in Modules", sc.Entry)
		})
	}
}

func TestRunScenarioImport(t *testing.T) {
	cfg := &analyzerconfig.Config{}
	err := runScenario("import", cfg)
	assert.NoError(t, err)
}

func TestRunScenarioSchema(t *testing.T) {
	cfg := &analyzerconfig.Config{}
	err := runScenario("schema", cfg)
	assert.NoError(t, err)
}

func TestRunScenarioUnknown(t *testing.T) {
	cfg := &analyzerconfig.Config{}
	err := runScenario("does-not-exist", cfg)
	assert.Error(t, err)
}

func TestRunScenarioWithCache(t *testing.T) {
	cfg := &analyzerconfig.Config{CacheDSN: ":memory:"}
	err := runScenario("import", cfg)
	assert.NoError(t, err)
}
