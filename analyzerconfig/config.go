// Package analyzerconfig loads the analyzer's environment-driven
// configuration (§4.7 "the module driver"; analogous to the teacher's
// internal/config.LoadConfig and mcp.DefaultConfig): source search
// roots, the module file extension, and diagnostics verbosity.
package analyzerconfig

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the settings cmd/nudl-analyze and package module need to
// locate and analyze a NuDL program.
type Config struct {
	// SourceRoots are directories searched for a module's backing file
	// (the module-loader collaborator, §1 "explicitly out of scope");
	// NuDL source parsing itself still lives outside this repo.
	SourceRoots []string
	// ModuleExt is the file extension module paths are resolved against.
	ModuleExt string
	// MaxSpecializations is loaded from NUDL_MAX_SPECIALIZATIONS. No
	// package reads it: the cache applies no cap and evicts nothing.
	MaxSpecializations int
	// CacheDSN is the specialization cache's gorm DSN (file path or
	// ":memory:"); empty disables the cache.
	CacheDSN string
	// Debug enables verbose status/diagnostic logging.
	Debug bool
}

// Load reads configuration from the environment, first loading every
// variable declared in an optional .env file at envFile into the
// process environment (variables already set are not overridden; a
// missing file is not an error, matching godotenv's own
// convention of being safe to call speculatively).
func Load(envFile string) *Config {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}

	cfg := &Config{
		ModuleExt:          ".nudl",
		MaxSpecializations: 256,
		SourceRoots:        []string{"."},
	}

	if roots := os.Getenv("NUDL_SOURCE_ROOTS"); roots != "" {
		cfg.SourceRoots = splitPaths(roots)
	}
	if ext := os.Getenv("NUDL_MODULE_EXT"); ext != "" {
		cfg.ModuleExt = ext
	}
	if maxSpec := os.Getenv("NUDL_MAX_SPECIALIZATIONS"); maxSpec != "" {
		if v, err := strconv.Atoi(maxSpec); err == nil && v > 0 {
			cfg.MaxSpecializations = v
		}
	}
	if debug := os.Getenv("NUDL_DEBUG"); debug != "" {
		if v, err := strconv.ParseBool(debug); err == nil {
			cfg.Debug = v
		}
	}
	if dsn := os.Getenv("NUDL_CACHE_DSN"); dsn != "" {
		cfg.CacheDSN = dsn
	}
	return cfg
}

func splitPaths(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ':' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
