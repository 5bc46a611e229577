package config

import (
	"os"
	"runtime"
	"sort"
)

// Default limits applied when no config file overrides them.
const (
	DefaultMaxFileSize   = 2 * 1024 * 1024 // single script ceiling
	DefaultMaxFileCount  = 5000
	DefaultCacheEntries  = 256
	DefaultSearchResults = 10
)

type Config struct {
	Version int
	Project Project
	Review  Review
	Cache   Cache
	Docs    Docs
	Include []string
	Exclude []string
}

type Project struct {
	Root string
	Name string
}

// Review controls how directory reviews run.
type Review struct {
	MaxFileSize     int64  // per-file size ceiling in bytes
	MaxFileCount    int    // cap on files collected per review
	ParallelWorkers int    // 0 = auto-detect (NumCPU)
	SeverityFilter  string // "all", "error", "warning", "suggestion"
	Format          string // "json" or "text"
}

// Cache controls the validation result cache.
type Cache struct {
	Enabled    bool
	MaxEntries int
}

// Docs controls documentation search behaviour.
type Docs struct {
	SearchLimit int // max results per reference query
}

func Load() (*Config, error) {
	return LoadWithRoot("")
}

// LoadWithRoot layers configuration: built-in defaults, then the global
// ~/.pinelint.kdl if present, then the project's .pinelint.kdl. Project
// settings win, but exclusion patterns accumulate.
func LoadWithRoot(rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}

	homeDir, err := os.UserHomeDir()
	var baseConfig *Config
	if err == nil {
		if globalCfg, err := LoadKDL(homeDir); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	var projectConfig *Config
	if kdlCfg, err := LoadKDL(searchDir); err == nil && kdlCfg != nil {
		projectConfig = kdlCfg
	} else if err != nil {
		return nil, err
	}

	if baseConfig != nil && projectConfig != nil {
		return mergeConfigs(baseConfig, projectConfig), nil
	} else if projectConfig != nil {
		return projectConfig, nil
	} else if baseConfig != nil {
		baseConfig.Project.Root = searchDir
		return baseConfig, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	cfg := Defaults()
	cfg.Project.Root = cwd
	return cfg, nil
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Review: Review{
			MaxFileSize:     DefaultMaxFileSize,
			MaxFileCount:    DefaultMaxFileCount,
			ParallelWorkers: runtime.NumCPU(),
			SeverityFilter:  "all",
			Format:          "json",
		},
		Cache: Cache{
			Enabled:    true,
			MaxEntries: DefaultCacheEntries,
		},
		Docs: Docs{
			SearchLimit: DefaultSearchResults,
		},
		Include: []string{"**/*.pine"},
		Exclude: []string{
			"**/.git/**",
			"**/.*/**",
			"**/node_modules/**",
			"**/vendor/**",
			"**/dist/**",
			"**/build/**",
			"**/backups/**",
			"**/*.bak",
			"**/*.swp",
			"**/*~",
		},
	}
}

// mergeConfigs merges a base config with a project config. Project config
// takes precedence, but base exclusions are preserved.
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	if len(base.Exclude) > 0 {
		excludeMap := make(map[string]bool)
		for _, pattern := range base.Exclude {
			excludeMap[pattern] = true
		}
		for _, pattern := range project.Exclude {
			excludeMap[pattern] = true
		}
		merged.Exclude = make([]string, 0, len(excludeMap))
		for pattern := range excludeMap {
			merged.Exclude = append(merged.Exclude, pattern)
		}
		// Map iteration order would make repeated loads disagree.
		sort.Strings(merged.Exclude)
	}

	// Include patterns: project overrides base completely when specified.
	if len(project.Include) == 0 && len(base.Include) > 0 {
		merged.Include = base.Include
	}

	return &merged
}
