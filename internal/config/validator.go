package config

import (
	"errors"
	"fmt"
	"runtime"

	pserrors "github.com/iamrichardD/mcp-server-pinescript/internal/errors"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults
// Returns an error if validation fails
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateProjectConfig(&cfg.Project); err != nil {
		return pserrors.NewConfigError("project", "", err)
	}

	if err := v.validateReviewConfig(&cfg.Review); err != nil {
		return pserrors.NewConfigError("review", "", err)
	}

	if err := v.validateCacheConfig(&cfg.Cache); err != nil {
		return pserrors.NewConfigError("cache", "", err)
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateProjectConfig(project *Project) error {
	if project.Root == "" {
		return errors.New("project root cannot be empty")
	}
	return nil
}

func (v *Validator) validateReviewConfig(review *Review) error {
	if review.MaxFileSize <= 0 {
		return fmt.Errorf("MaxFileSize must be positive, got %d", review.MaxFileSize)
	}

	if review.MaxFileSize > 100*1024*1024 {
		return fmt.Errorf("MaxFileSize should not exceed 100MB, got %d", review.MaxFileSize)
	}

	if review.MaxFileCount <= 0 {
		return fmt.Errorf("MaxFileCount must be positive, got %d", review.MaxFileCount)
	}

	// ParallelWorkers: 0 means auto-detect (will be set by smart defaults)
	if review.ParallelWorkers < 0 {
		return fmt.Errorf("ParallelWorkers cannot be negative, got %d", review.ParallelWorkers)
	}

	switch review.SeverityFilter {
	case "", "all", "error", "warning", "suggestion":
	default:
		return fmt.Errorf("SeverityFilter must be all, error, warning or suggestion, got %q", review.SeverityFilter)
	}

	switch review.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("Format must be json or text, got %q", review.Format)
	}

	return nil
}

func (v *Validator) validateCacheConfig(cache *Cache) error {
	if cache.MaxEntries < 0 {
		return fmt.Errorf("MaxEntries cannot be negative, got %d", cache.MaxEntries)
	}
	return nil
}

// setSmartDefaults applies smart defaults based on system capabilities
func (v *Validator) setSmartDefaults(cfg *Config) {
	// Cores-1 leaves headroom for the system, minimum of 1.
	if cfg.Review.ParallelWorkers == 0 {
		numCPU := runtime.NumCPU()
		cfg.Review.ParallelWorkers = max(1, numCPU-1)
	}

	if cfg.Review.SeverityFilter == "" {
		cfg.Review.SeverityFilter = "all"
	}

	if cfg.Review.Format == "" {
		cfg.Review.Format = "json"
	}

	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = DefaultCacheEntries
	}

	if cfg.Docs.SearchLimit <= 0 {
		cfg.Docs.SearchLimit = DefaultSearchResults
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	validator := NewValidator()
	return validator.ValidateAndSetDefaults(cfg)
}
