package convert

import (
	"fmt"

	"github.com/andybalholm/cascadia"

	"github.com/jmylchreest/htmd/pkg/sanitize"
	"github.com/jmylchreest/htmd/pkg/style"
)

// DefaultMaxInputSize is the input ceiling used by DefaultConfig.
const DefaultMaxInputSize int64 = 100 * 1024 * 1024

// Config holds everything one conversion needs. Policy and Style are
// treated as immutable and may be shared across goroutines.
type Config struct {
	// Policy is required when SanitizeHTML is set.
	Policy *sanitize.Policy
	Style  style.Style

	// MaxInputSize is the byte ceiling for raw input. Zero disables it.
	MaxInputSize int64
	SanitizeHTML bool

	// RemoveSelectors prunes matching subtrees before sanitization.
	RemoveSelectors []string
}

// DefaultConfig returns the default policy, style and limits.
func DefaultConfig() Config {
	return Config{
		Policy:       sanitize.DefaultPolicy(),
		Style:        style.Default(),
		MaxInputSize: DefaultMaxInputSize,
		SanitizeHTML: true,
	}
}

// Validate checks the style, the policy and the selectors. A missing
// policy is not a validation error; it fails at the sanitize stage.
func (c Config) Validate() error {
	if err := c.Style.Validate(); err != nil {
		return fmt.Errorf("style: %w", err)
	}
	if c.Policy != nil {
		if err := c.Policy.Validate(); err != nil {
			return fmt.Errorf("policy: %w", err)
		}
	}
	if c.MaxInputSize < 0 {
		return fmt.Errorf("max input size must not be negative, got %d", c.MaxInputSize)
	}
	for _, sel := range c.RemoveSelectors {
		if _, err := cascadia.Compile(sel); err != nil {
			return fmt.Errorf("remove selector %q: %w", sel, err)
		}
	}
	return nil
}

// effectivePolicy folds the style's comment stripping into the policy.
func (c Config) effectivePolicy() *sanitize.Policy {
	if c.Policy == nil || c.Policy.StripComments || !c.Style.StripComments {
		return c.Policy
	}
	p := *c.Policy
	p.StripComments = true
	return &p
}
