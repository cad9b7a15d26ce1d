// Package llm provides centralized LLM configuration and client abstractions.
// Model tiers let callers pick cost against capability per prompt.
package llm

import (
	"maps"
	"time"
)

// ModelTier picks cost against capability for one call.
type ModelTier string

const (
	TierLite     ModelTier = "lite"     // job analysis, OCR
	TierStandard ModelTier = "standard" // question generation
	TierAdvanced ModelTier = "advanced"
)

// Provider names a model vendor. Only Gemini is implemented.
type Provider string

const ProviderGemini Provider = "gemini"

// DefaultTemperature is used for tiers without an explicit temperature.
const DefaultTemperature float32 = 0.1

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 60 * time.Second

// Config maps tiers to models and temperatures.
type Config struct {
	Provider     Provider
	Models       map[ModelTier]string
	Temperatures map[ModelTier]float32
	// Timeout applies to every call made through NewClient; zero disables it.
	Timeout time.Duration
}

func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration.
// Generation tiers run warmer so repeated requests produce different questions.
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperatures: map[ModelTier]float32{
			TierLite:     0.1,
			TierStandard: 0.7,
			TierAdvanced: 0.7,
		},
		Timeout: DefaultTimeout,
	}
}

// GetModel resolves tier to a model name. Unknown tiers fall back to the
// standard model, then the lite one.
func (c *Config) GetModel(tier ModelTier) string {
	for _, t := range []ModelTier{tier, TierStandard, TierLite} {
		if m, ok := c.Models[t]; ok {
			return m
		}
	}
	return ""
}

// GetTemperature returns the sampling temperature for tier.
func (c *Config) GetTemperature(tier ModelTier) float32 {
	if t, ok := c.Temperatures[tier]; ok {
		return t
	}
	return DefaultTemperature
}

// WithModel returns a copy of c that uses model for tier.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	out := c.clone()
	if out.Models == nil {
		out.Models = map[ModelTier]string{}
	}
	out.Models[tier] = model
	return out
}

// WithTimeout returns a copy of c with a different per-call timeout.
func (c *Config) WithTimeout(d time.Duration) *Config {
	out := c.clone()
	out.Timeout = d
	return out
}

func (c *Config) clone() *Config {
	out := *c
	out.Models = maps.Clone(c.Models)
	out.Temperatures = maps.Clone(c.Temperatures)
	return &out
}
