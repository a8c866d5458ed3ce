package llm

import (
	"math"
	"strings"
	"unicode/utf8"
)

type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// ModelChoice is a provider/model pair.
type ModelChoice struct {
	Provider string
	Model    string
}

// SelectorConfig holds the configurable model names used for routing.
type SelectorConfig struct {
	PrimaryProvider string
	DefaultModel    string
	ComplexModel    string
	CompanionModel  string

	FallbackProvider string
	FallbackModel    string

	Keywords        []string
	HighWordCount   int
	MediumWordCount int
}

var defaultKeywords = []string{
	"analyze", "compare", "detailed", "comprehensive",
	"optimize", "itinerary", "budget", "constraints", "multi-city",
}

// Selector maps a message and a mode to a model. It holds no state beyond its
// configuration.
type Selector struct {
	cfg SelectorConfig
}

func NewSelector(cfg SelectorConfig) *Selector {
	if strings.TrimSpace(cfg.PrimaryProvider) == "" {
		cfg.PrimaryProvider = ProviderOllama
	}
	if strings.TrimSpace(cfg.DefaultModel) == "" {
		cfg.DefaultModel = "llama3.1:latest"
	}
	if strings.TrimSpace(cfg.ComplexModel) == "" {
		cfg.ComplexModel = "qwen3:30b"
	}
	if strings.TrimSpace(cfg.CompanionModel) == "" {
		cfg.CompanionModel = "mistral:7b"
	}
	if strings.TrimSpace(cfg.FallbackProvider) == "" {
		cfg.FallbackProvider = ProviderOpenAI
	}
	if strings.TrimSpace(cfg.FallbackModel) == "" {
		cfg.FallbackModel = "gpt-4o-mini"
	}
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = defaultKeywords
	}
	if cfg.HighWordCount <= 0 {
		cfg.HighWordCount = 120
	}
	if cfg.MediumWordCount <= 0 {
		cfg.MediumWordCount = 40
	}
	return &Selector{cfg: cfg}
}

// Complexity classifies a message by word count and domain keywords.
func (s *Selector) Complexity(message string) Complexity {
	wc := len(strings.Fields(message))
	lower := strings.ToLower(message)

	for _, k := range s.cfg.Keywords {
		if strings.Contains(lower, k) {
			return ComplexityHigh
		}
	}
	switch {
	case wc > s.cfg.HighWordCount:
		return ComplexityHigh
	case wc > s.cfg.MediumWordCount:
		return ComplexityMedium
	default:
		return ComplexityLow
	}
}

// Primary returns the model the primary provider should run for message.
func (s *Selector) Primary(message string, mode Mode) ModelChoice {
	if mode == "" {
		mode = ModePlanner
	}

	model := s.cfg.DefaultModel
	switch {
	case mode == ModeCompanion:
		model = s.cfg.CompanionModel
	case s.Complexity(message) == ComplexityHigh:
		model = s.cfg.ComplexModel
	}

	return ModelChoice{Provider: s.cfg.PrimaryProvider, Model: model}
}

func (s *Selector) Fallback() ModelChoice {
	return ModelChoice{Provider: s.cfg.FallbackProvider, Model: s.cfg.FallbackModel}
}

// EstimateTokens is a rough ~4 chars/token estimate.
func EstimateTokens(text string) int {
	return int(math.Ceil(float64(len(strings.TrimSpace(text))) / 4))
}

// GuardPrompt trims the front of prompt so that its estimated size plus
// maxOutputTokens fits in contextTokens. The cut lands on a rune boundary.
func GuardPrompt(prompt string, maxOutputTokens, contextTokens int) string {
	if contextTokens <= 0 {
		return prompt
	}
	if EstimateTokens(prompt)+maxOutputTokens <= contextTokens {
		return prompt
	}
	allowed := (contextTokens - maxOutputTokens) * 4
	if allowed <= 0 {
		return ""
	}
	if allowed >= len(prompt) {
		return prompt
	}
	start := len(prompt) - allowed
	for start < len(prompt) && !utf8.RuneStart(prompt[start]) {
		start++
	}
	return prompt[start:]
}
