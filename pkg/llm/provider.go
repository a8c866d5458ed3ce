package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Mode classifies a request for model routing.
type Mode string

const (
	ModePlanner   Mode = "planner"
	ModeCompanion Mode = "companion"
	ModeJournal   Mode = "journal"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// CompletionRequest is what a Provider receives for a single call.
type CompletionRequest struct {
	Model           string
	System          string
	Prompt          string
	MaxOutputTokens int
	// Temperature nil means provider default.
	Temperature *float32
}

// Provider is a chat-completion backend.
type Provider interface {
	Name() string
	Available() bool
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

var (
	ErrNoUsableProvider    = errors.New("no_provider_available")
	ErrProviderUnavailable = errors.New("provider not configured")
	ErrEmptyCompletion     = errors.New("empty completion")
)

// AttemptError records one failed call against one backend.
type AttemptError struct {
	Provider string
	Model    string
	Attempt  int
	Timeout  bool
	Err      error
}

func (a AttemptError) Error() string {
	if a.Timeout {
		return fmt.Sprintf("%s(%s)#%d: timeout: %v", a.Provider, a.Model, a.Attempt, a.Err)
	}
	return fmt.Sprintf("%s(%s)#%d: %v", a.Provider, a.Model, a.Attempt, a.Err)
}

// ProviderError aggregates every attempt made by a Chat call that ended
// without a usable completion.
type ProviderError struct {
	Attempts []AttemptError
}

func (e *ProviderError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.Error())
	}
	return fmt.Sprintf("%s: %s", ErrNoUsableProvider.Error(), strings.Join(parts, "; "))
}

func (e *ProviderError) Unwrap() error { return ErrNoUsableProvider }

func (e *ProviderError) NoProviderAvailable() bool { return true }
