package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"travelmind/pkg/llm"
	"travelmind/pkg/utils"
)

type scriptedChat struct {
	mu      sync.Mutex
	outputs []string
	errs    []error
	calls   []llm.ChatOptions
	prompts []string
}

func (s *scriptedChat) Chat(_ context.Context, prompt string, opts llm.ChatOptions) (*llm.ChatResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := len(s.calls)
	s.calls = append(s.calls, opts)
	s.prompts = append(s.prompts, prompt)

	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	out := ""
	if i < len(s.outputs) {
		out = s.outputs[i]
	} else if len(s.outputs) > 0 {
		out = s.outputs[len(s.outputs)-1]
	}
	provider := llm.ProviderOllama
	if opts.SkipPrimary {
		provider = llm.ProviderOpenAI
	}
	return &llm.ChatResult{Content: out, Provider: provider, Model: "test-model"}, nil
}

const lisbonJSON = `{"title":"Lisbon Getaway","startDate":"2025-09-01","endDate":"2025-09-03","destination":"Lisbon","days":[{"date":"2025-09-01","activities":[{"title":"Belém Tower"}]},{"date":"2025-09-02","activities":[]},{"date":"2025-09-03","activities":[]}]}`

func newTestItineraryService(chat llm.Chatter) ItineraryServiceInterface {
	return NewItineraryService(chat, ItineraryConfig{FallbackAttempts: 2, Temperature: 0.3}, zap.NewNop())
}

func TestGenerateFirstAttempt(t *testing.T) {
	chat := &scriptedChat{outputs: []string{lisbonJSON}}
	got, err := newTestItineraryService(chat).Generate(context.Background(), "Plan a 3-day trip to Lisbon", GenerateOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, got.Attempts)
	require.Len(t, got.Itinerary.Days, 3)
	require.Len(t, got.Itinerary.Days[0].Activities, 1)
	assert.Equal(t, "Belém Tower", got.Itinerary.Days[0].Activities[0].Title)
	assert.Equal(t, lisbonJSON, got.Raw)
	assert.Equal(t, llm.ModePlanner, chat.calls[0].Mode)
	assert.False(t, chat.calls[0].SkipPrimary)
}

func TestGenerateFromProseAndFence(t *testing.T) {
	out := "Sure! Here is your plan:\n```json\n" + lisbonJSON + "\n```\nEnjoy your trip {and bring sunscreen}."
	chat := &scriptedChat{outputs: []string{out}}

	got, err := newTestItineraryService(chat).Generate(context.Background(), "Plan a 3-day trip to Lisbon", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, lisbonJSON, got.Raw)
	assert.Equal(t, "Lisbon Getaway", got.Itinerary.Title)
}

func TestGenerateEscalatesThenSucceeds(t *testing.T) {
	chat := &scriptedChat{outputs: []string{"I cannot help", `{"days":[]}`, lisbonJSON}}

	got, err := newTestItineraryService(chat).Generate(context.Background(), "Plan a 3-day trip to Lisbon", GenerateOptions{Model: "qwen3:30b"})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Attempts)
	require.Len(t, chat.prompts, 3)
	assert.NotEqual(t, chat.prompts[0], chat.prompts[1])
	assert.Contains(t, chat.prompts[2], "Fill in the blanks")
	for _, c := range chat.calls {
		assert.Equal(t, "qwen3:30b", c.Model)
	}
}

func TestGenerateRoutesEveryAttemptOnUserPrompt(t *testing.T) {
	chat := &scriptedChat{outputs: []string{"lorem ipsum"}}
	user := "Plan a 3-day trip to Lisbon"

	_, err := newTestItineraryService(chat).Generate(context.Background(), "  "+user+"\n", GenerateOptions{})
	require.Error(t, err)

	require.Len(t, chat.calls, 5)
	for i, c := range chat.calls {
		assert.Equal(t, user, c.RouteMessage, "attempt %d", i+1)
	}
}

func TestGenerateGarbageEverywhere(t *testing.T) {
	chat := &scriptedChat{outputs: []string{"lorem ipsum"}}

	_, err := newTestItineraryService(chat).Generate(context.Background(), "Plan a 3-day trip to Lisbon", GenerateOptions{})
	require.Error(t, err)

	var gerr *utils.GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, utils.ReasonNoJSONFound, gerr.Reason)
	assert.Equal(t, 5, gerr.Attempts)

	require.Len(t, chat.calls, 5)
	for i, c := range chat.calls {
		forced := i >= 3
		assert.Equal(t, forced, c.SkipPrimary, "attempt %d", i+1)
		if forced {
			require.NotNil(t, c.Temperature)
			assert.Equal(t, float32(0), *c.Temperature)
		}
	}
}

func TestGenerateSchemaInvalidReportsLastFailure(t *testing.T) {
	chat := &scriptedChat{outputs: []string{"nothing here", `{"title":"","days":"many"}`}}

	_, err := newTestItineraryService(chat).Generate(context.Background(), "Plan a 3-day trip to Lisbon", GenerateOptions{})
	var gerr *utils.GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, utils.ReasonSchemaInvalid, gerr.Reason)
	assert.NotEmpty(t, gerr.Details)
	assert.LessOrEqual(t, len(gerr.Details), 5)
}

func TestGenerateNoProvider(t *testing.T) {
	perr := &llm.ProviderError{Attempts: []llm.AttemptError{{Provider: llm.ProviderOllama, Err: errors.New("down")}}}
	chat := &scriptedChat{errs: []error{perr}}

	_, err := newTestItineraryService(chat).Generate(context.Background(), "Plan a 3-day trip to Lisbon", GenerateOptions{})
	assert.ErrorIs(t, err, llm.ErrNoUsableProvider)
	assert.Len(t, chat.calls, 1)
}

func TestGenerateForcedPhaseWithoutFallbackKeepsParseFailure(t *testing.T) {
	perr := &llm.ProviderError{}
	chat := &scriptedChat{
		outputs: []string{"nope", "nope", "nope"},
		errs:    []error{nil, nil, nil, perr, perr},
	}

	_, err := newTestItineraryService(chat).Generate(context.Background(), "Plan a 3-day trip to Lisbon", GenerateOptions{})
	var gerr *utils.GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, utils.ReasonNoJSONFound, gerr.Reason)
	assert.Len(t, chat.calls, 4)
}
