package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name      string
	available bool

	mu      sync.Mutex
	calls   []CompletionRequest
	respond func(ctx context.Context, call int) (string, error)
}

func (f *fakeProvider) Name() string    { return f.name }
func (f *fakeProvider) Available() bool { return f.available }

func (f *fakeProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	n := len(f.calls)
	f.mu.Unlock()
	return f.respond(ctx, n)
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func replies(content string) func(context.Context, int) (string, error) {
	return func(context.Context, int) (string, error) { return content, nil }
}

func fails(err error) func(context.Context, int) (string, error) {
	return func(context.Context, int) (string, error) { return "", err }
}

func hangs() func(context.Context, int) (string, error) {
	return func(ctx context.Context, _ int) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
}

func newTestClient(chain ...Provider) *ChatClient {
	return NewChatClient(NewSelector(SelectorConfig{}), ChatConfig{
		MaxDuration:   time.Second,
		Retries:       1,
		ContextTokens: 8192,
		RetryBackoff:  time.Millisecond,
	}, nil, chain...)
}

func TestChatPrimarySucceeds(t *testing.T) {
	primary := &fakeProvider{name: ProviderOllama, available: true, respond: replies("ok")}
	fallback := &fakeProvider{name: ProviderOpenAI, available: true, respond: replies("fallback")}

	res, err := newTestClient(primary, fallback).Chat(context.Background(), "Plan a weekend in Porto", ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Content)
	assert.Equal(t, ProviderOllama, res.Provider)
	assert.Equal(t, "llama3.1:latest", res.Model)
	assert.Equal(t, 0, fallback.callCount())
}

func TestChatRetriesPrimaryOnError(t *testing.T) {
	primary := &fakeProvider{name: ProviderOllama, available: true, respond: func(_ context.Context, call int) (string, error) {
		if call == 1 {
			return "", errors.New("connection refused")
		}
		return "second try", nil
	}}
	fallback := &fakeProvider{name: ProviderOpenAI, available: true, respond: replies("fallback")}

	res, err := newTestClient(primary, fallback).Chat(context.Background(), "hello there", ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "second try", res.Content)
	assert.Equal(t, 2, primary.callCount())
	assert.Equal(t, 0, fallback.callCount())
}

func TestChatFallsBackAfterRetries(t *testing.T) {
	primary := &fakeProvider{name: ProviderOllama, available: true, respond: fails(errors.New("500 from host"))}
	fallback := &fakeProvider{name: ProviderOpenAI, available: true, respond: replies("from openai")}

	res, err := newTestClient(primary, fallback).Chat(context.Background(), "hello there", ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "from openai", res.Content)
	assert.Equal(t, "gpt-4o-mini", res.Model)
	assert.Equal(t, 2, primary.callCount())
	assert.Equal(t, 1, fallback.callCount())
}

func TestChatTimeoutSkipsRetry(t *testing.T) {
	primary := &fakeProvider{name: ProviderOllama, available: true, respond: hangs()}
	fallback := &fakeProvider{name: ProviderOpenAI, available: true, respond: replies("rescued")}

	c := newTestClient(primary, fallback)
	res, err := c.Chat(context.Background(), "hello there", ChatOptions{MaxDuration: 20 * time.Millisecond, Retries: Int(3)})
	require.NoError(t, err)
	assert.Equal(t, "rescued", res.Content)
	assert.Equal(t, 1, primary.callCount())
}

func TestChatNoUsableProvider(t *testing.T) {
	primary := &fakeProvider{name: ProviderOllama, available: true, respond: fails(errors.New("down"))}
	fallback := &fakeProvider{name: ProviderOpenAI, available: false, respond: replies("never")}

	_, err := newTestClient(primary, fallback).Chat(context.Background(), "hello there", ChatOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoUsableProvider)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.True(t, perr.NoProviderAvailable())
	assert.Len(t, perr.Attempts, 3)
	assert.ErrorIs(t, perr.Attempts[2].Err, ErrProviderUnavailable)
	assert.Equal(t, 0, fallback.callCount())
}

func TestChatSkipPrimary(t *testing.T) {
	primary := &fakeProvider{name: ProviderOllama, available: true, respond: replies("primary")}
	fallback := &fakeProvider{name: ProviderOpenAI, available: true, respond: replies("fallback")}

	res, err := newTestClient(primary, fallback).Chat(context.Background(), "hello there", ChatOptions{
		SkipPrimary: true,
		Temperature: Float32(0),
	})
	require.NoError(t, err)
	assert.Equal(t, "fallback", res.Content)
	assert.Equal(t, 0, primary.callCount())
	require.Len(t, fallback.calls, 1)
	require.NotNil(t, fallback.calls[0].Temperature)
	assert.Equal(t, float32(0), *fallback.calls[0].Temperature)
}

func TestChatModelOverrideAndCompanionMode(t *testing.T) {
	primary := &fakeProvider{name: ProviderOllama, available: true, respond: replies("ok")}
	c := newTestClient(primary)

	res, err := c.Chat(context.Background(), "Is the museum open?", ChatOptions{Mode: ModeCompanion})
	require.NoError(t, err)
	assert.Equal(t, "mistral:7b", res.Model)

	res, err = c.Chat(context.Background(), "Plan Rome", ChatOptions{Model: "custom:1b"})
	require.NoError(t, err)
	assert.Equal(t, "custom:1b", res.Model)
	assert.Equal(t, "custom:1b", primary.calls[1].Model)
}

func TestChatParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	primary := &fakeProvider{name: ProviderOllama, available: true, respond: func(context.Context, int) (string, error) {
		cancel()
		return "", errors.New("aborted")
	}}
	fallback := &fakeProvider{name: ProviderOpenAI, available: true, respond: replies("never")}

	_, err := newTestClient(primary, fallback).Chat(ctx, "hello there", ChatOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, fallback.callCount())
}

func TestChatRoutesOnRouteMessage(t *testing.T) {
	primary := &fakeProvider{name: ProviderOllama, available: true, respond: replies("ok")}
	c := newTestClient(primary)

	user := "Plan a 3-day trip to Lisbon"
	wrapped := []string{
		"Produce one itinerary as JSON.\nRequest: " + user,
		"Return only JSON for this itinerary.\nRequest: " + user,
		"Fill in the blanks.\nRequest: " + user,
	}
	for _, prompt := range wrapped {
		_, err := c.Chat(context.Background(), prompt, ChatOptions{Mode: ModePlanner, RouteMessage: user})
		require.NoError(t, err)
	}

	require.Len(t, primary.calls, len(wrapped))
	for i, call := range primary.calls {
		assert.Equal(t, "llama3.1:latest", call.Model, "attempt %d", i+1)
	}

	_, err := c.Chat(context.Background(), wrapped[0], ChatOptions{Mode: ModePlanner})
	require.NoError(t, err)
	assert.Equal(t, "qwen3:30b", primary.calls[len(wrapped)].Model)
}
