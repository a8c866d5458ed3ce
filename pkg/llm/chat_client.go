package llm

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// ChatConfig holds the defaults applied to every Chat call.
type ChatConfig struct {
	MaxDuration     time.Duration
	MaxOutputTokens int
	Retries         int
	ContextTokens   int
	RetryBackoff    time.Duration
}

// ChatOptions overrides ChatConfig per call. Zero values keep the defaults.
type ChatOptions struct {
	Mode            Mode
	System          string
	MaxOutputTokens int
	MaxDuration     time.Duration
	Retries         *int
	Temperature     *float32
	// Model overrides the selector's choice for the primary backend.
	Model string
	// RouteMessage is classified by the selector instead of the prompt when set.
	RouteMessage string
	// SkipPrimary sends the call straight to the fallback backends.
	SkipPrimary bool
}

type ChatResult struct {
	Content  string
	Provider string
	Model    string
}

// Chatter is the surface the services depend on.
type Chatter interface {
	Chat(ctx context.Context, prompt string, opts ChatOptions) (*ChatResult, error)
}

// ChatClient walks an ordered chain of backends. The first backend is the
// primary and gets retries; the rest are tried once each.
type ChatClient struct {
	selector *Selector
	chain    []Provider
	cfg      ChatConfig
	logger   *zap.Logger
}

func NewChatClient(selector *Selector, cfg ChatConfig, logger *zap.Logger, chain ...Provider) *ChatClient {
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = 280 * time.Second
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 800
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatClient{
		selector: selector,
		chain:    chain,
		cfg:      cfg,
		logger:   logger.Named("chat"),
	}
}

func Int(v int) *int             { return &v }
func Float32(v float32) *float32 { return &v }

func (c *ChatClient) Chat(ctx context.Context, prompt string, opts ChatOptions) (*ChatResult, error) {
	maxTokens := c.cfg.MaxOutputTokens
	if opts.MaxOutputTokens > 0 {
		maxTokens = opts.MaxOutputTokens
	}
	timeout := c.cfg.MaxDuration
	if opts.MaxDuration > 0 {
		timeout = opts.MaxDuration
	}
	retries := c.cfg.Retries
	if opts.Retries != nil && *opts.Retries >= 0 {
		retries = *opts.Retries
	}

	routeMsg := prompt
	if opts.RouteMessage != "" {
		routeMsg = opts.RouteMessage
	}
	primary := c.selector.Primary(routeMsg, opts.Mode)
	if opts.Model != "" {
		primary.Model = opts.Model
	}
	fallback := c.selector.Fallback()

	req := CompletionRequest{
		System:          opts.System,
		Prompt:          GuardPrompt(prompt, maxTokens, c.cfg.ContextTokens),
		MaxOutputTokens: maxTokens,
		Temperature:     opts.Temperature,
	}

	var attempts []AttemptError
	for i, p := range c.chain {
		isPrimary := i == 0
		if isPrimary && opts.SkipPrimary {
			continue
		}

		model := ""
		switch {
		case isPrimary:
			model = primary.Model
		case p.Name() == fallback.Provider:
			model = fallback.Model
		}

		if !p.Available() {
			attempts = append(attempts, AttemptError{Provider: p.Name(), Model: model, Err: ErrProviderUnavailable})
			c.logger.Warn("provider unavailable, skipping", zap.String("provider", p.Name()))
			continue
		}

		tries := 0
		if isPrimary {
			tries = retries
		}

		callReq := req
		callReq.Model = model
		out, tried, err := c.callWithRetry(ctx, p, callReq, timeout, tries)
		attempts = append(attempts, tried...)
		if err == nil {
			return &ChatResult{Content: out, Provider: p.Name(), Model: model}, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		c.logger.Warn("provider failed, moving down the chain",
			zap.String("provider", p.Name()),
			zap.String("model", model),
			zap.Int("attempts", len(tried)),
			zap.Error(err),
		)
	}

	return nil, &ProviderError{Attempts: attempts}
}

func (c *ChatClient) callWithRetry(ctx context.Context, p Provider, req CompletionRequest, timeout time.Duration, retries int) (string, []AttemptError, error) {
	var (
		out      string
		attempts []AttemptError
	)

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.cfg.RetryBackoff
	eb.MaxInterval = 10 * c.cfg.RetryBackoff
	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(retries)), ctx)

	err := backoff.Retry(func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		content, err := p.Complete(attemptCtx, req)
		if err == nil {
			out = content
			return nil
		}

		timedOut := ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded)
		attempts = append(attempts, AttemptError{
			Provider: p.Name(),
			Model:    req.Model,
			Attempt:  len(attempts) + 1,
			Timeout:  timedOut,
			Err:      err,
		})

		// A slow host stays slow; go straight to the next backend.
		if timedOut || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}, b)

	return out, attempts, err
}
