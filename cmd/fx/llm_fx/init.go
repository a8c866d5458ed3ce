package llm_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"travelmind/internal/config"
	"travelmind/pkg/llm"
)

var Module = fx.Provide(
	ProvideSelector,
	ProvideChatClient,
)

func ProvideSelector(cfg *config.Config) *llm.Selector {
	return llm.NewSelector(llm.SelectorConfig{
		PrimaryProvider:  llm.ProviderOllama,
		DefaultModel:     cfg.LLM.DefaultModel,
		ComplexModel:     cfg.LLM.ComplexModel,
		CompanionModel:   cfg.LLM.CompanionModel,
		FallbackProvider: llm.ProviderOpenAI,
		FallbackModel:    cfg.LLM.OpenAIModel,
		Keywords:         cfg.LLM.Keywords,
	})
}

// ProvideChatClient builds the backend chain Ollama, OpenAI, Gemini. Hosted
// backends without a key stay in the chain and are skipped as unavailable.
func ProvideChatClient(lc fx.Lifecycle, cfg *config.Config, selector *llm.Selector, log *zap.Logger) (llm.Chatter, error) {
	ollama := llm.NewOllamaProvider(cfg.LLM.OllamaURL, cfg.LLM.DefaultModel)
	openai := llm.NewOpenAIProvider(llm.OpenAIConfig{
		Name:       llm.ProviderOpenAI,
		APIKey:     cfg.LLM.OpenAIKey,
		BaseURL:    cfg.LLM.OpenAIBaseURL,
		Model:      cfg.LLM.OpenAIModel,
		RequireKey: true,
	})
	gemini, err := llm.NewGeminiProvider(context.Background(), cfg.LLM.GeminiKey, cfg.LLM.GeminiModel)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return gemini.Close()
		},
	})

	log.Info("llm chain configured",
		zap.String("ollama", cfg.LLM.OllamaURL),
		zap.Bool("openai", openai.Available()),
		zap.Bool("gemini", gemini.Available()),
	)

	return llm.NewChatClient(selector, llm.ChatConfig{
		MaxDuration:     cfg.LLM.MaxDuration,
		MaxOutputTokens: cfg.LLM.MaxOutputTokens,
		Retries:         cfg.LLM.Retries,
		ContextTokens:   cfg.LLM.ContextTokens,
	}, log, ollama, openai, gemini), nil
}
