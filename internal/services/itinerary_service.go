package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"travelmind/internal/itinerary"
	"travelmind/pkg/jsonextract"
	"travelmind/pkg/llm"
	"travelmind/pkg/utils"
)

type ItineraryServiceInterface interface {
	Generate(ctx context.Context, userPrompt string, opts GenerateOptions) (*GeneratedItinerary, error)
}

type GenerateOptions struct {
	// Model pins the primary model instead of the selector's pick.
	Model string
	// DefaultStart anchors undated days when the model gives no dates.
	DefaultStart *time.Time
}

type GeneratedItinerary struct {
	Itinerary *itinerary.Itinerary
	Raw       string
	Provider  string
	Model     string
	Attempts  int
}

type ItineraryConfig struct {
	FallbackAttempts int
	MaxOutputTokens  int
	Temperature      float32
	Location         *time.Location
}

type ItineraryService struct {
	chat   llm.Chatter
	cfg    ItineraryConfig
	logger *zap.Logger
}

func NewItineraryService(chat llm.Chatter, cfg ItineraryConfig, logger *zap.Logger) ItineraryServiceInterface {
	if cfg.FallbackAttempts < 0 {
		cfg.FallbackAttempts = 0
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItineraryService{
		chat:   chat,
		cfg:    cfg,
		logger: logger.Named("itinerary"),
	}
}

const plannerSystemPrompt = `You are TravelMind, a trip planner. Output JSON ONLY that conforms to this shape:
{
  "title": string,
  "destination": string,
  "currency": string,
  "startDate": "YYYY-MM-DD",
  "endDate": "YYYY-MM-DD",
  "days": [
    {
      "date": "YYYY-MM-DD",
      "city": string,
      "title": string,
      "summary": string,
      "budgetCents": number,
      "activities": [
        {"title": string, "startTime": "HH:mm", "endTime": "HH:mm", "notes": string, "kind": string, "priceCents": number}
      ]
    }
  ]
}
Leave out any field you do not know. Never invent booking links or confirmation numbers.`

var promptLadder = []func(string) string{
	buildPlanPrompt,
	buildStrictPlanPrompt,
	buildTemplatePlanPrompt,
}

// Generate runs the prompt ladder against the chat client until a response
// both extracts and normalizes. After the ladder it forces the fallback
// backends at temperature zero for FallbackAttempts more tries.
func (s *ItineraryService) Generate(ctx context.Context, userPrompt string, opts GenerateOptions) (*GeneratedItinerary, error) {
	userPrompt = strings.TrimSpace(userPrompt)
	if userPrompt == "" {
		return nil, fmt.Errorf("%w: prompt is required", utils.ErrInvalidInput)
	}

	maxAttempts := len(promptLadder) + s.cfg.FallbackAttempts
	var lastErr *utils.GenerationError

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		forced := attempt > len(promptLadder)

		chatOpts := llm.ChatOptions{
			Mode:            llm.ModePlanner,
			System:          plannerSystemPrompt,
			MaxOutputTokens: s.cfg.MaxOutputTokens,
			Temperature:     llm.Float32(s.cfg.Temperature),
			Model:           opts.Model,
			RouteMessage:    userPrompt,
		}
		var prompt string
		if forced {
			prompt = buildTemplatePlanPrompt(userPrompt)
			chatOpts.SkipPrimary = true
			chatOpts.Temperature = llm.Float32(0)
			chatOpts.Model = ""
		} else {
			prompt = promptLadder[attempt-1](userPrompt)
		}

		s.logger.Info("generating itinerary",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.Bool("forced_fallback", forced),
		)

		res, err := s.chat.Chat(ctx, prompt, chatOpts)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Without a parse failure to report, exhausting the providers is
			// the answer. In the forced phase the earlier parse failure wins.
			if errors.Is(err, llm.ErrNoUsableProvider) && (!forced || lastErr == nil) {
				return nil, err
			}
			s.logger.Warn("chat attempt failed", zap.Int("attempt", attempt), zap.Error(err))
			if forced {
				break
			}
			continue
		}

		raw, err := jsonextract.Extract(res.Content)
		if err != nil {
			lastErr = &utils.GenerationError{Reason: utils.ReasonNoJSONFound, Attempts: attempt}
			s.logger.Warn("no JSON object in model output",
				zap.Int("attempt", attempt),
				zap.String("provider", res.Provider),
				zap.String("output", truncate(res.Content, 500)),
			)
			continue
		}

		it, err := itinerary.Normalize([]byte(raw), itinerary.Options{
			RequireTitle: true,
			DefaultStart: opts.DefaultStart,
			Location:     s.cfg.Location,
		})
		if err != nil {
			var verr *itinerary.ValidationError
			details := []string{err.Error()}
			if errors.As(err, &verr) {
				details = verr.Violations
			}
			lastErr = &utils.GenerationError{Reason: utils.ReasonSchemaInvalid, Details: details, Attempts: attempt}
			s.logger.Warn("model output failed validation",
				zap.Int("attempt", attempt),
				zap.Strings("violations", details),
			)
			continue
		}

		s.logger.Info("itinerary generated",
			zap.Int("attempt", attempt),
			zap.String("provider", res.Provider),
			zap.String("model", res.Model),
			zap.Int("days", len(it.Days)),
		)
		return &GeneratedItinerary{
			Itinerary: it,
			Raw:       raw,
			Provider:  res.Provider,
			Model:     res.Model,
			Attempts:  attempt,
		}, nil
	}

	if lastErr == nil {
		lastErr = &utils.GenerationError{Reason: utils.ReasonNoJSONFound, Attempts: maxAttempts}
	}
	return nil, lastErr
}

func buildPlanPrompt(userPrompt string) string {
	var prompt strings.Builder
	prompt.WriteString("Create a day-by-day travel itinerary for the request below.\n")
	prompt.WriteString("Return a single JSON object.\n\n")
	prompt.WriteString(fmt.Sprintf("Request: %s\n", userPrompt))
	return prompt.String()
}

func buildStrictPlanPrompt(userPrompt string) string {
	var prompt strings.Builder
	prompt.WriteString("=== RULES ===\n")
	prompt.WriteString("1. Respond with ONE JSON object and nothing else.\n")
	prompt.WriteString("2. No prose, no markdown, no code fences, no reasoning.\n")
	prompt.WriteString("3. \"title\" is required. \"days\" is an array with one object per day.\n")
	prompt.WriteString("4. Dates use YYYY-MM-DD. Times use 24h HH:mm.\n")
	prompt.WriteString("5. Every activity is an object with at least a \"title\".\n\n")
	prompt.WriteString(fmt.Sprintf("Request: %s\n", userPrompt))
	return prompt.String()
}

func buildTemplatePlanPrompt(userPrompt string) string {
	var prompt strings.Builder
	prompt.WriteString("Fill in the blanks of this JSON template for the request below. ")
	prompt.WriteString("Repeat the day object once per day. Output the completed JSON only.\n\n")
	prompt.WriteString(`{
  "title": "<short trip title>",
  "destination": "<main city or region>",
  "currency": "<ISO currency code>",
  "startDate": "<YYYY-MM-DD>",
  "endDate": "<YYYY-MM-DD>",
  "days": [
    {
      "date": "<YYYY-MM-DD>",
      "city": "<city>",
      "activities": [
        {"title": "<activity>", "startTime": "<HH:mm>", "endTime": "<HH:mm>"}
      ]
    }
  ]
}`)
	prompt.WriteString(fmt.Sprintf("\n\nRequest: %s\n", userPrompt))
	return prompt.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
