package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"travelmind/internal/models/response_models"
)

const (
	SuggestionRain     = "Rain expected — recommend swapping outdoor sights for indoor museums."
	SuggestionHeat     = "Hot day — schedule midday gelato/siesta, book indoor attractions in afternoon."
	SuggestionClosed   = "One or more places closed — propose alternates nearby."
	SuggestionAllClear = "All clear — proceed with original plan."
)

type WorkerConfig struct {
	ResultTTL time.Duration
	PollWait  time.Duration
}

// CompanionWorker drains companion:jobs one job at a time.
type CompanionWorker struct {
	rdb     redis.Cmdable
	weather WeatherServiceInterface
	places  PlaceStatusServiceInterface
	cfg     WorkerConfig
	logger  *zap.Logger
	now     func() time.Time
}

func NewCompanionWorker(rdb redis.Cmdable, weather WeatherServiceInterface, places PlaceStatusServiceInterface, cfg WorkerConfig, logger *zap.Logger) *CompanionWorker {
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = time.Hour
	}
	if cfg.PollWait <= 0 {
		cfg.PollWait = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompanionWorker{rdb: rdb, weather: weather, places: places, cfg: cfg, logger: logger, now: time.Now}
}

// Run blocks until ctx is cancelled. Failed jobs are logged and dropped.
func (w *CompanionWorker) Run(ctx context.Context) {
	w.logger.Info("companion worker started")
	defer w.logger.Info("companion worker stopped")

	for {
		if ctx.Err() != nil {
			return
		}
		handled, err := w.Next(ctx)
		if err == nil || handled {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		w.logger.Error("companion queue read failed", zap.Error(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

// Next waits up to PollWait for one job and processes it. handled reports
// whether a job was popped, even if processing it failed.
func (w *CompanionWorker) Next(ctx context.Context) (handled bool, err error) {
	res, err := w.rdb.BRPop(ctx, w.cfg.PollWait, CompanionJobsKey).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(res) != 2 {
		return false, fmt.Errorf("unexpected BRPOP reply %v", res)
	}

	var job EvaluationJob
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		w.logger.Error("companion job malformed", zap.String("reason", "job_decode_failed"), zap.Error(err))
		return true, err
	}

	result, err := w.Process(ctx, job)
	if err != nil {
		w.logger.Error("companion job failed",
			zap.String("reason", "job_process_failed"),
			zap.String("job_id", job.JobID),
			zap.Error(err),
		)
		return true, err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return true, err
	}
	if err := w.rdb.SetEx(ctx, companionResultKey+job.JobID, payload, w.cfg.ResultTTL).Err(); err != nil {
		w.logger.Error("companion result write failed", zap.String("job_id", job.JobID), zap.Error(err))
		return true, err
	}
	w.logger.Info("companion job done", zap.String("job_id", job.JobID), zap.Strings("suggestions", result.Suggestions))
	return true, nil
}

func (w *CompanionWorker) Process(ctx context.Context, job EvaluationJob) (*response_models.EvaluationResult, error) {
	weather, err := w.weather.DailyForecast(ctx, job.Lat, job.Lon, job.Date)
	if err != nil {
		return nil, err
	}
	openings, err := w.places.Openings(ctx, job.PlaceIDs, w.now())
	if err != nil {
		return nil, err
	}
	return &response_models.EvaluationResult{
		Weather:     weather,
		Openings:    openings,
		Suggestions: BuildSuggestions(weather, openings),
	}, nil
}

func BuildSuggestions(weather *response_models.DayWeather, openings []response_models.PlaceOpening) []string {
	suggestions := []string{}
	if weather != nil && weather.PrecipMm > 3 {
		suggestions = append(suggestions, SuggestionRain)
	}
	if weather != nil && weather.TempMaxC >= 30 {
		suggestions = append(suggestions, SuggestionHeat)
	}
	for _, o := range openings {
		if o.OpenNow != nil && !*o.OpenNow {
			suggestions = append(suggestions, SuggestionClosed)
			break
		}
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, SuggestionAllClear)
	}
	return suggestions
}
