package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"travelmind/internal/models/request_models"
	"travelmind/internal/models/response_models"
	"travelmind/internal/repositories"
	"travelmind/pkg/llm"
	"travelmind/pkg/utils"
)

const (
	CompanionJobsKey      = "companion:jobs"
	companionResultKey    = "companion:result:"
	companionSystemPrompt = "You are a concise on-trip assistant."
)

// EvaluationJob is the queue payload shared with the worker.
type EvaluationJob struct {
	JobID    string   `json:"jobId"`
	UserID   string   `json:"userId"`
	TripID   string   `json:"tripId"`
	Date     string   `json:"date"`
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
	PlaceIDs []string `json:"placeIds"`
}

type CompanionServiceInterface interface {
	Ask(ctx context.Context, req request_models.AskRequest) (*response_models.AskResponse, error)
	Enqueue(ctx context.Context, req request_models.EvaluateRequest) (*response_models.EnqueueResponse, error)
	Result(ctx context.Context, jobID string) (*response_models.EvaluationStatus, error)
}

type CompanionConfig struct {
	CacheTTL time.Duration
	Location *time.Location
}

type CompanionService struct {
	rdb    redis.Cmdable
	chat   llm.Chatter
	trips  repositories.TripRepository
	cfg    CompanionConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewCompanionService accepts a nil trip repository; answers then carry no
// trip context.
func NewCompanionService(rdb redis.Cmdable, chat llm.Chatter, trips repositories.TripRepository, cfg CompanionConfig, logger *zap.Logger) *CompanionService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 60 * time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompanionService{rdb: rdb, chat: chat, trips: trips, cfg: cfg, logger: logger, now: time.Now}
}

func askCacheKey(tripID, message string) string {
	if tripID == "" {
		tripID = "none"
	}
	return "companion:" + tripID + ":" + base64.StdEncoding.EncodeToString([]byte(message))
}

func (s *CompanionService) Ask(ctx context.Context, req request_models.AskRequest) (*response_models.AskResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, utils.NewDetailedError(utils.ErrInvalidInput, "message: required")
	}

	key := askCacheKey(req.TripID, message)
	cached, err := s.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		return &response_models.AskResponse{Answer: cached, Cached: true}, nil
	case !errors.Is(err, redis.Nil):
		s.logger.Warn("companion cache read failed", zap.String("key", key), zap.Error(err))
	}

	res, err := s.chat.Chat(ctx, message, llm.ChatOptions{
		Mode:   llm.ModeCompanion,
		System: s.systemPrompt(ctx, req.TripID),
	})
	if err != nil {
		return nil, err
	}

	if err := s.rdb.Set(ctx, key, res.Content, s.cfg.CacheTTL).Err(); err != nil {
		s.logger.Warn("companion cache write failed",
			zap.String("reason", utils.ReasonCacheWriteFailed),
			zap.String("key", key),
			zap.Error(err),
		)
	}
	return &response_models.AskResponse{Answer: res.Content, Cached: false}, nil
}

func (s *CompanionService) systemPrompt(ctx context.Context, tripID string) string {
	if s.trips == nil || tripID == "" {
		return companionSystemPrompt
	}
	id, err := uuid.Parse(tripID)
	if err != nil {
		return companionSystemPrompt
	}
	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return companionSystemPrompt
	}
	return fmt.Sprintf("%s The traveller is on %q in %s from %s to %s.",
		companionSystemPrompt,
		trip.Title,
		trip.Destination,
		utils.FormatDate(trip.StartDate.In(s.cfg.Location)),
		utils.FormatDate(trip.EndDate.In(s.cfg.Location)),
	)
}

func (s *CompanionService) Enqueue(ctx context.Context, req request_models.EvaluateRequest) (*response_models.EnqueueResponse, error) {
	var problems []string
	if strings.TrimSpace(req.UserID) == "" {
		problems = append(problems, "userId: required")
	}
	if strings.TrimSpace(req.TripID) == "" {
		problems = append(problems, "tripId: required")
	}
	if _, err := utils.ParseDate(req.Date, s.cfg.Location); err != nil {
		problems = append(problems, "date: must be YYYY-MM-DD")
	}
	if req.Lat == nil || *req.Lat < -90 || *req.Lat > 90 {
		problems = append(problems, "lat: must be between -90 and 90")
	}
	if req.Lon == nil || *req.Lon < -180 || *req.Lon > 180 {
		problems = append(problems, "lon: must be between -180 and 180")
	}
	if len(problems) > 0 {
		return nil, utils.NewDetailedError(utils.ErrInvalidInput, problems...)
	}

	job := EvaluationJob{
		JobID:    s.newJobID(),
		UserID:   req.UserID,
		TripID:   req.TripID,
		Date:     strings.TrimSpace(req.Date),
		Lat:      *req.Lat,
		Lon:      *req.Lon,
		PlaceIDs: req.PlaceIDs,
	}
	if job.PlaceIDs == nil {
		job.PlaceIDs = []string{}
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}
	if err := s.rdb.LPush(ctx, CompanionJobsKey, payload).Err(); err != nil {
		s.logger.Error("companion enqueue failed", zap.String("reason", utils.ReasonEnqueueFailed), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", utils.ErrCacheUnavailable, err)
	}

	s.logger.Info("companion job enqueued", zap.String("job_id", job.JobID), zap.String("trip_id", job.TripID))
	return &response_models.EnqueueResponse{JobID: job.JobID}, nil
}

func (s *CompanionService) Result(ctx context.Context, jobID string) (*response_models.EvaluationStatus, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, utils.NewDetailedError(utils.ErrInvalidInput, "jobId: required")
	}

	raw, err := s.rdb.Get(ctx, companionResultKey+jobID).Bytes()
	if errors.Is(err, redis.Nil) {
		return &response_models.EvaluationStatus{Done: false}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrCacheUnavailable, err)
	}

	var result response_models.EvaluationResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode evaluation %s: %w", jobID, err)
	}
	return &response_models.EvaluationStatus{Done: true, Result: &result}, nil
}

// newJobID has the form eval:<unix ms>:<6 base36 chars>.
func (s *CompanionService) newJobID() string {
	suffix := strconv.FormatInt(rand.Int63n(2176782336), 36) // 36^6
	for len(suffix) < 6 {
		suffix = "0" + suffix
	}
	return "eval:" + strconv.FormatInt(s.now().UnixMilli(), 10) + ":" + suffix
}
