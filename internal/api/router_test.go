package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"travelmind/internal/api/controllers"
	dbm "travelmind/internal/models/db_models"
	"travelmind/internal/repositories"
	"travelmind/internal/services"
	"travelmind/pkg/llm"
	"travelmind/pkg/utils"
)

const lisbonPlan = `Sure! Here is your trip:
` + "```json" + `
{"title":"Lisbon Getaway","startDate":"2025-09-01","endDate":"2025-09-03","destination":"Lisbon","days":[{"date":"2025-09-01","activities":[{"title":"Belém Tower","startTime":"09:00"}]},{"date":"2025-09-02","activities":[]},{"date":"2025-09-03","activities":[]}]}
` + "```"

type cannedChat struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
}

func (c *cannedChat) Chat(context.Context, string, llm.ChatOptions) (*llm.ChatResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &llm.ChatResult{Content: c.reply, Provider: llm.ProviderOllama, Model: "test"}, nil
}

type testServer struct {
	router *gin.Engine
	chat   *cannedChat
	issuer *utils.TokenIssuer
	db     *gorm.DB
}

func newTestServer(t *testing.T, rc RouterConfig) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(dbm.All()...))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	log := zap.NewNop()
	chat := &cannedChat{reply: lisbonPlan}
	tripRepo := repositories.NewTripRepository(db)
	todos := services.NewTodoService(repositories.NewTodoRepository(db), nil)
	_, err = todos.SeedDefaultTemplates(context.Background())
	require.NoError(t, err)

	itineraries := services.NewItineraryService(chat, services.ItineraryConfig{FallbackAttempts: 2}, log)
	trips := services.NewTripService(tripRepo, itineraries, todos, nil, log)
	companion := services.NewCompanionService(rdb, chat, tripRepo, services.CompanionConfig{CacheTTL: time.Minute}, log)
	health := services.NewHealthService(db, rdb, "test")

	issuer := utils.NewTokenIssuer("test-secret", time.Hour)
	router := NewRouter(rc, log, issuer, Handlers{
		Trip:      controllers.NewTripController(trips),
		Todo:      controllers.NewTodoController(todos),
		Companion: controllers.NewCompanionController(companion),
		Health:    controllers.NewHealthController(health),
	})
	return &testServer{router: router, chat: chat, issuer: issuer, db: db}
}

type envelope struct {
	Status  string          `json:"status"`
	Code    int             `json:"code"`
	Reason  string          `json:"reason"`
	Details []string        `json:"details"`
	TraceID string          `json:"trace_id"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

type createdTrip struct {
	TripID string `json:"tripId"`
	Trip   struct {
		Title string `json:"title"`
		Days  []struct {
			Date       string `json:"date"`
			Activities []struct {
				Title string `json:"title"`
			} `json:"activities"`
		} `json:"days"`
	} `json:"trip"`
	TodosCreated int `json:"todosCreated"`
}

func TestCreateTripEndpoint(t *testing.T) {
	s := newTestServer(t, RouterConfig{})

	w, env := s.do(t, http.MethodPost, "/api/trips", map[string]string{
		"userId": "user-1",
		"prompt": "Plan a 3-day trip to Lisbon",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
	assert.Equal(t, w.Header().Get("X-Trace-ID"), env.TraceID)

	got := decode[createdTrip](t, env.Data)
	assert.Equal(t, "Lisbon Getaway", got.Trip.Title)
	require.Len(t, got.Trip.Days, 3)
	require.Len(t, got.Trip.Days[0].Activities, 1)
	assert.Equal(t, "Belém Tower", got.Trip.Days[0].Activities[0].Title)
	assert.Equal(t, len(services.DefaultTodoTemplates), got.TodosCreated)

	w, env = s.do(t, http.MethodGet, "/api/trips/"+got.TripID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/trips?userId=user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, env.Data), 1)
}

func TestCreateTripErrors(t *testing.T) {
	s := newTestServer(t, RouterConfig{})

	w, env := s.do(t, http.MethodPost, "/api/trips", map[string]string{"userId": "u", "prompt": "Lisbon"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, utils.ReasonBadRequest, env.Reason)
	assert.Zero(t, s.chat.calls)

	w, env = s.do(t, http.MethodPost, "/api/trips", map[string]string{"userId": "u"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, env.Details)

	s.chat.reply = "I cannot help with that."
	w, env = s.do(t, http.MethodPost, "/api/trips", map[string]string{"userId": "u", "prompt": "Plan a 3-day trip to Lisbon"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, utils.ReasonNoJSONFound, env.Reason)
	assert.Equal(t, 5, s.chat.calls)

	var trips int64
	require.NoError(t, s.db.Model(&dbm.Trip{}).Count(&trips).Error)
	assert.Zero(t, trips)

	s.chat.err = &llm.ProviderError{}
	w, env = s.do(t, http.MethodPost, "/api/trips", map[string]string{"userId": "u", "prompt": "Plan a 3-day trip to Lisbon"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, utils.ReasonNoProvider, env.Reason)

	w, env = s.do(t, http.MethodGet, "/api/trips/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, utils.ReasonTripNotFound, env.Reason)
}

func TestReplacePlanEndpoint(t *testing.T) {
	s := newTestServer(t, RouterConfig{})
	_, env := s.do(t, http.MethodPost, "/api/trips", map[string]string{"userId": "user-1", "prompt": "Plan a 3-day trip to Lisbon"})
	trip := decode[createdTrip](t, env.Data)

	plan := map[string]any{"plan": map[string]any{
		"days": []any{
			map[string]any{"activities": []string{"Sintra"}},
		},
	}}
	w, env := s.do(t, http.MethodPut, "/api/plan/"+trip.TripID, plan)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	detail := decode[createdTrip](t, json.RawMessage(`{"trip":`+string(env.Data)+`}`))
	require.Len(t, detail.Trip.Days, 1)
	assert.Equal(t, "Sintra", detail.Trip.Days[0].Activities[0].Title)

	w, env = s.do(t, http.MethodPut, "/api/plan/"+trip.TripID, map[string]any{"plan": map[string]any{"days": "nope"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, env.Details)

	w, _ = s.do(t, http.MethodPut, "/api/plan/"+uuid.NewString(), plan)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTodoEndpoints(t *testing.T) {
	s := newTestServer(t, RouterConfig{})
	_, env := s.do(t, http.MethodPost, "/api/trips", map[string]string{"userId": "user-1", "prompt": "Plan a 3-day trip to Lisbon"})
	trip := decode[createdTrip](t, env.Data)

	w, env := s.do(t, http.MethodPost, "/api/todos", map[string]string{
		"userId": "user-1", "tripId": trip.TripID, "title": "Buy Lisboa Card", "dueDate": "2025-08-30",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	todo := decode[map[string]any](t, env.Data)
	id := todo["id"].(string)

	w, env = s.do(t, http.MethodPatch, "/api/todos/"+id, map[string]string{"status": "ARCHIVED"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(t, http.MethodPatch, "/api/todos/"+id, map[string]string{"status": "DONE"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DONE", decode[map[string]any](t, env.Data)["status"])

	w, _ = s.do(t, http.MethodPatch, "/api/todos/"+uuid.NewString(), map[string]string{"status": "DONE"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/todos/"+trip.TripID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]map[string]any](t, env.Data)
	assert.Len(t, list, len(services.DefaultTodoTemplates)+1)
	assert.Equal(t, "DONE", list[0]["status"])
}

func TestCompanionEndpoints(t *testing.T) {
	s := newTestServer(t, RouterConfig{})
	s.chat.reply = "Take tram 28."

	w, env := s.do(t, http.MethodPost, "/api/companion/ask", map[string]string{"message": "How to reach Alfama?"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[map[string]any](t, env.Data)["cached"].(bool))

	_, env = s.do(t, http.MethodPost, "/api/companion/ask", map[string]string{"message": "How to reach Alfama?"})
	assert.True(t, decode[map[string]any](t, env.Data)["cached"].(bool))
	assert.Equal(t, 1, s.chat.calls)

	w, _ = s.do(t, http.MethodPost, "/api/companion/evaluate", map[string]any{"userId": "u", "tripId": "t", "date": "2025-09-02"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(t, http.MethodPost, "/api/companion/evaluate", map[string]any{
		"userId": "u", "tripId": "t", "date": "2025-09-02", "lat": 38.7, "lon": -9.14, "placeIds": []string{"x"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	jobID := decode[map[string]string](t, env.Data)["jobId"]
	assert.Regexp(t, `^eval:\d+:[0-9a-z]{6}$`, jobID)

	w, env = s.do(t, http.MethodGet, "/api/companion/evaluate/"+jobID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"done":false}`, string(env.Data))
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, RouterConfig{})
	w, env := s.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[map[string]any](t, env.Data)["ok"].(bool))
}

func TestJWTOverridesUserID(t *testing.T) {
	s := newTestServer(t, RouterConfig{})
	token, err := s.issuer.CreateToken("jwt-user", "traveller")
	require.NoError(t, err)

	w, _ := s.do(t, http.MethodPost, "/api/trips",
		map[string]string{"userId": "spoofed", "prompt": "Plan a 3-day trip to Lisbon"},
		"Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)

	_, env := s.do(t, http.MethodGet, "/api/trips?userId=spoofed", nil, "Authorization", "Bearer "+token)
	assert.Len(t, decode[[]map[string]any](t, env.Data), 1)

	_, env = s.do(t, http.MethodGet, "/api/trips?userId=spoofed", nil)
	assert.Empty(t, decode[[]map[string]any](t, env.Data))

	w, env = s.do(t, http.MethodGet, "/api/trips?userId=spoofed", nil, "Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", env.Reason)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, RouterConfig{RateLimitRPS: 0.001, RateLimitBurst: 1})

	w, _ := s.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := s.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate_limited", env.Reason)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, RouterConfig{CORSOrigins: []string{"https://app.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/trips", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
