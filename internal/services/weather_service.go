package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"travelmind/internal/models/response_models"
	"travelmind/pkg/memcache"
)

var ErrWeatherUnavailable = errors.New("weather unavailable")

type WeatherServiceInterface interface {
	// DailyForecast returns the forecast for one local date (YYYY-MM-DD).
	DailyForecast(ctx context.Context, lat, lon float64, date string) (*response_models.DayWeather, error)
}

type WeatherService struct {
	baseURL string
	client  *http.Client
	cache   *memcache.TTLCache[response_models.DayWeather]
	ttl     time.Duration
}

func NewWeatherService(baseURL string, timeout, ttl time.Duration) *WeatherService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WeatherService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		cache:   memcache.NewTTLCache[response_models.DayWeather](),
		ttl:     ttl,
	}
}

type openMeteoResponse struct {
	Daily struct {
		Time             []string  `json:"time"`
		WeatherCode      []*int    `json:"weathercode"`
		Temperature2mMax []float64 `json:"temperature_2m_max"`
		Temperature2mMin []float64 `json:"temperature_2m_min"`
		PrecipitationSum []float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

func (s *WeatherService) DailyForecast(ctx context.Context, lat, lon float64, date string) (*response_models.DayWeather, error) {
	key := fmt.Sprintf("%.3f:%.3f:%s", lat, lon, date)
	if w, ok := s.cache.Get(key); ok {
		return &w, nil
	}

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("daily", "weathercode,temperature_2m_max,temperature_2m_min,precipitation_sum")
	q.Set("start_date", date)
	q.Set("end_date", date)
	q.Set("timezone", "auto")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWeatherUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrWeatherUnavailable, resp.StatusCode, body)
	}

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrWeatherUnavailable, err)
	}

	w, err := pickDay(payload, date)
	if err != nil {
		return nil, err
	}
	if s.ttl > 0 {
		s.cache.Set(key, *w, s.ttl)
	}
	return w, nil
}

// pickDay prefers the row matching date and falls back to the first row.
func pickDay(p openMeteoResponse, date string) (*response_models.DayWeather, error) {
	d := p.Daily
	if len(d.Time) == 0 || len(d.Temperature2mMax) == 0 || len(d.Temperature2mMin) == 0 || len(d.PrecipitationSum) == 0 {
		return nil, fmt.Errorf("%w: empty daily forecast", ErrWeatherUnavailable)
	}

	i := 0
	for idx, t := range d.Time {
		if t == date {
			i = idx
			break
		}
	}
	if i >= len(d.Temperature2mMax) || i >= len(d.Temperature2mMin) || i >= len(d.PrecipitationSum) {
		i = 0
	}

	w := &response_models.DayWeather{
		Date:     d.Time[i],
		TempMaxC: d.Temperature2mMax[i],
		TempMinC: d.Temperature2mMin[i],
		PrecipMm: d.PrecipitationSum[i],
	}
	if i < len(d.WeatherCode) {
		w.Code = d.WeatherCode[i]
	}
	return w, nil
}
