package response_models

type AskResponse struct {
	Answer string `json:"answer"`
	Cached bool   `json:"cached"`
}

type EnqueueResponse struct {
	JobID string `json:"jobId"`
}

type DayWeather struct {
	Date     string  `json:"date"`
	TempMaxC float64 `json:"tempMaxC"`
	TempMinC float64 `json:"tempMinC"`
	PrecipMm float64 `json:"precipMm"`
	Code     *int    `json:"code,omitempty"`
}

type PlaceOpening struct {
	PlaceID     string `json:"placeId"`
	Name        string `json:"name"`
	OpenNow     *bool  `json:"openNow,omitempty"`
	TodaysHours string `json:"todaysHours,omitempty"`
}

type EvaluationResult struct {
	Weather     *DayWeather    `json:"weather"`
	Openings    []PlaceOpening `json:"openings"`
	Suggestions []string       `json:"suggestions"`
}

type EvaluationStatus struct {
	Done   bool              `json:"done"`
	Result *EvaluationResult `json:"result,omitempty"`
}

type HealthResponse struct {
	OK      bool   `json:"ok"`
	DB      string `json:"db"`
	Redis   string `json:"redis"`
	Version string `json:"version,omitempty"`
}
