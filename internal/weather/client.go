package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"github.com/weathervane/backend/internal/config"
)

// Client abstracts the upstream current-weather capability
type Client interface {
	FetchCurrent(ctx context.Context, city string) (*Observation, error)
}

// Observation is the validated, metric-unit reading returned by the upstream
// API. Required fields are plain values; optional fields keep pointer or
// zero-value semantics so the caller can substitute defaults.
type Observation struct {
	City                 string
	ObservedAt           time.Time
	Temperature          float64
	FeelsLike            float64
	TempMin              float64
	TempMax              float64
	Humidity             float64
	Pressure             float64
	WindSpeed            float64
	WindDeg              int
	ConditionMain        string
	ConditionDescription string
	ConditionIcon        string
	Cloudiness           int
	Visibility           int
	Sunrise              *time.Time
	Sunset               *time.Time
}

var (
	// ErrMissingAPIKey indicates the client is not configured
	ErrMissingAPIKey = errors.New("openweather api key is not configured")
	// ErrIncompleteData indicates the upstream response lacked required fields
	ErrIncompleteData = errors.New("upstream response missing required fields")
	// ErrUpstreamStatus indicates a non-2xx upstream response
	ErrUpstreamStatus = errors.New("unexpected upstream status")
)

// OpenWeatherClient implements Client against the OpenWeatherMap API
type OpenWeatherClient struct {
	cfg        *config.OpenWeatherConfig
	httpClient *http.Client
	circuit    *gobreaker.CircuitBreaker
}

// NewOpenWeatherClient creates a client with a bounded request timeout and a
// circuit breaker around the upstream endpoint
func NewOpenWeatherClient(cfg *config.OpenWeatherConfig) *OpenWeatherClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &OpenWeatherClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		circuit:    cb,
	}
}

// currentWeatherPayload mirrors the OpenWeatherMap /weather response shape.
// Required numeric fields are pointers so absence is distinguishable from zero.
type currentWeatherPayload struct {
	Name string `json:"name"`
	Dt   int64  `json:"dt"`
	Main struct {
		Temp      *float64 `json:"temp"`
		FeelsLike float64  `json:"feels_like"`
		TempMin   float64  `json:"temp_min"`
		TempMax   float64  `json:"temp_max"`
		Humidity  *float64 `json:"humidity"`
		Pressure  *float64 `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Visibility int `json:"visibility"`
	Sys        struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
}

// FetchCurrent retrieves and validates the current weather for a city
func (c *OpenWeatherClient) FetchCurrent(ctx context.Context, city string) (*Observation, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	values := url.Values{}
	q := city
	if c.cfg.CountryCode != "" {
		q = fmt.Sprintf("%s,%s", city, c.cfg.CountryCode)
	}
	values.Set("q", q)
	values.Set("appid", c.cfg.APIKey)
	values.Set("units", c.cfg.Units)

	endpoint := fmt.Sprintf("%s/weather?%s", c.cfg.BaseURL, values.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, execErr := c.httpClient.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
		}

		var payload currentWeatherPayload
		if decodeErr := json.NewDecoder(resp.Body).Decode(&payload); decodeErr != nil {
			return nil, fmt.Errorf("failed to decode upstream response: %w", decodeErr)
		}
		return &payload, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("openweather circuit open: %w", err)
		}
		return nil, err
	}

	payload, ok := result.(*currentWeatherPayload)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}

	return payload.toObservation(city)
}

// toObservation validates required fields and substitutes defaults for
// optional ones
func (p *currentWeatherPayload) toObservation(requestedCity string) (*Observation, error) {
	if p.Main.Temp == nil || p.Main.Humidity == nil || p.Main.Pressure == nil || len(p.Weather) == 0 || p.Weather[0].Main == "" {
		return nil, ErrIncompleteData
	}

	observedAt := time.Now().UTC()
	if p.Dt > 0 {
		observedAt = time.Unix(p.Dt, 0).UTC()
	}

	obs := &Observation{
		City:                 requestedCity,
		ObservedAt:           observedAt,
		Temperature:          *p.Main.Temp,
		FeelsLike:            p.Main.FeelsLike,
		TempMin:              p.Main.TempMin,
		TempMax:              p.Main.TempMax,
		Humidity:             *p.Main.Humidity,
		Pressure:             *p.Main.Pressure,
		WindSpeed:            p.Wind.Speed,
		WindDeg:              p.Wind.Deg,
		ConditionMain:        p.Weather[0].Main,
		ConditionDescription: p.Weather[0].Description,
		ConditionIcon:        p.Weather[0].Icon,
		Cloudiness:           p.Clouds.All,
		Visibility:           p.Visibility,
	}

	if p.Name != "" {
		obs.City = p.Name
	}
	if p.Sys.Sunrise > 0 {
		t := time.Unix(p.Sys.Sunrise, 0).UTC()
		obs.Sunrise = &t
	}
	if p.Sys.Sunset > 0 {
		t := time.Unix(p.Sys.Sunset, 0).UTC()
		obs.Sunset = &t
	}

	return obs, nil
}
