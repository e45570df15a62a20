package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Report es la porcion del payload de OpenWeather que exponemos.
type Report struct {
	City        string  `json:"city"`
	Description string  `json:"description"`
	Temp        float64 `json:"temp"`
}

// Client define la consulta del clima actual.
type Client interface {
	Current(ctx context.Context) (Report, error)
}

// HTTPClient implementa Client contra el endpoint de clima actual de
// OpenWeather.
type HTTPClient struct {
	baseURL string
	apiKey  string
	city    string
	units   string
	client  *http.Client
}

func NewHTTPClient(baseURL, apiKey, city, units string) *HTTPClient {
	if baseURL == "" {
		baseURL = "https://api.openweathermap.org/data/2.5"
	}
	if units == "" {
		units = "metric"
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		city:    city,
		units:   units,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPClient) Current(ctx context.Context) (Report, error) {
	query := url.Values{}
	query.Set("q", c.city)
	query.Set("appid", c.apiKey)
	query.Set("units", c.units)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/weather?"+query.Encode(), nil)
	if err != nil {
		return Report{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Report{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Report{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return Report{}, fmt.Errorf("weather http error: status=%d", resp.StatusCode)
	}

	var body openWeatherResponse
	if err := json.Unmarshal(respBody, &body); err != nil {
		return Report{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(body.Weather) == 0 {
		return Report{}, fmt.Errorf("weather response missing conditions")
	}

	return Report{
		City:        body.Name,
		Description: body.Weather[0].Description,
		Temp:        body.Main.Temp,
	}, nil
}

type openWeatherResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
}
