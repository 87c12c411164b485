package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/jwpark/polytemp/internal/model"
)

// Forecast fetches the multi-model hourly temperature forecast for the
// configured grid point. Null temperatures are preserved so all model
// series stay aligned on the shared time axis.
func (c *Client) Forecast(ctx context.Context) (*model.Forecast, error) {
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(c.latitude, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(c.longitude, 'f', -1, 64))
	query.Set("hourly", "temperature_2m")
	query.Set("models", strings.Join(c.models, ","))
	query.Set("timezone", c.loc.String())
	query.Set("forecast_days", strconv.Itoa(c.forecastDays))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.omURL+"/v1/forecast?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("forecast fetch: status %d", resp.StatusCode)
	}

	var payload struct {
		Timezone string                     `json:"timezone"`
		Hourly   map[string]json.RawMessage `json:"hourly"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal forecast: %w", err)
	}

	var times []string
	if raw, ok := payload.Hourly["time"]; ok {
		if err := json.Unmarshal(raw, &times); err != nil {
			times = nil
		}
	}

	// With a single model the series arrives under the bare key; with
	// several, under temperature_2m_<model>.
	tempByModel := make(map[string][]*float64, len(c.models))
	for _, m := range c.models {
		key := "temperature_2m_" + m
		if len(c.models) == 1 {
			key = "temperature_2m"
		}
		var temps []*float64
		if raw, ok := payload.Hourly[key]; ok {
			if err := json.Unmarshal(raw, &temps); err != nil {
				temps = nil
			}
		}
		tempByModel[m] = temps
	}

	timezone := payload.Timezone
	if timezone == "" {
		timezone = c.loc.String()
	}

	return &model.Forecast{
		Provider:     "open-meteo",
		DefaultModel: c.models[0],
		Models:       slices.Clone(c.models),
		Timezone:     timezone,
		Hourly: model.ForecastHourly{
			Times:        times,
			TempCByModel: tempByModel,
		},
	}, nil
}
