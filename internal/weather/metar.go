package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jwpark/polytemp/internal/model"
)

// WindDir decodes a wind direction that arrives as degrees or as the
// string "VRB" for variable winds.
type WindDir struct {
	Deg   int
	Valid bool
}

func (w *WindDir) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if n, err := strconv.Atoi(s); err == nil {
		*w = WindDir{Deg: n, Valid: true}
		return nil
	}
	*w = WindDir{}
	return nil
}

// Visibility decodes a visibility value that arrives as a number or as a
// string like "6+". The raw representation is preserved.
type Visibility string

func (v *Visibility) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*v = ""
		return nil
	}
	*v = Visibility(strings.Trim(s, `"`))
	return nil
}

// MetarObservation is one METAR record from aviationweather.gov.
type MetarObservation struct {
	ICAOID      string     `json:"icaoId"`
	ReportTime  string     `json:"reportTime"`
	ReceiptTime string     `json:"receiptTime"`
	Temp        *float64   `json:"temp"`
	Dewp        *float64   `json:"dewp"`
	Wdir        WindDir    `json:"wdir"`
	Wspd        *float64   `json:"wspd"`
	Wgst        *float64   `json:"wgst"`
	Altim       *float64   `json:"altim"`
	Visib       Visibility `json:"visib"`
	FltCat      string     `json:"fltCat"`
	RawOb       string     `json:"rawOb"`
}

// ToObservation converts the raw record. It returns false when the record
// has no usable observation time or no temperature.
func (m *MetarObservation) ToObservation(station string) (model.Observation, bool) {
	reportTime := m.ReportTime
	if reportTime == "" {
		reportTime = m.ReceiptTime
	}
	observedAt, err := ParseTimestamp(reportTime)
	if err != nil || m.Temp == nil {
		return model.Observation{}, false
	}

	obs := model.Observation{
		Station:        station,
		Source:         "awc",
		ObservedAt:     observedAt,
		TempC:          *m.Temp,
		DewpointC:      m.Dewp,
		WindSpeedKt:    m.Wspd,
		WindGustKt:     m.Wgst,
		PressureHpa:    m.Altim,
		Visibility:     string(m.Visib),
		FlightCategory: m.FltCat,
		RawText:        m.RawOb,
	}
	if m.Wdir.Valid {
		deg := m.Wdir.Deg
		obs.WindDirDeg = &deg
	}
	return obs, true
}

// Metars fetches recent METAR observations for a station. Malformed
// records are skipped; the result is sorted by observation time.
func (c *Client) Metars(ctx context.Context, station string, hours int) ([]model.Observation, error) {
	query := url.Values{}
	query.Set("ids", station)
	query.Set("format", "json")
	query.Set("hours", strconv.Itoa(hours))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.awcURL+"/api/data/metar?"+query.Encode(), nil)
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
		return nil, fmt.Errorf("metar fetch: status %d", resp.StatusCode)
	}

	var raw []MetarObservation
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal metar: %w", err)
	}

	observations := make([]model.Observation, 0, len(raw))
	for i := range raw {
		obs, ok := raw[i].ToObservation(station)
		if !ok {
			c.logger.Debug("skipping malformed metar record", "station", station, "raw", raw[i].RawOb)
			continue
		}
		observations = append(observations, obs)
	}

	sort.Slice(observations, func(i, j int) bool {
		return observations[i].ObservedAt.Before(observations[j].ObservedAt)
	})

	return observations, nil
}

// ParseTimestamp parses the timestamp formats the METAR API uses: RFC 3339,
// or a naive "2006-01-02T15:04:05" / "2006-01-02 15:04:05" taken as UTC.
func ParseTimestamp(ts string) (time.Time, error) {
	if ts == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, ts, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", ts)
}
