package weather

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jwpark/polytemp/internal/marketday"
	"github.com/jwpark/polytemp/internal/model"
)

var (
	scriptRe = regexp.MustCompile(`(?is)<script.*?</script>`)
	styleRe  = regexp.MustCompile(`(?is)<style.*?</style>`)
	tagRe    = regexp.MustCompile(`(?s)<[^>]+>`)
	spaceRe  = regexp.MustCompile(`\s+`)

	// Clock time followed by a temperature, e.g. "2:30 PM 84 °F".
	spotReadingRe = regexp.MustCompile(`(?i)(\d{1,2}:\d{2})\s*(AM|PM)?\s+(-?\d+(?:\.\d+)?)\s*°?\s*([FC])`)
)

// History scrapes the daily history page for the given local date. The
// page layout shifts and the host throttles aggressively, so every
// temperature field is best-effort: a fetched page that yields nothing
// still returns a (mostly empty) history without error.
func (c *Client) History(ctx context.Context, station string, date time.Time) (*model.StationHistory, error) {
	u := c.wuURL + c.historyPath + "/" + marketday.HistoryDatePath(date, c.loc)

	result, err := c.breaker.Execute(func() (any, error) {
		return c.fetchHistoryHTML(ctx, u)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}

	text := htmlToText(result.(string))
	localDate := marketday.DateOf(date, c.loc)

	history := &model.StationHistory{
		Station:   station,
		LocalDate: localDate,
		SourceURL: u,
		FetchedAt: time.Now().UTC(),
	}

	high, highSection := extractTemp(text, "Temperature", "High")
	low, _ := extractTemp(text, "Temperature", "Low")
	if high == nil || low == nil {
		if high == nil {
			high, highSection = extractTemp(text, "Daily Summary", "High")
		}
		if low == nil {
			low, _ = extractTemp(text, "Daily Summary", "Low")
		}
	}
	history.DayHighC = high
	history.DayLowC = low
	if high != nil {
		history.DayHighSource = highSection
	}

	history.Latest = latestSpotReading(text, date, c.loc)

	return history, nil
}

func (c *Client) fetchHistoryHTML(ctx context.Context, u string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	// The host rejects obvious bot traffic.
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("User-Agent",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36")
	req.Header.Set("Referer", c.wuURL+"/")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("history fetch: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return string(body), nil
}

// htmlToText strips markup down to a single whitespace-collapsed line.
func htmlToText(payload string) string {
	payload = scriptRe.ReplaceAllString(payload, " ")
	payload = styleRe.ReplaceAllString(payload, " ")
	payload = tagRe.ReplaceAllString(payload, " ")
	payload = html.UnescapeString(payload)
	payload = spaceRe.ReplaceAllString(payload, " ")
	return strings.TrimSpace(payload)
}

// extractTemp finds "<section> <label> <value> °F|C" in the flattened page
// text and returns the value in Celsius plus the section tag it came from.
func extractTemp(text, section, label string) (*float64, string) {
	pattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(section) + `\s+` + regexp.QuoteMeta(label) + `\s+(-?\d+(?:\.\d+)?)\s*°?\s*([FC])`)
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return nil, ""
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil, ""
	}
	if strings.EqualFold(m[2], "F") {
		value = fahrenheitToCelsius(value)
	}

	sectionTag := "daily_observations"
	if strings.EqualFold(section, "Daily Summary") {
		sectionTag = "daily_summary"
	}
	return &value, sectionTag
}

// latestSpotReading picks the most recent time+temperature pair from the
// observations table and resolves it against the local date.
func latestSpotReading(text string, date time.Time, loc *time.Location) *model.SpotReading {
	scoped := text
	if idx := strings.Index(strings.ToLower(text), "observations"); idx >= 0 {
		scoped = text[idx:]
	}

	var (
		bestMinutes = -1
		bestTempC   float64
		bestLabel   string
	)
	for _, m := range spotReadingRe.FindAllStringSubmatch(scoped, -1) {
		clock, ampm, rawTemp, unit := m[1], strings.ToUpper(m[2]), m[3], m[4]

		value, err := strconv.ParseFloat(rawTemp, 64)
		if err != nil {
			continue
		}

		parts := strings.SplitN(clock, ":", 2)
		hour, err1 := strconv.Atoi(parts[0])
		minute, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			continue
		}
		if ampm == "PM" && hour != 12 {
			hour += 12
		} else if ampm == "AM" && hour == 12 {
			hour = 0
		}
		if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
			continue
		}

		minutes := hour*60 + minute
		if minutes > bestMinutes {
			bestMinutes = minutes
			bestTempC = value
			if strings.EqualFold(unit, "F") {
				bestTempC = fahrenheitToCelsius(value)
			}
			bestLabel = strings.TrimSpace(clock + " " + ampm)
		}
	}

	if bestMinutes < 0 {
		return nil
	}

	year, month, day := date.In(loc).Date()
	observedAt := time.Date(year, month, day, 0, 0, 0, 0, loc).Add(time.Duration(bestMinutes) * time.Minute)

	return &model.SpotReading{
		ObservedAt: observedAt.UTC(),
		LocalTime:  bestLabel,
		TempC:      bestTempC,
	}
}

func fahrenheitToCelsius(f float64) float64 {
	return (f - 32.0) * 5.0 / 9.0
}
