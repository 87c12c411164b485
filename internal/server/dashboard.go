package server

import (
	"math"
	"net/http"
	"time"

	"github.com/jwpark/polytemp/internal/dayhigh"
	"github.com/jwpark/polytemp/internal/marketday"
	"github.com/jwpark/polytemp/internal/model"
	"github.com/jwpark/polytemp/internal/timeseries"
)

// dashboardPayload is the full snapshot served on /api/dashboard and
// pushed over the websocket feed.
type dashboardPayload struct {
	Meta      dashMeta        `json:"meta"`
	Weather   dashWeather     `json:"weather"`
	Market    dashMarket      `json:"market"`
	Forecast  *model.Forecast `json:"forecast"`
	Portfolio dashPortfolio   `json:"portfolio"`
}

type dashMeta struct {
	LastRefresh string                        `json:"lastRefresh"`
	LocalDate   string                        `json:"localDate"`
	Slug        string                        `json:"slug"`
	EventFound  bool                          `json:"eventFound"`
	Health      map[string]model.SourceHealth `json:"health"`
}

type dashWeather struct {
	Hourly       dashHourly       `json:"hourly"`
	DayHigh      *float64         `json:"dayHigh"`
	DayHighWhole *int             `json:"dayHighCelsiusWhole"`
	Wunderground dashWunderground `json:"wunderground"`
	Sources      dashSources      `json:"sources"`
}

type dashHourly struct {
	Times []string   `json:"times"`
	AWC   []*float64 `json:"awc"`
}

// dashWunderground is the scraped history joined with the running
// maximum of its own spot readings.
type dashWunderground struct {
	Station          string             `json:"station,omitempty"`
	LocalDate        string             `json:"localDate,omitempty"`
	DayHighC         *float64           `json:"dayHighC,omitempty"`
	DayLowC          *float64           `json:"dayLowC,omitempty"`
	DayHighSource    string             `json:"dayHighSource,omitempty"`
	Current          *model.SpotReading `json:"current,omitempty"`
	SourceURL        string             `json:"sourceURL,omitempty"`
	FetchedAt        *time.Time         `json:"fetchedAt,omitempty"`
	ObservedMaxC     *float64           `json:"observedMaxC"`
	ObservedMaxWhole *int               `json:"observedMaxCelsiusWhole"`
}

type dashSources struct {
	AWC dashAWC `json:"awc"`
}

type dashAWC struct {
	Latest            *float64 `json:"latest"`
	LatestTime        *string  `json:"latestTime"`
	LatestObservedAt  *string  `json:"latestObservedAt"`
	DayHigh           *float64 `json:"dayHigh"`
	DeltaVsDayHigh    *float64 `json:"deltaVsWunderground"`
	LatestDeltaVsSpot *float64 `json:"latestDeltaVsWunderground"`
}

type dashMarket struct {
	EventTitle *string         `json:"eventTitle"`
	Outcomes   []model.Outcome `json:"outcomes"`
}

type dashPortfolio struct {
	Balance   *model.Balance   `json:"balance"`
	Positions []model.Position `json:"positions"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.buildDashboard())
}

// buildDashboard assembles the dashboard from the in-memory snapshot.
// It holds no locks of its own: the state store hands out copies.
func (s *Server) buildDashboard() dashboardPayload {
	now := s.now()
	localDate := marketday.DateOf(now, s.loc)
	slug := marketday.Slug(s.cfg.Service.SlugPrefix, now, s.loc)
	station := s.cfg.Service.Station

	snap := s.state.Snapshot()

	// Right after local midnight the cached market state may still
	// belong to yesterday's slug; hide it until the loop catches up.
	event := snap.Event
	outcomes := snap.Outcomes
	if snap.Slug != slug {
		event = nil
		outcomes = nil
	}
	if outcomes == nil {
		outcomes = []model.Outcome{}
	}

	axis, _ := marketday.DayAxis(localDate, s.loc, 30*time.Minute)
	times := make([]string, len(axis))
	for i, t := range axis {
		times[i] = t.Format(time.RFC3339)
	}
	hourly, awcHigh := carryOntoAxis(snap.Observations, axis, now, s.loc, localDate)

	awcBlock := awcSource(hourly, times, snap.Observations, now, s.loc, localDate)
	awcBlock.DayHigh = awcHigh

	wu := wundergroundBlock(snap.History)
	if max, ok := s.tracker.Current(station, "wunderground_observed", localDate); ok {
		rounded := round2(max)
		whole := dayhigh.Round(max)
		wu.ObservedMaxC = &rounded
		wu.ObservedMaxWhole = &whole
	}

	dayHigh, dayHighWhole := preferDayHigh(wu.DayHighC, wu.ObservedMaxC, wu.ObservedMaxWhole, awcHigh)

	// Scraped day high wins, then the observed running max.
	wuRef := wu.DayHighC
	if wuRef == nil {
		wuRef = wu.ObservedMaxC
	}
	if awcHigh != nil && wuRef != nil {
		d := round2(*awcHigh - *wuRef)
		awcBlock.DeltaVsDayHigh = &d
	}
	if awcBlock.Latest != nil && wu.Current != nil {
		d := round2(*awcBlock.Latest - wu.Current.TempC)
		awcBlock.LatestDeltaVsSpot = &d
	}

	var eventTitle *string
	if event != nil {
		eventTitle = &event.Title
	}

	positions := snap.Positions
	if positions == nil {
		positions = []model.Position{}
	}

	return dashboardPayload{
		Meta: dashMeta{
			LastRefresh: now.In(s.loc).Format(time.RFC3339),
			LocalDate:   localDate,
			Slug:        slug,
			EventFound:  event != nil,
			Health:      s.health.Snapshot(),
		},
		Weather: dashWeather{
			Hourly:       dashHourly{Times: times, AWC: hourly},
			DayHigh:      dayHigh,
			DayHighWhole: dayHighWhole,
			Wunderground: wu,
			Sources:      dashSources{AWC: awcBlock},
		},
		Market: dashMarket{
			EventTitle: eventTitle,
			Outcomes:   outcomes,
		},
		Forecast: snap.Forecast,
		Portfolio: dashPortfolio{
			Balance:   snap.Balance,
			Positions: positions,
		},
	}
}

// carryOntoAxis folds the day's readings onto the 30-minute axis with
// last-observation-carried-forward, leaving future anchors empty. The
// second result is the maximum reading seen so far today.
func carryOntoAxis(obs []model.Observation, axis []time.Time, now time.Time, loc *time.Location, localDate string) ([]*float64, *float64) {
	var day []model.Observation
	for _, o := range obs {
		if marketday.DateOf(o.ObservedAt, loc) == localDate {
			day = append(day, o)
		}
	}

	aligned := timeseries.AlignRecords(day,
		func(o model.Observation) time.Time { return o.ObservedAt },
		axis, timeseries.Carry)

	out := make([]*float64, len(axis))
	for i, rec := range aligned {
		if rec == nil || axis[i].After(now) {
			continue
		}
		t := rec.TempC
		out[i] = &t
	}

	var high *float64
	for _, o := range day {
		if o.ObservedAt.After(now) {
			continue
		}
		if high == nil || o.TempC > *high {
			v := o.TempC
			high = &v
		}
	}
	return out, high
}

// awcSource picks the latest populated axis slot and the latest raw
// observation time for today.
func awcSource(hourly []*float64, times []string, obs []model.Observation, now time.Time, loc *time.Location, localDate string) dashAWC {
	var block dashAWC
	for i := len(hourly) - 1; i >= 0; i-- {
		if hourly[i] != nil {
			block.Latest = hourly[i]
			block.LatestTime = &times[i]
			break
		}
	}

	var latestAt time.Time
	for _, o := range obs {
		if o.ObservedAt.After(now) || marketday.DateOf(o.ObservedAt, loc) != localDate {
			continue
		}
		if o.ObservedAt.After(latestAt) {
			latestAt = o.ObservedAt
		}
	}
	if !latestAt.IsZero() {
		formatted := latestAt.In(loc).Format(time.RFC3339)
		block.LatestObservedAt = &formatted
	}
	return block
}

func wundergroundBlock(h *model.StationHistory) dashWunderground {
	if h == nil {
		return dashWunderground{}
	}
	wu := dashWunderground{
		Station:       h.Station,
		LocalDate:     h.LocalDate,
		DayHighC:      h.DayHighC,
		DayLowC:       h.DayLowC,
		DayHighSource: h.DayHighSource,
		Current:       h.Latest,
		SourceURL:     h.SourceURL,
	}
	if !h.FetchedAt.IsZero() {
		at := h.FetchedAt
		wu.FetchedAt = &at
	}
	return wu
}

// preferDayHigh resolves the day high across sources: the scraped page
// value first, then the running spot maximum, then the METAR maximum.
func preferDayHigh(scraped, observedMax *float64, observedMaxWhole *int, awcMax *float64) (*float64, *int) {
	switch {
	case scraped != nil:
		whole := dayhigh.Round(*scraped)
		return scraped, &whole
	case observedMax != nil:
		return observedMax, observedMaxWhole
	case awcMax != nil:
		whole := dayhigh.Round(*awcMax)
		return awcMax, &whole
	default:
		return nil, nil
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
