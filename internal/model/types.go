package model

import "time"

// -----------------------------------------------------------------------------
// Weather Types
// -----------------------------------------------------------------------------

// Observation is a single validated weather reading.
type Observation struct {
	Station        string    `json:"station"`                  // ICAO station id (e.g., "RKSI")
	Source         string    `json:"source"`                   // "awc" or "wunderground_observed"
	ObservedAt     time.Time `json:"observedAt"`               // Observation time (UTC)
	TempC          float64   `json:"tempC"`                    // Air temperature (°C)
	DewpointC      *float64  `json:"dewpointC,omitempty"`      // Dewpoint (°C)
	WindDirDeg     *int      `json:"windDirDeg,omitempty"`     // Wind direction (degrees), nil when variable
	WindSpeedKt    *float64  `json:"windSpeedKt,omitempty"`    // Wind speed (knots)
	WindGustKt     *float64  `json:"windGustKt,omitempty"`     // Wind gust (knots)
	PressureHpa    *float64  `json:"pressureHpa,omitempty"`    // Altimeter setting (hPa)
	Visibility     string    `json:"visibility,omitempty"`     // Raw visibility value ("10+", "6")
	FlightCategory string    `json:"flightCategory,omitempty"` // VFR/MVFR/IFR/LIFR
	RawText        string    `json:"raw,omitempty"`            // Raw METAR text
}

// SpotReading is the latest scraped reading from a station history page.
type SpotReading struct {
	ObservedAt time.Time `json:"observedAt"` // Resolved observation time (UTC)
	LocalTime  string    `json:"localTime"`  // Time string as shown on the page ("2:30 PM")
	TempC      float64   `json:"tempC"`      // Temperature (°C)
}

// StationHistory is one best-effort scrape of a daily history page.
// Any field may legitimately be absent; absence is not an error.
type StationHistory struct {
	Station       string       `json:"station"`
	LocalDate     string       `json:"localDate"`               // Civil date in the market timezone (YYYY-MM-DD)
	DayHighC      *float64     `json:"dayHighC,omitempty"`      // Published day high (°C)
	DayLowC       *float64     `json:"dayLowC,omitempty"`       // Published day low (°C)
	DayHighSource string       `json:"dayHighSource,omitempty"` // "daily_observations" or "daily_summary"
	Latest        *SpotReading `json:"latest,omitempty"`        // Most recent spot reading on the page
	SourceURL     string       `json:"sourceURL,omitempty"`
	FetchedAt     time.Time    `json:"fetchedAt"`
}

// DayHighChange records the running day-high maximum advancing.
type DayHighChange struct {
	Station       string    `json:"station"`
	Source        string    `json:"source"`
	LocalDate     string    `json:"dateLocal"`               // Civil date the change belongs to
	ObservedAt    time.Time `json:"observedAt"`              // When the new maximum was observed
	PreviousHighC *int      `json:"previousHighC,omitempty"` // Whole-degree previous high, nil on first reading
	HighC         int       `json:"highC"`                   // Whole-degree new high
}

// -----------------------------------------------------------------------------
// Market Types
// -----------------------------------------------------------------------------

// Event is the market group for one local date.
type Event struct {
	GammaID   string   `json:"gammaId"` // Upstream event id
	Slug      string   `json:"slug"`
	Title     string   `json:"title"`
	LocalDate string   `json:"dateLocal"`
	Markets   []Market `json:"markets"`
}

// Market is one temperature bucket inside an event.
// Bounds are inclusive whole degrees; a nil bound means that side is open.
type Market struct {
	GammaID         string    `json:"gammaId"`
	ConditionID     string    `json:"conditionId"`
	Slug            string    `json:"slug"`
	Question        string    `json:"question"`
	GroupItemTitle  string    `json:"groupItemTitle"` // Bucket label ("24°C", "26°C or higher")
	ThresholdC      *int      `json:"thresholdC,omitempty"`
	LowerBoundC     *int      `json:"lowerBoundC,omitempty"`
	UpperBoundC     *int      `json:"upperBoundC,omitempty"`
	YesTokenID      string    `json:"yesTokenId,omitempty"`
	NoTokenID       string    `json:"noTokenId,omitempty"`
	OutcomePrices   []float64 `json:"outcomePrices,omitempty"` // [yes, no] as published by the metadata API
	BestAsk         *float64  `json:"bestAsk,omitempty"`
	LastTradePrice  *float64  `json:"lastTradePrice,omitempty"`
	Volume24h       *float64  `json:"volume24h,omitempty"`
	AcceptingOrders bool      `json:"acceptingOrders"`
}

// BookLevel is one side of a top-of-book quote.
type BookLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// TopOfBook is the best bid/ask for a single token.
// Either side may be nil when the book is empty or the fetch failed.
type TopOfBook struct {
	Bid *BookLevel `json:"bid,omitempty"`
	Ask *BookLevel `json:"ask,omitempty"`
}

// TokenQuote joins a token id with its current top-of-book.
type TokenQuote struct {
	TokenID string     `json:"tokenId,omitempty"`
	Bid     *BookLevel `json:"bid,omitempty"`
	Ask     *BookLevel `json:"ask,omitempty"`
}

// Outcome is a dashboard row: one market bucket with live quotes.
type Outcome struct {
	MarketID        string     `json:"marketId"` // Gamma market id
	Question        string     `json:"question"`
	GroupItemTitle  string     `json:"groupItemTitle"`
	ThresholdC      *int       `json:"thresholdC,omitempty"`
	LowerBoundC     *int       `json:"lowerBoundC,omitempty"`
	UpperBoundC     *int       `json:"upperBoundC,omitempty"`
	Yes             TokenQuote `json:"yes"`
	No              TokenQuote `json:"no"`
	LastTradePrice  *float64   `json:"lastTradePrice,omitempty"`
	BestAsk         *float64   `json:"bestAsk,omitempty"`
	Volume24h       *float64   `json:"volume24h,omitempty"`
	AcceptingOrders bool       `json:"acceptingOrders"`
}

// -----------------------------------------------------------------------------
// Forecast Types
// -----------------------------------------------------------------------------

// Forecast is one multi-model hourly temperature forecast.
type Forecast struct {
	Provider     string         `json:"provider"` // e.g., "open-meteo"
	DefaultModel string         `json:"defaultModel,omitempty"`
	Models       []string       `json:"models"`
	Timezone     string         `json:"timezone,omitempty"`
	Hourly       ForecastHourly `json:"hourly"`
}

// ForecastHourly holds per-model hourly series on a shared time axis.
// Temperature entries may be nil where the model has no value.
type ForecastHourly struct {
	Times        []string              `json:"times"` // Provider-local timestamps ("2026-08-25T14:00")
	TempCByModel map[string][]*float64 `json:"tempCByModel"`
}

// -----------------------------------------------------------------------------
// Portfolio & Health Types
// -----------------------------------------------------------------------------

// Balance is the collateral balance reported by the exchange.
type Balance struct {
	AssetType string `json:"assetType"`
	Balance   string `json:"balance"` // Raw integer string in micro units
}

// Position is one open position reported by the data API.
type Position struct {
	Asset        string   `json:"asset"`
	ConditionID  string   `json:"conditionId"`
	Size         float64  `json:"size"`
	AvgPrice     *float64 `json:"avgPrice,omitempty"`
	CurPrice     *float64 `json:"curPrice,omitempty"`
	CurrentValue *float64 `json:"currentValue,omitempty"`
	CashPnl      *float64 `json:"cashPnl,omitempty"`
	Title        string   `json:"title,omitempty"`
	Slug         string   `json:"slug,omitempty"`
	Outcome      string   `json:"outcome,omitempty"`
	Redeemable   bool     `json:"redeemable,omitempty"`
	EndDate      string   `json:"endDate,omitempty"`
}

// SourceHealth tracks the last outcome of one ingestion source.
type SourceHealth struct {
	LastSuccessAt *time.Time `json:"lastSuccessAt,omitempty"`
	LastErrorAt   *time.Time `json:"lastErrorAt,omitempty"`
	LastError     string     `json:"lastError,omitempty"`
}
