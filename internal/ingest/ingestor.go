package ingest

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jwpark/polytemp/internal/config"
	"github.com/jwpark/polytemp/internal/dayhigh"
	"github.com/jwpark/polytemp/internal/health"
	"github.com/jwpark/polytemp/internal/polymarket"
	"github.com/jwpark/polytemp/internal/state"
	"github.com/jwpark/polytemp/internal/store"
	"github.com/jwpark/polytemp/internal/weather"
)

// metarLookbackHours is the observation window requested from the
// aviation weather API each cycle. Re-fetching the window keeps late
// reports and is idempotent to persist.
const metarLookbackHours = 24

// Deps carries everything the ingestion cycles touch.
type Deps struct {
	Config  config.Config
	Loc     *time.Location
	Markets *polymarket.Client
	Weather *weather.Client
	State   *state.Store
	Health  *health.Monitor
	Store   *store.Client
	Tracker *dayhigh.Tracker
	Logger  *slog.Logger

	// Now is overridable for tests; nil means time.Now.
	Now func() time.Time
}

// Ingestor implements the source cycles over shared state.
type Ingestor struct {
	cfg     config.Config
	loc     *time.Location
	markets *polymarket.Client
	weather *weather.Client
	state   *state.Store
	health  *health.Monitor
	store   *store.Client
	tracker *dayhigh.Tracker
	logger  *slog.Logger
	now     func() time.Time

	mu                  sync.Mutex
	lastForecastPersist time.Time
}

// New creates an ingestor.
func New(d Deps) *Ingestor {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Ingestor{
		cfg:     d.Config,
		loc:     d.Loc,
		markets: d.Markets,
		weather: d.Weather,
		state:   d.State,
		health:  d.Health,
		store:   d.Store,
		tracker: d.Tracker,
		logger:  d.Logger,
		now:     d.Now,
	}
}

// Sources returns the enabled source loops in supervisor form.
func (ing *Ingestor) Sources() []Source {
	all := []Source{
		{Name: "market", TTL: ing.cfg.TTL.Market, Run: ing.ingestMarkets},
		{Name: "awc", TTL: ing.cfg.TTL.AWC, Run: ing.ingestObservations},
		{Name: "wunderground", TTL: ing.cfg.TTL.Wunderground, Run: ing.ingestHistory},
		{Name: "forecast", TTL: ing.cfg.TTL.Forecast, Run: ing.ingestForecast},
		{Name: "portfolio", TTL: ing.cfg.TTL.Portfolio, Run: ing.ingestPortfolio},
	}

	enabled := make([]Source, 0, len(all))
	for _, src := range all {
		if ing.cfg.Ingestion.SourceDisabled(src.Name) {
			ing.logger.Info("source disabled by config", "source", src.Name)
			continue
		}
		enabled = append(enabled, src)
	}
	return enabled
}
