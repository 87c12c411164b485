package ingest

import (
	"context"
	"sort"
	"sync"

	"github.com/jwpark/polytemp/internal/marketday"
	"github.com/jwpark/polytemp/internal/model"
)

// ingestMarkets is the market-loop cycle: roll the day over when the
// slug changed, refresh the event on its coarser TTL, then fan out over
// the outcome tokens for the top of each order book.
func (ing *Ingestor) ingestMarkets(ctx context.Context) error {
	now := ing.now()
	slug := marketday.Slug(ing.cfg.Service.SlugPrefix, now, ing.loc)
	if ing.state.EnsureSlug(slug) {
		ing.logger.Info("market day rolled over", "slug", slug)
	}

	event, fetchedAt := ing.state.Event()
	if event == nil || now.Sub(fetchedAt) >= ing.cfg.TTL.Event {
		wire, err := ing.markets.EventBySlug(ctx, slug)
		switch {
		case err != nil && ctx.Err() != nil:
			return err
		case err != nil:
			// Keep whatever event is cached; staleness beats nothing.
			ing.health.Failure("event", err)
			ing.logger.Warn("event refresh failed", "slug", slug, "error", err)
		default:
			ing.health.Success("event")
			event = nil
			if wire != nil {
				converted := wire.ToModel(marketday.DateOf(now, ing.loc))
				event = &converted
			}
			ing.state.SetEvent(event, now)
		}
	}

	if event == nil {
		// Nothing listed for the day (or nothing cached yet): skip the
		// book refresh and serve an empty outcome list.
		ing.state.SetOutcomes(nil, now)
		return nil
	}

	outcomes := ing.buildOutcomes(ctx, event.Markets)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	ing.state.SetOutcomes(outcomes, now)
	ing.persistEventSnapshot(ctx, event, outcomes, now.UTC())
	return nil
}

// buildOutcomes joins each market with the live top of its yes/no
// books. Book fetches run concurrently; a failed token leaves its
// market row in place with an empty quote.
func (ing *Ingestor) buildOutcomes(ctx context.Context, markets []model.Market) []model.Outcome {
	tokens := make([]string, 0, len(markets)*2)
	seen := make(map[string]bool, len(markets)*2)
	for _, m := range markets {
		for _, id := range []string{m.YesTokenID, m.NoTokenID} {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			tokens = append(tokens, id)
		}
	}
	sort.Strings(tokens)

	books := make(map[string]model.TopOfBook, len(tokens))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, id := range tokens {
		wg.Add(1)
		go func(tokenID string) {
			defer wg.Done()
			top, err := ing.markets.TopOfBook(ctx, tokenID)
			if err != nil {
				ing.logger.Debug("book fetch failed", "token", tokenID, "error", err)
				return
			}
			mu.Lock()
			books[tokenID] = top
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	outcomes := make([]model.Outcome, 0, len(markets))
	for _, m := range markets {
		outcomes = append(outcomes, buildOutcome(m, books))
	}
	return outcomes
}

func buildOutcome(m model.Market, books map[string]model.TopOfBook) model.Outcome {
	out := model.Outcome{
		MarketID:        m.GammaID,
		Question:        m.Question,
		GroupItemTitle:  m.GroupItemTitle,
		ThresholdC:      m.ThresholdC,
		LowerBoundC:     m.LowerBoundC,
		UpperBoundC:     m.UpperBoundC,
		Yes:             model.TokenQuote{TokenID: m.YesTokenID},
		No:              model.TokenQuote{TokenID: m.NoTokenID},
		LastTradePrice:  m.LastTradePrice,
		BestAsk:         m.BestAsk,
		Volume24h:       m.Volume24h,
		AcceptingOrders: m.AcceptingOrders,
	}
	if top, ok := books[m.YesTokenID]; ok {
		out.Yes.Bid = top.Bid
		out.Yes.Ask = top.Ask
	}
	if top, ok := books[m.NoTokenID]; ok {
		out.No.Bid = top.Bid
		out.No.Ask = top.Ask
	}
	return out
}
