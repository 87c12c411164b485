package polymarket

import (
	"strconv"
	"strings"

	"github.com/jwpark/polytemp/internal/buckets"
	"github.com/jwpark/polytemp/internal/model"
)

// ToModel converts a Gamma event to the internal representation for the
// given local date.
func (e *GammaEvent) ToModel(localDate string) model.Event {
	markets := make([]model.Market, 0, len(e.Markets))
	for i := range e.Markets {
		markets = append(markets, e.Markets[i].ToModel())
	}

	return model.Event{
		GammaID:   string(e.ID),
		Slug:      e.Slug,
		Title:     e.Title,
		LocalDate: localDate,
		Markets:   markets,
	}
}

// ToModel converts a Gamma market to the internal representation. Bucket
// bounds derive from the group item title text, not from the numeric
// threshold, which is only a sort key.
func (m *GammaMarket) ToModel() model.Market {
	yesToken, noToken := m.selectTokens()
	lower, upper := buckets.ParseBounds(m.GroupItemTitle)

	volume := m.Volume24hr.Ptr()
	if volume == nil {
		volume = m.Volume24hrClob.Ptr()
	}

	return model.Market{
		GammaID:         string(m.ID),
		ConditionID:     m.ConditionID,
		Slug:            m.Slug,
		Question:        m.Question,
		GroupItemTitle:  m.GroupItemTitle,
		ThresholdC:      m.GroupItemThreshold.Ptr(),
		LowerBoundC:     lower,
		UpperBoundC:     upper,
		YesTokenID:      yesToken,
		NoTokenID:       noToken,
		OutcomePrices:   parsePrices(m.OutcomePrices),
		BestAsk:         m.BestAsk.Ptr(),
		LastTradePrice:  m.LastTradePrice.Ptr(),
		Volume24h:       volume,
		AcceptingOrders: m.AcceptingOrders,
	}
}

// selectTokens maps outcome labels to token ids. When labels are missing
// or unrecognized, position decides: first token is yes, second is no.
func (m *GammaMarket) selectTokens() (yes, no string) {
	for i, outcome := range m.Outcomes {
		if i >= len(m.ClobTokenIDs) {
			break
		}
		switch strings.ToLower(strings.TrimSpace(outcome)) {
		case "yes":
			yes = m.ClobTokenIDs[i]
		case "no":
			no = m.ClobTokenIDs[i]
		}
	}
	if yes == "" && len(m.ClobTokenIDs) > 0 {
		yes = m.ClobTokenIDs[0]
	}
	if no == "" && len(m.ClobTokenIDs) > 1 {
		no = m.ClobTokenIDs[1]
	}
	return yes, no
}

func parsePrices(raw StringList) []float64 {
	if len(raw) == 0 {
		return nil
	}
	prices := make([]float64, 0, len(raw))
	for _, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			continue
		}
		prices = append(prices, v)
	}
	return prices
}

// ToModel converts a CLOB order book to its top-of-book quote: the
// highest-priced bid and the lowest-priced ask.
func (b *BookResponse) ToModel() model.TopOfBook {
	var top model.TopOfBook

	for _, level := range b.Bids {
		price, err := strconv.ParseFloat(level.Price, 64)
		if err != nil {
			continue
		}
		size, _ := strconv.ParseFloat(level.Size, 64)
		if top.Bid == nil || price > top.Bid.Price {
			top.Bid = &model.BookLevel{Price: price, Size: size}
		}
	}

	for _, level := range b.Asks {
		price, err := strconv.ParseFloat(level.Price, 64)
		if err != nil {
			continue
		}
		size, _ := strconv.ParseFloat(level.Size, 64)
		if top.Ask == nil || price < top.Ask.Price {
			top.Ask = &model.BookLevel{Price: price, Size: size}
		}
	}

	return top
}

func (p *dataPosition) toModel() model.Position {
	var size float64
	if v := p.Size.Ptr(); v != nil {
		size = *v
	}

	return model.Position{
		Asset:        p.Asset,
		ConditionID:  p.ConditionID,
		Size:         size,
		AvgPrice:     p.AvgPrice.Ptr(),
		CurPrice:     p.CurPrice.Ptr(),
		CurrentValue: p.CurrentValue.Ptr(),
		CashPnl:      p.CashPnl.Ptr(),
		Title:        p.Title,
		Slug:         p.Slug,
		Outcome:      p.Outcome,
		Redeemable:   p.Redeemable,
		EndDate:      p.EndDate,
	}
}
