package polymarket

import (
	"encoding/json"
	"strconv"
	"strings"
)

// StringList decodes a JSON array of strings that Gamma sometimes delivers
// as a JSON-encoded string, e.g. `"[\"Yes\", \"No\"]"`.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var direct []string
	if err := json.Unmarshal(data, &direct); err == nil {
		*l = direct
		return nil
	}

	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		*l = nil
		return nil
	}

	var nested []string
	if err := json.Unmarshal([]byte(encoded), &nested); err != nil {
		*l = nil
		return nil
	}
	*l = nested
	return nil
}

// FlexInt decodes an integer delivered as a JSON number, a numeric string,
// or null.
type FlexInt struct {
	Value int
	Valid bool
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*f = FlexInt{}
		return nil
	}
	s = strings.Trim(s, `"`)

	if n, err := strconv.Atoi(s); err == nil {
		*f = FlexInt{Value: n, Valid: true}
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*f = FlexInt{Value: int(v), Valid: true}
		return nil
	}
	*f = FlexInt{}
	return nil
}

// Ptr returns the value as *int, nil when absent.
func (f FlexInt) Ptr() *int {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// FlexFloat decodes a float delivered as a JSON number, a numeric string,
// or null.
type FlexFloat struct {
	Value float64
	Valid bool
}

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*f = FlexFloat{}
		return nil
	}
	s = strings.Trim(s, `"`)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = FlexFloat{}
		return nil
	}
	*f = FlexFloat{Value: v, Valid: true}
	return nil
}

// Ptr returns the value as *float64, nil when absent.
func (f FlexFloat) Ptr() *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// FlexString decodes a string delivered as a JSON string or number.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(strings.Trim(strings.TrimSpace(string(data)), `"`))
	return nil
}

// GammaEvent is an event from the Gamma API with its nested markets.
type GammaEvent struct {
	ID      FlexString    `json:"id"`
	Slug    string        `json:"slug"`
	Title   string        `json:"title"`
	Markets []GammaMarket `json:"markets"`
}

// GammaMarket is one market inside a Gamma event.
type GammaMarket struct {
	ID                 FlexString `json:"id"`
	ConditionID        string     `json:"conditionId"`
	Slug               string     `json:"slug"`
	Question           string     `json:"question"`
	GroupItemTitle     string     `json:"groupItemTitle"`
	GroupItemThreshold FlexInt    `json:"groupItemThreshold"`
	Outcomes           StringList `json:"outcomes"`
	OutcomePrices      StringList `json:"outcomePrices"`
	ClobTokenIDs       StringList `json:"clobTokenIds"`
	BestAsk            FlexFloat  `json:"bestAsk"`
	LastTradePrice     FlexFloat  `json:"lastTradePrice"`
	Volume24hr         FlexFloat  `json:"volume24hr"`
	Volume24hrClob     FlexFloat  `json:"volume24hrClob"`
	AcceptingOrders    bool       `json:"acceptingOrders"`
}

// eventsListResponse from GET /events?slug=. Gamma returns either a bare
// array or a wrapper object depending on the endpoint version.
type eventsListResponse struct {
	Events []GammaEvent `json:"events"`
}

// BookResponse from GET /book?token_id=. Prices and sizes arrive as
// decimal strings.
type BookResponse struct {
	Market    string          `json:"market"`
	AssetID   string          `json:"asset_id"`
	Timestamp string          `json:"timestamp"`
	Bids      []BookWireLevel `json:"bids"`
	Asks      []BookWireLevel `json:"asks"`
}

// BookWireLevel is one price level as sent by the CLOB.
type BookWireLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// balanceResponse from GET /balance-allowance.
type balanceResponse struct {
	Balance string `json:"balance"`
}

// dataPosition is one position row from the Data API.
type dataPosition struct {
	Asset        string    `json:"asset"`
	ConditionID  string    `json:"conditionId"`
	Size         FlexFloat `json:"size"`
	AvgPrice     FlexFloat `json:"avgPrice"`
	CurPrice     FlexFloat `json:"curPrice"`
	CurrentValue FlexFloat `json:"currentValue"`
	CashPnl      FlexFloat `json:"cashPnl"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Outcome      string    `json:"outcome"`
	Redeemable   bool      `json:"redeemable"`
	EndDate      string    `json:"endDate"`
}
