package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/jwpark/polytemp/internal/model"
)

// Balance fetches the collateral balance from the CLOB. The request is
// signed with L2 HMAC headers; with incomplete credentials it returns
// (nil, nil) so callers can treat the balance as simply unavailable.
func (c *Client) Balance(ctx context.Context) (*model.Balance, error) {
	if !c.creds.Complete() {
		return nil, nil
	}

	query := url.Values{}
	query.Set("asset_type", "COLLATERAL")

	var resp balanceResponse
	if err := c.get(ctx, c.clobURL, "/balance-allowance", query, true, &resp); err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}

	return &model.Balance{
		AssetType: "COLLATERAL",
		Balance:   resp.Balance,
	}, nil
}

// Positions fetches open positions for a user address from the Data API.
// The response is either a bare array or a {"data": [...]} wrapper. An
// empty user address returns (nil, nil).
func (c *Client) Positions(ctx context.Context, user string) ([]model.Position, error) {
	if user == "" {
		return nil, nil
	}

	query := url.Values{}
	query.Set("user", user)

	body, err := c.doRequest(ctx, "GET", c.dataURL, "/positions", query, false)
	if err != nil {
		return nil, fmt.Errorf("get positions: %w", err)
	}

	var rows []dataPosition
	if err := json.Unmarshal(body, &rows); err != nil {
		var wrapped struct {
			Data []dataPosition `json:"data"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, fmt.Errorf("unmarshal positions: %w", err)
		}
		rows = wrapped.Data
	}

	positions := make([]model.Position, 0, len(rows))
	for i := range rows {
		positions = append(positions, rows[i].toModel())
	}
	return positions, nil
}
