package ingest

import (
	"context"
)

// ingestPortfolio is the account cycle. Both halves are optional: the
// balance needs API credentials and the position list needs the user
// address; with neither configured the cycle stores an empty snapshot
// and stays healthy.
func (ing *Ingestor) ingestPortfolio(ctx context.Context) error {
	balance, err := ing.markets.Balance(ctx)
	if err != nil {
		return err
	}

	positions, err := ing.markets.Positions(ctx, ing.cfg.Credentials.UserAddress)
	if err != nil {
		return err
	}

	ing.state.SetPortfolio(balance, positions)
	return nil
}
