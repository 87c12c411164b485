package polymarket

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jwpark/polytemp/internal/model"
)

// Book fetches the order book for one outcome token. Calls wait on the
// shared rate limiter, so callers may fan out per token freely.
func (c *Client) Book(ctx context.Context, tokenID string) (*BookResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("token_id", tokenID)

	var book BookResponse
	if err := c.get(ctx, c.clobURL, "/book", query, false, &book); err != nil {
		return nil, fmt.Errorf("get book %s: %w", tokenID, err)
	}

	return &book, nil
}

// TopOfBook fetches the order book for a token and reduces it to its best
// bid and ask.
func (c *Client) TopOfBook(ctx context.Context, tokenID string) (model.TopOfBook, error) {
	book, err := c.Book(ctx, tokenID)
	if err != nil {
		return model.TopOfBook{}, err
	}
	return book.ToModel(), nil
}
