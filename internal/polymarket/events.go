package polymarket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

// EventBySlug fetches the event for the given slug from the Gamma API.
// It tries GET /events/slug/{slug} first and falls back to the
// GET /events?slug= listing on 404. A missing event is not an error:
// both the slug lookup 404ing and an empty listing return (nil, nil).
func (c *Client) EventBySlug(ctx context.Context, slug string) (*GammaEvent, error) {
	var event GammaEvent
	err := c.get(ctx, c.gammaURL, "/events/slug/"+url.PathEscape(slug), nil, false, &event)
	if err == nil {
		return &event, nil
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.IsNotFound() {
		return nil, fmt.Errorf("get event %s: %w", slug, err)
	}

	return c.eventFromListing(ctx, slug)
}

// eventFromListing queries the /events listing, which returns either a
// bare array or an {"events": [...]} wrapper.
func (c *Client) eventFromListing(ctx context.Context, slug string) (*GammaEvent, error) {
	query := url.Values{}
	query.Set("slug", slug)

	body, err := c.doRequest(ctx, "GET", c.gammaURL, "/events", query, false)
	if err != nil {
		return nil, fmt.Errorf("list events %s: %w", slug, err)
	}

	var list []GammaEvent
	if err := json.Unmarshal(body, &list); err == nil {
		if len(list) == 0 {
			return nil, nil
		}
		return &list[0], nil
	}

	var wrapped eventsListResponse
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("unmarshal events %s: %w", slug, err)
	}
	if len(wrapped.Events) == 0 {
		return nil, nil
	}
	return &wrapped.Events[0], nil
}
