package client

import (
	"context"
	"net/http"
	"net/url"
)

// CreatePlayer sends POST /user/player with the distribution key. A zero
// expireMin leaves the expiry to the server.
func (c *HTTPClient) CreatePlayer(ctx context.Context, simID string, expireMin int) (*Player, *Result, error) {
	var out Player
	res, err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   "/user/player",
		Token:  c.distrKey,
		Body:   CreatePlayerRequest{SimID: simID, ExpireMin: expireMin},
	}, &out)
	if err != nil {
		return nil, res, err
	}
	return &out, res, nil
}

// ListPlayers fetches /user/players?sim_id=.
func (c *HTTPClient) ListPlayers(ctx context.Context, simID string) ([]Player, *Result, error) {
	var out []Player
	res, err := c.call(ctx, Request{
		Method: http.MethodGet,
		Path:   "/user/players",
		Query:  url.Values{"sim_id": {simID}},
		Token:  c.apiKey,
		List:   true,
	}, &out)
	if err != nil {
		return nil, res, err
	}
	return out, res, nil
}

// GetPlayer fetches /user/player/{id}?sim_id=.
func (c *HTTPClient) GetPlayer(ctx context.Context, playerID, simID string) (*Player, *Result, error) {
	var out Player
	res, err := c.call(ctx, Request{
		Method: http.MethodGet,
		Path:   "/user/player/" + pathSegment(playerID),
		Query:  url.Values{"sim_id": {simID}},
		Token:  c.apiKey,
	}, &out)
	if err != nil {
		return nil, res, err
	}
	return &out, res, nil
}

// DeletePlayer sends DELETE /user/player.
func (c *HTTPClient) DeletePlayer(ctx context.Context, playerID, simID string) (*Result, error) {
	return c.call(ctx, Request{
		Method: http.MethodDelete,
		Path:   "/user/player",
		Token:  c.apiKey,
		Body:   map[string]string{"player_id": playerID, "sim_id": simID},
	}, nil)
}
