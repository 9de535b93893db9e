package client

import (
	"context"
	"net/http"
)

// CreateSimulation sends POST /simulation.
func (c *HTTPClient) CreateSimulation(ctx context.Context, name string) (*Simulation, *Result, error) {
	var out Simulation
	res, err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   "/simulation",
		Token:  c.apiKey,
		Body:   map[string]string{"name": name},
	}, &out)
	if err != nil {
		return nil, res, err
	}
	return &out, res, nil
}

// ListSimulations fetches /simulation.
func (c *HTTPClient) ListSimulations(ctx context.Context) ([]Simulation, *Result, error) {
	var out []Simulation
	res, err := c.call(ctx, Request{
		Method: http.MethodGet,
		Path:   "/simulation",
		Token:  c.apiKey,
		List:   true,
	}, &out)
	if err != nil {
		return nil, res, err
	}
	return out, res, nil
}

// GetSimulation fetches /simulation/{id}.
func (c *HTTPClient) GetSimulation(ctx context.Context, simID string) (*Simulation, *Result, error) {
	var out Simulation
	res, err := c.call(ctx, Request{
		Method: http.MethodGet,
		Path:   "/simulation/" + pathSegment(simID),
		Token:  c.apiKey,
	}, &out)
	if err != nil {
		return nil, res, err
	}
	return &out, res, nil
}

// SetLore sends PUT /simulation/{id} with the new lore text.
func (c *HTTPClient) SetLore(ctx context.Context, simID, lore string) (*Simulation, *Result, error) {
	var out Simulation
	res, err := c.call(ctx, Request{
		Method: http.MethodPut,
		Path:   "/simulation/" + pathSegment(simID),
		Token:  c.apiKey,
		Body:   map[string]string{"lore": lore},
	}, &out)
	if err != nil {
		return nil, res, err
	}
	return &out, res, nil
}

// DeleteSimulation sends DELETE /simulation.
func (c *HTTPClient) DeleteSimulation(ctx context.Context, simID string) (*Result, error) {
	return c.call(ctx, Request{
		Method: http.MethodDelete,
		Path:   "/simulation",
		Token:  c.apiKey,
		Body:   map[string]string{"sim_id": simID},
	}, nil)
}

// call runs req and decodes a successful body into out when out is non-nil.
func (c *HTTPClient) call(ctx context.Context, req Request, out interface{}) (*Result, error) {
	res, err := c.Do(ctx, req)
	if err != nil {
		return res, err
	}
	if out != nil {
		decode(res, out)
	}
	return res, nil
}
