package client

import (
	"context"
	"net/http"
)

// CreateNPC sends POST /npc.
func (c *HTTPClient) CreateNPC(ctx context.Context, body CreateNPCRequest) (*NPC, *Result, error) {
	var out NPC
	res, err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   "/npc",
		Token:  c.apiKey,
		Body:   body,
	}, &out)
	if err != nil {
		return nil, res, err
	}
	return &out, res, nil
}

// UpdateNPC sends PUT /npc/{id}.
func (c *HTTPClient) UpdateNPC(ctx context.Context, npcID string, body UpdateNPCRequest) (*NPC, *Result, error) {
	var out NPC
	res, err := c.call(ctx, Request{
		Method: http.MethodPut,
		Path:   "/npc/" + pathSegment(npcID),
		Token:  c.apiKey,
		Body:   body,
	}, &out)
	if err != nil {
		return nil, res, err
	}
	return &out, res, nil
}

// ListNPCs fetches /simulation/{id}/npcs.
func (c *HTTPClient) ListNPCs(ctx context.Context, simID string) ([]NPC, *Result, error) {
	var out []NPC
	res, err := c.call(ctx, Request{
		Method: http.MethodGet,
		Path:   "/simulation/" + pathSegment(simID) + "/npcs",
		Token:  c.apiKey,
		List:   true,
	}, &out)
	if err != nil {
		return nil, res, err
	}
	return out, res, nil
}

// GetNPC fetches /npc/{id}.
func (c *HTTPClient) GetNPC(ctx context.Context, npcID string) (*NPC, *Result, error) {
	var out NPC
	res, err := c.call(ctx, Request{
		Method: http.MethodGet,
		Path:   "/npc/" + pathSegment(npcID),
		Token:  c.apiKey,
	}, &out)
	if err != nil {
		return nil, res, err
	}
	return &out, res, nil
}

// DeleteNPC sends DELETE /npc. The backend answers 204 on success.
func (c *HTTPClient) DeleteNPC(ctx context.Context, npcID string) (*Result, error) {
	return c.call(ctx, Request{
		Method: http.MethodDelete,
		Path:   "/npc",
		Token:  c.apiKey,
		Body:   map[string]string{"npc_id": npcID},
	}, nil)
}
