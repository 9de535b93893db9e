package client

import (
	"context"
	"net/http"
)

// SendState posts a state event to /stream/event. eventID is optional.
func (c *HTTPClient) SendState(ctx context.Context, playerID, simID, event, eventID string) (*StateEventResponse, *Result, error) {
	var out StateEventResponse
	res, err := c.call(ctx, c.streamEvent(StreamEventRequest{
		PlayerID:  playerID,
		SimID:     simID,
		EventKind: EventKindState,
		Event:     event,
		EventID:   eventID,
	}), &out)
	if err != nil {
		return nil, res, err
	}
	return &out, res, nil
}

// Ask posts a question for an NPC to /stream/event. askID is optional.
func (c *HTTPClient) Ask(ctx context.Context, playerID, simID, npcID, askText, askID string) (*AskEventResponse, *Result, error) {
	var out AskEventResponse
	res, err := c.call(ctx, c.streamEvent(StreamEventRequest{
		PlayerID:  playerID,
		SimID:     simID,
		EventKind: EventKindAsk,
		NPCID:     npcID,
		AskText:   askText,
		AskID:     askID,
	}), &out)
	if err != nil {
		return nil, res, err
	}
	return &out, res, nil
}

func (c *HTTPClient) streamEvent(body StreamEventRequest) Request {
	return Request{
		Method: http.MethodPost,
		Path:   "/stream/event",
		Token:  c.distrKey,
		Body:   body,
	}
}
