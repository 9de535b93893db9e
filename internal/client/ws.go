package client

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/rotisserie/eris"
)

// StreamURL returns the event stream endpoint for a player in a simulation.
// http and https base URLs are upgraded to ws and wss.
func StreamURL(baseURL, simID, playerID string) string {
	return HTTPToWS(strings.TrimSuffix(baseURL, "/")) +
		"/stream/event/ws/" + pathSegment(simID) + "/" + pathSegment(playerID)
}

// HTTPToWS converts an http(s) URL to ws(s). Other schemes are returned
// unchanged.
func HTTPToWS(u string) string {
	switch {
	case strings.HasPrefix(u, "http://"):
		return "ws://" + strings.TrimPrefix(u, "http://")
	case strings.HasPrefix(u, "https://"):
		return "wss://" + strings.TrimPrefix(u, "https://")
	}
	return u
}

// streamDialer has no handshake timeout: a hung handshake waits until ctx is
// cancelled.
var streamDialer = &websocket.Dialer{
	Proxy: http.ProxyFromEnvironment,
}

// DialStream opens the event stream with a bearer token in the handshake.
func DialStream(ctx context.Context, url, token string) (*websocket.Conn, error) {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	conn, resp, err := streamDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, eris.Wrapf(err, "dial %s: %s", url, resp.Status)
		}
		return nil, eris.Wrapf(err, "dial %s", url)
	}
	return conn, nil
}
