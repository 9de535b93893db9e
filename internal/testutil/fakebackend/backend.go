// Package fakebackend is an in-memory stand-in for the simulation backend:
// the REST routes simctl calls plus the event stream WebSocket. Tests start
// it with Start and point clients at its URL.
package fakebackend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/n10s/simctl/internal/client"
)

const (
	APIKey   = "test-api-key"
	DistrKey = "test-distr-key"
	Product  = "test-product"
)

// Backend serves the fake API.
type Backend struct {
	Store *Store

	// StreamHandler replaces the default stream behaviour when set. It owns
	// conn until it returns.
	StreamHandler func(conn *websocket.Conn, r *http.Request)

	srv *httptest.Server

	mu       sync.Mutex
	requests []Recorded
	stream   streamRecorder
}

// Recorded is one REST request as the server saw it.
type Recorded struct {
	Method  string
	Path    string
	Query   string
	Header  http.Header
	Body    map[string]interface{}
	Product string
}

// Start runs a backend on a local httptest server, closed with the test.
func Start(t *testing.T) *Backend {
	t.Helper()
	b := New()
	b.srv = httptest.NewServer(b.Handler())
	t.Cleanup(b.srv.Close)
	return b
}

func New() *Backend {
	var clock int64 = 1_700_000_000_000
	return &Backend{
		Store: NewStore(func() int64 {
			clock += 1000
			return clock
		}),
	}
}

// URL is the http:// base URL of a started backend.
func (b *Backend) URL() string { return b.srv.URL }

// Requests returns the REST requests received so far.
func (b *Backend) Requests() []Recorded {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Recorded, len(b.requests))
	copy(out, b.requests)
	return out
}

func (b *Backend) Handler() http.Handler {
	mux := http.NewServeMux()
	b.SetupRoutes(mux)
	return mux
}

func (b *Backend) SetupRoutes(mux *http.ServeMux) {
	admin := func(h func(http.ResponseWriter, *http.Request, map[string]interface{})) http.HandlerFunc {
		return b.guard(APIKey, h)
	}
	distr := func(h func(http.ResponseWriter, *http.Request, map[string]interface{})) http.HandlerFunc {
		return b.guard(DistrKey, h)
	}

	mux.HandleFunc("POST /simulation", admin(b.handleCreateSimulation))
	mux.HandleFunc("GET /simulation", admin(b.handleListSimulations))
	mux.HandleFunc("GET /simulation/{id}", admin(b.handleGetSimulation))
	mux.HandleFunc("PUT /simulation/{id}", admin(b.handleSetLore))
	mux.HandleFunc("DELETE /simulation", admin(b.handleDeleteSimulation))
	mux.HandleFunc("GET /simulation/{id}/npcs", admin(b.handleListNPCs))

	mux.HandleFunc("POST /npc", admin(b.handleCreateNPC))
	mux.HandleFunc("GET /npc/{id}", admin(b.handleGetNPC))
	mux.HandleFunc("PUT /npc/{id}", admin(b.handleUpdateNPC))
	mux.HandleFunc("DELETE /npc", admin(b.handleDeleteNPC))

	mux.HandleFunc("POST /user/player", distr(b.handleCreatePlayer))
	mux.HandleFunc("GET /user/players", admin(b.handleListPlayers))
	mux.HandleFunc("GET /user/player/{id}", admin(b.handleGetPlayer))
	mux.HandleFunc("DELETE /user/player", admin(b.handleDeletePlayer))

	mux.HandleFunc("POST /stream/event", distr(b.handleStreamEvent))
	mux.HandleFunc("GET /stream/event/ws/{sim}/{player}", b.handleStreamWS)
}

// guard records the request, decodes a JSON body if present and rejects
// requests without the expected bearer token.
func (b *Backend) guard(token string, h func(http.ResponseWriter, *http.Request, map[string]interface{})) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "invalid json body")
				return
			}
		}
		b.mu.Lock()
		b.requests = append(b.requests, Recorded{
			Method:  r.Method,
			Path:    r.URL.Path,
			Query:   r.URL.RawQuery,
			Header:  r.Header.Clone(),
			Body:    body,
			Product: r.Header.Get("Product"),
		})
		b.mu.Unlock()

		if !authorize(r, token) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		h(w, r, body)
	}
}

func authorize(r *http.Request, token string) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == token
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{"err": msg, "status_code": status})
}

func str(body map[string]interface{}, key string) string {
	s, _ := body[key].(string)
	return s
}

func (b *Backend) handleCreateSimulation(w http.ResponseWriter, _ *http.Request, body map[string]interface{}) {
	name := str(body, "name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	writeJSON(w, http.StatusCreated, b.Store.CreateSimulation(name))
}

func (b *Backend) handleListSimulations(w http.ResponseWriter, _ *http.Request, _ map[string]interface{}) {
	writeJSON(w, http.StatusOK, b.Store.Simulations())
}

func (b *Backend) handleGetSimulation(w http.ResponseWriter, r *http.Request, _ map[string]interface{}) {
	sim, ok := b.Store.Simulation(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "simulation not found")
		return
	}
	writeJSON(w, http.StatusOK, sim)
}

func (b *Backend) handleSetLore(w http.ResponseWriter, r *http.Request, body map[string]interface{}) {
	sim, ok := b.Store.SetLore(r.PathValue("id"), str(body, "lore"))
	if !ok {
		writeError(w, http.StatusNotFound, "simulation not found")
		return
	}
	writeJSON(w, http.StatusOK, sim)
}

func (b *Backend) handleDeleteSimulation(w http.ResponseWriter, _ *http.Request, body map[string]interface{}) {
	if !b.Store.DeleteSimulation(str(body, "sim_id")) {
		writeError(w, http.StatusNotFound, "simulation not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) handleListNPCs(w http.ResponseWriter, r *http.Request, _ map[string]interface{}) {
	npcs := b.Store.NPCs(r.PathValue("id"))
	if npcs == nil {
		npcs = []client.NPC{}
	}
	writeJSON(w, http.StatusOK, npcs)
}

func (b *Backend) handleCreateNPC(w http.ResponseWriter, _ *http.Request, body map[string]interface{}) {
	req := client.CreateNPCRequest{
		SimID:       str(body, "sim_id"),
		NPCName:     str(body, "npc_name"),
		Description: str(body, "description"),
		Interests:   strs(body, "interests"),
	}
	npc, ok := b.Store.CreateNPC(req)
	if !ok {
		writeError(w, http.StatusNotFound, "simulation not found")
		return
	}
	writeJSON(w, http.StatusCreated, npc)
}

func (b *Backend) handleGetNPC(w http.ResponseWriter, r *http.Request, _ map[string]interface{}) {
	npc, ok := b.Store.NPC(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "npc not found")
		return
	}
	writeJSON(w, http.StatusOK, npc)
}

func (b *Backend) handleUpdateNPC(w http.ResponseWriter, r *http.Request, body map[string]interface{}) {
	npc, ok := b.Store.UpdateNPC(r.PathValue("id"), client.UpdateNPCRequest{
		Description: str(body, "description"),
		Interests:   strs(body, "interests"),
	})
	if !ok {
		writeError(w, http.StatusNotFound, "npc not found")
		return
	}
	writeJSON(w, http.StatusOK, npc)
}

func (b *Backend) handleDeleteNPC(w http.ResponseWriter, _ *http.Request, body map[string]interface{}) {
	if !b.Store.DeleteNPC(str(body, "npc_id")) {
		writeError(w, http.StatusNotFound, "npc not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) handleCreatePlayer(w http.ResponseWriter, r *http.Request, body map[string]interface{}) {
	expire := 0
	if f, ok := body["expire_min"].(float64); ok {
		expire = int(f)
	}
	p, ok := b.Store.CreatePlayer(str(body, "sim_id"), expire, r.RemoteAddr)
	if !ok {
		writeError(w, http.StatusNotFound, "simulation not found")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (b *Backend) handleListPlayers(w http.ResponseWriter, r *http.Request, _ map[string]interface{}) {
	players := b.Store.Players(r.URL.Query().Get("sim_id"))
	if players == nil {
		players = []client.Player{}
	}
	writeJSON(w, http.StatusOK, players)
}

func (b *Backend) handleGetPlayer(w http.ResponseWriter, r *http.Request, _ map[string]interface{}) {
	p, ok := b.Store.Player(r.PathValue("id"), r.URL.Query().Get("sim_id"))
	if !ok {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) handleDeletePlayer(w http.ResponseWriter, _ *http.Request, body map[string]interface{}) {
	if !b.Store.DeletePlayer(str(body, "player_id"), str(body, "sim_id")) {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) handleStreamEvent(w http.ResponseWriter, _ *http.Request, body map[string]interface{}) {
	switch client.EventKind(str(body, "event_kind")) {
	case client.EventKindState:
		if str(body, "event") == "" {
			writeError(w, http.StatusBadRequest, "event is required")
			return
		}
		id := str(body, "event_id")
		if id == "" {
			id = "evt-generated"
		}
		writeJSON(w, http.StatusOK, client.StateEventResponse{EventID: id})
	case client.EventKindAsk:
		if str(body, "ask_text") == "" || str(body, "npc_id") == "" {
			writeError(w, http.StatusBadRequest, "ask_text and npc_id are required")
			return
		}
		id := str(body, "ask_id")
		if id == "" {
			id = "ask-generated"
		}
		writeJSON(w, http.StatusOK, client.AskEventResponse{
			AskID:    id,
			Response: "The " + str(body, "npc_id") + " considers: " + str(body, "ask_text"),
		})
	default:
		writeError(w, http.StatusBadRequest, "unknown event_kind")
	}
}

func strs(body map[string]interface{}, key string) []string {
	raw, _ := body[key].([]interface{})
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
