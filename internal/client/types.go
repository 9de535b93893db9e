// Package client provides HTTP and WebSocket clients for the simulation
// backend. Types mirror the backend wire format.
package client

// EventKind discriminates stream events.
type EventKind string

const (
	EventKindState EventKind = "state"
	EventKindAsk   EventKind = "ask"
)

// Simulation is a game world or app context owning players and NPCs.
type Simulation struct {
	SimID        string `json:"sim_id,omitempty"`
	Name         string `json:"name,omitempty"`
	Lore         string `json:"lore,omitempty"`
	CreationTime int64  `json:"creation_time,omitempty"`
}

// NPC is a character with a description and interests, scoped to one
// simulation.
type NPC struct {
	NPCID           string `json:"npc_id,omitempty"`
	SimID           string `json:"sim_id,omitempty"`
	OwnerID         string `json:"owner_id,omitempty"`
	CurrInterestRaw string `json:"curr_interest_raw,omitempty"`
	CurrInterestEmb string `json:"curr_interest_emb,omitempty"`
	Description     string `json:"description,omitempty"`
	CreationTime    int64  `json:"creation_time,omitempty"`
	UpdateTime      int64  `json:"update_time,omitempty"`
}

// Player is a session entity scoped to one simulation.
type Player struct {
	PlayerID      string `json:"player_id,omitempty"`
	OwnerID       string `json:"owner_id,omitempty"`
	SimID         string `json:"sim_id,omitempty"`
	CreatedOn     int64  `json:"created_on,omitempty"`
	ConnectedFrom string `json:"connected_from,omitempty"`
	ExpiresOn     int64  `json:"expires_on,omitempty"`
}

// --- HTTP request bodies ---

type CreateNPCRequest struct {
	SimID       string   `json:"sim_id"`
	NPCName     string   `json:"npc_name"`
	Description string   `json:"description"`
	Interests   []string `json:"interests"`
}

type UpdateNPCRequest struct {
	Description string   `json:"description"`
	Interests   []string `json:"interests"`
}

type CreatePlayerRequest struct {
	SimID     string `json:"sim_id"`
	ExpireMin int    `json:"expire_min,omitempty"`
}

// StreamEventRequest is the body of POST /stream/event. State events carry
// Event; ask events carry NPCID and AskText.
type StreamEventRequest struct {
	PlayerID  string    `json:"player_id"`
	SimID     string    `json:"sim_id"`
	EventKind EventKind `json:"event_kind"`
	Event     string    `json:"event,omitempty"`
	EventID   string    `json:"event_id,omitempty"`
	NPCID     string    `json:"npc_id,omitempty"`
	AskText   string    `json:"ask_text,omitempty"`
	AskID     string    `json:"ask_id,omitempty"`
}

// StateEventResponse is returned for state events.
type StateEventResponse struct {
	EventID string `json:"event_id,omitempty"`
}

// AskEventResponse is returned for ask events.
type AskEventResponse struct {
	AskID    string `json:"ask_id,omitempty"`
	Response string `json:"response,omitempty"`
}

// --- WebSocket payload types ---

// StreamMessage is sent once per tick on the event stream.
type StreamMessage struct {
	EventKind EventKind `json:"event_kind"`
	Event     string    `json:"event"`
}

// CloseCommand asks the server to end the stream before the socket closes.
type CloseCommand struct {
	Cmd string `json:"cmd"`
}

// NewCloseCommand returns the {"cmd":"close"} message.
func NewCloseCommand() CloseCommand {
	return CloseCommand{Cmd: "close"}
}
