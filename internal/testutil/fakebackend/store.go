package fakebackend

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/n10s/simctl/internal/client"
)

// Store holds simulations, NPCs and players in memory. Getters return
// copies.
type Store struct {
	mu      sync.RWMutex
	sims    map[string]*client.Simulation
	npcs    map[string]*client.NPC
	players map[string]*client.Player
	nextID  int
	now     func() int64
}

func NewStore(now func() int64) *Store {
	return &Store{
		sims:    make(map[string]*client.Simulation),
		npcs:    make(map[string]*client.NPC),
		players: make(map[string]*client.Player),
		now:     now,
	}
}

func (s *Store) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *Store) CreateSimulation(name string) client.Simulation {
	s.mu.Lock()
	defer s.mu.Unlock()
	sim := &client.Simulation{SimID: s.id("sim"), Name: name, CreationTime: s.now()}
	s.sims[sim.SimID] = sim
	return *sim
}

func (s *Store) Simulation(id string) (client.Simulation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sim, ok := s.sims[id]
	if !ok {
		return client.Simulation{}, false
	}
	return *sim, true
}

func (s *Store) Simulations() []client.Simulation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]client.Simulation, 0, len(s.sims))
	for _, sim := range s.sims {
		out = append(out, *sim)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SimID < out[j].SimID })
	return out
}

func (s *Store) SetLore(id, lore string) (client.Simulation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sim, ok := s.sims[id]
	if !ok {
		return client.Simulation{}, false
	}
	sim.Lore = lore
	return *sim, true
}

func (s *Store) DeleteSimulation(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sims[id]; !ok {
		return false
	}
	delete(s.sims, id)
	return true
}

func (s *Store) CreateNPC(req client.CreateNPCRequest) (client.NPC, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sims[req.SimID]; !ok {
		return client.NPC{}, false
	}
	now := s.now()
	npc := &client.NPC{
		NPCID:           s.id("npc"),
		SimID:           req.SimID,
		OwnerID:         "owner-1",
		Description:     req.Description,
		CurrInterestRaw: strings.Join(req.Interests, "; "),
		CreationTime:    now,
		UpdateTime:      now,
	}
	s.npcs[npc.NPCID] = npc
	return *npc, true
}

func (s *Store) UpdateNPC(id string, req client.UpdateNPCRequest) (client.NPC, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	npc, ok := s.npcs[id]
	if !ok {
		return client.NPC{}, false
	}
	npc.Description = req.Description
	npc.CurrInterestRaw = strings.Join(req.Interests, "; ")
	npc.UpdateTime = s.now()
	return *npc, true
}

func (s *Store) NPC(id string) (client.NPC, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	npc, ok := s.npcs[id]
	if !ok {
		return client.NPC{}, false
	}
	return *npc, true
}

func (s *Store) NPCs(simID string) []client.NPC {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []client.NPC
	for _, npc := range s.npcs {
		if npc.SimID == simID {
			out = append(out, *npc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NPCID < out[j].NPCID })
	return out
}

func (s *Store) DeleteNPC(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.npcs[id]; !ok {
		return false
	}
	delete(s.npcs, id)
	return true
}

func (s *Store) CreatePlayer(simID string, expireMin int, from string) (client.Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sims[simID]; !ok {
		return client.Player{}, false
	}
	if expireMin <= 0 {
		expireMin = 60
	}
	now := s.now()
	p := &client.Player{
		PlayerID:      s.id("player"),
		OwnerID:       "owner-1",
		SimID:         simID,
		CreatedOn:     now,
		ConnectedFrom: from,
		ExpiresOn:     now + int64(expireMin)*60_000,
	}
	s.players[p.PlayerID] = p
	return *p, true
}

func (s *Store) Player(id, simID string) (client.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[id]
	if !ok || p.SimID != simID {
		return client.Player{}, false
	}
	return *p, true
}

func (s *Store) Players(simID string) []client.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []client.Player
	for _, p := range s.players {
		if p.SimID == simID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}

func (s *Store) DeletePlayer(id, simID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok || p.SimID != simID {
		return false
	}
	delete(s.players, id)
	return true
}
