// Package presets loads the bundled game-event corpus, NPC profiles and
// simulation lore. Files placed in a data directory override the embedded
// copies; JSON files are accepted as well since they parse as YAML.
package presets

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embedded embed.FS

const (
	gameEventsName  = "game_events"
	npcProfilesName = "npc_interests"
	loresName       = "simulation_lores"
)

// NPCProfile is a named NPC template.
type NPCProfile struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Interests   []string `yaml:"interests" json:"interests"`
}

// LoreProfile is a named lore text for a simulation.
type LoreProfile struct {
	Name string `yaml:"name" json:"name"`
	Lore string `yaml:"lore" json:"lore"`
}

// Store reads presets from dir, falling back to the embedded data.
type Store struct {
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

// GameEvents returns the stream corpus. An empty corpus is an error.
func (s *Store) GameEvents() ([]string, error) {
	var events []string
	if err := s.load(gameEventsName, &events); err != nil {
		return nil, err
	}
	out := events[:0]
	for _, e := range events {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return nil, eris.New("game event corpus is empty")
	}
	return out, nil
}

func (s *Store) NPCProfiles() ([]NPCProfile, error) {
	var profiles []NPCProfile
	if err := s.load(npcProfilesName, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (s *Store) Lores() ([]LoreProfile, error) {
	var lores []LoreProfile
	if err := s.load(loresName, &lores); err != nil {
		return nil, err
	}
	return lores, nil
}

// FindNPCProfile looks a profile up by exact name.
func FindNPCProfile(profiles []NPCProfile, name string) (NPCProfile, bool) {
	for _, p := range profiles {
		if p.Name == name {
			return p, true
		}
	}
	return NPCProfile{}, false
}

// FindLore looks a lore profile up by exact name.
func FindLore(lores []LoreProfile, name string) (LoreProfile, bool) {
	for _, l := range lores {
		if l.Name == name {
			return l, true
		}
	}
	return LoreProfile{}, false
}

func (s *Store) load(name string, out interface{}) error {
	data, src, err := s.read(name)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return eris.Wrapf(err, "parse %s", src)
	}
	return nil
}

func (s *Store) read(name string) ([]byte, string, error) {
	if s.dir != "" {
		for _, ext := range []string{".yaml", ".yml", ".json"} {
			path := filepath.Join(s.dir, name+ext)
			data, err := os.ReadFile(path)
			if err == nil {
				return data, path, nil
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, "", eris.Wrapf(err, "read %s", path)
			}
		}
	}
	path := "data/" + name + ".yaml"
	data, err := embedded.ReadFile(path)
	if err != nil {
		return nil, "", eris.Wrapf(err, "read embedded %s", path)
	}
	return data, path, nil
}
