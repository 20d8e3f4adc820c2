package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Hex64 is a 64-bit value written in YAML as hex ("0x..") or decimal.
type Hex64 uint64

func (h *Hex64) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number", n.Line)
	}
	v, err := ParseHash(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*h = Hex64(v)
	return nil
}

func (h Hex64) MarshalYAML() (any, error) {
	return fmt.Sprintf("0x%016X", uint64(h)), nil
}

// SpawnerFile is a search description: one seed and either an explicit wave list or
// one of the shorthand spawner kinds.
//
//	seed: 0xA5D779D8831721FD
//	mmo:
//	  base:  {table: 0x7FA3A1DE69BD271E, count: 10}
//	  bonus: {table: 0x44182B854CD3745D, count: 6}
type SpawnerFile struct {
	Seed     Hex64       `yaml:"seed"`
	MaxDepth int         `yaml:"maxDepth,omitempty"`
	MMO      *MMOSpec    `yaml:"mmo,omitempty"`
	Outbreak *LoopSpec   `yaml:"outbreak,omitempty"`
	Waves    []WaveSpec  `yaml:"waves,omitempty"`
	Criteria *Criteria   `yaml:"criteria,omitempty"`
	Path     AdvanceList `yaml:"path,omitempty"` // used by replay
}

// MMOSpec describes a base wave with an optional bonus wave.
type MMOSpec struct {
	Base  WaveSpec  `yaml:"base"`
	Bonus *WaveSpec `yaml:"bonus,omitempty"`
}

// LoopSpec describes a single looping wave.
type LoopSpec struct {
	Table    Hex64        `yaml:"table"`
	Capacity CapacitySpec `yaml:"capacity"`
	Type     string       `yaml:"type,omitempty"`
}

// WaveSpec is one entry of the explicit wave list. Next is a wave index, "self", or
// empty for a terminal wave.
type WaveSpec struct {
	Table    Hex64        `yaml:"table"`
	Count    int          `yaml:"count"`
	Capacity CapacitySpec `yaml:"capacity"`
	Type     string       `yaml:"type,omitempty"`
	Retain   bool         `yaml:"retain,omitempty"`
	Next     string       `yaml:"next,omitempty"`
}

// CapacitySpec accepts either a plain number or {max, min, seed}.
type CapacitySpec Capacity

func (c *CapacitySpec) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		v, err := strconv.Atoi(n.Value)
		if err != nil {
			return fmt.Errorf("line %d: capacity: %w", n.Line, err)
		}
		*c = CapacitySpec{Max: v}
		return nil
	}
	var raw struct {
		Max  int   `yaml:"max"`
		Min  int   `yaml:"min"`
		Seed Hex64 `yaml:"seed"`
	}
	if err := n.Decode(&raw); err != nil {
		return err
	}
	*c = CapacitySpec{Max: raw.Max, Min: raw.Min, Seed: uint64(raw.Seed)}
	return nil
}

// AdvanceList is a path written either as a YAML sequence or a "|" separated string.
type AdvanceList []Advance

func (a *AdvanceList) UnmarshalYAML(n *yaml.Node) error {
	var text string
	switch n.Kind {
	case yaml.ScalarNode:
		text = n.Value
	case yaml.SequenceNode:
		var items []string
		if err := n.Decode(&items); err != nil {
			return err
		}
		for i, s := range items {
			if i > 0 {
				text += "|"
			}
			text += s
		}
	default:
		return fmt.Errorf("line %d: expected a path", n.Line)
	}
	advs, err := ParseAdvances(text)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*a = advs
	return nil
}

var errNoSpawner = errors.New("spawner file needs one of mmo, outbreak or waves")

// LoadSpawnerFile reads and decodes a spawner description.
func LoadSpawnerFile(path string) (*SpawnerFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spawner: %w", err)
	}
	return ParseSpawnerFile(raw)
}

// ParseSpawnerFile decodes a spawner description from YAML.
func ParseSpawnerFile(raw []byte) (*SpawnerFile, error) {
	var f SpawnerFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse spawner: %w", err)
	}
	return &f, nil
}

// Spawner builds the wave chain the file describes.
func (f *SpawnerFile) Spawner() (Spawner, error) {
	var s Spawner
	set := 0
	if f.MMO != nil {
		set++
		s = f.MMO.spawner()
	}
	if f.Outbreak != nil {
		set++
		typ, err := ParseSpawnType(f.Outbreak.Type)
		if err != nil {
			return s, err
		}
		if f.Outbreak.Type == "" {
			typ = SpawnOutbreak
		}
		s = NewLoop(uint64(f.Outbreak.Table), Capacity(f.Outbreak.Capacity), typ)
	}
	if len(f.Waves) != 0 {
		set++
		waves := make([]Wave, len(f.Waves))
		for i, ws := range f.Waves {
			w, err := ws.wave()
			if err != nil {
				return s, fmt.Errorf("wave %d: %w", i, err)
			}
			waves[i] = w
		}
		s = Spawner{Waves: waves}
	}
	switch {
	case set == 0:
		return s, errNoSpawner
	case set > 1:
		return s, fmt.Errorf("spawner file sets %d spawner kinds: %w", set, errNoSpawner)
	}
	return s, s.Validate()
}

func (m *MMOSpec) spawner() Spawner {
	var bonusTable uint64
	var bonusCount int
	if m.Bonus != nil {
		bonusTable, bonusCount = uint64(m.Bonus.Table), m.Bonus.Count
	}
	return NewMMO(uint64(m.Base.Table), m.Base.Count, bonusTable, bonusCount)
}

func (ws WaveSpec) wave() (Wave, error) {
	typ, err := ParseSpawnType(ws.Type)
	if err != nil {
		return Wave{}, err
	}
	w := Wave{
		Table:    uint64(ws.Table),
		Count:    ws.Count,
		Capacity: Capacity(ws.Capacity),
		Type:     typ,
		Retain:   ws.Retain,
	}
	if w.Capacity.Max == 0 {
		w.Capacity.Max = 4
	}
	switch ws.Next {
	case "":
		w.Next = Link{Kind: LinkTerminal}
	case "self":
		w.Next = Link{Kind: LinkSelf}
	default:
		idx, err := strconv.Atoi(ws.Next)
		if err != nil {
			return Wave{}, fmt.Errorf("next %q: %w", ws.Next, ErrBadLink)
		}
		w.Next = Link{Kind: LinkNext, Index: idx}
	}
	return w, nil
}
