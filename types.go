package main

import (
	"errors"
	"fmt"
)

// SpawnType selects the shiny reroll policy of a wave. The value is the reroll count
// granted with full research progress and the charm.
type SpawnType int

const (
	SpawnRegular  SpawnType = 7 + 0
	SpawnMMO      SpawnType = 7 + 12
	SpawnOutbreak SpawnType = 7 + 25
)

func (t SpawnType) String() string {
	switch t {
	case SpawnRegular:
		return "regular"
	case SpawnMMO:
		return "mmo"
	case SpawnOutbreak:
		return "outbreak"
	}
	return fmt.Sprintf("SpawnType(%d)", int(t))
}

// ParseSpawnType maps a config name back to a SpawnType.
func ParseSpawnType(s string) (SpawnType, error) {
	switch s {
	case "regular", "":
		return SpawnRegular, nil
	case "mmo":
		return SpawnMMO, nil
	case "outbreak":
		return SpawnOutbreak, nil
	}
	return 0, fmt.Errorf("unknown spawn type %q", s)
}

// Behavior is the reaction class of a species when approached.
type Behavior int

const (
	BehaviorAggressive Behavior = iota
	BehaviorSkittish
	BehaviorOblivious
)

func (b Behavior) String() string {
	switch b {
	case BehaviorSkittish:
		return "skittish"
	case BehaviorOblivious:
		return "oblivious"
	}
	return "aggressive"
}

// ── Tables ──────────────────────────────────────────────────────────

// Slot is one weighted entry of an encounter table.
type Slot struct {
	Rate        float32
	Name        string
	Species     uint16
	Form        uint8
	IsAlpha     bool
	LevelMin    int
	LevelMax    int
	FlawlessIVs int
}

// Table is an ordered slot list keyed by its hash. Slot order is significant.
type Table struct {
	Hash  uint64
	Slots []Slot
}

// ── Waves ───────────────────────────────────────────────────────────

// LinkKind says what follows a wave once its budget is spent.
type LinkKind int

const (
	LinkTerminal LinkKind = iota
	LinkNext
	LinkSelf
)

// Link references the successor of a wave by index into Spawner.Waves.
type Link struct {
	Kind  LinkKind
	Index int
}

// Capacity is the alive-population policy of a wave. It is fixed when Min is zero or
// equal to Max; otherwise every pass draws its capacity from a stream seeded by Seed.
type Capacity struct {
	Max  int
	Min  int
	Seed uint64
}

// IsFixed reports whether every pass uses Max.
func (c Capacity) IsFixed() bool { return c.Min == 0 || c.Min == c.Max }

// Draw returns the capacity for a pass and the count seed of the following pass.
func (c Capacity) Draw(countSeed uint64) (int, uint64) {
	if c.IsFixed() {
		return c.Max, countSeed
	}
	rng := NewXoroshiro(countSeed)
	n := c.Min + int(rng.NextInt(uint64(c.Max-c.Min)+1))
	return n, rng.Next()
}

// Wave is one stage of a spawner.
type Wave struct {
	Table    uint64
	Count    int // total spawns for finite waves; ignored by looping waves
	Capacity Capacity
	Type     SpawnType
	Retain   bool // chaining into this wave keeps the alive population
	Next     Link
}

// IsLoop reports whether the wave repeats itself forever.
func (w Wave) IsLoop() bool { return w.Next.Kind == LinkSelf }

// HasNext reports whether a distinct wave follows this one.
func (w Wave) HasNext() bool { return w.Next.Kind == LinkNext }

var (
	ErrNoWaves = errors.New("spawner has no waves")
	ErrBadLink = errors.New("invalid wave link")
)

// Spawner is an arena of waves; index 0 is the entry wave.
type Spawner struct {
	Waves []Wave
}

// Validate checks the wave arena for structural problems.
func (s Spawner) Validate() error {
	if len(s.Waves) == 0 {
		return ErrNoWaves
	}
	for i, w := range s.Waves {
		if w.Capacity.Max <= 0 {
			return fmt.Errorf("wave %d: capacity %d: %w", i, w.Capacity.Max, ErrInvariant)
		}
		if w.Capacity.Min < 0 {
			return fmt.Errorf("wave %d: capacity minimum %d: %w", i, w.Capacity.Min, ErrInvariant)
		}
		if !w.Capacity.IsFixed() && w.Capacity.Min > w.Capacity.Max {
			return fmt.Errorf("wave %d: capacity range %d..%d: %w", i, w.Capacity.Min, w.Capacity.Max, ErrInvariant)
		}
		switch w.Next.Kind {
		case LinkTerminal, LinkSelf:
		case LinkNext:
			if w.Next.Index < 0 || w.Next.Index >= len(s.Waves) || w.Next.Index == i {
				return fmt.Errorf("wave %d -> %d: %w", i, w.Next.Index, ErrBadLink)
			}
		default:
			return fmt.Errorf("wave %d: kind %d: %w", i, w.Next.Kind, ErrBadLink)
		}
		if !w.IsLoop() && w.Count <= 0 {
			return fmt.Errorf("wave %d: count %d: %w", i, w.Count, ErrInvariant)
		}
	}
	return nil
}

// NewMMO builds the common two-wave massive outbreak: a base wave that chains into a
// bonus wave, both with four alive at a time.
func NewMMO(baseTable uint64, baseCount int, bonusTable uint64, bonusCount int) Spawner {
	base := Wave{Table: baseTable, Count: baseCount, Capacity: Capacity{Max: 4}, Type: SpawnMMO}
	if !HasTable(bonusTable) {
		return Spawner{Waves: []Wave{base}}
	}
	base.Next = Link{Kind: LinkNext, Index: 1}
	bonus := Wave{Table: bonusTable, Count: bonusCount, Capacity: Capacity{Max: 4}, Type: SpawnMMO}
	return Spawner{Waves: []Wave{base, bonus}}
}

// NewLoop builds a single self-looping wave (regular outbreak).
func NewLoop(table uint64, capacity Capacity, typ SpawnType) Spawner {
	return Spawner{Waves: []Wave{{
		Table:    table,
		Capacity: capacity,
		Type:     typ,
		Retain:   true,
		Next:     Link{Kind: LinkSelf},
	}}}
}

// HasTable reports whether a table hash refers to real data rather than the empty
// FNV offset basis the game stores for "none".
func HasTable(hash uint64) bool {
	return hash != 0 && hash != 0xCBF29CE484222645
}

// ── Entities ────────────────────────────────────────────────────────

// EntityResult is one generated entity with the seeds that produced it.
type EntityResult struct {
	Name    string
	Species uint16
	Form    uint8
	Level   int
	IsAlpha bool

	Behavior Behavior

	GroupSeed uint64
	Index     int
	SlotSeed  uint64
	SlotRoll  float32
	GenSeed   uint64
	AlphaSeed uint64

	EC      uint32
	FakeTID uint32
	PID     uint32

	IsShiny          bool
	ShinyXor         uint32
	RollCountUsed    int
	RollCountAllowed int

	IVs     [6]uint8
	Ability uint8
	Gender  uint8
	Nature  uint8
	Height  uint8
	Weight  uint8
}

// IsSkittish reports whether the species flees when approached.
func (e *EntityResult) IsSkittish() bool { return e.Behavior == BehaviorSkittish }

// IsOblivious reports whether the species ignores the player.
func (e *EntityResult) IsOblivious() bool { return e.Behavior == BehaviorOblivious }

// IsAggressive reports whether the entity attacks when approached.
func (e *EntityResult) IsAggressive() bool {
	return e.IsAlpha || !(e.IsSkittish() || e.IsOblivious())
}
