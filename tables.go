package main

import (
	"cmp"
	_ "embed"
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

//go:embed data/tables.json
var embeddedTables string

// TableProvider resolves a table hash to its slots.
type TableProvider interface {
	Lookup(hash uint64) (Table, error)
}

// UnknownTableError is returned when a hash has no slot data.
type UnknownTableError struct {
	Hash uint64
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("unknown table 0x%016X", e.Hash)
}

// maxSpeciesTable is the boundary below which a "table" is a raw species number.
const maxSpeciesTable = 1000

// TableSet holds decoded encounter tables.
type TableSet struct {
	tables map[uint64]Table
	dex    *Dex
}

// NewTableSet returns an empty set that names synthetic tables through dex.
func NewTableSet(dex *Dex) *TableSet {
	return &TableSet{tables: make(map[uint64]Table), dex: dex}
}

// Add registers or replaces a table.
func (ts *TableSet) Add(t Table) { ts.tables[t.Hash] = t }

// Len is the count of registered tables.
func (ts *TableSet) Len() int { return len(ts.tables) }

// Tables returns the registered tables ordered by hash.
func (ts *TableSet) Tables() []Table {
	out := slices.Collect(maps.Values(ts.tables))
	slices.SortFunc(out, func(a, b Table) int { return cmp.Compare(a.Hash, b.Hash) })
	return out
}

// Lookup returns the registered table, or the synthetic single-species table when the
// hash is a raw species number.
func (ts *TableSet) Lookup(hash uint64) (Table, error) {
	if t, ok := ts.tables[hash]; ok {
		return t, nil
	}
	if hash != 0 && hash < maxSpeciesTable {
		return ts.speciesTable(uint16(hash)), nil
	}
	return Table{}, &UnknownTableError{Hash: hash}
}

// speciesBasculin only appears in outbreaks as its white-striped form.
const speciesBasculin = 550

// speciesTable is the stand-in used for outbreaks that only record a species: one
// common slot and one rare alpha slot.
func (ts *TableSet) speciesTable(species uint16) Table {
	name, form := ts.dex.Name(species), uint8(0)
	if species == speciesBasculin {
		name, form = name+"-2", 2
	}
	return Table{Hash: uint64(species), Slots: []Slot{
		{Rate: 100, Name: name, Species: species, Form: form, LevelMin: 0, LevelMax: 1},
		{Rate: 1, Name: name, Species: species, Form: form, IsAlpha: true, LevelMin: 0, LevelMax: 1, FlawlessIVs: 3},
	}}
}

// LoadTables reads a table file from disk and decodes it.
func LoadTables(path string, dex *Dex) (*TableSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseTables(string(raw), dex)
}

// DefaultTables decodes the embedded sample tables.
func DefaultTables(dex *Dex) *TableSet {
	ts, err := ParseTables(embeddedTables, dex)
	if err != nil {
		panic(err)
	}
	return ts
}

// ParseTables decodes the community table layout:
//
//	{"0x<hash>": [{"slot": 100, "name": "Combee", "alpha": false, "level": [17, 20], "ivs": 0}, ...]}
func ParseTables(dataJSON string, dex *Dex) (*TableSet, error) {
	if !gjson.Valid(dataJSON) {
		return nil, fmt.Errorf("parse tables: invalid JSON")
	}
	ts := NewTableSet(dex)
	var firstErr error
	gjson.Parse(dataJSON).ForEach(func(k, v gjson.Result) bool {
		hash, err := ParseHash(k.String())
		if err != nil {
			firstErr = fmt.Errorf("table key %q: %w", k.String(), err)
			return false
		}
		t := Table{Hash: hash}
		v.ForEach(func(_, s gjson.Result) bool {
			var slot Slot
			slot, err = parseSlot(s, dex)
			if err != nil {
				return false
			}
			t.Slots = append(t.Slots, slot)
			return true
		})
		if err != nil {
			firstErr = fmt.Errorf("table 0x%016X: %w", hash, err)
			return false
		}
		ts.Add(t)
		return true
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return ts, nil
}

func parseSlot(s gjson.Result, dex *Dex) (Slot, error) {
	name := s.Get("name").String()
	species, form, err := dex.ParseSlotName(name)
	if err != nil {
		return Slot{}, err
	}
	level := s.Get("level").Array()
	if len(level) != 2 {
		return Slot{}, fmt.Errorf("slot %s: level range has %d entries", name, len(level))
	}
	slot := Slot{
		Rate:        float32(s.Get("slot").Float()),
		Name:        name,
		Species:     species,
		Form:        form,
		IsAlpha:     s.Get("alpha").Bool(),
		LevelMin:    int(level[0].Int()),
		LevelMax:    int(level[1].Int()),
		FlawlessIVs: int(s.Get("ivs").Int()),
	}
	if slot.Rate < 0 || slot.LevelMax < slot.LevelMin || slot.FlawlessIVs < 0 || slot.FlawlessIVs > 6 {
		return Slot{}, fmt.Errorf("slot %s: out of range values", name)
	}
	return slot, nil
}

// ParseHash reads a 64-bit table hash or seed written as hex ("0x..") or decimal.
func ParseHash(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		return strconv.ParseUint(rest, 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}
