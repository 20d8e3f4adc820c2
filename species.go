package main

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/species.yaml
var embeddedSpecies []byte

// Gender ratio bytes with a fixed outcome.
const (
	RatioMale       uint8 = 0
	RatioFemale     uint8 = 254
	RatioGenderless uint8 = 255

	defaultGenderRatio uint8 = 127
)

// SpeciesProvider answers the species facts generation needs.
type SpeciesProvider interface {
	Behavior(species uint16) Behavior
	GenderRatio(species uint16, form uint8) uint8
	Name(species uint16) string
}

// SpeciesInfo is one dex entry. Forms overrides the gender ratio of individual forms.
type SpeciesInfo struct {
	ID       uint16          `yaml:"id"`
	Name     string          `yaml:"name"`
	Gender   uint8           `yaml:"gender"`
	Behavior string          `yaml:"behavior,omitempty"`
	Forms    map[uint8]uint8 `yaml:"forms,omitempty"`
}

// Dex is a species registry keyed by national number and by name.
type Dex struct {
	byID   map[uint16]SpeciesInfo
	byName map[string]uint16
}

// UnknownSpeciesError is returned when a name cannot be resolved to a species.
type UnknownSpeciesError struct {
	Name string
}

func (e *UnknownSpeciesError) Error() string {
	return fmt.Sprintf("unknown species %q", e.Name)
}

// LoadDex parses a species registry in the YAML layout of data/species.yaml.
func LoadDex(data []byte) (*Dex, error) {
	var doc struct {
		Species []SpeciesInfo `yaml:"species"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse species: %w", err)
	}
	d := &Dex{
		byID:   make(map[uint16]SpeciesInfo, len(doc.Species)),
		byName: make(map[string]uint16, len(doc.Species)),
	}
	for _, s := range doc.Species {
		if _, dup := d.byID[s.ID]; dup {
			return nil, fmt.Errorf("species %d listed twice", s.ID)
		}
		switch s.Behavior {
		case "", "aggressive", "skittish", "oblivious":
		default:
			return nil, fmt.Errorf("species %s: unknown behavior %q", s.Name, s.Behavior)
		}
		d.byID[s.ID] = s
		d.byName[normalizeName(s.Name)] = s.ID
	}
	return d, nil
}

// DefaultDex returns the embedded registry.
func DefaultDex() *Dex {
	d, err := LoadDex(embeddedSpecies)
	if err != nil {
		panic(err)
	}
	return d
}

// Behavior classifies a species; unknown species are aggressive.
func (d *Dex) Behavior(species uint16) Behavior {
	switch d.byID[species].Behavior {
	case "oblivious":
		return BehaviorOblivious
	case "skittish":
		return BehaviorSkittish
	}
	return BehaviorAggressive
}

// GenderRatio returns the ratio byte of a form, falling back to the species ratio.
// Unknown species are an even split.
func (d *Dex) GenderRatio(species uint16, form uint8) uint8 {
	s, ok := d.byID[species]
	if !ok {
		return defaultGenderRatio
	}
	if r, ok := s.Forms[form]; ok {
		return r
	}
	return s.Gender
}

// Name returns the display name, or "#<id>" when the species is not registered.
func (d *Dex) Name(species uint16) string {
	if s, ok := d.byID[species]; ok {
		return s.Name
	}
	return fmt.Sprintf("#%d", species)
}

// Lookup resolves a display name to a species number.
func (d *Dex) Lookup(name string) (uint16, bool) {
	id, ok := d.byName[normalizeName(name)]
	return id, ok
}

// ParseSlotName splits the community "Species-Form" label into species and form.
func (d *Dex) ParseSlotName(label string) (uint16, uint8, error) {
	name, form := label, uint8(0)
	if dash := strings.LastIndexByte(label, '-'); dash > 0 {
		if f, err := strconv.Atoi(label[dash+1:]); err == nil && f >= 0 && f < 256 {
			name, form = label[:dash], uint8(f)
		}
	}
	id, ok := d.Lookup(name)
	if !ok {
		return 0, 0, &UnknownSpeciesError{Name: label}
	}
	return id, form, nil
}

// normalizeName folds the spelling variants the community data uses ("MimeJr.",
// "Mr.Mime") onto one key.
func normalizeName(s string) string {
	s = strings.ToLower(s)
	return strings.NewReplacer(" ", "", ".", "", "'", "").Replace(s)
}
