package main

import "slices"

// Criteria is a declarative acceptance filter. The zero value accepts every entity.
type Criteria struct {
	Shiny    *bool    `yaml:"shiny,omitempty" json:"shiny,omitempty"`
	Alpha    *bool    `yaml:"alpha,omitempty" json:"alpha,omitempty"`
	MaxRolls int      `yaml:"maxRolls,omitempty" json:"maxRolls,omitempty"` // shiny within this many PID rolls
	Gender   *int     `yaml:"gender,omitempty" json:"gender,omitempty"`     // 0 male, 1 female, 2 genderless
	Species  []uint16 `yaml:"species,omitempty" json:"species,omitempty"`
	MinLevel int      `yaml:"minLevel,omitempty" json:"minLevel,omitempty"`

	// SkipMultiScare drops matches reached through an action that scares several
	// skittish entities at once.
	SkipMultiScare bool `yaml:"skipMultiScare,omitempty" json:"skipMultiScare,omitempty"`
}

// ShinyOnly is the criteria the command line uses by default.
func ShinyOnly() Criteria {
	shiny := true
	return Criteria{Shiny: &shiny}
}

// Predicate compiles c into a search predicate. c is copied, so later edits do not
// affect the returned function.
func (c Criteria) Predicate() Predicate {
	c.Species = slices.Clone(c.Species)
	return func(e *EntityResult, advances []Advance) bool {
		return c.Matches(e, advances)
	}
}

// Matches reports whether e, reached through advances, passes every set field.
func (c Criteria) Matches(e *EntityResult, advances []Advance) bool {
	if c.Shiny != nil && e.IsShiny != *c.Shiny {
		return false
	}
	if c.Alpha != nil && e.IsAlpha != *c.Alpha {
		return false
	}
	if c.MaxRolls > 0 && (!e.IsShiny || e.RollCountUsed > c.MaxRolls) {
		return false
	}
	if c.Gender != nil && int(e.Gender) != *c.Gender {
		return false
	}
	if len(c.Species) != 0 && !slices.Contains(c.Species, e.Species) {
		return false
	}
	if e.Level < c.MinLevel {
		return false
	}
	if c.SkipMultiScare && hasAny(advances, Advance.IsMultiScare) {
		return false
	}
	return true
}
