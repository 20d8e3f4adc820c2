package main

import (
	"errors"
	"fmt"
)

// ErrInvariant marks a transition that would leave a PopulationState structurally impossible.
var ErrInvariant = errors.New("population invariant violated")

// InvariantError describes a rejected PopulationState transition.
type InvariantError struct {
	Op     string
	State  PopulationState
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s (state %+v)", e.Op, e.Detail, e.State)
}

func (e *InvariantError) Unwrap() error { return ErrInvariant }

// PopulationState is the state of a spawner between player actions. Every transition
// returns a new value; the receiver is never modified.
//
// Ghost slots are a subset of Dead. Alive alphas are a subset of AliveAggressive.
type PopulationState struct {
	Count    int // remaining spawn budget
	MaxAlive int
	Dead     int
	Ghost    int

	AliveAlpha      int
	AliveAggressive int
	AliveBeta       int
	AliveOblivious  int
}

// NewPopulationState returns an empty spawner with the given budget and capacity.
func NewPopulationState(count, maxAlive int) PopulationState {
	return PopulationState{Count: count, MaxAlive: maxAlive, Dead: maxAlive}
}

// Alive is the count of entities currently present.
func (s PopulationState) Alive() int {
	return s.AliveAggressive + s.AliveBeta + s.AliveOblivious
}

// MaxGhosts is the most ghost slots a spawner can hold. Filling every slot with ghosts
// would start the next wave instead.
func (s PopulationState) MaxGhosts() int { return s.MaxAlive - 1 }

// CanAddGhosts reports whether another ghost slot fits.
func (s PopulationState) CanAddGhosts() bool { return s.Ghost < s.MaxGhosts() }

// EmptyGhostSlots is how many more ghosts can be added.
func (s PopulationState) EmptyGhostSlots() int { return s.MaxGhosts() - s.Ghost }

// Validate checks every structural invariant.
func (s PopulationState) Validate() error {
	switch {
	case s.Count < 0:
		return s.fail("validate", "negative budget")
	case s.Dead < 0:
		return s.fail("validate", "negative dead count")
	case s.Ghost < 0 || s.Ghost > s.Dead:
		return s.fail("validate", "ghost count outside [0, dead]")
	case s.AliveAlpha < 0 || s.AliveAggressive < 0 || s.AliveBeta < 0 || s.AliveOblivious < 0:
		return s.fail("validate", "negative alive count")
	case s.AliveAlpha > s.AliveAggressive:
		return s.fail("validate", "more alphas than aggressive")
	case s.Dead+s.Alive() != s.MaxAlive:
		return s.fail("validate", "dead + alive != max alive")
	}
	return nil
}

func (s PopulationState) fail(op, detail string) error {
	return &InvariantError{Op: op, State: s, Detail: detail}
}

func (s PopulationState) checked(op string, next PopulationState) (PopulationState, error) {
	if err := next.Validate(); err != nil {
		return s, fmt.Errorf("%s: %w", op, err)
	}
	return next, nil
}

// RespawnInfo returns the empty slot count, how many of them respawn, and how many
// positions at the start of the round are ghosts. Only valid while Count != 0.
func (s PopulationState) RespawnInfo() (empty, respawn, ghosts int) {
	empty = s.Dead
	respawn = min(s.Count, empty)
	ghosts = empty - respawn
	return empty, respawn, ghosts
}

// Add records a regeneration round of count positions that produced the given alive
// tallies. Positions that produced nothing stay empty and become ghosts.
func (s PopulationState) Add(count, alpha, aggro, beta, oblivious int) (PopulationState, error) {
	spawned := aggro + beta + oblivious
	switch {
	case s.Count == 0:
		return s, s.fail("add", "no budget left")
	case count < 1 || count > s.Count:
		return s, s.fail("add", fmt.Sprintf("count %d outside [1, %d]", count, s.Count))
	case alpha < 0 || aggro < 0 || beta < 0 || oblivious < 0 || alpha > aggro:
		return s, s.fail("add", "bad category tally")
	case spawned > count:
		return s, s.fail("add", fmt.Sprintf("tally %d exceeds count %d", spawned, count))
	}
	next := s
	next.Count -= count
	next.Dead -= spawned
	next.Ghost = next.Dead
	next.AliveAlpha += alpha
	next.AliveAggressive += aggro
	next.AliveBeta += beta
	next.AliveOblivious += oblivious
	return s.checked("add", next)
}

// RemoveAggressive knocks out n aggressive entities, alphas first so that the spawner
// may roll another alpha.
func (s PopulationState) RemoveAggressive(n int) (PopulationState, error) {
	if n < 0 || n > s.AliveAggressive {
		return s, s.fail("remove aggressive", fmt.Sprintf("%d requested, %d alive", n, s.AliveAggressive))
	}
	next := s
	next.AliveAlpha -= min(n, s.AliveAlpha)
	next.AliveAggressive -= n
	next.Dead += n
	return s.checked("remove aggressive", next)
}

// RemoveBeta knocks out n skittish entities.
func (s PopulationState) RemoveBeta(n int) (PopulationState, error) {
	if n < 0 || n > s.AliveBeta {
		return s, s.fail("remove beta", fmt.Sprintf("%d requested, %d alive", n, s.AliveBeta))
	}
	next := s
	next.AliveBeta -= n
	next.Dead += n
	return s.checked("remove beta", next)
}

// RemoveOblivious knocks out n oblivious entities.
func (s PopulationState) RemoveOblivious(n int) (PopulationState, error) {
	if n < 0 || n > s.AliveOblivious {
		return s, s.fail("remove oblivious", fmt.Sprintf("%d requested, %d alive", n, s.AliveOblivious))
	}
	next := s
	next.AliveOblivious -= n
	next.Dead += n
	return s.checked("remove oblivious", next)
}

// RemoveAny knocks out n entities regardless of category: aggressive first, then
// skittish, then oblivious.
func (s PopulationState) RemoveAny(n int) (PopulationState, error) {
	if n < 0 || n > s.Alive() {
		return s, s.fail("remove any", fmt.Sprintf("%d requested, %d alive", n, s.Alive()))
	}
	aggro := min(n, s.AliveAggressive)
	beta := min(n-aggro, s.AliveBeta)
	obl := n - aggro - beta

	next, err := s.RemoveAggressive(aggro)
	if err != nil {
		return s, err
	}
	if next, err = next.RemoveBeta(beta); err != nil {
		return s, err
	}
	return next.RemoveOblivious(obl)
}

// ScareBeta makes n skittish entities flee without a battle.
func (s PopulationState) ScareBeta(n int) (PopulationState, error) {
	if n < 1 || n > s.AliveBeta {
		return s, s.fail("scare", fmt.Sprintf("%d requested, %d skittish alive", n, s.AliveBeta))
	}
	next := s
	next.AliveBeta -= n
	next.Dead += n
	return s.checked("scare", next)
}

// AddGhosts leaves the spawner so that n more slots are permanently vacated. The
// remaining entities despawn with it, so every alive counter resets.
func (s PopulationState) AddGhosts(n int) (PopulationState, error) {
	if n < 1 || n > s.EmptyGhostSlots() {
		return s, s.fail("add ghosts", fmt.Sprintf("%d requested, %d ghost slots free", n, s.EmptyGhostSlots()))
	}
	next := s
	next.Ghost += n
	next.Dead = s.MaxAlive
	next.AliveAlpha = 0
	next.AliveAggressive = 0
	next.AliveBeta = 0
	next.AliveOblivious = 0
	return s.checked("add ghosts", next)
}

// AdjustCapacity carries the alive population into a pass with a new capacity and
// spawn budget.
func (s PopulationState) AdjustCapacity(maxAlive, count int) (PopulationState, error) {
	if maxAlive < s.Alive() || maxAlive < 1 {
		return s, s.fail("adjust capacity", fmt.Sprintf("capacity %d below %d alive", maxAlive, s.Alive()))
	}
	if count < 0 {
		return s, s.fail("adjust capacity", fmt.Sprintf("negative budget %d", count))
	}
	next := s
	next.MaxAlive = maxAlive
	next.Dead = maxAlive - s.Alive()
	next.Count = count
	next.Ghost = 0
	return s.checked("adjust capacity", next)
}
