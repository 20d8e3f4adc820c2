package main

import (
	"fmt"
	"slices"
)

// IllegalAdvanceError is returned by Replay when an action is not available at the
// point of the path where it appears.
type IllegalAdvanceError struct {
	Step    int
	Advance Advance
	Options []Advance
}

func (e *IllegalAdvanceError) Error() string {
	return fmt.Sprintf("advance %d (%s) not legal here; options [%s]", e.Step+1, e.Advance, JoinAdvances(e.Options, " "))
}

// Replay runs one recorded path through the same transitions the search uses and
// returns every entity the predicate accepts along the way. A nil predicate accepts
// everything.
func Replay(spawner Spawner, seed uint64, advances []Advance, predicate Predicate, opts ...Option) (*Results, error) {
	p, err := NewPermuter(spawner, predicate, opts...)
	if err != nil {
		return nil, err
	}
	return p.Replay(seed, advances)
}

// Replay follows advances from seed. On an illegal step the results gathered so far are
// returned with the error.
func (p *Permuter) Replay(seed uint64, advances []Advance) (*Results, error) {
	p.results = newResults(p.spawner, seed)
	n, err := p.start(seed)
	if err != nil {
		return nil, err
	}
	defer func() { p.results.path = p.results.path[:0] }()

	for i, adv := range advances {
		opts := p.options(n, p.results.Depth())
		if !slices.Contains(opts, adv) {
			return p.results, &IllegalAdvanceError{Step: i, Advance: adv, Options: opts}
		}
		p.results.push(adv)
		if n, err = p.apply(n, adv); err != nil {
			return p.results, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	p.logger.Debug("[replay] done", "steps", len(advances), "results", p.results.Len())
	return p.results, nil
}

// ── Seed helpers ────────────────────────────────────────────────────

// GroupSeedAfter walks past count slot/alpha pairs from groupSeed and returns the
// group seed of the following round.
func GroupSeedAfter(groupSeed uint64, count int) uint64 {
	rng := NewXoroshiro(groupSeed)
	rng.Skip(2 * count)
	return rng.Next()
}

// GroupSeedAfterAdvances chains GroupSeedAfter over a path of knockouts, starting with
// an initial fill of initial entities. It matches the search only while every round
// respawns exactly the entities the action removed.
func GroupSeedAfterAdvances(groupSeed uint64, initial int, advances []Advance) uint64 {
	seed := GroupSeedAfter(groupSeed, initial)
	for _, a := range advances {
		seed = GroupSeedAfter(seed, a.Count())
	}
	return seed
}

// GenerateSeeds returns the slot and alpha seeds of the 1-based position index in the
// round started by groupSeed.
func GenerateSeeds(groupSeed uint64, index int) (slotSeed, alphaSeed uint64) {
	rng := NewXoroshiro(groupSeed)
	rng.Skip(2 * (index - 1))
	return rng.Next(), rng.Next()
}

// EntitySeed returns the generation seed of the entity at index in the round started
// by groupSeed.
func EntitySeed(groupSeed uint64, index int) uint64 {
	slotSeed, _ := GenerateSeeds(groupSeed, index)
	rng := NewXoroshiro(slotSeed)
	rng.Next() // slot roll
	return rng.Next()
}
