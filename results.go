package main

import (
	"maps"
	"slices"
)

// Result is one accepted entity together with the path that produced it.
type Result struct {
	Advances   []Advance
	Entity     *EntityResult
	SpawnIndex int // 1-based position inside its regeneration round
	Wave       int // index into Spawner.Waves
}

// WaveOrdinal counts how many wave chains the path crossed; 0 is the entry wave.
func (r Result) WaveOrdinal() int {
	n := 0
	for _, a := range r.Advances {
		if a == CR {
			n++
		}
	}
	return n
}

// IsBonus reports whether the entity appeared after at least one wave chain.
func (r Result) IsBonus() bool { return r.WaveOrdinal() != 0 }

// Results accumulates matches in discovery order while a walk maintains its path stack.
type Results struct {
	Spawner Spawner
	Seed    uint64

	list []Result
	path []Advance
}

func newResults(spawner Spawner, seed uint64) *Results {
	return &Results{Spawner: spawner, Seed: seed}
}

func (r *Results) push(adv Advance) { r.path = append(r.path, adv) }

func (r *Results) pop() {
	if len(r.path) == 0 {
		panic("results: pop on empty path")
	}
	r.path = r.path[:len(r.path)-1]
}

// Depth is the current length of the path stack. It is zero after a completed walk.
func (r *Results) Depth() int { return len(r.path) }

func (r *Results) add(e *EntityResult, index, wave int) {
	r.list = append(r.list, Result{
		Advances:   slices.Clone(r.path),
		Entity:     e,
		SpawnIndex: index,
		Wave:       wave,
	})
}

// List returns the recorded results. The slice is shared; use Copy for an owned one.
func (r *Results) List() []Result { return r.list }

// Len is the number of recorded results.
func (r *Results) Len() int { return len(r.list) }

// HasResults reports whether anything was recorded.
func (r *Results) HasResults() bool { return len(r.list) != 0 }

// Copy returns an independent snapshot of the recorded results.
func (r *Results) Copy() []Result {
	out := make([]Result, len(r.list))
	for i, res := range r.list {
		res.Advances = slices.Clone(res.Advances)
		e := *res.Entity
		res.Entity = &e
		out[i] = res
	}
	return out
}

// isPrefix reports whether parent is a strict prefix of child.
func isPrefix(parent, child []Advance) bool {
	return len(parent) < len(child) && slices.Equal(parent, child[:len(parent)])
}

// ParentOf returns the index of the nearest earlier result whose path is a strict
// prefix of result i's path, or -1.
func (r *Results) ParentOf(i int) int {
	child := r.list[i].Advances
	for j := i - 1; j >= 0; j-- {
		if isPrefix(r.list[j].Advances, child) {
			return j
		}
	}
	return -1
}

// HasChildChain reports whether the result right after i continues i's path.
func (r *Results) HasChildChain(i int) bool {
	if i+1 >= len(r.list) {
		return false
	}
	return isPrefix(r.list[i].Advances, r.list[i+1].Advances)
}

// IsActionMultiResult reports whether a neighbouring result was produced by exactly
// the same path, i.e. one action yields several matches.
func (r *Results) IsActionMultiResult(i int) bool {
	path := r.list[i].Advances
	if i > 0 && slices.Equal(r.list[i-1].Advances, path) {
		return true
	}
	return i+1 < len(r.list) && slices.Equal(r.list[i+1].Advances, path)
}

// GroupByDepth buckets results by path length, shortest paths first. Discovery order
// is kept inside each bucket.
func (r *Results) GroupByDepth() [][]Result {
	byDepth := map[int][]Result{}
	for _, res := range r.list {
		d := len(res.Advances)
		byDepth[d] = append(byDepth[d], res)
	}
	depths := slices.Sorted(maps.Keys(byDepth))
	groups := make([][]Result, 0, len(depths))
	for _, d := range depths {
		groups = append(groups, byDepth[d])
	}
	return groups
}

// Filter returns the results keep accepts, in discovery order.
func (r *Results) Filter(keep func(Result) bool) []Result {
	var out []Result
	for _, res := range r.list {
		if keep(res) {
			out = append(out, res)
		}
	}
	return out
}

// Shortest returns the accepted result with the fewest actions, earliest first on
// ties.
func (r *Results) Shortest(keep func(Result) bool) (Result, bool) {
	best, found := Result{}, false
	for _, res := range r.list {
		if keep != nil && !keep(res) {
			continue
		}
		if !found || len(res.Advances) < len(best.Advances) {
			best, found = res, true
		}
	}
	return best, found
}

// merge appends other's results in order.
func (r *Results) merge(other *Results) {
	r.list = append(r.list, other.list...)
}
