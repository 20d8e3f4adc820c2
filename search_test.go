package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const (
	tableCombee = 0x1337BABECAFEDEAD
	tableBidoof = 0x1337BABE12345678
	tableUnown  = 0x83B2DCF761D48736
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func shinyOnly(e *EntityResult, _ []Advance) bool { return e.IsShiny }

func newTestPermuter(t *testing.T, spawner Spawner, predicate Predicate, opts ...Option) *Permuter {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	p, err := NewPermuter(spawner, predicate, opts...)
	if err != nil {
		t.Fatalf("NewPermuter: %v", err)
	}
	return p
}

// searchCase is a spawner with known search output on the embedded tables.
type searchCase struct {
	name     string
	spawner  Spawner
	seed     uint64
	maxDepth int
	nodes    int // walked nodes
	all      int // results when every entity is accepted
	shiny    []wantResult
	shinyLen int
}

type wantResult struct {
	path  string
	spawn int
	wave  int
	name  string
	pid   uint32
	rolls int
}

func searchCases() []searchCase {
	return []searchCase{
		{
			name:     "skittish mmo with bonus",
			spawner:  NewMMO(tableBidoof, 6, tableUnown, 5),
			seed:     0xA5D779D8831721FD,
			maxDepth: DefaultMaxDepth,
			nodes:    176,
			all:      247,
			shinyLen: 1,
			shiny: []wantResult{
				{"S4|G1|CR", 3, 1, "Unown-27", 0xCB4C381E, 15},
			},
		},
		{
			name:     "aggressive into oblivious",
			spawner:  NewMMO(25, 8, 129, 5),
			seed:     12345,
			maxDepth: DefaultMaxDepth,
			nodes:    338,
			all:      599,
			shinyLen: 1,
			shiny: []wantResult{
				{"A3|A1|G3|CR|O1", 1, 1, "Magikarp", 0xC26EE417, 12},
			},
		},
		{
			name:     "aggressive into oblivious second seed",
			spawner:  NewMMO(25, 8, 129, 5),
			seed:     0x1689355633755303,
			maxDepth: DefaultMaxDepth,
			nodes:    340,
			all:      601,
			shinyLen: 3,
			shiny: []wantResult{
				{"A1|A1|A1", 1, 0, "Pikachu", 0xE1A2668A, 12},
				{"A1|A1|A2", 1, 0, "Pikachu", 0xE1A2668A, 12},
				{"A3|A1|G2|G1|CR", 1, 1, "Magikarp", 0x24683C2A, 6},
			},
		},
		{
			name:     "variable capacity loop",
			spawner:  NewLoop(tableBidoof, Capacity{Max: 4, Min: 2, Seed: 0xABCDEF}, SpawnOutbreak),
			seed:     0x9C1107A569F7681D,
			maxDepth: 6,
			nodes:    2236,
			all:      2234,
			shinyLen: 30,
			shiny: []wantResult{
				{"A1|RG|A2|RG|A4|A2", 2, 0, "Bidoof", 0x5C716937, 13},
				{"A1|RG|A3|A1|A4|A2", 2, 0, "Bidoof", 0xCE7BA836, 15},
				{"A1|A1|A1|RG|A4|A2", 2, 0, "Bidoof", 0x5C716937, 13},
			},
		},
	}
}

func TestPermuteKnownSpawners(t *testing.T) {
	for _, tc := range searchCases() {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			p := newTestPermuter(t, tc.spawner, shinyOnly, WithMaxDepth(tc.maxDepth))
			res, err := p.Permute(tc.seed)
			if err != nil {
				t.Fatalf("Permute: %v", err)
			}

			// 1. walk size
			if p.nodes != tc.nodes {
				t.Errorf("walked %d nodes, want %d", p.nodes, tc.nodes)
			}

			// 2. balanced path stack
			if res.Depth() != 0 {
				t.Errorf("path stack depth %d after walk", res.Depth())
			}

			// 3. shiny results in discovery order
			if res.Len() != tc.shinyLen {
				t.Errorf("got %d shiny results, want %d", res.Len(), tc.shinyLen)
			}
			for i, want := range tc.shiny {
				if i >= res.Len() {
					break
				}
				r := res.List()[i]
				got := wantResult{
					path:  JoinAdvances(r.Advances, "|"),
					spawn: r.SpawnIndex,
					wave:  r.Wave,
					name:  r.Entity.Name,
					pid:   r.Entity.PID,
					rolls: r.Entity.RollCountUsed,
				}
				if got != want {
					t.Errorf("result %d: got %+v, want %+v", i, got, want)
				}
			}

			// 4. accepting everything
			all := newTestPermuter(t, tc.spawner, nil, WithMaxDepth(tc.maxDepth))
			everything, err := all.Permute(tc.seed)
			if err != nil {
				t.Fatalf("Permute all: %v", err)
			}
			if everything.Len() != tc.all {
				t.Errorf("got %d results accepting all, want %d", everything.Len(), tc.all)
			}
			checkEntityLaws(t, everything)
		})
	}
}

// checkEntityLaws verifies the per-entity invariants of every result.
func checkEntityLaws(t *testing.T, res *Results) {
	t.Helper()
	for i, r := range res.List() {
		e := r.Entity
		if e.IsAggressive() != (e.IsAlpha || !(e.IsSkittish() || e.IsOblivious())) {
			t.Errorf("result %d: category law broken", i)
		}
		if e.IsShiny != (ShinyXor(e.PID, e.FakeTID) < 16) {
			t.Errorf("result %d: shiny flag disagrees with xor", i)
		}
		if e.IsShiny && e.RollCountUsed > e.RollCountAllowed {
			t.Errorf("result %d: used %d of %d rolls", i, e.RollCountUsed, e.RollCountAllowed)
		}
		if r.SpawnIndex != e.Index || r.SpawnIndex < 1 {
			t.Errorf("result %d: spawn index %d, entity index %d", i, r.SpawnIndex, e.Index)
		}
		if r.Wave != r.WaveOrdinal() && len(res.Spawner.Waves) > 1 {
			t.Errorf("result %d: wave %d after %d chains", i, r.Wave, r.WaveOrdinal())
		}
	}
}

func TestPermuteRootResults(t *testing.T) {
	p := newTestPermuter(t, NewMMO(tableBidoof, 6, tableUnown, 5), func(_ *EntityResult, path []Advance) bool {
		return len(path) == 0
	})
	res, err := p.Permute(0xA5D779D8831721FD)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Bidoof", "Bidoof", "Eevee", "Bidoof"}
	if res.Len() != len(want) {
		t.Fatalf("got %d root results, want %d", res.Len(), len(want))
	}
	for i, r := range res.List() {
		if r.Entity.Name != want[i] || r.SpawnIndex != i+1 || len(r.Advances) != 0 {
			t.Errorf("root %d: %s at spawn %d path %v", i, r.Entity.Name, r.SpawnIndex, r.Advances)
		}
		if !r.Entity.IsSkittish() {
			t.Errorf("root %d: %s should be skittish", i, r.Entity.Name)
		}
	}
}

func TestPermuteDeterministic(t *testing.T) {
	for _, tc := range searchCases() {
		t.Run(tc.name, func(t *testing.T) {
			a, err := Search(tc.spawner, tc.seed, nil, WithMaxDepth(tc.maxDepth), WithLogger(quietLogger()))
			if err != nil {
				t.Fatal(err)
			}
			p := newTestPermuter(t, tc.spawner, nil, WithMaxDepth(tc.maxDepth))
			if _, err := p.Permute(tc.seed ^ 1); err != nil {
				t.Fatal(err)
			}
			// a reused Permuter starts from scratch
			b, err := p.Permute(tc.seed)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(a.List(), b.List()); diff != "" {
				t.Errorf("second search differs (-first +second):\n%s", diff)
			}
		})
	}
}

// visitStates walks the search tree the way Permute does and calls visit on every node.
func visitStates(t *testing.T, p *Permuter, n node, depth int, visit func(node)) {
	t.Helper()
	visit(n)
	for _, adv := range p.options(n, depth) {
		p.results.push(adv)
		child, err := p.apply(n, adv)
		if err != nil {
			t.Fatalf("apply %s at %+v: %v", adv, n.state, err)
		}
		visitStates(t, p, child, depth+1, visit)
		p.results.pop()
	}
}

func TestPermuteReachableStatesValid(t *testing.T) {
	for _, tc := range searchCases() {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestPermuter(t, tc.spawner, shinyOnly, WithMaxDepth(tc.maxDepth))
			p.results = newResults(tc.spawner, tc.seed)
			root, err := p.start(tc.seed)
			if err != nil {
				t.Fatal(err)
			}
			visited := 0
			visitStates(t, p, root, 0, func(n node) {
				visited++
				if err := n.state.Validate(); err != nil {
					t.Fatalf("node %d: %v", visited, err)
				}
				// settled: either full or out of budget
				if n.state.Count != 0 && n.state.Dead != 0 {
					t.Fatalf("node %d not settled: %+v", visited, n.state)
				}
			})
			if visited != tc.nodes {
				t.Errorf("visited %d nodes, want %d", visited, tc.nodes)
			}
		})
	}
}

func TestPermuteMaxDepth(t *testing.T) {
	loop := NewLoop(tableBidoof, Capacity{Max: 4, Min: 2, Seed: 0xABCDEF}, SpawnOutbreak)
	res, err := Search(loop, 0x9C1107A569F7681D, nil, WithMaxDepth(0), WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	if res.Len() != 4 {
		t.Errorf("depth 0 loop: %d results, want the 4 initial spawns", res.Len())
	}

	// depth only gates chains in a finite spawner; removals still run
	mmo := NewMMO(25, 8, 129, 5)
	res, err = Search(mmo, 12345, nil, WithMaxDepth(0), WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range res.List() {
		if r.WaveOrdinal() != 0 {
			t.Fatalf("depth 0 reached wave %d via %v", r.WaveOrdinal(), r.Advances)
		}
	}
	if res.Len() <= 4 {
		t.Errorf("depth 0 mmo: %d results, want removals explored", res.Len())
	}
}

func TestNewPermuterErrors(t *testing.T) {
	var unknown *UnknownTableError
	_, err := NewPermuter(NewMMO(0xDEADBEEFDEADBEEF, 10, 0, 0), nil)
	if !errors.As(err, &unknown) || unknown.Hash != 0xDEADBEEFDEADBEEF {
		t.Errorf("got %v, want UnknownTableError for the base table", err)
	}

	_, err = NewPermuter(Spawner{}, nil)
	if !errors.Is(err, ErrNoWaves) {
		t.Errorf("got %v, want ErrNoWaves", err)
	}

	bad := NewMMO(tableBidoof, 10, tableUnown, 6)
	bad.Waves[0].Next.Index = 5
	_, err = NewPermuter(bad, nil)
	if !errors.Is(err, ErrBadLink) {
		t.Errorf("got %v, want ErrBadLink", err)
	}
}

func TestPermuteNothingEligible(t *testing.T) {
	const (
		allAlpha   = 0xA1FA
		zeroWeight = 0x2E60
	)
	dex := DefaultDex()
	ts := NewTableSet(dex)
	ts.Add(Table{Hash: allAlpha, Slots: []Slot{{Rate: 1, Name: "Combee", Species: 415, IsAlpha: true, LevelMin: 17, LevelMax: 20, FlawlessIVs: 3}}})
	ts.Add(Table{Hash: zeroWeight, Slots: []Slot{{Rate: 0, Name: "Bidoof", Species: 399, LevelMin: 3, LevelMax: 6}}})
	env := Env{Tables: ts, Species: dex, Rerolls: (*Progress)(nil)}

	tests := []struct {
		name    string
		spawner Spawner
	}{
		{"alpha table into empty bonus", NewMMO(allAlpha, 8, zeroWeight, 4)},
		{"empty base into alpha bonus", NewMMO(zeroWeight, 8, allAlpha, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Search(tt.spawner, 12345, nil, WithEnv(env), WithLogger(quietLogger()))
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			for _, r := range res.List() {
				if !r.Entity.IsAlpha {
					t.Errorf("%s: non-alpha %s from a table with no eligible slot", JoinAdvances(r.Advances, "|"), r.Entity.Name)
				}
			}

			p := newTestPermuter(t, tt.spawner, nil, WithEnv(env))
			p.results = newResults(tt.spawner, 12345)
			root, err := p.start(12345)
			if err != nil {
				t.Fatal(err)
			}
			visitStates(t, p, root, 0, func(n node) {
				if err := n.state.Validate(); err != nil {
					t.Fatal(err)
				}
			})
		})
	}

	// once an alpha is alive the base table has nothing left to roll
	p := newTestPermuter(t, NewMMO(allAlpha, 8, zeroWeight, 4), nil, WithEnv(env))
	res, err := p.Permute(12345)
	if err != nil {
		t.Fatal(err)
	}
	if p.nodes != 31 || res.Len() != 8 {
		t.Errorf("got %d nodes and %d results, want 31 and 8", p.nodes, res.Len())
	}
}

func TestSpawnerValidate(t *testing.T) {
	wave := func(c Capacity) Spawner { return NewLoop(tableBidoof, c, SpawnOutbreak) }
	tests := []struct {
		name    string
		spawner Spawner
		want    error
	}{
		{"fixed loop", wave(Capacity{Max: 2}), nil},
		{"ranged loop", wave(Capacity{Max: 4, Min: 2}), nil},
		{"negative minimum", wave(Capacity{Max: 4, Min: -1}), ErrInvariant},
		{"minimum above maximum", wave(Capacity{Max: 2, Min: 3}), ErrInvariant},
		{"zero capacity", wave(Capacity{}), ErrInvariant},
		{"finite wave without count", NewMMO(tableBidoof, 0, 0, 0), ErrInvariant},
		{"no waves", Spawner{}, ErrNoWaves},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spawner.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	// every accepted range draws a usable capacity
	c := Capacity{Max: 3, Min: 1, Seed: 7}
	seed := c.Seed
	for range 64 {
		var n int
		n, seed = c.Draw(seed)
		if n < c.Min || n > c.Max {
			t.Fatalf("drew %d outside %d..%d", n, c.Min, c.Max)
		}
	}
}

func TestOptions(t *testing.T) {
	mmo := newTestPermuter(t, NewMMO(tableBidoof, 10, tableUnown, 6), nil, WithMaxDepth(3))
	terminal := newTestPermuter(t, NewMMO(tableBidoof, 10, 0, 0), nil)
	loop := newTestPermuter(t, NewLoop(tableBidoof, Capacity{Max: 4, Min: 2}, SpawnOutbreak), nil)
	fixed := newTestPermuter(t, NewLoop(tableBidoof, Capacity{Max: 2}, SpawnRegular), nil)

	tests := []struct {
		name  string
		p     *Permuter
		state PopulationState
		depth int
		want  []Advance
	}{
		{
			name:  "mixed population",
			p:     mmo,
			state: PopulationState{Count: 3, MaxAlive: 4, AliveAggressive: 2, AliveBeta: 1, AliveOblivious: 1},
			want:  []Advance{A1, A2, O1, O2, O3, B1, B2, B3},
		},
		{
			name:  "skittish heavy",
			p:     mmo,
			state: PopulationState{Count: 3, MaxAlive: 4, AliveAggressive: 1, AliveBeta: 3},
			want:  []Advance{A1, B1, B2, S2, S3},
		},
		{
			name:  "four aggressive cap at four",
			p:     mmo,
			state: PopulationState{Count: 3, MaxAlive: 4, AliveAggressive: 4},
			want:  []Advance{A1, A2, A3, A4},
		},
		{
			name:  "exhausted with successor",
			p:     mmo,
			state: PopulationState{MaxAlive: 4, Dead: 1, Ghost: 1, AliveAggressive: 3},
			want:  []Advance{CR, G1, G2},
		},
		{
			name:  "exhausted at max depth",
			p:     mmo,
			state: PopulationState{MaxAlive: 4, AliveAggressive: 4},
			depth: 3,
			want:  []Advance{G1, G2, G3},
		},
		{
			name:  "ghosts full",
			p:     mmo,
			state: PopulationState{MaxAlive: 4, Dead: 4, Ghost: 3},
			want:  []Advance{CR},
		},
		{
			name:  "exhausted terminal",
			p:     terminal,
			state: PopulationState{MaxAlive: 4, AliveAggressive: 4},
			want:  nil,
		},
		{
			name:  "variable loop below max",
			p:     loop,
			state: PopulationState{MaxAlive: 2, AliveBeta: 2},
			want:  []Advance{RG, A1, A2},
		},
		{
			name:  "variable loop at max",
			p:     loop,
			state: PopulationState{MaxAlive: 4, AliveBeta: 4},
			want:  []Advance{A1, A2, A3, A4},
		},
		{
			name:  "fixed loop",
			p:     fixed,
			state: PopulationState{MaxAlive: 2, AliveAggressive: 1, AliveBeta: 1},
			want:  []Advance{A1, A2},
		},
		{
			name:  "loop at max depth",
			p:     fixed,
			state: PopulationState{MaxAlive: 2, AliveAggressive: 2},
			depth: DefaultMaxDepth,
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.state.Validate(); err != nil {
				t.Fatalf("fixture state invalid: %v", err)
			}
			got := tt.p.options(node{state: tt.state}, tt.depth)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("options mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyGhostSeed(t *testing.T) {
	p := newTestPermuter(t, NewMMO(tableBidoof, 10, tableUnown, 6), nil)
	p.results = newResults(p.spawner, 0)
	n := node{seed: 0xFEEDFACE, state: PopulationState{MaxAlive: 4, Dead: 1, Ghost: 1, AliveBeta: 3}}

	got, err := p.apply(n, G2)
	if err != nil {
		t.Fatal(err)
	}
	if want := GroupSeedAfter(0xFEEDFACE, 3); got.seed != want {
		t.Errorf("seed %016X, want %016X", got.seed, want)
	}
	if got.state.Ghost != 3 || got.state.Alive() != 0 {
		t.Errorf("state %+v", got.state)
	}
}

func TestApplyChain(t *testing.T) {
	retained := NewMMO(tableBidoof, 10, tableUnown, 6)
	retained.Waves[1].Retain = true
	retained.Waves[1].Capacity = Capacity{Max: 6}
	narrow := NewMMO(tableBidoof, 10, tableUnown, 6)
	narrow.Waves[1].Retain = true
	narrow.Waves[1].Capacity = Capacity{Max: 1}

	tests := []struct {
		name    string
		spawner Spawner
		want    PopulationState
	}{
		{"fresh bonus", NewMMO(tableBidoof, 10, tableUnown, 6), NewPopulationState(6, 4)},
		{"retained bonus", retained, PopulationState{Count: 6, MaxAlive: 6, Dead: 4, AliveBeta: 2}},
		{"retained bonus below alive", narrow, PopulationState{Count: 6, MaxAlive: 2, AliveBeta: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPermuter(t, tt.spawner, nil)
			n := node{seed: 42, state: PopulationState{MaxAlive: 4, Dead: 2, Ghost: 2, AliveBeta: 2}}
			got, err := p.chain(n)
			if err != nil {
				t.Fatal(err)
			}
			if got.wave != 1 || got.seed != 42 {
				t.Errorf("chain moved to wave %d seed %d", got.wave, got.seed)
			}
			if diff := cmp.Diff(tt.want, got.state); diff != "" {
				t.Errorf("state mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNextPass(t *testing.T) {
	p := newTestPermuter(t, NewLoop(tableBidoof, Capacity{Max: 4, Min: 2}, SpawnOutbreak), nil)
	alive := PopulationState{MaxAlive: 4, Dead: 1, AliveBeta: 3}

	tests := []struct {
		name      string
		countSeed uint64
		want      PopulationState
		nextSeed  uint64
	}{
		{"draw above alive", 3, PopulationState{Count: 1, MaxAlive: 4, Dead: 1, AliveBeta: 3}, 9765175051465496828},
		{"draw below alive", 1, PopulationState{MaxAlive: 3, AliveBeta: 3}, 9765175326309980414},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.nextPass(node{seed: 42, countSeed: tt.countSeed, state: alive})
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got.state); diff != "" {
				t.Errorf("state mismatch (-want +got):\n%s", diff)
			}
			if got.countSeed != tt.nextSeed || got.seed != 42 {
				t.Errorf("count seed %d, seed %d", got.countSeed, got.seed)
			}
			if tt.want.Count != 0 {
				return
			}
			// nothing to respawn, so settling keeps the pass as is
			settled, err := p.settle(got)
			if err != nil {
				t.Fatal(err)
			}
			if settled.state != got.state || settled.seed != got.seed {
				t.Errorf("settle changed an empty pass: %+v", settled.state)
			}
		})
	}
}

func TestCapacityDraw(t *testing.T) {
	fixed := Capacity{Max: 4}
	if n, seed := fixed.Draw(99); n != 4 || seed != 99 {
		t.Errorf("fixed draw = %d, %d", n, seed)
	}

	c := Capacity{Max: 4, Min: 2, Seed: 0xABCDEF}
	n, next := c.Draw(c.Seed)
	if n != 4 || next != 8839491977718847064 {
		t.Errorf("draw = %d, %d", n, next)
	}
	seen := map[int]bool{}
	seed := c.Seed
	for i := 0; i < 100; i++ {
		n, seed = c.Draw(seed)
		if n < 2 || n > 4 {
			t.Fatalf("capacity %d outside 2..4", n)
		}
		seen[n] = true
	}
	if len(seen) != 3 {
		t.Errorf("saw capacities %v, want all of 2..4", seen)
	}
}

func ExampleSearch() {
	res, err := Search(NewMMO(tableBidoof, 6, tableUnown, 5), 0xA5D779D8831721FD,
		func(e *EntityResult, _ []Advance) bool { return e.IsShiny })
	if err != nil {
		panic(err)
	}
	for _, r := range res.List() {
		fmt.Println(JoinAdvances(r.Advances, "|"), r.SpawnIndex, r.Entity.Name)
	}
	// Output: S4|G1|CR 3 Unown-27
}
