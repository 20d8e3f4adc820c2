package main

import (
	"fmt"
	"log/slog"
	"time"
)

// DefaultMaxDepth bounds how many wave chains, regenerations and looping knockouts a
// path may hold.
const DefaultMaxDepth = 15

// Predicate decides whether a generated entity is recorded. advances is the live path
// stack and must not be retained. Predicates used with SearchParallel must be safe for
// concurrent use.
type Predicate func(entity *EntityResult, advances []Advance) bool

func acceptAll(*EntityResult, []Advance) bool { return true }

// Option configures a Permuter.
type Option func(*Permuter)

// WithMaxDepth overrides DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(p *Permuter) { p.maxDepth = depth }
}

// WithEnv replaces the table, species and reroll collaborators.
func WithEnv(env Env) Option {
	return func(p *Permuter) { p.env = env }
}

// WithLogger sets the progress logger. nil keeps slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Permuter) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// ── Permuter ────────────────────────────────────────────────────────

// Permuter walks every sequence of player actions on a spawner and records the
// entities the predicate accepts.
type Permuter struct {
	spawner   Spawner
	tables    []Table // resolved per wave index
	env       Env
	predicate Predicate
	maxDepth  int
	logger    *slog.Logger

	results *Results
	nodes   int
}

// NewPermuter validates the spawner and resolves every wave table up front so that an
// unknown table fails before any walking happens.
func NewPermuter(spawner Spawner, predicate Predicate, opts ...Option) (*Permuter, error) {
	p := &Permuter{
		spawner:   spawner,
		predicate: predicate,
		maxDepth:  DefaultMaxDepth,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.env.Tables == nil {
		p.env = DefaultEnv()
	}
	if p.env.Rerolls == nil {
		p.env.Rerolls = (*Progress)(nil)
	}
	if p.predicate == nil {
		p.predicate = acceptAll
	}
	if err := spawner.Validate(); err != nil {
		return nil, fmt.Errorf("spawner: %w", err)
	}
	p.tables = make([]Table, len(spawner.Waves))
	for i, w := range spawner.Waves {
		t, err := p.env.Tables.Lookup(w.Table)
		if err != nil {
			return nil, fmt.Errorf("wave %d: %w", i, err)
		}
		p.tables[i] = t
	}
	return p, nil
}

// Search permutes spawner from seed and returns the recorded results.
func Search(spawner Spawner, seed uint64, predicate Predicate, opts ...Option) (*Results, error) {
	p, err := NewPermuter(spawner, predicate, opts...)
	if err != nil {
		return nil, err
	}
	return p.Permute(seed)
}

// Permute runs the depth-first walk from seed. The Permuter may be reused; each call
// starts a fresh result set.
func (p *Permuter) Permute(seed uint64) (*Results, error) {
	start := time.Now()
	p.results = newResults(p.spawner, seed)
	p.nodes = 0
	p.logger.Debug("[permute] start", "seed", fmt.Sprintf("%016X", seed), "waves", len(p.spawner.Waves), "maxDepth", p.maxDepth)

	root, err := p.start(seed)
	if err != nil {
		return nil, err
	}
	if err := p.walk(root); err != nil {
		return nil, err
	}

	p.logger.Debug("[permute] done", "nodes", p.nodes, "results", p.results.Len(), "elapsed", time.Since(start))
	return p.results, nil
}

// clone returns a Permuter sharing the read-only inputs with its own result set.
func (p *Permuter) clone() *Permuter {
	return &Permuter{
		spawner:   p.spawner,
		tables:    p.tables,
		env:       p.env,
		predicate: p.predicate,
		maxDepth:  p.maxDepth,
		logger:    p.logger,
		results:   newResults(p.spawner, p.results.Seed),
	}
}

// ── Nodes ───────────────────────────────────────────────────────────

// node is the complete simulation state between two actions.
type node struct {
	wave      int
	seed      uint64 // group seed of the next regeneration round
	countSeed uint64 // capacity stream for variable-capacity waves
	state     PopulationState
}

// start builds the entry wave and fills it.
func (p *Permuter) start(seed uint64) (node, error) {
	w := p.spawner.Waves[0]
	capacity, countSeed := w.Capacity.Draw(w.Capacity.Seed)
	count := w.Count
	if w.IsLoop() {
		count = capacity
	}
	n := node{seed: seed, countSeed: countSeed, state: NewPopulationState(count, capacity)}
	return p.settle(n)
}

// settle regenerates until the spawner is full or its budget is spent.
func (p *Permuter) settle(n node) (node, error) {
	for n.state.Count != 0 && n.state.Dead != 0 {
		var err error
		if n, err = p.regenerate(n); err != nil {
			return n, err
		}
	}
	return n, nil
}

// regenerate runs one round: every empty position consumes a slot/alpha seed pair,
// the leading ghost positions are skipped, and a final draw reseeds the next round.
func (p *Permuter) regenerate(n node) (node, error) {
	w := &p.spawner.Waves[n.wave]
	table := p.tables[n.wave]
	empty, respawn, ghosts := n.state.RespawnInfo()
	noAlpha := n.state.AliveAlpha != 0

	var alpha, aggro, beta, oblivious int
	rng := NewXoroshiro(n.seed)
	for i := 1; i <= empty; i++ {
		slotSeed := rng.Next()
		alphaSeed := rng.Next()
		if i <= ghosts {
			continue
		}

		e := p.env.Generate(n.seed, i, slotSeed, alphaSeed, table, w.Type, noAlpha)
		if e == nil {
			continue
		}
		if p.predicate(e, p.results.path) {
			p.results.add(e, i, n.wave)
		}
		switch {
		case e.IsAggressive():
			aggro++
			if e.IsAlpha {
				alpha++
			}
		case e.IsOblivious():
			oblivious++
		default:
			beta++
		}
	}

	state, err := n.state.Add(respawn, alpha, aggro, beta, oblivious)
	if err != nil {
		return n, fmt.Errorf("wave %d: %w", n.wave, err)
	}
	n.state = state
	n.seed = rng.Next()
	return n, nil
}

// ── Branching ───────────────────────────────────────────────────────

// options lists the legal actions at n in exploration order.
func (p *Permuter) options(n node, depth int) []Advance {
	w := &p.spawner.Waves[n.wave]
	s := n.state
	deeper := depth < p.maxDepth

	if w.IsLoop() {
		if !deeper {
			return nil
		}
		var out []Advance
		if !w.Capacity.IsFixed() && s.Alive() < w.Capacity.Max {
			out = append(out, RG)
		}
		for i := 1; i <= min(s.Alive(), MaxActionCount); i++ {
			out = append(out, aggressiveAdvance(i))
		}
		return out
	}

	if s.Count != 0 {
		var out []Advance
		for i := 1; i <= min(s.AliveAggressive, MaxActionCount); i++ {
			out = append(out, aggressiveAdvance(i))
		}
		if s.AliveOblivious != 0 {
			for i := 0; i <= min(s.AliveAggressive, MaxActionCount-1); i++ {
				out = append(out, obliviousAdvance(i+1))
			}
		}
		if s.AliveBeta != 0 {
			for i := 0; i <= min(s.AliveAggressive, MaxActionCount-1); i++ {
				out = append(out, betaAdvance(i+1))
			}
		}
		for i := 2; i <= min(s.AliveBeta, MaxActionCount); i++ {
			out = append(out, scareAdvance(i))
		}
		return out
	}

	// Wave exhausted. Ghosts only matter if a later wave observes the walked positions.
	if !w.HasNext() {
		return nil
	}
	var out []Advance
	if deeper {
		out = append(out, CR)
	}
	if s.CanAddGhosts() {
		for i := 1; i <= min(s.EmptyGhostSlots(), int(G3-G1)+1); i++ {
			out = append(out, ghostAdvance(i))
		}
	}
	return out
}

// apply performs adv at n and regenerates the spawner.
func (p *Permuter) apply(n node, adv Advance) (node, error) {
	w := &p.spawner.Waves[n.wave]
	next := n
	var err error
	switch {
	case adv == CR:
		next, err = p.chain(n)
	case adv == RG:
		next, err = p.nextPass(n)
	case adv.IsGhost():
		next.state, err = n.state.AddGhosts(adv.Count())
		if err == nil {
			next.seed = GroupSeedAfter(n.seed, next.state.Ghost)
		}
	case w.IsLoop() && adv.IsAggressive():
		next.state, err = n.state.RemoveAny(adv.Count())
		if err == nil {
			next, err = p.nextPass(next)
		}
	case adv.IsScare():
		next.state, err = n.state.ScareBeta(adv.Count())
	default:
		next.state, err = removeMixed(n.state, adv)
	}
	if err != nil {
		return n, fmt.Errorf("%s: %w", adv, err)
	}
	return p.settle(next)
}

// removeMixed applies a knockout token: the skittish or oblivious entity first, then
// the aggressive ones battled alongside it.
func removeMixed(s PopulationState, adv Advance) (PopulationState, error) {
	aggro, beta, oblivious := adv.Removed()
	var err error
	if beta != 0 {
		if s, err = s.RemoveBeta(beta); err != nil {
			return s, err
		}
	}
	if oblivious != 0 {
		if s, err = s.RemoveOblivious(oblivious); err != nil {
			return s, err
		}
	}
	return s.RemoveAggressive(aggro)
}

// chain moves into the successor wave, keeping the population if that wave retains it.
func (p *Permuter) chain(n node) (node, error) {
	w := &p.spawner.Waves[n.wave]
	if !w.HasNext() {
		return n, fmt.Errorf("wave %d has no successor: %w", n.wave, ErrBadLink)
	}
	idx := w.Next.Index
	nw := &p.spawner.Waves[idx]
	capacity, countSeed := nw.Capacity.Draw(nw.Capacity.Seed)

	next := node{wave: idx, seed: n.seed, countSeed: countSeed}
	if !nw.Retain {
		next.state = NewPopulationState(nw.Count, capacity)
		return next, nil
	}
	// Retained entities never despawn; a smaller capacity only stops respawns.
	state, err := n.state.AdjustCapacity(max(capacity, n.state.Alive()), nw.Count)
	if err != nil {
		return n, err
	}
	next.state = state
	return next, nil
}

// nextPass starts another pass of a looping wave with a freshly drawn capacity.
func (p *Permuter) nextPass(n node) (node, error) {
	w := &p.spawner.Waves[n.wave]
	capacity, countSeed := w.Capacity.Draw(n.countSeed)
	// A draw below the alive count gives a pass with nothing to respawn.
	capacity = max(capacity, n.state.Alive())
	state, err := n.state.AdjustCapacity(capacity, capacity-n.state.Alive())
	if err != nil {
		return n, err
	}
	n.state = state
	n.countSeed = countSeed
	return n, nil
}

// walk explores every action below n depth-first.
func (p *Permuter) walk(n node) error {
	p.nodes++
	for _, adv := range p.options(n, p.results.Depth()) {
		p.results.push(adv)
		child, err := p.apply(n, adv)
		if err == nil {
			err = p.walk(child)
		}
		p.results.pop()
		if err != nil {
			return err
		}
	}
	return nil
}
