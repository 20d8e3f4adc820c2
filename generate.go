package main

// Env bundles the outside collaborators the generator consults.
type Env struct {
	Tables  TableProvider
	Species SpeciesProvider
	Rerolls RerollPolicy
}

// DefaultEnv uses the embedded species and sample tables with full research progress.
func DefaultEnv() Env {
	dex := DefaultDex()
	return Env{Tables: DefaultTables(dex), Species: dex, Rerolls: (*Progress)(nil)}
}

const (
	shinyThreshold = 16
	flawlessIV     = 31
	unsetIV        = 0xFF
)

// ── Slot selection ──────────────────────────────────────────────────

// slotSum totals the weights of the slots that may be picked.
func slotSum(slots []Slot, noAlpha bool) float32 {
	var total float32
	for i := range slots {
		if noAlpha && slots[i].IsAlpha {
			continue
		}
		total += slots[i].Rate
	}
	return total
}

// pickSlot walks the slots in order, subtracting each weight from roll; the first slot
// that brings it to zero or below wins.
func pickSlot(slots []Slot, roll float32, noAlpha bool) *Slot {
	var last *Slot
	for i := range slots {
		s := &slots[i]
		if noAlpha && s.IsAlpha {
			continue
		}
		roll -= s.Rate
		if roll <= 0 {
			return s
		}
		last = s
	}
	// float rounding can leave a sliver of the roll past the final slot
	return last
}

func rollLevel(slot *Slot, rng *Xoroshiro) int {
	level := slot.LevelMin
	if delta := slot.LevelMax - slot.LevelMin; delta != 0 {
		level += int(rng.NextInt(uint64(delta) + 1))
	}
	return level
}

// ── Generation ──────────────────────────────────────────────────────

// Generate picks a slot from table with slotSeed and rolls the entity. It returns nil
// when no slot is eligible, which means nothing spawns at this position.
func (env Env) Generate(groupSeed uint64, index int, slotSeed, alphaSeed uint64, table Table, typ SpawnType, noAlpha bool) *EntityResult {
	sum := slotSum(table.Slots, noAlpha)
	if sum <= 0 {
		return nil
	}

	slotRng := NewXoroshiro(slotSeed)
	roll := slotRng.NextFloat(sum)
	slot := pickSlot(table.Slots, roll, noAlpha)
	if slot == nil {
		return nil
	}
	genSeed := slotRng.Next()
	level := rollLevel(slot, &slotRng)

	result := &EntityResult{
		Name:     slot.Name,
		Species:  slot.Species,
		Form:     slot.Form,
		Level:    level,
		IsAlpha:  slot.IsAlpha,
		Behavior: env.Species.Behavior(slot.Species),

		GroupSeed: groupSeed,
		Index:     index,
		SlotSeed:  slotSeed,
		SlotRoll:  roll,
		GenSeed:   genSeed,
		AlphaSeed: alphaSeed,
	}
	if result.Name == "" {
		result.Name = env.Species.Name(slot.Species)
	}

	rolls := max(env.Rerolls.Rolls(slot.Species, typ), 1)
	GenerateEntity(result, genSeed, rolls, slot.FlawlessIVs, env.Species.GenderRatio(slot.Species, slot.Form))
	return result
}

// GenerateEntity fills the rolled attributes of result from seed.
func GenerateEntity(result *EntityResult, seed uint64, rolls, flawless int, genderRatio uint8) {
	rng := NewXoroshiro(seed)

	result.EC = rng.NextUint32()
	result.FakeTID = rng.NextUint32()

	result.RollCountAllowed = rolls
	result.IsShiny = false
	var pid uint32
	for ctr := 1; ctr <= rolls; ctr++ {
		pid = rng.NextUint32()
		xor := ShinyXor(pid, result.FakeTID)
		if xor < shinyThreshold {
			result.IsShiny = true
			result.ShinyXor = xor
			result.RollCountUsed = ctr
			break
		}
	}
	result.PID = pid

	ivs := [6]uint8{unsetIV, unsetIV, unsetIV, unsetIV, unsetIV, unsetIV}
	for i := 0; i < flawless; i++ {
		var idx uint64
		for {
			idx = rng.NextInt(6)
			if ivs[idx] == unsetIV {
				break
			}
		}
		ivs[idx] = flawlessIV
	}
	for i := range ivs {
		if ivs[i] == unsetIV {
			ivs[i] = uint8(rng.NextInt(32))
		}
	}
	result.IVs = ivs

	result.Ability = uint8(rng.NextInt(2))
	switch genderRatio {
	case RatioGenderless:
		result.Gender = 2
	case RatioFemale:
		result.Gender = 1
	case RatioMale:
		result.Gender = 0
	default:
		if uint8(rng.NextInt(253)+1) < genderRatio {
			result.Gender = 1
		} else {
			result.Gender = 0
		}
	}
	result.Nature = uint8(rng.NextInt(25))

	if result.IsAlpha {
		result.Height, result.Weight = 0xFF, 0xFF
		return
	}
	result.Height = uint8(rng.NextInt(0x81) + rng.NextInt(0x80))
	result.Weight = uint8(rng.NextInt(0x81) + rng.NextInt(0x80))
}

// ShinyXor folds the PID against the trainer id; values below 16 are shiny.
func ShinyXor(pid, tid uint32) uint32 {
	x := pid ^ tid
	return (x ^ (x >> 16)) & 0xFFFF
}
