package main

// RerollPolicy decides how many PID rolls a generated entity gets.
type RerollPolicy interface {
	Rolls(species uint16, typ SpawnType) int
}

// Progress holds the save-file facts that grant extra shiny rolls. A nil *Progress
// means "assume everything is unlocked".
type Progress struct {
	HasCharm bool
	Complete map[uint16]bool // research level 10 reached
	Perfect  map[uint16]bool // every research task done
}

// Rolls returns the PID roll budget, always at least 1.
func (p *Progress) Rolls(species uint16, typ SpawnType) int {
	if p == nil {
		return int(typ)
	}
	n := 1 + int(typ-SpawnRegular)
	if p.Complete[species] {
		n++
	}
	if p.Perfect[species] {
		n += 2
	}
	if p.HasCharm {
		n += 3
	}
	return n
}
