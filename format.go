package main

import (
	"fmt"
	"io"
	"strings"
)

var natureNames = [25]string{
	"Hardy", "Lonely", "Brave", "Adamant", "Naughty",
	"Bold", "Docile", "Relaxed", "Impish", "Lax",
	"Timid", "Hasty", "Serious", "Jolly", "Naive",
	"Modest", "Mild", "Quiet", "Bashful", "Rash",
	"Calm", "Gentle", "Sassy", "Careful", "Quirky",
}

// NatureName returns the display name of a nature index.
func NatureName(n uint8) string {
	if int(n) < len(natureNames) {
		return natureNames[n]
	}
	return fmt.Sprintf("Nature%d", n)
}

func genderSymbol(g uint8) string {
	switch g {
	case 0:
		return "M"
	case 1:
		return "F"
	}
	return "-"
}

// Summary is the one-line entity description used in result lines.
func (e *EntityResult) Summary() string {
	var b strings.Builder
	if e.IsAlpha {
		b.WriteString("α-")
	}
	b.WriteString(e.Name)
	if e.IsShiny {
		fmt.Fprintf(&b, ": %d/%d (^%d)", e.RollCountUsed, e.RollCountAllowed, e.ShinyXor)
	} else {
		fmt.Fprintf(&b, ": 0/%d", e.RollCountAllowed)
	}
	fmt.Fprintf(&b, " Lv.%d %s %s", e.Level, genderSymbol(e.Gender), NatureName(e.Nature))
	if !e.IsAlpha {
		b.WriteString(" -- NOT ALPHA")
	}
	return b.String()
}

// Lines is the detailed multi-line description used by Dump.
func (e *EntityResult) Lines() []string {
	shiny := "-"
	if e.IsShiny {
		shiny = fmt.Sprintf("★ roll %d of %d (xor %d)", e.RollCountUsed, e.RollCountAllowed, e.ShinyXor)
	}
	alpha := ""
	if e.IsAlpha {
		alpha = "α-"
	}
	return []string{
		fmt.Sprintf("%s%s Lv.%d (%s)", alpha, e.Name, e.Level, e.Behavior),
		fmt.Sprintf("Group Seed: %016X  Spawn%d", e.GroupSeed, e.Index),
		fmt.Sprintf("Slot Seed: %016X  Gen Seed: %016X", e.SlotSeed, e.GenSeed),
		fmt.Sprintf("EC: %08X  TID: %08X  PID: %08X", e.EC, e.FakeTID, e.PID),
		fmt.Sprintf("Shiny: %s", shiny),
		fmt.Sprintf("IVs: %d/%d/%d/%d/%d/%d", e.IVs[0], e.IVs[1], e.IVs[2], e.IVs[3], e.IVs[4], e.IVs[5]),
		fmt.Sprintf("Ability: %d  Gender: %s  Nature: %s", e.Ability, genderSymbol(e.Gender), NatureName(e.Nature)),
		fmt.Sprintf("Height: %d  Weight: %d", e.Height, e.Weight),
	}
}

// ── Result lines ────────────────────────────────────────────────────

// Steps renders the path. When parent is set its shared prefix is drawn as arrows.
func Steps(r Result, parent *Result) string {
	if parent == nil {
		return JoinAdvances(r.Advances, "|")
	}
	n := len(parent.Advances)
	return strings.Repeat("-> ", n) + JoinAdvances(r.Advances[n:], "|")
}

// WaveIndicator labels results that appeared after a wave chain.
func WaveIndicator(r Result) string {
	switch n := r.WaveOrdinal(); n {
	case 0:
		return "      "
	case 1:
		return "Bonus "
	default:
		return fmt.Sprintf("Wave %d", n)
	}
}

// Feasibility warns about paths that are hard to perform because they rely on
// skittish entities behaving, or on single knockouts only.
func Feasibility(advances []Advance) string {
	multiScare := hasAny(advances, Advance.IsMultiScare)
	multiBeta := hasAny(advances, Advance.IsMultiBeta)
	switch {
	case multiScare && multiBeta:
		return " -- Skittish: Multi scaring with aggressive!"
	case multiScare:
		return " -- Skittish: Multi scaring!"
	case multiBeta:
		return " -- Skittish: Aggressive!"
	case hasAny(advances, func(a Advance) bool { return a == B1 || a == O1 }):
		if !hasAny(advances, Advance.IsMultiAggressive) {
			return " -- Skittish: Single advances!"
		}
		return " -- Skittish: Mostly aggressive!"
	case hasAny(advances, Advance.IsMultiAggressive):
		return ""
	}
	return " -- Single advances!"
}

// Line formats result i of rs.
func (rs *Results) Line(i int) string {
	r := rs.list[i]
	var parent *Result
	if p := rs.ParentOf(i); p >= 0 {
		parent = &rs.list[p]
	}
	hasChild := rs.HasChildChain(i)

	line := fmt.Sprintf("* %-37s >>> %sSpawn%d = %s%s",
		Steps(r, parent), WaveIndicator(r), r.SpawnIndex, r.Entity.Summary(), Feasibility(r.Advances))
	if parent != nil || hasChild {
		line += " ~~ Chain result!"
	}
	if rs.IsActionMultiResult(i) {
		line += " ~~ Spawns multiple results!"
	}
	return line
}

// Print writes a header and every result line to w.
func (rs *Results) Print(w io.Writer) {
	fmt.Fprintf(w, "Seed: %016X  Waves: %d\n", rs.Seed, len(rs.Spawner.Waves))
	if !rs.HasResults() {
		fmt.Fprintln(w, "No results found. Try another outbreak! :(")
		return
	}
	for i := range rs.list {
		fmt.Fprintln(w, rs.Line(i))
	}
	fmt.Fprintf(w, "%d result(s)\n", rs.Len())
}

// Dump writes every result grouped by path length with full entity details.
func (rs *Results) Dump(w io.Writer) {
	for _, group := range rs.GroupByDepth() {
		first := group[0]
		step := len(first.Advances)
		last := "-"
		if step != 0 {
			last = first.Advances[step-1].String()
		}
		fmt.Fprintln(w, "===================")
		fmt.Fprintf(w, "Step %d: %s\n", step, last)
		for _, r := range group {
			fmt.Fprintln(w, JoinAdvances(r.Advances, "|"))
			for _, line := range r.Entity.Lines() {
				fmt.Fprintln(w, line)
			}
			fmt.Fprintln(w)
		}
	}
}

// ── JSON view ───────────────────────────────────────────────────────

// ResultView is the serialisable form of a Result.
type ResultView struct {
	Path     string   `json:"path"`
	Wave     int      `json:"wave"`
	Spawn    int      `json:"spawn"`
	Name     string   `json:"name"`
	Species  uint16   `json:"species"`
	Form     uint8    `json:"form,omitempty"`
	Level    int      `json:"level"`
	Alpha    bool     `json:"alpha"`
	Shiny    bool     `json:"shiny"`
	Rolls    int      `json:"rolls"`
	PID      string   `json:"pid"`
	EC       string   `json:"ec"`
	IVs      [6]uint8 `json:"ivs"`
	Gender   string   `json:"gender"`
	Nature   string   `json:"nature"`
	Note     string   `json:"note,omitempty"`
	Chain    bool     `json:"chain,omitempty"`
	Multiple bool     `json:"multiple,omitempty"`
}

// Views projects every result into its serialisable form.
func (rs *Results) Views() []ResultView {
	out := make([]ResultView, len(rs.list))
	for i, r := range rs.list {
		e := r.Entity
		out[i] = ResultView{
			Path:     JoinAdvances(r.Advances, "|"),
			Wave:     r.WaveOrdinal(),
			Spawn:    r.SpawnIndex,
			Name:     e.Name,
			Species:  e.Species,
			Form:     e.Form,
			Level:    e.Level,
			Alpha:    e.IsAlpha,
			Shiny:    e.IsShiny,
			Rolls:    e.RollCountUsed,
			PID:      fmt.Sprintf("%08X", e.PID),
			EC:       fmt.Sprintf("%08X", e.EC),
			IVs:      e.IVs,
			Gender:   genderSymbol(e.Gender),
			Nature:   NatureName(e.Nature),
			Note:     strings.TrimPrefix(Feasibility(r.Advances), " -- "),
			Chain:    rs.ParentOf(i) >= 0 || rs.HasChildChain(i),
			Multiple: rs.IsActionMultiResult(i),
		}
	}
	return out
}
