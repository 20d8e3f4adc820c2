package main

import (
	"fmt"
	"strings"
)

// Advance is one player action between two regenerations of a spawner.
type Advance byte

const (
	CR Advance = iota // clear the wave and continue into the next one
	RG                // regenerate without a knockout (looping spawners)

	A1
	A2
	A3
	A4

	B1
	B2
	B3
	B4

	O1
	O2
	O3
	O4

	S2
	S3
	S4

	G1
	G2
	G3
)

var advanceNames = [...]string{
	CR: "CR", RG: "RG",
	A1: "A1", A2: "A2", A3: "A3", A4: "A4",
	B1: "B1", B2: "B2", B3: "B3", B4: "B4",
	O1: "O1", O2: "O2", O3: "O3", O4: "O4",
	S2: "S2", S3: "S3", S4: "S4",
	G1: "G1", G2: "G2", G3: "G3",
}

// MaxActionCount is the largest removal a single token describes.
const MaxActionCount = 4

func (a Advance) String() string {
	if int(a) < len(advanceNames) {
		return advanceNames[a]
	}
	return fmt.Sprintf("Advance(%d)", byte(a))
}

// ParseAdvance maps a raw token name back to its Advance.
func ParseAdvance(s string) (Advance, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range advanceNames {
		if name == s {
			return Advance(i), nil
		}
	}
	return 0, fmt.Errorf("unknown advance %q", s)
}

// ParseAdvances parses a "|" or "," separated token list.
func ParseAdvances(s string) ([]Advance, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' || r == ' ' })
	out := make([]Advance, 0, len(fields))
	for _, f := range fields {
		adv, err := ParseAdvance(f)
		if err != nil {
			return nil, err
		}
		out = append(out, adv)
	}
	return out, nil
}

// Label is the humanised form shown when raw names are not wanted.
func (a Advance) Label() string {
	switch {
	case a == CR:
		return "Clear Remaining"
	case a == RG:
		return "Regenerate"
	case a.IsAggressive():
		return fmt.Sprintf("%d", a.Count())
	case a.IsBeta():
		return fmt.Sprintf("B%d", a.Count())
	case a.IsOblivious():
		return fmt.Sprintf("O%d", a.Count())
	case a.IsScare():
		return fmt.Sprintf("Scare %d", a.Count())
	case a.IsGhost():
		n := a.Count()
		return fmt.Sprintf("~%d[%d]", n, 4-n)
	}
	return a.String()
}

func (a Advance) IsAggressive() bool { return a >= A1 && a <= A4 }
func (a Advance) IsBeta() bool       { return a >= B1 && a <= B4 }
func (a Advance) IsOblivious() bool  { return a >= O1 && a <= O4 }
func (a Advance) IsScare() bool      { return a >= S2 && a <= S4 }
func (a Advance) IsGhost() bool      { return a >= G1 && a <= G3 }

// IsMultiAggressive reports a battle against more than one aggressive entity.
func (a Advance) IsMultiAggressive() bool { return a >= A2 && a <= A4 }

// IsMultiBeta reports a skittish knockout that also battles aggressive entities.
func (a Advance) IsMultiBeta() bool {
	return (a >= B2 && a <= B4) || (a >= O2 && a <= O4)
}

// IsMultiScare reports scaring several skittish entities at once.
func (a Advance) IsMultiScare() bool { return a.IsScare() }

// Count is the number of entities the action accounts for, which is also how many
// stream-draw pairs replaying it walks past.
func (a Advance) Count() int {
	switch {
	case a.IsAggressive():
		return int(a-A1) + 1
	case a.IsBeta():
		return int(a-B1) + 1
	case a.IsOblivious():
		return int(a-O1) + 1
	case a.IsScare():
		return int(a-S2) + 2
	case a.IsGhost():
		return int(a-G1) + 1
	}
	return 0
}

// Removed splits the action into (aggressive, beta, oblivious) removals.
func (a Advance) Removed() (aggro, beta, oblivious int) {
	n := a.Count()
	switch {
	case a.IsAggressive():
		return n, 0, 0
	case a.IsBeta():
		return n - 1, 1, 0
	case a.IsOblivious():
		return n - 1, 0, 1
	case a.IsScare():
		return 0, n, 0
	}
	return 0, 0, 0
}

func aggressiveAdvance(n int) Advance { return A1 + Advance(n-1) }
func betaAdvance(n int) Advance       { return B1 + Advance(n-1) }
func obliviousAdvance(n int) Advance  { return O1 + Advance(n-1) }
func scareAdvance(n int) Advance      { return S2 + Advance(n-2) }
func ghostAdvance(n int) Advance      { return G1 + Advance(n-1) }

// JoinAdvances renders a path with the given separator using raw names.
func JoinAdvances(advs []Advance, sep string) string {
	parts := make([]string, len(advs))
	for i, a := range advs {
		parts[i] = a.String()
	}
	return strings.Join(parts, sep)
}

// hasAny reports whether any advance satisfies pred.
func hasAny(advs []Advance, pred func(Advance) bool) bool {
	for _, a := range advs {
		if pred(a) {
			return true
		}
	}
	return false
}
