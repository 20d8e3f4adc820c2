package main

import "math/bits"

// XoroshiroConst is the fixed second state word used when seeding from a single value.
const XoroshiroConst uint64 = 0x82A2B175229D6A5B

// Xoroshiro is a xoroshiro128+ stream. It is a plain value: copying it forks an
// independent stream.
type Xoroshiro struct {
	s0, s1 uint64
}

// NewXoroshiro seeds a stream from a single 64-bit value.
func NewXoroshiro(seed uint64) Xoroshiro {
	return Xoroshiro{s0: seed, s1: XoroshiroConst}
}

// State returns both state words.
func (x Xoroshiro) State() (uint64, uint64) { return x.s0, x.s1 }

// Next returns the next 64-bit value and advances the stream.
func (x *Xoroshiro) Next() uint64 {
	s0, s1 := x.s0, x.s1
	result := s0 + s1

	s1 ^= s0
	x.s0 = bits.RotateLeft64(s0, 24) ^ s1 ^ (s1 << 16)
	x.s1 = bits.RotateLeft64(s1, 37)
	return result
}

// Skip advances the stream count times, discarding the values.
func (x *Xoroshiro) Skip(count int) {
	for i := 0; i < count; i++ {
		x.Next()
	}
}

// NextInt returns a value in [0, n) by masking to the smallest covering power of two
// and redrawing out-of-range values. n == 0 returns 0 without consuming a draw.
func (x *Xoroshiro) NextInt(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	mask := bitmask(n)
	for {
		res := x.Next() & mask
		if res < n {
			return res
		}
	}
}

// NextUint32 returns a value in [0, 0xFFFFFFFF).
func (x *Xoroshiro) NextUint32() uint32 {
	return uint32(x.NextInt(0xFFFFFFFF))
}

// NextFloat returns a value in [0, max) using the top 24 bits of one draw.
func (x *Xoroshiro) NextFloat(max float32) float32 {
	const mult = float32(1.0) / (1 << 24)
	t := float32(x.Next()>>40) * mult
	return t * max
}

// bitmask returns the all-ones mask covering n-1.
func bitmask(n uint64) uint64 {
	v := n - 1
	if v == 0 {
		return 0
	}
	return ^uint64(0) >> bits.LeadingZeros64(v)
}
