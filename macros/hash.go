// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package macros

import "math/bits"

// occupiedBit is forced on in every stored hash.
const occupiedBit uint64 = 1 << 63

// fxSeed is the multiplier of the Fx hash.
const fxSeed uint64 = 0x517cc1b727220a95

// Hash returns the 64-bit Fx hash of key with the occupied bit set.
// For each byte the state is rotated left by 5, xor-ed with the
// byte, and multiplied by a fixed odd constant.
func Hash(key string) uint64 {
	var state uint64
	for i := 0; i < len(key); i++ {
		state = bits.RotateLeft64(state, 5)
		state ^= uint64(key[i])
		state *= fxSeed
	}
	return state | occupiedBit
}
