/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// newRand returns a PCG generator seeded from crypto/rand.
func newRand() *rand.Rand {
	var b [16]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}

	return rand.New(rand.NewPCG(binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:])))
}
