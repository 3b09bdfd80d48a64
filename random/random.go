package random

import (
	crand "crypto/rand"
	"math/rand/v2"
)

var (
	PseudoRand = rand.New(rand.NewPCG(0xDE_AD_BE_EF, 0x00_C0_FF_EE))
)

func CryptoRand() (r *rand.Rand) {
	var seed [32]byte
	crand.Reader.Read(seed[:])
	return rand.New(rand.NewChaCha8(seed))
}
