package services

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
)

// Shuffler draws character orders and table positions. Safe for concurrent use.
type Shuffler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewShuffler(rng *rand.Rand) *Shuffler {
	return &Shuffler{rng: rng}
}

// NewSeededShuffler seeds a PCG source from crypto/rand.
func NewSeededShuffler() *Shuffler {
	var seed [16]byte
	if _, err := crand.Read(seed[:]); err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}
	src := rand.NewPCG(binary.LittleEndian.Uint64(seed[:8]), binary.LittleEndian.Uint64(seed[8:]))
	return NewShuffler(rand.New(src))
}

// Shuffle permutes n elements in place through swap (Fisher-Yates).
func (s *Shuffler) Shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(n, swap)
}

// Positions returns a random permutation of 1..n.
func (s *Shuffler) Positions(n int) []int {
	s.mu.Lock()
	perm := s.rng.Perm(n)
	s.mu.Unlock()

	for i := range perm {
		perm[i]++
	}
	return perm
}
