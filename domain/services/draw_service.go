package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sort"

	"ddj/domain/apperrors"
	"ddj/domain/entities"
	"ddj/domain/interfaces"
)

const (
	drawDomainPrefix = "ddj:round:"
	minSeedLength    = 16

	// Substitute state when the seed digest starts with four zero
	// bytes; xorshift cannot leave zero.
	zeroStateReplacement uint32 = 0x9E3779B9
)

// drawService derives round outcomes deterministically from the secret
// seed. The same roundId always yields the same outcome, and nothing
// about a future round is computable without the seed.
type drawService struct {
	seed string
}

// NewDrawService creates a draw service over the given secret seed
func NewDrawService(seed string) interfaces.DrawService {
	return &drawService{seed: seed}
}

// xorshift32 is a tiny deterministic PRNG seeded from the round digest
type xorshift32 struct {
	state uint32
}

func (x *xorshift32) next() uint32 {
	s := x.state
	s ^= s << 13
	s ^= s >> 17
	s ^= s << 5
	x.state = s
	return s
}

// nextFloat returns a float in [0, 1)
func (x *xorshift32) nextFloat() float64 {
	return float64(x.next()) / 4294967296.0
}

// nextInt returns an int in [1, n]
func (x *xorshift32) nextInt(n int) int {
	return 1 + int(x.nextFloat()*float64(n))
}

// OutcomeForRound derives the outcome for a round from the secret seed
func (s *drawService) OutcomeForRound(roundID int64) (entities.Outcome, error) {
	if len(s.seed) < minSeedLength {
		return entities.Outcome{}, apperrors.New(apperrors.KindConfigError, "secret seed missing or too short")
	}

	mac := hmac.New(sha256.New, []byte(s.seed))
	fmt.Fprintf(mac, "%s%d", drawDomainPrefix, roundID)
	digest := mac.Sum(nil)

	state := binary.BigEndian.Uint32(digest[:4])
	if state == 0 {
		state = zeroStateReplacement
	}
	rng := &xorshift32{state: state}

	// Draw four unique main numbers by rejection
	seen := make(map[int]bool, 4)
	main := make([]int, 0, 4)
	for len(main) < 4 {
		n := rng.nextInt(20)
		if seen[n] {
			continue
		}
		seen[n] = true
		main = append(main, n)
	}
	sort.Ints(main)

	chance := rng.nextInt(5)

	return entities.Outcome{Main: main, Chance: chance}, nil
}
