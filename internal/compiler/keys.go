package compiler

import (
	"math/rand/v2"

	"github.com/zeebo/xxh3"
)

// keyAlphabet is printable ASCII without '"', '&' and '\'.
var keyAlphabet = func() []byte {
	out := make([]byte, 0, 0x7e-0x21)
	for c := byte(0x21); c <= 0x7e; c++ {
		if c == '"' || c == '&' || c == '\\' {
			continue
		}
		out = append(out, c)
	}
	return out
}()

// keyGen hands out stable element keys. The sequence depends only on the
// key path, so recompiling an unmoved file yields the same keys.
type keyGen struct {
	rng    *rand.Rand
	length int
	seen   map[string]bool
}

func newKeyGen(keyPath string, length int) *keyGen {
	seed := xxh3.HashString(keyPath)
	return &keyGen{
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		length: length,
		seen:   make(map[string]bool),
	}
}

func (g *keyGen) next() string {
	buf := make([]byte, g.length)
	for {
		for i := range buf {
			buf[i] = keyAlphabet[g.rng.IntN(len(keyAlphabet))]
		}
		if k := string(buf); !g.seen[k] {
			g.seen[k] = true
			return k
		}
	}
}

// GenerateKey returns the next stable key of this file; keys never repeat
// within one unit.
func (s *State) GenerateKey() string {
	return s.keys.next()
}
