package claim

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// DefaultAlphabet is the 32-symbol code alphabet. 0, 1, I and O are
// excluded so codes survive being read aloud or retyped by hand.
const DefaultAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// DefaultCodeLength yields 32^8 combinations (40 bits), which together
// with the short TTL and single-use redemption bounds online guessing.
const DefaultCodeLength = 8

// Generator produces claim codes from a cryptographically strong
// random source.
type Generator struct {
	alphabet string
	length   int
}

// NewGenerator creates a generator with the default alphabet and length.
func NewGenerator() *Generator {
	return &Generator{alphabet: DefaultAlphabet, length: DefaultCodeLength}
}

// NewGeneratorWithLength creates a generator producing codes of the
// given length from the default alphabet.
func NewGeneratorWithLength(length int) *Generator {
	if length <= 0 {
		length = DefaultCodeLength
	}
	return &Generator{alphabet: DefaultAlphabet, length: length}
}

// Generate returns a fresh claim code. Each character is selected
// independently and uniformly from the alphabet via crypto/rand.
func (g *Generator) Generate() (string, error) {
	n := big.NewInt(int64(len(g.alphabet)))
	buf := make([]byte, g.length)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, n)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		buf[i] = g.alphabet[idx.Int64()]
	}
	return string(buf), nil
}

// NewAgentKey returns an opaque credential for a freshly registered
// host agent, used on heartbeat and log ingestion calls.
func NewAgentKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random source: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
