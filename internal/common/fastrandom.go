package common

import (
	"crypto/rand"
	"fmt"
	"sync"

	"golang.org/x/crypto/chacha20"

	"github.com/privacybydesign/schnorr/big"
)

var globalCprng *CPRNG

// CPRNG is a simple thread-safe cryptographically secure pseudo-random number generator:
// the ChaCha20 keystream under the seed as key and an all-zero nonce.
// A single CPRNG yields at most 256 GiB before the stream is exhausted.
type CPRNG struct {
	mu     sync.Mutex
	stream *chacha20.Cipher
}

func NewCPRNG(seed *[32]byte) (*CPRNG, error) {
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
	if err != nil {
		return nil, err
	}
	return &CPRNG{stream: c}, nil
}

func init() {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		panic(fmt.Sprintf("Failed to generate seed for CPRNG: %v", err))
	}
	cprng, err := NewCPRNG(&seed)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize CPRNG: %v", err))
	}
	ZeroizeBytes(seed[:])
	globalCprng = cprng
}

// Read fills buf with keystream bytes. It never fails.
func (c *CPRNG) Read(buf []byte) (n int, err error) {
	for i := range buf {
		buf[i] = 0
	}
	c.mu.Lock()
	c.stream.XORKeyStream(buf, buf)
	c.mu.Unlock()
	return len(buf), nil
}

// FastRandomBigInt derives a random number uniformly chosen below the given limit
// from a random 256 bit seed generated when the application starts. It is meant for
// values that are published anyway, such as simulated transcripts; secrets are drawn
// from crypto/rand directly.
func FastRandomBigInt(limit *big.Int) *big.Int {
	res, err := big.RandInt(globalCprng, limit)
	if err != nil {
		panic(fmt.Sprintf("big.RandInt failed: %v", err))
	}
	return res
}
