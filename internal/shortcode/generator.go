// Package shortcode generates and validates base62 short codes.
package shortcode

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math/big"
	"strconv"
	"sync"
	"time"
)

// Alphabet is the fixed base62 charset for short codes. Codes appear in
// public URLs, so the charset and the 4-8 length bounds are a wire-visible
// contract.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const (
	MinLength = 4
	MaxLength = 8
)

// ErrExhausted is returned when no unique code could be produced within the
// bounded attempt budget. Callers should retry with a longer default length.
var ErrExhausted = errors.New("shortcode: exhausted unique code attempts")

var alphabetSize = big.NewInt(int64(len(Alphabet)))

// Generator produces unique short codes using an ordered sequence of
// strategies: a salted hash of the seed URL on the first attempt, secure
// random selection on subsequent attempts, and a timestamp-based last
// resort. Generated codes are remembered in an issued set for local
// collision avoidance; the durable store's uniqueness constraint remains
// the final authority.
type Generator struct {
	defaultLength int
	maxAttempts   int

	mu         sync.Mutex
	issued     map[string]struct{}
	collisions int
}

// Stats reports generation counters for monitoring.
type Stats struct {
	TotalGenerated  int
	TotalCollisions int
}

func NewGenerator(defaultLength, maxAttempts int) *Generator {
	if defaultLength < MinLength || defaultLength > MaxLength {
		defaultLength = 6
	}
	if maxAttempts < 1 {
		maxAttempts = 10
	}
	return &Generator{
		defaultLength: defaultLength,
		maxAttempts:   maxAttempts,
		issued:        make(map[string]struct{}),
	}
}

// Generate returns a unique short code. seedURL may be empty; when given it
// drives the deterministic-ish hash strategy on the first attempt. length 0
// selects the generator's default. After half the attempt budget fails the
// target length grows by one to escape birthday-bound exhaustion at small
// lengths.
func (g *Generator) Generate(seedURL string, length int) (string, error) {
	targetLength := length
	if targetLength == 0 {
		targetLength = g.defaultLength
	}

	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		if g.growLength(attempt, targetLength) {
			targetLength++
		}

		var code string
		var err error
		if seedURL != "" && attempt == 0 {
			code, err = hashCode(seedURL, targetLength)
		} else {
			code, err = randomCode(targetLength)
		}
		if err != nil {
			return "", err
		}

		if g.reserve(code) {
			return code, nil
		}
	}

	// Last resort: millisecond timestamp plus random suffix.
	code, err := timestampCode(targetLength)
	if err != nil {
		return "", err
	}
	if !g.reserve(code) {
		return "", ErrExhausted
	}
	return code, nil
}

// Validate reports whether code is a well-formed short code: 4-8 characters,
// all from the base62 alphabet.
func Validate(code string) bool {
	if len(code) < MinLength || len(code) > MaxLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if !(c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

// Stats returns generation counters.
func (g *Generator) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Stats{
		TotalGenerated:  len(g.issued),
		TotalCollisions: g.collisions,
	}
}

// growLength reports whether the target length should grow before this
// attempt. Growth happens exactly once, when half the attempt budget has
// already failed, and never past MaxLength.
func (g *Generator) growLength(attempt, targetLength int) bool {
	return attempt > 0 && attempt == g.maxAttempts/2 && targetLength < MaxLength
}

// reserve records code in the issued set. It returns false when the code was
// already handed out.
func (g *Generator) reserve(code string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.issued[code]; exists {
		g.collisions++
		return false
	}
	g.issued[code] = struct{}{}
	return true
}

// hashCode derives a code from SHA-256 of the seed URL with a microsecond
// timestamp salt: the first 16 hex characters are read as a 64-bit integer
// and base62-encoded, left-padded with the first alphabet character.
func hashCode(seedURL string, length int) (string, error) {
	salt := strconv.FormatInt(time.Now().UnixMicro(), 10)
	digest := sha256.Sum256([]byte(seedURL + ":" + salt))
	hexDigest := hex.EncodeToString(digest[:])

	num, err := strconv.ParseUint(hexDigest[:16], 16, 64)
	if err != nil {
		return "", err
	}

	encoded := encodeBase62(num)
	for len(encoded) < length {
		encoded = string(Alphabet[0]) + encoded
	}
	return encoded[:length], nil
}

// randomCode picks length characters from the alphabet using crypto/rand.
func randomCode(length int) (string, error) {
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		b[i] = Alphabet[n.Int64()]
	}
	return string(b), nil
}

// timestampCode base62-encodes the current millisecond timestamp and tops it
// up with random characters to reach the requested length.
func timestampCode(length int) (string, error) {
	encoded := encodeBase62(uint64(time.Now().UnixMilli()))
	if len(encoded) >= length {
		return encoded[:length], nil
	}
	suffix, err := randomCode(length - len(encoded))
	if err != nil {
		return "", err
	}
	return encoded + suffix, nil
}

func encodeBase62(num uint64) string {
	if num == 0 {
		return string(Alphabet[0])
	}
	base := uint64(len(Alphabet))
	var out []byte
	for num > 0 {
		out = append([]byte{Alphabet[num%base]}, out...)
		num /= base
	}
	return string(out)
}
