package uniuri

import (
	"crypto/rand"

	"github.com/rs/zerolog/log"
)

const (
	// StdLen is a standard length of uniuri string to achieve ~95 bits of entropy.
	StdLen = 16
)

// StdChars is the set of characters allowed in a uniuri string.
var StdChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")

// New returns a new random string of the standard length, consisting of
// standard characters.
func New() string {
	return NewLen(StdLen)
}

// NewLen returns a new random string of the provided length, consisting of
// standard characters.
func NewLen(length int) string {
	return NewLenChars(length, StdChars)
}

// NewLenChars returns a new random string of the provided length, consisting
// of the provided characters (maximum 256). Bytes outside the accepted range
// are rejected and redrawn so the distribution over chars stays uniform.
func NewLenChars(length int, chars []byte) string {
	if length == 0 {
		return ""
	}

	clen := len(chars)
	if clen < 2 || clen > 256 {
		panic("uniuri: wrong charset length for NewLenChars")
	}

	maxrb := 255 - (256 % clen)
	b := make([]byte, length)
	r := make([]byte, length+(length/4)) // storage for random bytes
	i := 0

	for {
		if _, err := rand.Read(r); err != nil {
			log.Fatal().Err(err).Msg("uniuri: error reading random bytes")
		}

		for _, rb := range r {
			c := int(rb)
			if c > maxrb {
				// skip to avoid modulo bias
				continue
			}

			b[i] = chars[c%clen]
			i++

			if i == length {
				return string(b)
			}
		}
	}
}
