// Package cipher implements the Caesar shift over the uppercase Latin alphabet.
package cipher

import (
	"fmt"
	"strconv"
	"strings"
)

// Alphabet is the ordered set of letters all shifts operate on.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Size is the modulus for key arithmetic.
const Size = len(Alphabet)

// Key is a Caesar shift in [0, Size).
type Key int

// NewKey reduces any integer into the key space.
func NewKey(n int) Key {
	n %= Size
	if n < 0 {
		n += Size
	}
	return Key(n)
}

// Inverse returns the key that undoes k.
func (k Key) Inverse() Key {
	return NewKey(Size - int(NewKey(int(k))))
}

// Letter returns the alphabet letter that encodes k (A for 0).
func (k Key) Letter() byte {
	return Alphabet[NewKey(int(k))]
}

// Keys returns every key in ascending order.
func Keys() []Key {
	keys := make([]Key, Size)
	for i := range keys {
		keys[i] = Key(i)
	}
	return keys
}

// ParseKey parses a decimal shift or a single letter (A=0 .. Z=25).
func ParseKey(s string) (Key, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("key is empty")
	}
	if len(s) == 1 {
		if idx := Index(upper(s[0])); idx >= 0 {
			return Key(idx), nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid key %q: want an integer or a letter", s)
	}
	return NewKey(n), nil
}

// Index returns the alphabet position of c, or -1 when c is not an uppercase letter.
func Index(c byte) int {
	if c < 'A' || c > 'Z' {
		return -1
	}
	return int(c - 'A')
}

// Shift moves every letter of text forward by k positions.
// text must contain only Alphabet letters.
func Shift(text string, k Key) string {
	k = NewKey(int(k))
	if k == 0 || text == "" {
		return text
	}
	out := make([]byte, len(text))
	for i := 0; i < len(text); i++ {
		out[i] = Alphabet[(Index(text[i])+int(k))%Size]
	}
	return string(out)
}

// Unshift reverses Shift(text, k).
func Unshift(text string, k Key) string {
	return Shift(text, NewKey(int(k)).Inverse())
}

// ShiftPreserving shifts the ASCII letters of arbitrary text, keeping their
// case, and copies every other rune unchanged.
func ShiftPreserving(text string, k Key) string {
	k = NewKey(int(k))
	if k == 0 {
		return text
	}
	out := []byte(text)
	for i, c := range out {
		switch {
		case c >= 'A' && c <= 'Z':
			out[i] = 'A' + byte((int(c-'A')+int(k))%Size)
		case c >= 'a' && c <= 'z':
			out[i] = 'a' + byte((int(c-'a')+int(k))%Size)
		}
	}
	return string(out)
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
