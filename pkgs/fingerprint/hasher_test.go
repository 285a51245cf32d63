package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintDeterminism(t *testing.T) {
	hasher := NewHasher("test-salt")

	first := hasher.Fingerprint("hello world")
	second := hasher.Fingerprint("hello world")
	assert.Equal(t, first, second, "identical (salt, text) must produce identical fingerprints")
}

func TestFingerprintDistinctTexts(t *testing.T) {
	hasher := NewHasher("test-salt")

	texts := []string{"hello", "world", "hello world", "Hello", "", "a", "ab"}
	seen := make(map[string]string)
	for _, text := range texts {
		hex := hasher.Fingerprint(text).Hex()
		if prev, dup := seen[hex]; dup {
			t.Fatalf("collision between %q and %q", prev, text)
		}
		seen[hex] = text
	}
}

func TestFingerprintSaltSeparation(t *testing.T) {
	a := NewHasher("salt-a").Fingerprint("same text")
	b := NewHasher("salt-b").Fingerprint("same text")
	assert.NotEqual(t, a, b, "different salts must produce different fingerprints")
}

func TestNormalization(t *testing.T) {
	hasher := NewHasher("salt")

	// Whitespace trim and CRLF unification fold into the same fingerprint
	assert.Equal(t, hasher.Fingerprint("hello\nworld"), hasher.Fingerprint("hello\r\nworld"))
	assert.Equal(t, hasher.Fingerprint("hello"), hasher.Fingerprint("  hello  "))
	assert.Equal(t, hasher.Fingerprint("hello"), hasher.Fingerprint("hello\n"))

	// Interior case and spacing still matter
	assert.NotEqual(t, hasher.Fingerprint("hello world"), hasher.Fingerprint("hello  world"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a\nb", Normalize("a\r\nb"))
	assert.Equal(t, "a", Normalize("  a \n"))
	assert.Equal(t, "", Normalize("  \r\n "))
}
