package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Size is the fingerprint width in bytes
const Size = sha256.Size

// Fingerprint is a salted digest of normalized message text. It is the unit
// of deduplication: identical (salt, normalized text) pairs always produce
// identical fingerprints, regardless of which source format carried the text.
type Fingerprint [Size]byte

// Hex returns the lowercase hex encoding of the fingerprint
func (f Fingerprint) Hex() string {
	return hex.EncodeToString(f[:])
}

// Normalize applies the fixed pre-hash normalization: unify line endings and
// trim surrounding whitespace. Any change here breaks comparability with
// stored fingerprints and must be versioned via the data revision.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.TrimSpace(text)
}

// Hasher produces content fingerprints with a process-wide secret salt.
// Without the salt a fingerprint is not feasibly invertible to the text.
type Hasher struct {
	salt []byte
}

// NewHasher creates a hasher with an explicit salt. The salt comes from
// configuration, never from the submission data itself.
func NewHasher(salt string) *Hasher {
	return &Hasher{salt: []byte(salt)}
}

// Fingerprint computes SHA-256(salt || normalized text)
func (h *Hasher) Fingerprint(text string) Fingerprint {
	digest := sha256.New()
	digest.Write(h.salt)
	digest.Write([]byte(Normalize(text)))

	var fp Fingerprint
	copy(fp[:], digest.Sum(nil))
	return fp
}
