package uniqueness

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"

	"chat-proof-oracle/pkgs/fingerprint"
)

// Filter is a bloom filter over content fingerprints: the set of everything
// ever seen for one (user, source) scope. Append-only, no false negatives,
// false positives bounded by the configured capacity and rate.
//
// Bit indices are derived by double hashing over the two leading 64-bit
// lanes of the fingerprint itself; fingerprints are already uniform SHA-256
// output, so no further mixing is needed.
type Filter struct {
	bits     []byte
	numBits  uint64
	numHash  uint32
	capacity uint64
	count    uint64
}

// headerLen is the serialized metadata prefix:
// numBits(8) | numHash(4) | capacity(8) | count(8), big-endian
const headerLen = 28

// NewFilter sizes a filter for the expected capacity and target
// false-positive rate using the standard bloom dimensioning formulas
func NewFilter(capacity int, fpRate float64) *Filter {
	if capacity < 1 {
		capacity = 1
	}
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = 0.01
	}

	n := float64(capacity)
	m := math.Ceil(-n * math.Log(fpRate) / (math.Ln2 * math.Ln2))
	k := math.Round(m / n * math.Ln2)
	if k < 1 {
		k = 1
	}

	numBits := uint64(m)
	if numBits < 64 {
		numBits = 64
	}

	return &Filter{
		bits:     make([]byte, (numBits+7)/8),
		numBits:  numBits,
		numHash:  uint32(k),
		capacity: uint64(capacity),
	}
}

func (f *Filter) indexes(fp fingerprint.Fingerprint) (uint64, uint64) {
	h1 := binary.BigEndian.Uint64(fp[0:8])
	h2 := binary.BigEndian.Uint64(fp[8:16])
	// h2 must be odd so successive probes cover the bit space
	return h1, h2 | 1
}

// Contains reports whether the fingerprint may have been inserted.
// Never false-negative; false-positive at the configured rate.
func (f *Filter) Contains(fp fingerprint.Fingerprint) bool {
	h1, h2 := f.indexes(fp)
	for i := uint32(0); i < f.numHash; i++ {
		bit := (h1 + uint64(i)*h2) % f.numBits
		if f.bits[bit/8]&(1<<(bit%8)) == 0 {
			return false
		}
	}
	return true
}

// Insert adds the fingerprint. Idempotent: re-inserting a present
// fingerprint changes nothing, including the false-positive behavior.
func (f *Filter) Insert(fp fingerprint.Fingerprint) {
	if f.Contains(fp) {
		return
	}
	h1, h2 := f.indexes(fp)
	for i := uint32(0); i < f.numHash; i++ {
		bit := (h1 + uint64(i)*h2) % f.numBits
		f.bits[bit/8] |= 1 << (bit % 8)
	}
	f.count++
}

// Count returns the number of distinct fingerprints inserted so far
func (f *Filter) Count() uint64 {
	return f.count
}

// Capacity returns the expected capacity the filter was sized for
func (f *Filter) Capacity() uint64 {
	return f.capacity
}

// EstimatedFPRate estimates the current false-positive rate from the
// insert count: (1 - e^(-kn/m))^k
func (f *Filter) EstimatedFPRate() float64 {
	if f.count == 0 {
		return 0
	}
	k := float64(f.numHash)
	n := float64(f.count)
	m := float64(f.numBits)
	return math.Pow(1-math.Exp(-k*n/m), k)
}

// Serialize encodes the filter as a portable base64 blob:
// metadata header followed by the raw bit array
func (f *Filter) Serialize() string {
	buf := make([]byte, headerLen+len(f.bits))
	binary.BigEndian.PutUint64(buf[0:8], f.numBits)
	binary.BigEndian.PutUint32(buf[8:12], f.numHash)
	binary.BigEndian.PutUint64(buf[12:20], f.capacity)
	binary.BigEndian.PutUint64(buf[20:28], f.count)
	copy(buf[headerLen:], f.bits)
	return base64.StdEncoding.EncodeToString(buf)
}

// Deserialize reconstructs a filter from its serialized form. An empty blob
// means a first-time submitter and yields an empty default-sized filter.
// Round-trips losslessly: Deserialize(Serialize(F)) answers membership
// identically to F.
func Deserialize(blob string, defaultCapacity int, defaultFPRate float64) (*Filter, error) {
	if blob == "" {
		return NewFilter(defaultCapacity, defaultFPRate), nil
	}

	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("failed to decode filter blob: %w", err)
	}
	if len(raw) < headerLen {
		return nil, fmt.Errorf("filter blob too short: %d bytes", len(raw))
	}

	numBits := binary.BigEndian.Uint64(raw[0:8])
	numHash := binary.BigEndian.Uint32(raw[8:12])
	capacity := binary.BigEndian.Uint64(raw[12:20])
	count := binary.BigEndian.Uint64(raw[20:28])

	bits := raw[headerLen:]
	if numBits == 0 || numHash == 0 {
		return nil, fmt.Errorf("invalid filter metadata: bits=%d hashes=%d", numBits, numHash)
	}
	if uint64(len(bits)) != (numBits+7)/8 {
		return nil, fmt.Errorf("filter bit array length mismatch: have %d bytes, expected %d",
			len(bits), (numBits+7)/8)
	}

	f := &Filter{
		bits:     make([]byte, len(bits)),
		numBits:  numBits,
		numHash:  numHash,
		capacity: capacity,
		count:    count,
	}
	copy(f.bits, bits)
	return f, nil
}
