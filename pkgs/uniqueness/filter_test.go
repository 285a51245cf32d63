package uniqueness

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-proof-oracle/pkgs/fingerprint"
)

var testHasher = fingerprint.NewHasher("filter-test-salt")

func TestNoFalseNegatives(t *testing.T) {
	filter := NewFilter(1000, 0.01)

	var inserted []fingerprint.Fingerprint
	for i := 0; i < 500; i++ {
		fp := testHasher.Fingerprint(fmt.Sprintf("message %d", i))
		filter.Insert(fp)
		inserted = append(inserted, fp)
	}

	for i, fp := range inserted {
		assert.True(t, filter.Contains(fp), "inserted fingerprint %d must be contained", i)
	}
}

func TestInsertIdempotent(t *testing.T) {
	filter := NewFilter(100, 0.01)
	fp := testHasher.Fingerprint("repeated message")

	filter.Insert(fp)
	countAfterFirst := filter.Count()
	rateAfterFirst := filter.EstimatedFPRate()

	filter.Insert(fp)
	filter.Insert(fp)

	assert.Equal(t, countAfterFirst, filter.Count())
	assert.Equal(t, rateAfterFirst, filter.EstimatedFPRate())
}

func TestSerializeRoundTrip(t *testing.T) {
	filter := NewFilter(1000, 0.01)

	var fps []fingerprint.Fingerprint
	for i := 0; i < 200; i++ {
		fp := testHasher.Fingerprint(fmt.Sprintf("round trip %d", i))
		if i%2 == 0 {
			filter.Insert(fp)
		}
		fps = append(fps, fp)
	}

	restored, err := Deserialize(filter.Serialize(), 1000, 0.01)
	require.NoError(t, err)

	assert.Equal(t, filter.Count(), restored.Count())
	assert.Equal(t, filter.Capacity(), restored.Capacity())
	for i, fp := range fps {
		assert.Equal(t, filter.Contains(fp), restored.Contains(fp),
			"membership answer must survive the round trip (fingerprint %d)", i)
	}
}

func TestDeserializeEmptyBlob(t *testing.T) {
	filter, err := Deserialize("", 5000, 0.02)
	require.NoError(t, err)

	assert.Equal(t, uint64(0), filter.Count())
	assert.Equal(t, uint64(5000), filter.Capacity())
	assert.False(t, filter.Contains(testHasher.Fingerprint("anything")))
}

func TestDeserializeCorruptBlob(t *testing.T) {
	_, err := Deserialize("not base64 !!!", 1000, 0.01)
	assert.Error(t, err)

	_, err = Deserialize("AAAA", 1000, 0.01)
	assert.Error(t, err, "truncated blob must not deserialize")
}

func TestEstimatedFPRateGrowsMonotonically(t *testing.T) {
	filter := NewFilter(1000, 0.01)
	assert.Equal(t, 0.0, filter.EstimatedFPRate())

	prev := 0.0
	for i := 0; i < 1000; i++ {
		filter.Insert(testHasher.Fingerprint(fmt.Sprintf("growth %d", i)))
		rate := filter.EstimatedFPRate()
		assert.GreaterOrEqual(t, rate, prev, "fp rate estimate must not decrease on insert")
		prev = rate
	}

	// At configured capacity the estimate should sit near the design rate
	assert.InDelta(t, 0.01, filter.EstimatedFPRate(), 0.01)
}

func TestFalsePositiveRateBounded(t *testing.T) {
	filter := NewFilter(1000, 0.01)
	for i := 0; i < 1000; i++ {
		filter.Insert(testHasher.Fingerprint(fmt.Sprintf("member %d", i)))
	}

	falsePositives := 0
	const probes = 10000
	for i := 0; i < probes; i++ {
		if filter.Contains(testHasher.Fingerprint(fmt.Sprintf("non-member %d", i))) {
			falsePositives++
		}
	}

	// Design rate is 1%; allow generous slack for hash variance
	assert.Less(t, float64(falsePositives)/probes, 0.05)
}
