package uniqueness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-proof-oracle/pkgs/fingerprint"
	"chat-proof-oracle/pkgs/models"
)

func buildSubmission(texts ...string) *models.SourceData {
	now := time.Now().UTC()
	chat := models.NewSourceChatData("chat-1")
	chat.AddParticipant("alice")
	for _, text := range texts {
		chat.AddContent(text, now, now)
	}
	return &models.SourceData{
		Source:         models.SourceTelegram,
		User:           "alice",
		SubmissionDate: now,
		Chats:          []*models.SourceChatData{chat},
	}
}

func TestAccountantAllNew(t *testing.T) {
	accountant, err := NewAccountant(fingerprint.NewHasher("salt"), 100)
	require.NoError(t, err)

	filter := NewFilter(1000, 0.01)
	stats := accountant.Process(buildSubmission("one", "two", "three"), filter)

	assert.Equal(t, 3, stats.TotalCount)
	assert.Equal(t, 3, stats.NewCount)
	assert.Equal(t, 1.0, stats.Ratio())
	assert.Equal(t, uint64(3), filter.Count())
}

func TestAccountantWithinSubmissionRepeats(t *testing.T) {
	accountant, err := NewAccountant(fingerprint.NewHasher("salt"), 0)
	require.NoError(t, err)

	filter := NewFilter(1000, 0.01)
	stats := accountant.Process(buildSubmission("same", "same", "same"), filter)

	assert.Equal(t, 3, stats.TotalCount)
	assert.Equal(t, 1, stats.NewCount, "repeats within one submission count as seen after the first")
}

func TestAccountantResubmission(t *testing.T) {
	accountant, err := NewAccountant(fingerprint.NewHasher("salt"), 0)
	require.NoError(t, err)

	filter := NewFilter(1000, 0.01)
	first := accountant.Process(buildSubmission("alpha", "beta"), filter)
	assert.Equal(t, 1.0, first.Ratio())

	second := accountant.Process(buildSubmission("alpha", "beta"), filter)
	assert.Equal(t, 0, second.NewCount)
	assert.Equal(t, 0.0, second.Ratio())
}

func TestAccountantLocalCacheHits(t *testing.T) {
	accountant, err := NewAccountant(fingerprint.NewHasher("salt"), 100)
	require.NoError(t, err)

	filter := NewFilter(1000, 0.01)
	first := accountant.Process(buildSubmission("same", "same", "other"), filter)
	assert.Equal(t, 1, first.LocalHits, "second occurrence of an identical text hits the process-local cache")

	second := accountant.Process(buildSubmission("same", "other"), filter)
	assert.Equal(t, 2, second.LocalHits, "fingerprints from the previous run stay cached")
	assert.Equal(t, 0, second.NewCount)
}

func TestAccountantDisabledLocalCache(t *testing.T) {
	accountant, err := NewAccountant(fingerprint.NewHasher("salt"), 0)
	require.NoError(t, err)

	filter := NewFilter(1000, 0.01)
	stats := accountant.Process(buildSubmission("same", "same"), filter)

	assert.Equal(t, 0, stats.LocalHits)
	assert.Equal(t, 1, stats.NewCount, "the filter still deduplicates without the local cache")
}

func TestAccountantEmptySubmission(t *testing.T) {
	accountant, err := NewAccountant(fingerprint.NewHasher("salt"), 0)
	require.NoError(t, err)

	filter := NewFilter(1000, 0.01)
	stats := accountant.Process(&models.SourceData{SubmissionDate: time.Now().UTC()}, filter)

	assert.Equal(t, 0, stats.TotalCount)
	assert.Equal(t, 0.0, stats.Ratio(), "zero content items must score uniqueness 0.0, not divide by zero")
}

func TestAccountantCrossSourceEquivalence(t *testing.T) {
	// Identical normalized text fingerprints identically regardless of source
	accountant, err := NewAccountant(fingerprint.NewHasher("salt"), 0)
	require.NoError(t, err)

	filter := NewFilter(1000, 0.01)
	telegram := buildSubmission("shared text")
	accountant.Process(telegram, filter)

	miner := buildSubmission("shared text")
	miner.Source = models.SourceTelegramMiner
	stats := accountant.Process(miner, filter)

	assert.Equal(t, 0, stats.NewCount)
}
