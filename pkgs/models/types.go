package models

import (
	"fmt"
	"strings"
	"time"
)

// SupportedRevision is the single data revision this oracle understands.
// Bumping it invalidates comparability with previously stored fingerprints.
const SupportedRevision = "01.01"

// DataSource identifies the chat export tool a submission came from
type DataSource string

const (
	SourceTelegram      DataSource = "TELEGRAM"
	SourceTelegramMiner DataSource = "TELEGRAMMINER"
)

// ParseDataSource maps a caller-supplied source string to the enumerated set.
// Matching is case-insensitive on input.
func ParseDataSource(raw string) (DataSource, error) {
	switch DataSource(strings.ToUpper(strings.TrimSpace(raw))) {
	case SourceTelegram:
		return SourceTelegram, nil
	case SourceTelegramMiner:
		return SourceTelegramMiner, nil
	default:
		return "", &MalformedSubmissionError{Reason: fmt.Sprintf("unmapped data source: %s", raw)}
	}
}

// ContentItem is one normalized message
type ContentItem struct {
	Text             string
	MessageTimestamp time.Time // Source-provided time, or the submission time as fallback
	RecordedAt       time.Time // Submission time, kept for audit
}

// SourceChatData is one conversation within a submission
type SourceChatData struct {
	ChatID   string
	Contents []ContentItem

	participants map[string]struct{}
	order        []string // Insertion order, for deterministic iteration
}

// NewSourceChatData creates an empty chat record
func NewSourceChatData(chatID string) *SourceChatData {
	return &SourceChatData{
		ChatID:       chatID,
		participants: make(map[string]struct{}),
	}
}

// AddParticipant records a participant identifier. Idempotent; the empty
// string is a valid sentinel for items that carry no sender.
func (c *SourceChatData) AddParticipant(id string) {
	if _, exists := c.participants[id]; exists {
		return
	}
	c.participants[id] = struct{}{}
	c.order = append(c.order, id)
}

// AddContent appends a normalized message. Text that is empty after
// whitespace trimming is never added: it would fingerprint as the empty
// string and count as plausible content while carrying none.
func (c *SourceChatData) AddContent(text string, messageTS, recordedAt time.Time) {
	if strings.TrimSpace(text) == "" {
		return
	}
	c.Contents = append(c.Contents, ContentItem{
		Text:             text,
		MessageTimestamp: messageTS,
		RecordedAt:       recordedAt,
	})
}

// Participants returns the deduplicated participant identifiers in insertion order
func (c *SourceChatData) Participants() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// ParticipantCount returns the number of distinct participants
func (c *SourceChatData) ParticipantCount() int {
	return len(c.participants)
}

// SourceData is one normalized submission
type SourceData struct {
	Source          DataSource
	User            string
	SubmissionToken string
	SubmissionDate  time.Time
	Chats           []*SourceChatData
}

// ContentCount returns the total number of content items across all chats
func (s *SourceData) ContentCount() int {
	total := 0
	for _, chat := range s.Chats {
		total += len(chat.Contents)
	}
	return total
}
