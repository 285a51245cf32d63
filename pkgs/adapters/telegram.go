package adapters

import (
	"time"

	"chat-proof-oracle/pkgs/models"
)

// TelegramAdapter normalizes exports from the Telegram desktop client.
// Items look like:
//
//	{"@type": "message", "sender_id": {"user_id": 42}, "date": 1700000000,
//	 "content": {"@type": "messageText", "text": {"text": "hello"}}}
type TelegramAdapter struct{}

func (a *TelegramAdapter) Normalize(item map[string]interface{}, submittedAt time.Time, chat *models.SourceChatData) {
	if stringField(item, "@type") != "message" {
		return
	}

	// Participant: missing sender still counts, as the empty sentinel
	sender := mapField(item, "sender_id")
	chat.AddParticipant(stringValue(sender["user_id"]))

	messageDate := unixField(item, "date", submittedAt)

	content := mapField(item, "content")
	if stringField(content, "@type") != "messageText" {
		return
	}
	text := stringField(mapField(content, "text"), "text")
	chat.AddContent(text, messageDate, submittedAt)
}
