package adapters

import (
	"time"

	"chat-proof-oracle/pkgs/models"
)

// TelegramMinerAdapter normalizes exports from the gramjs-based miner tool.
// Items look like:
//
//	{"className": "Message", "peerId": {"userId": "42"}, "date": 1700000000,
//	 "message": "hello"}
type TelegramMinerAdapter struct{}

func (a *TelegramMinerAdapter) Normalize(item map[string]interface{}, submittedAt time.Time, chat *models.SourceChatData) {
	if stringField(item, "className") != "Message" {
		return
	}

	peer := mapField(item, "peerId")
	chat.AddParticipant(stringValue(peer["userId"]))

	messageDate := unixField(item, "date", submittedAt)

	text := stringField(item, "message")
	chat.AddContent(text, messageDate, submittedAt)
}
