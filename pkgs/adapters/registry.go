package adapters

import (
	"time"

	"chat-proof-oracle/pkgs/models"
)

// Adapter normalizes one source-specific content item into the canonical
// model. Implementations must tolerate missing fields (empty participant
// sentinel, submission-time fallback) and silently ignore item types that
// carry no plain-text message.
type Adapter interface {
	Normalize(item map[string]interface{}, submittedAt time.Time, chat *models.SourceChatData)
}

var registry = map[models.DataSource]Adapter{
	models.SourceTelegram:      &TelegramAdapter{},
	models.SourceTelegramMiner: &TelegramMinerAdapter{},
}

// ForSource returns the adapter registered for a data source
func ForSource(source models.DataSource) (Adapter, bool) {
	adapter, ok := registry[source]
	return adapter, ok
}
