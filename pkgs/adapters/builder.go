package adapters

import (
	"time"

	log "github.com/sirupsen/logrus"

	"chat-proof-oracle/pkgs/models"
)

// BuildSourceData normalizes a raw submission document into the canonical
// model. The adapter is selected once from the declared source and applied
// to every content item.
//
// Returns a MalformedSubmissionError for an unsupported revision, an
// unmapped source, or a duplicate chat_id. Chats without an id or without
// contents are skipped silently: no useful content, no record.
func BuildSourceData(raw map[string]interface{}, submittedAt time.Time) (*models.SourceData, error) {
	revision := stringField(raw, "revision")
	if revision != "" && revision != models.SupportedRevision {
		return nil, models.Malformedf("invalid revision: %s", revision)
	}

	source, err := models.ParseDataSource(stringField(raw, "source"))
	if err != nil {
		return nil, err
	}

	adapter, ok := ForSource(source)
	if !ok {
		return nil, models.Malformedf("no adapter registered for source: %s", source)
	}

	data := &models.SourceData{
		Source:          source,
		User:            stringField(raw, "user"),
		SubmissionToken: stringField(raw, "submission_token"),
		SubmissionDate:  submittedAt,
	}

	rawChats, _ := raw["chats"].([]interface{})
	seenChatIDs := make(map[string]struct{}, len(rawChats))

	for _, rawChat := range rawChats {
		chatMap, ok := rawChat.(map[string]interface{})
		if !ok {
			continue
		}

		chatID := stringValue(chatMap["chat_id"])
		rawContents, _ := chatMap["contents"].([]interface{})
		if chatID == "" || len(rawContents) == 0 {
			log.Debugf("Skipping chat with no id or no contents (id=%q)", chatID)
			continue
		}

		if _, dup := seenChatIDs[chatID]; dup {
			return nil, models.Malformedf("duplicate chat_id: %s", chatID)
		}
		seenChatIDs[chatID] = struct{}{}

		chat := models.NewSourceChatData(chatID)
		for _, rawItem := range rawContents {
			item, ok := rawItem.(map[string]interface{})
			if !ok {
				continue
			}
			adapter.Normalize(item, submittedAt, chat)
		}
		data.Chats = append(data.Chats, chat)
	}

	log.Debugf("Normalized submission: source=%s chats=%d contents=%d",
		source, len(data.Chats), data.ContentCount())
	return data, nil
}
