package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

// SubmittedChat summarizes one scored chat for the submission service
type SubmittedChat struct {
	ChatID           string `json:"chat_id"`
	MessageCount     int    `json:"message_count"`
	ParticipantCount int    `json:"participant_count"`
	NewMessageCount  int    `json:"new_message_count"`
}

// SubmissionPayload is the record handed back to the submission service
// after scoring: the updated filter blob plus per-chat summaries
type SubmissionPayload struct {
	User        string          `json:"user"`
	Source      string          `json:"source"`
	SubmittedOn string          `json:"submitted_on"`
	Filter      string          `json:"filter"` // base64 uniqueness filter
	Chats       []SubmittedChat `json:"chats"`
}

type historicalDataResponse struct {
	Filter string `json:"filter"`
}

// SubmissionClient talks to the external submission/historical-data service,
// the owner of persisted uniqueness filter state
type SubmissionClient struct {
	baseURL string
	client  *http.Client
}

// NewSubmissionClient creates a client for the submission service
func NewSubmissionClient(baseURL string, timeout time.Duration) *SubmissionClient {
	return &SubmissionClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// GetHistoricalData fetches the serialized uniqueness filter for a
// (user, source) scope. A first-time submitter yields an empty blob,
// which callers treat as an empty filter.
func (c *SubmissionClient) GetHistoricalData(ctx context.Context, user, source string) (string, error) {
	if c.baseURL == "" {
		return "", nil
	}

	endpoint := fmt.Sprintf("%s/submissions/historical?user=%s&source=%s",
		c.baseURL, url.QueryEscape(user), url.QueryEscape(source))

	var blob string
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			log.Warnf("Historical data request failed, will retry: %v", err)
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			var parsed historicalDataResponse
			if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
				return backoff.Permanent(err)
			}
			blob = parsed.Filter
			return nil
		case resp.StatusCode == http.StatusNotFound:
			// First-time submitter
			blob = ""
			return nil
		case resp.StatusCode >= 500:
			return fmt.Errorf("submission service returned %d", resp.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("submission service returned %d", resp.StatusCode))
		}
	}

	backOff := backoff.NewExponentialBackOff()
	backOff.MaxElapsedTime = 10 * time.Second
	if err := backoff.Retry(operation, backoff.WithContext(backOff, ctx)); err != nil {
		return "", infraErr("submission", err)
	}
	return blob, nil
}

// SubmitData hands the updated filter and chat summaries back to the
// submission service for persistence
func (c *SubmissionClient) SubmitData(ctx context.Context, payload *SubmissionPayload) error {
	if c.baseURL == "" {
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return infraErr("submission", err)
	}

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/submissions", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			log.Warnf("Submission request failed, will retry: %v", err)
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			io.Copy(io.Discard, resp.Body)
			return nil
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("submission service returned %d", resp.StatusCode)
		}
		return backoff.Permanent(fmt.Errorf("submission service returned %d", resp.StatusCode))
	}

	backOff := backoff.NewExponentialBackOff()
	backOff.MaxElapsedTime = 10 * time.Second
	if err := backoff.Retry(operation, backoff.WithContext(backOff, ctx)); err != nil {
		return infraErr("submission", err)
	}

	log.Debugf("Submitted proof data for user=%s source=%s chats=%d",
		payload.User, payload.Source, len(payload.Chats))
	return nil
}
