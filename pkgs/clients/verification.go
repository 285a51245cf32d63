package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	log "github.com/sirupsen/logrus"
)

// VerifyTokenResult is the identity service's answer for one token
type VerifyTokenResult struct {
	Valid bool   `json:"valid"`
	User  string `json:"user,omitempty"`
	Error string `json:"error,omitempty"`
}

// VerificationClient talks to the external identity/auth service
type VerificationClient struct {
	baseURL string
	client  *http.Client
}

// NewVerificationClient creates a client for the token verification service
func NewVerificationClient(baseURL string, timeout time.Duration) *VerificationClient {
	return &VerificationClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type verifyTokenRequest struct {
	Token string `json:"token"`
	User  string `json:"user"`
}

// VerifyToken asks the identity service whether the submission token is
// valid and unexpired for the given user. An invalid token is a regular
// result, not an error; transport failures and 5xx responses surface as
// InfrastructureError after bounded retries.
func (c *VerificationClient) VerifyToken(ctx context.Context, token, user string) (*VerifyTokenResult, error) {
	if c.baseURL == "" {
		log.Debug("Verification service not configured, treating token as unverified")
		return &VerifyTokenResult{Valid: false}, nil
	}

	body, err := json.Marshal(&verifyTokenRequest{Token: token, User: user})
	if err != nil {
		return nil, infraErr("verification", err)
	}

	backoff := retry.NewFibonacci(100 * time.Millisecond)
	backoff = retry.WithMaxRetries(3, backoff)
	backoff = retry.WithJitter(50*time.Millisecond, backoff)

	var result VerifyTokenResult
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/verify", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			log.Warnf("Verification request failed, will retry: %v", err)
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			return json.NewDecoder(resp.Body).Decode(&result)
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			// The service rejected the token; that is an answer, not an outage
			result = VerifyTokenResult{Valid: false}
			return nil
		case resp.StatusCode >= 500:
			log.Warnf("Verification service returned %d, will retry", resp.StatusCode)
			return retry.RetryableError(fmt.Errorf("verification service returned %d", resp.StatusCode))
		default:
			return fmt.Errorf("verification service returned %d", resp.StatusCode)
		}
	})
	if err != nil {
		return nil, infraErr("verification", err)
	}

	return &result, nil
}
