package reminder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"resty.dev/v3"
)

const DefaultWebhookAttempts = 3

// WebhookPayload is the JSON body posted for each reminder.
type WebhookPayload struct {
	UserID int64  `json:"user_id"`
	Count  int    `json:"count"`
	Text   string `json:"text"`
}

// WebhookNotifier posts reminders to an HTTP endpoint, retrying server errors
// and rate limiting with exponential backoff.
type WebhookNotifier struct {
	httpClient *resty.Client
	url        string
	attempts   uint
	delay      time.Duration
}

// NewWebhookNotifier posts to url. A non-empty token is sent as a bearer token.
func NewWebhookNotifier(url, token string, attempts int) *WebhookNotifier {
	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	if token != "" {
		client.SetAuthToken(token)
	}
	if attempts <= 0 {
		attempts = DefaultWebhookAttempts
	}
	return &WebhookNotifier{
		httpClient: client,
		url:        url,
		attempts:   uint(attempts),
		delay:      200 * time.Millisecond,
	}
}

func (n *WebhookNotifier) Close() error {
	return n.httpClient.Close()
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("response error %d: %s", e.code, e.body)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func (n *WebhookNotifier) NotifyDue(ctx context.Context, userID int64, count int) error {
	payload := WebhookPayload{UserID: userID, Count: count, Text: reminderText(count)}
	return retry.Do(
		func() error {
			err := n.post(ctx, payload)
			var se *statusError
			if errors.As(err, &se) && !isRetryableStatus(se.code) {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(n.attempts),
		retry.Delay(n.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

func (n *WebhookNotifier) post(ctx context.Context, payload WebhookPayload) error {
	response, err := n.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return &statusError{code: response.StatusCode(), body: response.String()}
	}
	return nil
}
