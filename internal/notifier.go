package internal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// Notifier delivers payloads to a Mattermost incoming webhook.
type Notifier struct {
	client *http.Client
}

// NewNotifier returns a Notifier using the supplied HTTP client, or
// http.DefaultClient when nil.
func NewNotifier(client *http.Client) *Notifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &Notifier{client: client}
}

// Send transmits the payload in a single POST with a JSON body. Status 200
// is the only success; any other status is a DeliveryError carrying the
// response status line. There are no retries.
func (n *Notifier) Send(ctx context.Context, webhookURL string, payload Payload) error {
	body, err := payload.Encode()
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post to webhook: %w", err)
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	if res.StatusCode != http.StatusOK {
		return &DeliveryError{Status: res.Status}
	}
	return nil
}
