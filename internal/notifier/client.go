package notifier

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/vinylfunders/vf-presale-engine/internal/adapter"
)

// Config holds mailer service client configuration
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// sendRequest is the mailer service send payload
type sendRequest struct {
	Recipient string            `json:"recipient"`
	Template  string            `json:"template"`
	Params    map[string]string `json:"params"`
}

// client implements Notifier against the VinylFunders mailer service
type client struct {
	httpClient adapter.HTTPClient
	baseURL    string
	apiKey     string
}

// NewClient creates a new mailer service client
func NewClient(httpClient adapter.HTTPClient, cfg Config) Notifier {
	return &client{
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
	}
}

// Send delivers one transactional email
func (c *client) Send(ctx context.Context, recipient string, template TemplateKey, params map[string]string) error {
	url := fmt.Sprintf("%s/v1/emails", c.baseURL)
	headers := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}

	payload := sendRequest{
		Recipient: recipient,
		Template:  string(template),
		Params:    params,
	}

	body, statusCode, err := c.httpClient.PostJSON(ctx, url, headers, payload)
	if err != nil {
		return fmt.Errorf("failed to call mailer service: %w", err)
	}

	if statusCode != http.StatusOK && statusCode != http.StatusAccepted {
		return fmt.Errorf("mailer service returned %d: %s", statusCode, string(body))
	}

	return nil
}
