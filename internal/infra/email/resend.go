package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"contactdesk/internal/common"
	"contactdesk/internal/domain/notification"
)

var _ notification.Transport = (*ResendProvider)(nil)

// ResendProvider sends emails using the Resend API.
type ResendProvider struct {
	apiKey      string
	endpoint    string
	fromAddress string
	fromName    string
	httpClient  *http.Client
}

const resendEndpoint = "https://api.resend.com/emails"

// NewResendProvider creates a new Resend email provider.
func NewResendProvider(apiKey, fromAddress, fromName string) *ResendProvider {
	return &ResendProvider{
		apiKey:      apiKey,
		endpoint:    resendEndpoint,
		fromAddress: fromAddress,
		fromName:    fromName,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Name identifies the transport.
func (p *ResendProvider) Name() string {
	return "resend"
}

// WithEndpoint points the provider at a different API URL.
func (p *ResendProvider) WithEndpoint(endpoint string) *ResendProvider {
	p.endpoint = endpoint
	return p
}

// Send delivers an email via the Resend API and returns the message ID.
// msg.From, when set, takes precedence over the configured sender address.
func (p *ResendProvider) Send(ctx context.Context, msg *notification.Message) (string, error) {
	address := p.fromAddress
	if msg.From != "" {
		address = msg.From
	}
	from := address
	if p.fromName != "" {
		from = fmt.Sprintf("%s <%s>", p.fromName, address)
	}

	payload := map[string]any{
		"from":    from,
		"to":      []string{msg.To},
		"subject": msg.Subject,
		"html":    msg.HTML,
	}

	// Include plain-text version if available
	if msg.Text != "" {
		payload["text"] = msg.Text
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Message    string `json:"message"`
			StatusCode int    `json:"statusCode"`
		}
		_ = json.Unmarshal(respBody, &errResp)

		msg := errResp.Message
		if msg == "" {
			msg = fmt.Sprintf("resend API error: status %d", resp.StatusCode)
		}
		return "", common.NewProviderError(p.Name(), msg)
	}

	var successResp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &successResp); err != nil {
		return "", fmt.Errorf("parsing resend response: %w", err)
	}

	return successResp.ID, nil
}
