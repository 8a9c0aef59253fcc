package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-backend/models"
)

const resendEndpoint = "https://api.resend.com/emails"

// ResendEmailRequest represents the request payload for Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// ResendEmailResponse represents the response from Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

// Notifier emails the site owner when the project collection changes. A nil
// *Notifier is valid and sends nothing.
type Notifier struct {
	apiKey     string
	from       string
	recipients []string
	endpoint   string
	client     *http.Client
	timeout    time.Duration
	logger     zerolog.Logger
}

type NotifierOption func(*Notifier)

// WithEndpoint points the notifier at another Resend-compatible URL.
func WithEndpoint(endpoint string) NotifierOption {
	return func(n *Notifier) {
		n.endpoint = endpoint
	}
}

func WithHTTPClient(client *http.Client) NotifierOption {
	return func(n *Notifier) {
		n.client = client
	}
}

func NewNotifier(apiKey, from string, recipients []string, opts ...NotifierOption) *Notifier {
	n := &Notifier{
		apiKey:     apiKey,
		from:       from,
		recipients: recipients,
		endpoint:   resendEndpoint,
		client:     &http.Client{Timeout: 15 * time.Second},
		timeout:    20 * time.Second,
		logger:     log.With().Str("component", "notifier").Logger(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// ProjectCreated sends a notification for p in the background
func (n *Notifier) ProjectCreated(p models.Project) {
	if n == nil {
		return
	}
	subject := fmt.Sprintf("Portfolio: project %q added", p.Title)
	body := fmt.Sprintf("<p>Project <strong>%s</strong> was added.</p><p>%s</p><p><a href=\"%s\">%s</a></p><p>Technologies: %s</p>",
		html.EscapeString(p.Title),
		html.EscapeString(p.Description),
		html.EscapeString(p.GithubLink),
		html.EscapeString(p.GithubLink),
		html.EscapeString(strings.Join(p.Technologies, ", ")),
	)
	n.sendAsync(subject, body)
}

// ProjectDeleted sends a notification for the removed project in the background
func (n *Notifier) ProjectDeleted(receipt models.DeleteReceipt) {
	if n == nil {
		return
	}
	subject := fmt.Sprintf("Portfolio: project %s deleted", receipt.ID)
	body := fmt.Sprintf("<p>Project <code>%s</code> was deleted.</p>", html.EscapeString(receipt.ID))
	if receipt.VideoError != "" {
		body += fmt.Sprintf("<p>Its video could not be removed: %s</p>", html.EscapeString(receipt.VideoError))
	}
	n.sendAsync(subject, body)
}

func (n *Notifier) sendAsync(subject, body string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.SendEmail(ctx, subject, body); err != nil {
			n.logger.Error().Err(err).Str("subject", subject).Msg("Failed to send notification email")
		}
	}()
}

// SendEmail sends an email using the Resend API
func (n *Notifier) SendEmail(ctx context.Context, subject, body string) error {
	if len(n.recipients) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}

	// Build the Resend API payload
	payload := ResendEmailRequest{
		From:    n.from,
		To:      n.recipients,
		Subject: subject,
		Html:    body,
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create Resend API request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to Resend API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Resend API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ResendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil && errorResp.Message != "" {
			return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, errorResp.Message)
		}
		return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var emailResponse ResendEmailResponse
	if err := json.Unmarshal(bodyBytes, &emailResponse); err != nil {
		n.logger.Warn().Err(err).Msg("Failed to parse Resend email response, but email was sent")
	} else {
		n.logger.Info().Str("emailId", emailResponse.ID).Msg("Successfully sent email via Resend")
	}

	return nil
}
