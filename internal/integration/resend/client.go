package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/metrix-hardline/subscription-service/pkg/logger"
)

const defaultBaseURL = "https://api.resend.com"

// Client представляет клиент для работы с API Resend
type Client struct {
	baseURL    string
	apiKey     string
	from       string
	httpClient *http.Client
	log        *logger.Logger
}

// Config конфигурация для клиента Resend
type Config struct {
	APIKey  string
	From    string
	BaseURL string
}

// emailRequest тело запроса отправки письма
type emailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// errorResponse тело ответа об ошибке от API Resend
type errorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// NewClient создает новый клиент Resend
func NewClient(cfg Config, log *logger.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		from:    cfg.From,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// Send отправляет письмо с HTML-телом указанному получателю
func (c *Client) Send(ctx context.Context, to, subject, html string) error {
	body, err := json.Marshal(emailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/emails",
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorResponse
		raw, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("resend API error: %d %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("resend API error: %d %s", resp.StatusCode, string(raw))
	}

	c.log.Debugw("Email sent", "to", to, "subject", subject)
	return nil
}
