package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/aurify/api/internal/config"
)

// NotificationSender defines the interface for push notification dispatch
type NotificationSender interface {
	SendToTopic(ctx context.Context, topic, title, body string) error
}

// PushClient implements NotificationSender against an FCM legacy HTTP
// endpoint. Delivery is fire-and-forget: the caller learns whether the push
// service accepted the message, not whether any device received it.
type PushClient struct {
	httpClient *http.Client
	baseURL    string
	serverKey  string
}

type pushNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type pushRequest struct {
	To           string           `json:"to"`
	Notification pushNotification `json:"notification"`
}

// NewPushClient creates a new push notification client
func NewPushClient(cfg *config.PushConfig) *PushClient {
	return &PushClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:   cfg.BaseURL,
		serverKey: cfg.ServerKey,
	}
}

// SendToTopic pushes one notification to all subscribers of the topic
func (c *PushClient) SendToTopic(ctx context.Context, topic, title, body string) error {
	reqBody := pushRequest{
		To: "/topics/" + topic,
		Notification: pushNotification{
			Title: title,
			Body:  body,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/fcm/send", bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.serverKey)

	log.Printf("[Push API] → topic=%s title=%q", topic, title)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// IsConfigured returns true if the client has valid configuration
func (c *PushClient) IsConfigured() bool {
	return c.serverKey != ""
}
