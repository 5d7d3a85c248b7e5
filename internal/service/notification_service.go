package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/events"
)

const webhookTimeout = 5 * time.Second

// NotificationService fans domain events out to the log and the configured webhook.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	httpClient *http.Client
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: webhookTimeout},
	}
}

// WebhookEnabled reports whether events are posted to a webhook.
func (n *NotificationService) WebhookEnabled() bool {
	return strings.TrimSpace(n.cfg.WebhookURL) != ""
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketCommentAdded, n.handleTicketCommentAdded)
}

func (n *NotificationService) handleUserRegistered(_ context.Context, event events.Event) error {
	n.logger.Info("UserRegistered", zap.Int64("user_id", event.Actor.UserID), zap.Any("payload", event.Payload))
	n.logEmailNotification(event)
	return nil
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.logEmailNotification(event)
	return n.postWebhook(ctx, event)
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketStatusChanged", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return n.postWebhook(ctx, event)
}

func (n *NotificationService) handleTicketCommentAdded(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCommentAdded", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.logEmailNotification(event)
	return n.postWebhook(ctx, event)
}

// logEmailNotification records the email that would be sent; there is no mail transport.
func (n *NotificationService) logEmailNotification(event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("email notification",
		zap.String("from", n.cfg.EmailFrom),
		zap.Int64("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}

// postWebhook sends the event as JSON. Any non-2xx answer is an error.
func (n *NotificationService) postWebhook(ctx context.Context, event events.Event) error {
	if !n.WebhookEnabled() {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode webhook event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Helpdesk-Event", string(event.Type))

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook answered %d", resp.StatusCode)
	}
	n.logger.Debug("webhook delivered",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))
	return nil
}
