package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-dataset/internal/config"
	"github.com/spec-kit/ticket-dataset/internal/events"
)

// NotificationService reports pipeline runs to the log and, when a webhook
// is configured, to an external endpoint.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventRunStarted, n.handleRunStarted)
	n.dispatcher.Subscribe(events.EventRunCompleted, n.handleRunCompleted)
	n.dispatcher.Subscribe(events.EventRunFailed, n.handleRunFailed)
}

func (n *NotificationService) handleRunStarted(_ context.Context, event events.Event) error {
	n.logger.Info("RunStarted", zap.String("run_id", event.RunID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleRunCompleted(ctx context.Context, event events.Event) error {
	if p, ok := event.Payload.(events.RunCompletedPayload); ok {
		n.logger.Info("RunCompleted",
			zap.String("run_id", event.RunID),
			zap.Int("total", p.Report.Total),
			zap.Any("changes_by_rule", p.Report.ChangesByRule))
	} else {
		n.logger.Info("RunCompleted", zap.String("run_id", event.RunID))
	}
	return n.sendWebhook(ctx, event)
}

func (n *NotificationService) handleRunFailed(ctx context.Context, event events.Event) error {
	n.logger.Error("RunFailed", zap.String("run_id", event.RunID), zap.Any("payload", event.Payload))
	return n.sendWebhook(ctx, event)
}

func (n *NotificationService) sendWebhook(_ context.Context, event events.Event) error {
	url := strings.TrimSpace(n.cfg.WebhookURL)
	if url == "" {
		return nil
	}

	agent := fiber.Post(url).JSON(event)
	if timeout := n.cfg.WebhookTimeout(); timeout > 0 {
		agent = agent.Timeout(timeout)
	}
	start := time.Now()
	status, _, errs := agent.Bytes()
	if len(errs) > 0 {
		n.logger.Warn("webhook delivery failed", zap.String("event_type", string(event.Type)), zap.Errors("errors", errs))
		return fmt.Errorf("webhook %s: %w", event.Type, errs[0])
	}
	if status >= 300 {
		n.logger.Warn("webhook rejected", zap.String("event_type", string(event.Type)), zap.Int("status", status))
		return fmt.Errorf("webhook %s: status %d", event.Type, status)
	}
	n.logger.Debug("webhook delivered",
		zap.String("event_type", string(event.Type)),
		zap.String("run_id", event.RunID),
		zap.Duration("duration", time.Since(start)))
	return nil
}
