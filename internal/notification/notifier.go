package notification

import (
	"context"
	"log/slog"

	"github.com/workstack/workforce-management/internal/core/events"
)

// Notifier consumes status-change events and hands them to the delivery
// collaborator. Delivery is fire-and-forget; email/webhook transport lives
// outside this service, so the default sender only logs.
type Notifier struct {
	sender Sender
	logger *slog.Logger
}

type Sender interface {
	Send(ctx context.Context, recipientID int64, subject string, body map[string]interface{}) error
}

func NewNotifier(sender Sender, logger *slog.Logger) *Notifier {
	if sender == nil {
		sender = &logSender{logger: logger}
	}
	return &Notifier{sender: sender, logger: logger}
}

// Register subscribes the notifier to the bus.
func (n *Notifier) Register(bus *events.Bus) {
	bus.Subscribe(events.EventTypeStatusChanged, n.handleStatusChanged)
}

func (n *Notifier) handleStatusChanged(ctx context.Context, event events.Event) error {
	data, ok := event.Payload().(map[string]interface{})
	if !ok {
		return nil
	}

	ownerID, _ := data["owner_id"].(int64)
	subject := "Your " + asString(data["record_type"]) + " is now " + asString(data["to"])

	if err := n.sender.Send(ctx, ownerID, subject, data); err != nil {
		n.logger.Error("notification delivery failed",
			"event_id", event.EventID(),
			"owner_id", ownerID,
			"error", err)
		return err
	}
	return nil
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

type logSender struct {
	logger *slog.Logger
}

func (s *logSender) Send(_ context.Context, recipientID int64, subject string, body map[string]interface{}) error {
	s.logger.Info("dispatching notification",
		"recipient_id", recipientID,
		"subject", subject,
		"record_type", body["record_type"],
		"record_id", body["record_id"])
	return nil
}
