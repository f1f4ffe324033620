package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"go-cto/internal/events"
	"go-cto/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeApplicationLifecycle turns application lifecycle events into
// notification mail. Delivery is best effort: a send failure is logged and
// the message is committed anyway, because the business decision that
// produced the event has long since been committed.
func ConsumeApplicationLifecycle(
	ctx context.Context,
	reader *kafkago.Reader,
	mailer notification.Mailer,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.application_lifecycle")
	log.Info("application lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("application lifecycle consumer stopped")
				return
			}
			log.Error("fetch application lifecycle message failed", zap.Error(err))
			continue
		}

		var event events.ApplicationLifecycleEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode application lifecycle event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		mail := buildMail(event)
		if err := mailer.Send(ctx, mail); err != nil {
			log.Error("send notification mail failed",
				zap.String("application_id", event.ApplicationID),
				zap.String("kind", event.Kind),
				zap.String("to", mail.To),
				zap.Error(err),
			)
		} else {
			log.Info("notification mail sent",
				zap.String("application_id", event.ApplicationID),
				zap.String("kind", event.Kind),
				zap.String("to", mail.To),
			)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit application lifecycle message failed", zap.Error(err))
		}
	}
}

func buildMail(event events.ApplicationLifecycleEvent) notification.Message {
	switch event.Kind {
	case events.KindNextApprover:
		return notification.Message{
			To:      event.ApproverEmail,
			Subject: fmt.Sprintf("CTO application awaiting your approval (level %d)", event.Level),
			Body: fmt.Sprintf(
				"%s applied for %.2f CTO hours. The application is now waiting for your level %d decision.",
				event.EmployeeName, event.RequestedHours, event.Level,
			),
		}
	case events.KindFinalApproval:
		return notification.Message{
			To:      event.EmployeeEmail,
			Subject: "Your CTO application has been approved",
			Body: fmt.Sprintf(
				"Your application for %.2f CTO hours has been approved at every level. The hours have been deducted from your balance.",
				event.RequestedHours,
			),
		}
	case events.KindRejection:
		body := fmt.Sprintf("Your application for %.2f CTO hours has been rejected.", event.RequestedHours)
		if event.Remarks != "" {
			body += "\n\nRemarks: " + event.Remarks
		}
		return notification.Message{
			To:      event.EmployeeEmail,
			Subject: "Your CTO application has been rejected",
			Body:    body,
		}
	default:
		return notification.Message{
			To:      event.EmployeeEmail,
			Subject: "CTO application update",
			Body:    fmt.Sprintf("Your CTO application %s was updated.", event.ApplicationID),
		}
	}
}
