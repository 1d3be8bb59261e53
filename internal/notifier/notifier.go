package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	gateway "github.com/nimasrn/debt-ledger/internal/gateways"
	"github.com/nimasrn/debt-ledger/internal/model"
	"github.com/nimasrn/debt-ledger/internal/queue"
	"github.com/nimasrn/debt-ledger/pkg/logger"
	"github.com/nimasrn/debt-ledger/pkg/prom"
)

type Mailer interface {
	Send(ctx context.Context, req *gateway.MailRequest) (*gateway.MailResponse, error)
}

// DebtorNotifier turns debtor creation events into mails.
type DebtorNotifier struct {
	mailer           Mailer
	idempotency      *IdempotencyService
	defaultRecipient string
}

func NewDebtorNotifier(mailer Mailer, idempotency *IdempotencyService, defaultRecipient string) *DebtorNotifier {
	return &DebtorNotifier{
		mailer:           mailer,
		idempotency:      idempotency,
		defaultRecipient: defaultRecipient,
	}
}

func (n *DebtorNotifier) GetType() string {
	return "debtor.created"
}

// Process returns nil for events that must not be retried (malformed,
// duplicate or without recipient) and an error to leave the event pending.
func (n *DebtorNotifier) Process(ctx context.Context, msg *queue.Message) error {
	var event model.DebtorCreatedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil || event.EventID == "" {
		logger.Error("dropping malformed event", "id", msg.ID, "error", err)
		prom.RecordNotification("malformed")
		return nil
	}

	recipient := event.Recipient
	if recipient == "" {
		recipient = n.defaultRecipient
	}
	if recipient == "" {
		logger.Warn("no recipient for event, skipping", "event_id", event.EventID, "debtor_id", event.DebtorID)
		prom.RecordNotification("skipped")
		return nil
	}

	pc, err := n.idempotency.Acquire(ctx, event.EventID)
	if err != nil {
		if errors.Is(err, ErrAlreadyProcessed) {
			logger.Info("event already delivered", "event_id", event.EventID)
			prom.RecordNotification("duplicate")
			return nil
		}
		return err
	}
	defer func() { _ = n.idempotency.Release(ctx, pc) }()

	resp, err := n.mailer.Send(ctx, BuildMail(&event, recipient))
	if err != nil {
		prom.RecordNotification("failed")
		return fmt.Errorf("deliver event %s: %w", event.EventID, err)
	}

	if err := n.idempotency.MarkSuccess(ctx, pc); err != nil {
		logger.Error("failed to mark event delivered", "event_id", event.EventID, "error", err)
	}
	prom.RecordNotification("delivered")
	logger.Info("debtor notification sent",
		"event_id", event.EventID,
		"debtor_id", event.DebtorID,
		"relay", resp.Relay,
		"mail_id", resp.MessageID,
		"attempt", msg.Attempts,
	)
	return nil
}

func BuildMail(event *model.DebtorCreatedEvent, recipient string) *gateway.MailRequest {
	return &gateway.MailRequest{
		EventID: event.EventID,
		To:      recipient,
		Subject: "New Debtor Added",
		Body: fmt.Sprintf(
			"A new debtor has been added.\n\nDebtor ID: %s\nName: %s\nMobile: %s\nInitial debt: %s\nCreated by: %s\nCreated at: %s\n",
			event.DebtorID,
			event.Name,
			event.Mobile,
			event.InitialDebt.StringFixed(2),
			event.CreatedBy,
			event.OccurredAt.Format("2006-01-02 15:04:05 MST"),
		),
	}
}
