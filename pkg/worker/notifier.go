package worker

import (
	"context"
	"encoding/json"

	"github.com/Majedzeyad/cancare-api/internal/document"
	"github.com/Majedzeyad/cancare-api/internal/email"
	"github.com/Majedzeyad/cancare-api/internal/repository"
	"github.com/Majedzeyad/cancare-api/pkg/logger"
	"github.com/Majedzeyad/cancare-api/pkg/messaging"
)

// Notifier consumes broker events and turns them into email notifications.
// Delivery is best effort: a failed send is logged and the event dropped, the
// broker does not redeliver.
type Notifier struct {
	broker messaging.Broker
	email  email.Service
	nurses repository.NurseRepository
	users  repository.UserRepository
	chats  repository.ChatRepository
	logger *logger.Logger
}

func NewNotifier(
	broker messaging.Broker,
	emailSvc email.Service,
	nurses repository.NurseRepository,
	users repository.UserRepository,
	chats repository.ChatRepository,
	log *logger.Logger,
) *Notifier {
	return &Notifier{
		broker: broker,
		email:  emailSvc,
		nurses: nurses,
		users:  users,
		chats:  chats,
		logger: log,
	}
}

// Run subscribes to both channels and blocks until the context is cancelled.
func (n *Notifier) Run(ctx context.Context) error {
	decisions, err := n.broker.Subscribe(ctx, messaging.ChannelOverrideDecided)
	if err != nil {
		return err
	}
	messages, err := n.broker.Subscribe(ctx, messaging.ChannelChatMessage)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-decisions:
			if !ok {
				return nil
			}
			n.handleOverrideDecided(ctx, raw)
		case raw, ok := <-messages:
			if !ok {
				return nil
			}
			n.handleChatMessage(ctx, raw)
		}
	}
}

func (n *Notifier) handleOverrideDecided(ctx context.Context, raw []byte) {
	payload, ok := n.decode(raw)
	if !ok {
		return
	}

	decision := document.Override(document.Str(payload, "id", ""), payload)
	nurse, err := n.nurses.Get(ctx, decision.NurseID)
	if err != nil {
		n.logger.Warn("dropping override notification, nurse lookup failed",
			"nurse_id", decision.NurseID.String())
		return
	}

	err = n.email.SendOverrideDecision(ctx, nurse.Email,
		decision.Medication, decision.RequestedDosage, decision.Status)
	if err != nil {
		n.logger.Error(err, "failed to send override decision email",
			"request_id", decision.ID.String())
	}
}

func (n *Notifier) handleChatMessage(ctx context.Context, raw []byte) {
	payload, ok := n.decode(raw)
	if !ok {
		return
	}

	msg := document.Message(document.Str(payload, "id", ""), payload)
	members, err := n.chats.Members(ctx, msg.ChatID)
	if err != nil {
		n.logger.Warn("dropping chat notification, member lookup failed",
			"chat_id", msg.ChatID.String())
		return
	}

	for _, memberID := range members {
		if memberID == msg.SenderID {
			continue
		}
		user, err := n.users.Get(ctx, memberID)
		if err != nil {
			continue
		}
		err = n.email.SendNewMessage(ctx, user.Email, msg.SenderName, msg.ChatID.String())
		if err != nil {
			n.logger.Error(err, "failed to send chat notification email",
				"message_id", msg.ID.String(), "member_id", memberID.String())
		}
	}
}

func (n *Notifier) decode(raw []byte) (map[string]interface{}, bool) {
	var env messaging.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		n.logger.Warn("dropping undecodable broker message")
		return nil, false
	}
	return env.Payload, true
}
