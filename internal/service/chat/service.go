package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Majedzeyad/cancare-api/internal/model"
	"github.com/Majedzeyad/cancare-api/internal/repository"
	"github.com/Majedzeyad/cancare-api/internal/service/identity"
	apperrors "github.com/Majedzeyad/cancare-api/pkg/errors"
	"github.com/Majedzeyad/cancare-api/pkg/logger"
	"github.com/Majedzeyad/cancare-api/pkg/messaging"
	"github.com/Majedzeyad/cancare-api/pkg/metrics"
	"github.com/Majedzeyad/cancare-api/pkg/readresult"
)

// Service implements care-team group chats. Membership is append-only and
// messages are immutable once sent.
type Service struct {
	repo    repository.ChatRepository
	broker  messaging.Broker
	metrics *metrics.Metrics
	logger  *logger.Logger
}

func NewService(repo repository.ChatRepository, broker messaging.Broker, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		broker:  broker,
		metrics: m,
		logger:  log,
	}
}

// Create opens a new group chat with the caller as first member.
func (s *Service) Create(ctx context.Context, name string) (*model.GroupChat, error) {
	caller, ok := identity.CallerFrom(ctx)
	if !ok {
		return nil, apperrors.NewUnauthorized(nil)
	}

	chat := &model.GroupChat{
		Base:      model.Base{ID: uuid.New()},
		Name:      name,
		CreatedBy: caller.ID,
	}

	s.metrics.WritesTotal.WithLabelValues("chat.create").Inc()
	if err := s.repo.Create(ctx, chat); err != nil {
		s.metrics.WriteFailues.WithLabelValues("chat.create").Inc()
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}
	if err := s.repo.AddMember(ctx, chat.ID, caller.ID); err != nil {
		return nil, fmt.Errorf("failed to add creator to chat: %w", err)
	}
	chat.MemberIDs = []uuid.UUID{caller.ID}
	return chat, nil
}

// Join adds the caller to a chat. Joining twice is a no-op; leaving is not
// modeled.
func (s *Service) Join(ctx context.Context, chatID uuid.UUID) error {
	caller, ok := identity.CallerFrom(ctx)
	if !ok {
		return apperrors.NewUnauthorized(nil)
	}

	s.metrics.WritesTotal.WithLabelValues("chat.join").Inc()
	if err := s.repo.AddMember(ctx, chatID, caller.ID); err != nil {
		s.metrics.WriteFailues.WithLabelValues("chat.join").Inc()
		return fmt.Errorf("failed to join chat: %w", err)
	}
	return nil
}

// List returns the caller's chats, most recently active first.
func (s *Service) List(ctx context.Context) readresult.Result[[]*model.GroupChat] {
	empty := []*model.GroupChat{}
	s.metrics.ReadsTotal.WithLabelValues("chat.list").Inc()

	caller, ok := identity.CallerFrom(ctx)
	if !ok {
		return readresult.Ok(empty)
	}

	chats, err := s.repo.ListForMember(ctx, caller.ID)
	if err != nil {
		s.metrics.ReadsDegraded.WithLabelValues("chat.list").Inc()
		s.logger.Error(err, "chat list degraded", "member_id", caller.ID.String())
		return readresult.Degraded(empty, "chat.list", err)
	}
	if chats == nil {
		chats = empty
	}
	return readresult.Ok(chats)
}

// Messages returns a chat's messages in chronological order. Non-members
// see the empty default, the same as no data.
func (s *Service) Messages(ctx context.Context, chatID uuid.UUID) readresult.Result[[]*model.Message] {
	empty := []*model.Message{}
	s.metrics.ReadsTotal.WithLabelValues("chat.messages").Inc()

	caller, ok := identity.CallerFrom(ctx)
	if !ok {
		return readresult.Ok(empty)
	}

	member, err := s.repo.IsMember(ctx, chatID, caller.ID)
	if err != nil {
		s.metrics.ReadsDegraded.WithLabelValues("chat.messages").Inc()
		s.logger.Error(err, "chat membership check degraded", "chat_id", chatID.String())
		return readresult.Degraded(empty, "chat.messages", err)
	}
	if !member {
		return readresult.Ok(empty)
	}

	messages, err := s.repo.ListMessages(ctx, chatID)
	if err != nil {
		s.metrics.ReadsDegraded.WithLabelValues("chat.messages").Inc()
		s.logger.Error(err, "message list degraded", "chat_id", chatID.String())
		return readresult.Degraded(empty, "chat.messages", err)
	}
	if messages == nil {
		messages = empty
	}
	return readresult.Ok(messages)
}

// Send appends a message under the caller's identity. The read-by map is
// seeded with the sender so their own message never counts as unread.
func (s *Service) Send(ctx context.Context, chatID uuid.UUID, text string) (*model.Message, error) {
	caller, ok := identity.CallerFrom(ctx)
	if !ok {
		return nil, apperrors.NewUnauthorized(nil)
	}

	member, err := s.repo.IsMember(ctx, chatID, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check chat membership: %w", err)
	}
	if !member {
		return nil, apperrors.NewForbidden("caller is not a chat member")
	}

	msg := &model.Message{
		Base:       model.Base{ID: uuid.New()},
		ChatID:     chatID,
		SenderID:   caller.ID,
		SenderName: caller.Name,
		SenderRole: string(caller.Role),
		Text:       text,
		ReadBy:     map[string]time.Time{caller.ID.String(): time.Now()},
	}

	s.metrics.WritesTotal.WithLabelValues("chat.send").Inc()
	if err := s.repo.AppendMessage(ctx, msg); err != nil {
		s.metrics.WriteFailues.WithLabelValues("chat.send").Inc()
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	s.publishMessage(ctx, msg)
	return msg, nil
}

// Unread counts messages the caller has not yet read, computed from each
// message's read-by map. Non-members and unauthenticated callers see zero.
func (s *Service) Unread(ctx context.Context, chatID uuid.UUID) readresult.Result[int] {
	s.metrics.ReadsTotal.WithLabelValues("chat.unread").Inc()

	caller, ok := identity.CallerFrom(ctx)
	if !ok {
		return readresult.Ok(0)
	}

	member, err := s.repo.IsMember(ctx, chatID, caller.ID)
	if err != nil {
		s.metrics.ReadsDegraded.WithLabelValues("chat.unread").Inc()
		s.logger.Error(err, "chat membership check degraded", "chat_id", chatID.String())
		return readresult.Degraded(0, "chat.unread", err)
	}
	if !member {
		return readresult.Ok(0)
	}

	messages, err := s.repo.ListMessages(ctx, chatID)
	if err != nil {
		s.metrics.ReadsDegraded.WithLabelValues("chat.unread").Inc()
		s.logger.Error(err, "unread count degraded", "chat_id", chatID.String())
		return readresult.Degraded(0, "chat.unread", err)
	}

	count := 0
	key := caller.ID.String()
	for _, msg := range messages {
		if _, read := msg.ReadBy[key]; !read {
			count++
		}
	}
	return readresult.Ok(count)
}

// MarkRead stamps the caller into every unread message of the chat.
func (s *Service) MarkRead(ctx context.Context, chatID uuid.UUID) error {
	caller, ok := identity.CallerFrom(ctx)
	if !ok {
		return apperrors.NewUnauthorized(nil)
	}

	s.metrics.WritesTotal.WithLabelValues("chat.mark_read").Inc()
	if err := s.repo.MarkRead(ctx, chatID, caller.ID); err != nil {
		s.metrics.WriteFailues.WithLabelValues("chat.mark_read").Inc()
		return fmt.Errorf("failed to mark chat read: %w", err)
	}
	return nil
}

// publishMessage fans the message out for notification. The write already
// landed; broker failures are logged, not surfaced.
func (s *Service) publishMessage(ctx context.Context, msg *model.Message) {
	if s.broker == nil {
		return
	}
	err := s.broker.Publish(ctx, messaging.ChannelChatMessage, messaging.Envelope{
		Type: messaging.ChannelChatMessage,
		Payload: map[string]interface{}{
			"id":          msg.ID.String(),
			"chat_id":     msg.ChatID.String(),
			"sender_id":   msg.SenderID.String(),
			"sender_name": msg.SenderName,
			"sender_role": msg.SenderRole,
			"text":        msg.Text,
		},
	})
	if err != nil {
		s.metrics.MessagesFailed.Inc()
		s.logger.Error(err, "failed to publish chat message", "message_id", msg.ID.String())
		return
	}
	s.metrics.MessagesPublished.Inc()
}
