package chat

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Majedzeyad/cancare-api/internal/model"
	"github.com/Majedzeyad/cancare-api/internal/service/identity"
	apperrors "github.com/Majedzeyad/cancare-api/pkg/errors"
	"github.com/Majedzeyad/cancare-api/pkg/logger"
	"github.com/Majedzeyad/cancare-api/pkg/metrics"
)

var (
	testMetrics = metrics.New("chat_test")
	testLogger  = logger.NewLogger(&logger.Config{Output: io.Discard})
)

// fakeChatRepo is an in-memory ChatRepository.
type fakeChatRepo struct {
	chats    map[uuid.UUID]*model.GroupChat
	members  map[uuid.UUID]map[uuid.UUID]bool
	messages map[uuid.UUID][]*model.Message
	listErr  error
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		chats:    map[uuid.UUID]*model.GroupChat{},
		members:  map[uuid.UUID]map[uuid.UUID]bool{},
		messages: map[uuid.UUID][]*model.Message{},
	}
}

func (f *fakeChatRepo) Create(ctx context.Context, chat *model.GroupChat) error {
	chat.CreatedAt = time.Now()
	f.chats[chat.ID] = chat
	return nil
}

func (f *fakeChatRepo) AddMember(ctx context.Context, chatID, memberID uuid.UUID) error {
	if f.members[chatID] == nil {
		f.members[chatID] = map[uuid.UUID]bool{}
	}
	// Append-only: re-adding is a no-op.
	f.members[chatID][memberID] = true
	return nil
}

func (f *fakeChatRepo) IsMember(ctx context.Context, chatID, memberID uuid.UUID) (bool, error) {
	return f.members[chatID][memberID], nil
}

func (f *fakeChatRepo) Members(ctx context.Context, chatID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for id := range f.members[chatID] {
		out = append(out, id)
	}
	return out, nil
}

func (f *fakeChatRepo) ListForMember(ctx context.Context, memberID uuid.UUID) ([]*model.GroupChat, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*model.GroupChat
	for id, chat := range f.chats {
		if f.members[id][memberID] {
			out = append(out, chat)
		}
	}
	return out, nil
}

func (f *fakeChatRepo) ListMessages(ctx context.Context, chatID uuid.UUID) ([]*model.Message, error) {
	return f.messages[chatID], nil
}

func (f *fakeChatRepo) AppendMessage(ctx context.Context, msg *model.Message) error {
	msg.CreatedAt = time.Now()
	f.messages[msg.ChatID] = append(f.messages[msg.ChatID], msg)
	return nil
}

func (f *fakeChatRepo) MarkRead(ctx context.Context, chatID, memberID uuid.UUID) error {
	for _, msg := range f.messages[chatID] {
		if _, seen := msg.ReadBy[memberID.String()]; !seen {
			msg.ReadBy[memberID.String()] = time.Now()
		}
	}
	return nil
}

type fakeBroker struct {
	published []string
	err       error
}

func (f *fakeBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, channel)
	return nil
}

func (f *fakeBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeBroker) Close() error { return nil }

func callerCtx(id uuid.UUID, name string) context.Context {
	return identity.WithCaller(context.Background(), identity.Caller{
		ID: id, Name: name, Role: model.RoleDoctor,
	})
}

func TestCreateAddsCreatorAsMember(t *testing.T) {
	repo := newFakeChatRepo()
	svc := NewService(repo, &fakeBroker{}, testMetrics, testLogger)
	creator := uuid.New()

	chat, err := svc.Create(callerCtx(creator, "Dr. Who"), "care team")

	require.NoError(t, err)
	member, err := repo.IsMember(context.Background(), chat.ID, creator)
	require.NoError(t, err)
	assert.True(t, member)
}

func TestJoinIsIdempotent(t *testing.T) {
	repo := newFakeChatRepo()
	svc := NewService(repo, &fakeBroker{}, testMetrics, testLogger)
	creator, joiner := uuid.New(), uuid.New()

	chat, err := svc.Create(callerCtx(creator, "Dr. Who"), "care team")
	require.NoError(t, err)

	require.NoError(t, svc.Join(callerCtx(joiner, "Nina"), chat.ID))
	require.NoError(t, svc.Join(callerCtx(joiner, "Nina"), chat.ID))

	members, err := repo.Members(context.Background(), chat.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestSendSeedsReadByWithSender(t *testing.T) {
	repo := newFakeChatRepo()
	svc := NewService(repo, &fakeBroker{}, testMetrics, testLogger)
	sender := uuid.New()

	chat, err := svc.Create(callerCtx(sender, "Dr. Who"), "care team")
	require.NoError(t, err)

	msg, err := svc.Send(callerCtx(sender, "Dr. Who"), chat.ID, "hello")

	require.NoError(t, err)
	assert.Contains(t, msg.ReadBy, sender.String())
	assert.Len(t, msg.ReadBy, 1)
	assert.Equal(t, "Dr. Who", msg.SenderName)
}

func TestSendRejectsNonMembers(t *testing.T) {
	repo := newFakeChatRepo()
	svc := NewService(repo, &fakeBroker{}, testMetrics, testLogger)

	chat, err := svc.Create(callerCtx(uuid.New(), "Dr. Who"), "care team")
	require.NoError(t, err)

	_, err = svc.Send(callerCtx(uuid.New(), "Outsider"), chat.ID, "hello")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrForbidden, appErr.Code)
}

func TestSendPublishesNotification(t *testing.T) {
	repo := newFakeChatRepo()
	broker := &fakeBroker{}
	svc := NewService(repo, broker, testMetrics, testLogger)
	sender := uuid.New()

	chat, err := svc.Create(callerCtx(sender, "Dr. Who"), "care team")
	require.NoError(t, err)

	_, err = svc.Send(callerCtx(sender, "Dr. Who"), chat.ID, "hello")

	require.NoError(t, err)
	assert.Equal(t, []string{"chat.message"}, broker.published)
}

func TestSendSurvivesBrokerFailure(t *testing.T) {
	repo := newFakeChatRepo()
	svc := NewService(repo, &fakeBroker{err: errors.New("redis down")}, testMetrics, testLogger)
	sender := uuid.New()

	chat, err := svc.Create(callerCtx(sender, "Dr. Who"), "care team")
	require.NoError(t, err)

	msg, err := svc.Send(callerCtx(sender, "Dr. Who"), chat.ID, "hello")

	require.NoError(t, err)
	assert.NotNil(t, msg)
}

func TestMessagesHiddenFromNonMembers(t *testing.T) {
	repo := newFakeChatRepo()
	svc := NewService(repo, &fakeBroker{}, testMetrics, testLogger)
	sender := uuid.New()

	chat, err := svc.Create(callerCtx(sender, "Dr. Who"), "care team")
	require.NoError(t, err)
	_, err = svc.Send(callerCtx(sender, "Dr. Who"), chat.ID, "hello")
	require.NoError(t, err)

	result := svc.Messages(callerCtx(uuid.New(), "Outsider"), chat.ID)

	assert.False(t, result.Degraded())
	assert.Empty(t, result.Value)
}

func TestMarkReadStampsUnreadMessages(t *testing.T) {
	repo := newFakeChatRepo()
	svc := NewService(repo, &fakeBroker{}, testMetrics, testLogger)
	sender, reader := uuid.New(), uuid.New()

	chat, err := svc.Create(callerCtx(sender, "Dr. Who"), "care team")
	require.NoError(t, err)
	require.NoError(t, svc.Join(callerCtx(reader, "Nina"), chat.ID))
	_, err = svc.Send(callerCtx(sender, "Dr. Who"), chat.ID, "hello")
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(callerCtx(reader, "Nina"), chat.ID))

	result := svc.Messages(callerCtx(reader, "Nina"), chat.ID)
	require.Len(t, result.Value, 1)
	assert.Contains(t, result.Value[0].ReadBy, sender.String())
	assert.Contains(t, result.Value[0].ReadBy, reader.String())
}

func TestUnreadCountsOnlyUnseenMessages(t *testing.T) {
	repo := newFakeChatRepo()
	svc := NewService(repo, &fakeBroker{}, testMetrics, testLogger)
	sender, reader := uuid.New(), uuid.New()

	chat, err := svc.Create(callerCtx(sender, "Dr. Who"), "care team")
	require.NoError(t, err)
	require.NoError(t, svc.Join(callerCtx(reader, "Nina"), chat.ID))
	_, err = svc.Send(callerCtx(sender, "Dr. Who"), chat.ID, "first")
	require.NoError(t, err)
	_, err = svc.Send(callerCtx(sender, "Dr. Who"), chat.ID, "second")
	require.NoError(t, err)

	// Sender's own messages are pre-seeded as read.
	senderResult := svc.Unread(callerCtx(sender, "Dr. Who"), chat.ID)
	require.False(t, senderResult.Degraded())
	assert.Equal(t, 0, senderResult.Value)

	readerResult := svc.Unread(callerCtx(reader, "Nina"), chat.ID)
	require.False(t, readerResult.Degraded())
	assert.Equal(t, 2, readerResult.Value)

	require.NoError(t, svc.MarkRead(callerCtx(reader, "Nina"), chat.ID))
	afterRead := svc.Unread(callerCtx(reader, "Nina"), chat.ID)
	assert.Equal(t, 0, afterRead.Value)
}

func TestUnreadZeroForNonMembers(t *testing.T) {
	repo := newFakeChatRepo()
	svc := NewService(repo, &fakeBroker{}, testMetrics, testLogger)
	sender := uuid.New()

	chat, err := svc.Create(callerCtx(sender, "Dr. Who"), "care team")
	require.NoError(t, err)
	_, err = svc.Send(callerCtx(sender, "Dr. Who"), chat.ID, "hello")
	require.NoError(t, err)

	result := svc.Unread(callerCtx(uuid.New(), "Outsider"), chat.ID)

	assert.False(t, result.Degraded())
	assert.Equal(t, 0, result.Value)
}

func TestListDegradesOnStoreFailure(t *testing.T) {
	repo := newFakeChatRepo()
	repo.listErr = errors.New("connection refused")
	svc := NewService(repo, &fakeBroker{}, testMetrics, testLogger)

	result := svc.List(callerCtx(uuid.New(), "Dr. Who"))

	assert.True(t, result.Degraded())
	assert.Empty(t, result.Value)
}
