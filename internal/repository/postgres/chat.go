package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Majedzeyad/cancare-api/internal/document"
	"github.com/Majedzeyad/cancare-api/internal/model"
	"github.com/Majedzeyad/cancare-api/internal/repository"
)

type chatRepository struct {
	db *sqlx.DB
}

func NewChatRepository(db *sqlx.DB) repository.ChatRepository {
	return &chatRepository{db: db}
}

// messageRow carries the raw JSONB read-by column; decoding happens at the
// document boundary.
type messageRow struct {
	ID         uuid.UUID `db:"id"`
	ChatID     uuid.UUID `db:"chat_id"`
	SenderID   uuid.UUID `db:"sender_id"`
	SenderName string    `db:"sender_name"`
	SenderRole string    `db:"sender_role"`
	Text       string    `db:"text"`
	ReadBy     []byte    `db:"read_by"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (row *messageRow) toModel() *model.Message {
	return &model.Message{
		Base: model.Base{
			ID:        row.ID,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		},
		ChatID:     row.ChatID,
		SenderID:   row.SenderID,
		SenderName: row.SenderName,
		SenderRole: row.SenderRole,
		Text:       row.Text,
		ReadBy:     document.ReadByJSON(row.ReadBy),
	}
}

func (r *chatRepository) Create(ctx context.Context, chat *model.GroupChat) error {
	query := `
		INSERT INTO group_chats (id, name, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, chat.ID, chat.Name, chat.CreatedBy).
		Scan(&chat.CreatedAt, &chat.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create group chat: %w", err)
	}
	return nil
}

// AddMember is append-only; re-joining an existing member is a no-op.
func (r *chatRepository) AddMember(ctx context.Context, chatID, memberID uuid.UUID) error {
	query := `
		INSERT INTO group_chat_members (chat_id, member_id, joined_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (chat_id, member_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, chatID, memberID)
	if err != nil {
		return fmt.Errorf("failed to add chat member: %w", err)
	}
	return nil
}

func (r *chatRepository) IsMember(ctx context.Context, chatID, memberID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM group_chat_members WHERE chat_id = $1 AND member_id = $2)`
	var ok bool
	err := r.db.GetContext(ctx, &ok, query, chatID, memberID)
	if err != nil {
		return false, fmt.Errorf("failed to check chat membership: %w", err)
	}
	return ok, nil
}

func (r *chatRepository) Members(ctx context.Context, chatID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT member_id FROM group_chat_members WHERE chat_id = $1`
	var members []uuid.UUID
	err := r.db.SelectContext(ctx, &members, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat members: %w", err)
	}
	return members, nil
}

func (r *chatRepository) ListForMember(ctx context.Context, memberID uuid.UUID) ([]*model.GroupChat, error) {
	query := `
		SELECT c.* FROM group_chats c
		JOIN group_chat_members m ON m.chat_id = c.id
		WHERE m.member_id = $1
		ORDER BY c.updated_at DESC
	`
	var chats []*model.GroupChat
	err := r.db.SelectContext(ctx, &chats, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats for member: %w", err)
	}
	return chats, nil
}

func (r *chatRepository) ListMessages(ctx context.Context, chatID uuid.UUID) ([]*model.Message, error) {
	query := `SELECT * FROM messages WHERE chat_id = $1 ORDER BY created_at ASC`
	var rows []*messageRow
	err := r.db.SelectContext(ctx, &rows, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	messages := make([]*model.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, row.toModel())
	}
	return messages, nil
}

// AppendMessage persists an immutable message with a store-clock timestamp.
// The caller seeds ReadBy with the sender before the write.
func (r *chatRepository) AppendMessage(ctx context.Context, msg *model.Message) error {
	readBy, err := json.Marshal(msg.ReadBy)
	if err != nil {
		return fmt.Errorf("failed to marshal read-by map: %w", err)
	}
	query := `
		INSERT INTO messages (id, chat_id, sender_id, sender_name, sender_role, text, read_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err = r.db.QueryRowxContext(ctx, query,
		msg.ID,
		msg.ChatID,
		msg.SenderID,
		msg.SenderName,
		msg.SenderRole,
		msg.Text,
		readBy,
	).Scan(&msg.CreatedAt, &msg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// MarkRead stamps the member into the read-by map of every message in the
// chat that does not carry it yet.
func (r *chatRepository) MarkRead(ctx context.Context, chatID, memberID uuid.UUID) error {
	query := `
		UPDATE messages
		SET read_by = read_by || jsonb_build_object($1::text, NOW()), updated_at = NOW()
		WHERE chat_id = $2 AND NOT read_by ? $1::text
	`
	_, err := r.db.ExecContext(ctx, query, memberID.String(), chatID)
	if err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	return nil
}
