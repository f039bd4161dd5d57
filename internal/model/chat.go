package model

import (
	"time"

	"github.com/google/uuid"
)

// GroupChat membership is append-only: joining adds a member, leaving is not
// modeled.
type GroupChat struct {
	Base
	Name      string      `db:"name" json:"name"`
	CreatedBy uuid.UUID   `db:"created_by" json:"created_by"`
	MemberIDs []uuid.UUID `db:"-" json:"member_ids,omitempty"`
}

// Message is immutable once sent. ReadBy is keyed by member id and is seeded
// with the sender at write time.
type Message struct {
	Base
	ChatID     uuid.UUID            `db:"chat_id" json:"chat_id"`
	SenderID   uuid.UUID            `db:"sender_id" json:"sender_id"`
	SenderName string               `db:"sender_name" json:"sender_name"`
	SenderRole string               `db:"sender_role" json:"sender_role"`
	Text       string               `db:"text" json:"text"`
	ReadBy     map[string]time.Time `db:"-" json:"read_by"`
}

type CreateChatRequest struct {
	Name string `json:"name" binding:"required"`
}

type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}
