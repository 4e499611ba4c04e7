package chat

import (
	"context"
	"strings"
	"time"

	"findy/internal/domain/user"
)

// Message is one directed communication within a conversation. Messages are
// created once, transition from unread to read exactly once, and are never
// deleted.
type Message struct {
	ID             MessageID
	ConversationID ConversationID
	SenderID       user.ID
	ReceiverID     user.ID
	Content        string
	ListingID      string
	IsRead         bool
	ReadAt         time.Time
	CreatedAt      time.Time
}

type MessageID string

// CreateMessageParams carries input for NewMessage.
type CreateMessageParams struct {
	ID             MessageID
	ConversationID ConversationID
	SenderID       user.ID
	ReceiverID     user.ID
	Content        string
	ListingID      string
	Now            time.Time
}

// NewMessage validates params and builds an unread message.
func NewMessage(params CreateMessageParams) (*Message, error) {
	content := strings.TrimSpace(params.Content)
	if content == "" {
		return nil, ErrContentRequired
	}
	if params.SenderID == "" || params.ReceiverID == "" {
		return nil, ErrReceiverRequired
	}
	if params.SenderID == params.ReceiverID {
		return nil, ErrSelfMessage
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	return &Message{
		ID:             params.ID,
		ConversationID: params.ConversationID,
		SenderID:       params.SenderID,
		ReceiverID:     params.ReceiverID,
		Content:        content,
		ListingID:      params.ListingID,
		CreatedAt:      now.UTC(),
	}, nil
}

// MessageStore persists messages. List returns chronological (ascending
// creation time) order; the store's insertion order is the sole order
// authority for display. MarkRead flips every unread message addressed to
// receiverID in the conversation and returns the number affected.
type MessageStore interface {
	Create(ctx context.Context, msg *Message) error
	ByID(ctx context.Context, id MessageID) (*Message, error)
	List(ctx context.Context, conversationID ConversationID) ([]*Message, error)
	MarkRead(ctx context.Context, conversationID ConversationID, receiverID user.ID, at time.Time) (int64, error)
}
