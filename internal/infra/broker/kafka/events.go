package kafka

import (
	"context"
	"encoding/json"
	"time"

	domainchat "findy/internal/domain/chat"
)

// ChatEvents publishes chat activity for out-of-process consumers
// (other gateway instances, notification workers).
type ChatEvents struct {
	producer *Producer
	topic    string
}

func NewChatEvents(producer *Producer, topicPrefix string) *ChatEvents {
	return &ChatEvents{producer: producer, topic: topicPrefix + "chat.message.sent"}
}

type messageSentEvent struct {
	MessageID      string    `json:"messageId"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	ReceiverID     string    `json:"receiverId"`
	ListingID      string    `json:"listingId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (e *ChatEvents) MessageSent(ctx context.Context, msg *domainchat.Message) error {
	payload, err := json.Marshal(messageSentEvent{
		MessageID:      string(msg.ID),
		ConversationID: string(msg.ConversationID),
		SenderID:       string(msg.SenderID),
		ReceiverID:     string(msg.ReceiverID),
		ListingID:      msg.ListingID,
		CreatedAt:      msg.CreatedAt,
	})
	if err != nil {
		return err
	}
	return e.producer.Publish(ctx, e.topic, string(msg.ConversationID), payload, map[string]string{
		"event": "message.sent",
	})
}
