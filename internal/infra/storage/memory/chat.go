package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainchat "findy/internal/domain/chat"
	domainuser "findy/internal/domain/user"
)

// ConversationStore keeps conversations in memory, guarding the pair-key
// uniqueness invariant with its own lock so concurrent creations collide
// exactly like they would on the Mongo unique index.
type ConversationStore struct {
	mu     sync.RWMutex
	byID   map[domainchat.ConversationID]*domainchat.Conversation
	byPair map[string]domainchat.ConversationID
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		byID:   make(map[domainchat.ConversationID]*domainchat.Conversation),
		byPair: make(map[string]domainchat.ConversationID),
	}
}

func (s *ConversationStore) Find(ctx context.Context, a, b domainuser.ID, listingID string) (*domainchat.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byPair[domainchat.PairKey(a, b, listingID)]
	if !ok {
		return nil, domainchat.ErrConversationNotFound
	}
	return cloneConversation(s.byID[id]), nil
}

func (s *ConversationStore) Create(ctx context.Context, conv *domainchat.Conversation) error {
	if len(conv.Participants) != 2 {
		return domainchat.ErrReceiverRequired
	}
	key := domainchat.PairKey(conv.Participants[0], conv.Participants[1], conv.ListingID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byPair[key]; ok {
		return domainchat.ErrConversationExists
	}
	s.byPair[key] = conv.ID
	s.byID[conv.ID] = cloneConversation(conv)
	return nil
}

func (s *ConversationStore) ByID(ctx context.Context, id domainchat.ConversationID) (*domainchat.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.byID[id]
	if !ok {
		return nil, domainchat.ErrConversationNotFound
	}
	return cloneConversation(conv), nil
}

func (s *ConversationStore) ListForUser(ctx context.Context, userID domainuser.ID) ([]*domainchat.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []*domainchat.Conversation
	for _, conv := range s.byID {
		if conv.HasParticipant(userID) {
			items = append(items, cloneConversation(conv))
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return activityTime(items[i]).After(activityTime(items[j]))
	})
	return items, nil
}

func (s *ConversationStore) UpdateLastMessage(ctx context.Context, id domainchat.ConversationID, messageID domainchat.MessageID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.byID[id]
	if !ok {
		return domainchat.ErrConversationNotFound
	}
	conv.LastMessageID = messageID
	conv.LastMessageAt = at
	conv.UpdatedAt = at
	return nil
}

// Newest activity first: lastMessageAt when a message exists, otherwise
// updatedAt.
func activityTime(conv *domainchat.Conversation) time.Time {
	if !conv.LastMessageAt.IsZero() {
		return conv.LastMessageAt
	}
	return conv.UpdatedAt
}

func cloneConversation(c *domainchat.Conversation) *domainchat.Conversation {
	if c == nil {
		return nil
	}
	copyConv := *c
	copyConv.Participants = append([]domainuser.ID(nil), c.Participants...)
	return &copyConv
}

// MessageStore keeps messages in memory in insertion order, which is the
// sole order authority for display.
type MessageStore struct {
	mu             sync.RWMutex
	byID           map[domainchat.MessageID]*domainchat.Message
	byConversation map[domainchat.ConversationID][]domainchat.MessageID
}

func NewMessageStore() *MessageStore {
	return &MessageStore{
		byID:           make(map[domainchat.MessageID]*domainchat.Message),
		byConversation: make(map[domainchat.ConversationID][]domainchat.MessageID),
	}
}

func (s *MessageStore) Create(ctx context.Context, msg *domainchat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[msg.ID] = cloneMessage(msg)
	s.byConversation[msg.ConversationID] = append(s.byConversation[msg.ConversationID], msg.ID)
	return nil
}

func (s *MessageStore) ByID(ctx context.Context, id domainchat.MessageID) (*domainchat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.byID[id]
	if !ok {
		return nil, domainchat.ErrMessageNotFound
	}
	return cloneMessage(msg), nil
}

func (s *MessageStore) List(ctx context.Context, conversationID domainchat.ConversationID) ([]*domainchat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byConversation[conversationID]
	items := make([]*domainchat.Message, 0, len(ids))
	for _, id := range ids {
		items = append(items, cloneMessage(s.byID[id]))
	}
	return items, nil
}

func (s *MessageStore) MarkRead(ctx context.Context, conversationID domainchat.ConversationID, receiverID domainuser.ID, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var affected int64
	for _, id := range s.byConversation[conversationID] {
		msg := s.byID[id]
		if msg.ReceiverID == receiverID && !msg.IsRead {
			msg.IsRead = true
			msg.ReadAt = at
			affected++
		}
	}
	return affected, nil
}

func cloneMessage(m *domainchat.Message) *domainchat.Message {
	if m == nil {
		return nil
	}
	copyMsg := *m
	return &copyMsg
}
