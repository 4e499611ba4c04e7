package chat

import (
	"context"
	"sort"
	"strings"
	"time"

	"findy/internal/domain/user"
)

// Conversation is a persistent thread between exactly two users, optionally
// scoped to one listing. At most one conversation exists per unordered
// participant pair and listing value; an empty ListingID ("general inquiry")
// is its own match key distinct from any concrete listing.
type Conversation struct {
	ID            ConversationID
	Participants  []user.ID
	ListingID     string
	LastMessageID MessageID
	LastMessageAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type ConversationID string

// HasParticipant reports whether id is one of the two members.
func (c *Conversation) HasParticipant(id user.ID) bool {
	for _, p := range c.Participants {
		if p == id {
			return true
		}
	}
	return false
}

// Peer returns the other participant for the given member.
func (c *Conversation) Peer(id user.ID) user.ID {
	for _, p := range c.Participants {
		if p != id {
			return p
		}
	}
	return ""
}

// PairKey is the uniqueness key for a conversation: the two participant ids
// in lexical order joined with the listing id. Stores index this value with
// a unique constraint so concurrent creations collide instead of duplicating.
func PairKey(a, b user.ID, listingID string) string {
	ids := []string{string(a), string(b)}
	sort.Strings(ids)
	return strings.Join([]string{ids[0], ids[1], listingID}, "|")
}

// ConversationStore persists conversations.
//
// Create must enforce the pair-key uniqueness atomically and return
// ErrConversationExists when a matching row is already present, so the
// service can resolve the race by re-fetching the winner.
type ConversationStore interface {
	Find(ctx context.Context, a, b user.ID, listingID string) (*Conversation, error)
	Create(ctx context.Context, conv *Conversation) error
	ByID(ctx context.Context, id ConversationID) (*Conversation, error)
	ListForUser(ctx context.Context, userID user.ID) ([]*Conversation, error)
	UpdateLastMessage(ctx context.Context, id ConversationID, messageID MessageID, at time.Time) error
}
