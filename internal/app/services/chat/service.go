package chat

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainchat "findy/internal/domain/chat"
	domainlistings "findy/internal/domain/listings"
	domainuser "findy/internal/domain/user"
)

// EventPublisher receives domain events after a message is durably stored.
// Delivery is best effort; a publish failure never fails the send.
type EventPublisher interface {
	MessageSent(ctx context.Context, msg *domainchat.Message) error
}

// Service orchestrates conversations and messages. It holds no durable
// state of its own; the stores own every row, and identity and listing
// lookups are consumed, never implemented, here.
type Service struct {
	Conversations domainchat.ConversationStore
	Messages      domainchat.MessageStore
	Users         domainuser.Repository
	Listings      domainlistings.Repository
	Events        EventPublisher
	Logger        *slog.Logger
}

// UserView is the display projection of a participant.
type UserView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Email  string `json:"email,omitempty"`
}

// ListingView is the display projection of the conversation's listing.
type ListingView struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Image string `json:"image,omitempty"`
	Price int64  `json:"price"`
}

// MessageView is a message with sender and receiver resolved to display
// identity.
type MessageView struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation"`
	Sender         UserView  `json:"sender"`
	Receiver       UserView  `json:"receiver"`
	Content        string    `json:"content"`
	ListingID      string    `json:"listing,omitempty"`
	IsRead         bool      `json:"isRead"`
	ReadAt         time.Time `json:"readAt,omitzero"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ConversationView is a conversation annotated with participant and listing
// projections and the last message body resolved.
type ConversationView struct {
	ID            string       `json:"id"`
	Participants  []UserView   `json:"participants"`
	Listing       *ListingView `json:"listing,omitempty"`
	LastMessage   *MessageView `json:"lastMessage,omitempty"`
	LastMessageAt time.Time    `json:"lastMessageAt,omitzero"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// FindOrCreateConversation returns the canonical conversation between the
// requester and the other user for the given listing context, creating it
// when absent. A lost creation race is resolved by re-fetching the winner's
// row; the caller never observes the conflict.
func (s *Service) FindOrCreateConversation(ctx context.Context, requesterID, otherID domainuser.ID, listingID string) (ConversationView, error) {
	if otherID == "" {
		return ConversationView{}, domainchat.ErrReceiverRequired
	}
	if otherID == requesterID {
		return ConversationView{}, domainchat.ErrSelfMessage
	}
	if _, err := s.Users.ByID(ctx, otherID); err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return ConversationView{}, domainchat.ErrUserNotFound
		}
		return ConversationView{}, err
	}
	if listingID != "" {
		if _, err := s.Listings.ByID(ctx, domainlistings.ListingID(listingID)); err != nil {
			if errors.Is(err, domainlistings.ErrNotFound) {
				return ConversationView{}, domainchat.ErrListingNotFound
			}
			return ConversationView{}, err
		}
	}

	conv, err := s.Conversations.Find(ctx, requesterID, otherID, listingID)
	if errors.Is(err, domainchat.ErrConversationNotFound) {
		now := time.Now().UTC()
		conv = &domainchat.Conversation{
			ID:           domainchat.ConversationID(uuid.NewString()),
			Participants: []domainuser.ID{requesterID, otherID},
			ListingID:    listingID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		err = s.Conversations.Create(ctx, conv)
		if errors.Is(err, domainchat.ErrConversationExists) {
			// Lost the race: someone else inserted the same pair key first.
			conv, err = s.Conversations.Find(ctx, requesterID, otherID, listingID)
		}
	}
	if err != nil {
		return ConversationView{}, err
	}
	return s.conversationView(ctx, conv), nil
}

// ListConversations returns the requester's conversations ordered by most
// recent activity, each with projections and the last message resolved.
func (s *Service) ListConversations(ctx context.Context, userID domainuser.ID) ([]ConversationView, error) {
	items, err := s.Conversations.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]ConversationView, 0, len(items))
	for _, conv := range items {
		views = append(views, s.conversationView(ctx, conv))
	}
	return views, nil
}

// Conversation returns a single conversation the requester belongs to. It is
// a pure read; nothing is marked.
func (s *Service) Conversation(ctx context.Context, conversationID domainchat.ConversationID, requesterID domainuser.ID) (ConversationView, error) {
	conv, err := s.Conversations.ByID(ctx, conversationID)
	if err != nil {
		return ConversationView{}, err
	}
	if !conv.HasParticipant(requesterID) {
		return ConversationView{}, domainchat.ErrNotParticipant
	}
	return s.conversationView(ctx, conv), nil
}

// ListMessages returns the conversation's messages in chronological order.
// As a side effect every unread message addressed to the requester is
// marked read; there is no separate mark-read surface.
func (s *Service) ListMessages(ctx context.Context, conversationID domainchat.ConversationID, requesterID domainuser.ID) ([]MessageView, error) {
	conv, err := s.Conversations.ByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(requesterID) {
		return nil, domainchat.ErrNotParticipant
	}
	if _, err := s.Messages.MarkRead(ctx, conversationID, requesterID, time.Now().UTC()); err != nil {
		return nil, err
	}
	msgs, err := s.Messages.List(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	views := make([]MessageView, 0, len(msgs))
	for _, msg := range msgs {
		views = append(views, s.messageView(ctx, msg))
	}
	return views, nil
}

// SendParams is the request body for SendMessage, shared by the HTTP and
// realtime paths.
type SendParams struct {
	ConversationID domainchat.ConversationID
	SenderID       domainuser.ID
	ReceiverID     domainuser.ID
	Content        string
	ListingID      string
}

// SendMessage persists a message and updates the conversation's
// denormalized last-message pointer. The message is considered sent once
// stored; a pointer update failure only degrades conversation-list ordering
// and is logged, not returned.
func (s *Service) SendMessage(ctx context.Context, params SendParams) (MessageView, error) {
	conv, err := s.Conversations.ByID(ctx, params.ConversationID)
	if err != nil {
		return MessageView{}, err
	}
	if !conv.HasParticipant(params.SenderID) || !conv.HasParticipant(params.ReceiverID) {
		return MessageView{}, domainchat.ErrNotParticipant
	}
	msg, err := domainchat.NewMessage(domainchat.CreateMessageParams{
		ID:             domainchat.MessageID(uuid.NewString()),
		ConversationID: conv.ID,
		SenderID:       params.SenderID,
		ReceiverID:     params.ReceiverID,
		Content:        params.Content,
		ListingID:      params.ListingID,
	})
	if err != nil {
		return MessageView{}, err
	}
	if msg.ListingID == "" {
		msg.ListingID = conv.ListingID
	}
	if err := s.Messages.Create(ctx, msg); err != nil {
		return MessageView{}, err
	}
	if err := s.Conversations.UpdateLastMessage(ctx, conv.ID, msg.ID, msg.CreatedAt); err != nil {
		s.logWarn("last message pointer update failed", "conversation_id", conv.ID, "error", err)
	}
	if s.Events != nil {
		if err := s.Events.MessageSent(ctx, msg); err != nil {
			s.logWarn("message event publish failed", "message_id", msg.ID, "error", err)
		}
	}
	return s.messageView(ctx, msg), nil
}

func (s *Service) conversationView(ctx context.Context, conv *domainchat.Conversation) ConversationView {
	view := ConversationView{
		ID:            string(conv.ID),
		Participants:  make([]UserView, 0, len(conv.Participants)),
		LastMessageAt: conv.LastMessageAt,
		CreatedAt:     conv.CreatedAt,
		UpdatedAt:     conv.UpdatedAt,
	}
	for _, id := range conv.Participants {
		view.Participants = append(view.Participants, s.userView(ctx, id))
	}
	if conv.ListingID != "" {
		if listing, err := s.Listings.ByID(ctx, domainlistings.ListingID(conv.ListingID)); err == nil {
			lv := listingView(listing)
			view.Listing = &lv
		}
	}
	if conv.LastMessageID != "" {
		if msg, err := s.Messages.ByID(ctx, conv.LastMessageID); err == nil {
			mv := s.messageView(ctx, msg)
			view.LastMessage = &mv
		}
	}
	return view
}

func (s *Service) messageView(ctx context.Context, msg *domainchat.Message) MessageView {
	return MessageView{
		ID:             string(msg.ID),
		ConversationID: string(msg.ConversationID),
		Sender:         s.userView(ctx, msg.SenderID),
		Receiver:       s.userView(ctx, msg.ReceiverID),
		Content:        msg.Content,
		ListingID:      msg.ListingID,
		IsRead:         msg.IsRead,
		ReadAt:         msg.ReadAt,
		CreatedAt:      msg.CreatedAt,
	}
}

func (s *Service) userView(ctx context.Context, id domainuser.ID) UserView {
	u, err := s.Users.ByID(ctx, id)
	if err != nil {
		// Identity lookup is a collaborator; degrade to the bare id.
		return UserView{ID: string(id)}
	}
	return UserView{ID: string(u.ID), Name: u.Name, Avatar: u.Avatar, Email: u.Email}
}

func listingView(l *domainlistings.Listing) ListingView {
	view := ListingView{ID: string(l.ID), Title: l.Title, Price: l.Price}
	if len(l.Images) > 0 {
		view.Image = l.Images[0]
	}
	return view
}

func (s *Service) logWarn(msg string, args ...any) {
	if s.Logger != nil {
		s.Logger.Warn(msg, args...)
	}
}
