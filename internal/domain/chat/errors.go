package chat

import "errors"

var (
	// Validation failures, surfaced to callers as client errors.
	ErrContentRequired  = errors.New("chat: content is required")
	ErrReceiverRequired = errors.New("chat: sender and receiver are required")
	ErrSelfMessage      = errors.New("chat: sender and receiver must differ")

	// Referenced entity does not exist.
	ErrConversationNotFound = errors.New("chat: conversation not found")
	ErrMessageNotFound      = errors.New("chat: message not found")
	ErrUserNotFound         = errors.New("chat: user not found")
	ErrListingNotFound      = errors.New("chat: listing not found")

	// Requester is not a participant of the conversation.
	ErrNotParticipant = errors.New("chat: not a conversation participant")

	// ErrConversationExists signals the pair-key uniqueness constraint fired.
	// Resolved inside the service by re-fetching the winner, never surfaced.
	ErrConversationExists = errors.New("chat: conversation already exists")
)
