package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	chatservice "findy/internal/app/services/chat"
	domainchat "findy/internal/domain/chat"
	domainuser "findy/internal/domain/user"
)

// MessageHandler exposes the conversation endpoints. Every route requires an
// authenticated principal; the requester is always taken from the session,
// never from the body.
type MessageHandler struct {
	Chat   *chatservice.Service
	Logger *slog.Logger
}

type startConversationRequest struct {
	ReceiverID string `json:"receiverId"`
	ListingID  string `json:"listingId"`
}

// StartConversation finds or creates the canonical conversation with the
// receiver for an optional listing context.
func (h MessageHandler) StartConversation(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	var req startConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ReceiverID == "" {
		respondFail(c, http.StatusBadRequest, "receiverId is required")
		return
	}
	view, err := h.Chat.FindOrCreateConversation(c.Request.Context(), p.ID, domainuser.ID(req.ReceiverID), req.ListingID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, view)
}

// ListConversations returns the requester's conversations ordered by most
// recent activity.
func (h MessageHandler) ListConversations(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	views, err := h.Chat.ListConversations(c.Request.Context(), p.ID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondList(c, len(views), views)
}

// ListMessages returns a conversation's messages and marks the requester's
// unread ones read.
func (h MessageHandler) ListMessages(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	conversationID := c.Param("conversationId")
	if conversationID == "" {
		respondFail(c, http.StatusBadRequest, "conversation id is required")
		return
	}
	views, err := h.Chat.ListMessages(c.Request.Context(), domainchat.ConversationID(conversationID), p.ID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondList(c, len(views), views)
}

type sendMessageRequest struct {
	ConversationID string `json:"conversationId"`
	ReceiverID     string `json:"receiverId"`
	Content        string `json:"content"`
	ListingID      string `json:"listingId"`
}

// SendMessage persists a message over HTTP. The realtime gateway is the
// usual path; this exists for clients without a socket.
func (h MessageHandler) SendMessage(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ConversationID == "" {
		respondFail(c, http.StatusBadRequest, "conversationId is required")
		return
	}
	view, err := h.Chat.SendMessage(c.Request.Context(), chatservice.SendParams{
		ConversationID: domainchat.ConversationID(req.ConversationID),
		SenderID:       p.ID,
		ReceiverID:     domainuser.ID(req.ReceiverID),
		Content:        req.Content,
		ListingID:      req.ListingID,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusCreated, view)
}
