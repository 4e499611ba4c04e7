package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	chatservice "findy/internal/app/services/chat"
	domainchat "findy/internal/domain/chat"
	domainuser "findy/internal/domain/user"
)

// TokenResolver authenticates a bearer token to a user. The HTTP and
// websocket surfaces share the same resolver.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*domainuser.User, error)
}

// Event is the frame shape in both directions.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

const (
	eventJoinConversation  = "join_conversation"
	eventLeaveConversation = "leave_conversation"
	eventSendMessage       = "send_message"
	eventTyping            = "typing"
	eventStopTyping        = "stop_typing"

	eventNewMessage          = "new_message"
	eventMessageNotification = "message_notification"
	eventUserTyping          = "user_typing"
	eventUserStopTyping      = "user_stop_typing"
	eventError               = "error"
)

// Gateway upgrades authenticated HTTP requests to websocket connections and
// relays chat traffic through the hub. Sent messages always go through the
// chat service first; a broadcast never precedes persistence.
type Gateway struct {
	Hub    *Hub
	Chat   *chatservice.Service
	Tokens TokenResolver
	Logger *slog.Logger

	upgrader websocket.Upgrader
}

func NewGateway(hub *Hub, chat *chatservice.Service, tokens TokenResolver, logger *slog.Logger) *Gateway {
	return &Gateway{
		Hub:    hub,
		Chat:   chat,
		Tokens: tokens,
		Logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Handle is the gin route for /ws. Authentication happens before the
// upgrade; an unidentified connection never reaches a room.
func (g *Gateway) Handle(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication token required"})
		return
	}
	user, err := g.Tokens.ResolveToken(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid or expired token"})
		return
	}

	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := newClient(conn, user.ID)
	client.UserName = user.Name
	g.Hub.Join(client, UserRoom(user.ID))
	g.logDebug("websocket connected", "user_id", user.ID)

	go client.writePump()
	g.readLoop(client)
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(c.Query("token"))
}

func (g *Gateway) readLoop(client *Client) {
	conn := client.conn
	defer func() {
		g.Hub.Unregister(client)
		close(client.send)
		conn.Close()
		g.logDebug("websocket disconnected", "user_id", client.UserID)
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var evt Event
		if err := json.Unmarshal(raw, &evt); err != nil {
			g.sendError(client, "malformed event")
			continue
		}
		g.dispatch(client, evt)
	}
}

func (g *Gateway) dispatch(client *Client, evt Event) {
	ctx := context.Background()
	switch evt.Event {
	case eventJoinConversation:
		g.handleJoin(ctx, client, evt.Data)
	case eventLeaveConversation:
		g.handleLeave(client, evt.Data)
	case eventSendMessage:
		g.handleSend(ctx, client, evt.Data)
	case eventTyping:
		g.handleTyping(client, evt.Data, eventUserTyping)
	case eventStopTyping:
		g.handleTyping(client, evt.Data, eventUserStopTyping)
	default:
		g.sendError(client, "unknown event: "+evt.Event)
	}
}

type conversationPayload struct {
	ConversationID string `json:"conversationId"`
}

func (g *Gateway) handleJoin(ctx context.Context, client *Client, data json.RawMessage) {
	var payload conversationPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.ConversationID == "" {
		g.sendError(client, "conversationId is required")
		return
	}
	convID := domainchat.ConversationID(payload.ConversationID)
	if _, err := g.Chat.Conversation(ctx, convID, client.UserID); err != nil {
		g.sendError(client, joinErrorMessage(err))
		return
	}
	g.Hub.Join(client, ConversationRoom(convID))
}

func joinErrorMessage(err error) string {
	switch {
	case errors.Is(err, domainchat.ErrConversationNotFound):
		return "conversation not found"
	case errors.Is(err, domainchat.ErrNotParticipant):
		return "not a participant of this conversation"
	default:
		return "could not join conversation"
	}
}

func (g *Gateway) handleLeave(client *Client, data json.RawMessage) {
	var payload conversationPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.ConversationID == "" {
		g.sendError(client, "conversationId is required")
		return
	}
	g.Hub.Leave(client, ConversationRoom(domainchat.ConversationID(payload.ConversationID)))
}

type sendMessagePayload struct {
	ConversationID string `json:"conversationId"`
	ReceiverID     string `json:"receiverId"`
	Content        string `json:"content"`
	ListingID      string `json:"listingId"`
}

func (g *Gateway) handleSend(ctx context.Context, client *Client, data json.RawMessage) {
	var payload sendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.ConversationID == "" {
		g.sendError(client, "conversationId is required")
		return
	}
	view, err := g.Chat.SendMessage(ctx, chatservice.SendParams{
		ConversationID: domainchat.ConversationID(payload.ConversationID),
		SenderID:       client.UserID,
		ReceiverID:     domainuser.ID(payload.ReceiverID),
		Content:        payload.Content,
		ListingID:      payload.ListingID,
	})
	if err != nil {
		g.sendError(client, sendErrorMessage(err))
		return
	}

	frame, err := marshalEvent(eventNewMessage, view)
	if err != nil {
		g.logWarn("event marshal failed", "error", err)
		return
	}
	g.Hub.Broadcast(ConversationRoom(domainchat.ConversationID(view.ConversationID)), frame)

	notification, err := marshalEvent(eventMessageNotification, view)
	if err != nil {
		return
	}
	g.Hub.Broadcast(UserRoom(domainuser.ID(payload.ReceiverID)), notification)
}

func sendErrorMessage(err error) string {
	switch {
	case errors.Is(err, domainchat.ErrContentRequired):
		return "message content is required"
	case errors.Is(err, domainchat.ErrReceiverRequired):
		return "receiverId is required"
	case errors.Is(err, domainchat.ErrSelfMessage):
		return "cannot message yourself"
	case errors.Is(err, domainchat.ErrConversationNotFound):
		return "conversation not found"
	case errors.Is(err, domainchat.ErrNotParticipant):
		return "not a participant of this conversation"
	default:
		return "could not send message"
	}
}

type typingPayload struct {
	ConversationID string `json:"conversationId"`
}

func (g *Gateway) handleTyping(client *Client, data json.RawMessage, outEvent string) {
	var payload typingPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.ConversationID == "" {
		g.sendError(client, "conversationId is required")
		return
	}
	room := ConversationRoom(domainchat.ConversationID(payload.ConversationID))
	if !client.inRoom(room) {
		g.sendError(client, "join the conversation first")
		return
	}
	frame, err := marshalEvent(outEvent, gin.H{
		"conversationId": payload.ConversationID,
		"userId":         string(client.UserID),
		"userName":       client.UserName,
	})
	if err != nil {
		return
	}
	g.Hub.BroadcastExcept(room, frame, client)
}

// sendError delivers a scoped error event to one connection; the connection
// stays open.
func (g *Gateway) sendError(client *Client, message string) {
	frame, err := marshalEvent(eventError, gin.H{"message": message})
	if err != nil {
		return
	}
	client.enqueue(frame)
}

func marshalEvent(event string, data any) ([]byte, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{Event: event, Data: body})
}

func (g *Gateway) logDebug(msg string, args ...any) {
	if g.Logger != nil {
		g.Logger.Debug(msg, args...)
	}
}

func (g *Gateway) logWarn(msg string, args ...any) {
	if g.Logger != nil {
		g.Logger.Warn(msg, args...)
	}
}
