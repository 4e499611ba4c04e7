package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	authservice "findy/internal/app/services/auth"
	chatservice "findy/internal/app/services/chat"
	domainchat "findy/internal/domain/chat"
	domainuser "findy/internal/domain/user"
	"findy/internal/infra/security"
	"findy/internal/infra/storage/memory"
)

type gatewayFixture struct {
	server  *httptest.Server
	auth    *authservice.Service
	chat    *chatservice.Service
	tokens  map[string]string
	userIDs map[string]string
}

func newGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := memory.NewUserRepository()
	authSvc := &authservice.Service{
		Users:     users,
		Sessions:  memory.NewSessionStore(),
		Passwords: security.BcryptHasher{Cost: 4},
		Tokens:    security.RandomTokenGenerator{},
	}
	chatSvc := &chatservice.Service{
		Conversations: memory.NewConversationStore(),
		Messages:      memory.NewMessageStore(),
		Users:         users,
		Listings:      memory.NewListingRepository(),
	}

	gateway := NewGateway(NewHub(), chatSvc, authSvc, nil)
	router := gin.New()
	router.GET("/ws", gateway.Handle)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	f := &gatewayFixture{
		server:  server,
		auth:    authSvc,
		chat:    chatSvc,
		tokens:  make(map[string]string),
		userIDs: make(map[string]string),
	}
	for _, name := range []string{"alice", "bob"} {
		result, err := authSvc.Register(context.Background(), authservice.RegisterParams{
			Email:    name + "@example.com",
			Name:     name,
			Password: "longenough",
		})
		if err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
		f.tokens[name] = result.Token
		f.userIDs[name] = string(result.User.ID)
	}
	return f
}

func (f *gatewayFixture) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	body, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := conn.WriteJSON(Event{Event: event, Data: body}); err != nil {
		t.Fatalf("write %s: %v", event, err)
	}
}

func receive(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var evt Event
	if err := conn.ReadJSON(&evt); err != nil {
		t.Fatalf("read: %v", err)
	}
	return evt
}

func TestGatewayRejectsWithoutToken(t *testing.T) {
	f := newGatewayFixture(t)
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("dial without token should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake rejection, got %+v", resp)
	}
}

func TestGatewayRejectsBadToken(t *testing.T) {
	f := newGatewayFixture(t)
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?token=bogus"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("dial with a bad token should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake rejection, got %+v", resp)
	}
}

func TestGatewayJoinUnknownConversationScopedError(t *testing.T) {
	f := newGatewayFixture(t)
	conn := f.dial(t, f.tokens["alice"])

	send(t, conn, "join_conversation", map[string]string{"conversationId": "nope"})
	evt := receive(t, conn)
	if evt.Event != "error" {
		t.Fatalf("event %q, want error", evt.Event)
	}

	// The connection stays usable after a scoped error.
	send(t, conn, "join_conversation", map[string]string{"conversationId": "still-nope"})
	if evt := receive(t, conn); evt.Event != "error" {
		t.Fatalf("second event %q, want error", evt.Event)
	}
}

func assertNothingReceived(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	var evt Event
	if err := conn.ReadJSON(&evt); err == nil {
		t.Fatalf("unexpected event %q delivered", evt.Event)
	}
}

func TestGatewaySendUnknownConversationScopedError(t *testing.T) {
	f := newGatewayFixture(t)
	ctx := context.Background()

	conv, err := f.chat.FindOrCreateConversation(ctx,
		domainuser.ID(f.userIDs["alice"]), domainuser.ID(f.userIDs["bob"]), "")
	if err != nil {
		t.Fatalf("conversation: %v", err)
	}

	alice := f.dial(t, f.tokens["alice"])
	bob := f.dial(t, f.tokens["bob"])
	send(t, alice, "join_conversation", map[string]string{"conversationId": conv.ID})
	send(t, bob, "join_conversation", map[string]string{"conversationId": conv.ID})
	time.Sleep(100 * time.Millisecond)

	send(t, alice, "send_message", map[string]string{
		"conversationId": "nope",
		"receiverId":     f.userIDs["bob"],
		"content":        "into the void",
	})

	if evt := receive(t, alice); evt.Event != "error" {
		t.Fatalf("alice got %q, want error", evt.Event)
	}
	assertNothingReceived(t, bob)

	msgs, err := f.chat.ListMessages(ctx, domainchat.ConversationID(conv.ID), domainuser.ID(f.userIDs["bob"]))
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("got %d persisted messages, want 0", len(msgs))
	}
}

func TestGatewayMessageFlow(t *testing.T) {
	f := newGatewayFixture(t)
	ctx := context.Background()

	conv, err := f.chat.FindOrCreateConversation(ctx,
		domainuser.ID(f.userIDs["alice"]), domainuser.ID(f.userIDs["bob"]), "")
	if err != nil {
		t.Fatalf("conversation: %v", err)
	}

	alice := f.dial(t, f.tokens["alice"])
	bob := f.dial(t, f.tokens["bob"])

	send(t, alice, "join_conversation", map[string]string{"conversationId": conv.ID})
	send(t, bob, "join_conversation", map[string]string{"conversationId": conv.ID})
	time.Sleep(100 * time.Millisecond)

	send(t, alice, "send_message", map[string]string{
		"conversationId": conv.ID,
		"receiverId":     f.userIDs["bob"],
		"content":        "hello over the socket",
	})

	evt := receive(t, bob)
	// Bob is in both the conversation room and his personal room, so he gets
	// new_message and message_notification in either order.
	seen := map[string]bool{evt.Event: true}
	evt2 := receive(t, bob)
	seen[evt2.Event] = true
	if !seen["new_message"] || !seen["message_notification"] {
		t.Fatalf("bob saw %v, want new_message and message_notification", seen)
	}

	var payload struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(evt.Data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Content != "hello over the socket" {
		t.Fatalf("content %q", payload.Content)
	}

	// The sender's room copy arrives too.
	if evt := receive(t, alice); evt.Event != "new_message" {
		t.Fatalf("alice got %q, want new_message", evt.Event)
	}

	// The message was persisted, not just relayed.
	views, err := f.chat.ListMessages(ctx, domainchat.ConversationID(conv.ID), domainuser.ID(f.userIDs["bob"]))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 || views[0].Content != "hello over the socket" {
		t.Fatalf("persisted messages: %+v", views)
	}
}

func TestGatewayTypingRelay(t *testing.T) {
	f := newGatewayFixture(t)
	ctx := context.Background()
	conv, err := f.chat.FindOrCreateConversation(ctx,
		domainuser.ID(f.userIDs["alice"]), domainuser.ID(f.userIDs["bob"]), "")
	if err != nil {
		t.Fatalf("conversation: %v", err)
	}

	alice := f.dial(t, f.tokens["alice"])
	bob := f.dial(t, f.tokens["bob"])
	send(t, alice, "join_conversation", map[string]string{"conversationId": conv.ID})
	send(t, bob, "join_conversation", map[string]string{"conversationId": conv.ID})
	time.Sleep(100 * time.Millisecond)

	send(t, alice, "typing", map[string]string{"conversationId": conv.ID})
	evt := receive(t, bob)
	if evt.Event != "user_typing" {
		t.Fatalf("bob got %q, want user_typing", evt.Event)
	}
	var payload struct {
		UserID   string `json:"userId"`
		UserName string `json:"userName"`
	}
	if err := json.Unmarshal(evt.Data, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.UserID != f.userIDs["alice"] {
		t.Fatalf("typing attributed to %q, want alice", payload.UserID)
	}
	if payload.UserName != "alice" {
		t.Fatalf("typing user name = %q, want alice", payload.UserName)
	}
}
