package ginserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	gin "github.com/gin-gonic/gin"

	authservice "findy/internal/app/services/auth"
	chatservice "findy/internal/app/services/chat"
	"findy/internal/infra/obs"
	"findy/internal/infra/security"
	"findy/internal/infra/storage/memory"
)

type chatFixture struct {
	router     *gin.Engine
	aliceToken string
	bobToken   string
	eveToken   string
	aliceID    string
	bobID      string
	eveID      string
}

func newChatFixture(t *testing.T) chatFixture {
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

	router := NewRouter(obs.Middleware{}, obs.HealthHandlers{}, Handlers{
		Message:        &MessageHandler{Chat: chatSvc},
		AuthMiddleware: AuthMiddleware{Service: authSvc}.Handle,
	})

	register := func(email, name string) (string, string) {
		result, err := authSvc.Register(context.Background(), authservice.RegisterParams{
			Email:    email,
			Name:     name,
			Password: "longenough",
		})
		if err != nil {
			t.Fatalf("register %s: %v", email, err)
		}
		return result.Token, string(result.User.ID)
	}

	f := chatFixture{router: router}
	f.aliceToken, f.aliceID = register("alice@example.com", "Alice")
	f.bobToken, f.bobID = register("bob@example.com", "Bob")
	f.eveToken, f.eveID = register("eve@example.com", "Eve")
	return f
}

func (f chatFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response %s: %v", rec.Body.String(), err)
	}
	return envelope
}

func startConversation(t *testing.T, f chatFixture, token, receiverID string) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/messages/conversation", token, map[string]string{
		"receiverId": receiverID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("start conversation: status %d body %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	data := envelope["data"].(map[string]any)
	return data["id"].(string)
}

func TestStartConversationRequiresReceiver(t *testing.T) {
	f := newChatFixture(t)
	rec := f.do(t, http.MethodPost, "/api/messages/conversation", f.aliceToken, map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope["success"] != false {
		t.Fatalf("envelope success = %v, want false", envelope["success"])
	}
	if envelope["message"] == "" {
		t.Fatal("error envelope must carry a message")
	}
}

func TestStartConversationRequiresAuth(t *testing.T) {
	f := newChatFixture(t)
	rec := f.do(t, http.MethodPost, "/api/messages/conversation", "", map[string]string{"receiverId": "x"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rec.Code)
	}
}

func TestConversationAndMessageFlow(t *testing.T) {
	f := newChatFixture(t)

	convID := startConversation(t, f, f.aliceToken, f.bobID)

	// Same conversation from the other side.
	if again := startConversation(t, f, f.bobToken, f.aliceID); again != convID {
		t.Fatalf("conversation is not canonical: %q vs %q", again, convID)
	}

	// Send over HTTP.
	rec := f.do(t, http.MethodPost, "/api/messages", f.aliceToken, map[string]string{
		"conversationId": convID,
		"receiverId":     f.bobID,
		"content":        "is the room available?",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("send: status %d body %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	sent := envelope["data"].(map[string]any)
	if sent["isRead"] != false {
		t.Fatal("fresh message must be unread")
	}

	// Bob lists: messages come back read (side effect applied before the
	// payload is built).
	rec = f.do(t, http.MethodGet, "/api/messages/conversation/"+convID, f.bobToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list messages: %d", rec.Code)
	}
	envelope = decodeEnvelope(t, rec)
	if envelope["count"].(float64) != 1 {
		t.Fatalf("count %v, want 1", envelope["count"])
	}
	items := envelope["data"].([]any)
	msg := items[0].(map[string]any)
	if msg["isRead"] != true {
		t.Fatal("listed message should be marked read for the receiver")
	}

	// Outsider gets a 403, not an empty list.
	rec = f.do(t, http.MethodGet, "/api/messages/conversation/"+convID, f.eveToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("outsider status %d, want 403", rec.Code)
	}

	// Unknown conversation is a 404.
	rec = f.do(t, http.MethodGet, "/api/messages/conversation/nope", f.aliceToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown conversation status %d, want 404", rec.Code)
	}
}

func TestSendMessageValidation(t *testing.T) {
	f := newChatFixture(t)
	convID := startConversation(t, f, f.aliceToken, f.bobID)

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"missing conversation", map[string]string{"receiverId": f.bobID, "content": "hi"}, http.StatusBadRequest},
		{"empty content", map[string]string{"conversationId": convID, "receiverId": f.bobID, "content": "  "}, http.StatusBadRequest},
		{"unknown conversation", map[string]string{"conversationId": "nope", "receiverId": f.bobID, "content": "hi"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/messages", f.aliceToken, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
			envelope := decodeEnvelope(t, rec)
			if envelope["success"] != false {
				t.Fatal("error responses carry success=false")
			}
		})
	}
}
