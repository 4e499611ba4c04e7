package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domainchat "findy/internal/domain/chat"
	domainuser "findy/internal/domain/user"
)

func newConversation(id string, a, b domainuser.ID, listingID string) *domainchat.Conversation {
	now := time.Now().UTC()
	return &domainchat.Conversation{
		ID:           domainchat.ConversationID(id),
		Participants: []domainuser.ID{a, b},
		ListingID:    listingID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestConversationStorePairUniqueness(t *testing.T) {
	store := NewConversationStore()
	ctx := context.Background()

	if err := store.Create(ctx, newConversation("c1", "alice", "bob", "l1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	// Same pair in reversed order collides on the pair key.
	err := store.Create(ctx, newConversation("c2", "bob", "alice", "l1"))
	if !errors.Is(err, domainchat.ErrConversationExists) {
		t.Fatalf("got %v, want ErrConversationExists", err)
	}
	// A different listing context is a different conversation.
	if err := store.Create(ctx, newConversation("c3", "alice", "bob", "l2")); err != nil {
		t.Fatalf("different listing: %v", err)
	}
	if err := store.Create(ctx, newConversation("c4", "alice", "bob", "")); err != nil {
		t.Fatalf("direct conversation: %v", err)
	}
}

func TestConversationStoreConcurrentCreateSingleWinner(t *testing.T) {
	store := NewConversationStore()
	ctx := context.Background()

	const parallel = 12
	var wg sync.WaitGroup
	errs := make([]error, parallel)
	for i := 0; i < parallel; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			conv := newConversation("conv-"+string(rune('a'+n)), "alice", "bob", "")
			errs[n] = store.Create(ctx, conv)
		}(i)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domainchat.ErrConversationExists):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("got %d winners, want exactly 1", wins)
	}
	if losses != parallel-1 {
		t.Fatalf("got %d losers, want %d", losses, parallel-1)
	}
}

func TestConversationStoreListOrdering(t *testing.T) {
	store := NewConversationStore()
	ctx := context.Background()
	base := time.Now().UTC()

	first := newConversation("c1", "alice", "bob", "")
	first.UpdatedAt = base.Add(-2 * time.Hour)
	second := newConversation("c2", "alice", "carol", "")
	second.UpdatedAt = base.Add(-1 * time.Hour)
	for _, conv := range []*domainchat.Conversation{first, second} {
		if err := store.Create(ctx, conv); err != nil {
			t.Fatalf("create %s: %v", conv.ID, err)
		}
	}

	items, err := store.ListForUser(ctx, "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if items[0].ID != "c2" {
		t.Fatalf("newest first, got %s", items[0].ID)
	}

	// A message in the older conversation promotes it.
	if err := store.UpdateLastMessage(ctx, "c1", "m1", base); err != nil {
		t.Fatalf("update last message: %v", err)
	}
	items, err = store.ListForUser(ctx, "alice")
	if err != nil {
		t.Fatalf("list after update: %v", err)
	}
	if items[0].ID != "c1" {
		t.Fatalf("expected c1 first after activity, got %s", items[0].ID)
	}
	if items[0].LastMessageID != "m1" || items[0].LastMessageAt.IsZero() {
		t.Fatal("last message pointer not recorded")
	}
}

func TestMessageStoreInsertionOrderAndMarkRead(t *testing.T) {
	store := NewMessageStore()
	ctx := context.Background()
	convID := domainchat.ConversationID("c1")

	for i, content := range []string{"first", "second", "third"} {
		msg := &domainchat.Message{
			ID:             domainchat.MessageID([]string{"m1", "m2", "m3"}[i]),
			ConversationID: convID,
			SenderID:       "alice",
			ReceiverID:     "bob",
			Content:        content,
			CreatedAt:      time.Now().UTC(),
		}
		if err := store.Create(ctx, msg); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	items, err := store.List(ctx, convID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"first", "second", "third"}
	for i, msg := range items {
		if msg.Content != want[i] {
			t.Fatalf("position %d has %q, want %q", i, msg.Content, want[i])
		}
	}

	at := time.Now().UTC()
	affected, err := store.MarkRead(ctx, convID, "bob", at)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if affected != 3 {
		t.Fatalf("marked %d, want 3", affected)
	}
	affected, err = store.MarkRead(ctx, convID, "bob", at.Add(time.Second))
	if err != nil {
		t.Fatalf("second mark read: %v", err)
	}
	if affected != 0 {
		t.Fatalf("second pass marked %d, want 0", affected)
	}

	items, _ = store.List(ctx, convID)
	for i, msg := range items {
		if !msg.IsRead || !msg.ReadAt.Equal(at) {
			t.Fatalf("message %d read state not persisted", i)
		}
	}
}

func TestMessageStoreMarkReadScopedToReceiver(t *testing.T) {
	store := NewMessageStore()
	ctx := context.Background()
	convID := domainchat.ConversationID("c1")

	toBob := &domainchat.Message{ID: "m1", ConversationID: convID, SenderID: "alice", ReceiverID: "bob", Content: "for bob"}
	toAlice := &domainchat.Message{ID: "m2", ConversationID: convID, SenderID: "bob", ReceiverID: "alice", Content: "for alice"}
	for _, msg := range []*domainchat.Message{toBob, toAlice} {
		if err := store.Create(ctx, msg); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	affected, err := store.MarkRead(ctx, convID, "bob", time.Now())
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if affected != 1 {
		t.Fatalf("marked %d, want 1", affected)
	}
	items, _ := store.List(ctx, convID)
	for _, msg := range items {
		if msg.ReceiverID == "alice" && msg.IsRead {
			t.Fatal("alice's copy must stay unread")
		}
	}
}
