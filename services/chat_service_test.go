package services

import (
	"context"
	"errors"
	"testing"

	"subjectswap_server/logger"
	"subjectswap_server/models"
)

func TestListConversations(t *testing.T) {
	dir := NewMemoryUserDirectory(
		models.UserProfile{ID: "a", Username: "ann", Active: true},
		models.UserProfile{ID: "b", Username: "bea", ProfilePicURL: "https://cdn/b.png", Active: true},
		models.UserProfile{ID: "c", Username: "cal", Active: false},
	)
	log, _ := newTestLog()
	svc := NewChatService(log, dir, logger.NewNop())
	ctx := context.Background()

	for _, key := range []string{"a_b", "a_c"} {
		if err := log.EnsureExists(ctx, key); err != nil {
			t.Fatal(err)
		}
	}

	got, err := svc.ListConversations(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("summaries = %+v, want only the active peer", got)
	}
	want := models.UserSummary{ConvoID: "a_b", Name: "bea", ProfilePic: "https://cdn/b.png"}
	if got[0] != want {
		t.Errorf("summary = %+v, want %+v", got[0], want)
	}
}

func TestArchive(t *testing.T) {
	log, _ := newTestLog()
	svc := NewChatService(log, NewMemoryUserDirectory(), logger.NewNop())
	ctx := context.Background()

	// "b" is the larger id, so From=true means b sent it.
	if _, err := log.Append(ctx, "a_b", models.Message{ID: "1", Type: models.MessageTypeText, Content: "hi", From: true}); err != nil {
		t.Fatal(err)
	}

	chats, err := svc.Archive(ctx, "b", "a", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(chats) != 1 || !chats[0].ByMe || chats[0].Content != "hi" {
		t.Errorf("chats = %+v", chats)
	}

	if _, err := svc.Archive(ctx, "a", "b", 7); !errors.Is(err, models.ErrDocumentNotFound) {
		t.Errorf("missing doc err = %v", err)
	}
	if _, err := svc.Archive(ctx, "a", "a", 1); !errors.Is(err, models.ErrSelfConversation) {
		t.Errorf("self err = %v", err)
	}
}
