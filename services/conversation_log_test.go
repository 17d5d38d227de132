package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"subjectswap_server/logger"
	"subjectswap_server/models"
)

func newTestLog() (*ConversationLog, *MemoryConversationStore) {
	store := NewMemoryConversationStore()
	return NewConversationLog(store, logger.NewNop()), store
}

func textMessage(i int) models.Message {
	return models.Message{
		ID:        fmt.Sprintf("m%d", i),
		Type:      models.MessageTypeText,
		Timestamp: time.Unix(int64(i), 0).UTC(),
		Content:   fmt.Sprintf("message %d", i),
		From:      i%2 == 0,
	}
}

func appendN(t *testing.T, log *ConversationLog, key string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := log.Append(context.Background(), key, textMessage(i)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
}

func TestAppendFillsOneDocument(t *testing.T) {
	log, store := newTestLog()
	const key = "a_b"

	appendN(t, log, key, models.MaxMessagesPerDocument)

	if got := store.DocumentCount(key); got != 1 {
		t.Fatalf("documents = %d, want 1", got)
	}
	doc, err := store.GetDocument(context.Background(), key, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Messages) != 1000 || doc.NoOfMessages != 1000 {
		t.Fatalf("doc holds %d messages (counter %d), want 1000", len(doc.Messages), doc.NoOfMessages)
	}
	for i, m := range doc.Messages {
		if m.ID != fmt.Sprintf("m%d", i) {
			t.Fatalf("message %d has id %s, order not preserved", i, m.ID)
		}
	}
}

func TestAppendRollsOver(t *testing.T) {
	log, store := newTestLog()
	const key = "a_b"

	appendN(t, log, key, models.MaxMessagesPerDocument+1)

	if got := store.DocumentCount(key); got != 2 {
		t.Fatalf("documents = %d, want 2", got)
	}
	second, err := store.GetDocument(context.Background(), key, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(second.Messages) != 1 || second.Messages[0].ID != "m1000" || second.NoOfMessages != 1 {
		t.Errorf("second document = %+v", second.Messages)
	}
}

func TestReadRecentAfterRollover(t *testing.T) {
	log, _ := newTestLog()
	const key = "a_b"

	appendN(t, log, key, models.MaxMessagesPerDocument+1)

	recent, err := log.ReadRecent(context.Background(), key)
	if err != nil {
		t.Fatal(err)
	}
	if !recent.Archived {
		t.Error("archived = false, want true")
	}
	if len(recent.Messages) != 1001 {
		t.Fatalf("messages = %d, want 1001", len(recent.Messages))
	}
	if recent.Messages[0].ID != "m0" || recent.Messages[1000].ID != "m1000" {
		t.Errorf("older document must come first, got %s ... %s", recent.Messages[0].ID, recent.Messages[1000].ID)
	}
}

func TestReadRecentNeverTouched(t *testing.T) {
	log, store := newTestLog()
	const key = "a_b"

	recent, err := log.ReadRecent(context.Background(), key)
	if err != nil {
		t.Fatal(err)
	}
	if recent.Archived || len(recent.Messages) != 0 || recent.Messages == nil {
		t.Errorf("recent = %+v, want empty non-archived", recent)
	}
	if got := store.DocumentCount(key); got != 1 {
		t.Fatalf("documents = %d, want 1", got)
	}
	doc, _ := store.GetDocument(context.Background(), key, 1)
	if len(doc.Messages) != 0 {
		t.Errorf("created document holds %d messages", len(doc.Messages))
	}

	// A second read must not create another document.
	if _, err := log.ReadRecent(context.Background(), key); err != nil {
		t.Fatal(err)
	}
	if got := store.DocumentCount(key); got != 1 {
		t.Errorf("documents = %d after second read, want 1", got)
	}
}

func TestReadRecentLargeNewestDocumentOnly(t *testing.T) {
	log, _ := newTestLog()
	const key = "a_b"

	appendN(t, log, key, models.MaxMessagesPerDocument+models.RecentMessagesThreshold+1)

	recent, err := log.ReadRecent(context.Background(), key)
	if err != nil {
		t.Fatal(err)
	}
	if !recent.Archived {
		t.Error("archived = false, want true")
	}
	if len(recent.Messages) != 101 {
		t.Errorf("messages = %d, want only the 101 of the newest document", len(recent.Messages))
	}
}

func TestReadRecentSkipsOlderArchives(t *testing.T) {
	log, _ := newTestLog()
	const key = "a_b"

	appendN(t, log, key, 2*models.MaxMessagesPerDocument+5)

	recent, err := log.ReadRecent(context.Background(), key)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent.Messages) != 1005 {
		t.Errorf("messages = %d, want 1005 from the two newest documents", len(recent.Messages))
	}
	if recent.Messages[0].ID != "m1000" {
		t.Errorf("first message = %s, want m1000", recent.Messages[0].ID)
	}

	first, err := log.ReadArchive(context.Background(), key, 1)
	if err != nil {
		t.Fatal(err)
	}
	if first.Messages[0].ID != "m0" {
		t.Errorf("archive starts with %s", first.Messages[0].ID)
	}
}

func TestEnsureExistsIdempotent(t *testing.T) {
	log, store := newTestLog()

	for i := 0; i < 3; i++ {
		if err := log.EnsureExists(context.Background(), "a_b"); err != nil {
			t.Fatal(err)
		}
	}
	if got := store.DocumentCount("a_b"); got != 1 {
		t.Errorf("documents = %d, want 1", got)
	}
}

func TestConcurrentAppendsKeepEveryMessage(t *testing.T) {
	log, store := newTestLog()
	const key = "a_b"
	const writers, perWriter = 8, 150

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				msg := textMessage(w*perWriter + i)
				if _, err := log.Append(context.Background(), key, msg); err != nil {
					t.Errorf("append: %v", err)
				}
			}
		}(w)
	}
	wg.Wait()

	total := 0
	for seq := 1; seq <= store.DocumentCount(key); seq++ {
		doc, err := store.GetDocument(context.Background(), key, seq)
		if err != nil {
			t.Fatal(err)
		}
		if len(doc.Messages) > models.MaxMessagesPerDocument {
			t.Errorf("document %d holds %d messages", seq, len(doc.Messages))
		}
		total += len(doc.Messages)
	}
	if total != writers*perWriter {
		t.Errorf("stored %d messages, want %d", total, writers*perWriter)
	}
	if got := store.DocumentCount(key); got != 2 {
		t.Errorf("documents = %d, want 2", got)
	}
}

// racingStore fills the latest document behind the log's back once.
type racingStore struct {
	*MemoryConversationStore
	raced bool
}

func (s *racingStore) AppendMessage(ctx context.Context, key string, seq int, msg models.Message, capacity int) error {
	if !s.raced {
		s.raced = true
		for i := 0; i < capacity; i++ {
			if err := s.MemoryConversationStore.AppendMessage(ctx, key, seq, textMessage(1000+i), capacity); err != nil {
				break
			}
		}
		return models.ErrDocumentFull
	}
	return s.MemoryConversationStore.AppendMessage(ctx, key, seq, msg, capacity)
}

func TestAppendRetriesAfterConflict(t *testing.T) {
	store := &racingStore{MemoryConversationStore: NewMemoryConversationStore()}
	log := NewConversationLog(store, logger.NewNop())
	ctx := context.Background()

	if _, err := log.Append(ctx, "a_b", textMessage(0)); err != nil {
		t.Fatal(err)
	}
	if _, err := log.Append(ctx, "a_b", textMessage(1)); err != nil {
		t.Fatal(err)
	}

	doc, err := store.GetDocument(ctx, "a_b", 2)
	if err != nil {
		t.Fatalf("expected a second document after the conflict: %v", err)
	}
	if len(doc.Messages) != 1 || doc.Messages[0].ID != textMessage(1).ID {
		t.Errorf("second document = %+v, want only message 1", doc.Messages)
	}
}

// oversizedStore refuses to grow a document once it holds limit messages,
// the way DynamoDB rejects items past its size limit.
type oversizedStore struct {
	*MemoryConversationStore
	limit int
}

func (s *oversizedStore) AppendMessage(ctx context.Context, key string, seq int, msg models.Message, capacity int) error {
	doc, err := s.MemoryConversationStore.GetDocument(ctx, key, seq)
	if err != nil {
		return err
	}
	if len(doc.Messages) >= s.limit {
		return models.ErrDocumentFull
	}
	return s.MemoryConversationStore.AppendMessage(ctx, key, seq, msg, capacity)
}

func TestAppendStartsNewDocumentWhenStoreRefusesGrowth(t *testing.T) {
	store := &oversizedStore{MemoryConversationStore: NewMemoryConversationStore(), limit: 3}
	log := NewConversationLog(store, logger.NewNop())
	ctx := context.Background()

	appendN(t, log, "a_b", 5)

	first, err := store.GetDocument(ctx, "a_b", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Messages) != 3 {
		t.Errorf("first document = %d messages, want 3", len(first.Messages))
	}
	second, err := store.GetDocument(ctx, "a_b", 2)
	if err != nil {
		t.Fatalf("expected a second document: %v", err)
	}
	if len(second.Messages) != 2 {
		t.Errorf("second document = %d messages, want 2", len(second.Messages))
	}
}

func TestListConversationKeys(t *testing.T) {
	log, _ := newTestLog()
	ctx := context.Background()

	for _, key := range []string{"a_b", "a_c", "b_c"} {
		if err := log.EnsureExists(ctx, key); err != nil {
			t.Fatal(err)
		}
	}

	keys, err := log.ListConversationKeys(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 || keys[0] != "a_b" || keys[1] != "a_c" {
		t.Errorf("keys = %v", keys)
	}
}
