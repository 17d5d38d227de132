package services

import (
	"context"
	"sort"
	"sync"

	"subjectswap_server/models"
	"subjectswap_server/utils"
)

// MemoryConversationStore is an in-process ConversationStore for local runs and tests.
type MemoryConversationStore struct {
	mu   sync.RWMutex
	docs map[string][]*models.ConversationDocument // ascending by Seq
}

// NewMemoryConversationStore creates an empty store.
func NewMemoryConversationStore() *MemoryConversationStore {
	return &MemoryConversationStore{docs: make(map[string][]*models.ConversationDocument)}
}

func copyDocument(doc *models.ConversationDocument) models.ConversationDocument {
	out := *doc
	out.Messages = append([]models.Message{}, doc.Messages...)
	return out
}

func (s *MemoryConversationStore) LatestDocuments(_ context.Context, key string, limit int) ([]models.ConversationDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := s.docs[key]
	out := make([]models.ConversationDocument, 0, limit)
	for i := len(docs) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, copyDocument(docs[i]))
	}
	return out, nil
}

func (s *MemoryConversationStore) CreateDocument(_ context.Context, doc models.ConversationDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.docs[doc.ParticipantID] {
		if existing.Seq == doc.Seq {
			return models.ErrDocumentExists
		}
	}
	stored := copyDocument(&doc)
	docs := append(s.docs[doc.ParticipantID], &stored)
	sort.Slice(docs, func(i, j int) bool { return docs[i].Seq < docs[j].Seq })
	s.docs[doc.ParticipantID] = docs
	return nil
}

func (s *MemoryConversationStore) AppendMessage(_ context.Context, key string, seq int, msg models.Message, capacity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range s.docs[key] {
		if doc.Seq != seq {
			continue
		}
		if doc.NoOfMessages >= capacity {
			return models.ErrDocumentFull
		}
		doc.Messages = append(doc.Messages, msg)
		doc.NoOfMessages++
		return nil
	}
	return models.ErrDocumentNotFound
}

func (s *MemoryConversationStore) GetDocument(_ context.Context, key string, seq int) (*models.ConversationDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.docs[key] {
		if doc.Seq == seq {
			out := copyDocument(doc)
			return &out, nil
		}
	}
	return nil, models.ErrDocumentNotFound
}

func (s *MemoryConversationStore) ListKeys(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for key := range s.docs {
		if _, ok := utils.OtherParticipant(key, userID); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// DocumentCount reports how many documents key has.
func (s *MemoryConversationStore) DocumentCount(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs[key])
}

// MemoryUserDirectory is an in-process UserDirectory for local runs and tests.
type MemoryUserDirectory struct {
	mu    sync.RWMutex
	users map[string]models.UserProfile
	order []string
}

// NewMemoryUserDirectory creates a directory seeded with users.
func NewMemoryUserDirectory(users ...models.UserProfile) *MemoryUserDirectory {
	d := &MemoryUserDirectory{users: make(map[string]models.UserProfile)}
	for _, u := range users {
		_ = d.Save(context.Background(), u)
	}
	return d
}

func (d *MemoryUserDirectory) FindActiveByID(_ context.Context, id string) (*models.UserProfile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[id]
	if !ok || !u.Active {
		return nil, models.ErrUserNotFound
	}
	out := u.Clone()
	return &out, nil
}

func (d *MemoryUserDirectory) FindManyActiveByIDs(_ context.Context, ids []string) ([]models.UserProfile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []models.UserProfile
	for _, id := range ids {
		if u, ok := d.users[id]; ok && u.Active {
			out = append(out, u.Clone())
		}
	}
	return out, nil
}

func (d *MemoryUserDirectory) ListActive(_ context.Context) ([]models.UserProfile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []models.UserProfile
	for _, id := range d.order {
		if u := d.users[id]; u.Active {
			out = append(out, u.Clone())
		}
	}
	return out, nil
}

func (d *MemoryUserDirectory) Save(_ context.Context, profile models.UserProfile) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.users[profile.ID]; !ok {
		d.order = append(d.order, profile.ID)
	}
	d.users[profile.ID] = profile.Clone()
	return nil
}
