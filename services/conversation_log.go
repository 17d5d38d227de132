package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"subjectswap_server/logger"
	"subjectswap_server/metrics"
	"subjectswap_server/models"
)

// maxAppendAttempts bounds retries when another writer fills or creates a document first.
const maxAppendAttempts = 3

// ConversationStore is the ordered-append document store behind a ConversationLog.
type ConversationStore interface {
	// LatestDocuments returns up to limit documents for key, newest first.
	LatestDocuments(ctx context.Context, key string, limit int) ([]models.ConversationDocument, error)
	// CreateDocument stores doc, failing with ErrDocumentExists if its sequence is taken.
	CreateDocument(ctx context.Context, doc models.ConversationDocument) error
	// AppendMessage pushes msg onto document seq, failing with ErrDocumentFull at capacity.
	AppendMessage(ctx context.Context, key string, seq int, msg models.Message, capacity int) error
	// GetDocument loads one document by sequence.
	GetDocument(ctx context.Context, key string, seq int) (*models.ConversationDocument, error)
	// ListKeys returns the distinct conversation keys that include userID.
	ListKeys(ctx context.Context, userID string) ([]string, error)
}

// ConversationLog is the append-only, per-pair message log with document rollover.
type ConversationLog struct {
	store  ConversationStore
	logger *logger.Logger
	now    func() time.Time
	locks  *keyedMutex
}

// NewConversationLog creates a conversation log over store.
func NewConversationLog(store ConversationStore, log *logger.Logger) *ConversationLog {
	return &ConversationLog{
		store:  store,
		logger: logger.OrGlobal(log),
		now:    time.Now,
		locks:  newKeyedMutex(),
	}
}

// EnsureExists creates an empty first document for key if it has none.
func (l *ConversationLog) EnsureExists(ctx context.Context, key string) error {
	docs, err := l.store.LatestDocuments(ctx, key, 1)
	if err != nil {
		return fmt.Errorf("failed to load conversation %s: %w", key, err)
	}
	if len(docs) > 0 {
		return nil
	}

	err = l.store.CreateDocument(ctx, l.newDocument(key, 1))
	if err != nil && !errors.Is(err, models.ErrDocumentExists) {
		return fmt.Errorf("failed to create conversation %s: %w", key, err)
	}
	return nil
}

// Append stores msg in the newest document for key, starting a new document
// when none exists or the newest one is full. Appends for one key are
// serialized in-process; stores reject conflicting writes from elsewhere and
// the append is retried against the new latest document.
func (l *ConversationLog) Append(ctx context.Context, key string, msg models.Message) (models.Message, error) {
	unlock := l.locks.Lock(key)
	defer unlock()

	// seq of a document the store refused to grow, even below the message cap
	sealed := 0
	for attempt := 0; attempt < maxAppendAttempts; attempt++ {
		docs, err := l.store.LatestDocuments(ctx, key, 1)
		if err != nil {
			return models.Message{}, fmt.Errorf("failed to load conversation %s: %w", key, err)
		}

		if len(docs) == 0 || len(docs[0].Messages) >= models.MaxMessagesPerDocument || docs[0].Seq == sealed {
			seq := 1
			if len(docs) > 0 {
				seq = docs[0].Seq + 1
			}
			doc := l.newDocument(key, seq)
			doc.Messages = []models.Message{msg}
			doc.NoOfMessages = 1

			err = l.store.CreateDocument(ctx, doc)
			if errors.Is(err, models.ErrDocumentExists) {
				continue
			}
			if err != nil {
				return models.Message{}, fmt.Errorf("failed to start conversation document %s#%d: %w", key, seq, err)
			}
			if seq > 1 {
				metrics.ConversationRolloversTotal.Inc()
				l.logger.Info("conversation rolled over", zap.String("conversation", key), zap.Int("doc_seq", seq))
			}
			return msg, nil
		}

		err = l.store.AppendMessage(ctx, key, docs[0].Seq, msg, models.MaxMessagesPerDocument)
		if errors.Is(err, models.ErrDocumentFull) {
			sealed = docs[0].Seq
			continue
		}
		if err != nil {
			return models.Message{}, fmt.Errorf("failed to append to conversation %s#%d: %w", key, docs[0].Seq, err)
		}
		return msg, nil
	}

	return models.Message{}, fmt.Errorf("failed to append to conversation %s: too much write contention", key)
}

// ReadRecent returns the recent history of key. With one document, or a newest
// document already holding more than RecentMessagesThreshold messages, only the
// newest document is returned; otherwise the two newest are merged oldest first.
// Archived is set whenever more than one document exists.
func (l *ConversationLog) ReadRecent(ctx context.Context, key string) (models.RecentMessages, error) {
	docs, err := l.store.LatestDocuments(ctx, key, 2)
	if err != nil {
		return models.RecentMessages{}, fmt.Errorf("failed to load conversation %s: %w", key, err)
	}

	switch {
	case len(docs) == 0:
		if err := l.EnsureExists(ctx, key); err != nil {
			return models.RecentMessages{}, err
		}
		return models.RecentMessages{Messages: []models.Message{}, Archived: false}, nil

	case len(docs) == 1 || len(docs[0].Messages) > models.RecentMessagesThreshold:
		return models.RecentMessages{
			Messages: append([]models.Message{}, docs[0].Messages...),
			Archived: len(docs) > 1,
		}, nil
	}

	merged := make([]models.Message, 0, len(docs[1].Messages)+len(docs[0].Messages))
	merged = append(merged, docs[1].Messages...)
	merged = append(merged, docs[0].Messages...)
	return models.RecentMessages{Messages: merged, Archived: true}, nil
}

// ReadArchive returns one document of key by sequence number.
func (l *ConversationLog) ReadArchive(ctx context.Context, key string, seq int) (*models.ConversationDocument, error) {
	doc, err := l.store.GetDocument(ctx, key, seq)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation %s#%d: %w", key, seq, err)
	}
	return doc, nil
}

// ListConversationKeys returns every conversation key userID takes part in.
func (l *ConversationLog) ListConversationKeys(ctx context.Context, userID string) ([]string, error) {
	keys, err := l.store.ListKeys(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations for %s: %w", userID, err)
	}
	return keys, nil
}

func (l *ConversationLog) newDocument(key string, seq int) models.ConversationDocument {
	return models.ConversationDocument{
		ParticipantID: key,
		Seq:           seq,
		Messages:      []models.Message{},
		NoOfMessages:  0,
		CreatedAt:     l.now().UTC(),
	}
}

// keyedMutex hands out one mutex per key and forgets it once unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

// Lock blocks until key is free and returns its unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
