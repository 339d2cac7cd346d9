// Package documents keeps the local collection of CV documents of one user
// and enforces that a non-empty collection has exactly one primary document.
package documents

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/eportfolio/internal/client/models"
	"github.com/dmitrijs2005/eportfolio/internal/client/storage"
	"github.com/dmitrijs2005/eportfolio/internal/common"
	"github.com/dmitrijs2005/eportfolio/internal/logging"
)

const (
	keyPrefix     = "eportfolio.cvDocuments.v1."
	anonymousUser = "anonymous"
)

// StorageKey is the KV key holding the collection of userID.
func StorageKey(userID string) string {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = anonymousUser
	}
	return keyPrefix + userID
}

type Option func(*Store)

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Store is the in-memory view of one user's collection, persisted to a KV
// after every mutation. It is safe for concurrent use.
type Store struct {
	kv     storage.KV
	logger logging.Logger

	mu   sync.Mutex
	key  string
	docs []models.CvDocument

	subMu   sync.Mutex
	subs    map[int]func([]models.CvDocument)
	nextSub int
}

func New(kv storage.KV, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		logger: logging.Nop(),
		key:    StorageKey(""),
		subs:   make(map[int]func([]models.CvDocument)),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load switches the store to userID and reads its collection. A missing or
// malformed payload yields an empty collection; only storage I/O errors are
// returned.
func (s *Store) Load(ctx context.Context, userID string) ([]models.CvDocument, error) {
	key := StorageKey(userID)

	raw, ok, err := s.kv.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load cv documents: %w", err)
	}

	var docs []models.CvDocument
	if ok {
		docs, err = decode(raw)
		if err != nil {
			s.logger.Warn(ctx, "discarding stored cv documents", "key", key, "error", err)
			docs = nil
		}
	}
	docs = normalize(docs)

	s.mu.Lock()
	s.key = key
	s.docs = docs
	snap := cloneAll(docs)
	s.mu.Unlock()

	s.notify(snap)
	return snap, nil
}

// Add appends doc as the new primary document.
func (s *Store) Add(ctx context.Context, doc models.CvDocument) (models.CvDocument, error) {
	if strings.TrimSpace(doc.ID) == "" {
		return models.CvDocument{}, fmt.Errorf("%w: document id is empty", common.ErrValidation)
	}

	var added models.CvDocument
	err := s.mutate(ctx, func(docs []models.CvDocument) ([]models.CvDocument, error) {
		if indexOf(docs, doc.ID) >= 0 {
			return nil, fmt.Errorf("cv %s: %w", doc.ID, common.ErrAlreadyExists)
		}
		for i := range docs {
			docs[i].IsPrimary = false
		}
		added = doc.Clone()
		added.IsPrimary = true
		return append(docs, added), nil
	})
	if err != nil {
		return models.CvDocument{}, err
	}
	return added.Clone(), nil
}

// Update replaces the document id with doc. The stored id and primary flag
// win over the ones carried by doc.
func (s *Store) Update(ctx context.Context, id string, doc models.CvDocument) (models.CvDocument, error) {
	var updated models.CvDocument
	err := s.mutate(ctx, func(docs []models.CvDocument) ([]models.CvDocument, error) {
		i := indexOf(docs, id)
		if i < 0 {
			return nil, fmt.Errorf("cv %s: %w", id, common.ErrNotFound)
		}
		updated = doc.Clone()
		updated.ID = id
		updated.IsPrimary = docs[i].IsPrimary
		docs[i] = updated
		return docs, nil
	})
	if err != nil {
		return models.CvDocument{}, err
	}
	return updated.Clone(), nil
}

// Delete removes the document id and returns it. When the primary goes, the
// most recently updated survivor is promoted; on equal timestamps the one
// stored later wins.
func (s *Store) Delete(ctx context.Context, id string) (models.CvDocument, error) {
	var removed models.CvDocument
	err := s.mutate(ctx, func(docs []models.CvDocument) ([]models.CvDocument, error) {
		i := indexOf(docs, id)
		if i < 0 {
			return nil, fmt.Errorf("cv %s: %w", id, common.ErrNotFound)
		}
		removed = docs[i]
		docs = append(docs[:i], docs[i+1:]...)

		if removed.IsPrimary && len(docs) > 0 {
			best := 0
			for j := 1; j < len(docs); j++ {
				if !docs[j].UpdatedAt.Before(docs[best].UpdatedAt) {
					best = j
				}
			}
			docs[best].IsPrimary = true
		}
		return docs, nil
	})
	if err != nil {
		return models.CvDocument{}, err
	}
	return removed, nil
}

// SetPrimary makes id the only primary document. Repeating the call is a no-op
// on state, though the collection is still persisted.
func (s *Store) SetPrimary(ctx context.Context, id string) (models.CvDocument, error) {
	var primary models.CvDocument
	err := s.mutate(ctx, func(docs []models.CvDocument) ([]models.CvDocument, error) {
		i := indexOf(docs, id)
		if i < 0 {
			return nil, fmt.Errorf("cv %s: %w", id, common.ErrNotFound)
		}
		for j := range docs {
			docs[j].IsPrimary = j == i
		}
		primary = docs[i]
		return docs, nil
	})
	if err != nil {
		return models.CvDocument{}, err
	}
	return primary.Clone(), nil
}

// List returns a copy of the collection in storage order.
func (s *Store) List() []models.CvDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.docs)
}

func (s *Store) Get(id string) (models.CvDocument, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.docs, id); i >= 0 {
		return s.docs[i].Clone(), true
	}
	return models.CvDocument{}, false
}

func (s *Store) Primary() (models.CvDocument, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.docs {
		if d.IsPrimary {
			return d.Clone(), true
		}
	}
	return models.CvDocument{}, false
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// Subscribe registers fn to receive a snapshot after every load and every
// successful mutation. Calling the returned func unregisters it.
func (s *Store) Subscribe(fn func([]models.CvDocument)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) mutate(ctx context.Context, fn func([]models.CvDocument) ([]models.CvDocument, error)) error {
	s.mu.Lock()

	next, err := fn(cloneAll(s.docs))
	if err != nil {
		s.mu.Unlock()
		return err
	}
	next = normalize(next)

	raw, err := encode(next)
	if err == nil {
		err = s.kv.Save(ctx, s.key, raw)
	}
	if err != nil {
		s.mu.Unlock()
		s.logger.Error(ctx, "persist cv documents failed", "key", s.key, "error", err)
		return fmt.Errorf("persist cv documents: %w", err)
	}

	s.docs = next
	snap := cloneAll(next)
	s.mu.Unlock()

	s.notify(snap)
	return nil
}

func (s *Store) notify(snap []models.CvDocument) {
	s.subMu.Lock()
	fns := make([]func([]models.CvDocument), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(cloneAll(snap))
	}
}

// normalize drops repeated ids, fills nil slices and repairs the primary
// flag: the first primary keeps it, and without one the first document gets it.
func normalize(docs []models.CvDocument) []models.CvDocument {
	out := make([]models.CvDocument, 0, len(docs))
	seen := make(map[string]struct{}, len(docs))
	hasPrimary := false

	for _, d := range docs {
		if _, dup := seen[d.ID]; dup {
			continue
		}
		seen[d.ID] = struct{}{}

		d = d.Clone()
		if d.IsPrimary {
			if hasPrimary {
				d.IsPrimary = false
			}
			hasPrimary = true
		}
		out = append(out, d)
	}

	if !hasPrimary && len(out) > 0 {
		out[0].IsPrimary = true
	}
	return out
}

func cloneAll(docs []models.CvDocument) []models.CvDocument {
	out := make([]models.CvDocument, len(docs))
	for i, d := range docs {
		out[i] = d.Clone()
	}
	return out
}

func indexOf(docs []models.CvDocument, id string) int {
	for i, d := range docs {
		if d.ID == id {
			return i
		}
	}
	return -1
}
