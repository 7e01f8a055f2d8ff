package readinglist

import (
	"context"
	"encoding/json"
	"errors"
	"hash/fnv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// StorageKey is the slot the reading list lives under.
const StorageKey = "myBookList"

var ErrEmptyID = errors.New("readinglist: empty identifier")

// KV is a durable key-value slot store.
type KV interface {
	// Get reports ok=false when the key has never been set.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Store is the reading list persisted as a JSON array of work identifiers
// under a single key. The array never holds the same identifier twice.
type Store struct {
	kv  KV
	key string
	mu  *sync.Mutex
	log *zap.Logger
}

func NewStore(kv KV, key string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{kv: kv, key: key, mu: &sync.Mutex{}, log: log}
}

func (s *Store) Key() string {
	return s.key
}

func (s *Store) IsMember(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	return indexOf(ids, id) >= 0, nil
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Add appends id unless it is already present.
func (s *Store) Add(ctx context.Context, id string) error {
	if id = strings.TrimSpace(id); id == "" {
		return ErrEmptyID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.load(ctx)
	if err != nil {
		return err
	}
	if indexOf(ids, id) >= 0 {
		return nil
	}
	return s.save(ctx, append(ids, id))
}

// Remove deletes every occurrence of id. Removing an absent id is a no-op.
func (s *Store) Remove(ctx context.Context, id string) error {
	if id = strings.TrimSpace(id); id == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.load(ctx)
	if err != nil {
		return err
	}
	kept := without(ids, id)
	if len(kept) == len(ids) {
		return nil
	}
	return s.save(ctx, kept)
}

// Toggle removes id if present, adds it otherwise, and returns the new membership.
func (s *Store) Toggle(ctx context.Context, id string) (bool, error) {
	if id = strings.TrimSpace(id); id == "" {
		return false, ErrEmptyID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	if indexOf(ids, id) >= 0 {
		return false, s.save(ctx, without(ids, id))
	}
	return true, s.save(ctx, append(ids, id))
}

// load must be called with mu held. A missing or unreadable value is an
// empty list; arrays written before deduplication are collapsed and written back.
func (s *Store) load(ctx context.Context) ([]string, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		s.log.Warn("reading list value unreadable, treating as empty",
			zap.String("key", s.key), zap.Error(err))
		return nil, nil
	}

	deduped := dedupe(ids)
	if len(deduped) != len(ids) {
		s.log.Info("collapsing duplicate reading list entries",
			zap.String("key", s.key), zap.Int("before", len(ids)), zap.Int("after", len(deduped)))
		if err := s.save(ctx, deduped); err != nil {
			return nil, err
		}
	}
	return deduped, nil
}

func (s *Store) save(ctx context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, s.key, string(b))
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

const lockStripes = 64

// Service hands out one Store per visitor scope over a shared KV.
type Service struct {
	kv    KV
	log   *zap.Logger
	locks [lockStripes]sync.Mutex
}

func NewService(kv KV, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{kv: kv, log: log}
}

// For returns the store for scope. Stores for the same scope share a lock.
func (s *Service) For(scope string) *Store {
	key := StorageKey
	if scope != "" {
		key = scope + ":" + StorageKey
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))

	return &Store{
		kv:  s.kv,
		key: key,
		mu:  &s.locks[h.Sum32()%lockStripes],
		log: s.log,
	}
}
