package storage

import (
	"context"
	"sync"

	"github.com/kashguard/go-payment-intents/internal/intent"
	"github.com/pkg/errors"
)

// MemoryStore keeps encoded intents in process memory. Records are stored
// as bytes so callers never share pointers with the store.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

func (s *MemoryStore) Create(_ context.Context, pi *intent.PaymentIntent) error {
	b, err := encodeIntent(pi)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[pi.ID]; ok {
		return errors.Wrapf(intent.ErrAlreadyExists, "intent %s", pi.ID)
	}
	s.records[pi.ID] = b
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*intent.PaymentIntent, error) {
	s.mu.Lock()
	b, ok := s.records[id]
	s.mu.Unlock()

	if !ok {
		return nil, errors.Wrapf(intent.ErrNotFound, "intent %s", id)
	}
	return decodeIntent(b)
}

func (s *MemoryStore) List(_ context.Context, filter intent.Filter) ([]*intent.PaymentIntent, error) {
	s.mu.Lock()
	snapshot := make([][]byte, 0, len(s.records))
	for _, b := range s.records {
		snapshot = append(snapshot, b)
	}
	s.mu.Unlock()

	res := make([]*intent.PaymentIntent, 0, len(snapshot))
	for _, b := range snapshot {
		pi, err := decodeIntent(b)
		if err != nil {
			return nil, err
		}
		if filter.Matches(pi) {
			res = append(res, pi)
		}
	}

	intent.SortByCreation(res)
	return intent.ApplyLimit(res, filter.Limit), nil
}

func (s *MemoryStore) CompareAndSwap(_ context.Context, id string, expected intent.Status, mutate intent.MutateFunc) (*intent.PaymentIntent, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.records[id]
	if !ok {
		return nil, false, errors.Wrapf(intent.ErrNotFound, "intent %s", id)
	}

	pi, err := decodeIntent(b)
	if err != nil {
		return nil, false, err
	}

	if pi.Status != expected {
		return pi, false, nil
	}

	if err := mutate(pi); err != nil {
		return nil, false, err
	}

	updated, err := encodeIntent(pi)
	if err != nil {
		return nil, false, err
	}
	s.records[id] = updated

	return pi, true, nil
}

// Len is the number of stored intents.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
