package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/AdamBeresnev/eworldcup/internal/bracket"
	"github.com/google/uuid"
)

// MemoryParticipantStore keeps the roster in process memory. Reads return
// copies so callers cannot mutate the stored slice.
type MemoryParticipantStore struct {
	mu           sync.RWMutex
	participants []bracket.Participant
	nextID       int64
}

func NewMemoryParticipantStore() *MemoryParticipantStore {
	return &MemoryParticipantStore{nextID: 1}
}

func (s *MemoryParticipantStore) List(ctx context.Context) ([]bracket.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]bracket.Participant, len(s.participants))
	copy(out, s.participants)
	return out, nil
}

func (s *MemoryParticipantStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.participants), nil
}

func (s *MemoryParticipantStore) GetByIndex(ctx context.Context, index int) (*bracket.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.participants) {
		return nil, fmt.Errorf("participant at index %d: %w", index, ErrNotFound)
	}
	p := s.participants[index]
	return &p, nil
}

func (s *MemoryParticipantStore) GetByUID(ctx context.Context, uid uuid.UUID) (*bracket.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.participants {
		if p.UID == uid {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("participant %s: %w", uid, ErrNotFound)
}

func (s *MemoryParticipantStore) FindByName(ctx context.Context, name string) (*bracket.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOfName(name); i >= 0 {
		p := s.participants[i]
		return &p, nil
	}
	return nil, fmt.Errorf("participant %q: %w", name, ErrNotFound)
}

func (s *MemoryParticipantStore) Add(ctx context.Context, name string) (*bracket.Participant, error) {
	added, err := s.AddMany(ctx, []string{name})
	if err != nil {
		return nil, err
	}
	return &added[0], nil
}

func (s *MemoryParticipantStore) AddMany(ctx context.Context, names []string) ([]bracket.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		key := strings.ToLower(name)
		if seen[key] || s.indexOfName(name) >= 0 {
			return nil, fmt.Errorf("%q: %w", name, ErrDuplicateName)
		}
		seen[key] = true
	}

	added := make([]bracket.Participant, 0, len(names))
	for _, name := range names {
		p := bracket.Participant{ID: s.nextID, UID: uuid.New(), Name: name}
		s.nextID++
		s.participants = append(s.participants, p)
		added = append(added, p)
	}
	return added, nil
}

func (s *MemoryParticipantStore) Remove(ctx context.Context, uid uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.participants {
		if p.UID == uid {
			s.participants = append(s.participants[:i], s.participants[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("participant %s: %w", uid, ErrNotFound)
}

func (s *MemoryParticipantStore) indexOfName(name string) int {
	for i, p := range s.participants {
		if strings.EqualFold(p.Name, name) {
			return i
		}
	}
	return -1
}
