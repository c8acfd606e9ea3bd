package cart

import (
	"sync"

	"github.com/google/uuid"

	"photo-prints-backend/internal/models"
)

// Store holds the live carts by id. Carts are in-memory; the durable draft
// record in the database is what survives a restart.
type Store struct {
	mu    sync.RWMutex
	carts map[uuid.UUID]*Cart
}

func NewStore() *Store {
	return &Store{carts: make(map[uuid.UUID]*Cart)}
}

func (s *Store) Create(defaultSize models.PrintSize, paper models.PaperType) *Cart {
	if defaultSize == "" {
		defaultSize = models.Size4x6
	}
	if paper == "" {
		paper = models.PaperLuster
	}

	c := New(defaultSize, paper)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[c.ID] = c
	return c
}

func (s *Store) Get(id uuid.UUID) (*Cart, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[id]
	return c, ok
}

func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, id)
}
