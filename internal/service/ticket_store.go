package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/greenvvay/Parking/internal/domain"
)

type ticketRecord struct {
	ticket   *domain.Ticket
	exitedAt time.Time // zero while the vehicle is parked
}

// TicketStore keeps issued tickets addressable by id for clients that only
// hold the id (HTTP, queue messages). Tickets of exited vehicles stay until
// Cleanup so a replayed exit is still recognised as already used.
type TicketStore struct {
	mu      sync.RWMutex
	tickets map[uuid.UUID]*ticketRecord
}

func NewTicketStore() *TicketStore {
	return &TicketStore{tickets: make(map[uuid.UUID]*ticketRecord)}
}

func (s *TicketStore) Put(t *domain.Ticket) {
	s.mu.Lock()
	s.tickets[t.ID()] = &ticketRecord{ticket: t}
	s.mu.Unlock()
}

func (s *TicketStore) Get(id uuid.UUID) (*domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.tickets[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	return rec.ticket, nil
}

func (s *TicketStore) MarkExited(id uuid.UUID, at time.Time) {
	s.mu.Lock()
	if rec, ok := s.tickets[id]; ok && rec.exitedAt.IsZero() {
		rec.exitedAt = at
	}
	s.mu.Unlock()
}

// Cleanup drops tickets whose vehicle left before cutoff and reports how many.
func (s *TicketStore) Cleanup(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, rec := range s.tickets {
		if !rec.exitedAt.IsZero() && rec.exitedAt.Before(cutoff) {
			delete(s.tickets, id)
			removed++
		}
	}
	return removed
}

func (s *TicketStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tickets)
}
