package dispatch

import (
	"context"
	"sync"
	"time"
)

// Assignment is one recorded write-back.
type Assignment struct {
	TicketID     string
	TechnicianID string
	Start        time.Time
}

// MemoryTicketStore implements TicketStore with an in-memory conditional
// write: the first request to claim a technician/start pair wins, later ones
// get ErrSlotTaken. Used by the CLI and by tests; production deployments
// implement TicketStore against the CRM.
type MemoryTicketStore struct {
	mu    sync.Mutex
	slots map[string]string // technicianID+start -> ticketID
	log   []Assignment
}

// NewMemoryTicketStore creates an empty store.
func NewMemoryTicketStore() *MemoryTicketStore {
	return &MemoryTicketStore{slots: make(map[string]string)}
}

// MarkScheduled records the assignment unless the slot is already claimed by
// a different ticket.
func (s *MemoryTicketStore) MarkScheduled(_ context.Context, ticketID, technicianID string, start time.Time) error {
	key := technicianID + "@" + start.UTC().Format(time.RFC3339)
	s.mu.Lock()
	defer s.mu.Unlock()
	if owner, ok := s.slots[key]; ok && owner != ticketID {
		return ErrSlotTaken
	}
	s.slots[key] = ticketID
	s.log = append(s.log, Assignment{TicketID: ticketID, TechnicianID: technicianID, Start: start})
	return nil
}

// Assignments returns a copy of all recorded write-backs in order.
func (s *MemoryTicketStore) Assignments() []Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Assignment(nil), s.log...)
}
