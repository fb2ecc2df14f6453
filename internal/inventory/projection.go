// Package inventory derives remaining ticket capacity from event data and
// keeps the client's local view of it consistent across bookings and
// cancellations. Counts here are cosmetic: the backend owns the truth, and the
// projection is only patched after the backend has confirmed a mutation.
package inventory

import (
	"fmt"
	"sort"
	"sync"

	"eventdesk/internal/models"
)

// Availability is the derived view of an event's remaining capacity.
type Availability struct {
	Remaining int
	SoldOut   bool
}

// Project computes availability from totalTickets and ticketsSold. Pure:
// calling it twice on an unchanged event yields identical results.
func Project(e *models.Event) Availability {
	remaining := e.TicketsRemaining()
	return Availability{
		Remaining: remaining,
		SoldOut:   remaining <= 0,
	}
}

// Projection caches the fetched event list and patches sold counts in place
// after confirmed mutations, so the listing never needs a full re-fetch to
// stay consistent.
type Projection struct {
	mu     sync.RWMutex
	events map[int64]models.Event
}

func NewProjection() *Projection {
	return &Projection{events: make(map[int64]models.Event)}
}

// Load replaces the cached events with a freshly fetched list.
func (p *Projection) Load(events []models.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = make(map[int64]models.Event, len(events))
	for _, e := range events {
		p.events[e.ID] = e
	}
}

// Put inserts or replaces a single event.
func (p *Projection) Put(e models.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events[e.ID] = e
}

// Remove drops an event from the cache.
func (p *Projection) Remove(id int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.events, id)
}

// Get returns a copy of the cached event.
func (p *Projection) Get(id int64) (models.Event, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.events[id]
	return e, ok
}

// Events returns the cached events ordered by id.
func (p *Projection) Events() []models.Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]models.Event, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Availability projects the cached event's remaining capacity.
func (p *Projection) Availability(id int64) (Availability, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.events[id]
	if !ok {
		return Availability{}, false
	}
	return Project(&e), true
}

// ApplyBooking increments ticketsSold after a confirmed reservation. The
// update is atomic: no reader observes an intermediate count. A patch that
// would exceed totalTickets is refused, leaving the cache unchanged.
func (p *Projection) ApplyBooking(id int64, quantity int) error {
	return p.patch(id, quantity)
}

// ApplyCancellation decrements ticketsSold after a confirmed cancellation.
func (p *Projection) ApplyCancellation(id int64, quantity int) error {
	return p.patch(id, -quantity)
}

func (p *Projection) patch(id int64, delta int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.events[id]
	if !ok {
		return fmt.Errorf("event %d not in projection", id)
	}

	sold := e.TicketsSold + delta
	if sold < 0 || sold > e.TotalTickets {
		return fmt.Errorf("patch would leave event %d with %d/%d tickets sold", id, sold, e.TotalTickets)
	}

	e.TicketsSold = sold
	p.events[id] = e
	return nil
}
