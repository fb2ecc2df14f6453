package models

import (
	"strings"
	"time"
)

// Role is the backend's role string. Matching is exact: no prefixes, no
// substring checks, no hierarchy between roles.
type Role string

const (
	RoleUser      Role = "ROLE_USER"
	RoleOrganizer Role = "ROLE_ORGANIZER"
	RoleAdmin     Role = "ROLE_ADMIN"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}

// User represents the authenticated identity held by the session store.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Event represents an event as served by the backend. The client treats it as
// a possibly stale read-through copy; ticketsRemaining is always derived, never
// stored.
type Event struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Location     string    `json:"location"`
	Category     string    `json:"category"`
	StartAt      time.Time `json:"startAt"`
	EndAt        time.Time `json:"endAt"`
	TotalTickets int       `json:"totalTickets"`
	TicketsSold  int       `json:"ticketsSold"`
	TicketPrice  float64   `json:"ticketPrice"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	OrganizerID  int64     `json:"organizerId"`
}

// TicketsRemaining returns the derived remaining capacity.
func (e *Event) TicketsRemaining() int {
	return e.TotalTickets - e.TicketsSold
}

// SoldOut reports whether no tickets remain.
func (e *Event) SoldOut() bool {
	return e.TicketsRemaining() <= 0
}

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationPaid      ReservationStatus = "PAID"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

// Reservation is a user's claim on tickets for an event, prior to payment.
type Reservation struct {
	ID        int64             `json:"id"`
	EventID   int64             `json:"eventId"`
	UserID    int64             `json:"userId"`
	Quantity  int               `json:"quantity"`
	Status    ReservationStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
}

// PaymentStatus is the outcome of a payment attempt.
type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentDeclined  PaymentStatus = "DECLINED"
)

// Payment records a settled (or declined) card payment for a reservation.
type Payment struct {
	ID            int64         `json:"id"`
	ReservationID int64         `json:"reservationId"`
	Method        string        `json:"method"`
	Amount        float64       `json:"amount"`
	Status        PaymentStatus `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// ResolveImageURL turns an event's stored image reference into a displayable
// URL. Absolute references pass through; anything else is joined to the API
// base. This is the single resolver: no per-view shape sniffing.
func ResolveImageURL(baseURL, ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(ref, "/")
}
