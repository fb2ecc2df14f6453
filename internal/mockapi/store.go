package mockapi

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"eventdesk/internal/models"
)

var (
	errNotFound         = errors.New("not found")
	errForbidden        = errors.New("forbidden")
	errNotEnoughTickets = errors.New("Not enough tickets available")
	errBadCredentials   = errors.New("invalid credentials")
	errEmailTaken       = errors.New("email already registered")
)

type account struct {
	user     models.User
	password string
	verified bool
}

// Store is the mock backend's entire state: mutex-guarded maps, no database.
// It is the sole arbiter of inventory; Reserve checks and decrements
// atomically so a racing second booking for the last tickets loses.
type Store struct {
	mu sync.Mutex

	accounts     map[int64]*account
	byEmail      map[string]int64
	tokens       map[string]int64
	events       map[int64]*models.Event
	reservations map[int64]*models.Reservation
	payments     map[int64]*models.Payment

	nextUser        int64
	nextEvent       int64
	nextReservation int64
	nextPayment     int64
}

func NewStore() *Store {
	return &Store{
		accounts:     make(map[int64]*account),
		byEmail:      make(map[string]int64),
		tokens:       make(map[string]int64),
		events:       make(map[int64]*models.Event),
		reservations: make(map[int64]*models.Reservation),
		payments:     make(map[int64]*models.Payment),
	}
}

func (s *Store) Register(req models.RegisterRequest) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[req.Email]; taken {
		return models.User{}, errEmailTaken
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return models.User{}, fmt.Errorf("unknown role %q", req.Role)
	}

	s.nextUser++
	user := models.User{
		ID:       s.nextUser,
		Email:    req.Email,
		Username: req.Username,
		Role:     role,
	}
	s.accounts[user.ID] = &account{user: user, password: req.Password}
	s.byEmail[req.Email] = user.ID
	return user, nil
}

// Verify accepts any non-empty code for a known account.
func (s *Store) Verify(email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return errNotFound
	}
	if code == "" {
		return fmt.Errorf("verification code required")
	}
	s.accounts[id].verified = true
	return nil
}

func (s *Store) Login(email, password string) (models.User, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return models.User{}, "", errBadCredentials
	}
	acct := s.accounts[id]
	if acct.password != password {
		return models.User{}, "", errBadCredentials
	}

	token := uuid.New().String()
	s.tokens[token] = id
	return acct.user, token, nil
}

func (s *Store) UserByToken(token string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.tokens[token]
	if !ok {
		return models.User{}, false
	}
	return s.accounts[id].user, true
}

func (s *Store) CreateEvent(organizerID int64, req models.EventRequest) (models.Event, error) {
	startAt, endAt, err := parseEventTimes(req)
	if err != nil {
		return models.Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextEvent++
	event := models.Event{
		ID:           s.nextEvent,
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		Category:     req.Category,
		StartAt:      startAt,
		EndAt:        endAt,
		TotalTickets: req.TotalTickets,
		TicketPrice:  req.TicketPrice,
		OrganizerID:  organizerID,
	}
	s.events[event.ID] = &event
	return event, nil
}

func (s *Store) UpdateEvent(id, organizerID int64, req models.EventRequest) (models.Event, error) {
	startAt, endAt, err := parseEventTimes(req)
	if err != nil {
		return models.Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[id]
	if !ok {
		return models.Event{}, errNotFound
	}
	if event.OrganizerID != organizerID {
		return models.Event{}, errForbidden
	}

	event.Title = req.Title
	event.Description = req.Description
	event.Location = req.Location
	event.Category = req.Category
	event.StartAt = startAt
	event.EndAt = endAt
	event.TotalTickets = req.TotalTickets
	event.TicketPrice = req.TicketPrice
	return *event, nil
}

func (s *Store) DeleteEvent(id, organizerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[id]
	if !ok {
		return errNotFound
	}
	if event.OrganizerID != organizerID {
		return errForbidden
	}
	delete(s.events, id)
	return nil
}

func (s *Store) SetEventImage(id, organizerID int64, imageURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[id]
	if !ok {
		return errNotFound
	}
	if event.OrganizerID != organizerID {
		return errForbidden
	}
	event.ImageURL = imageURL
	return nil
}

func (s *Store) ListEvents() []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, *e)
	}
	return out
}

func (s *Store) GetEvent(id int64) (models.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[id]
	if !ok {
		return models.Event{}, false
	}
	return *e, true
}

// Reserve checks availability and increments ticketsSold in one critical
// section. Oversubscription is impossible here regardless of what clients
// believe.
func (s *Store) Reserve(eventID, userID int64, quantity int) (models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[eventID]
	if !ok {
		return models.Reservation{}, errNotFound
	}
	if quantity < 1 {
		return models.Reservation{}, fmt.Errorf("quantity must be at least 1")
	}
	if quantity > event.TotalTickets-event.TicketsSold {
		return models.Reservation{}, errNotEnoughTickets
	}

	event.TicketsSold += quantity

	s.nextReservation++
	reservation := models.Reservation{
		ID:        s.nextReservation,
		EventID:   eventID,
		UserID:    userID,
		Quantity:  quantity,
		Status:    models.ReservationPending,
		CreatedAt: time.Now().UTC(),
	}
	s.reservations[reservation.ID] = &reservation
	return reservation, nil
}

func (s *Store) ReservationsByUser(userID int64) []models.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Reservation, 0)
	for _, r := range s.reservations {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out
}

// CancelReservation flips the status and restores the event's sold count.
// Paid reservations stay paid: there is no refund path.
func (s *Store) CancelReservation(id, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservation, ok := s.reservations[id]
	if !ok {
		return errNotFound
	}
	if reservation.UserID != userID {
		return errForbidden
	}
	if reservation.Status != models.ReservationPending {
		return fmt.Errorf("reservation is %s", reservation.Status)
	}

	reservation.Status = models.ReservationCancelled
	if event, ok := s.events[reservation.EventID]; ok {
		event.TicketsSold -= reservation.Quantity
		if event.TicketsSold < 0 {
			event.TicketsSold = 0
		}
	}
	return nil
}

// declinedTestCard simulates a gateway decline for one well-known number.
const declinedTestCard = "4000000000000002"

func (s *Store) Pay(userID int64, req models.PaymentRequest) (models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservation, ok := s.reservations[req.ReservationID]
	if !ok {
		return models.Payment{}, errNotFound
	}
	if reservation.UserID != userID {
		return models.Payment{}, errForbidden
	}
	if reservation.Status != models.ReservationPending {
		return models.Payment{}, fmt.Errorf("reservation is %s", reservation.Status)
	}

	event, ok := s.events[reservation.EventID]
	if !ok {
		return models.Payment{}, errNotFound
	}
	expected := float64(reservation.Quantity) * event.TicketPrice
	if req.Amount != expected {
		return models.Payment{}, fmt.Errorf("invalid amount: expected %.2f", expected)
	}

	if req.CardNumber == declinedTestCard {
		return models.Payment{}, fmt.Errorf("card declined")
	}

	reservation.Status = models.ReservationPaid

	s.nextPayment++
	payment := models.Payment{
		ID:            s.nextPayment,
		ReservationID: reservation.ID,
		Method:        req.Method,
		Amount:        req.Amount,
		Status:        models.PaymentCompleted,
		CreatedAt:     time.Now().UTC(),
	}
	s.payments[payment.ID] = &payment
	return payment, nil
}

func (s *Store) PaymentsByUser(userID int64) []models.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Payment, 0)
	for _, p := range s.payments {
		if r, ok := s.reservations[p.ReservationID]; ok && r.UserID == userID {
			out = append(out, *p)
		}
	}
	return out
}

func (s *Store) GetPayment(id, userID int64) (models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[id]
	if !ok {
		return models.Payment{}, errNotFound
	}
	if r, ok := s.reservations[p.ReservationID]; !ok || r.UserID != userID {
		return models.Payment{}, errForbidden
	}
	return *p, nil
}

func parseEventTimes(req models.EventRequest) (time.Time, time.Time, error) {
	startAt, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid startAt: %w", err)
	}
	endAt, err := time.Parse(time.RFC3339, req.EndAt)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid endAt: %w", err)
	}
	if !endAt.After(startAt) {
		return time.Time{}, time.Time{}, fmt.Errorf("endAt must be after startAt")
	}
	return startAt, endAt, nil
}
