package models

// RegisterRequest is the payload for POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     Role   `json:"role"`
}

// VerifyRequest is the payload for POST /api/auth/verify.
type VerifyRequest struct {
	Email            string `json:"email" binding:"required"`
	VerificationCode string `json:"verificationCode" binding:"required"`
}

// VerifyResponse acknowledges an account verification attempt.
type VerifyResponse struct {
	Verified bool   `json:"verified"`
	Message  string `json:"message,omitempty"`
}

// LoginRequest is the payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Session is the normalized result of a successful login: one token, one user.
// The backend's login response varies in shape; the auth client reduces every
// known shape to this.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// EventRequest is the payload for creating or updating an event.
type EventRequest struct {
	Title        string  `json:"title" binding:"required"`
	Description  string  `json:"description" binding:"required"`
	Location     string  `json:"location" binding:"required"`
	Category     string  `json:"category" binding:"required"`
	StartAt      string  `json:"startAt" binding:"required"`
	EndAt        string  `json:"endAt" binding:"required"`
	TotalTickets int     `json:"totalTickets" binding:"required,min=1"`
	TicketPrice  float64 `json:"ticketPrice" binding:"min=0"`
}

// CreateEventResponse wraps the created event, matching the backend's
// {event: {...}} envelope.
type CreateEventResponse struct {
	Event Event `json:"event"`
}

// UploadImageResponse carries the stored image reference after a multipart
// upload.
type UploadImageResponse struct {
	ImageURL string `json:"imageUrl"`
}

// ReserveRequest is the payload for POST /api/reservations/reserve.
type ReserveRequest struct {
	EventID  int64 `json:"eventId" binding:"required"`
	Quantity int   `json:"quantity" binding:"required,min=1"`
}

// PaymentRequest is the payload for POST /api/payments/pay. Amount is
// recomputed from quantity and current ticket price at submission time, never
// taken from a cached total.
type PaymentRequest struct {
	ReservationID int64   `json:"reservationId" binding:"required"`
	Method        string  `json:"method" binding:"required"`
	CardNumber    string  `json:"cardNumber" binding:"required"`
	CardHolder    string  `json:"cardHolder" binding:"required"`
	ExpiryDate    string  `json:"expiryDate" binding:"required"`
	CVV           string  `json:"cvv" binding:"required"`
	Amount        float64 `json:"amount" binding:"required"`
}

// ErrorResponse is the backend's JSON error envelope.
type ErrorResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Text returns whichever message field the backend populated.
func (e ErrorResponse) Text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}
