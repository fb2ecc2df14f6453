package mockapi

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"eventdesk/internal/models"
)

type handlers struct {
	store *Store
}

// Auth

// Register - POST /api/auth/register
func (h *handlers) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, err := h.store.Register(req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Verify - POST /api/auth/verify
func (h *handlers) Verify(c *gin.Context) {
	var req models.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := h.store.Verify(req.Email, req.VerificationCode); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, models.VerifyResponse{Verified: true, Message: "Account verified"})
}

// Login - POST /api/auth/login
// Responds in the accessToken/roles shape so clients exercise their response
// normalization.
func (h *handlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, token, err := h.store.Login(req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken": token,
		"tokenType":   "Bearer",
		"id":          user.ID,
		"username":    user.Username,
		"email":       user.Email,
		"roles":       []string{string(user.Role)},
	})
}

// Events

// ListEvents - GET /api/events
func (h *handlers) ListEvents(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ListEvents())
}

// GetEvent - GET /api/events/:id
func (h *handlers) GetEvent(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	event, found := h.store.GetEvent(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"message": "Event not found"})
		return
	}
	c.JSON(http.StatusOK, event)
}

// CreateEvent - POST /api/events
func (h *handlers) CreateEvent(c *gin.Context) {
	var req models.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	event, err := h.store.CreateEvent(currentUser(c).ID, req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.CreateEventResponse{Event: event})
}

// UpdateEvent - PUT /api/events/:id
func (h *handlers) UpdateEvent(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req models.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	event, err := h.store.UpdateEvent(id, currentUser(c).ID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// DeleteEvent - DELETE /api/events/:id
func (h *handlers) DeleteEvent(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.store.DeleteEvent(id, currentUser(c).ID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// UploadEventImage - POST /api/events/:id/image
// Multipart form, field "image". The mock keeps no bytes: it records a
// relative URL the way the real backend's static hosting would.
func (h *handlers) UploadEventImage(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "image file is required"})
		return
	}

	imageURL := fmt.Sprintf("/static/uploads/%s%s", uuid.New().String(), filepath.Ext(file.Filename))
	if err := h.store.SetEventImage(id, currentUser(c).ID, imageURL); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, models.UploadImageResponse{ImageURL: imageURL})
}

// Reservations

// Reserve - POST /api/reservations/reserve
func (h *handlers) Reserve(c *gin.Context) {
	var req models.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	reservation, err := h.store.Reserve(req.EventID, currentUser(c).ID, req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, reservation)
}

// ListReservations - GET /api/reservations/user
func (h *handlers) ListReservations(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ReservationsByUser(currentUser(c).ID))
}

// CancelReservation - DELETE /api/reservations/:id
func (h *handlers) CancelReservation(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.store.CancelReservation(id, currentUser(c).ID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Payments

// Pay - POST /api/payments/pay
func (h *handlers) Pay(c *gin.Context) {
	var req models.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	payment, err := h.store.Pay(currentUser(c).ID, req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, payment)
}

// ListPayments - GET /api/payments/user
func (h *handlers) ListPayments(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.PaymentsByUser(currentUser(c).ID))
}

// GetPayment - GET /api/payments/:id
func (h *handlers) GetPayment(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	payment, err := h.store.GetPayment(id, currentUser(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (h *handlers) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return 0, false
	}
	return id, true
}

// fail maps store errors onto HTTP statuses with the message in the envelope
// the clients decode.
func (h *handlers) fail(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, errNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errForbidden):
		status = http.StatusForbidden
	case errors.Is(err, errNotEnoughTickets):
		status = http.StatusConflict
	case errors.Is(err, errBadCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, errEmailTaken):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"message": err.Error()})
}
