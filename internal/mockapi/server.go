// Package mockapi is an in-memory implementation of the backend contract the
// client speaks. It exists for local development and integration tests; the
// real backend is an external system. Contract-wise it is authoritative about
// inventory: a reservation that would oversell is rejected here no matter
// what the client's cached counts said.
package mockapi

import (
	"time"

	"github.com/gin-gonic/gin"

	"eventdesk/internal/models"
)

type Config struct {
	Port    string
	GinMode string
}

// Server hosts the mock backend routes.
type Server struct {
	router *gin.Engine
	config Config
	store  *Store
}

func NewServer(cfg Config) *Server {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CORS())
	router.Use(RequestLogger())

	server := &Server{
		router: router,
		config: cfg,
		store:  NewStore(),
	}
	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	h := &handlers{store: s.store}

	api := s.router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/verify", h.Verify)
			auth.POST("/login", h.Login)
		}

		events := api.Group("/events")
		{
			events.GET("", h.ListEvents)
			events.GET("/:id", h.GetEvent)

			organizer := events.Group("", BearerAuth(s.store), RequireRole(models.RoleOrganizer))
			{
				organizer.POST("", h.CreateEvent)
				organizer.PUT("/:id", h.UpdateEvent)
				organizer.DELETE("/:id", h.DeleteEvent)
				organizer.POST("/:id/image", h.UploadEventImage)
			}
		}

		reservations := api.Group("/reservations", BearerAuth(s.store))
		{
			reservations.POST("/reserve", RequireRole(models.RoleUser), h.Reserve)
			reservations.GET("/user", h.ListReservations)
			reservations.GET("/my-reservations", h.ListReservations)
			reservations.DELETE("/:id", h.CancelReservation)
		}

		payments := api.Group("/payments", BearerAuth(s.store))
		{
			payments.POST("/pay", RequireRole(models.RoleUser), h.Pay)
			payments.GET("/user", h.ListPayments)
			payments.GET("/:id", h.GetPayment)
		}
	}

	s.router.GET("/health", s.healthCheck)
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "ok",
		"service": "eventdesk-mockapi",
	})
}

// Router returns the gin engine, for tests and for the http.Server wrapper.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Store exposes the backing store so dev seeding and tests can arrange state.
func (s *Server) Store() *Store {
	return s.store
}

// Seed loads a small fixture set: one organizer with two events, and one
// regular user.
func (s *Server) Seed() {
	organizer, _ := s.store.Register(models.RegisterRequest{
		Username: "organizer",
		Email:    "organizer@eventdesk.local",
		Password: "organizer1",
		Role:     models.RoleOrganizer,
	})
	_, _ = s.store.Register(models.RegisterRequest{
		Username: "alice",
		Email:    "alice@eventdesk.local",
		Password: "alice1234",
		Role:     models.RoleUser,
	})

	now := time.Now().UTC()
	_, _ = s.store.CreateEvent(organizer.ID, models.EventRequest{
		Title:        "Go Meetup",
		Description:  "Monthly Go community meetup",
		Location:     "Downtown Hub",
		Category:     "CONFERENCE",
		StartAt:      now.Add(30 * 24 * time.Hour).Format(time.RFC3339),
		EndAt:        now.Add(30*24*time.Hour + 3*time.Hour).Format(time.RFC3339),
		TotalTickets: 120,
		TicketPrice:  15,
	})
	_, _ = s.store.CreateEvent(organizer.ID, models.EventRequest{
		Title:        "Summer Festival",
		Description:  "Open-air music festival",
		Location:     "Riverside Park",
		Category:     "FESTIVAL",
		StartAt:      now.Add(60 * 24 * time.Hour).Format(time.RFC3339),
		EndAt:        now.Add(61 * 24 * time.Hour).Format(time.RFC3339),
		TotalTickets: 500,
		TicketPrice:  49.5,
	})
}
