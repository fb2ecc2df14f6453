// Command eventdesk is the terminal client for the event platform: browse
// events, book and pay for tickets, and (for organizers and admins) author
// events and read the dashboard. It talks to the backend configured via
// API_BASE_URL; run cmd/mockapi for a local one.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"eventdesk/internal/authoring"
	"eventdesk/internal/authz"
	"eventdesk/internal/booking"
	"eventdesk/internal/client"
	"eventdesk/internal/config"
	"eventdesk/internal/dashboard"
	"eventdesk/internal/inventory"
	"eventdesk/internal/logger"
	"eventdesk/internal/models"
	"eventdesk/internal/notify"
	"eventdesk/internal/session"
)

const usage = `Usage: eventdesk <command> [flags]

Commands:
  register       Create an account
  verify         Verify an account with an emailed code
  login          Authenticate and store the session
  logout         Clear the stored session
  whoami         Show the current identity
  events         List events with availability, filtered by -category/-search
  event          Show one event
  book           Reserve tickets for an event
  reservations   List your reservations
  cancel         Cancel a reservation
  pay            Pay for a pending reservation
  create-event   Create an event (organizer)
  update-event   Update an event (organizer)
  delete-event   Delete an event (organizer)
  dashboard      Show aggregate statistics (admin)
`

type app struct {
	store      *session.Store
	api        *client.Client
	projection *inventory.Projection
	notifier   *notify.Notifier
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	store, err := session.Open(cfg.Session)
	if err != nil {
		logger.Fatal("Failed to open session store", "error", err)
	}
	defer store.Close()

	a := &app{
		store:      store,
		api:        client.New(cfg.API, store),
		projection: inventory.NewProjection(),
		notifier:   notify.New(),
	}

	ctx := context.Background()

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if notice := a.notifier.Current(); notice != nil {
		fmt.Printf("[%s] %s\n", notice.Kind, notice.Text)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return a.register(ctx, args)
	case "verify":
		return a.verify(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "logout":
		a.store.Logout()
		fmt.Println("Logged out")
		return nil
	case "whoami":
		return a.whoami()
	case "events":
		return a.listEvents(ctx, args)
	case "event":
		return a.showEvent(ctx, args)
	case "book":
		return a.book(ctx, args)
	case "reservations":
		return a.listReservations(ctx)
	case "cancel":
		return a.cancel(ctx, args)
	case "pay":
		return a.pay(ctx, args)
	case "create-event":
		return a.createEvent(ctx, args)
	case "update-event":
		return a.updateEvent(ctx, args)
	case "delete-event":
		return a.deleteEvent(ctx, args)
	case "dashboard":
		return a.dashboard(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// requireAction gates a command the same way a view would gate a route.
func (a *app) requireAction(action authz.Action) error {
	user := a.store.Current()
	if user == nil {
		return fmt.Errorf("please log in first")
	}
	if !authz.Can(action, user.Role) {
		return fmt.Errorf("your role (%s) cannot do this", user.Role)
	}
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	username := fs.String("username", "", "Username")
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password")
	role := fs.String("role", "", "Role (defaults to ROLE_USER)")
	fs.Parse(args)

	user, err := a.api.Auth().Register(ctx, models.RegisterRequest{
		Username: *username,
		Email:    *email,
		Password: *password,
		Role:     models.Role(*role),
	})
	if err != nil {
		return err
	}
	fmt.Printf("Registered %s (%s) as %s. Check your email for a verification code.\n",
		user.Username, user.Email, user.Role)
	return nil
}

func (a *app) verify(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	email := fs.String("email", "", "Email address")
	code := fs.String("code", "", "Verification code")
	fs.Parse(args)

	resp, err := a.api.Auth().Verify(ctx, *email, *code)
	if err != nil {
		return err
	}
	fmt.Println(resp.Message)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password")
	fs.Parse(args)

	sess, err := a.api.Auth().Login(ctx, models.LoginRequest{
		Email:    *email,
		Password: *password,
	})
	if err != nil {
		return err
	}
	if err := a.store.SetSession(sess); err != nil {
		logger.Get().Warn("Session not persisted", "error", err)
	}

	fmt.Printf("Welcome %s (%s). Home: %s\n", sess.User.Username, sess.User.Role, authz.Home(sess.User.Role))
	return nil
}

func (a *app) whoami() error {
	user := a.store.Current()
	if user == nil {
		fmt.Println("Not logged in")
		return nil
	}
	fmt.Printf("%s <%s> role=%s id=%d\n", user.Username, user.Email, user.Role, user.ID)
	return nil
}

func (a *app) loadEvents(ctx context.Context) error {
	events, err := a.api.Events().List(ctx)
	if err != nil {
		return err
	}
	a.projection.Load(events)
	return nil
}

func (a *app) listEvents(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	category := fs.String("category", "", "Only show events in this category")
	search := fs.String("search", "", "Only show events matching this text")
	fs.Parse(args)

	if err := a.loadEvents(ctx); err != nil {
		return err
	}

	events := inventory.Filter(a.projection.Events(), *category, *search)
	if len(events) == 0 {
		fmt.Println("No events match. Categories:", strings.Join(inventory.Categories(a.projection.Events()), ", "))
		return nil
	}

	for _, e := range events {
		avail := inventory.Project(&e)
		status := fmt.Sprintf("%d left", avail.Remaining)
		if avail.SoldOut {
			status = "SOLD OUT"
		}
		fmt.Printf("#%d  %-30s %-12s %s  $%.2f  [%s]\n",
			e.ID, e.Title, e.Category, e.StartAt.Format("2006-01-02"), e.TicketPrice, status)
	}
	return nil
}

func (a *app) showEvent(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("event", flag.ExitOnError)
	id := fs.Int64("id", 0, "Event id")
	fs.Parse(args)

	event, err := a.api.Events().Get(ctx, *id)
	if err != nil {
		return err
	}

	avail := inventory.Project(event)
	fmt.Printf("%s\n%s\nLocation: %s\nCategory: %s\nStarts: %s\nEnds: %s\nPrice: $%.2f\nAvailable: %d of %d\n",
		event.Title, event.Description, event.Location, event.Category,
		event.StartAt.Format(time.RFC1123), event.EndAt.Format(time.RFC1123),
		event.TicketPrice, avail.Remaining, event.TotalTickets)
	if url := models.ResolveImageURL(a.api.BaseURL(), event.ImageURL); url != "" {
		fmt.Println("Image:", url)
	}
	return nil
}

func (a *app) book(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("book", flag.ExitOnError)
	eventID := fs.Int64("event", 0, "Event id")
	quantity := fs.Int("quantity", 1, "Number of tickets")
	fs.Parse(args)

	if err := a.requireAction(authz.ActionBookTickets); err != nil {
		return err
	}
	if err := a.loadEvents(ctx); err != nil {
		return err
	}

	flow := booking.NewFlow(a.api, a.projection, a.notifier)
	if err := flow.Open(*eventID); err != nil {
		return err
	}
	if err := flow.SetQuantity(*quantity); err != nil {
		return err
	}

	reservation, err := flow.Submit(ctx)
	if err != nil {
		if msg := flow.LastError(); msg != "" {
			return fmt.Errorf("%s", msg)
		}
		return err
	}

	avail, _ := a.projection.Availability(*eventID)
	fmt.Printf("Reservation #%d created (%d tickets). %d remaining.\n",
		reservation.ID, reservation.Quantity, avail.Remaining)
	return nil
}

func (a *app) listReservations(ctx context.Context) error {
	if a.store.Current() == nil {
		return fmt.Errorf("please log in first")
	}

	reservations, err := a.api.Reservations().ListMine(ctx)
	if err != nil {
		return err
	}
	for _, r := range reservations {
		fmt.Printf("#%d  event=%d  qty=%d  %s  %s\n",
			r.ID, r.EventID, r.Quantity, r.Status, r.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func (a *app) findReservation(ctx context.Context, id int64) (models.Reservation, error) {
	reservations, err := a.api.Reservations().ListMine(ctx)
	if err != nil {
		return models.Reservation{}, err
	}
	for _, r := range reservations {
		if r.ID == id {
			return r, nil
		}
	}
	return models.Reservation{}, fmt.Errorf("reservation %d not found", id)
}

func (a *app) cancel(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cancel", flag.ExitOnError)
	id := fs.Int64("id", 0, "Reservation id")
	fs.Parse(args)

	if a.store.Current() == nil {
		return fmt.Errorf("please log in first")
	}

	reservation, err := a.findReservation(ctx, *id)
	if err != nil {
		return err
	}
	if err := a.loadEvents(ctx); err != nil {
		return err
	}

	return booking.NewCanceller(a.api, a.projection, a.notifier).Cancel(ctx, reservation)
}

func (a *app) pay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pay", flag.ExitOnError)
	id := fs.Int64("reservation", 0, "Reservation id")
	cardNumber := fs.String("card", "", "Card number")
	cardHolder := fs.String("holder", "", "Card holder name")
	expiry := fs.String("expiry", "", "Expiry (MM/YY)")
	cvv := fs.String("cvv", "", "CVV")
	fs.Parse(args)

	if err := a.requireAction(authz.ActionPayReservation); err != nil {
		return err
	}

	reservation, err := a.findReservation(ctx, *id)
	if err != nil {
		return err
	}

	form := booking.NewPaymentForm(a.api, a.notifier, reservation)
	payment, err := form.Submit(ctx, booking.CardDetails{
		CardNumber: *cardNumber,
		CardHolder: *cardHolder,
		ExpiryDate: *expiry,
		CVV:        *cvv,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Payment #%d completed: $%.2f\n", payment.ID, payment.Amount)
	return nil
}

func (a *app) parseDraft(fs *flag.FlagSet, args []string) (authoring.Draft, error) {
	title := fs.String("title", "", "Event title")
	description := fs.String("description", "", "Event description")
	location := fs.String("location", "", "Event location")
	category := fs.String("category", "", "Event category")
	startAt := fs.String("start", "", "Start time (RFC3339)")
	endAt := fs.String("end", "", "End time (RFC3339)")
	totalTickets := fs.Int("tickets", 0, "Total tickets")
	ticketPrice := fs.Float64("price", 0, "Ticket price")
	imagePath := fs.String("image", "", "Optional image file to attach")
	acceptTerms := fs.Bool("accept-terms", false, "Accept the terms of service")
	fs.Parse(args)

	var draft authoring.Draft
	start, err := time.Parse(time.RFC3339, *startAt)
	if err != nil {
		return draft, fmt.Errorf("invalid -start: %w", err)
	}
	end, err := time.Parse(time.RFC3339, *endAt)
	if err != nil {
		return draft, fmt.Errorf("invalid -end: %w", err)
	}

	draft = authoring.Draft{
		Title:         *title,
		Description:   *description,
		Location:      *location,
		Category:      *category,
		StartAt:       start,
		EndAt:         end,
		TotalTickets:  *totalTickets,
		TicketPrice:   *ticketPrice,
		TermsAccepted: *acceptTerms,
	}

	if *imagePath != "" {
		data, err := os.ReadFile(*imagePath)
		if err != nil {
			return draft, fmt.Errorf("failed to read image: %w", err)
		}
		draft.Image = &authoring.ImageAttachment{Filename: *imagePath, Data: bytes.NewReader(data)}
	}
	return draft, nil
}

func (a *app) createEvent(ctx context.Context, args []string) error {
	if err := a.requireAction(authz.ActionCreateEvent); err != nil {
		return err
	}

	fs := flag.NewFlagSet("create-event", flag.ExitOnError)
	draft, err := a.parseDraft(fs, args)
	if err != nil {
		return err
	}

	result, err := authoring.NewFlow(a.api, a.notifier).Create(ctx, draft)
	if err != nil {
		return err
	}

	fmt.Printf("Event #%d created.\n", result.Event.ID)
	if !result.FullySaved() {
		fmt.Printf("Warning: image upload failed (%v); the event was saved without it.\n", result.ImageErr)
	}
	return nil
}

func (a *app) updateEvent(ctx context.Context, args []string) error {
	if err := a.requireAction(authz.ActionEditEvent); err != nil {
		return err
	}

	fs := flag.NewFlagSet("update-event", flag.ExitOnError)
	id := fs.Int64("id", 0, "Event id")
	draft, err := a.parseDraft(fs, args)
	if err != nil {
		return err
	}

	result, err := authoring.NewFlow(a.api, a.notifier).Update(ctx, *id, draft)
	if err != nil {
		return err
	}

	fmt.Printf("Event #%d updated.\n", result.Event.ID)
	if !result.FullySaved() {
		fmt.Printf("Warning: image upload failed (%v); the event was saved without it.\n", result.ImageErr)
	}
	return nil
}

func (a *app) deleteEvent(ctx context.Context, args []string) error {
	if err := a.requireAction(authz.ActionDeleteEvent); err != nil {
		return err
	}

	fs := flag.NewFlagSet("delete-event", flag.ExitOnError)
	id := fs.Int64("id", 0, "Event id")
	fs.Parse(args)

	if err := a.api.Events().Delete(ctx, *id); err != nil {
		return err
	}
	fmt.Printf("Event #%d deleted.\n", *id)
	return nil
}

func (a *app) dashboard(ctx context.Context) error {
	decision := authz.Resolve("/dashboard", a.store.Current())
	if !decision.Allow {
		return fmt.Errorf("access denied, redirecting to %s", decision.RedirectTo)
	}

	events, err := a.api.Events().List(ctx)
	if err != nil {
		return err
	}

	stats := dashboard.Compute(events, time.Now())
	fmt.Printf("Upcoming events:  %d\n", stats.UpcomingEvents)
	fmt.Printf("Total attendees:  %d\n", stats.TotalAttendees)
	fmt.Printf("Categories:       %d\n", stats.Categories)
	fmt.Printf("Sold-out events:  %d\n", stats.SoldOutEvents)
	fmt.Printf("Gross revenue:    $%.2f\n", stats.GrossRevenue)
	return nil
}
