// Package authz is the single place role checks happen. Views and flows ask
// the gate; nobody compares role strings on their own. Matching is exact, with
// no hierarchy between roles.
package authz

import (
	"eventdesk/internal/models"
)

// Action is a capability a view may want to expose.
type Action string

const (
	ActionBookTickets    Action = "book-tickets"
	ActionPayReservation Action = "pay-reservation"
	ActionCreateEvent    Action = "create-event"
	ActionEditEvent      Action = "edit-event"
	ActionDeleteEvent    Action = "delete-event"
	ActionViewDashboard  Action = "view-dashboard"
)

var actionRoles = map[Action]models.Role{
	ActionBookTickets:    models.RoleUser,
	ActionPayReservation: models.RoleUser,
	ActionCreateEvent:    models.RoleOrganizer,
	ActionEditEvent:      models.RoleOrganizer,
	ActionDeleteEvent:    models.RoleOrganizer,
	ActionViewDashboard:  models.RoleAdmin,
}

// Can reports whether role may perform action. Unknown actions are denied.
func Can(action Action, role models.Role) bool {
	required, ok := actionRoles[action]
	return ok && role == required
}

type access int

const (
	public access = iota
	authenticated
	roleOnly
)

type routeRule struct {
	access access
	role   models.Role
}

// The navigable routes and who may land on them.
var routes = map[string]routeRule{
	"/":                {access: public},
	"/login":           {access: public},
	"/register":        {access: public},
	"/verify":          {access: public},
	"/events":          {access: public},
	"/my-reservations": {access: roleOnly, role: models.RoleUser},
	"/payment":         {access: roleOnly, role: models.RoleUser},
	"/create-event":    {access: roleOnly, role: models.RoleOrganizer},
	"/update-event":    {access: roleOnly, role: models.RoleOrganizer},
	"/dashboard":       {access: roleOnly, role: models.RoleAdmin},
}

// Decision is the gate's answer for a navigation attempt.
type Decision struct {
	Allow      bool
	RedirectTo string
}

// CanEnter reports whether the given identity may land on route.
func CanEnter(route string, user *models.User) bool {
	return Resolve(route, user).Allow
}

// Resolve applies the transition table: unauthenticated access to a protected
// route goes to /login; an authenticated user with the wrong role goes to
// their role's home. Unknown routes are treated as protected.
func Resolve(route string, user *models.User) Decision {
	rule, known := routes[route]
	if !known {
		rule = routeRule{access: authenticated}
	}

	if rule.access == public {
		return Decision{Allow: true}
	}
	if user == nil {
		return Decision{RedirectTo: "/login"}
	}
	if rule.access == roleOnly && user.Role != rule.role {
		return Decision{RedirectTo: Home(user.Role)}
	}
	return Decision{Allow: true}
}

// Home is the landing route for a role.
func Home(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return "/dashboard"
	case models.RoleUser, models.RoleOrganizer:
		return "/events"
	default:
		return "/login"
	}
}
