package client

import (
	"context"
	"errors"
	"net/http"

	apperr "eventdesk/internal/errors"
	"eventdesk/internal/logger"
	"eventdesk/internal/models"
)

// AuthClient wraps the /api/auth endpoints.
type AuthClient struct {
	c *Client
}

// Register creates a new account. Unauthenticated endpoint; the role defaults
// server-side to ROLE_USER when absent.
func (a *AuthClient) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	var user models.User
	if err := a.c.do(ctx, http.MethodPost, "/api/auth/register", req, &user, false); err != nil {
		return nil, err
	}
	return &user, nil
}

// Verify submits an email verification code.
func (a *AuthClient) Verify(ctx context.Context, email, code string) (*models.VerifyResponse, error) {
	req := models.VerifyRequest{Email: email, VerificationCode: code}
	var resp models.VerifyResponse
	if err := a.c.do(ctx, http.MethodPost, "/api/auth/verify", req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates and normalizes whatever response shape the backend
// returns into a Session. Failures are reported as AuthError.
func (a *AuthClient) Login(ctx context.Context, req models.LoginRequest) (models.Session, error) {
	var raw loginResponse
	err := a.c.do(ctx, http.MethodPost, "/api/auth/login", req, &raw, false)
	if err != nil {
		return models.Session{}, classifyLoginError(err)
	}
	return normalizeLogin(raw)
}

func classifyLoginError(err error) error {
	var netErr *apperr.NetworkError
	if errors.As(err, &netErr) {
		return &apperr.AuthError{Kind: apperr.AuthUnreachable, Err: err}
	}
	var apiErr *apperr.APIError
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
		return &apperr.AuthError{Kind: apperr.AuthInvalidCredentials, Err: err}
	}
	return err
}

// loginResponse accepts every login shape the backend has been seen to
// produce: a flat token field, an accessToken variant, a nested data object,
// or the jwt/access_token fallbacks.
type loginResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"accessToken"`
	JWT         string `json:"jwt"`
	AccessSnake string `json:"access_token"`

	ID       int64  `json:"id"`
	UserID   int64  `json:"userId"`
	Email    string `json:"email"`
	Username string `json:"username"`

	Role        string   `json:"role"`
	Roles       []string `json:"roles"`
	Authorities []struct {
		Authority string `json:"authority"`
	} `json:"authorities"`

	Data *loginData `json:"data"`
}

type loginData struct {
	Token       string   `json:"token"`
	AccessToken string   `json:"accessToken"`
	ID          int64    `json:"id"`
	Email       string   `json:"email"`
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Roles       []string `json:"roles"`
	User        *struct {
		ID       int64  `json:"id"`
		Email    string `json:"email"`
		Username string `json:"username"`
		Role     string `json:"role"`
	} `json:"user"`
}

// normalizeLogin reduces the response to {token, user}, trying each known
// shape in fixed priority order. A response without any token is Malformed; a
// token without a role falls back to the least-privileged role rather than
// failing.
func normalizeLogin(raw loginResponse) (models.Session, error) {
	var sess models.Session

	switch {
	case raw.Token != "":
		sess = models.Session{
			Token: raw.Token,
			User: models.User{
				ID:       raw.ID,
				Email:    raw.Email,
				Username: raw.Username,
				Role:     firstRole(raw.Roles, raw.Role),
			},
		}
	case raw.AccessToken != "":
		sess = models.Session{
			Token: raw.AccessToken,
			User: models.User{
				ID:       raw.ID,
				Email:    raw.Email,
				Username: raw.Username,
				Role:     firstRole(raw.Roles, raw.Role),
			},
		}
	case raw.Data != nil:
		d := raw.Data
		token := d.Token
		if token == "" {
			token = d.AccessToken
		}
		sess = models.Session{Token: token}
		if d.User != nil {
			sess.User = models.User{
				ID:       d.User.ID,
				Email:    d.User.Email,
				Username: d.User.Username,
				Role:     firstRole(d.Roles, d.User.Role),
			}
			if sess.User.ID == 0 {
				sess.User.ID = d.ID
			}
		} else {
			sess.User = models.User{
				ID:       d.ID,
				Email:    d.Email,
				Username: d.Username,
				Role:     firstRole(d.Roles, d.Role),
			}
		}
	default:
		token := raw.JWT
		if token == "" {
			token = raw.AccessSnake
		}
		role := raw.Role
		if role == "" && len(raw.Authorities) > 0 {
			role = raw.Authorities[0].Authority
		}
		id := raw.UserID
		if id == 0 {
			id = raw.ID
		}
		sess = models.Session{
			Token: token,
			User: models.User{
				ID:       id,
				Email:    raw.Email,
				Username: raw.Username,
				Role:     models.Role(role),
			},
		}
	}

	if sess.Token == "" {
		return models.Session{}, &apperr.AuthError{Kind: apperr.AuthMalformed}
	}
	if sess.User.Role == "" {
		// Deliberate fail-safe: a token without a role gets the least
		// privileged one.
		logger.Get().Warn("No role in login response, defaulting to ROLE_USER")
		sess.User.Role = models.RoleUser
	}
	return sess, nil
}

func firstRole(roles []string, fallback string) models.Role {
	if len(roles) > 0 {
		return models.Role(roles[0])
	}
	return models.Role(fallback)
}
