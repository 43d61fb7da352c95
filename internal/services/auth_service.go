package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"tokoadmin/internal/forms"
	"tokoadmin/internal/session"
	"tokoadmin/internal/state"
	"tokoadmin/pkg/apiclient"
)

// AuthError is returned by Login and Register. Message is what the console
// shows the operator.
type AuthError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }

// Login is the outcome of a successful login or registration.
type Login struct {
	Token    string
	Identity session.Identity
	State    state.State
}

type authResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// AuthService signs operators in against the storefront and keeps their
// state in the registry.
type AuthService struct {
	api        API
	registry   *state.Registry
	cookieName string
	secret     []byte
	log        zerolog.Logger
}

// NewAuthService creates a new AuthService. cookieName is the upstream session
// cookie; an empty secret derives sessions without signature verification.
func NewAuthService(api API, registry *state.Registry, cookieName, secret string, log zerolog.Logger) *AuthService {
	return &AuthService{
		api:        api,
		registry:   registry,
		cookieName: cookieName,
		secret:     []byte(secret),
		log:        log,
	}
}

// Login checks the form locally, then posts it to the storefront.
func (s *AuthService) Login(ctx context.Context, form forms.LoginForm) (*Login, error) {
	if err := form.Check(); err != nil {
		return nil, &AuthError{Message: localMessage(err), StatusCode: http.StatusBadRequest, Err: err}
	}
	body := map[string]string{
		"email":    form.Email,
		"password": form.Password,
		"role":     string(form.Role),
	}
	return s.authenticate(ctx, "/auth/login", body, "Login failed")
}

// Register checks the form locally, then creates the account upstream and
// signs the operator in.
func (s *AuthService) Register(ctx context.Context, form forms.RegisterForm) (*Login, error) {
	if err := form.Check(); err != nil {
		return nil, &AuthError{Message: localMessage(err), StatusCode: http.StatusBadRequest, Err: err}
	}
	body := map[string]string{
		"fullname": form.FullName,
		"email":    form.Email,
		"phone":    form.Phone,
		"password": form.Password,
		"role":     string(form.Role),
	}
	return s.authenticate(ctx, "/auth/register", body, "Registration failed")
}

func (s *AuthService) authenticate(ctx context.Context, path string, body any, failure string) (*Login, error) {
	store := state.NewStore()
	store.Dispatch(state.LoginStarted{})

	var out authResponse
	resp, err := s.api.SendJSON(ctx, http.MethodPost, path, body, &out)
	if err != nil {
		msg := failure
		var se *apiclient.StatusError
		if errors.As(err, &se) && se.Message != "" {
			msg = se.Message
		}
		store.Dispatch(state.LoginFailed{Message: msg})
		s.log.Warn().Err(err).Str("path", path).Msg("authentication failed")
		return nil, &AuthError{Message: msg, StatusCode: statusOr(err, http.StatusBadGateway), Err: err}
	}

	token := out.Token
	if c := resp.Cookie(s.cookieName); c != nil && c.Value != "" {
		token = c.Value
	}
	identity, err := session.Derive(token, s.secret)
	if err != nil {
		store.Dispatch(state.LoginFailed{Message: failure})
		return nil, &AuthError{Message: failure, StatusCode: http.StatusBadGateway, Err: err}
	}

	st := store.Dispatch(state.LoginSucceeded{Identity: *identity})
	s.registry.Put(identity.ID, store)
	s.log.Info().Str("operator", identity.ID).Str("role", string(identity.Role)).Msg("operator signed in")
	return &Login{Token: token, Identity: *identity, State: st}, nil
}

// Restore returns the store of a request that carries a derivable token. A
// store missing from the registry, e.g. after a restart, is recreated as
// authenticated. An expired token drops the operator's state.
func (s *AuthService) Restore(token string) (*session.Identity, *state.Store, error) {
	identity, err := session.Derive(token, s.secret)
	if errors.Is(err, session.ErrExpired) && identity != nil {
		s.Invalidate(identity.ID, "Session expired, please log in again")
	}
	if err != nil {
		return nil, nil, err
	}
	store := s.registry.Get(identity.ID)
	if store.State().Session.Phase != state.Authenticated {
		store.Dispatch(state.LoginStarted{})
		store.Dispatch(state.LoginSucceeded{Identity: *identity})
	}
	return identity, store, nil
}

// Invalidate drops the operator's state after its token stopped deriving.
func (s *AuthService) Invalidate(operatorID, reason string) {
	if store, ok := s.registry.Lookup(operatorID); ok {
		store.Dispatch(state.SessionInvalidated{Message: reason})
	}
	s.registry.Remove(operatorID)
}

// Logout forgets the operator's state. The upstream session is left alone.
func (s *AuthService) Logout(operatorID string) {
	if store, ok := s.registry.Lookup(operatorID); ok {
		store.Dispatch(state.LoggedOut{})
	}
	s.registry.Remove(operatorID)
	s.log.Info().Str("operator", operatorID).Msg("operator signed out")
}

// localMessage is the text shown for a form that failed before any request.
func localMessage(err error) string {
	var verr *forms.ValidationError
	switch {
	case errors.Is(err, forms.ErrRoleRequired):
		return "Please select a user type"
	case errors.Is(err, forms.ErrPasswordMismatch):
		return "Passwords do not match"
	case errors.As(err, &verr):
		return "Validation failed"
	}
	return err.Error()
}

func statusOr(err error, fallback int) int {
	if code := apiclient.StatusCode(err); code != 0 {
		return code
	}
	return fallback
}
