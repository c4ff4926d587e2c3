package gateway

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Hassanein20/Senior-Project-dev/internal/apiclient"
	"github.com/Hassanein20/Senior-Project-dev/internal/apperror"
	"github.com/Hassanein20/Senior-Project-dev/internal/model"
	"github.com/Hassanein20/Senior-Project-dev/internal/session"
)

// Auth handles the session lifecycle against /auth.
type Auth struct {
	log      *zap.Logger
	api      *apiclient.Client
	session  *session.Session
	validate *validator.Validate
}

// NewAuth creates an Auth gateway.
func NewAuth(log *zap.Logger, api *apiclient.Client, sess *session.Session, validate *validator.Validate) *Auth {
	return &Auth{log: log, api: api, session: sess, validate: validate}
}

type authResponse struct {
	User    model.User `json:"user"`
	Token   string     `json:"token"`
	Message string     `json:"message"`
}

// Login authenticates and installs the returned credential and CSRF token
// into the session.
func (g *Auth) Login(ctx context.Context, creds model.Credentials) (model.User, error) {
	if err := g.validate.Struct(creds); err != nil {
		return model.User{}, apperror.NewValidation(err)
	}

	var resp authResponse
	if err := g.api.Post(ctx, "/auth/login", creds, &resp, "Failed to sign in. Please check your credentials."); err != nil {
		return model.User{}, err
	}
	if resp.Token == "" {
		return model.User{}, &apperror.TransportError{Message: "Invalid response from server"}
	}

	g.session.SetCredentials(resp.User, resp.Token)
	g.log.Info("signed in", zap.Int64("userID", resp.User.ID))
	return resp.User, nil
}

// Register creates an account; the backend signs the new user in directly.
func (g *Auth) Register(ctx context.Context, reg model.Registration) (model.User, error) {
	if err := g.validate.Struct(reg); err != nil {
		return model.User{}, apperror.NewValidation(err)
	}

	var resp authResponse
	if err := g.api.Post(ctx, "/auth/register", reg, &resp, "Failed to register. Please try again."); err != nil {
		return model.User{}, err
	}
	if resp.Token == "" {
		return model.User{}, &apperror.TransportError{Message: "Invalid response from server"}
	}

	g.session.SetCredentials(resp.User, resp.Token)
	return resp.User, nil
}

// Logout tells the backend to end the session. Local state is cleared even
// when the server call fails.
func (g *Auth) Logout(ctx context.Context) error {
	err := g.api.Post(ctx, "/auth/logout", nil, nil, "Failed to logout. Please try again.")
	g.session.Reset()
	if err != nil {
		g.log.Warn("logout request failed, local session cleared anyway", zap.Error(err))
	}
	return err
}

// Profile fetches the current user and refreshes the session snapshot.
func (g *Auth) Profile(ctx context.Context) (model.User, error) {
	var resp struct {
		User *model.User `json:"user"`
	}
	if err := g.api.Get(ctx, "/auth/profile", nil, &resp, "Failed to get profile. Please try again."); err != nil {
		return model.User{}, err
	}
	if resp.User == nil {
		return model.User{}, &apperror.TransportError{Message: "Invalid profile response"}
	}
	g.session.SetUser(*resp.User)
	return *resp.User, nil
}

// FetchCSRF primes the token store from the dedicated endpoint. The client
// captures the response header; nothing to decode here.
func (g *Auth) FetchCSRF(ctx context.Context) error {
	return g.api.Get(ctx, "/auth/csrf", nil, nil, "Failed to refresh security token. Please try again.")
}
