package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/Hassanein20/Senior-Project-dev/internal/apiclient"
	"github.com/Hassanein20/Senior-Project-dev/internal/apperror"
	"github.com/Hassanein20/Senior-Project-dev/internal/model"
	"github.com/Hassanein20/Senior-Project-dev/internal/session"
)

func newAuthGateway(t *testing.T, handler http.HandlerFunc) (*Auth, *session.Session, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	sess := session.New()
	api, err := apiclient.New(zaptest.NewLogger(t), apiclient.Options{
		BaseURL: srv.URL,
		Timeout: 2 * time.Second,
		Session: sess,
	})
	assert.NoError(t, err)
	return NewAuth(zaptest.NewLogger(t), api, sess, NewValidator()), sess, srv
}

func TestLogin_InstallsCredentialsAndCSRF(t *testing.T) {
	auth, sess, srv := newAuthGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		w.Header().Set("X-CSRF-Token", "csrf-from-login")
		_, _ = w.Write([]byte(`{"user":{"id":9,"email":"user@example.com"},"token":"jwt-abc"}`))
	})
	defer srv.Close()

	user, err := auth.Login(context.Background(), model.Credentials{Email: "user@example.com", Password: "secret-pass"})
	assert.NoError(t, err)
	assert.Equal(t, int64(9), user.ID)
	assert.Equal(t, "jwt-abc", sess.Bearer())
	assert.Equal(t, "csrf-from-login", sess.CSRF().Token())
}

func TestLogin_ValidatesCredentials(t *testing.T) {
	auth, _, srv := newAuthGateway(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid credentials must not reach the network")
	})
	defer srv.Close()

	_, err := auth.Login(context.Background(), model.Credentials{Email: "not-an-email", Password: "short"})
	var vErr *apperror.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestLogin_MissingTokenIsInvalidResponse(t *testing.T) {
	auth, sess, srv := newAuthGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user":{"id":9}}`))
	})
	defer srv.Close()

	_, err := auth.Login(context.Background(), model.Credentials{Email: "user@example.com", Password: "secret-pass"})
	var te *apperror.TransportError
	assert.ErrorAs(t, err, &te)
	assert.Equal(t, "Invalid response from server", te.Message)
	assert.False(t, sess.Authenticated())
}

func TestLogin_SurfacesServerError(t *testing.T) {
	auth, _, srv := newAuthGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid email or password"}`))
	})
	defer srv.Close()

	_, err := auth.Login(context.Background(), model.Credentials{Email: "user@example.com", Password: "wrong-pass"})
	assert.EqualError(t, err, "invalid email or password")
}

func TestRegister_InstallsCredentials(t *testing.T) {
	auth, sess, srv := newAuthGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/register", r.URL.Path)
		_, _ = w.Write([]byte(`{"user":{"id":11,"email":"new@example.com"},"token":"jwt-new","message":"welcome"}`))
	})
	defer srv.Close()

	user, err := auth.Register(context.Background(), model.Registration{
		Email:    "new@example.com",
		Username: "newuser",
		Password: "secret-pass",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(11), user.ID)
	assert.Equal(t, "jwt-new", sess.Bearer())
}

func TestLogout_ClearsSessionEvenOnServerFailure(t *testing.T) {
	auth, sess, srv := newAuthGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer srv.Close()

	sess.SetCredentials(model.User{ID: 1}, "bearer")
	sess.CSRF().SetToken("tok")

	err := auth.Logout(context.Background())
	assert.Error(t, err)
	assert.False(t, sess.Authenticated())
	assert.Empty(t, sess.CSRF().Token())
}

func TestProfile_RefreshesSessionSnapshot(t *testing.T) {
	auth, sess, srv := newAuthGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user":{"id":9,"email":"user@example.com","username":"renamed"}}`))
	})
	defer srv.Close()

	sess.SetCredentials(model.User{ID: 9, Username: "old"}, "bearer")

	user, err := auth.Profile(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "renamed", user.Username)
	cached, ok := sess.User()
	assert.True(t, ok)
	assert.Equal(t, "renamed", cached.Username)
}

func TestProfile_InvalidResponse(t *testing.T) {
	auth, _, srv := newAuthGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	defer srv.Close()

	_, err := auth.Profile(context.Background())
	var te *apperror.TransportError
	assert.ErrorAs(t, err, &te)
	assert.Equal(t, "Invalid profile response", te.Message)
}

func TestFetchCSRF_PrimesStore(t *testing.T) {
	auth, sess, srv := newAuthGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/csrf", r.URL.Path)
		w.Header().Set("X-CSRF-Token", "primed")
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	assert.NoError(t, auth.FetchCSRF(context.Background()))
	assert.Equal(t, "primed", sess.CSRF().Token())
}
