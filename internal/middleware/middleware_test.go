package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/franciscosanchezn/gin-phrasebook-api/internal/auth"
	"github.com/franciscosanchezn/gin-phrasebook-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	log.SetOutput(io.Discard)
}

type stubResolver struct {
	id  auth.Identity
	err error
}

func (s stubResolver) Resolve(context.Context, http.Header, auth.Policy) (auth.Identity, error) {
	return s.id, s.err
}

type stubUsers map[string]string

func (s stubUsers) Authenticate(_ context.Context, email, password string) (*models.User, error) {
	if pw, ok := s[email]; ok && pw == password {
		return &models.User{ID: "user-" + email, Email: email}, nil
	}
	return nil, auth.ErrInvalidCredentials
}

func echoIdentity(c *gin.Context, id auth.Identity) {
	c.JSON(http.StatusOK, gin.H{"user_id": id.UserID, "consumer_id": id.ConsumerID})
}

func serve(r *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, map[string]string) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	body := map[string]string{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func basic(email, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(email+":"+password))
}

func TestAuthenticateRejectsInvalidPolicy(t *testing.T) {
	_, err := Authenticate(stubResolver{}, auth.Policy{RequireBearer: true, RequireSecret: true})
	assert.Error(t, err)

	assert.Panics(t, func() {
		MustAuthenticate(stubResolver{}, auth.Policy{RequireBearer: true, RequireSecret: true})
	})
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name       string
		resolver   stubResolver
		wantStatus int
		wantBody   map[string]string
	}{
		{
			name:       "identity passed to handler",
			resolver:   stubResolver{id: auth.Identity{UserID: "u1"}},
			wantStatus: http.StatusOK,
			wantBody:   map[string]string{"user_id": "u1", "consumer_id": ""},
		},
		{
			name:       "credential error is 401 with message",
			resolver:   stubResolver{err: auth.ErrTokenExpired},
			wantStatus: http.StatusUnauthorized,
			wantBody:   map[string]string{"message": "Token expired"},
		},
		{
			name:       "store failure is 500",
			resolver:   stubResolver{err: errors.New("db down")},
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]string{"message": "Internal server error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/me", MustAuthenticate(tt.resolver, auth.Policy{RequireBearer: true}), Identified(echoIdentity))

			w, body := serve(r, httptest.NewRequest(http.MethodGet, "/me", nil))
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestIdentifiedWithoutIdentity(t *testing.T) {
	r := gin.New()
	r.GET("/me", Identified(echoIdentity))

	w, body := serve(r, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorized", body["message"])
}

func TestBasicAuth(t *testing.T) {
	users := stubUsers{"a@b.io": "pw"}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantMsg    string
	}{
		{"valid credentials", basic("a@b.io", "pw"), http.StatusOK, ""},
		{"missing header", "", http.StatusUnauthorized, "No credentials"},
		{"wrong scheme", "Bearer abc", http.StatusUnauthorized, "No credentials"},
		{"undecodable", "Basic !!!", http.StatusUnauthorized, "No credentials"},
		{"wrong password", basic("a@b.io", "nope"), http.StatusUnauthorized, "Invalid credentials"},
		{"unknown email", basic("x@b.io", "pw"), http.StatusUnauthorized, "Invalid credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/me", BasicAuth(users, ""), Identified(echoIdentity))

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w, body := serve(r, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, body["message"])
			} else {
				assert.Equal(t, "user-a@b.io", body["user_id"])
			}
		})
	}
}

func TestBasicAuthMergesWithSecret(t *testing.T) {
	users := stubUsers{"a@b.io": "pw"}
	secret := stubResolver{id: auth.Identity{ConsumerID: "c1"}}

	r := gin.New()
	r.GET("/auth",
		BasicAuth(users, UserHeader),
		MustAuthenticate(secret, auth.Policy{RequireSecret: true}),
		Identified(echoIdentity))

	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.Header.Set("Authorization", "Secret S1")
	req.Header.Set(UserHeader, basic("a@b.io", "pw"))
	w, body := serve(r, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-a@b.io", body["user_id"])
	assert.Equal(t, "c1", body["consumer_id"])
}

func TestBasicAuthKeepsAuthorizationHeader(t *testing.T) {
	users := stubUsers{"a@b.io": "pw"}

	r := gin.New()
	r.GET("/auth", BasicAuth(users, UserHeader), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetHeader("Authorization"))
	})

	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.Header.Set("Authorization", "Secret S1")
	req.Header.Set(UserHeader, basic("a@b.io", "pw"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Secret S1", w.Body.String())
}

func TestRequestLoggerAndMetrics(t *testing.T) {
	l := logrus.New()
	l.SetOutput(io.Discard)

	r := gin.New()
	r.Use(RequestLogger(l), Metrics())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
