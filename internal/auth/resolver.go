package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-phrasebook-api/internal/models"
)

// Authorization schemes and the header carrying them
const (
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
	SecretPrefix        = "Secret "
)

// Policy declares which credentials an endpoint demands. The zero value
// describes a public endpoint.
type Policy struct {
	// RequireBearer demands a valid, non-expired access token
	RequireBearer bool
	// RequireSecret demands a valid consumer secret code
	RequireSecret bool
	// SecretHeader is the header carrying the secret, Authorization when empty
	SecretHeader string
}

func (p Policy) secretHeader() string {
	if p.SecretHeader == "" {
		return AuthorizationHeader
	}
	return p.SecretHeader
}

// Validate rejects policies that no request could satisfy
func (p Policy) Validate() error {
	if p.RequireBearer && p.RequireSecret && http.CanonicalHeaderKey(p.secretHeader()) == AuthorizationHeader {
		return errors.New("bearer and secret credentials cannot share the Authorization header")
	}
	return nil
}

// Identity holds the identities resolved for a request. Empty fields were
// not required by the policy.
type Identity struct {
	UserID     string
	ConsumerID string
}

type TokenFinder interface {
	GetByAccess(ctx context.Context, access string) (*models.Auth, error)
}

type ConsumerFinder interface {
	GetBySecret(ctx context.Context, secret string) (*models.Consumer, error)
}

// Resolver turns request headers into an Identity. It never writes.
type Resolver struct {
	tokens    TokenFinder
	consumers ConsumerFinder
	now       func() time.Time
}

func NewResolver(tokens TokenFinder, consumers ConsumerFinder) *Resolver {
	return &Resolver{tokens: tokens, consumers: consumers, now: time.Now}
}

// WithClock returns a copy of the resolver using now as its clock
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	c := *r
	c.now = now
	return &c
}

// Resolve checks the credentials demanded by policy. The bearer token is
// checked before the secret and the first failure is returned.
func (r *Resolver) Resolve(ctx context.Context, header http.Header, policy Policy) (Identity, error) {
	var id Identity

	if policy.RequireBearer {
		token, err := credential(header.Get(AuthorizationHeader), BearerPrefix,
			"API requires bearer authorization", "Token is empty")
		if err != nil {
			return Identity{}, err
		}
		grant, err := r.tokens.GetByAccess(ctx, token)
		if errors.Is(err, ErrNotFound) {
			return Identity{}, ErrInvalidToken
		}
		if err != nil {
			return Identity{}, err
		}
		if grant.IsExpired(r.now().UTC()) {
			return Identity{}, ErrTokenExpired
		}
		id.UserID = grant.UserID
	}

	if policy.RequireSecret {
		secret, err := credential(header.Get(policy.secretHeader()), SecretPrefix,
			"API requires secret authorization", "Secret is empty")
		if err != nil {
			return Identity{}, err
		}
		consumer, err := r.consumers.GetBySecret(ctx, secret)
		if errors.Is(err, ErrNotFound) {
			return Identity{}, ErrInvalidSecret
		}
		if err != nil {
			return Identity{}, err
		}
		id.ConsumerID = consumer.ID
	}

	return id, nil
}

// credential strips prefix from value
func credential(value, prefix, wrongScheme, empty string) (string, error) {
	if value == "" {
		return "", ErrNotAuthorized
	}
	if !strings.HasPrefix(value, prefix) {
		return "", malformed(wrongScheme)
	}
	token := strings.TrimPrefix(value, prefix)
	if token == "" {
		return "", malformed(empty)
	}
	return token, nil
}
