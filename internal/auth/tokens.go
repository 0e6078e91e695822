package auth

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/go-oauth2/oauth2/v4"
	"github.com/google/uuid"
)

// Token sizes, in random units. One unit is one random (version 4) UUID.
const (
	AccessTokenUnits  = 1
	RefreshTokenUnits = 2
	SecretCodeUnits   = 2
)

// GenerateToken returns units random UUIDs in canonical form, concatenated and
// base64 encoded. Every unit carries 122 random bits from crypto/rand.
func GenerateToken(units int) (string, error) {
	if units < 1 {
		return "", fmt.Errorf("token needs at least one unit, got %d", units)
	}
	var raw strings.Builder
	for i := 0; i < units; i++ {
		id, err := uuid.NewRandom()
		if err != nil {
			return "", fmt.Errorf("generate token unit: %w", err)
		}
		raw.WriteString(id.String())
	}
	return base64.StdEncoding.EncodeToString([]byte(raw.String())), nil
}

// UUIDAccessGenerate generates opaque access and refresh tokens.
// It satisfies oauth2.AccessGenerate so it can be mapped into an oauth2 manager.
type UUIDAccessGenerate struct {
	AccessUnits  int
	RefreshUnits int
}

var _ oauth2.AccessGenerate = (*UUIDAccessGenerate)(nil)

// NewUUIDAccessGenerate creates a generator with the default token sizes
func NewUUIDAccessGenerate() *UUIDAccessGenerate {
	return &UUIDAccessGenerate{AccessUnits: AccessTokenUnits, RefreshUnits: RefreshTokenUnits}
}

// Token returns a new access token and, when isGenRefresh is set, a new refresh token
func (g *UUIDAccessGenerate) Token(ctx context.Context, data *oauth2.GenerateBasic, isGenRefresh bool) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	access, err := GenerateToken(g.AccessUnits)
	if err != nil {
		return "", "", err
	}
	refresh := ""
	if isGenRefresh {
		refresh, err = GenerateToken(g.RefreshUnits)
		if err != nil {
			return "", "", err
		}
	}
	return access, refresh, nil
}
