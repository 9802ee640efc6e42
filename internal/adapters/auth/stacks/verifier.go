package stacks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/ports/auth"
)

var ErrTokenEmpty = errors.New("token is empty")

// Verifier implementa auth.AuthVerifier contra el servicio de identidad.
// No se integra automáticamente; se instancia desde main/router cuando
// AUTH_BASE_URL está configurado.
type Verifier struct {
	client *Client
}

func NewVerifier(client *Client) *Verifier {
	return &Verifier{client: client}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.client == nil {
		return auth.Claims{}, ErrStacksNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	claims, err := v.client.VerifySession(ctx, token)
	if err != nil {
		// Normalizamos un poco, sin inventar semantics.
		// El middleware actual ya decide si corta o no.
		return auth.Claims{}, fmt.Errorf("stacks verify failed: %w", err)
	}

	claims.Principal = strings.TrimSpace(claims.Principal)
	if claims.Principal == "" {
		return auth.Claims{}, errors.New("stacks claims missing principal")
	}

	return claims, nil
}
