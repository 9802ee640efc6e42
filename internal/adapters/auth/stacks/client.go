package stacks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/platform/httpclient"
	"github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/ports/auth"
)

var (
	ErrStacksNotConfigured = errors.New("stacks auth client not configured")
	ErrStacksUnauthorized  = errors.New("stacks auth unauthorized")
	ErrStacksUpstream      = errors.New("stacks auth upstream error")
)

// Config del cliente contra el servicio de identidad/wallet.
// BaseURL y APIKey normalmente vendrán de env vars (AUTH_BASE_URL, AUTH_API_KEY).
type Config struct {
	BaseURL string
	APIKey  string

	// Opcional: header de la API key. Default "X-Api-Key".
	APIKeyHeader string
	Timeout      time.Duration
}

type Client struct {
	apiKey       string
	apiKeyHeader string
	http         *httpclient.Client
}

func NewClient(cfg Config) (*Client, error) {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}

	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
		http:         hc,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.apiKey != ""
}

// VerifySession valida un token de sesión firmado por el wallet y trae
// el principal. Endpoint/payload siguen el contrato del servicio de
// identidad que autentica antes de que el request llegue a este core.
func (c *Client) VerifySession(ctx context.Context, token string) (auth.Claims, error) {
	if !c.IsConfigured() {
		return auth.Claims{}, ErrStacksNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrStacksUnauthorized
	}

	var out struct {
		Principal string `json:"principal"`
		PublicKey string `json:"public_key"`
	}

	err := c.http.DoJSON(ctx, http.MethodPost, "/v1/sessions/verify",
		map[string]string{
			c.apiKeyHeader:  c.apiKey,
			"Authorization": "Bearer " + token,
		},
		map[string]string{"token": token},
		&out,
	)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			if httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden {
				return auth.Claims{}, ErrStacksUnauthorized
			}
			return auth.Claims{}, fmt.Errorf("%w: status=%d", ErrStacksUpstream, httpErr.StatusCode)
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrStacksUpstream, err)
	}

	out.Principal = strings.TrimSpace(out.Principal)
	if out.Principal == "" {
		return auth.Claims{}, errors.New("stacks auth response missing principal")
	}

	return auth.Claims{
		Principal: out.Principal,
		PublicKey: strings.TrimSpace(out.PublicKey),
	}, nil
}
