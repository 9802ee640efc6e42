package gaiahub

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/platform/httpclient"
)

var (
	ErrGaiaNotConfigured = errors.New("gaia client not configured")
	ErrGaiaNotFound      = errors.New("gaia object not found")
	ErrGaiaUpstream      = errors.New("gaia upstream error")
)

const maxPayloadBytes = 16 << 20 // 16MB

// Config del cliente de lectura Gaia.
// ReadURL normalmente viene de env (GAIA_READ_URL) en quien lo instancia.
type Config struct {
	ReadURL string
	Timeout time.Duration
}

// Client implementa contentstore.Resolver contra un hub Gaia (o cualquier
// storage HTTP compatible). Los punteros "gaia://host/path" se reescriben
// contra ReadURL; las URLs https se usan tal cual.
type Client struct {
	readURL string
	http    *httpclient.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		readURL: strings.TrimRight(strings.TrimSpace(cfg.ReadURL), "/"),
		http:    httpclient.New(cfg.Timeout),
	}
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.readURL != ""
}

func (c *Client) Fetch(ctx context.Context, pointer string) ([]byte, string, error) {
	if !c.IsConfigured() {
		return nil, "", ErrGaiaNotConfigured
	}

	target, err := c.resolvePointer(pointer)
	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrGaiaUpstream, err)
	}

	resp, err := c.http.HTTP.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrGaiaUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, "", ErrGaiaNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, "", fmt.Errorf("%w: status=%d", ErrGaiaUpstream, resp.StatusCode)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrGaiaUpstream, err)
	}

	return payload, resp.Header.Get("Content-Type"), nil
}

func (c *Client) resolvePointer(pointer string) (string, error) {
	pointer = strings.TrimSpace(pointer)
	if pointer == "" {
		return "", errors.New("pointer required")
	}

	// Punteros gaia://<hub>/<addr>/<file> => <ReadURL>/<addr>/<file>
	if rest, ok := strings.CutPrefix(pointer, "gaia://"); ok {
		if i := strings.Index(rest, "/"); i >= 0 {
			rest = rest[i+1:]
		}
		if strings.TrimSpace(rest) == "" {
			return "", errors.New("invalid gaia pointer")
		}
		return c.readURL + "/" + rest, nil
	}

	if strings.HasPrefix(pointer, "https://") || strings.HasPrefix(pointer, "http://") {
		if _, err := url.ParseRequestURI(pointer); err != nil {
			return "", fmt.Errorf("invalid pointer url: %w", err)
		}
		return pointer, nil
	}

	// Cualquier otro formato: path relativo al read endpoint.
	return c.readURL + "/" + strings.TrimLeft(pointer, "/"), nil
}
