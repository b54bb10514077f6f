// SPDX-License-Identifier: MIT
package manipulation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service paths
const (
	PathPerform   = "/smart-svg"
	PathMakeSmart = "/make-it-smart"
)

// TokenSource supplies the bearer token for service calls
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed token
type StaticToken string

// Token returns the token
func (s StaticToken) Token() string {
	return string(s)
}

// ClientOptions configures a Client
type ClientOptions struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource
	// OnUnauthorized is called when the service answers 401
	OnUnauthorized func()
	Metrics        *Metrics
	Logger         zerolog.Logger
	Now            func() time.Time
}

// Client talks to the remote manipulation service over HTTP
type Client struct {
	baseURL        string
	http           *http.Client
	tokens         TokenSource
	onUnauthorized func()
	metrics        *Metrics
	logger         zerolog.Logger
	now            func() time.Time
}

// NewClient creates a client for the service at opts.BaseURL
func NewClient(opts ClientOptions) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		http:           httpClient,
		tokens:         opts.Tokens,
		onUnauthorized: opts.OnUnauthorized,
		metrics:        opts.Metrics,
		logger:         opts.Logger,
		now:            now,
	}
}

// Perform runs the manipulation pipeline on one SVG element
func (c *Client) Perform(ctx context.Context, req Request) (*Response, error) {
	var resp Response
	if err := c.post(ctx, PathPerform, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MakeSmart composes the final smart SVG
func (c *Client) MakeSmart(ctx context.Context, req SmartRequest) (*SmartResponse, error) {
	var resp SmartResponse
	if err := c.post(ctx, PathMakeSmart, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) (err error) {
	start := c.now()
	defer func() {
		c.metrics.observe(path, c.now().Sub(start), err)
	}()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	if err := c.authorize(req); err != nil {
		return err
	}

	log := c.logger.With().Str("path", path).Str("request_id", requestID).Logger()
	log.Debug().Int("bytes", len(body)).Msg("calling manipulation service")

	res, err := c.http.Do(req)
	if err != nil {
		return &ServiceError{Message: err.Error(), Status: http.StatusBadGateway, ErrorCode: "app_errors.service_unreachable"}
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized()
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		svcErr := parseError(res.StatusCode, data)
		log.Warn().Int("status", res.StatusCode).Str("error_code", svcErr.ErrorCode).Msg(svcErr.Message)
		return svcErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &ServiceError{
			Message:   fmt.Sprintf("invalid response: %v", err),
			Status:    http.StatusBadGateway,
			ErrorCode: "app_errors.invalid_response",
		}
	}
	log.Debug().Int("status", res.StatusCode).Dur("elapsed", c.now().Sub(start)).Msg("manipulation service answered")
	return nil
}

// authorize attaches the bearer token, refusing to send one that has
// already expired. Tokens that are not JWTs are sent as they are.
func (c *Client) authorize(req *http.Request) error {
	if c.tokens == nil {
		return nil
	}
	token := c.tokens.Token()
	if token == "" {
		return nil
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err == nil {
		if claims.ExpiresAt != nil && !claims.ExpiresAt.After(c.now()) {
			if c.onUnauthorized != nil {
				c.onUnauthorized()
			}
			return ErrTokenExpired
		}
	}

	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}
