package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
	"github.com/studyhub/course-tracker-hub/internal/domain/user"
	"github.com/studyhub/course-tracker-hub/pkg/circuitbreaker"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the hosted identity client.
type ClientConfig struct {
	// BaseURL is the provider's base URL
	BaseURL string

	// APIKey is the project API key sent with every request
	APIKey string

	// Timeout is the HTTP request timeout
	Timeout time.Duration

	// RateLimiterConfig for client-side request pacing
	RateLimiterConfig RateLimiterConfig

	// Logger for structured logging
	Logger *slog.Logger

	// Debug enables request logging
	Debug bool
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:           baseURL,
		Timeout:           15 * time.Second,
		RateLimiterConfig: DefaultRateLimiterConfig(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client talks to the hosted identity provider. It implements both
// user.IdentityProvider and user.TokenVerifier.
//
// The circuit breaker counts only transport failures: a 401 or 409 from
// the provider is a real answer and must not open the circuit. Provider
// errors are returned as-is, never reworded and never retried.
type Client struct {
	config      ClientConfig
	httpClient  *http.Client
	logger      *slog.Logger
	rateLimiter *RateLimiter
	breaker     *circuitbreaker.CircuitBreaker
}

var (
	_ user.IdentityProvider = (*Client)(nil)
	_ user.TokenVerifier    = (*Client)(nil)
)

// NewClient creates a new identity provider client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	c := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger:      config.Logger,
		rateLimiter: NewRateLimiter(config.RateLimiterConfig),
	}

	c.breaker = circuitbreaker.IdentityAPIBreaker(isTransportFailure, func(name string, from, to circuitbreaker.State) {
		config.Logger.Warn("identity circuit state changed",
			"breaker", name,
			"from", from.String(),
			"to", to.String(),
		)
	})

	return c
}

// ══════════════════════════════════════════════════════════════════════════════
// IDENTITY OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// SignIn authenticates with email and password.
func (c *Client) SignIn(ctx context.Context, email, password string) (*user.Session, error) {
	body := map[string]string{"email": email, "password": password}

	var dto SessionDTO
	if err := c.doRequest(ctx, http.MethodPost, "/auth/v1/signin", body, "", &dto); err != nil {
		return nil, err
	}
	return dto.toDomain(), nil
}

// SignUp registers a new user and returns an authenticated session.
func (c *Client) SignUp(ctx context.Context, email, password, username string) (*user.Session, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
		"username": username,
	}

	var dto SessionDTO
	if err := c.doRequest(ctx, http.MethodPost, "/auth/v1/signup", body, "", &dto); err != nil {
		return nil, err
	}
	return dto.toDomain(), nil
}

// SendPasswordReset asks the provider to email a reset link.
func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.doRequest(ctx, http.MethodPost, "/auth/v1/recover", body, "", nil)
}

// UpdatePassword changes the password for the given user.
func (c *Client) UpdatePassword(ctx context.Context, userID shared.UserID, newPassword string) error {
	path := fmt.Sprintf("/auth/v1/users/%s/password", url.PathEscape(userID.String()))
	body := map[string]string{"password": newPassword}
	return c.doRequest(ctx, http.MethodPut, path, body, "", nil)
}

// UpdateProfile changes the display name for the given user.
func (c *Client) UpdateProfile(ctx context.Context, userID shared.UserID, username string) (*user.User, error) {
	path := fmt.Sprintf("/auth/v1/users/%s/profile", url.PathEscape(userID.String()))
	body := map[string]string{"username": username}

	var dto UserDTO
	if err := c.doRequest(ctx, http.MethodPut, path, body, "", &dto); err != nil {
		return nil, err
	}
	return dto.toDomain(), nil
}

// VerifyToken resolves an access token to its user.
func (c *Client) VerifyToken(ctx context.Context, token string) (*user.User, error) {
	var dto UserDTO
	if err := c.doRequest(ctx, http.MethodGet, "/auth/v1/user", nil, token, &dto); err != nil {
		return nil, err
	}
	return dto.toDomain(), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HTTP REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// doRequest performs one HTTP request inside the rate limiter and the
// circuit breaker. There is exactly one send per call.
func (c *Client) doRequest(ctx context.Context, method, path string, body any, bearer string, result any) error {
	if err := c.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("identity rate limiter: %w", err)
	}

	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.doSingleRequest(ctx, method, path, body, bearer, result)
	})
}

func (c *Client) doSingleRequest(ctx context.Context, method, path string, body any, bearer string, result any) error {
	fullURL := c.config.BaseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("X-API-Key", c.config.APIKey)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	if c.config.Debug {
		c.logger.Debug("identity api request", "method", method, "path", path)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr APIErrorDTO
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Message != "" {
			apiErr.Status = resp.StatusCode
			return &apiErr
		}
		return fmt.Errorf("identity provider: status %d", resp.StatusCode)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

// isTransportFailure reports whether the error means the provider could
// not be reached at all. Answered requests, including 4xx and 5xx with
// a parsed body, do not count against the circuit.
func isTransportFailure(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIErrorDTO
	if errors.As(err, &apiErr) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF)
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH AND STATUS
// ══════════════════════════════════════════════════════════════════════════════

// IsHealthy checks if the identity provider is reachable.
func (c *Client) IsHealthy(ctx context.Context) bool {
	err := c.doSingleRequest(ctx, http.MethodGet, "/auth/v1/health", nil, "", nil)
	return err == nil
}

// ClientStatus is a snapshot of the client's protective state.
type ClientStatus struct {
	RateLimiter    RateLimiterStatus
	CircuitState   string
	CircuitCounts  circuitbreaker.Counts
	ProviderSource string
}

// Status returns the current status of the client.
func (c *Client) Status() ClientStatus {
	return ClientStatus{
		RateLimiter:    c.rateLimiter.Status(),
		CircuitState:   c.breaker.State().String(),
		CircuitCounts:  c.breaker.Counts(),
		ProviderSource: c.config.BaseURL,
	}
}

// Reset clears the rate limiter and circuit breaker state.
func (c *Client) Reset() {
	c.rateLimiter.Reset()
	c.breaker.Reset()
}
