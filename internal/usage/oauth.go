package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultEndpoint = "https://api.anthropic.com/api/oauth/usage"
	DefaultTimeout  = 10 * time.Second

	oauthBetaHeader = "oauth-2025-04-20"
)

// Source fetches one usage snapshot for a token.
type Source interface {
	Name() string
	Fetch(ctx context.Context, token string) (*Snapshot, error)
	Close() error
}

type OAuthSource struct {
	httpClient *http.Client
	endpoint   string
	userAgent  string
}

func NewOAuthSource(endpoint string, timeout time.Duration) *OAuthSource {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OAuthSource{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   strings.TrimSpace(endpoint),
		userAgent:  "claude-stats",
	}
}

// WithUserAgent sets the User-Agent sent with each request.
func (s *OAuthSource) WithUserAgent(ua string) *OAuthSource {
	if ua = strings.TrimSpace(ua); ua != "" {
		s.userAgent = ua
	}
	return s
}

func (s *OAuthSource) Name() string {
	return "oauth"
}

func (s *OAuthSource) Fetch(ctx context.Context, token string) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build usage request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("anthropic-beta", oauthBetaHeader)
	req.Header.Set("User-Agent", s.userAgent)

	res, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("usage request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1_000_000))
	if err != nil {
		return nil, fmt.Errorf("read usage response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("API returned %s: %s", res.Status, body)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		return nil, fmt.Errorf("decode usage response: %w", err)
	}
	return &snapshot, nil
}

func (s *OAuthSource) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}
