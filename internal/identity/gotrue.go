package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"questionnaire-api/internal/domain"
)

// GoTrueConfig configures a GoTrueProvider.
type GoTrueConfig struct {
	// BaseURL is the project URL; the auth API lives under /auth/v1.
	BaseURL string
	// APIKey is sent as the apikey header on every call.
	APIKey  string
	Timeout time.Duration
}

// GoTrueProvider implements Provider against the GoTrue REST API.
type GoTrueProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewGoTrueProvider(cfg GoTrueConfig) *GoTrueProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GoTrueProvider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/") + "/auth/v1",
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type gotrueUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

func (u gotrueUser) toDomain() domain.AuthenticatedUser {
	return domain.AuthenticatedUser{
		ID:       u.ID,
		Email:    u.Email,
		Metadata: u.UserMetadata,
	}
}

type gotrueSession struct {
	AccessToken  string     `json:"access_token"`
	TokenType    string     `json:"token_type"`
	ExpiresIn    int        `json:"expires_in"`
	RefreshToken string     `json:"refresh_token"`
	User         gotrueUser `json:"user"`
	// sign-up without auto-confirm answers with the bare user object
	gotrueUser
}

func (s gotrueSession) toDomain() *domain.Session {
	user := s.User
	if user.ID == "" {
		user = s.gotrueUser
	}
	return &domain.Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
		ExpiresIn:    s.ExpiresIn,
		User:         user.toDomain(),
	}
}

type gotrueError struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
	Error            string `json:"error"`
}

func (e gotrueError) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// ResolveUser asks GoTrue who token belongs to.
func (p *GoTrueProvider) ResolveUser(ctx context.Context, token string) (*domain.AuthenticatedUser, error) {
	var user gotrueUser
	status, body, err := p.do(ctx, http.MethodGet, "/user", token, nil, &user)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusOK:
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, ErrInvalidToken
	default:
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, status, body.text())
	}
	if user.ID == "" {
		return nil, ErrInvalidToken
	}
	resolved := user.toDomain()
	return &resolved, nil
}

// SignUp registers a new email/password identity.
func (p *GoTrueProvider) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*domain.Session, error) {
	payload := map[string]any{
		"email":    email,
		"password": password,
	}
	if len(metadata) > 0 {
		payload["data"] = metadata
	}

	var session gotrueSession
	status, body, err := p.do(ctx, http.MethodPost, "/signup", "", payload, &session)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusOK:
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		msg := body.text()
		if strings.Contains(strings.ToLower(msg), "already registered") {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("%w: %s", ErrSignUpRejected, msg)
	default:
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, status, body.text())
	}

	out := session.toDomain()
	if out.User.ID == "" {
		return nil, fmt.Errorf("%w: sign up response without user", ErrUnavailable)
	}
	return out, nil
}

// SignIn exchanges an email and password for a session.
func (p *GoTrueProvider) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	payload := map[string]string{
		"email":    email,
		"password": password,
	}

	var session gotrueSession
	status, body, err := p.do(ctx, http.MethodPost, "/token?grant_type=password", "", payload, &session)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusOK:
	case status == http.StatusBadRequest || status == http.StatusUnauthorized:
		return nil, ErrInvalidCredentials
	default:
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, status, body.text())
	}

	out := session.toDomain()
	if out.AccessToken == "" || out.User.ID == "" {
		return nil, fmt.Errorf("%w: incomplete session", ErrUnavailable)
	}
	return out, nil
}

// do performs one JSON call. On 200 the body is decoded into result; any
// other status is reported with the decoded error body.
func (p *GoTrueProvider) do(ctx context.Context, method, path, bearer string, payload, result any) (int, gotrueError, error) {
	var errBody gotrueError

	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, errBody, fmt.Errorf("encode request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, bodyReader)
	if err != nil {
		return 0, errBody, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	req.Header.Set("apikey", p.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	} else if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, errBody, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		_ = json.Unmarshal(data, &errBody)
		return resp.StatusCode, errBody, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return resp.StatusCode, errBody, fmt.Errorf("%w: decode response: %w", ErrUnavailable, err)
	}
	return resp.StatusCode, errBody, nil
}

var _ Provider = (*GoTrueProvider)(nil)
