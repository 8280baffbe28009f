package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// SessionProvider delegates identity to an upstream session endpoint (the
// deployment fronts this server with something that owns the login form).
// Resolution is best-effort: any failure means a blank identity, never an
// error, so the dashboard still renders.
type SessionProvider struct {
	endpoint string
	client   *http.Client
}

func NewSessionProvider(endpoint string) *SessionProvider {
	return &SessionProvider{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

func (p *SessionProvider) Mode() string { return ModeSession }

// Login is not available in session mode.
func (p *SessionProvider) Login(ctx context.Context, email, password string) (string, Identity, error) {
	return "", Identity{}, ErrNotConfigured
}

// Resolve forwards the caller's cookies to the upstream endpoint. A non-200
// response or a malformed body is "no identity available".
func (p *SessionProvider) Resolve(ctx context.Context, r *http.Request) (Identity, error) {
	if p.endpoint == "" {
		return Identity{}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return Identity{}, nil
	}
	for _, cookie := range r.Cookies() {
		req.AddCookie(cookie)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Identity{}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Identity{}, nil
	}

	var body struct {
		Username string   `json:"username"`
		Role     string   `json:"role"`
		Modules  []string `json:"modules"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Identity{}, nil
	}
	if body.Username == "" {
		return Identity{}, nil
	}

	modules := body.Modules
	if modules == nil {
		modules = []string{}
	}
	return Identity{Username: body.Username, Role: body.Role, Modules: modules}, nil
}
