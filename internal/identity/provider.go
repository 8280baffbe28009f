// Package identity resolves who the operator is. Two interchangeable
// backends exist: direct email/password auth against the users collection,
// and delegated resolution via an upstream session endpoint. The backend is
// chosen once at startup; nothing else in the codebase branches on the mode.
package identity

import (
	"context"
	"errors"
	"net/http"
)

const (
	ModeDirect  = "direct"
	ModeSession = "session"
)

// Identity is the resolved operator. A zero Identity means "nobody known",
// which in session mode is not an error.
type Identity struct {
	Username string   `json:"username"`
	Role     string   `json:"role,omitempty"`
	Modules  []string `json:"modules"`
}

// Sign-in failures that get a translated user-facing message. Anything else
// falls through to the backend's raw message.
var (
	ErrWrongPassword = errors.New("wrong password")
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidEmail  = errors.New("malformed email")
	ErrNetwork       = errors.New("network failure")
	ErrNotConfigured = errors.New("password login not configured")
)

// Provider is the identity backend capability.
type Provider interface {
	// Mode reports which backend this is, for the dashboard bootstrap.
	Mode() string
	// Login authenticates with email/password and returns a bearer token.
	// The session provider always returns ErrNotConfigured.
	Login(ctx context.Context, email, password string) (string, Identity, error)
	// Resolve extracts the current identity from an incoming request,
	// best-effort: a blank Identity with nil error means "not signed in".
	Resolve(ctx context.Context, r *http.Request) (Identity, error)
}

// TranslateLoginError maps sign-in failures to the operator-facing message.
func TranslateLoginError(err error) string {
	switch {
	case errors.Is(err, ErrWrongPassword):
		return "Contraseña incorrecta."
	case errors.Is(err, ErrUserNotFound):
		return "Ese usuario no existe."
	case errors.Is(err, ErrInvalidEmail):
		return "Email inválido."
	case errors.Is(err, ErrNetwork):
		return "Error de red. Revisa tu conexión."
	case errors.Is(err, ErrNotConfigured):
		return "El acceso con email y contraseña no está habilitado."
	default:
		return err.Error()
	}
}
