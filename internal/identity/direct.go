package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"fleet-dispatch-api-server/internal/auth"
	"fleet-dispatch-api-server/internal/models"
	"fleet-dispatch-api-server/internal/store"
)

// DirectProvider authenticates against the users collection and issues
// JWTs. Used when the server owns its own accounts.
type DirectProvider struct {
	store      *store.Store
	expiration time.Duration
}

func NewDirectProvider(st *store.Store, expiration time.Duration) *DirectProvider {
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}
	return &DirectProvider{store: st, expiration: expiration}
}

func (p *DirectProvider) Mode() string { return ModeDirect }

func (p *DirectProvider) Login(ctx context.Context, email, password string) (string, Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return "", Identity{}, ErrInvalidEmail
	}
	if password == "" {
		return "", Identity{}, ErrWrongPassword
	}

	user, err := p.store.GetUserByUsername(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", Identity{}, ErrUserNotFound
		}
		return "", Identity{}, errors.Join(ErrNetwork, err)
	}

	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return "", Identity{}, ErrWrongPassword
	}

	token, err := auth.GenerateJWT(user.Username, user.Role, user.Modules, p.expiration)
	if err != nil {
		return "", Identity{}, err
	}

	return token, identityFromUser(user), nil
}

// Resolve reads the bearer token; a missing or invalid token is just
// "not signed in".
func (p *DirectProvider) Resolve(ctx context.Context, r *http.Request) (Identity, error) {
	tokenString := bearerToken(r)
	if tokenString == "" {
		return Identity{}, nil
	}

	claims, err := auth.ParseToken(tokenString)
	if err != nil {
		return Identity{}, nil
	}

	return Identity{
		Username: claims.Username,
		Role:     claims.Role,
		Modules:  claims.Modules,
	}, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return ""
	}
	return token
}

func identityFromUser(user *models.User) Identity {
	modules := user.Modules
	if modules == nil {
		modules = []string{}
	}
	return Identity{
		Username: user.Username,
		Role:     user.Role,
		Modules:  modules,
	}
}
