package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslateLoginError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{ErrWrongPassword, "Contraseña incorrecta."},
		{ErrUserNotFound, "Ese usuario no existe."},
		{ErrInvalidEmail, "Email inválido."},
		{ErrNetwork, "Error de red. Revisa tu conexión."},
		{ErrNotConfigured, "El acceso con email y contraseña no está habilitado."},
		{errors.New("boom"), "boom"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TranslateLoginError(tc.err))
	}
}

func TestTranslateLoginError_Wrapped(t *testing.T) {
	wrapped := errors.Join(ErrNetwork, errors.New("dial tcp: i/o timeout"))
	assert.Equal(t, "Error de red. Revisa tu conexión.", TranslateLoginError(wrapped))
}

func TestDirectProvider_MalformedEmailRejectedBeforeLookup(t *testing.T) {
	// nil store: reaching the lookup would panic, proving the guard runs
	// first.
	p := NewDirectProvider(nil, 0)

	_, _, err := p.Login(context.Background(), "not-an-email", "secret")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, _, err = p.Login(context.Background(), "", "secret")
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestSessionProvider_LoginNotConfigured(t *testing.T) {
	p := NewSessionProvider("http://upstream.local/me")
	_, _, err := p.Login(context.Background(), "a@b.c", "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSessionProvider_ResolveForwardsCookies(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("session")
		if err != nil || cookie.Value != "abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"username":"operador","role":"user","modules":["realtime"]}`))
	}))
	defer upstream.Close()

	p := NewSessionProvider(upstream.URL)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	r.AddCookie(&http.Cookie{Name: "session", Value: "abc"})

	id, err := p.Resolve(context.Background(), r)
	assert.NoError(t, err)
	assert.Equal(t, "operador", id.Username)
	assert.Equal(t, []string{"realtime"}, id.Modules)
}

func TestSessionProvider_ResolveFailuresAreSilent(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	p := NewSessionProvider(upstream.URL)
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	id, err := p.Resolve(context.Background(), r)
	assert.NoError(t, err)
	assert.Empty(t, id.Username)

	// Unreachable upstream is equally silent.
	p = NewSessionProvider("http://127.0.0.1:1")
	id, err = p.Resolve(context.Background(), r)
	assert.NoError(t, err)
	assert.Empty(t, id.Username)
}
