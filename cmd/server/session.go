package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"astrocalc/internal/formula"
)

const sessionCookieName = "astrocalc_session"

type sessionContextKey struct{}

// sessionManager hands every browser session its own private copy of the
// formula catalog, created lazily on first touch. The engine mutates
// state in place and assumes a single owner, so all state access is
// serialized through the manager lock.
type sessionManager struct {
	secret   []byte
	template *formula.Catalog

	mu     sync.Mutex
	states map[string]*formula.Catalog
}

func newSessionManager(secret string, template *formula.Catalog) *sessionManager {
	return &sessionManager{
		secret:   []byte(secret),
		template: template,
		states:   make(map[string]*formula.Catalog),
	}
}

// do runs fn against the catalog copy owned by session id.
func (m *sessionManager) do(id string, fn func(cat *formula.Catalog) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cat, ok := m.states[id]
	if !ok {
		cat = m.template.Clone()
		m.states[id] = cat
	}
	return fn(cat)
}

// ensure is middleware that attaches a verified session id to the request
// context, minting a fresh id (and cookie) when the request carries none.
func (m *sessionManager) ensure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			if verified, ok := m.verifySessionValue(cookie.Value); ok {
				id = verified
			}
		}
		if id == "" {
			id = uuid.NewString()
			m.setSessionCookie(w, id)
		}

		ctx := context.WithValue(r.Context(), sessionContextKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(sessionContextKey{}).(string)
	return id
}

func (m *sessionManager) createSessionValue(id string) string {
	payload := base64.RawURLEncoding.EncodeToString([]byte(id))
	mac := hmac.New(sha256.New, m.secret)
	_, _ = mac.Write([]byte(payload))
	signature := hex.EncodeToString(mac.Sum(nil))
	return payload + "." + signature
}

func (m *sessionManager) verifySessionValue(value string) (string, bool) {
	payload, signature, ok := strings.Cut(value, ".")
	if !ok {
		return "", false
	}

	mac := hmac.New(sha256.New, m.secret)
	_, _ = mac.Write([]byte(payload))
	expected := mac.Sum(nil)

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return "", false
	}
	if !hmac.Equal(provided, expected) {
		return "", false
	}

	decoded, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil || len(decoded) == 0 {
		return "", false
	}
	return string(decoded), true
}

func (m *sessionManager) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    m.createSessionValue(id),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
