package session

import (
	"net/http"

	"github.com/gorilla/sessions"
)

// cookieSIDKey is the only value kept in the browser cookie.
const cookieSIDKey = "sid"

// Manager binds the signed browser cookie to the SQLite-backed store. The
// cookie holds nothing but the session id; gorilla/sessions takes care of
// signing it.
type Manager struct {
	store      *Store
	cookies    sessions.Store
	cookieName string
}

func NewManager(store *Store, secret []byte, cookieName string) *Manager {
	cs := sessions.NewCookieStore(secret)
	cs.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{store: store, cookies: cs, cookieName: cookieName}
}

// SID returns the session id for the request, minting a new session (and
// setting the cookie) when the request has none or carries a stale id.
func (m *Manager) SID(w http.ResponseWriter, r *http.Request) (string, error) {
	cookie, err := m.cookies.Get(r, m.cookieName)
	if err != nil {
		// an undecodable cookie is treated as absent
		cookie, _ = m.cookies.New(r, m.cookieName)
	}

	if v, ok := cookie.Values[cookieSIDKey].(string); ok && v != "" {
		exists, err := m.store.Exists(r.Context(), v)
		if err != nil {
			return "", err
		}
		if exists {
			return v, nil
		}
	}

	sid, err := m.store.Create(r.Context())
	if err != nil {
		return "", err
	}
	cookie.Values[cookieSIDKey] = sid
	if err := m.cookies.Save(r, w, cookie); err != nil {
		return "", err
	}
	return sid, nil
}

// Values exposes the backing store for handlers that already hold a sid.
func (m *Manager) Values() *Store {
	return m.store
}
