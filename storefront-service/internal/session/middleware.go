package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const CookieName = "sessionid"

const saveTimeout = 2 * time.Second

type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// Manager loads the session named by the request cookie and saves it before
// the response is written.
type Manager struct {
	store  Store
	cookie CookieConfig
	log    logrus.FieldLogger
}

func NewManager(store Store, cookie CookieConfig, log logrus.FieldLogger) *Manager {
	if cookie.Name == "" {
		cookie.Name = CookieName
	}
	if cookie.MaxAge <= 0 {
		cookie.MaxAge = DefaultTTL
	}
	return &Manager{store: store, cookie: cookie, log: log}
}

func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.load(r)
		sw := &saveOnWrite{ResponseWriter: w}
		sw.commit = func() { m.commit(r.Context(), w, s) }

		next.ServeHTTP(sw, r.WithContext(NewContext(r.Context(), s)))
		sw.commitOnce()
	})
}

func (m *Manager) load(r *http.Request) *Session {
	c, err := r.Cookie(m.cookie.Name)
	if err != nil || c.Value == "" {
		return New()
	}

	s, err := m.store.Load(r.Context(), c.Value)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			m.log.WithError(err).WithContext(r.Context()).Warn("failed to load session, starting a new one")
		}
		return New()
	}
	return s
}

func (m *Manager) commit(ctx context.Context, w http.ResponseWriter, s *Session) {
	if !s.Modified() && !s.IsNew() {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()

	destroyed := s.Destroyed()
	if err := m.store.Save(ctx, s); err != nil {
		m.log.WithError(err).WithContext(ctx).Error("failed to save session")
		return
	}

	if destroyed {
		http.SetCookie(w, &http.Cookie{
			Name:     m.cookie.Name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   m.cookie.Secure,
			SameSite: http.SameSiteLaxMode,
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie.Name,
		Value:    s.ID(),
		Path:     "/",
		MaxAge:   int(m.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// saveOnWrite runs commit right before the first byte of the response so
// the session cookie still fits in the headers.
type saveOnWrite struct {
	http.ResponseWriter
	commit    func()
	committed bool
}

func (w *saveOnWrite) commitOnce() {
	if w.committed {
		return
	}
	w.committed = true
	w.commit()
}

func (w *saveOnWrite) WriteHeader(code int) {
	w.commitOnce()
	w.ResponseWriter.WriteHeader(code)
}

func (w *saveOnWrite) Write(b []byte) (int, error) {
	w.commitOnce()
	return w.ResponseWriter.Write(b)
}

func (w *saveOnWrite) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
