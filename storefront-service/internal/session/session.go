package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Session is the attribute map of one browser session. It is owned by a
// single request and is not safe for concurrent use.
type Session struct {
	id        string
	staleID   string
	values    map[string]json.RawMessage
	modified  bool
	isNew     bool
	destroyed bool
}

// New returns an empty session with a fresh id. It is saved at the end of
// the request even if nothing is set on it.
func New() *Session {
	return &Session{
		id:     uuid.NewString(),
		values: make(map[string]json.RawMessage),
		isNew:  true,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) IsNew() bool { return s.isNew }

func (s *Session) Modified() bool { return s.modified }

func (s *Session) Destroyed() bool { return s.destroyed }

func (s *Session) MarkModified() { s.modified = true }

func (s *Session) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Get decodes the attribute stored under key into dst. It reports false when
// the key is absent.
func (s *Session) Get(key string, dst any) (bool, error) {
	raw, ok := s.values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("decode session attribute %q: %w", key, err)
	}
	return true, nil
}

func (s *Session) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode session attribute %q: %w", key, err)
	}
	s.values[key] = raw
	s.modified = true
	return nil
}

func (s *Session) Delete(key string) {
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	s.modified = true
}

// Clear drops every attribute but keeps the session alive.
func (s *Session) Clear() {
	if len(s.values) == 0 {
		return
	}
	s.values = make(map[string]json.RawMessage)
	s.modified = true
}

// RotateID gives the session a new id and drops the old record on save.
// Called when the identity bound to the session changes.
func (s *Session) RotateID() {
	if s.staleID == "" && !s.isNew {
		s.staleID = s.id
	}
	s.id = uuid.NewString()
	s.modified = true
}

// Destroy clears every attribute and removes the stored record on save.
func (s *Session) Destroy() {
	s.values = make(map[string]json.RawMessage)
	s.destroyed = true
	s.modified = true
}

type ctxKey struct{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached by Middleware, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
