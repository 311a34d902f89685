// Package creds provides a bigtable.TokenSource backed by Google
// Application Default Credentials.
package creds

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/singleflight"
)

// Scope is the OAuth2 scope requested for the data API.
type Scope string

const (
	// ScopeData allows full data access.
	ScopeData Scope = "https://www.googleapis.com/auth/bigtable.data"
	// ScopeDataReadOnly restricts the token to reads.
	ScopeDataReadOnly Scope = "https://www.googleapis.com/auth/bigtable.data.readonly"
)

// refreshMargin renews the token this long before its actual expiry, so a
// token never goes stale mid-stream.
const refreshMargin = 30 * time.Second

// Source is a process-wide refreshable token shared by any number of
// concurrent read calls. Concurrent Refresh calls coalesce into a single
// fetch against the underlying credentials.
type Source struct {
	base  oauth2.TokenSource
	group singleflight.Group

	mu      sync.RWMutex
	current *oauth2.Token
}

type Config struct {
	Scope Scope
	// TokenSource overrides Application Default Credentials when set.
	TokenSource oauth2.TokenSource
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Scope == "" {
		errGrp = append(errGrp, errors.New("scope required"))
	}
	return errors.Join(errGrp...)
}

// New resolves credentials for the given scope. The returned Source holds
// no token until the first Refresh.
func New(ctx context.Context, cfg *Config) (*Source, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	base := cfg.TokenSource
	if base == nil {
		ts, err := google.DefaultTokenSource(ctx, string(cfg.Scope))
		if err != nil {
			return nil, err
		}
		base = ts
	}

	return &Source{base: base}, nil
}

// Token returns the current access token, or "" before the first Refresh.
func (s *Source) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.AccessToken
}

// Refresh brings the token up to date if it is missing or close to expiry.
// Safe and cheap under concurrent callers: at most one fetch is in flight.
func (s *Source) Refresh(ctx context.Context) error {
	_, err, _ := s.group.Do("token", func() (interface{}, error) {
		s.mu.RLock()
		current := s.current
		s.mu.RUnlock()

		if fresh(current) {
			return nil, nil
		}

		tok, err := s.base.Token()
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.current = tok
		s.mu.Unlock()

		log.Debug().Time("expiry", tok.Expiry).Msg("access token refreshed")
		return nil, nil
	})
	return err
}

// fresh reports whether tok can still serve a full streaming read. A zero
// expiry means the token never expires.
func fresh(tok *oauth2.Token) bool {
	if tok == nil {
		return false
	}
	if tok.Expiry.IsZero() {
		return true
	}
	return time.Until(tok.Expiry) > refreshMargin
}
