// Package auth provides session credential sources for the tracker.
// Token acquisition itself is an external concern; these sources only
// surface an already-issued bearer token to the tracking session.
package auth

import (
	"errors"
	"os"
	"strings"
	"sync"
	"time"
)

// Source yields the current bearer token for the push subscription.
type Source interface {
	Token() (string, error)
}

// Static wraps a fixed token.
type Static string

func (s Static) Token() (string, error) {
	if s == "" {
		return "", errors.New("empty credential")
	}
	return string(s), nil
}

// File reads the token from a file and caches it briefly, so rotated
// credentials are picked up without rereading on every reconnect.
type File struct {
	Path     string
	CacheTTL time.Duration

	mu       sync.Mutex
	cached   string
	lastRead time.Time
}

func NewFile(path string) *File {
	return &File{Path: path, CacheTTL: time.Minute}
}

func (f *File) Token() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cached != "" && time.Since(f.lastRead) < f.CacheTTL {
		return f.cached, nil
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		if f.cached != "" {
			return f.cached, nil
		}
		return "", err
	}
	tok := strings.TrimSpace(string(b))
	if tok == "" {
		return "", errors.New("empty credential file")
	}
	f.cached = tok
	f.lastRead = time.Now()
	return tok, nil
}

// NewSourceFromEnv picks a source from TRACKER_TOKEN or
// TRACKER_TOKEN_FILE, in that order.
func NewSourceFromEnv() (Source, error) {
	if tok := strings.TrimSpace(os.Getenv("TRACKER_TOKEN")); tok != "" {
		return Static(tok), nil
	}
	if path := strings.TrimSpace(os.Getenv("TRACKER_TOKEN_FILE")); path != "" {
		return NewFile(path), nil
	}
	return nil, errors.New("no credential configured: set TRACKER_TOKEN or TRACKER_TOKEN_FILE")
}
