package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

type savedCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Expires time.Time `json:"expires,omitzero"`
}

type sessionFile struct {
	SavedAt time.Time                `json:"saved_at"`
	Cookies map[string][]savedCookie `json:"cookies"`
}

// SessionJar is the cookie store shared by the auth and todo clients. It can
// write its cookies to disk so a session survives between CLI runs. An empty
// path keeps it in memory only.
type SessionJar struct {
	mu   sync.RWMutex
	jar  *cookiejar.Jar
	path string
	urls []*url.URL

	// expires holds the expiry last set for each cookie name. The jar does
	// not report it back.
	expires map[string]time.Time
	now     func() time.Time
}

func NewSessionJar(path string, baseURLs ...string) (*SessionJar, error) {
	jar, err := newCookieJar()
	if err != nil {
		return nil, err
	}

	sj := &SessionJar{
		jar:     jar,
		path:    path,
		expires: make(map[string]time.Time),
		now:     time.Now,
	}

	for _, raw := range baseURLs {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse base url %q: %w", raw, err)
		}
		sj.urls = append(sj.urls, u)
	}

	if err := sj.load(); err != nil {
		return nil, err
	}

	return sj, nil
}

func newCookieJar() (*cookiejar.Jar, error) {
	return cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
}

func (sj *SessionJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	sj.mu.Lock()
	defer sj.mu.Unlock()

	now := sj.now()
	for _, c := range cookies {
		switch {
		case c.MaxAge < 0:
			delete(sj.expires, c.Name)
		case c.MaxAge > 0:
			sj.expires[c.Name] = now.Add(time.Duration(c.MaxAge) * time.Second).UTC()
		case !c.Expires.IsZero():
			sj.expires[c.Name] = c.Expires.UTC()
		default:
			delete(sj.expires, c.Name)
		}
	}

	sj.jar.SetCookies(u, cookies)
}

func (sj *SessionJar) Cookies(u *url.URL) []*http.Cookie {
	sj.mu.RLock()
	defer sj.mu.RUnlock()

	return sj.jar.Cookies(u)
}

func (sj *SessionJar) Path() string {
	return sj.path
}

// Save writes the cookies visible to each base url, owner-only.
func (sj *SessionJar) Save() error {
	if sj.path == "" {
		return nil
	}

	file := sessionFile{SavedAt: time.Now().UTC(), Cookies: make(map[string][]savedCookie)}

	sj.mu.RLock()
	for _, u := range sj.urls {
		for _, c := range sj.jar.Cookies(u) {
			file.Cookies[u.String()] = append(file.Cookies[u.String()], savedCookie{
				Name:    c.Name,
				Value:   c.Value,
				Expires: sj.expires[c.Name],
			})
		}
	}
	sj.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(sj.path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	b, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	if err := os.WriteFile(sj.path, b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	return nil
}

// Clear forgets every cookie and removes the session file.
func (sj *SessionJar) Clear() error {
	jar, err := newCookieJar()
	if err != nil {
		return err
	}

	sj.mu.Lock()
	sj.jar = jar
	sj.expires = make(map[string]time.Time)
	sj.mu.Unlock()

	if sj.path == "" {
		return nil
	}

	if err := os.Remove(sj.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}

	return nil
}

func (sj *SessionJar) load() error {
	if sj.path == "" {
		return nil
	}

	b, err := os.ReadFile(sj.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read session: %w", err)
	}

	var file sessionFile
	if err := json.Unmarshal(b, &file); err != nil {
		return fmt.Errorf("parse session: %w", err)
	}

	now := sj.now()

	for raw, saved := range file.Cookies {
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}

		cookies := make([]*http.Cookie, 0, len(saved))
		for _, c := range saved {
			if !c.Expires.IsZero() && !c.Expires.After(now) {
				continue
			}

			cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/", Expires: c.Expires})
			if !c.Expires.IsZero() {
				sj.expires[c.Name] = c.Expires
			}
		}

		sj.jar.SetCookies(u, cookies)
	}

	return nil
}
