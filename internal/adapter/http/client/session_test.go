package client

import (
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionJar_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	base, _ := url.Parse("http://localhost:3001")

	jar, err := NewSessionJar(path, base.String())
	assert.NoError(t, err)

	jar.SetCookies(base, []*http.Cookie{{Name: "session", Value: "token", Path: "/"}})
	assert.NoError(t, jar.Save())

	info, err := os.Stat(path)
	assert.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reloaded, err := NewSessionJar(path, base.String())
	assert.NoError(t, err)

	api, _ := url.Parse("http://localhost:3002/to-do")
	cookies := reloaded.Cookies(api)
	assert.Len(t, cookies, 1)
	assert.Equal(t, "token", cookies[0].Value)
}

func TestSessionJar_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	base, _ := url.Parse("http://localhost:3001")

	jar, _ := NewSessionJar(path, base.String())
	jar.SetCookies(base, []*http.Cookie{{Name: "session", Value: "token", Path: "/"}})
	assert.NoError(t, jar.Save())

	assert.NoError(t, jar.Clear())
	assert.Empty(t, jar.Cookies(base))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, jar.Clear())
}

func TestSessionJar_InMemory(t *testing.T) {
	jar, err := NewSessionJar("")

	assert.NoError(t, err)
	assert.NoError(t, jar.Save())
	assert.NoError(t, jar.Clear())
}

func TestSessionJar_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	os.WriteFile(path, []byte("{"), 0o600)

	_, err := NewSessionJar(path)

	assert.Error(t, err)
}

func TestSessionJar_PersistsExpiry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	base, _ := url.Parse("http://localhost:3001")

	jar, _ := NewSessionJar(path, base.String())
	jar.SetCookies(base, []*http.Cookie{{Name: "session", Value: "token", Path: "/", MaxAge: 3600}})
	assert.NoError(t, jar.Save())

	b, err := os.ReadFile(path)
	assert.NoError(t, err)

	var file sessionFile
	assert.NoError(t, json.Unmarshal(b, &file))

	saved := file.Cookies[base.String()]
	if assert.Len(t, saved, 1) {
		assert.WithinDuration(t, time.Now().Add(time.Hour), saved[0].Expires, time.Minute)
	}

	reloaded, err := NewSessionJar(path, base.String())
	assert.NoError(t, err)
	assert.Len(t, reloaded.Cookies(base), 1)
}

func TestSessionJar_SkipsExpiredCookiesOnLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	base := "http://localhost:3001"

	file := sessionFile{
		SavedAt: time.Now().Add(-2 * time.Hour).UTC(),
		Cookies: map[string][]savedCookie{
			base: {
				{Name: "session", Value: "stale", Expires: time.Now().Add(-time.Hour).UTC()},
				{Name: "theme", Value: "dark"},
			},
		},
	}
	b, _ := json.Marshal(file)
	assert.NoError(t, os.WriteFile(path, b, 0o600))

	jar, err := NewSessionJar(path, base)
	assert.NoError(t, err)

	u, _ := url.Parse(base)
	cookies := jar.Cookies(u)
	if assert.Len(t, cookies, 1) {
		assert.Equal(t, "theme", cookies[0].Name)
	}
}
