package api

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-certichain/certichain/storage/model"
)

// passwordUsers accepts every user whose password equals "pw"
type passwordUsers struct {
	model.UsersStore
	calls int
}

func (p *passwordUsers) Authenticate(username, password string) (*model.User, error) {
	p.calls++
	if password != "pw" {
		return nil, errors.New("invalid credentials")
	}
	return &model.User{
		Username: username,
		Issuer:   "uni-london",
	}, nil
}

func TestParseBasicAuthHeader(t *testing.T) {
	encode := func(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }
	tests := []struct {
		header   string
		user, pw string
		ok       bool
	}{
		{"Basic " + encode("alice:pa:ss"), "alice", "pa:ss", true},
		{"Basic " + encode("alice"), "", "", false},
		{"Bearer " + encode("alice:pw"), "", "", false},
		{"Basic !!!", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		user, pw, ok := ParseBasicAuthHeader(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		if tt.ok {
			assert.Equal(t, tt.user, user)
			assert.Equal(t, tt.pw, pw)
		}
	}
}

func newGuard(maxAttempts int, lockout time.Duration) (*LoginGuard, *time.Time) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	g := NewLoginGuard(maxAttempts, lockout)
	g.now = func() time.Time { return now }
	return g, &now
}

func TestLoginGuard(t *testing.T) {
	g, now := newGuard(3, 15*time.Minute)

	g.Failed("alice")
	g.Failed("alice")
	assert.False(t, g.Locked("alice"))
	g.Failed("alice")
	assert.True(t, g.Locked("alice"))
	assert.False(t, g.Locked("bob"))

	*now = now.Add(14 * time.Minute)
	assert.True(t, g.Locked("alice"))
	*now = now.Add(time.Minute)
	assert.False(t, g.Locked("alice"))

	// counting starts afresh after the lock expired
	g.Failed("alice")
	assert.False(t, g.Locked("alice"))
}

func TestLoginGuardSuccessResets(t *testing.T) {
	g, _ := newGuard(2, time.Minute)
	g.Failed("alice")
	g.Succeeded("alice")
	g.Failed("alice")
	assert.False(t, g.Locked("alice"))
}

func TestLoginGuardDisabled(t *testing.T) {
	var g *LoginGuard
	assert.Nil(t, NewLoginGuard(0, time.Minute))
	for i := 0; i < 10; i++ {
		g.Failed("alice")
	}
	assert.False(t, g.Locked("alice"))
}

func TestLoginGuardPrunesStaleCounters(t *testing.T) {
	g, now := newGuard(2, time.Minute)
	for i := 0; i < pruneThreshold; i++ {
		g.Failed(string(rune('a'+i%26)) + time.Duration(i).String())
	}
	g.Failed("alice")
	g.Failed("alice")
	*now = now.Add(2 * time.Minute)
	g.Failed("bob")
	assert.Len(t, g.failures, 1)
	assert.False(t, g.Locked("alice"))
}

func TestAuthenticate(t *testing.T) {
	users := &passwordUsers{}
	guard, _ := newGuard(2, time.Minute)
	app := fiber.New()
	app.Get(
		"/", func(c *fiber.Ctx) error {
			u, err := Authenticate(c, users, guard)
			if err != nil {
				Challenge(c, `Basic realm="test"`, err)
				return SendError(c, err)
			}
			SetPrincipal(c, u)
			return c.SendString(Principal(c).Issuer)
		},
	)
	do := func(user, pw string) *http.Response {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if user != "" {
			req.SetBasicAuth(user, pw)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	resp := do("", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, `Basic realm="test"`, resp.Header.Get(fiber.HeaderWWWAuthenticate))

	assert.Equal(t, fiber.StatusOK, do("alice", "pw").StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, do("alice", "wrong").StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, do("alice", "wrong").StatusCode)

	calls := users.calls
	resp = do("alice", "pw")
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(fiber.HeaderWWWAuthenticate))
	assert.Equal(t, calls, users.calls, "password must not be checked while locked")

	assert.Equal(t, fiber.StatusOK, do("bob", "pw").StatusCode)
}

func TestAuthenticateWithoutUsers(t *testing.T) {
	app := fiber.New()
	app.Get(
		"/", func(c *fiber.Ctx) error {
			_, err := Authenticate(c, nil, nil)
			return SendError(c, err)
		},
	)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("alice", "pw")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
