package api

import (
	"encoding/base64"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/go-certichain/certichain/storage/model"
)

// Authentication errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrLockedOut    = errors.New("too many failed login attempts")
)

const localsPrincipal = "principal"

// BasicAuth extracts Basic auth credentials from the request
func BasicAuth(c *fiber.Ctx) (username, password string, ok bool) {
	return ParseBasicAuthHeader(c.Get(fiber.HeaderAuthorization))
}

// ParseBasicAuthHeader parses the value of an Authorization header
func ParseBasicAuthHeader(header string) (username, password string, ok bool) {
	encoded, found := strings.CutPrefix(header, "Basic ")
	if !found {
		return "", "", false
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", false
	}
	return strings.Cut(string(raw), ":")
}

// Authenticate checks the Basic credentials of the request against users.
// While guard has the username locked, the password is not checked at all.
func Authenticate(c *fiber.Ctx, users model.UsersStore, guard *LoginGuard) (*model.User, error) {
	if users == nil {
		return nil, errors.Wrap(ErrUnauthorized, "no user accounts configured")
	}
	username, password, ok := BasicAuth(c)
	if !ok {
		return nil, errors.Wrap(ErrUnauthorized, "missing credentials")
	}
	if guard.Locked(username) {
		return nil, errors.Wrapf(ErrLockedOut, "user '%s' is locked", username)
	}
	u, err := users.Authenticate(username, password)
	if err != nil {
		guard.Failed(username)
		log.WithError(err).WithField("user", username).Info("authentication failed")
		return nil, errors.Wrap(ErrUnauthorized, "invalid credentials")
	}
	guard.Succeeded(username)
	return u, nil
}

// Challenge sets the WWW-Authenticate header if err asks for credentials
func Challenge(c *fiber.Ctx, realm string, err error) {
	if errors.Is(err, ErrUnauthorized) {
		c.Set(fiber.HeaderWWWAuthenticate, realm)
	}
}

// SetPrincipal stores the authenticated user of the request
func SetPrincipal(c *fiber.Ctx, u *model.User) {
	c.Locals(localsPrincipal, u)
}

// Principal returns the authenticated user of the request, or nil
func Principal(c *fiber.Ctx) *model.User {
	u, _ := c.Locals(localsPrincipal).(*model.User)
	return u
}
