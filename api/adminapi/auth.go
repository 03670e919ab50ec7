package adminapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/go-certichain/certichain/api"
	"github.com/go-certichain/certichain/registry"
	"github.com/go-certichain/certichain/storage/model"
)

const authRealm = `Basic realm="certichain admin"`

// authMiddleware enforces authentication once at least one user exists.
// While the users table is empty all requests are allowed, so that the
// first operator can be created. Accounts bound to an issuer identity are
// not operators.
func authMiddleware(users model.UsersStore, guard *api.LoginGuard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		count, err := users.Count()
		if err != nil {
			return api.SendError(c, err)
		}
		if count == 0 {
			return c.Next()
		}

		u, err := api.Authenticate(c, users, guard)
		if err != nil {
			api.Challenge(c, authRealm, err)
			return api.SendError(c, err)
		}
		if u.Issuer != "" {
			return api.SendError(
				c, errors.Wrapf(registry.ErrNotAuthorized, "user '%s' is an issuer account", u.Username),
			)
		}
		c.Locals(localsUser, u.Username)
		return c.Next()
	}
}

const localsUser = "admin_user"

// operator returns the authenticated admin user of the request, if any
func operator(c *fiber.Ctx) string {
	u, _ := c.Locals(localsUser).(string)
	return u
}
