package adminapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/go-certichain/certichain/api"
	"github.com/go-certichain/certichain/registry"
	"github.com/go-certichain/certichain/storage/model"
)

// Options controls optional features of the admin API registration.
type Options struct {
	// UsersEnabled controls whether the user management API is mounted.
	UsersEnabled bool
	// Login locks usernames after repeated failed authentications
	Login *api.LoginGuard
}

// Register mounts all admin API routes under the provided group.
func Register(r fiber.Router, directory *registry.Directory, storages model.Backends, opts *Options) {
	var guard *api.LoginGuard
	if opts != nil {
		guard = opts.Login
	}
	// Optional authentication middleware for all admin routes
	r.Use(authMiddleware(storages.Users, guard))

	registerIssuers(r, directory)
	if journal, ok := storages.Ledger.(model.LedgerJournal); ok {
		registerLedger(r, journal)
	}
	if opts == nil || opts.UsersEnabled {
		registerUsers(r, storages.Users)
	}
}
