package config

import (
	"time"

	"github.com/pkg/errors"
	"github.com/zachmann/go-utils/duration"

	"github.com/go-certichain/certichain/api"
	"github.com/go-certichain/certichain/storage"
)

// apiConf holds API-related configuration
type apiConf struct {
	Admin adminAPIConf `yaml:"admin"`
	Login loginConf    `yaml:"login"`
}

type adminAPIConf struct {
	Enabled        bool                   `yaml:"enabled"`
	UsersEnabled   bool                   `yaml:"users_enabled"`
	Argon2idParams storage.Argon2idParams `yaml:"password_hashing"`
}

// loginConf configures the lockout after failed Basic authentications; a
// max_attempts of 0 disables it
type loginConf struct {
	MaxAttempts     int                     `yaml:"max_attempts"`
	LockoutDuration duration.DurationOption `yaml:"lockout_duration"`
}

var defaultAPIConf = apiConf{
	Admin: adminAPIConf{
		Enabled:      true,
		UsersEnabled: true,
		Argon2idParams: storage.Argon2idParams{
			Time:        1,
			MemoryKiB:   64 * 1024,
			Parallelism: 4,
			KeyLen:      64,
			SaltLen:     32,
		},
	},
	Login: loginConf{
		MaxAttempts:     5,
		LockoutDuration: duration.DurationOption(15 * time.Minute),
	},
}

func (c *apiConf) validate() error {
	if c.Login.MaxAttempts < 0 {
		return errors.New("login.max_attempts must not be negative")
	}
	if c.Login.MaxAttempts > 0 && c.Login.LockoutDuration.Duration() <= 0 {
		return errors.New("login.lockout_duration must be positive")
	}
	return nil
}

// Guard returns the LoginGuard shared by all authenticated routes
func (c loginConf) Guard() *api.LoginGuard {
	return api.NewLoginGuard(c.MaxAttempts, c.LockoutDuration.Duration())
}
