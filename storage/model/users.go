package model

import (
	"time"
)

// User is an account that authenticates with Basic auth. Accounts bound to
// an Issuer identity may issue and revoke as that issuer and nothing else;
// unbound accounts are operators of the admin API. While no users exist the
// admin API is open.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Username string `gorm:"uniqueIndex;size:128" json:"username"`
	// PasswordHash is a PHC-formatted argon2id hash
	PasswordHash string `json:"-"`
	DisplayName  string `json:"display_name"`
	// Issuer is the issuer identity the account acts as
	Issuer   string `gorm:"index;size:128" json:"issuer,omitempty"`
	Disabled bool   `json:"disabled"`
}

// UsersStore abstracts CRUD and authentication of user accounts.
type UsersStore interface {
	Count() (int64, error)
	// List returns all users without password hashes
	List() ([]User, error)
	Get(username string) (*User, error)
	// Create creates a user; the implementation must hash the password
	Create(username, password, displayName, issuer string) (*User, error)
	// Update changes the non-nil attributes
	Update(username string, displayName, newPassword, issuer *string, disabled *bool) (*User, error)
	Delete(username string) error
	// Authenticate checks a username/password combination
	Authenticate(username, password string) (*User, error)
}
