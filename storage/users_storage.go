package storage

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/go-certichain/certichain/storage/model"
)

// UsersStorage returns a UsersStorage
func (s *Storage) UsersStorage() *UsersStorage {
	return &UsersStorage{
		db:     s.db,
		params: s.userParams,
	}
}

// UsersStorage implements model.UsersStore using GORM
type UsersStorage struct {
	db     *gorm.DB
	params Argon2idParams
}

// ErrInvalidCredentials is returned by Authenticate for a wrong password or a
// disabled account
var ErrInvalidCredentials = errors.New("invalid credentials")

func (s *UsersStorage) find(username string) (*model.User, error) {
	var u model.User
	err := s.db.Where(&model.User{Username: username}).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.NotFoundErrorFmt("user not found: %s", username)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Count returns the number of users
func (s *UsersStorage) Count() (int64, error) {
	var count int64
	err := s.db.Model(&model.User{}).Count(&count).Error
	return count, err
}

// List returns all users ordered by username
func (s *UsersStorage) List() ([]model.User, error) {
	var users []model.User
	if err := s.db.Order("username").Find(&users).Error; err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// Get returns a user by username
func (s *UsersStorage) Get(username string) (*model.User, error) {
	u, err := s.find(username)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

// Create creates a user with an Argon2id-hashed password. A non-empty issuer
// binds the account to that issuer identity.
func (s *UsersStorage) Create(username, password, displayName, issuer string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}
	hash, err := hashPasswordArgon2id(password, s.params)
	if err != nil {
		return nil, err
	}
	u := model.User{
		Username:     username,
		PasswordHash: hash,
		DisplayName:  displayName,
		Issuer:       issuer,
	}
	if err = s.db.Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, model.AlreadyExistsErrorFmt("user already exists: %s", username)
		}
		return nil, err
	}
	u.PasswordHash = ""
	return &u, nil
}

// Update changes the display name, password, issuer binding or disabled
// flag; nil values are left untouched
func (s *UsersStorage) Update(username string, displayName, newPassword, issuer *string, disabled *bool) (
	*model.User, error,
) {
	u, err := s.find(username)
	if err != nil {
		return nil, err
	}
	if displayName != nil {
		u.DisplayName = *displayName
	}
	if issuer != nil {
		u.Issuer = *issuer
	}
	if disabled != nil {
		u.Disabled = *disabled
	}
	if newPassword != nil {
		if *newPassword == "" {
			return nil, errors.New("password cannot be empty")
		}
		if u.PasswordHash, err = hashPasswordArgon2id(*newPassword, s.params); err != nil {
			return nil, err
		}
	}
	if err = s.db.Save(u).Error; err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

// Delete deletes a user by username
func (s *UsersStorage) Delete(username string) error {
	res := s.db.Where(&model.User{Username: username}).Delete(&model.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.NotFoundErrorFmt("user not found: %s", username)
	}
	return nil
}

// Authenticate validates username and password. Hashes created with other
// parameters than the configured ones are upgraded on success.
func (s *UsersStorage) Authenticate(username, password string) (*model.User, error) {
	u, err := s.find(username)
	if err != nil {
		return nil, err
	}
	if u.Disabled {
		return nil, errors.Wrap(ErrInvalidCredentials, "user disabled")
	}
	if ok, err := verifyPasswordArgon2id(u.PasswordHash, password); err != nil || !ok {
		return nil, ErrInvalidCredentials
	}
	if stored, err := extractArgon2idParams(u.PasswordHash); err == nil && stored != s.params {
		if newHash, err := hashPasswordArgon2id(password, s.params); err == nil {
			if err = s.db.Model(u).Update("password_hash", newHash).Error; err != nil {
				log.WithError(err).WithField("user", username).Warn("could not upgrade password hash")
			}
		}
	}
	u.PasswordHash = ""
	return u, nil
}
