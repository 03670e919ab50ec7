package storage

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
)

func defaultArgon2idParams() Argon2idParams {
	return Argon2idParams{
		Time:        1,
		MemoryKiB:   64 * 1024,
		Parallelism: 4,
		KeyLen:      32,
		SaltLen:     16,
	}
}

// hashPasswordArgon2id returns a PHC string:
// $argon2id$v=19$m=<mem>,t=<time>,p=<par>$<salt>$<hash>
func hashPasswordArgon2id(password string, p Argon2idParams) (string, error) {
	if p.Time == 0 {
		p = defaultArgon2idParams()
	}
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.WithStack(err)
	}
	dk := argon2.IDKey([]byte(password), salt, p.Time, p.MemoryKiB, p.Parallelism, p.KeyLen)
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s", argon2.Version, p.MemoryKiB, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt), base64.RawStdEncoding.EncodeToString(dk),
	), nil
}

func verifyPasswordArgon2id(encoded, password string) (bool, error) {
	p, salt, hash, err := parseArgon2id(encoded)
	if err != nil {
		return false, err
	}
	dk := argon2.IDKey([]byte(password), salt, p.Time, p.MemoryKiB, p.Parallelism, uint32(len(hash)))
	return subtle.ConstantTimeCompare(dk, hash) == 1, nil
}

func extractArgon2idParams(encoded string) (Argon2idParams, error) {
	p, _, _, err := parseArgon2id(encoded)
	return p, err
}

func parseArgon2id(encoded string) (p Argon2idParams, salt, hash []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		err = errors.New("unsupported password hash format")
		return
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		err = errors.New("unsupported argon2 version")
		return
	}
	for _, kv := range strings.Split(parts[3], ",") {
		name, value, _ := strings.Cut(kv, "=")
		var v uint64
		switch name {
		case "m":
			v, err = strconv.ParseUint(value, 10, 32)
			p.MemoryKiB = uint32(v)
		case "t":
			v, err = strconv.ParseUint(value, 10, 32)
			p.Time = uint32(v)
		case "p":
			v, err = strconv.ParseUint(value, 10, 8)
			p.Parallelism = uint8(v)
		}
		if err != nil {
			err = errors.Wrapf(err, "argon2id parameter '%s'", name)
			return
		}
	}
	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		err = errors.WithStack(err)
		return
	}
	if hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		err = errors.WithStack(err)
		return
	}
	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(hash))
	return
}
