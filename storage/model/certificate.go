package model

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// CertificateID identifies a certificate. IDs are allocated from a
// monotonically increasing ledger sequence and are never reused.
type CertificateID uint64

// String returns the decimal representation of the id
func (id CertificateID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseCertificateID parses a decimal certificate id
func ParseCertificateID(s string) (CertificateID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil || v == 0 {
		return 0, errors.Errorf("invalid certificate id '%s'", s)
	}
	return CertificateID(v), nil
}

// Certificate is the authoritative on-ledger record of an issued
// certificate. ID, ContentHash and IssuedAt never change after issuance.
type Certificate struct {
	ID          CertificateID    `msgpack:"id" json:"id"`
	Issuer      string           `msgpack:"issuer" json:"issuer"`
	Template    string           `msgpack:"template" json:"template"`
	Fields      Fields           `msgpack:"fields" json:"fields"`
	ContentHash string           `msgpack:"content_hash" json:"content_hash"`
	IssuedAt    time.Time        `msgpack:"issued_at" json:"issued_at"`
	ExpiresAt   *time.Time       `msgpack:"expires_at,omitempty" json:"expires_at,omitempty"`
	State       CertificateState `msgpack:"state" json:"state"`
	RevokedAt   *time.Time       `msgpack:"revoked_at,omitempty" json:"revoked_at,omitempty"`
	RevokedBy   string           `msgpack:"revoked_by,omitempty" json:"revoked_by,omitempty"`
	// TxID references the ledger transaction that issued the certificate
	TxID string `msgpack:"tx_id" json:"tx_id"`
}

// Expired reports whether the certificate has an expiry that lies before now
func (c Certificate) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// Status derives the current status of the certificate. Revocation takes
// precedence over expiry.
func (c Certificate) Status(now time.Time) VerificationStatus {
	if c.State == StateRevoked {
		return VerificationRevoked
	}
	if c.Expired(now) {
		return VerificationExpired
	}
	return VerificationValid
}
