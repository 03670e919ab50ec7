package model

import (
	"fmt"
)

// CertificateState is the stored lifecycle state of a certificate. The only
// transition is StateValid -> StateRevoked. Expiry is not a stored state.
type CertificateState int

// Constants for CertificateState
const (
	StateValid CertificateState = iota
	StateRevoked
)

// String returns the canonical string representation for the state.
func (s CertificateState) String() string {
	switch s {
	case StateValid:
		return "valid"
	case StateRevoked:
		return "revoked"
	default:
		return "unknown"
	}
}

// Valid reports whether the state is one of the defined constants.
func (s CertificateState) Valid() bool {
	return s == StateValid || s == StateRevoked
}

// MarshalJSON encodes the state as a JSON string.
func (s CertificateState) MarshalJSON() ([]byte, error) {
	return []byte("\"" + s.String() + "\""), nil
}

// UnmarshalJSON decodes the state from a JSON string.
func (s *CertificateState) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("certificate state must be a JSON string")
	}
	ps, err := ParseCertificateState(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*s = ps
	return nil
}

// ParseCertificateState converts a string to a CertificateState
func ParseCertificateState(v string) (CertificateState, error) {
	switch v {
	case "valid":
		return StateValid, nil
	case "revoked":
		return StateRevoked, nil
	}
	return 0, fmt.Errorf("invalid certificate state: %s", v)
}

// VerificationStatus is the outcome of a verification query
type VerificationStatus string

// Verification outcomes
const (
	VerificationValid        VerificationStatus = "valid"
	VerificationRevoked      VerificationStatus = "revoked"
	VerificationExpired      VerificationStatus = "expired"
	VerificationHashMismatch VerificationStatus = "hash_mismatch"
	VerificationNotFound     VerificationStatus = "not_found"
)
