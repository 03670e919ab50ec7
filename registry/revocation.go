package registry

import (
	"context"

	"github.com/pkg/errors"

	"github.com/go-certichain/certichain/storage/model"
)

// RevocationMode selects who besides the original issuer may revoke a
// certificate.
type RevocationMode string

// Revocation modes
const (
	// RevocationByIssuer only lets the original issuer revoke
	RevocationByIssuer RevocationMode = "issuer"
	// RevocationByIssuerOrAdmin additionally lets administrative identities revoke
	RevocationByIssuerOrAdmin RevocationMode = "issuer_or_admin"
	// RevocationByAnyAuthorized lets any currently authorized issuer revoke
	RevocationByAnyAuthorized RevocationMode = "any_authorized"
)

// RevocationPolicy is the authorization predicate for Registry.Revoke.
type RevocationPolicy struct {
	Mode RevocationMode `yaml:"mode"`
	// Admins are the identities allowed to revoke in RevocationByIssuerOrAdmin mode
	Admins []string `yaml:"admins"`
}

// Validate checks the policy and fills in the default mode
func (p *RevocationPolicy) Validate() error {
	switch p.Mode {
	case "":
		p.Mode = RevocationByIssuer
	case RevocationByIssuer, RevocationByAnyAuthorized:
	case RevocationByIssuerOrAdmin:
		if len(p.Admins) == 0 {
			return errors.Errorf("revocation mode '%s' needs at least one admin identity", p.Mode)
		}
	default:
		return errors.Errorf("unknown revocation mode '%s'", p.Mode)
	}
	return nil
}

// allows decides whether requester may revoke cert. Ledger state the
// decision depends on is added to the read set of tx.
func (p RevocationPolicy) allows(
	ctx context.Context, d *Directory, tx *model.Transaction, cert *model.Certificate, requester string,
) (bool, error) {
	if requester == "" {
		return false, nil
	}
	if requester == cert.Issuer {
		return true, nil
	}
	switch p.Mode {
	case RevocationByIssuerOrAdmin:
		for _, a := range p.Admins {
			if a == requester {
				return true, nil
			}
		}
	case RevocationByAnyAuthorized:
		issuer, version, err := d.read(ctx, requester)
		if err != nil {
			return false, err
		}
		tx.Read(issuerKey(requester), version)
		return issuer != nil && issuer.Authorized, nil
	}
	return false, nil
}
