package registry

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/go-certichain/certichain/storage/model"
)

const maxIdentityLength = 128

// Directory maintains the issuers and their issuance rights.
type Directory struct {
	ledger model.LedgerStore
	now    func() time.Time
}

func validateIdentity(identity string) error {
	if identity == "" || strings.TrimSpace(identity) != identity {
		return errors.Wrapf(ErrInvalidIdentity, "'%s'", identity)
	}
	if len(identity) > maxIdentityLength {
		return errors.Wrapf(ErrInvalidIdentity, "longer than %d characters", maxIdentityLength)
	}
	if !fitsIndexKey(issuerIndexPrefix(identity)) {
		return errors.Wrapf(ErrInvalidIdentity, "escaped identity exceeds the ledger key length")
	}
	return nil
}

// read returns the issuer and the version it was read at; nil if absent
func (d *Directory) read(ctx context.Context, identity string) (*model.Issuer, uint64, error) {
	var issuer model.Issuer
	version, err := readRecord(ctx, d.ledger, issuerKey(identity), &issuer)
	if err != nil || version == 0 {
		return nil, version, err
	}
	return &issuer, version, nil
}

// Register adds a new, not yet authorized issuer
func (d *Directory) Register(ctx context.Context, identity, name, organization string) (*model.Issuer, error) {
	if err := validateIdentity(identity); err != nil {
		return nil, err
	}
	existing, version, err := d.read(ctx, identity)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.Wrapf(ErrDuplicateIssuer, "'%s'", identity)
	}
	now := d.now()
	issuer := &model.Issuer{
		Identity:     identity,
		Name:         name,
		Organization: organization,
		RegisteredAt: now,
		UpdatedAt:    now,
	}
	tx := model.NewTransaction()
	tx.Read(issuerKey(identity), version)
	if err = putRecord(&tx, issuerKey(identity), issuer); err != nil {
		return nil, err
	}
	receipt, err := commit(ctx, d.ledger, tx)
	if err != nil {
		return nil, err
	}
	auditEntry{
		Action: "register_issuer",
		Issuer: identity,
		TxID:   receipt.TxID,
		Height: receipt.Height,
	}.log("registered issuer")
	return issuer, nil
}

// Authorize grants issuance rights. Authorizing an authorized issuer is a
// no-op.
func (d *Directory) Authorize(ctx context.Context, identity string) error {
	return d.setAuthorized(ctx, identity, true)
}

// Deauthorize withdraws issuance rights. Certificates issued before stay
// untouched.
func (d *Directory) Deauthorize(ctx context.Context, identity string) error {
	return d.setAuthorized(ctx, identity, false)
}

func (d *Directory) setAuthorized(ctx context.Context, identity string, authorized bool) error {
	issuer, version, err := d.read(ctx, identity)
	if err != nil {
		return err
	}
	if issuer == nil {
		return errors.Wrapf(ErrIssuerNotFound, "'%s'", identity)
	}
	if issuer.Authorized == authorized {
		return nil
	}
	issuer.Authorized = authorized
	issuer.UpdatedAt = d.now()
	tx := model.NewTransaction()
	tx.Read(issuerKey(identity), version)
	if err = putRecord(&tx, issuerKey(identity), issuer); err != nil {
		return err
	}
	receipt, err := commit(ctx, d.ledger, tx)
	if err != nil {
		return err
	}
	action := "authorize_issuer"
	if !authorized {
		action = "deauthorize_issuer"
	}
	auditEntry{
		Action: action,
		Issuer: identity,
		TxID:   receipt.TxID,
		Height: receipt.Height,
	}.log("changed issuer authorization")
	return nil
}

// Get returns the issuer registered under identity
func (d *Directory) Get(ctx context.Context, identity string) (*model.Issuer, error) {
	issuer, _, err := d.read(ctx, identity)
	if err != nil {
		return nil, err
	}
	if issuer == nil {
		return nil, errors.Wrapf(ErrIssuerNotFound, "'%s'", identity)
	}
	return issuer, nil
}

// IsAuthorized reports whether identity may issue certificates. It never
// fails; unknown identities and read errors yield false.
func (d *Directory) IsAuthorized(ctx context.Context, identity string) bool {
	issuer, _, err := d.read(ctx, identity)
	if err != nil {
		log.WithError(err).WithField("issuer", identity).Warn("could not read issuer")
		return false
	}
	return issuer != nil && issuer.Authorized
}

// List returns all registered issuers ordered by identity
func (d *Directory) List(ctx context.Context) ([]model.Issuer, error) {
	entries, err := scan(ctx, d.ledger, keyIssuerPrefix)
	if err != nil {
		return nil, err
	}
	issuers := make([]model.Issuer, 0, len(entries))
	for _, e := range entries {
		var issuer model.Issuer
		if err = decodeEntry(e, &issuer); err != nil {
			return nil, err
		}
		issuers = append(issuers, issuer)
	}
	return issuers, nil
}
