package registry

import (
	"context"
	"sort"
	"strings"
	"time"

	arrays "github.com/adam-hanna/arrayOperations"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/go-certichain/certichain/storage/model"
)

// IssueRequest holds the input of Registry.Issue
type IssueRequest struct {
	Issuer    string
	Template  string
	Fields    model.Fields
	Document  []byte
	ExpiresAt *time.Time
}

// CertificateFilter narrows Registry.List; empty fields do not filter.
type CertificateFilter struct {
	Issuer   string
	Template string
}

// Registry is the authoritative mapping from certificate ids to
// certificates.
type Registry struct {
	ledger    model.LedgerStore
	directory *Directory
	templates *TemplateSet
	content   *ContentAddresser
	policy    RevocationPolicy
	now       func() time.Time
}

func (r *Registry) read(ctx context.Context, id model.CertificateID) (*model.Certificate, uint64, error) {
	var cert model.Certificate
	version, err := readRecord(ctx, r.ledger, certificateKey(id), &cert)
	if err != nil || version == 0 {
		return nil, version, err
	}
	return &cert, version, nil
}

func (r *Registry) readSequence(ctx context.Context) (uint64, uint64, error) {
	var seq uint64
	version, err := readRecord(ctx, r.ledger, keyCertificateSeq, &seq)
	return seq, version, err
}

// Issue validates the request, stores the document and records a new
// certificate. The certificate, the issuer's counter, the id sequence and
// the indexes are written in a single ledger transaction.
func (r *Registry) Issue(ctx context.Context, req IssueRequest) (*model.Certificate, error) {
	if err := r.templates.Validate(req.Template, req.Fields); err != nil {
		return nil, err
	}
	now := r.now()
	if req.ExpiresAt != nil && !req.ExpiresAt.After(now) {
		return nil, errors.Wrapf(ErrInvalidExpiry, "expires_at %s", req.ExpiresAt.Format(time.RFC3339))
	}

	issuer, issuerVersion, err := r.directory.read(ctx, req.Issuer)
	if err != nil {
		return nil, err
	}
	if issuer == nil || !issuer.Authorized {
		return nil, errors.Wrapf(ErrIssuerNotAuthorized, "'%s'", req.Issuer)
	}

	// The document must be stored durably before an id is allocated.
	hash, err := r.content.Store(ctx, req.Document)
	if err != nil {
		return nil, err
	}

	seq, seqVersion, err := r.readSequence(ctx)
	if err != nil {
		return nil, err
	}
	id := model.CertificateID(seq + 1)

	tx := model.NewTransaction()
	cert := &model.Certificate{
		ID:          id,
		Issuer:      issuer.Identity,
		Template:    req.Template,
		Fields:      compactFields(req.Fields),
		ContentHash: hash,
		IssuedAt:    now,
		State:       model.StateValid,
		TxID:        tx.ID,
	}
	if req.ExpiresAt != nil {
		exp := req.ExpiresAt.UTC()
		cert.ExpiresAt = &exp
	}
	issuer.TotalCertificates++
	issuer.UpdatedAt = now

	tx.Read(issuerKey(issuer.Identity), issuerVersion)
	tx.Read(keyCertificateSeq, seqVersion)
	if err = putRecord(&tx, certificateKey(id), cert); err != nil {
		return nil, err
	}
	if err = putRecord(&tx, issuerKey(issuer.Identity), issuer); err != nil {
		return nil, err
	}
	if err = putRecord(&tx, keyCertificateSeq, uint64(id)); err != nil {
		return nil, err
	}
	marker := []byte{1}
	tx.Put(hashIndexPrefix(hash)+paddedID(id), marker)
	tx.Put(issuerIndexPrefix(issuer.Identity)+paddedID(id), marker)
	tx.Put(templateIndexPrefix(req.Template)+paddedID(id), marker)

	receipt, err := commit(ctx, r.ledger, tx)
	if err != nil {
		return nil, err
	}
	auditEntry{
		Action:      "issue_certificate",
		Issuer:      issuer.Identity,
		Certificate: id.String(),
		Template:    req.Template,
		TxID:        receipt.TxID,
		Height:      receipt.Height,
	}.log("issued certificate")
	return cert, nil
}

// compactFields drops empty optional values
func compactFields(fields model.Fields) model.Fields {
	out := make(model.Fields, len(fields))
	for k, v := range fields {
		if strings.TrimSpace(v) != "" {
			out[k] = v
		}
	}
	return out
}

// Revoke irreversibly revokes a certificate. Revoking twice fails with
// ErrAlreadyRevoked.
func (r *Registry) Revoke(ctx context.Context, id model.CertificateID, requester string) (*model.Certificate, error) {
	cert, version, err := r.read(ctx, id)
	if err != nil {
		return nil, err
	}
	if cert == nil {
		return nil, errors.Wrapf(ErrCertificateNotFound, "%s", id)
	}
	if cert.State == model.StateRevoked {
		return nil, errors.Wrapf(ErrAlreadyRevoked, "%s", id)
	}
	tx := model.NewTransaction()
	tx.Read(certificateKey(id), version)
	allowed, err := r.policy.allows(ctx, r.directory, &tx, cert, requester)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, errors.Wrapf(ErrNotAuthorized, "'%s' may not revoke %s", requester, id)
	}
	now := r.now()
	cert.State = model.StateRevoked
	cert.RevokedAt = &now
	cert.RevokedBy = requester
	if err = putRecord(&tx, certificateKey(id), cert); err != nil {
		return nil, err
	}
	receipt, err := commit(ctx, r.ledger, tx)
	if err != nil {
		return nil, err
	}
	auditEntry{
		Action:      "revoke_certificate",
		Issuer:      cert.Issuer,
		Certificate: id.String(),
		Requester:   requester,
		TxID:        receipt.TxID,
		Height:      receipt.Height,
	}.log("revoked certificate")
	return cert, nil
}

// Get returns the certificate with the passed id
func (r *Registry) Get(ctx context.Context, id model.CertificateID) (*model.Certificate, error) {
	cert, _, err := r.read(ctx, id)
	if err != nil {
		return nil, err
	}
	if cert == nil {
		return nil, errors.Wrapf(ErrCertificateNotFound, "%s", id)
	}
	return cert, nil
}

// Total returns the number of certificates ever issued
func (r *Registry) Total(ctx context.Context) (uint64, error) {
	seq, _, err := r.readSequence(ctx)
	return seq, err
}

// List returns the certificates matching filter ordered by id
func (r *Registry) List(ctx context.Context, filter CertificateFilter) ([]model.Certificate, error) {
	if filter.Issuer == "" && filter.Template == "" {
		entries, err := scan(ctx, r.ledger, keyCertificatePrefix)
		if err != nil {
			return nil, err
		}
		certs := make([]model.Certificate, 0, len(entries))
		for _, e := range entries {
			var cert model.Certificate
			if err = msgpack.Unmarshal(e.Value, &cert); err != nil {
				return nil, errors.Wrapf(err, "decoding ledger record '%s'", e.Key)
			}
			certs = append(certs, cert)
		}
		return certs, nil
	}

	var sets [][]model.CertificateID
	if filter.Issuer != "" {
		ids, err := r.indexed(ctx, issuerIndexPrefix(filter.Issuer))
		if err != nil {
			return nil, err
		}
		sets = append(sets, ids)
	}
	if filter.Template != "" {
		ids, err := r.indexed(ctx, templateIndexPrefix(filter.Template))
		if err != nil {
			return nil, err
		}
		sets = append(sets, ids)
	}
	ids := sets[0]
	if len(sets) > 1 {
		ids = arrays.Intersect(sets...)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	certs := make([]model.Certificate, 0, len(ids))
	for _, id := range ids {
		cert, _, err := r.read(ctx, id)
		if err != nil {
			return nil, err
		}
		if cert == nil {
			return nil, errors.Errorf("index references missing certificate %s", id)
		}
		certs = append(certs, *cert)
	}
	return certs, nil
}

func (r *Registry) indexed(ctx context.Context, prefix string) ([]model.CertificateID, error) {
	entries, err := scan(ctx, r.ledger, prefix)
	if err != nil {
		return nil, err
	}
	return indexedIDs(entries, prefix)
}
