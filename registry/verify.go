package registry

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/go-certichain/certichain/storage/model"
)

// Verdict is the outcome of a verification
type Verdict struct {
	Status        model.VerificationStatus `json:"status"`
	CertificateID model.CertificateID      `json:"certificate_id,omitempty"`
	Certificate   *model.Certificate       `json:"certificate,omitempty"`
	// ContentHash is the hash recomputed from the supplied document
	ContentHash string    `json:"content_hash,omitempty"`
	CheckedAt   time.Time `json:"checked_at"`
}

// Verifier answers whether a certificate and optionally a document are
// valid. It only reads.
type Verifier struct {
	registry *Registry
	content  *ContentAddresser
	now      func() time.Time
}

// Verify checks the certificate id. If document is non-empty its hash must
// match the recorded content hash. Precedence is not found, revoked,
// expired, hash mismatch, valid.
func (v *Verifier) Verify(ctx context.Context, id model.CertificateID, document []byte) (Verdict, error) {
	now := v.now()
	verdict := Verdict{
		CertificateID: id,
		CheckedAt:     now,
	}
	cert, _, err := v.registry.read(ctx, id)
	if err != nil {
		return verdict, err
	}
	if cert == nil {
		verdict.Status = model.VerificationNotFound
		return verdict, nil
	}
	verdict.Certificate = cert
	if len(document) > 0 {
		hash, err := v.content.Hash(document)
		if err != nil {
			return verdict, err
		}
		verdict.ContentHash = hash
	}
	verdict.Status = cert.Status(now)
	if verdict.Status == model.VerificationValid && verdict.ContentHash != "" && verdict.ContentHash != cert.ContentHash {
		verdict.Status = model.VerificationHashMismatch
	}
	return verdict, nil
}

// VerifyDocument looks up the certificates recorded for the document's
// hash. The newest valid certificate wins; if none is valid, the newest
// certificate is reported with its status.
func (v *Verifier) VerifyDocument(ctx context.Context, document []byte) (Verdict, error) {
	now := v.now()
	verdict := Verdict{CheckedAt: now}
	if len(document) == 0 {
		return verdict, ErrEmptyDocument
	}
	hash, err := v.content.Hash(document)
	if err != nil {
		return verdict, err
	}
	verdict.ContentHash = hash
	ids, err := v.registry.indexed(ctx, hashIndexPrefix(hash))
	if err != nil {
		return verdict, err
	}
	if len(ids) == 0 {
		verdict.Status = model.VerificationNotFound
		return verdict, nil
	}
	var newest *model.Certificate
	// ids are in ascending order; walk from the newest
	for i := len(ids) - 1; i >= 0; i-- {
		cert, _, err := v.registry.read(ctx, ids[i])
		if err != nil {
			return verdict, err
		}
		if cert == nil {
			return verdict, errors.Errorf("index references missing certificate %s", ids[i])
		}
		if newest == nil {
			newest = cert
		}
		if cert.Status(now) == model.VerificationValid {
			newest = cert
			break
		}
	}
	verdict.Certificate = newest
	verdict.CertificateID = newest.ID
	verdict.Status = newest.Status(now)
	return verdict, nil
}
