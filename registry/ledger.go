package registry

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/go-certichain/certichain/storage/model"
)

// Ledger key layout. Identities and template keys are path-escaped so that
// prefix scans cannot match across segments.
const (
	keyIssuerPrefix      = "issuer/"
	keyCertificatePrefix = "cert/"
	keyCertificateSeq    = "seq/certificate"
	keyIndexHash         = "idx/hash/"
	keyIndexIssuer       = "idx/issuer/"
	keyIndexTemplate     = "idx/template/"
)

func issuerKey(identity string) string {
	return keyIssuerPrefix + url.PathEscape(identity)
}

func certificateKey(id model.CertificateID) string {
	return keyCertificatePrefix + paddedID(id)
}

func hashIndexPrefix(hash string) string {
	return keyIndexHash + url.PathEscape(hash) + "/"
}

func issuerIndexPrefix(identity string) string {
	return keyIndexIssuer + url.PathEscape(identity) + "/"
}

func templateIndexPrefix(template string) string {
	return keyIndexTemplate + url.PathEscape(template) + "/"
}

// fitsIndexKey reports whether index entries under prefix stay within the
// ledger key length
func fitsIndexKey(prefix string) bool {
	return len(prefix)+len(paddedID(0)) <= model.MaxKeyLength
}

// paddedID keeps lexical key order equal to numeric id order
func paddedID(id model.CertificateID) string {
	return fmt.Sprintf("%020d", uint64(id))
}

// indexedIDs extracts the certificate ids from index entries found under prefix
func indexedIDs(entries []model.StateEntry, prefix string) ([]model.CertificateID, error) {
	ids := make([]model.CertificateID, 0, len(entries))
	for _, e := range entries {
		id, err := model.ParseCertificateID(strings.TrimPrefix(e.Key, prefix))
		if err != nil {
			return nil, errors.Wrapf(err, "corrupt index key '%s'", e.Key)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// readRecord reads key and decodes it into out. It returns the observed
// version, which is 0 if the key does not exist; out is untouched then.
func readRecord(ctx context.Context, ledger model.LedgerStore, key string, out any) (uint64, error) {
	st, err := ledger.ReadState(ctx, key)
	if err != nil {
		return 0, errors.Wrapf(ErrLedgerUnavailable, "reading '%s': %v", key, err)
	}
	if !st.Exists() {
		return 0, nil
	}
	if err = msgpack.Unmarshal(st.Value, out); err != nil {
		return 0, errors.Wrapf(err, "decoding ledger record '%s'", key)
	}
	return st.Version, nil
}

func scan(ctx context.Context, ledger model.LedgerStore, prefix string) ([]model.StateEntry, error) {
	entries, err := ledger.Scan(ctx, prefix)
	if err != nil {
		return nil, errors.Wrapf(ErrLedgerUnavailable, "scanning '%s': %v", prefix, err)
	}
	return entries, nil
}

func putRecord(tx *model.Transaction, key string, v any) error {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encoding ledger record '%s'", key)
	}
	tx.Put(key, data)
	return nil
}

func commit(ctx context.Context, ledger model.LedgerStore, tx model.Transaction) (model.CommitReceipt, error) {
	receipt, err := ledger.Commit(ctx, tx)
	if err == nil {
		return receipt, nil
	}
	if errors.Is(err, model.ErrAborted) {
		return receipt, errors.WithMessagef(err, "transaction %s", tx.ID)
	}
	return receipt, errors.Wrapf(ErrLedgerUnavailable, "committing transaction %s: %v", tx.ID, err)
}

func decodeEntry(e model.StateEntry, out any) error {
	if err := msgpack.Unmarshal(e.Value, out); err != nil {
		return errors.Wrapf(err, "decoding ledger record '%s'", e.Key)
	}
	return nil
}
