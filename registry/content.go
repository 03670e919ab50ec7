package registry

import (
	"context"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	_ "github.com/multiformats/go-multihash/register/all" // sha3 and blake2b hashers
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/go-certichain/certichain/storage/model"
)

// DefaultHashAlgorithm is the multihash used when none is configured
const DefaultHashAlgorithm = "sha2-256"

// DefaultMaxDocumentSize is the largest document accepted by default (10 MiB)
const DefaultMaxDocumentSize = 10 * 1024 * 1024

// SupportedHashAlgorithms lists the multihash names a ContentAddresser can be
// configured with.
var SupportedHashAlgorithms = []string{
	"sha2-256",
	"sha2-512",
	"sha3-256",
	"blake2b-256",
}

// ContentAddresser binds document bytes to content hashes. Hashes are CIDv1
// strings over the raw codec, so equal bytes always give the same hash.
type ContentAddresser struct {
	store   model.ContentStore
	prefix  cid.Prefix
	maxSize int
}

// NewContentAddresser creates a ContentAddresser on top of store. The hash
// algorithm is fixed for the lifetime of the process.
func NewContentAddresser(store model.ContentStore, algorithm string, maxSize int) (*ContentAddresser, error) {
	if algorithm == "" {
		algorithm = DefaultHashAlgorithm
	}
	supported := false
	for _, a := range SupportedHashAlgorithms {
		if a == algorithm {
			supported = true
			break
		}
	}
	code, ok := multihash.Names[algorithm]
	if !supported || !ok {
		return nil, errors.Errorf("unsupported hash algorithm '%s'", algorithm)
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxDocumentSize
	}
	return &ContentAddresser{
		store: store,
		prefix: cid.Prefix{
			Version:  1,
			Codec:    cid.Raw,
			MhType:   code,
			MhLength: -1,
		},
		maxSize: maxSize,
	}, nil
}

// Hash computes the content hash of data without storing it
func (c *ContentAddresser) Hash(data []byte) (string, error) {
	id, err := c.prefix.Sum(data)
	if err != nil {
		return "", errors.Wrap(err, "computing content hash")
	}
	return id.String(), nil
}

// Store persists data in the content store and returns its content hash.
// A failing store yields ErrStorageUnavailable; storing is idempotent, so the
// caller may retry.
func (c *ContentAddresser) Store(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyDocument
	}
	if len(data) > c.maxSize {
		return "", errors.Wrapf(ErrDocumentTooLarge, "%d bytes, limit is %d", len(data), c.maxSize)
	}
	hash, err := c.Hash(data)
	if err != nil {
		return "", err
	}
	if err = c.store.Put(ctx, hash, data); err != nil {
		return "", errors.Wrapf(ErrStorageUnavailable, "storing %s: %v", hash, err)
	}
	log.WithField("hash", hash).WithField("size", len(data)).Debug("stored content")
	return hash, nil
}

// Fetch returns the bytes stored under hash. Bytes that do not hash to the
// requested value are treated as a storage failure.
func (c *ContentAddresser) Fetch(ctx context.Context, hash string) ([]byte, error) {
	id, err := cid.Decode(hash)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidContentHash, "'%s'", hash)
	}
	data, err := c.store.Get(ctx, hash)
	if err != nil {
		var notFound model.NotFoundError
		if errors.As(err, &notFound) {
			return nil, errors.Wrapf(ErrContentNotFound, "%s", hash)
		}
		return nil, errors.Wrapf(ErrStorageUnavailable, "fetching %s: %v", hash, err)
	}
	check, err := id.Prefix().Sum(data)
	if err != nil || !check.Equals(id) {
		return nil, errors.Wrapf(ErrStorageUnavailable, "content for %s failed the integrity check", hash)
	}
	return data, nil
}
