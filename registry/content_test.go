package registry

import (
	"context"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-certichain/certichain/storage"
)

func TestContentHashDeterministic(t *testing.T) {
	for _, alg := range SupportedHashAlgorithms {
		t.Run(
			alg, func(t *testing.T) {
				c, err := NewContentAddresser(storage.NewMemoryContentStore(), alg, 0)
				require.NoError(t, err)
				a, err := c.Hash([]byte("same bytes"))
				require.NoError(t, err)
				b, err := c.Hash([]byte("same bytes"))
				require.NoError(t, err)
				other, err := c.Hash([]byte("other bytes"))
				require.NoError(t, err)
				assert.Equal(t, a, b)
				assert.NotEqual(t, a, other)

				id, err := cid.Decode(a)
				require.NoError(t, err)
				assert.Equal(t, uint64(cid.Raw), id.Type())
				assert.Equal(t, multihash.Names[alg], id.Prefix().MhType)
			},
		)
	}
}

func TestContentAddresserRejectsUnknownAlgorithm(t *testing.T) {
	_, err := NewContentAddresser(storage.NewMemoryContentStore(), "md5", 0)
	assert.Error(t, err)
}

func TestContentStoreAndFetch(t *testing.T) {
	ctx := context.Background()
	c, err := NewContentAddresser(storage.NewMemoryContentStore(), "", 16)
	require.NoError(t, err)

	hash, err := c.Store(ctx, []byte("certificate pdf"))
	require.NoError(t, err)
	again, err := c.Store(ctx, []byte("certificate pdf"))
	require.NoError(t, err)
	assert.Equal(t, hash, again)

	data, err := c.Fetch(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, "certificate pdf", string(data))

	_, err = c.Store(ctx, nil)
	require.ErrorIs(t, err, ErrEmptyDocument)
	_, err = c.Store(ctx, []byte("seventeen bytes!!"))
	require.ErrorIs(t, err, ErrDocumentTooLarge)

	missing, err := c.Hash([]byte("never stored"))
	require.NoError(t, err)
	_, err = c.Fetch(ctx, missing)
	require.ErrorIs(t, err, ErrContentNotFound)
	_, err = c.Fetch(ctx, "not-a-hash")
	require.ErrorIs(t, err, ErrInvalidContentHash)
}

type tamperingStore struct {
	*storage.MemoryContentStore
}

func (s tamperingStore) Get(ctx context.Context, hash string) ([]byte, error) {
	data, err := s.MemoryContentStore.Get(ctx, hash)
	if err != nil {
		return nil, err
	}
	return append(data, '!'), nil
}

func TestContentFetchIntegrity(t *testing.T) {
	ctx := context.Background()
	c, err := NewContentAddresser(tamperingStore{storage.NewMemoryContentStore()}, "", 0)
	require.NoError(t, err)
	hash, err := c.Store(ctx, []byte("document"))
	require.NoError(t, err)
	_, err = c.Fetch(ctx, hash)
	require.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestContentStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	c, err := NewContentAddresser(failingContentStore{}, "", 0)
	require.NoError(t, err)
	_, err = c.Store(ctx, []byte("document"))
	require.ErrorIs(t, err, ErrStorageUnavailable)

	hash, err := c.Hash([]byte("document"))
	require.NoError(t, err)
	_, err = c.Fetch(ctx, hash)
	require.ErrorIs(t, err, ErrStorageUnavailable)
	assert.NotErrorIs(t, err, ErrContentNotFound)
}
