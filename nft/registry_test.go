package nft

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T, opts Options) (*Registry, *MemoryStore) {
	t.Helper()
	ms := NewMemoryStore()
	reg, err := NewRegistry(ms, opts)
	require.NoError(t, err)
	return reg, ms
}

func infoKey(info string) AssetKey {
	return AssetKey{Id: NewAssetId([]byte(info))}
}

func mintInfo(reg *Registry, caller, owner, info string) (AssetKey, error) {
	return reg.Mint(caller, owner, MintRequest{Info: []byte(info)})
}

func TestRegistryScenario(t *testing.T) {
	require := require.New(t)
	reg, _ := testRegistry(t, Options{AssetLimit: NewCount(2), UserAssetLimit: 1})

	x, err := mintInfo(reg, "A", "A", "X")
	require.NoError(err)
	require.Equal(infoKey("X"), x)

	_, err = mintInfo(reg, "A", "A", "Y")
	require.True(IsCapacity(err, CapacityPerOwner), err)

	y, err := mintInfo(reg, "B", "B", "Y")
	require.NoError(err)

	_, err = mintInfo(reg, "A", "A", "Z")
	require.True(IsCapacity(err, CapacityGlobal), err)

	err = reg.Transfer("A", "B", x)
	require.True(IsCapacity(err, CapacityPerOwner), err)
	owner, found := reg.OwnerOf(x)
	require.True(found)
	require.Equal("A", owner)

	err = reg.Burn("B", y)
	require.NoError(err)
	require.Equal("1", reg.Total().String())
	require.Equal("1", reg.Burned().String())

	err = reg.Transfer("A", "B", x)
	require.NoError(err)
	require.Equal("1", reg.Total().String())
	owner, _ = reg.OwnerOf(x)
	require.Equal("B", owner)
	require.Equal(uint64(0), reg.TotalForAccount("A"))
	require.Equal(uint64(1), reg.TotalForAccount("B"))
	require.NoError(reg.Verify())
}

func TestRegistryQueriesOnEmpty(t *testing.T) {
	reg, _ := testRegistry(t, Options{AssetLimit: NewCount(10), UserAssetLimit: 10})

	assert.True(t, reg.Total().IsZero())
	assert.True(t, reg.Burned().IsZero())
	assert.Equal(t, uint64(0), reg.TotalForAccount("nobody"))
	assert.Empty(t, reg.AssetsForAccount("nobody"))
	_, found := reg.OwnerOf(infoKey("missing"))
	assert.False(t, found)
	_, found = reg.Asset(infoKey("missing"))
	assert.False(t, found)
	assert.Equal(t, "10", reg.AssetLimit().String())
	assert.Equal(t, uint64(10), reg.UserAssetLimit())
}

func TestRegistryLookup(t *testing.T) {
	require := require.New(t)
	reg, _ := testRegistry(t, Options{AssetLimit: NewCount(10), UserAssetLimit: 10})

	x, err := mintInfo(reg, "A", "A", "X")
	require.NoError(err)
	a, owner, found := reg.Lookup(x)
	require.True(found)
	require.Equal("A", owner)
	require.Equal(x, a.Key)
	require.Equal([]byte("X"), a.Info)

	require.NoError(reg.Burn("A", x))
	a, owner, found = reg.Lookup(x)
	require.False(found)
	require.Nil(a)
	require.Empty(owner)
}

func TestRegistryLookupDuringMutations(t *testing.T) {
	reg, _ := testRegistry(t, Options{AssetLimit: NewCount(100), UserAssetLimit: 100})
	var keys []AssetKey
	for i := 0; i < 20; i++ {
		k, err := mintInfo(reg, "A", "A", fmt.Sprint(i))
		require.NoError(t, err)
		keys = append(keys, k)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i, k := range keys {
			if i%2 == 0 {
				_ = reg.Burn("A", k)
			} else {
				_ = reg.Transfer("A", "B", k)
			}
		}
	}()
	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
		}
		for _, k := range keys {
			a, owner, found := reg.Lookup(k)
			if found {
				require.NotEmpty(t, owner)
				require.Equal(t, k, a.Key)
			}
		}
	}
	require.Equal(t, "10", reg.Total().String())
	require.Len(t, reg.AssetsForAccount("B"), 10)
}

func TestRegistryMintCheckOrder(t *testing.T) {
	require := require.New(t)
	reg, _ := testRegistry(t, Options{
		AssetLimit:     NewCount(1),
		UserAssetLimit: 1,
		Minters:        []string{"minter"},
	})

	_, err := mintInfo(reg, "minter", "A", "X")
	require.NoError(err)

	// registry full, owner full and id taken: authorization comes first
	_, err = mintInfo(reg, "stranger", "A", "X")
	require.ErrorIs(err, ErrNotAuthorized)
	_, err = mintInfo(reg, "minter", "", "X")
	require.ErrorIs(err, ErrInvalidRequest)
	_, err = mintInfo(reg, "minter", "A", "X")
	require.True(IsCapacity(err, CapacityGlobal), err)

	reg, _ = testRegistry(t, Options{AssetLimit: NewCount(5), UserAssetLimit: 1})
	_, err = mintInfo(reg, "A", "A", "X")
	require.NoError(err)
	_, err = mintInfo(reg, "A", "A", "X")
	require.True(IsCapacity(err, CapacityPerOwner), err)
	_, err = mintInfo(reg, "B", "B", "X")
	require.ErrorIs(err, ErrDuplicateAsset)
	require.Equal("1", reg.Minted().String())
}

func TestRegistryMinters(t *testing.T) {
	reg, _ := testRegistry(t, Options{
		AssetLimit:     NewCount(10),
		UserAssetLimit: 10,
		Minters:        []string{"m1", "m2"},
	})

	_, err := mintInfo(reg, "m1", "A", "a")
	require.NoError(t, err)
	_, err = mintInfo(reg, "m2", "B", "b")
	require.NoError(t, err)
	_, err = mintInfo(reg, "A", "A", "c")
	require.ErrorIs(t, err, ErrNotAuthorized)
	assert.Equal(t, "2", reg.Total().String())

	open, _ := testRegistry(t, Options{AssetLimit: NewCount(10), UserAssetLimit: 10})
	_, err = mintInfo(open, "anyone", "someone-else", "a")
	require.NoError(t, err)
}

func TestRegistryOwnerOnly(t *testing.T) {
	require := require.New(t)
	reg, _ := testRegistry(t, Options{AssetLimit: NewCount(10), UserAssetLimit: 10, OwnerOnly: true})

	x, err := mintInfo(reg, "A", "A", "X")
	require.NoError(err)

	err = reg.Transfer("B", "B", x)
	require.ErrorIs(err, ErrNotAuthorized)
	err = reg.Burn("B", x)
	require.ErrorIs(err, ErrNotAuthorized)
	owner, _ := reg.OwnerOf(x)
	require.Equal("A", owner)

	err = reg.Transfer("A", "B", x)
	require.NoError(err)
	err = reg.Burn("A", x)
	require.ErrorIs(err, ErrNotAuthorized)
	err = reg.Burn("B", x)
	require.NoError(err)

	open, _ := testRegistry(t, Options{AssetLimit: NewCount(10), UserAssetLimit: 10})
	y, err := mintInfo(open, "A", "A", "Y")
	require.NoError(err)
	require.NoError(open.Transfer("C", "B", y))
	require.NoError(open.Burn("C", y))
}

func TestRegistryNotFound(t *testing.T) {
	reg, _ := testRegistry(t, Options{AssetLimit: NewCount(10), UserAssetLimit: 10, OwnerOnly: true})

	err := reg.Transfer("A", "B", infoKey("missing"))
	require.ErrorIs(t, err, ErrAssetNotFound)
	err = reg.Burn("A", infoKey("missing"))
	require.ErrorIs(t, err, ErrAssetNotFound)
	err = reg.Transfer("A", "", infoKey("missing"))
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRegistryBurnedIdsNeverReused(t *testing.T) {
	require := require.New(t)
	reg, _ := testRegistry(t, Options{AssetLimit: NewCount(10), UserAssetLimit: 10})

	x, err := mintInfo(reg, "A", "A", "X")
	require.NoError(err)
	require.NoError(reg.Burn("A", x))

	_, err = mintInfo(reg, "A", "A", "X")
	require.ErrorIs(err, ErrDuplicateAsset)
	err = reg.Burn("A", x)
	require.ErrorIs(err, ErrAssetNotFound)
	err = reg.Transfer("A", "B", x)
	require.ErrorIs(err, ErrAssetNotFound)

	require.True(reg.Total().IsZero())
	require.Equal("1", reg.Minted().String())
	require.Equal("1", reg.Burned().String())
}

func TestRegistryExplicitIds(t *testing.T) {
	require := require.New(t)
	reg, _ := testRegistry(t, Options{AssetLimit: NewCount(10), UserAssetLimit: 10, ExplicitIds: true})

	_, err := mintInfo(reg, "A", "A", "X")
	require.ErrorIs(err, ErrInvalidRequest)

	id := NewAssetId([]byte("token-1"))
	key, err := reg.Mint("A", "A", MintRequest{Id: id, Info: []byte("same")})
	require.NoError(err)
	require.Equal(id, key.Id)

	other := NewAssetId([]byte("token-2"))
	_, err = reg.Mint("A", "A", MintRequest{Id: other, Info: []byte("same")})
	require.NoError(err)
	_, err = reg.Mint("B", "B", MintRequest{Id: id, Info: []byte("different")})
	require.ErrorIs(err, ErrDuplicateAsset)

	derived, _ := testRegistry(t, Options{AssetLimit: NewCount(10), UserAssetLimit: 10})
	_, err = derived.Mint("A", "A", MintRequest{Id: id, Info: []byte("X")})
	require.ErrorIs(err, ErrInvalidRequest)
}

func TestRegistryScoped(t *testing.T) {
	require := require.New(t)
	r1 := uuid.Must(uuid.NewV4())
	r2 := uuid.Must(uuid.NewV4())

	reg, _ := testRegistry(t, Options{AssetLimit: NewCount(10), UserAssetLimit: 10, Scoped: true})
	k1, err := reg.Mint("A", "A", MintRequest{Registry: r1, Info: []byte("X")})
	require.NoError(err)
	k2, err := reg.Mint("B", "B", MintRequest{Registry: r2, Info: []byte("X")})
	require.NoError(err)
	require.Equal(k1.Id, k2.Id)
	require.NotEqual(k1, k2)

	owner, _ := reg.OwnerOf(k1)
	require.Equal("A", owner)
	owner, _ = reg.OwnerOf(k2)
	require.Equal("B", owner)
	_, found := reg.OwnerOf(AssetKey{Id: k1.Id})
	require.False(found)

	require.NoError(reg.Burn("A", k1))
	_, err = reg.Mint("A", "A", MintRequest{Registry: r1, Info: []byte("X")})
	require.ErrorIs(err, ErrDuplicateAsset)
	_, found = reg.OwnerOf(k2)
	require.True(found)

	unscoped, _ := testRegistry(t, Options{AssetLimit: NewCount(10), UserAssetLimit: 10})
	k3, err := unscoped.Mint("A", "A", MintRequest{Registry: r1, Info: []byte("X")})
	require.NoError(err)
	require.Equal(uuid.Nil, k3.Registry)
	owner, found = unscoped.OwnerOf(AssetKey{Registry: r2, Id: k3.Id})
	require.True(found)
	require.Equal("A", owner)
	_, err = unscoped.Mint("B", "B", MintRequest{Registry: r2, Info: []byte("X")})
	require.ErrorIs(err, ErrDuplicateAsset)
}

func TestRegistrySelfTransfer(t *testing.T) {
	require := require.New(t)
	reg, _ := testRegistry(t, Options{AssetLimit: NewCount(10), UserAssetLimit: 2})

	x, err := mintInfo(reg, "A", "A", "X")
	require.NoError(err)
	y, err := mintInfo(reg, "A", "A", "Y")
	require.NoError(err)

	// A is at its limit, moving an asset to itself is not a new acquisition
	require.NoError(reg.Transfer("A", "A", x))
	assets := reg.AssetsForAccount("A")
	require.Len(assets, 2)
	require.Equal(x, assets[0].Key)
	require.Equal(y, assets[1].Key)
}

func TestRegistryAssetsForAccountOrder(t *testing.T) {
	require := require.New(t)
	reg, _ := testRegistry(t, Options{AssetLimit: NewCount(10), UserAssetLimit: 10})

	x, _ := mintInfo(reg, "A", "A", "X")
	y, _ := mintInfo(reg, "B", "B", "Y")
	z, _ := mintInfo(reg, "A", "A", "Z")
	require.NoError(reg.Transfer("B", "A", y))
	require.NoError(reg.Transfer("A", "B", x))
	require.NoError(reg.Transfer("B", "A", x))

	assets := reg.AssetsForAccount("A")
	require.Len(assets, 3)
	require.Equal(z, assets[0].Key)
	require.Equal(y, assets[1].Key)
	require.Equal(x, assets[2].Key)
	require.Equal([]byte("X"), assets[2].Info)
	require.Empty(reg.AssetsForAccount("B"))

	// returned assets are copies
	assets[0].Info[0] = 'Q'
	a, found := reg.Asset(z)
	require.True(found)
	require.Equal([]byte("Z"), a.Info)
}

func TestRegistryReload(t *testing.T) {
	require := require.New(t)
	opts := Options{AssetLimit: NewCount(10), UserAssetLimit: 10}
	reg, ms := testRegistry(t, opts)

	x, _ := mintInfo(reg, "A", "A", "X")
	y, _ := mintInfo(reg, "A", "A", "Y")
	z, _ := mintInfo(reg, "B", "B", "Z")
	require.NoError(reg.Transfer("A", "B", x))
	require.NoError(reg.Burn("B", z))

	loaded, err := NewRegistry(ms, opts)
	require.NoError(err)
	require.Equal(reg.Total(), loaded.Total())
	require.Equal(reg.Minted(), loaded.Minted())
	require.Equal(reg.Burned(), loaded.Burned())
	require.Equal(reg.AssetsForAccount("A"), loaded.AssetsForAccount("A"))
	require.Equal(reg.AssetsForAccount("B"), loaded.AssetsForAccount("B"))
	owner, _ := loaded.OwnerOf(y)
	require.Equal("A", owner)

	_, err = mintInfo(loaded, "A", "A", "Z")
	require.ErrorIs(err, ErrDuplicateAsset)
	_, err = mintInfo(loaded, "C", "C", "W")
	require.NoError(err)
	require.NoError(loaded.Verify())
}

func TestRegistryRejectsOverLimitState(t *testing.T) {
	reg, ms := testRegistry(t, Options{AssetLimit: NewCount(10), UserAssetLimit: 10})
	for _, info := range []string{"a", "b", "c"} {
		_, err := mintInfo(reg, "A", "A", info)
		require.NoError(t, err)
	}

	_, err := NewRegistry(ms, Options{AssetLimit: NewCount(2), UserAssetLimit: 10})
	require.Error(t, err)
	_, err = NewRegistry(ms, Options{AssetLimit: NewCount(10), UserAssetLimit: 2})
	require.Error(t, err)
	_, err = NewRegistry(ms, Options{AssetLimit: NewCount(3), UserAssetLimit: 3})
	require.NoError(t, err)
}

func TestRegistryRejectsScopedStateWhenUnscoped(t *testing.T) {
	reg, ms := testRegistry(t, Options{AssetLimit: NewCount(10), UserAssetLimit: 10, Scoped: true})
	_, err := reg.Mint("A", "A", MintRequest{Registry: uuid.Must(uuid.NewV4()), Info: []byte("X")})
	require.NoError(t, err)

	_, err = NewRegistry(ms, Options{AssetLimit: NewCount(10), UserAssetLimit: 10})
	require.Error(t, err)
}

type failingStore struct {
	*MemoryStore
	fail bool
}

var errStoreDown = errors.New("store down")

func (fs *failingStore) WriteMint(rec *Record, counters Counters, receipt *Receipt) error {
	if fs.fail {
		return errStoreDown
	}
	return fs.MemoryStore.WriteMint(rec, counters, receipt)
}

func (fs *failingStore) WriteTransfer(rec *Record, from string, counters Counters, receipt *Receipt) error {
	if fs.fail {
		return errStoreDown
	}
	return fs.MemoryStore.WriteTransfer(rec, from, counters, receipt)
}

func (fs *failingStore) WriteBurn(rec *Record, counters Counters, receipt *Receipt) error {
	if fs.fail {
		return errStoreDown
	}
	return fs.MemoryStore.WriteBurn(rec, counters, receipt)
}

func TestRegistryStoreFailureLeavesStateUntouched(t *testing.T) {
	require := require.New(t)
	fs := &failingStore{MemoryStore: NewMemoryStore()}
	reg, err := NewRegistry(fs, Options{AssetLimit: NewCount(10), UserAssetLimit: 10})
	require.NoError(err)

	x, err := mintInfo(reg, "A", "A", "X")
	require.NoError(err)

	fs.fail = true
	_, err = mintInfo(reg, "A", "A", "Y")
	require.ErrorIs(err, errStoreDown)
	require.Equal(ErrorCodeInternal, ErrorCode(err))
	err = reg.Transfer("A", "B", x)
	require.ErrorIs(err, errStoreDown)
	err = reg.Burn("A", x)
	require.ErrorIs(err, errStoreDown)

	require.Equal("1", reg.Total().String())
	require.Equal("1", reg.Minted().String())
	require.True(reg.Burned().IsZero())
	owner, _ := reg.OwnerOf(x)
	require.Equal("A", owner)
	require.NoError(reg.Verify())

	fs.fail = false
	_, err = mintInfo(reg, "A", "A", "Y")
	require.NoError(err)
	loaded, err := NewRegistry(fs, reg.Options())
	require.NoError(err)
	require.Equal("2", loaded.Total().String())
}
