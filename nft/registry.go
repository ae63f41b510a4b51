package nft

import (
	"fmt"
	"sync"

	"github.com/gofrs/uuid"
)

// Registry is the unique asset registry. All mutations are serialized by
// one lock over the whole state, queries share the read lock and always see
// every index and counter at the same version.
type Registry struct {
	sync.RWMutex
	options Options
	minters map[string]bool
	store   Store
	state   *state
}

var (
	_ Nft      = (*Asset)(nil)
	_ Cappable = (*Registry)(nil)
	_ Unique   = (*Registry)(nil)
	_ Mintable = (*Registry)(nil)
	_ Burnable = (*Registry)(nil)
)

// NewRegistry loads the state persisted in store and verifies it against
// opts before serving any operation.
func NewRegistry(store Store, opts Options) (*Registry, error) {
	reg := &Registry{
		options: opts,
		minters: make(map[string]bool),
		store:   store,
		state:   newState(),
	}
	for _, m := range opts.Minters {
		reg.minters[m] = true
	}
	err := reg.load()
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func (reg *Registry) load() error {
	counters, err := reg.store.ReadCounters()
	if err != nil {
		return err
	}
	reg.state.counters = counters

	recs, err := reg.store.ListAssets()
	if err != nil {
		return err
	}
	for _, r := range recs {
		if _, found := reg.state.owners[r.Key]; found {
			return fmt.Errorf("duplicate asset record %s", r.Key)
		}
		if !reg.options.Scoped && r.Key.Registry != uuid.Nil {
			return fmt.Errorf("scoped asset %s in unscoped registry", r.Key)
		}
		reg.state.assign(r)
	}

	burned, err := reg.store.ListBurnedAssets()
	if err != nil {
		return err
	}
	for _, k := range burned {
		reg.state.burned[k] = struct{}{}
	}

	for account := range reg.state.accounts {
		indexed, err := reg.store.ListAccountAssets(account)
		if err != nil {
			return err
		}
		expected := reg.state.recordsFor(account)
		if len(indexed) != len(expected) {
			return fmt.Errorf("account %s index holds %d assets, expected %d", account, len(indexed), len(expected))
		}
		for i, r := range indexed {
			if r.Key != expected[i].Key {
				return fmt.Errorf("account %s index out of order at %s", account, r.Key)
			}
		}
	}
	return reg.state.verify(reg.options)
}

func (reg *Registry) Options() Options {
	return reg.options
}

func (reg *Registry) AssetLimit() Count {
	return reg.options.AssetLimit
}

func (reg *Registry) UserAssetLimit() uint64 {
	return reg.options.UserAssetLimit
}

func (reg *Registry) Total() Count {
	reg.RLock()
	defer reg.RUnlock()

	return reg.state.total()
}

func (reg *Registry) Minted() Count {
	reg.RLock()
	defer reg.RUnlock()

	return reg.state.counters.Minted
}

func (reg *Registry) Burned() Count {
	reg.RLock()
	defer reg.RUnlock()

	return reg.state.counters.Burned
}

func (reg *Registry) TotalForAccount(account string) uint64 {
	reg.RLock()
	defer reg.RUnlock()

	return reg.state.countFor(account)
}

// AssetsForAccount lists the assets of account in the order it received them.
func (reg *Registry) AssetsForAccount(account string) []*Asset {
	reg.RLock()
	defer reg.RUnlock()

	recs := reg.state.recordsFor(account)
	assets := make([]*Asset, len(recs))
	for i, r := range recs {
		assets[i] = r.Asset()
	}
	return assets
}

func (reg *Registry) OwnerOf(key AssetKey) (string, bool) {
	reg.RLock()
	defer reg.RUnlock()

	h := reg.state.owners[reg.scope(key)]
	if h == nil {
		return "", false
	}
	return h.owner, true
}

func (reg *Registry) Asset(key AssetKey) (*Asset, bool) {
	reg.RLock()
	defer reg.RUnlock()

	r := reg.state.record(reg.scope(key))
	if r == nil {
		return nil, false
	}
	return r.Asset(), true
}

// Lookup returns the asset and its owner from the same state version.
func (reg *Registry) Lookup(key AssetKey) (*Asset, string, bool) {
	reg.RLock()
	defer reg.RUnlock()

	r := reg.state.record(reg.scope(key))
	if r == nil {
		return nil, "", false
	}
	return r.Asset(), r.Owner, true
}

// Verify checks every registry invariant against the current state.
func (reg *Registry) Verify() error {
	reg.RLock()
	defer reg.RUnlock()

	return reg.state.verify(reg.options)
}

func (reg *Registry) scope(key AssetKey) AssetKey {
	if !reg.options.Scoped {
		key.Registry = uuid.Nil
	}
	return key
}

// applied returns the receipt of trace when the mutation was already
// committed. Untraced calls are never replays.
func (reg *Registry) applied(trace string) (*Receipt, error) {
	if trace == "" {
		return nil, nil
	}
	r, err := reg.store.ReadReceipt(trace)
	if err != nil {
		return nil, fmt.Errorf("store receipt %s: %w", trace, err)
	}
	return r, nil
}

func newReceipt(trace string, key AssetKey) *Receipt {
	if trace == "" {
		return nil
	}
	return &Receipt{Trace: trace, Key: key}
}

func receiptKey(r *Receipt) AssetKey {
	if r == nil {
		return AssetKey{}
	}
	return r.Key
}
