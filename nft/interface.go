package nft

// Nft is the identity of a unique asset: an id and the info fixed at mint.
type Nft interface {
	AssetKey() AssetKey
	AssetInfo() []byte
}

// Cappable exposes the fixed capacity limits of a registry.
type Cappable interface {
	AssetLimit() Count
	UserAssetLimit() uint64
}

// Unique resolves and changes the ownership of assets.
type Unique interface {
	Total() Count
	TotalForAccount(account string) uint64
	AssetsForAccount(account string) []*Asset
	OwnerOf(key AssetKey) (string, bool)
	Transfer(caller, dest string, key AssetKey) error
}

// Mintable creates new assets.
type Mintable interface {
	Mint(caller, owner string, req MintRequest) (AssetKey, error)
}

// Burnable destroys assets and counts the destroyed ones.
type Burnable interface {
	Burn(caller string, key AssetKey) error
	Burned() Count
}

type Counters struct {
	Minted   Count
	Burned   Count
	Sequence uint64
}

// Receipt marks a traced mutation as applied. It is written together with
// the mutation, so replaying the trace returns the original outcome.
type Receipt struct {
	Trace string
	Key   AssetKey
}

// Store persists the registry state. Every Write call is one atomic unit
// covering the asset record, the owner index, the burned set, the counters
// and the receipt when it is not nil. The registry validates every write
// before calling the store.
type Store interface {
	ReadCounters() (Counters, error)
	ListAssets() ([]*Record, error)
	ListAccountAssets(account string) ([]*Record, error)
	ListBurnedAssets() ([]AssetKey, error)
	ReadReceipt(trace string) (*Receipt, error)

	WriteMint(rec *Record, counters Counters, receipt *Receipt) error
	WriteTransfer(rec *Record, from string, counters Counters, receipt *Receipt) error
	WriteBurn(rec *Record, counters Counters, receipt *Receipt) error
}
