package nft

import (
	"bytes"
	"fmt"

	"github.com/MixinNetwork/mixin/crypto"
	"github.com/gofrs/uuid"
)

const assetKeySize = 16 + 32

// AssetId identifies a unique asset inside its registry scope.
type AssetId crypto.Hash

func NewAssetId(info []byte) AssetId {
	return AssetId(crypto.NewHash(info))
}

func AssetIdFromString(s string) (AssetId, error) {
	h, err := crypto.HashFromString(s)
	if err != nil {
		return AssetId{}, fmt.Errorf("invalid asset id %s: %w", s, err)
	}
	return AssetId(h), nil
}

func (id AssetId) String() string {
	return crypto.Hash(id).String()
}

func (id AssetId) HasValue() bool {
	return crypto.Hash(id).HasValue()
}

// AssetKey scopes an asset id to a registry. The registry is uuid.Nil
// unless the registry was built with Options.Scoped.
type AssetKey struct {
	Registry uuid.UUID
	Id       AssetId
}

func (k AssetKey) Bytes() []byte {
	buf := make([]byte, 0, assetKeySize)
	buf = append(buf, k.Registry.Bytes()...)
	return append(buf, k.Id[:]...)
}

func AssetKeyFromBytes(b []byte) (AssetKey, error) {
	if len(b) != assetKeySize {
		return AssetKey{}, fmt.Errorf("invalid asset key size %d", len(b))
	}
	rid, err := uuid.FromBytes(b[:16])
	if err != nil {
		return AssetKey{}, err
	}
	var k AssetKey
	k.Registry = rid
	copy(k.Id[:], b[16:])
	return k, nil
}

// ParseAssetKey parses the hex asset id and the optional registry uuid.
func ParseAssetKey(asset, registry string) (AssetKey, error) {
	var key AssetKey
	id, err := AssetIdFromString(asset)
	if err != nil {
		return key, err
	}
	key.Id = id
	if registry != "" {
		rid, err := uuid.FromString(registry)
		if err != nil {
			return key, fmt.Errorf("invalid registry %s: %w", registry, err)
		}
		key.Registry = rid
	}
	return key, nil
}

func (k AssetKey) String() string {
	if k.Registry == uuid.Nil {
		return k.Id.String()
	}
	return k.Registry.String() + ":" + k.Id.String()
}

func (k AssetKey) less(o AssetKey) bool {
	return bytes.Compare(k.Bytes(), o.Bytes()) < 0
}

// Asset is a live unique asset. Info is fixed when the asset is minted.
type Asset struct {
	Key  AssetKey
	Info []byte
}

func (a *Asset) AssetKey() AssetKey {
	return a.Key
}

func (a *Asset) AssetInfo() []byte {
	return a.Info
}

// Record is the persisted form of a live asset. Sequence orders the
// assets of one owner by the time the owner received them.
type Record struct {
	Key      AssetKey
	Owner    string
	Info     []byte
	Sequence uint64
}

func (r *Record) Asset() *Asset {
	return &Asset{Key: r.Key, Info: cloneBytes(r.Info)}
}

func (r *Record) clone() *Record {
	c := *r
	c.Info = cloneBytes(r.Info)
	return &c
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte{}, b...)
}
