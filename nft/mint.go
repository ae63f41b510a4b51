package nft

import (
	"fmt"

	"github.com/gofrs/uuid"
)

type MintRequest struct {
	Registry uuid.UUID
	Id       AssetId
	Info     []byte
}

// Mint creates a new asset for owner. The id comes from req.Id when the
// registry uses explicit ids, otherwise it is the hash of req.Info.
func (reg *Registry) Mint(caller, owner string, req MintRequest) (AssetKey, error) {
	return reg.mint(caller, owner, req, "")
}

func (reg *Registry) mint(caller, owner string, req MintRequest, trace string) (AssetKey, error) {
	reg.Lock()
	defer reg.Unlock()

	done, err := reg.applied(trace)
	if err != nil || done != nil {
		return receiptKey(done), err
	}

	if len(reg.minters) > 0 && !reg.minters[caller] {
		return AssetKey{}, fmt.Errorf("%w: %s can not mint", ErrNotAuthorized, caller)
	}
	key, err := reg.buildMintKey(owner, req)
	if err != nil {
		return AssetKey{}, err
	}

	st := reg.state
	if st.total().Cmp(reg.options.AssetLimit) >= 0 {
		return AssetKey{}, &CapacityError{Scope: CapacityGlobal, Limit: reg.options.AssetLimit.String()}
	}
	if st.countFor(owner) >= reg.options.UserAssetLimit {
		return AssetKey{}, &CapacityError{Scope: CapacityPerOwner, Limit: fmt.Sprint(reg.options.UserAssetLimit)}
	}
	if st.exists(key) {
		return AssetKey{}, fmt.Errorf("%w: %s", ErrDuplicateAsset, key)
	}

	counters := st.counters
	counters.Minted = counters.Minted.increase()
	counters.Sequence++
	rec := &Record{
		Key:      key,
		Owner:    owner,
		Info:     cloneBytes(req.Info),
		Sequence: counters.Sequence,
	}
	err = reg.store.WriteMint(rec.clone(), counters, newReceipt(trace, key))
	if err != nil {
		return AssetKey{}, fmt.Errorf("store mint %s: %w", key, err)
	}
	st.mint(rec, counters)
	return key, nil
}

func (reg *Registry) buildMintKey(owner string, req MintRequest) (AssetKey, error) {
	if owner == "" {
		return AssetKey{}, fmt.Errorf("%w: empty owner", ErrInvalidRequest)
	}
	key := reg.scope(AssetKey{Registry: req.Registry, Id: req.Id})
	switch {
	case reg.options.ExplicitIds && !req.Id.HasValue():
		return AssetKey{}, fmt.Errorf("%w: asset id required", ErrInvalidRequest)
	case !reg.options.ExplicitIds && req.Id.HasValue():
		return AssetKey{}, fmt.Errorf("%w: asset id derived from info", ErrInvalidRequest)
	case !reg.options.ExplicitIds:
		key.Id = NewAssetId(req.Info)
	}
	return key, nil
}
