package nft

import (
	"fmt"
)

// Transfer moves the asset to dest. Transferring an asset to its current
// owner succeeds without any change.
func (reg *Registry) Transfer(caller, dest string, key AssetKey) error {
	return reg.transfer(caller, dest, key, "")
}

func (reg *Registry) transfer(caller, dest string, key AssetKey, trace string) error {
	reg.Lock()
	defer reg.Unlock()

	done, err := reg.applied(trace)
	if err != nil || done != nil {
		return err
	}

	if dest == "" {
		return fmt.Errorf("%w: empty destination", ErrInvalidRequest)
	}
	key = reg.scope(key)
	st := reg.state
	h := st.owners[key]
	if h == nil {
		return fmt.Errorf("%w: %s", ErrAssetNotFound, key)
	}
	if reg.options.OwnerOnly && caller != h.owner {
		return fmt.Errorf("%w: %s does not own %s", ErrNotAuthorized, caller, key)
	}
	if dest == h.owner {
		return nil
	}
	if st.countFor(dest) >= reg.options.UserAssetLimit {
		return &CapacityError{Scope: CapacityPerOwner, Limit: fmt.Sprint(reg.options.UserAssetLimit)}
	}

	counters := st.counters
	counters.Sequence++
	rec := &Record{
		Key:      key,
		Owner:    dest,
		Info:     h.info,
		Sequence: counters.Sequence,
	}
	err = reg.store.WriteTransfer(rec.clone(), h.owner, counters, newReceipt(trace, key))
	if err != nil {
		return fmt.Errorf("store transfer %s: %w", key, err)
	}
	st.transfer(rec, counters)
	return nil
}
