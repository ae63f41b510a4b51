package nft

import (
	"fmt"
)

// Burn destroys the asset. Its id stays reserved forever.
func (reg *Registry) Burn(caller string, key AssetKey) error {
	return reg.burn(caller, key, "")
}

func (reg *Registry) burn(caller string, key AssetKey, trace string) error {
	reg.Lock()
	defer reg.Unlock()

	done, err := reg.applied(trace)
	if err != nil || done != nil {
		return err
	}

	key = reg.scope(key)
	st := reg.state
	rec := st.record(key)
	if rec == nil {
		return fmt.Errorf("%w: %s", ErrAssetNotFound, key)
	}
	if reg.options.OwnerOnly && caller != rec.Owner {
		return fmt.Errorf("%w: %s does not own %s", ErrNotAuthorized, caller, key)
	}

	counters := st.counters
	counters.Burned = counters.Burned.increase()
	err = reg.store.WriteBurn(rec.clone(), counters, newReceipt(trace, key))
	if err != nil {
		return fmt.Errorf("store burn %s: %w", key, err)
	}
	st.burn(key, counters)
	return nil
}
