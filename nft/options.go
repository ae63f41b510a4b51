package nft

import (
	"fmt"

	"github.com/MixinNetwork/unique/host"
)

// Options are fixed for the lifetime of a registry.
type Options struct {
	AssetLimit     Count
	UserAssetLimit uint64

	// OwnerOnly requires the caller of transfer and burn to own the asset.
	OwnerOnly bool
	// Minters restricts minting to these callers, any caller may mint
	// to any owner when empty.
	Minters []string
	// Scoped enables multi-registry addressing, otherwise every key is
	// normalized to the nil registry.
	Scoped bool
	// ExplicitIds makes callers supply the asset id at mint, otherwise
	// the id is derived from the asset info.
	ExplicitIds bool
}

func OptionsFromConfiguration(conf *host.Configuration) (Options, error) {
	rc := conf.Registry
	opts := Options{
		AssetLimit:     NewCount(rc.AssetLimit),
		UserAssetLimit: rc.UserAssetLimit,
		OwnerOnly:      rc.OwnerOnly,
		Minters:        rc.Minters,
		Scoped:         rc.Scoped,
		ExplicitIds:    rc.ExplicitIds,
	}
	if rc.AssetLimitString != "" {
		limit, err := CountFromString(rc.AssetLimitString)
		if err != nil {
			return Options{}, err
		}
		opts.AssetLimit = limit
	}
	for _, m := range opts.Minters {
		if m == "" {
			return Options{}, fmt.Errorf("invalid minter %q", m)
		}
	}
	return opts, nil
}
