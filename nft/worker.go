package nft

import (
	"context"
	"fmt"

	"github.com/MixinNetwork/mixin/logger"
	"github.com/MixinNetwork/unique/host"
	"github.com/gofrs/uuid"
)

// RegistryWorker applies host actions to a registry. Mutations carry the
// action trace id, so an action replayed after a crash reports the outcome
// it had when first committed.
type RegistryWorker struct {
	registry *Registry
}

func NewRegistryWorker(registry *Registry) *RegistryWorker {
	return &RegistryWorker{registry: registry}
}

func (rw *RegistryWorker) ProcessAction(ctx context.Context, act *host.Action) {
	result, err := rw.apply(act)
	act.Result = result
	act.ErrorCode = ErrorCode(err)
	act.Error = ""
	if err != nil {
		act.Error = err.Error()
		logger.Verbosef("RegistryWorker.ProcessAction(%s, %s) => %v\n", act.TraceId, act.Operation, err)
	}
}

func (rw *RegistryWorker) apply(act *host.Action) (string, error) {
	registry := uuid.Nil
	if act.Registry != "" {
		rid, err := uuid.FromString(act.Registry)
		if err != nil {
			return "", fmt.Errorf("%w: registry %s", ErrInvalidRequest, act.Registry)
		}
		registry = rid
	}
	var id AssetId
	if act.AssetId != "" {
		aid, err := AssetIdFromString(act.AssetId)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		id = aid
	}
	key := AssetKey{Registry: registry, Id: id}

	switch act.Operation {
	case host.OperationMint:
		req := MintRequest{Registry: registry, Id: id, Info: act.Info}
		key, err := rw.registry.mint(act.Caller, act.Account, req, act.TraceId)
		if err != nil {
			return "", err
		}
		return key.Id.String(), nil
	case host.OperationTransfer:
		return "", rw.registry.transfer(act.Caller, act.Account, key, act.TraceId)
	case host.OperationBurn:
		return "", rw.registry.burn(act.Caller, key, act.TraceId)
	}
	return "", fmt.Errorf("%w: operation %s", ErrInvalidRequest, act.Operation)
}
