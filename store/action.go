package store

import (
	"github.com/MixinNetwork/mixin/common"
	"github.com/MixinNetwork/unique/host"
	"github.com/dgraph-io/badger/v3"
)

const (
	prefixActionPayload = "ACTION:PAYLOAD:"
	prefixActionState   = "ACTION:STATE:"
)

var _ host.Store = (*BadgerStore)(nil)

func (bs *BadgerStore) WriteAction(act *host.Action) error {
	return bs.update(func(txn *badger.Txn) error {
		old, err := bs.readAction(txn, act.TraceId)
		if err != nil {
			return err
		}
		if old != nil && old.State > act.State {
			panic(act.TraceId)
		}
		return bs.writeAction(txn, act, old)
	})
}

// WriteActionIfAbsent stores act unless an action with the same trace id
// exists, in which case the stored one is returned and act is not written.
func (bs *BadgerStore) WriteActionIfAbsent(act *host.Action) (*host.Action, error) {
	var old *host.Action
	err := bs.update(func(txn *badger.Txn) error {
		o, err := bs.readAction(txn, act.TraceId)
		old = o
		if err != nil || o != nil {
			return err
		}
		return bs.writeAction(txn, act, nil)
	})
	if err != nil {
		return nil, err
	}
	return old, nil
}

func (bs *BadgerStore) ReadAction(traceId string) (*host.Action, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	return bs.readAction(txn, traceId)
}

// ListActions lists actions in state ordered by creation time.
func (bs *BadgerStore) ListActions(state int, limit int) ([]*host.Action, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte(actionStatePrefix(state))
	it := txn.NewIterator(opts)
	defer it.Close()

	var acts []*host.Action
	for it.Seek(opts.Prefix); it.Valid(); it.Next() {
		key := it.Item().Key()
		id := string(key[len(opts.Prefix)+8:])
		act, err := bs.readAction(txn, id)
		if err != nil {
			return nil, err
		}
		acts = append(acts, act)
		if len(acts) == limit {
			break
		}
	}
	return acts, nil
}

func (bs *BadgerStore) writeAction(txn *badger.Txn, act, old *host.Action) error {
	if old != nil {
		err := txn.Delete(buildActionTimedKey(old))
		if err != nil {
			return err
		}
	}
	key := []byte(prefixActionPayload + act.TraceId)
	val := common.MsgpackMarshalPanic(act)
	err := txn.Set(key, val)
	if err != nil {
		return err
	}
	return txn.Set(buildActionTimedKey(act), []byte{1})
}

func (bs *BadgerStore) readAction(txn *badger.Txn, id string) (*host.Action, error) {
	key := []byte(prefixActionPayload + id)
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	var act host.Action
	err = common.MsgpackUnmarshal(val, &act)
	return &act, err
}

func buildActionTimedKey(act *host.Action) []byte {
	buf := tsToBytes(act.CreatedAt)
	prefix := actionStatePrefix(act.State)
	key := append([]byte(prefix), buf...)
	return append(key, []byte(act.TraceId)...)
}

func actionStatePrefix(state int) string {
	prefix := prefixActionState
	switch state {
	case host.ActionStateInitial:
		return prefix + "initial"
	case host.ActionStateDone:
		return prefix + "doneeee"
	}
	panic(state)
}
