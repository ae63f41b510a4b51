package store

import (
	"fmt"

	"github.com/MixinNetwork/mixin/common"
	"github.com/MixinNetwork/mixin/crypto"
	"github.com/MixinNetwork/unique/nft"
	"github.com/dgraph-io/badger/v3"
)

// Registry state
//
//	REGISTRY:ASSET:<registry><id> => (owner, info, sequence)
//	REGISTRY:ACCOUNT:<hash(owner)><sequence><registry><id> => 1
//	REGISTRY:BURNED:<registry><id> => 1
//	REGISTRY:RECEIPT:<trace> => <registry><id>
//	REGISTRY:COUNTERS => (minted, burned, sequence)
const (
	prefixRegistryAsset   = "REGISTRY:ASSET:"
	prefixRegistryAccount = "REGISTRY:ACCOUNT:"
	prefixRegistryBurned  = "REGISTRY:BURNED:"
	prefixRegistryReceipt = "REGISTRY:RECEIPT:"
	registryCountersKey   = "REGISTRY:COUNTERS"
)

var _ nft.Store = (*BadgerStore)(nil)

type assetPayload struct {
	Owner    string
	Info     []byte
	Sequence uint64
}

type countersPayload struct {
	Minted   []byte
	Burned   []byte
	Sequence uint64
}

func (bs *BadgerStore) ReadCounters() (nft.Counters, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	item, err := txn.Get([]byte(registryCountersKey))
	if err == badger.ErrKeyNotFound {
		return nft.Counters{}, nil
	} else if err != nil {
		return nft.Counters{}, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nft.Counters{}, err
	}
	var cp countersPayload
	err = common.MsgpackUnmarshal(val, &cp)
	if err != nil {
		return nft.Counters{}, err
	}
	minted, err := nft.CountFromBytes(cp.Minted)
	if err != nil {
		return nft.Counters{}, err
	}
	burned, err := nft.CountFromBytes(cp.Burned)
	if err != nil {
		return nft.Counters{}, err
	}
	return nft.Counters{Minted: minted, Burned: burned, Sequence: cp.Sequence}, nil
}

func (bs *BadgerStore) ListAssets() ([]*nft.Record, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefixRegistryAsset)
	it := txn.NewIterator(opts)
	defer it.Close()

	var recs []*nft.Record
	for it.Seek(opts.Prefix); it.Valid(); it.Next() {
		item := it.Item()
		key, err := nft.AssetKeyFromBytes(item.Key()[len(opts.Prefix):])
		if err != nil {
			return nil, err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		rec, err := decodeAssetRecord(key, val)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (bs *BadgerStore) ListAccountAssets(account string) ([]*nft.Record, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = accountPrefix(account)
	it := txn.NewIterator(opts)
	defer it.Close()

	var recs []*nft.Record
	for it.Seek(opts.Prefix); it.Valid(); it.Next() {
		ik := it.Item().Key()
		key, err := nft.AssetKeyFromBytes(ik[len(opts.Prefix)+8:])
		if err != nil {
			return nil, err
		}
		rec, err := bs.readAsset(txn, key)
		if err != nil {
			return nil, err
		}
		if rec == nil || rec.Owner != account {
			return nil, fmt.Errorf("account %s index points to %s not owned", account, key)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (bs *BadgerStore) ListBurnedAssets() ([]nft.AssetKey, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte(prefixRegistryBurned)
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys []nft.AssetKey
	for it.Seek(opts.Prefix); it.Valid(); it.Next() {
		key, err := nft.AssetKeyFromBytes(it.Item().Key()[len(opts.Prefix):])
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (bs *BadgerStore) ReadAsset(key nft.AssetKey) (*nft.Record, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	return bs.readAsset(txn, key)
}

func (bs *BadgerStore) ReadReceipt(trace string) (*nft.Receipt, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	item, err := txn.Get([]byte(prefixRegistryReceipt + trace))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	key, err := nft.AssetKeyFromBytes(val)
	if err != nil {
		return nil, err
	}
	return &nft.Receipt{Trace: trace, Key: key}, nil
}

func (bs *BadgerStore) WriteMint(rec *nft.Record, counters nft.Counters, receipt *nft.Receipt) error {
	return bs.update(func(txn *badger.Txn) error {
		old, err := bs.readAsset(txn, rec.Key)
		if err != nil {
			return err
		} else if old != nil {
			panic(rec.Key.String())
		}
		burned, err := bs.hasBurned(txn, rec.Key)
		if err != nil {
			return err
		} else if burned {
			panic(rec.Key.String())
		}

		err = bs.writeAsset(txn, rec)
		if err != nil {
			return err
		}
		err = bs.writeCounters(txn, counters)
		if err != nil {
			return err
		}
		return bs.writeReceipt(txn, receipt)
	})
}

func (bs *BadgerStore) WriteTransfer(rec *nft.Record, from string, counters nft.Counters, receipt *nft.Receipt) error {
	return bs.update(func(txn *badger.Txn) error {
		old, err := bs.readAsset(txn, rec.Key)
		if err != nil {
			return err
		} else if old == nil {
			return fmt.Errorf("transfer of missing asset %s", rec.Key)
		} else if old.Owner != from {
			panic(old.Owner)
		}

		err = txn.Delete(buildAccountAssetKey(old))
		if err != nil {
			return err
		}
		err = bs.writeAsset(txn, rec)
		if err != nil {
			return err
		}
		err = bs.writeCounters(txn, counters)
		if err != nil {
			return err
		}
		return bs.writeReceipt(txn, receipt)
	})
}

func (bs *BadgerStore) WriteBurn(rec *nft.Record, counters nft.Counters, receipt *nft.Receipt) error {
	return bs.update(func(txn *badger.Txn) error {
		old, err := bs.readAsset(txn, rec.Key)
		if err != nil {
			return err
		} else if old == nil {
			return fmt.Errorf("burn of missing asset %s", rec.Key)
		}

		err = txn.Delete(buildAccountAssetKey(old))
		if err != nil {
			return err
		}
		err = txn.Delete(append([]byte(prefixRegistryAsset), rec.Key.Bytes()...))
		if err != nil {
			return err
		}
		key := append([]byte(prefixRegistryBurned), rec.Key.Bytes()...)
		err = txn.Set(key, []byte{1})
		if err != nil {
			return err
		}
		err = bs.writeCounters(txn, counters)
		if err != nil {
			return err
		}
		return bs.writeReceipt(txn, receipt)
	})
}

func (bs *BadgerStore) writeAsset(txn *badger.Txn, rec *nft.Record) error {
	key := append([]byte(prefixRegistryAsset), rec.Key.Bytes()...)
	val := common.MsgpackMarshalPanic(&assetPayload{
		Owner:    rec.Owner,
		Info:     rec.Info,
		Sequence: rec.Sequence,
	})
	err := txn.Set(key, val)
	if err != nil {
		return err
	}
	return txn.Set(buildAccountAssetKey(rec), []byte{1})
}

func (bs *BadgerStore) writeCounters(txn *badger.Txn, counters nft.Counters) error {
	val := common.MsgpackMarshalPanic(&countersPayload{
		Minted:   counters.Minted.Bytes(),
		Burned:   counters.Burned.Bytes(),
		Sequence: counters.Sequence,
	})
	return txn.Set([]byte(registryCountersKey), val)
}

func (bs *BadgerStore) writeReceipt(txn *badger.Txn, receipt *nft.Receipt) error {
	if receipt == nil {
		return nil
	}
	key := []byte(prefixRegistryReceipt + receipt.Trace)
	_, err := txn.Get(key)
	if err == nil {
		panic(receipt.Trace)
	} else if err != badger.ErrKeyNotFound {
		return err
	}
	return txn.Set(key, receipt.Key.Bytes())
}

func (bs *BadgerStore) readAsset(txn *badger.Txn, key nft.AssetKey) (*nft.Record, error) {
	item, err := txn.Get(append([]byte(prefixRegistryAsset), key.Bytes()...))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	return decodeAssetRecord(key, val)
}

func (bs *BadgerStore) hasBurned(txn *badger.Txn, key nft.AssetKey) (bool, error) {
	_, err := txn.Get(append([]byte(prefixRegistryBurned), key.Bytes()...))
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	return err == nil, err
}

func decodeAssetRecord(key nft.AssetKey, val []byte) (*nft.Record, error) {
	var ap assetPayload
	err := common.MsgpackUnmarshal(val, &ap)
	if err != nil {
		return nil, err
	}
	return &nft.Record{
		Key:      key,
		Owner:    ap.Owner,
		Info:     ap.Info,
		Sequence: ap.Sequence,
	}, nil
}

func accountPrefix(account string) []byte {
	h := crypto.NewHash([]byte(account))
	return append([]byte(prefixRegistryAccount), h[:]...)
}

func buildAccountAssetKey(rec *nft.Record) []byte {
	key := accountPrefix(rec.Owner)
	key = append(key, uint64ToBytes(rec.Sequence)...)
	return append(key, rec.Key.Bytes()...)
}
