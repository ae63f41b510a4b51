package store

import (
	"context"
	"errors"
	"time"

	"github.com/MixinNetwork/mixin/logger"
	"github.com/MixinNetwork/unique/host"
	"github.com/dgraph-io/badger/v3"
)

// Options tune the value log garbage collection of the store. A GC round
// runs every GCInterval once either the LSM tree or the value log has
// outgrown its threshold.
type Options struct {
	GCInterval    time.Duration
	LSMThreshold  int64
	VLogThreshold int64
	DiscardRatio  float64
}

func OptionsFromConfiguration(conf *host.Configuration) Options {
	sc := conf.Store
	return Options{
		GCInterval:    conf.GCInterval(),
		LSMThreshold:  sc.GCLSMThreshold,
		VLogThreshold: sc.GCVLogThreshold,
		DiscardRatio:  sc.GCDiscardRatio,
	}
}

func DefaultOptions() Options {
	return Options{
		GCInterval:    host.DefaultGCInterval,
		LSMThreshold:  host.DefaultGCLSMThreshold,
		VLogThreshold: host.DefaultGCVLogThreshold,
		DiscardRatio:  host.DefaultGCDiscardRatio,
	}
}

type BadgerStore struct {
	db   *badger.DB
	opts Options
}

// OpenBadger opens the store at path. The GC loop stops with ctx.
func OpenBadger(ctx context.Context, path string, opts Options) (*BadgerStore, error) {
	bopts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, err
	}
	bs := &BadgerStore{db: db, opts: opts}
	if opts.GCInterval > 0 {
		go bs.loopGC(ctx)
	}
	return bs, nil
}

func (bs *BadgerStore) Close() error {
	return bs.db.Close()
}

func (bs *BadgerStore) Badger() *badger.DB {
	return bs.db
}

func (bs *BadgerStore) loopGC(ctx context.Context) {
	ticker := time.NewTicker(bs.opts.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		err := bs.collectGarbage()
		if err != nil {
			logger.Printf("Badger RunValueLogGC %v\n", err)
		}
	}
}

// collectGarbage runs one value log GC round when the store has grown
// past a threshold. A round with nothing to rewrite is not an error.
func (bs *BadgerStore) collectGarbage() error {
	lsm, vlog := bs.db.Size()
	logger.Verbosef("Badger LSM %d VLOG %d\n", lsm, vlog)
	if lsm <= bs.opts.LSMThreshold && vlog <= bs.opts.VLogThreshold {
		return nil
	}
	err := bs.db.RunValueLogGC(bs.opts.DiscardRatio)
	if errors.Is(err, badger.ErrNoRewrite) {
		return nil
	}
	return err
}

// update runs fn in a read-write transaction, and runs it again when a
// concurrent transaction committed a key fn has read.
func (bs *BadgerStore) update(fn func(txn *badger.Txn) error) error {
	for {
		err := bs.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
}

func (bs *BadgerStore) WriteProperty(key, val []byte) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	})
}

func (bs *BadgerStore) ReadProperty(key []byte) ([]byte, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}
