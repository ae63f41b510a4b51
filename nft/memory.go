package nft

import (
	"fmt"
	"sort"
	"sync"
)

// MemoryStore keeps the registry state in process memory.
type MemoryStore struct {
	sync.Mutex
	assets   map[AssetKey]*Record
	burned   map[AssetKey]bool
	receipts map[string]*Receipt
	counters Counters
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		assets:   make(map[AssetKey]*Record),
		burned:   make(map[AssetKey]bool),
		receipts: make(map[string]*Receipt),
	}
}

func (ms *MemoryStore) ReadCounters() (Counters, error) {
	ms.Lock()
	defer ms.Unlock()

	return ms.counters, nil
}

func (ms *MemoryStore) ListAssets() ([]*Record, error) {
	ms.Lock()
	defer ms.Unlock()

	recs := make([]*Record, 0, len(ms.assets))
	for _, r := range ms.assets {
		recs = append(recs, r.clone())
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].Sequence < recs[j].Sequence
	})
	return recs, nil
}

func (ms *MemoryStore) ListAccountAssets(account string) ([]*Record, error) {
	ms.Lock()
	defer ms.Unlock()

	var recs []*Record
	for _, r := range ms.assets {
		if r.Owner == account {
			recs = append(recs, r.clone())
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].Sequence < recs[j].Sequence
	})
	return recs, nil
}

func (ms *MemoryStore) ListBurnedAssets() ([]AssetKey, error) {
	ms.Lock()
	defer ms.Unlock()

	keys := make([]AssetKey, 0, len(ms.burned))
	for k := range ms.burned {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].less(keys[j])
	})
	return keys, nil
}

func (ms *MemoryStore) ReadReceipt(trace string) (*Receipt, error) {
	ms.Lock()
	defer ms.Unlock()

	r := ms.receipts[trace]
	if r == nil {
		return nil, nil
	}
	c := *r
	return &c, nil
}

func (ms *MemoryStore) WriteMint(rec *Record, counters Counters, receipt *Receipt) error {
	ms.Lock()
	defer ms.Unlock()

	if ms.assets[rec.Key] != nil || ms.burned[rec.Key] {
		panic(rec.Key.String())
	}
	ms.assets[rec.Key] = rec.clone()
	ms.counters = counters
	ms.writeReceipt(receipt)
	return nil
}

func (ms *MemoryStore) WriteTransfer(rec *Record, from string, counters Counters, receipt *Receipt) error {
	ms.Lock()
	defer ms.Unlock()

	old := ms.assets[rec.Key]
	if old == nil {
		return fmt.Errorf("transfer of missing asset %s", rec.Key)
	}
	if old.Owner != from {
		panic(old.Owner)
	}
	ms.assets[rec.Key] = rec.clone()
	ms.counters = counters
	ms.writeReceipt(receipt)
	return nil
}

func (ms *MemoryStore) WriteBurn(rec *Record, counters Counters, receipt *Receipt) error {
	ms.Lock()
	defer ms.Unlock()

	if ms.assets[rec.Key] == nil {
		return fmt.Errorf("burn of missing asset %s", rec.Key)
	}
	delete(ms.assets, rec.Key)
	ms.burned[rec.Key] = true
	ms.counters = counters
	ms.writeReceipt(receipt)
	return nil
}

func (ms *MemoryStore) writeReceipt(r *Receipt) {
	if r == nil {
		return
	}
	if ms.receipts[r.Trace] != nil {
		panic(r.Trace)
	}
	c := *r
	ms.receipts[r.Trace] = &c
}
