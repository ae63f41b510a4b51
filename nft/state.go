package nft

import (
	"fmt"
	"sort"
)

type holding struct {
	owner    string
	info     []byte
	sequence uint64
}

// state holds the primary owner map and the per account index derived
// from it. Both are only changed together by mint, transfer and burn.
type state struct {
	owners   map[AssetKey]*holding
	accounts map[string]map[AssetKey]uint64
	burned   map[AssetKey]struct{}
	counters Counters
}

func newState() *state {
	return &state{
		owners:   make(map[AssetKey]*holding),
		accounts: make(map[string]map[AssetKey]uint64),
		burned:   make(map[AssetKey]struct{}),
	}
}

func (s *state) total() Count {
	return s.counters.Minted.diff(s.counters.Burned)
}

func (s *state) countFor(account string) uint64 {
	return uint64(len(s.accounts[account]))
}

func (s *state) exists(key AssetKey) bool {
	if _, found := s.owners[key]; found {
		return true
	}
	_, found := s.burned[key]
	return found
}

func (s *state) record(key AssetKey) *Record {
	h := s.owners[key]
	if h == nil {
		return nil
	}
	return &Record{Key: key, Owner: h.owner, Info: h.info, Sequence: h.sequence}
}

func (s *state) recordsFor(account string) []*Record {
	keys := s.accounts[account]
	recs := make([]*Record, 0, len(keys))
	for k := range keys {
		recs = append(recs, s.record(k))
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].Sequence < recs[j].Sequence
	})
	return recs
}

func (s *state) assign(rec *Record) {
	s.owners[rec.Key] = &holding{owner: rec.Owner, info: rec.Info, sequence: rec.Sequence}
	set := s.accounts[rec.Owner]
	if set == nil {
		set = make(map[AssetKey]uint64)
		s.accounts[rec.Owner] = set
	}
	set[rec.Key] = rec.Sequence
}

func (s *state) unassign(key AssetKey) {
	h := s.owners[key]
	delete(s.owners, key)
	set := s.accounts[h.owner]
	delete(set, key)
	if len(set) == 0 {
		delete(s.accounts, h.owner)
	}
}

func (s *state) mint(rec *Record, counters Counters) {
	s.assign(rec)
	s.counters = counters
}

func (s *state) transfer(rec *Record, counters Counters) {
	s.unassign(rec.Key)
	s.assign(rec)
	s.counters = counters
}

func (s *state) burn(key AssetKey, counters Counters) {
	s.unassign(key)
	s.burned[key] = struct{}{}
	s.counters = counters
}

func (s *state) verify(opts Options) error {
	if n := NewCount(uint64(len(s.owners))); s.total().Cmp(n) != 0 {
		return fmt.Errorf("total %s does not match %d live assets", s.total(), len(s.owners))
	}
	if s.total().Cmp(opts.AssetLimit) > 0 {
		return fmt.Errorf("total %s exceeds asset limit %s", s.total(), opts.AssetLimit)
	}
	indexed := 0
	for account, set := range s.accounts {
		if uint64(len(set)) > opts.UserAssetLimit {
			return fmt.Errorf("account %s holds %d assets over limit %d", account, len(set), opts.UserAssetLimit)
		}
		for key, seq := range set {
			h := s.owners[key]
			if h == nil || h.owner != account || h.sequence != seq {
				return fmt.Errorf("account %s index out of sync at %s", account, key)
			}
			if seq > s.counters.Sequence {
				return fmt.Errorf("asset %s sequence %d ahead of %d", key, seq, s.counters.Sequence)
			}
		}
		indexed += len(set)
	}
	if indexed != len(s.owners) {
		return fmt.Errorf("account index holds %d assets, owners %d", indexed, len(s.owners))
	}
	for key := range s.burned {
		if _, found := s.owners[key]; found {
			return fmt.Errorf("burned asset %s is live", key)
		}
	}
	return nil
}
