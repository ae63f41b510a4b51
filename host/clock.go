package host

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"
)

const clockStorePropertyKey = "HOST:GROUP:CLOCK:MONOTONIC"

// Clock hands out strictly increasing timestamps and persists the last one,
// so actions keep their submit order across restarts.
type Clock struct {
	sync.Mutex
	store Store
	now   time.Time
}

func NewClock(store Store) (*Clock, error) {
	bs, err := store.ReadProperty([]byte(clockStorePropertyKey))
	if err != nil {
		return nil, err
	}
	var ts time.Time
	switch len(bs) {
	case 0:
	case 8:
		ts = time.Unix(0, int64(binary.BigEndian.Uint64(bs)))
	default:
		return nil, fmt.Errorf("invalid clock property %x", bs)
	}
	return &Clock{store: store, now: ts}, nil
}

func (c *Clock) Now() time.Time {
	c.Lock()
	defer c.Unlock()

	now := time.Now()
	if !now.After(c.now) {
		now = c.now.Add(time.Nanosecond)
	}
	c.now = now

	val := binary.BigEndian.AppendUint64(nil, uint64(c.now.UnixNano()))
	for {
		err := c.store.WriteProperty([]byte(clockStorePropertyKey), val)
		if err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	return c.now
}
