package nft

import (
	"fmt"

	"github.com/holiman/uint256"
)

var countMask = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))

// Count is an unsigned 128 bit counter. Increments wrap around at 2^128.
type Count struct {
	n uint256.Int
}

func NewCount(n uint64) Count {
	var c Count
	c.n.SetUint64(n)
	return c
}

func CountFromString(s string) (Count, error) {
	var c Count
	err := c.n.SetFromDecimal(s)
	if err != nil {
		return Count{}, fmt.Errorf("invalid count %s: %w", s, err)
	}
	if c.n.Gt(countMask) {
		return Count{}, fmt.Errorf("count %s overflows 128 bits", s)
	}
	return c, nil
}

// CountFromBytes decodes the 16 bytes big endian form produced by Bytes.
func CountFromBytes(b []byte) (Count, error) {
	if len(b) != 16 {
		return Count{}, fmt.Errorf("invalid count size %d", len(b))
	}
	var c Count
	c.n.SetBytes(b)
	return c, nil
}

func (c Count) Bytes() []byte {
	buf := c.n.Bytes32()
	return buf[16:]
}

func (c Count) Cmp(o Count) int {
	return c.n.Cmp(&o.n)
}

func (c Count) IsZero() bool {
	return c.n.IsZero()
}

func (c Count) IsUint64() bool {
	return c.n.IsUint64()
}

func (c Count) Uint64() uint64 {
	return c.n.Uint64()
}

func (c Count) String() string {
	return c.n.Dec()
}

func (c Count) increase() Count {
	var r Count
	r.n.AddUint64(&c.n, 1)
	r.n.And(&r.n, countMask)
	return r
}

// diff returns c - o, or zero when o is larger.
func (c Count) diff(o Count) Count {
	if c.Cmp(o) <= 0 {
		return Count{}
	}
	var r Count
	r.n.Sub(&c.n, &o.n)
	return r
}
