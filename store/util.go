package store

import (
	"encoding/binary"
	"time"
)

func tsToBytes(ts time.Time) []byte {
	return uint64ToBytes(uint64(ts.UnixNano()))
}

func uint64ToBytes(n uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, n)
	return buf
}
