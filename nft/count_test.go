package nft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const maxCount = "340282366920938463463374607431768211455"

func TestCountFromString(t *testing.T) {
	c, err := CountFromString(maxCount)
	require.NoError(t, err)
	assert.Equal(t, maxCount, c.String())
	assert.False(t, c.IsUint64())

	_, err = CountFromString("340282366920938463463374607431768211456")
	assert.Error(t, err)
	_, err = CountFromString("ten")
	assert.Error(t, err)
}

func TestCountIncreaseWraps(t *testing.T) {
	c, err := CountFromString(maxCount)
	require.NoError(t, err)
	assert.True(t, c.increase().IsZero())
	assert.Equal(t, "8", NewCount(7).increase().String())
}

func TestCountDiffSaturates(t *testing.T) {
	assert.Equal(t, "3", NewCount(5).diff(NewCount(2)).String())
	assert.True(t, NewCount(2).diff(NewCount(5)).IsZero())
	assert.True(t, NewCount(2).diff(NewCount(2)).IsZero())
}

func TestCountBytes(t *testing.T) {
	c, err := CountFromString(maxCount)
	require.NoError(t, err)
	b := c.Bytes()
	require.Len(t, b, 16)
	d, err := CountFromBytes(b)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Cmp(d))

	_, err = CountFromBytes(make([]byte, 8))
	assert.Error(t, err)
	assert.Equal(t, 1, NewCount(2).Cmp(NewCount(1)))
	assert.Equal(t, -1, Count{}.Cmp(NewCount(1)))
}

func TestRegistryBeyondUint64(t *testing.T) {
	limit, err := CountFromString(maxCount)
	require.NoError(t, err)
	reg, _ := testRegistry(t, Options{AssetLimit: limit, UserAssetLimit: 1})

	_, err = mintInfo(reg, "A", "A", "X")
	require.NoError(t, err)
	assert.Equal(t, maxCount, reg.AssetLimit().String())
	assert.Equal(t, "1", reg.Total().String())
}
