package nft

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodes(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{nil, ""},
		{fmt.Errorf("%w: x", ErrAssetNotFound), ErrorCodeAssetNotFound},
		{fmt.Errorf("%w: x", ErrDuplicateAsset), ErrorCodeDuplicateAsset},
		{&CapacityError{Scope: CapacityGlobal, Limit: "2"}, ErrorCodeCapacityGlobal},
		{&CapacityError{Scope: CapacityPerOwner, Limit: "1"}, ErrorCodeCapacityPerOwner},
		{fmt.Errorf("%w: x", ErrNotAuthorized), ErrorCodeNotAuthorized},
		{fmt.Errorf("%w: x", ErrInvalidRequest), ErrorCodeInvalidRequest},
		{errors.New("disk full"), ErrorCodeInternal},
	}
	for _, c := range cases {
		assert.Equal(t, c.code, ErrorCode(c.err))
		back := ErrorFromCode(c.code, "x")
		assert.Equal(t, c.code, ErrorCode(back))
	}
}

func TestCapacityError(t *testing.T) {
	err := fmt.Errorf("mint: %w", &CapacityError{Scope: CapacityPerOwner, Limit: "1"})
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.True(t, IsCapacity(err, CapacityPerOwner))
	assert.False(t, IsCapacity(err, CapacityGlobal))
	assert.False(t, IsCapacity(ErrAssetNotFound, CapacityPerOwner))
	assert.Equal(t, "mint: capacity exceeded: per-owner limit 1", err.Error())
	assert.Equal(t, "capacity exceeded: global limit", ErrorFromCode(ErrorCodeCapacityGlobal, "").Error())
}
