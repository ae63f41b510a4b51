package nft

import (
	"errors"
	"fmt"
)

var (
	ErrAssetNotFound    = errors.New("asset not found")
	ErrDuplicateAsset   = errors.New("asset already exists")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrNotAuthorized    = errors.New("not authorized")
	ErrInvalidRequest   = errors.New("invalid request")
)

type Capacity int

const (
	CapacityGlobal   Capacity = 1
	CapacityPerOwner Capacity = 2
)

func (c Capacity) String() string {
	switch c {
	case CapacityGlobal:
		return "global"
	case CapacityPerOwner:
		return "per-owner"
	}
	return fmt.Sprintf("capacity(%d)", int(c))
}

// CapacityError reports which limit a mutation would breach. It matches
// ErrCapacityExceeded with errors.Is.
type CapacityError struct {
	Scope Capacity
	Limit string
}

func (e *CapacityError) Error() string {
	if e.Limit == "" {
		return fmt.Sprintf("%s: %s limit", ErrCapacityExceeded, e.Scope)
	}
	return fmt.Sprintf("%s: %s limit %s", ErrCapacityExceeded, e.Scope, e.Limit)
}

func (e *CapacityError) Is(target error) bool {
	return target == ErrCapacityExceeded
}

func IsCapacity(err error, scope Capacity) bool {
	var ce *CapacityError
	return errors.As(err, &ce) && ce.Scope == scope
}

const (
	ErrorCodeAssetNotFound    = "ASSET_NOT_FOUND"
	ErrorCodeDuplicateAsset   = "DUPLICATE_ASSET"
	ErrorCodeCapacityGlobal   = "CAPACITY_EXCEEDED_GLOBAL"
	ErrorCodeCapacityPerOwner = "CAPACITY_EXCEEDED_PER_OWNER"
	ErrorCodeNotAuthorized    = "NOT_AUTHORIZED"
	ErrorCodeInvalidRequest   = "INVALID_REQUEST"
	ErrorCodeInternal         = "INTERNAL"
)

// ErrorCode is the stable code of a registry error, used when the result of
// an operation leaves the process.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAssetNotFound):
		return ErrorCodeAssetNotFound
	case errors.Is(err, ErrDuplicateAsset):
		return ErrorCodeDuplicateAsset
	case IsCapacity(err, CapacityGlobal):
		return ErrorCodeCapacityGlobal
	case IsCapacity(err, CapacityPerOwner):
		return ErrorCodeCapacityPerOwner
	case errors.Is(err, ErrNotAuthorized):
		return ErrorCodeNotAuthorized
	case errors.Is(err, ErrInvalidRequest):
		return ErrorCodeInvalidRequest
	}
	return ErrorCodeInternal
}

// ErrorFromCode rebuilds an error that matches the sentinel of code.
func ErrorFromCode(code, msg string) error {
	switch code {
	case "":
		return nil
	case ErrorCodeAssetNotFound:
		return fmt.Errorf("%w: %s", ErrAssetNotFound, msg)
	case ErrorCodeDuplicateAsset:
		return fmt.Errorf("%w: %s", ErrDuplicateAsset, msg)
	case ErrorCodeCapacityGlobal:
		return &CapacityError{Scope: CapacityGlobal}
	case ErrorCodeCapacityPerOwner:
		return &CapacityError{Scope: CapacityPerOwner}
	case ErrorCodeNotAuthorized:
		return fmt.Errorf("%w: %s", ErrNotAuthorized, msg)
	case ErrorCodeInvalidRequest:
		return fmt.Errorf("%w: %s", ErrInvalidRequest, msg)
	}
	return errors.New(msg)
}
