package host

import (
	"context"
)

type Store interface {
	WriteProperty(key, val []byte) error
	ReadProperty(key []byte) ([]byte, error)

	WriteAction(act *Action) error
	WriteActionIfAbsent(act *Action) (*Action, error)
	ReadAction(traceId string) (*Action, error)
	ListActions(state int, limit int) ([]*Action, error)
}

// Worker applies an action and records its outcome in the action.
type Worker interface {
	ProcessAction(context.Context, *Action)
}
