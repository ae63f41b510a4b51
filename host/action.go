package host

import (
	"fmt"
	"time"

	"github.com/fox-one/mixin-sdk-go"
	"github.com/gofrs/uuid"
)

const (
	ActionStateInitial = 10
	ActionStateDone    = 11
)

const (
	OperationMint     = "MINT"
	OperationTransfer = "TRANSFER"
	OperationBurn     = "BURN"
)

// Action is one registry operation submitted by a caller. The host runs
// actions one at a time in the order of CreatedAt.
type Action struct {
	TraceId   string
	Operation string
	Caller    string
	Account   string
	Registry  string
	AssetId   string
	Info      []byte
	State     int
	Result    string
	ErrorCode string
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UniqueTraceId derives the trace id of a caller request, so a retried
// request maps to the same action.
func UniqueTraceId(caller, requestId string) string {
	return mixin.UniqueConversationID(caller, requestId)
}

func NewTraceId() string {
	return uuid.Must(uuid.NewV4()).String()
}

func (act *Action) StateName() string {
	switch act.State {
	case ActionStateInitial:
		return "initial"
	case ActionStateDone:
		return "done"
	}
	panic(act.State)
}

func (act *Action) validate() error {
	id, err := uuid.FromString(act.TraceId)
	if err != nil || id == uuid.Nil {
		return fmt.Errorf("invalid trace id %s", act.TraceId)
	}
	switch act.Operation {
	case OperationMint, OperationTransfer:
		if act.Account == "" {
			return fmt.Errorf("invalid %s account %s", act.Operation, act.Account)
		}
	case OperationBurn:
	default:
		return fmt.Errorf("invalid operation %s", act.Operation)
	}
	if act.Operation != OperationMint && act.AssetId == "" {
		return fmt.Errorf("invalid %s asset %s", act.Operation, act.AssetId)
	}
	if act.Registry != "" {
		_, err := uuid.FromString(act.Registry)
		if err != nil {
			return fmt.Errorf("invalid registry %s", act.Registry)
		}
	}
	return nil
}

func (grp *Group) writeAction(act *Action, state int) {
	act.State = state
	act.UpdatedAt = grp.clock.Now()
	err := grp.store.WriteAction(act)
	if err != nil {
		panic(err)
	}
}
