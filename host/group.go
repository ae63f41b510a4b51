package host

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MixinNetwork/mixin/logger"
)

// Group is the single writer in front of the registry workers. Callers
// submit actions from any goroutine, the group applies them one by one in
// submit order.
type Group struct {
	store   Store
	clock   *Clock
	workers []Worker
	metrics *Collector

	batch    int
	interval time.Duration

	drainMutex  sync.Mutex
	waiterMutex sync.Mutex
	waiters     map[string][]chan *Action
	notify      chan struct{}
}

func BuildGroup(ctx context.Context, store Store, conf *Configuration) (*Group, error) {
	clock, err := NewClock(store)
	if err != nil {
		return nil, err
	}
	batch := conf.Group.Batch
	if batch <= 0 {
		batch = DefaultBatch
	}
	grp := &Group{
		store:    store,
		clock:    clock,
		metrics:  NewCollector("unique"),
		batch:    batch,
		interval: conf.PollInterval(),
		waiters:  make(map[string][]chan *Action),
		notify:   make(chan struct{}, 1),
	}
	return grp, nil
}

func (grp *Group) AddWorker(wkr Worker) {
	grp.workers = append(grp.workers, wkr)
}

func (grp *Group) Metrics() *Collector {
	return grp.metrics
}

// Submit queues act unless an action with the same trace id exists, in
// which case the stored action is returned untouched. The app should pick
// a unique trace id per operation so retries never apply twice.
func (grp *Group) Submit(ctx context.Context, act *Action) (*Action, error) {
	err := act.validate()
	if err != nil {
		return nil, err
	}
	act.State = ActionStateInitial
	act.Result, act.ErrorCode, act.Error = "", "", ""
	act.CreatedAt = grp.clock.Now()
	act.UpdatedAt = act.CreatedAt
	old, err := grp.store.WriteActionIfAbsent(act)
	if err != nil || old != nil {
		return old, err
	}
	logger.Verbosef("Group.Submit(%s, %s, %s)\n", act.TraceId, act.Operation, act.Caller)

	select {
	case grp.notify <- struct{}{}:
	default:
	}
	return act, nil
}

func (grp *Group) ReadAction(traceId string) (*Action, error) {
	return grp.store.ReadAction(traceId)
}

// Drain applies every queued action and returns when the queue is empty.
func (grp *Group) Drain(ctx context.Context) error {
	grp.drainMutex.Lock()
	defer grp.drainMutex.Unlock()

	for {
		acts, err := grp.store.ListActions(ActionStateInitial, grp.batch)
		if err != nil {
			return err
		}
		grp.metrics.RecordPending(len(acts))
		for _, act := range acts {
			if err := ctx.Err(); err != nil {
				return err
			}
			for _, wkr := range grp.workers {
				wkr.ProcessAction(ctx, act)
			}
			grp.writeAction(act, ActionStateDone)
			grp.metrics.RecordAction(act)
			logger.Verbosef("Group.Drain(%s, %s) => %s %s\n", act.TraceId, act.Operation, act.Result, act.ErrorCode)
			grp.finish(act)
		}
		if len(acts) < grp.batch {
			grp.metrics.RecordPending(0)
			return nil
		}
	}
}

// Run drains the queue whenever an action is submitted or the poll
// interval elapses, until ctx is done.
func (grp *Group) Run(ctx context.Context) {
	ticker := time.NewTicker(grp.interval)
	defer ticker.Stop()

	for {
		err := grp.Drain(ctx)
		if err != nil && ctx.Err() == nil {
			logger.Printf("Group.Drain() => %v\n", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-grp.notify:
		case <-ticker.C:
		}
	}
}

// Wait blocks until the action is done.
func (grp *Group) Wait(ctx context.Context, traceId string) (*Action, error) {
	ch := make(chan *Action, 1)
	grp.waiterMutex.Lock()
	grp.waiters[traceId] = append(grp.waiters[traceId], ch)
	grp.waiterMutex.Unlock()
	defer grp.removeWaiter(traceId, ch)

	act, err := grp.store.ReadAction(traceId)
	if err != nil {
		return nil, err
	}
	if act == nil {
		return nil, fmt.Errorf("action %s not found", traceId)
	}
	if act.State == ActionStateDone {
		return act, nil
	}

	select {
	case act := <-ch:
		return act, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (grp *Group) finish(act *Action) {
	grp.waiterMutex.Lock()
	defer grp.waiterMutex.Unlock()

	for _, ch := range grp.waiters[act.TraceId] {
		ch <- act
	}
	delete(grp.waiters, act.TraceId)
}

func (grp *Group) removeWaiter(traceId string, ch chan *Action) {
	grp.waiterMutex.Lock()
	defer grp.waiterMutex.Unlock()

	chs := grp.waiters[traceId]
	for i, c := range chs {
		if c == ch {
			grp.waiters[traceId] = append(chs[:i], chs[i+1:]...)
			break
		}
	}
	if len(grp.waiters[traceId]) == 0 {
		delete(grp.waiters, traceId)
	}
}
